// Package dealz provides the Go client for the College Dealz student
// marketplace API.
//
// Covers the REST surface (chats, messages, products, wantlist, wishlist,
// notifications, users, universities, feedback, auth) plus the real-time
// chat transport with sub-module access pattern.
//
// Example:
//
//	sess := &dealz.Session{Token: "eyJ...", UserID: 7}
//	client := dealz.NewClient(sess)
//
//	// REST
//	chats, _ := client.Chats().ListForUser(ctx, sess.UserID)
//	product, _ := client.Products().Get(ctx, 12)
//
//	// Live chat (realtime + synchronizer + fallback polling)
//	live, _ := client.OpenChat(ctx, chats[0].ChatID)
//	live.Send(ctx, "Hi, is this still available?")
package dealz

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"go.uber.org/zap"
)

const (
	DefaultBaseURL = "http://localhost:8080"
	DefaultTimeout = 30 * time.Second
)

// ErrNoSession is returned when an authenticated call is attempted without a
// bearer token. Callers are expected to route the user to the login flow
// instead of retrying.
var ErrNoSession = errors.New("dealz: no active session")

// ErrNotConnected is returned by realtime publishes attempted while the
// socket is down. Sends through the REST path never see it.
var ErrNotConnected = errors.New("dealz: realtime not connected")

// APIError is the flat failure surfaced for any non-2xx response. The chat
// layer does not distinguish status codes beyond carrying them here.
type APIError struct {
	Status  int    `json:"status"`
	Message string `json:"message"`
}

func (e *APIError) Error() string {
	if e.Message != "" {
		return fmt.Sprintf("dealz: server returned %d: %s", e.Status, e.Message)
	}
	return fmt.Sprintf("dealz: server returned %d", e.Status)
}

// ============================================================================
// Client
// ============================================================================

// Client talks to a College Dealz backend. The Session is injected rather
// than read from ambient storage so every networked component shares one
// source of auth state.
type Client struct {
	baseURL    string
	session    *Session
	httpClient *http.Client
	logger     *zap.Logger

	echoWindow   time.Duration
	pollInterval time.Duration
	retryDelay   time.Duration

	auth          *AuthClient
	chats         *ChatsClient
	messages      *MessagesClient
	products      *ProductsClient
	users         *UsersClient
	universities  *UniversitiesClient
	wishlist      *WishlistClient
	wantlist      *WantlistClient
	notifications *NotificationsClient
	feedback      *FeedbackClient
	realtime      *RealtimeClient
}

type ClientOption func(*Client)

func WithBaseURL(u string) ClientOption {
	return func(c *Client) { c.baseURL = strings.TrimRight(u, "/") }
}

func WithTimeout(timeout time.Duration) ClientOption {
	return func(c *Client) { c.httpClient.Timeout = timeout }
}

func WithHTTPClient(client *http.Client) ClientOption {
	return func(c *Client) { c.httpClient = client }
}

func WithLogger(logger *zap.Logger) ClientOption {
	return func(c *Client) { c.logger = logger }
}

// WithEchoWindow overrides the optimistic-echo de-duplication window used by
// chat synchronizers created through OpenChat. The 5s default is a heuristic
// carried over from the production client, not a correctness bound.
func WithEchoWindow(d time.Duration) ClientOption {
	return func(c *Client) { c.echoWindow = d }
}

// WithPollInterval overrides the degraded-mode refresh interval.
func WithPollInterval(d time.Duration) ClientOption {
	return func(c *Client) { c.pollInterval = d }
}

// WithRetryDelay overrides the fixed realtime reconnect delay.
func WithRetryDelay(d time.Duration) ClientOption {
	return func(c *Client) { c.retryDelay = d }
}

// NewClient creates a new College Dealz client.
// session may be nil for the unauthenticated auth flow; every other
// sub-client short-circuits with ErrNoSession.
func NewClient(session *Session, opts ...ClientOption) *Client {
	c := &Client{
		baseURL: DefaultBaseURL,
		session: session,
		httpClient: &http.Client{
			Timeout: DefaultTimeout,
		},
		logger:       zap.NewNop(),
		echoWindow:   defaultEchoWindow,
		pollInterval: defaultPollInterval,
		retryDelay:   defaultRetryDelay,
	}

	for _, opt := range opts {
		opt(c)
	}

	c.auth = &AuthClient{client: c}
	c.chats = &ChatsClient{client: c}
	c.messages = &MessagesClient{client: c}
	c.products = &ProductsClient{client: c}
	c.users = &UsersClient{client: c}
	c.universities = &UniversitiesClient{client: c}
	c.wishlist = &WishlistClient{client: c}
	c.wantlist = &WantlistClient{client: c}
	c.notifications = &NotificationsClient{client: c}
	c.feedback = &FeedbackClient{client: c}
	c.realtime = newRealtimeClient(c)
	return c
}

// SetSession swaps the active session, e.g. after login or token refresh.
func (c *Client) SetSession(session *Session) {
	c.session = session
}

// Session returns the injected session, which may be nil.
func (c *Client) Session() *Session { return c.session }

func (c *Client) Auth() *AuthClient                   { return c.auth }
func (c *Client) Chats() *ChatsClient                 { return c.chats }
func (c *Client) Messages() *MessagesClient           { return c.messages }
func (c *Client) Products() *ProductsClient           { return c.products }
func (c *Client) Users() *UsersClient                 { return c.users }
func (c *Client) Universities() *UniversitiesClient   { return c.universities }
func (c *Client) Wishlist() *WishlistClient           { return c.wishlist }
func (c *Client) Wantlist() *WantlistClient           { return c.wantlist }
func (c *Client) Notifications() *NotificationsClient { return c.notifications }
func (c *Client) Feedback() *FeedbackClient           { return c.feedback }
func (c *Client) Realtime() *RealtimeClient           { return c.realtime }

// requireSession gates protected actions before any network traffic happens.
func (c *Client) requireSession() error {
	if c.session == nil || c.session.Token == "" {
		return ErrNoSession
	}
	return nil
}

// ============================================================================
// Internal request helper
// ============================================================================

func (c *Client) doRequest(ctx context.Context, method, path string, body interface{}, query map[string]string) ([]byte, error) {
	u := c.baseURL + path
	if len(query) > 0 {
		params := url.Values{}
		for k, v := range query {
			params.Set(k, v)
		}
		u += "?" + params.Encode()
	}

	var bodyReader io.Reader
	if body != nil {
		b, err := json.Marshal(body)
		if err != nil {
			return nil, fmt.Errorf("failed to marshal request: %w", err)
		}
		bodyReader = bytes.NewReader(b)
	}

	req, err := http.NewRequestWithContext(ctx, method, u, bodyReader)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}

	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if c.session != nil && c.session.Token != "" {
		req.Header.Set("Authorization", "Bearer "+c.session.Token)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("request failed: %w", err)
	}
	defer resp.Body.Close()

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("failed to read response: %w", err)
	}

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		apiErr := &APIError{Status: resp.StatusCode}
		// Error bodies are either {"message": "..."} or plain text.
		var wrapped struct {
			Message string `json:"message"`
		}
		if json.Unmarshal(data, &wrapped) == nil && wrapped.Message != "" {
			apiErr.Message = wrapped.Message
		} else if len(data) > 0 && len(data) < 512 {
			apiErr.Message = strings.TrimSpace(string(data))
		}
		return nil, apiErr
	}

	return data, nil
}

func decodeJSON[T any](data []byte) (*T, error) {
	var result T
	if err := json.Unmarshal(data, &result); err != nil {
		return nil, fmt.Errorf("failed to unmarshal response: %w", err)
	}
	return &result, nil
}

func decodeJSONSlice[T any](data []byte) ([]T, error) {
	var result []T
	if err := json.Unmarshal(data, &result); err != nil {
		return nil, fmt.Errorf("failed to unmarshal response: %w", err)
	}
	return result, nil
}
