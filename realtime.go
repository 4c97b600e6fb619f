package dealz

import (
	"context"
	"encoding/json"
	"fmt"
	"strconv"
	"strings"
	"sync"
	"time"

	"go.uber.org/zap"
	"nhooyr.io/websocket"
)

const defaultRetryDelay = 5 * time.Second

// ConnState represents the realtime connection state.
type ConnState string

const (
	StateDisconnected ConnState = "disconnected"
	StateConnecting   ConnState = "connecting"
	StateConnected    ConnState = "connected"
	StateReconnecting ConnState = "reconnecting"
)

// Live reports whether messages are expected to arrive over the socket.
func (s ConnState) Live() bool { return s == StateConnected }

// ============================================================================
// Wire format
// ============================================================================

// Frame is the wire envelope for realtime traffic. Incoming frames carry
// the topic they were published to; outgoing frames carry the destination
// to publish or subscribe to.
type Frame struct {
	Type        string          `json:"type,omitempty"`
	Destination string          `json:"destination"`
	Body        json.RawMessage `json:"body,omitempty"`
}

func chatTopic(chatID int) string {
	return "/topic/chat/" + strconv.Itoa(chatID)
}

func chatSendDestination(chatID int) string {
	return "/app/chat.sendMessage/" + strconv.Itoa(chatID)
}

// ============================================================================
// Transport
// ============================================================================

// Transport dials realtime connections. The default is a WebSocket
// transport; tests substitute their own.
type Transport interface {
	Dial(ctx context.Context, url string) (TransportConn, error)
}

// TransportConn is a single established realtime connection.
type TransportConn interface {
	ReadFrame(ctx context.Context) (*Frame, error)
	WriteFrame(ctx context.Context, f *Frame) error
	Close() error
}

type wsTransport struct{}

func (wsTransport) Dial(ctx context.Context, url string) (TransportConn, error) {
	conn, _, err := websocket.Dial(ctx, url, nil)
	if err != nil {
		return nil, fmt.Errorf("websocket dial: %w", err)
	}
	return &wsConn{conn: conn}, nil
}

type wsConn struct {
	conn *websocket.Conn
}

func (wc *wsConn) ReadFrame(ctx context.Context) (*Frame, error) {
	_, data, err := wc.conn.Read(ctx)
	if err != nil {
		return nil, err
	}
	var f Frame
	if err := json.Unmarshal(data, &f); err != nil {
		return nil, fmt.Errorf("decode frame: %w", err)
	}
	return &f, nil
}

func (wc *wsConn) WriteFrame(ctx context.Context, f *Frame) error {
	data, err := json.Marshal(f)
	if err != nil {
		return err
	}
	return wc.conn.Write(ctx, websocket.MessageText, data)
}

func (wc *wsConn) Close() error {
	return wc.conn.Close(websocket.StatusNormalClosure, "client disconnect")
}

// ============================================================================
// RealtimeClient
// ============================================================================

// RealtimeClient maintains the WebSocket subscription for one chat at a
// time. Switching chats tears the old connection down before dialing the
// new one. Transport failures are never surfaced as errors: the client
// reports a state change and keeps retrying at a fixed interval until
// Disconnect is called.
type RealtimeClient struct {
	client    *Client
	transport Transport
	logger    *zap.Logger
	retry     time.Duration

	mu     sync.Mutex
	state  ConnState
	gen    uint64
	chatID int
	conn   TransportConn
	cancel context.CancelFunc

	onMessage     func(Message)
	onStateChange func(ConnState)
}

func newRealtimeClient(c *Client) *RealtimeClient {
	return &RealtimeClient{
		client:    c,
		transport: wsTransport{},
		logger:    c.logger,
		retry:     c.retryDelay,
		state:     StateDisconnected,
	}
}

// SetTransport replaces the dialer. Must be called before Connect.
func (rc *RealtimeClient) SetTransport(t Transport) { rc.transport = t }

// OnMessage registers the handler for incoming chat messages. The handler
// runs on the read goroutine; keep it short.
func (rc *RealtimeClient) OnMessage(h func(Message)) {
	rc.mu.Lock()
	rc.onMessage = h
	rc.mu.Unlock()
}

// OnStateChange registers the handler for connection state transitions.
func (rc *RealtimeClient) OnStateChange(h func(ConnState)) {
	rc.mu.Lock()
	rc.onStateChange = h
	rc.mu.Unlock()
}

// State returns the current connection state.
func (rc *RealtimeClient) State() ConnState {
	rc.mu.Lock()
	defer rc.mu.Unlock()
	return rc.state
}

// ChatID returns the chat the client is connected or connecting to, or 0.
func (rc *RealtimeClient) ChatID() int {
	rc.mu.Lock()
	defer rc.mu.Unlock()
	return rc.chatID
}

// Connect subscribes to a chat's topic. Connecting to the chat already
// active is a no-op. Any previous connection is torn down first; a
// handshake still in flight for the old chat is discarded when it lands.
// Connect returns an error only when no session is present. Dial
// failures degrade to the reconnecting state instead.
func (rc *RealtimeClient) Connect(ctx context.Context, chatID int) error {
	if err := rc.client.requireSession(); err != nil {
		return err
	}

	rc.mu.Lock()
	if rc.chatID == chatID && rc.state != StateDisconnected {
		rc.mu.Unlock()
		return nil
	}
	rc.teardownLocked()
	rc.gen++
	gen := rc.gen
	rc.chatID = chatID
	runCtx, cancel := context.WithCancel(context.WithoutCancel(ctx))
	rc.cancel = cancel
	rc.mu.Unlock()

	go rc.run(runCtx, gen, chatID)
	return nil
}

// Disconnect closes the active connection and stops reconnecting. It is
// safe to call at any time, including when already disconnected.
func (rc *RealtimeClient) Disconnect() {
	rc.mu.Lock()
	rc.teardownLocked()
	rc.gen++
	rc.chatID = 0
	rc.mu.Unlock()
	rc.setState(rc.currentGen(), StateDisconnected)
}

// teardownLocked cancels the running loop and closes the socket. Callers
// hold rc.mu.
func (rc *RealtimeClient) teardownLocked() {
	if rc.cancel != nil {
		rc.cancel()
		rc.cancel = nil
	}
	if rc.conn != nil {
		rc.conn.Close()
		rc.conn = nil
	}
}

func (rc *RealtimeClient) currentGen() uint64 {
	rc.mu.Lock()
	defer rc.mu.Unlock()
	return rc.gen
}

// Publish sends a message over the socket. The REST send path is the
// durable one; Publish exists for peers subscribed to the same topic.
func (rc *RealtimeClient) Publish(ctx context.Context, msg *Message) error {
	rc.mu.Lock()
	conn := rc.conn
	chatID := rc.chatID
	rc.mu.Unlock()

	if conn == nil {
		return ErrNotConnected
	}
	body, err := json.Marshal(map[string]any{
		"senderId":   msg.SenderID,
		"receiverId": msg.ReceiverID,
		"content":    msg.Content,
	})
	if err != nil {
		return err
	}
	return conn.WriteFrame(ctx, &Frame{
		Type:        "send",
		Destination: chatSendDestination(chatID),
		Body:        body,
	})
}

func (rc *RealtimeClient) wsURL() string {
	url := strings.Replace(rc.client.baseURL, "https://", "wss://", 1)
	url = strings.Replace(url, "http://", "ws://", 1)
	return url + "/ws?token=" + rc.client.session.Token
}

// run is the connection loop for one generation. It dials, subscribes and
// reads until the socket drops, then waits out the retry delay and dials
// again. It exits when its generation is superseded or its context is
// cancelled.
func (rc *RealtimeClient) run(ctx context.Context, gen uint64, chatID int) {
	first := true
	for {
		if rc.currentGen() != gen {
			return
		}
		if first {
			rc.setState(gen, StateConnecting)
		} else {
			rc.setState(gen, StateReconnecting)
		}
		first = false

		conn, err := rc.dial(ctx, gen, chatID)
		if err != nil {
			rc.logger.Warn("realtime dial failed",
				zap.Int("chatId", chatID),
				zap.Error(err))
			if !rc.sleep(ctx, gen) {
				return
			}
			continue
		}
		if conn == nil {
			// Superseded while the handshake was in flight.
			return
		}

		rc.setState(gen, StateConnected)
		rc.readLoop(ctx, gen, conn)

		rc.mu.Lock()
		if rc.gen == gen && rc.conn == conn {
			rc.conn = nil
		}
		rc.mu.Unlock()
		conn.Close()

		if rc.currentGen() != gen || ctx.Err() != nil {
			return
		}
		rc.setState(gen, StateReconnecting)
		rc.logger.Info("realtime connection lost, retrying",
			zap.Int("chatId", chatID),
			zap.Duration("delay", rc.retry))
		if !rc.sleep(ctx, gen) {
			return
		}
	}
}

// dial establishes and subscribes one connection. It returns (nil, nil)
// when the generation went stale while the handshake was in flight.
func (rc *RealtimeClient) dial(ctx context.Context, gen uint64, chatID int) (TransportConn, error) {
	conn, err := rc.transport.Dial(ctx, rc.wsURL())
	if err != nil {
		return nil, err
	}

	rc.mu.Lock()
	if rc.gen != gen {
		rc.mu.Unlock()
		conn.Close()
		return nil, nil
	}
	rc.conn = conn
	rc.mu.Unlock()

	sub := &Frame{Type: "subscribe", Destination: chatTopic(chatID)}
	if err := conn.WriteFrame(ctx, sub); err != nil {
		rc.mu.Lock()
		if rc.conn == conn {
			rc.conn = nil
		}
		rc.mu.Unlock()
		conn.Close()
		return nil, fmt.Errorf("subscribe %s: %w", sub.Destination, err)
	}
	return conn, nil
}

func (rc *RealtimeClient) readLoop(ctx context.Context, gen uint64, conn TransportConn) {
	for {
		f, err := conn.ReadFrame(ctx)
		if err != nil {
			return
		}
		if rc.currentGen() != gen {
			return
		}
		if len(f.Body) == 0 {
			continue
		}
		var msg Message
		if err := json.Unmarshal(f.Body, &msg); err != nil {
			rc.logger.Warn("realtime frame decode failed", zap.Error(err))
			continue
		}
		msg.Status = StatusSent

		rc.mu.Lock()
		h := rc.onMessage
		rc.mu.Unlock()
		if h != nil {
			h(msg)
		}
	}
}

// sleep waits out the retry delay. It returns false when the context was
// cancelled or the generation superseded.
func (rc *RealtimeClient) sleep(ctx context.Context, gen uint64) bool {
	t := time.NewTimer(rc.retry)
	defer t.Stop()
	select {
	case <-ctx.Done():
		return false
	case <-t.C:
		return rc.currentGen() == gen
	}
}

// setState records a transition and notifies the handler. Stale
// generations never report state.
func (rc *RealtimeClient) setState(gen uint64, s ConnState) {
	rc.mu.Lock()
	if rc.gen != gen || rc.state == s {
		rc.mu.Unlock()
		return
	}
	rc.state = s
	h := rc.onStateChange
	rc.mu.Unlock()

	if h != nil {
		h(s)
	}
}
