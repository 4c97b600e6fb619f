package dealz

import (
	"context"
	"fmt"
	"strconv"
)

// ============================================================================
// Auth
// ============================================================================

// AuthClient handles registration, login and the OTP verification flow.
// These are the only calls usable without a session.
type AuthClient struct{ client *Client }

func (a *AuthClient) Register(ctx context.Context, req *RegisterRequest) (*AuthResponse, error) {
	data, err := a.client.doRequest(ctx, "POST", "/register", req, nil)
	if err != nil {
		return nil, err
	}
	return decodeJSON[AuthResponse](data)
}

func (a *AuthClient) Login(ctx context.Context, email, password string) (*AuthResponse, error) {
	data, err := a.client.doRequest(ctx, "POST", "/login", &LoginRequest{Email: email, Password: password}, nil)
	if err != nil {
		return nil, err
	}
	return decodeJSON[AuthResponse](data)
}

func (a *AuthClient) SendOTP(ctx context.Context, email string) (*OtpResponse, error) {
	data, err := a.client.doRequest(ctx, "POST", "/send-otp", nil, map[string]string{"email": email})
	if err != nil {
		return nil, err
	}
	return decodeJSON[OtpResponse](data)
}

func (a *AuthClient) ResendOTP(ctx context.Context, email string) (*OtpResponse, error) {
	data, err := a.client.doRequest(ctx, "POST", "/resend-otp", nil, map[string]string{"email": email})
	if err != nil {
		return nil, err
	}
	return decodeJSON[OtpResponse](data)
}

func (a *AuthClient) Verify(ctx context.Context, email, code string) (*AuthResponse, error) {
	data, err := a.client.doRequest(ctx, "POST", "/verify", map[string]string{"email": email, "otp": code}, nil)
	if err != nil {
		return nil, err
	}
	return decodeJSON[AuthResponse](data)
}

func (a *AuthClient) RefreshToken(ctx context.Context) (*AuthResponse, error) {
	if err := a.client.requireSession(); err != nil {
		return nil, err
	}
	data, err := a.client.doRequest(ctx, "POST", "/refresh_token", nil, nil)
	if err != nil {
		return nil, err
	}
	return decodeJSON[AuthResponse](data)
}

// ============================================================================
// Chats
// ============================================================================

// ChatsClient manages conversations.
type ChatsClient struct{ client *Client }

func (cc *ChatsClient) ListForUser(ctx context.Context, userID int) ([]Chat, error) {
	if err := cc.client.requireSession(); err != nil {
		return nil, err
	}
	data, err := cc.client.doRequest(ctx, "GET", "/api/chats/user/"+strconv.Itoa(userID), nil, nil)
	if err != nil {
		return nil, err
	}
	return decodeJSONSlice[Chat](data)
}

// FindOrCreate returns the existing chat for (sender, receiver, product) or
// creates one. Starting a chat with yourself is rejected locally.
func (cc *ChatsClient) FindOrCreate(ctx context.Context, senderID, receiverID, productID int) (*Chat, error) {
	if err := cc.client.requireSession(); err != nil {
		return nil, err
	}
	if senderID == receiverID {
		return nil, fmt.Errorf("dealz: cannot start a chat with yourself")
	}
	data, err := cc.client.doRequest(ctx, "POST", "/api/chats/create", map[string]int{
		"senderId":   senderID,
		"receiverId": receiverID,
		"productId":  productID,
	}, nil)
	if err != nil {
		return nil, err
	}
	return decodeJSON[Chat](data)
}

func (cc *ChatsClient) Get(ctx context.Context, chatID int) (*Chat, error) {
	if err := cc.client.requireSession(); err != nil {
		return nil, err
	}
	data, err := cc.client.doRequest(ctx, "GET", "/api/chats/"+strconv.Itoa(chatID), nil, nil)
	if err != nil {
		return nil, err
	}
	return decodeJSON[Chat](data)
}

// ============================================================================
// Messages
// ============================================================================

// MessagesClient sends and lists messages over REST. Realtime delivery lives
// in RealtimeClient; this is the confirm path and the polling fallback.
type MessagesClient struct{ client *Client }

func (mc *MessagesClient) ListForChat(ctx context.Context, chatID int) ([]Message, error) {
	if err := mc.client.requireSession(); err != nil {
		return nil, err
	}
	data, err := mc.client.doRequest(ctx, "GET", "/api/messages/chats/"+strconv.Itoa(chatID)+"/messages", nil, nil)
	if err != nil {
		return nil, err
	}
	return decodeJSONSlice[Message](data)
}

func (mc *MessagesClient) Send(ctx context.Context, msg *Message) (*Message, error) {
	if err := mc.client.requireSession(); err != nil {
		return nil, err
	}
	data, err := mc.client.doRequest(ctx, "POST", "/api/messages/send", map[string]any{
		"senderId":   msg.SenderID,
		"receiverId": msg.ReceiverID,
		"chatId":     msg.ChatID,
		"content":    msg.Content,
	}, nil)
	if err != nil {
		return nil, err
	}
	sent, err := decodeJSON[Message](data)
	if err != nil {
		return nil, err
	}
	sent.Status = StatusSent
	return sent, nil
}

// ============================================================================
// Products
// ============================================================================

type ProductsClient struct{ client *Client }

func (pc *ProductsClient) Get(ctx context.Context, productID int) (*Product, error) {
	if err := pc.client.requireSession(); err != nil {
		return nil, err
	}
	data, err := pc.client.doRequest(ctx, "GET", "/api/products/"+strconv.Itoa(productID), nil, nil)
	if err != nil {
		return nil, err
	}
	return decodeJSON[Product](data)
}

func (pc *ProductsClient) Create(ctx context.Context, product *Product) (*Product, error) {
	if err := pc.client.requireSession(); err != nil {
		return nil, err
	}
	data, err := pc.client.doRequest(ctx, "POST", "/api/products/create", product, nil)
	if err != nil {
		return nil, err
	}
	return decodeJSON[Product](data)
}

func (pc *ProductsClient) Update(ctx context.Context, productID int, product *Product) (*Product, error) {
	if err := pc.client.requireSession(); err != nil {
		return nil, err
	}
	data, err := pc.client.doRequest(ctx, "PUT", "/api/products/"+strconv.Itoa(productID), product, nil)
	if err != nil {
		return nil, err
	}
	return decodeJSON[Product](data)
}

// ListForUniversity returns the university feed, optionally filtered and
// sorted server-side.
func (pc *ProductsClient) ListForUniversity(ctx context.Context, filter *ProductFilter) ([]Product, error) {
	if err := pc.client.requireSession(); err != nil {
		return nil, err
	}
	if filter == nil {
		filter = &ProductFilter{}
	}
	data, err := pc.client.doRequest(ctx, "POST", "/api/products/university", filter, nil)
	if err != nil {
		return nil, err
	}
	return decodeJSONSlice[Product](data)
}

func (pc *ProductsClient) Search(ctx context.Context, term string) ([]Product, error) {
	if err := pc.client.requireSession(); err != nil {
		return nil, err
	}
	data, err := pc.client.doRequest(ctx, "GET", "/api/products/search/"+term, nil, nil)
	if err != nil {
		return nil, err
	}
	return decodeJSONSlice[Product](data)
}

// ListForSeller returns the current user's own listings.
func (pc *ProductsClient) ListForSeller(ctx context.Context) ([]Product, error) {
	if err := pc.client.requireSession(); err != nil {
		return nil, err
	}
	data, err := pc.client.doRequest(ctx, "GET", "/api/products/seller", nil, nil)
	if err != nil {
		return nil, err
	}
	return decodeJSONSlice[Product](data)
}

func (pc *ProductsClient) Delete(ctx context.Context, productID int) error {
	if err := pc.client.requireSession(); err != nil {
		return err
	}
	_, err := pc.client.doRequest(ctx, "DELETE", "/api/products/remove-by-user/"+strconv.Itoa(productID), nil, nil)
	return err
}

// MarkSoldOutside flags a listing as sold outside the platform.
func (pc *ProductsClient) MarkSoldOutside(ctx context.Context, productID int) error {
	if err := pc.client.requireSession(); err != nil {
		return err
	}
	_, err := pc.client.doRequest(ctx, "POST", "/api/products/sold-outside/"+strconv.Itoa(productID), nil, nil)
	return err
}

// MarkSoldInside flags a listing as sold to buyerID through the platform.
func (pc *ProductsClient) MarkSoldInside(ctx context.Context, productID, buyerID int) error {
	if err := pc.client.requireSession(); err != nil {
		return err
	}
	_, err := pc.client.doRequest(ctx, "POST", "/api/products/sold-inside-platform/"+strconv.Itoa(productID), map[string]int{"buyerId": buyerID}, nil)
	return err
}

func (pc *ProductsClient) Relist(ctx context.Context, productID int) error {
	if err := pc.client.requireSession(); err != nil {
		return err
	}
	_, err := pc.client.doRequest(ctx, "POST", "/api/products/"+strconv.Itoa(productID)+"/relist", nil, nil)
	return err
}

// InterestedBuyers lists users who opened a chat about the product.
func (pc *ProductsClient) InterestedBuyers(ctx context.Context, productID int) ([]User, error) {
	if err := pc.client.requireSession(); err != nil {
		return nil, err
	}
	data, err := pc.client.doRequest(ctx, "GET", "/api/products/"+strconv.Itoa(productID)+"/interested-buyers", nil, nil)
	if err != nil {
		return nil, err
	}
	return decodeJSONSlice[User](data)
}

// GetShared fetches a product through the public share link, no session needed.
func (pc *ProductsClient) GetShared(ctx context.Context, productID int) (*Product, error) {
	data, err := pc.client.doRequest(ctx, "GET", "/api/products/public/shared-product/"+strconv.Itoa(productID), nil, nil)
	if err != nil {
		return nil, err
	}
	return decodeJSON[Product](data)
}

// ============================================================================
// Users
// ============================================================================

type UsersClient struct{ client *Client }

func (uc *UsersClient) Get(ctx context.Context, userID int) (*User, error) {
	if err := uc.client.requireSession(); err != nil {
		return nil, err
	}
	data, err := uc.client.doRequest(ctx, "GET", "/api/users/"+strconv.Itoa(userID), nil, nil)
	if err != nil {
		return nil, err
	}
	return decodeJSON[User](data)
}

func (uc *UsersClient) Dashboard(ctx context.Context) (*Dashboard, error) {
	if err := uc.client.requireSession(); err != nil {
		return nil, err
	}
	data, err := uc.client.doRequest(ctx, "GET", "/api/users/dashboard", nil, nil)
	if err != nil {
		return nil, err
	}
	return decodeJSON[Dashboard](data)
}

func (uc *UsersClient) Update(ctx context.Context, user *User) (*User, error) {
	if err := uc.client.requireSession(); err != nil {
		return nil, err
	}
	data, err := uc.client.doRequest(ctx, "PUT", "/api/users/update", user, nil)
	if err != nil {
		return nil, err
	}
	return decodeJSON[User](data)
}

// ============================================================================
// Universities
// ============================================================================

type UniversitiesClient struct{ client *Client }

// List is public: the signup flow needs it before any session exists.
func (un *UniversitiesClient) List(ctx context.Context) ([]University, error) {
	data, err := un.client.doRequest(ctx, "GET", "/api/universities", nil, nil)
	if err != nil {
		return nil, err
	}
	return decodeJSONSlice[University](data)
}

func (un *UniversitiesClient) Get(ctx context.Context, id int) (*University, error) {
	data, err := un.client.doRequest(ctx, "GET", "/api/universities/"+strconv.Itoa(id), nil, nil)
	if err != nil {
		return nil, err
	}
	return decodeJSON[University](data)
}

// ============================================================================
// Wishlist
// ============================================================================

type WishlistClient struct{ client *Client }

func (wc *WishlistClient) Add(ctx context.Context, productID int) error {
	if err := wc.client.requireSession(); err != nil {
		return err
	}
	_, err := wc.client.doRequest(ctx, "POST", "/api/wishlist/"+strconv.Itoa(productID), nil, nil)
	return err
}

func (wc *WishlistClient) List(ctx context.Context) ([]Product, error) {
	if err := wc.client.requireSession(); err != nil {
		return nil, err
	}
	data, err := wc.client.doRequest(ctx, "GET", "/api/wishlist/", nil, nil)
	if err != nil {
		return nil, err
	}
	return decodeJSONSlice[Product](data)
}

func (wc *WishlistClient) Remove(ctx context.Context, productID int) error {
	if err := wc.client.requireSession(); err != nil {
		return err
	}
	_, err := wc.client.doRequest(ctx, "DELETE", "/api/wishlist/"+strconv.Itoa(productID), nil, nil)
	return err
}

// Contains reports whether the product is already wishlisted.
func (wc *WishlistClient) Contains(ctx context.Context, productID int) (bool, error) {
	if err := wc.client.requireSession(); err != nil {
		return false, err
	}
	data, err := wc.client.doRequest(ctx, "GET", "/api/wishlist/"+strconv.Itoa(productID)+"/check", nil, nil)
	if err != nil {
		return false, err
	}
	result, err := decodeJSON[bool](data)
	if err != nil {
		return false, err
	}
	return *result, nil
}

// ============================================================================
// Wantlist
// ============================================================================

type WantlistClient struct{ client *Client }

func (wl *WantlistClient) Add(ctx context.Context, item *WantlistItem) (*WantlistItem, error) {
	if err := wl.client.requireSession(); err != nil {
		return nil, err
	}
	data, err := wl.client.doRequest(ctx, "POST", "/api/wantlist/add", item, nil)
	if err != nil {
		return nil, err
	}
	return decodeJSON[WantlistItem](data)
}

func (wl *WantlistClient) List(ctx context.Context) ([]WantlistItem, error) {
	if err := wl.client.requireSession(); err != nil {
		return nil, err
	}
	data, err := wl.client.doRequest(ctx, "GET", "/api/wantlist/all", nil, nil)
	if err != nil {
		return nil, err
	}
	return decodeJSONSlice[WantlistItem](data)
}

func (wl *WantlistClient) Remove(ctx context.Context, wantlistID int) error {
	if err := wl.client.requireSession(); err != nil {
		return err
	}
	_, err := wl.client.doRequest(ctx, "DELETE", "/api/wantlist/remove/"+strconv.Itoa(wantlistID), nil, nil)
	return err
}

// ForProduct lists wantlist entries matching a product.
func (wl *WantlistClient) ForProduct(ctx context.Context, productID int) ([]WantlistItem, error) {
	if err := wl.client.requireSession(); err != nil {
		return nil, err
	}
	data, err := wl.client.doRequest(ctx, "GET", "/api/wantlist/"+strconv.Itoa(productID), nil, nil)
	if err != nil {
		return nil, err
	}
	return decodeJSONSlice[WantlistItem](data)
}

// ============================================================================
// Notifications
// ============================================================================

type NotificationsClient struct{ client *Client }

func (nc *NotificationsClient) List(ctx context.Context) ([]Notification, error) {
	if err := nc.client.requireSession(); err != nil {
		return nil, err
	}
	data, err := nc.client.doRequest(ctx, "GET", "/api/notifications/", nil, nil)
	if err != nil {
		return nil, err
	}
	return decodeJSONSlice[Notification](data)
}

func (nc *NotificationsClient) MarkAsRead(ctx context.Context, notificationID int) error {
	if err := nc.client.requireSession(); err != nil {
		return err
	}
	_, err := nc.client.doRequest(ctx, "POST", "/api/notifications/mark-as-read/"+strconv.Itoa(notificationID), nil, nil)
	return err
}

// ============================================================================
// Feedback
// ============================================================================

type FeedbackClient struct{ client *Client }

func (fc *FeedbackClient) Submit(ctx context.Context, fb *Feedback) error {
	if err := fc.client.requireSession(); err != nil {
		return err
	}
	_, err := fc.client.doRequest(ctx, "POST", "/api/feedback/", fb, nil)
	return err
}

func (fc *FeedbackClient) List(ctx context.Context) ([]Feedback, error) {
	if err := fc.client.requireSession(); err != nil {
		return nil, err
	}
	data, err := fc.client.doRequest(ctx, "GET", "/api/feedback", nil, nil)
	if err != nil {
		return nil, err
	}
	return decodeJSONSlice[Feedback](data)
}

func (fc *FeedbackClient) Delete(ctx context.Context, feedbackID int) error {
	if err := fc.client.requireSession(); err != nil {
		return err
	}
	_, err := fc.client.doRequest(ctx, "DELETE", "/api/feedback/"+strconv.Itoa(feedbackID), nil, nil)
	return err
}
