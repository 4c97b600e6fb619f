package dealz

import "time"

// ============================================================================
// Chat & Message Types
// ============================================================================

// MessageStatus is the client-side delivery lifecycle of a message.
type MessageStatus string

const (
	StatusPendingSend   MessageStatus = "pending-send"
	StatusSent          MessageStatus = "sent"
	StatusDeliveryError MessageStatus = "delivery-error"
)

// Wire formats for the split timestamp the backend uses: a calendar date plus
// a time of day, both rendered in the sender's local zone.
const (
	wireDateLayout = "2006-01-02"
	wireTimeLayout = "15:04:05"
)

// Message is one chat message. Exactly one of ID and TempID is authoritative
// at any time: TempID is set for locally created optimistic entries and is
// retired for good once the server assigns an id.
type Message struct {
	ID          string        `json:"id,omitempty"`
	TempID      string        `json:"-"`
	SenderID    int           `json:"senderId"`
	ReceiverID  int           `json:"receiverId"`
	ChatID      int           `json:"chatId"`
	Content     string        `json:"content"`
	CreatedAt   string        `json:"createdAt,omitempty"`   // calendar date, 2006-01-02
	CreatedTime string        `json:"createdTime,omitempty"` // time of day, 15:04:05
	Status      MessageStatus `json:"-"`
}

// Key returns the authoritative identifier: the server id once confirmed,
// the temporary id before that.
func (m Message) Key() string {
	if m.ID != "" {
		return m.ID
	}
	return m.TempID
}

// SentAt parses the split wire timestamp in local time. Returns the zero
// time when either half is missing or malformed.
func (m Message) SentAt() time.Time {
	if m.CreatedAt == "" || m.CreatedTime == "" {
		return time.Time{}
	}
	t, err := time.ParseInLocation(wireDateLayout+" "+wireTimeLayout, m.CreatedAt+" "+m.CreatedTime, time.Local)
	if err != nil {
		return time.Time{}
	}
	return t
}

// stampLocal fills the wire timestamp fields from a local-time instant.
func (m *Message) stampLocal(t time.Time) {
	m.CreatedAt = t.Format(wireDateLayout)
	m.CreatedTime = t.Format(wireTimeLayout)
}

// Chat is one buyer/seller conversation, optionally anchored to a product.
type Chat struct {
	ChatID       int       `json:"chatId"`
	SenderID     int       `json:"senderId"`
	SenderName   string    `json:"senderName,omitempty"`
	ReceiverID   int       `json:"receiverId"`
	ReceiverName string    `json:"receiverName,omitempty"`
	ProductID    int       `json:"productId,omitempty"`
	ProductName  string    `json:"productName,omitempty"`
	Messages     []Message `json:"messages,omitempty"`
}

// PeerID returns the other participant relative to userID.
func (c Chat) PeerID(userID int) int {
	if c.SenderID == userID {
		return c.ReceiverID
	}
	return c.SenderID
}

// PeerName returns the other participant's name relative to userID.
func (c Chat) PeerName(userID int) string {
	if c.SenderID == userID {
		return c.ReceiverName
	}
	return c.SenderName
}

// LastMessage returns the newest message, or a zero Message for empty chats.
func (c Chat) LastMessage() Message {
	if len(c.Messages) == 0 {
		return Message{}
	}
	return c.Messages[len(c.Messages)-1]
}

// ============================================================================
// Marketplace Types
// ============================================================================

type Product struct {
	ID           int      `json:"id,omitempty"`
	Name         string   `json:"name"`
	Description  string   `json:"description,omitempty"`
	Price        float64  `json:"price"`
	Condition    string   `json:"condition,omitempty"`
	Category     string   `json:"category,omitempty"`
	MonthsOld    int      `json:"monthsOld,omitempty"`
	SellerID     int      `json:"sellerId,omitempty"`
	SellerName   string   `json:"sellerName,omitempty"`
	UniversityID int      `json:"universityId,omitempty"`
	PostDate     string   `json:"postDate,omitempty"`
	ImageURLs    []string `json:"imageUrls,omitempty"`
}

// ProductFilter narrows university-scoped product listings.
type ProductFilter struct {
	Category  string  `json:"category,omitempty"`
	MinPrice  float64 `json:"minPrice,omitempty"`
	MaxPrice  float64 `json:"maxPrice,omitempty"`
	Condition string  `json:"condition,omitempty"`
	SortBy    string  `json:"sortBy,omitempty"`
	SortOrder string  `json:"sortOrder,omitempty"`
}

type User struct {
	ID             int      `json:"id,omitempty"`
	Name           string   `json:"name"`
	Email          string   `json:"email"`
	UniversityName string   `json:"universityName,omitempty"`
	ProfilePicture string   `json:"profilePicture,omitempty"`
	Enabled        bool     `json:"enabled,omitempty"`
	EmailVerified  bool     `json:"emailVerified,omitempty"`
	Roles          []string `json:"roles,omitempty"`
}

type University struct {
	ID       int    `json:"id,omitempty"`
	Name     string `json:"name"`
	Domain   string `json:"domain,omitempty"`
	Location string `json:"location,omitempty"`
}

type WantlistItem struct {
	ID           int    `json:"id,omitempty"`
	UserID       int    `json:"userId,omitempty"`
	ProductName  string `json:"productName"`
	Category     string `json:"category,omitempty"`
	Description  string `json:"description,omitempty"`
	PriceMin     int    `json:"priceMin,omitempty"`
	PriceMax     int    `json:"priceMax,omitempty"`
	MonthsOldMax int    `json:"monthsOldMax,omitempty"`
	UpdatedAt    string `json:"updatedAt,omitempty"`
}

type WishlistItem struct {
	WishlistID int `json:"wishlistId,omitempty"`
	UserID     int `json:"userId,omitempty"`
	ProductID  int `json:"productId"`
}

type Notification struct {
	ID            int    `json:"id"`
	Type          string `json:"type,omitempty"`
	Title         string `json:"title"`
	Message       string `json:"message"`
	IsRead        bool   `json:"isRead"`
	ReferenceID   int    `json:"referenceId,omitempty"`
	ReferenceType string `json:"referenceType,omitempty"`
}

type Feedback struct {
	ID      int    `json:"id,omitempty"`
	UserID  int    `json:"userId,omitempty"`
	Rating  int    `json:"rating,omitempty"`
	Comment string `json:"comment"`
}

type Dashboard struct {
	User         User           `json:"user"`
	ActiveDeals  []Product      `json:"activeDeals,omitempty"`
	SoldProducts []Product      `json:"soldProducts,omitempty"`
	Wantlist     []WantlistItem `json:"wantlist,omitempty"`
}

// ============================================================================
// Auth Types
// ============================================================================

type RegisterRequest struct {
	Name         string `json:"name"`
	Email        string `json:"email"`
	Password     string `json:"password"`
	UniversityID int    `json:"universityId,omitempty"`
}

type LoginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

type AuthResponse struct {
	Token        string `json:"token"`
	RefreshToken string `json:"refreshToken,omitempty"`
	UserID       int    `json:"userId"`
	Name         string `json:"name,omitempty"`
	Email        string `json:"email,omitempty"`
}

type OtpResponse struct {
	Success bool   `json:"success"`
	Message string `json:"message,omitempty"`
}
