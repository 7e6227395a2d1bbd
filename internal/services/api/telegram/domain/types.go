package domain

import (
	"strconv"
	"strings"
	"time"
)

// Message directions in telegram_messages
const (
	DirectionIn  = "in"
	DirectionOut = "out"
)

// Toggle actions
const (
	ActionEnable  = "enable"
	ActionDisable = "disable"
	ActionToggle  = "toggle"
)

// TokenLen is the length of a link token
const TokenLen = 16

// Channel is a linked chat with the name of its web user
type Channel struct {
	ID         int64
	UserID     int64
	UserName   string
	ChatID     int64
	Username   string
	FirstName  string
	LastName   string
	IsActive   bool
	IsVerified bool
	LastSentAt *time.Time
	ErrorCount int
}

// DisplayName is the Telegram side name shown to the web user
func (c Channel) DisplayName() string {
	if c.Username != "" {
		return "@" + c.Username
	}
	if n := strings.TrimSpace(c.FirstName + " " + c.LastName); n != "" {
		return n
	}
	return "Chat " + strconv.FormatInt(c.ChatID, 10)
}

// ChatProfile is what Telegram tells us about the sender of a message
type ChatProfile struct {
	ChatID    int64
	Username  string
	FirstName string
	LastName  string
}

// StoredToken is a link token row
type StoredToken struct {
	ID        int64
	UserID    int64
	Token     string
	ExpiresAt time.Time
}

// LinkToken is handed to the web user
type LinkToken struct {
	Token        string    `json:"token"`
	ExpiresAt    time.Time `json:"expires_at"`
	Instructions string    `json:"instructions"`
}

// Redeemed reports the outcome of a /link attempt
type Redeemed struct {
	// UserName is the web user the chat is now linked to
	UserName string
	// Invalid is set when the token is unknown, used or expired
	Invalid bool
	// LinkedTo names the other web user when the chat already belongs to someone else
	LinkedTo string
}

// Subscription is one line of the /suscripciones listing
type Subscription struct {
	SubjectKind  string
	Identifier   string
	EventTypes   []string
	DeliveryMode string
}

// MessageLog is one row of telegram_messages
type MessageLog struct {
	ChannelID int64
	ChatID    int64
	Direction string
	Text      string
	MessageID int64
	Raw       []byte
}

// Status is the REST view of the caller's channel
type Status struct {
	Linked      bool       `json:"linked"`
	Message     string     `json:"message,omitempty"`
	IsActive    *bool      `json:"is_active,omitempty"`
	IsVerified  *bool      `json:"is_verified,omitempty"`
	DisplayName string     `json:"telegram_name,omitempty"`
	LastSentAt  *time.Time `json:"last_sent_at,omitempty"`
	ErrorCount  *int       `json:"error_count,omitempty"`
}

// ToggleRequest switches notifications; an empty action flips the current state
type ToggleRequest struct {
	Action string `json:"action" validate:"omitempty,oneof=enable disable toggle"`
}

// ToggleResult is the channel state after a toggle
type ToggleResult struct {
	IsActive bool   `json:"is_active"`
	Message  string `json:"message"`
}

// UnlinkResult confirms an unlink
type UnlinkResult struct {
	Success bool   `json:"success"`
	Message string `json:"message"`
}
