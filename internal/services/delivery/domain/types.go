package domain

import "time"

// Delivery statuses
const (
	StatusPending = "pending"
	StatusSent    = "sent"
	StatusFailed  = "failed"
	StatusSkipped = "skipped"
)

// ChannelTelegram is the only channel type implemented
const ChannelTelegram = "telegram"

// DefaultMaxRetries caps retried failed deliveries when Params.MaxRetries is zero
const DefaultMaxRetries = 3

// UnknownError is recorded when a sender fails without a message
const UnknownError = "Unknown error"

// Notification is what gets delivered
type Notification struct {
	ID        int64
	UID       string
	UserID    int64
	Title     string
	Summary   string
	EventData map[string]any
	EventDate *time.Time
	CreatedAt time.Time
}

// Channel is one verified destination of a user
type Channel struct {
	ID             int64
	UserID         int64
	ChatID         int64
	ParseMode      string
	DisablePreview bool
}

// SendResult is a sender's answer for one attempt
type SendResult struct {
	Success    bool
	ExternalID string
	Error      string
}

// Delivery is the bookkeeping row of (notification, channel type, channel)
type Delivery struct {
	ID         int64
	Status     string
	RetryCount int
}

// PendingFilter selects notifications that still need a delivery
type PendingFilter struct {
	Limit        int
	ChannelTypes []string
	RetryFailed  bool
	MaxRetries   int
}

// Params drive one delivery run
type Params struct {
	Limit       int
	Channel     string
	DryRun      bool
	RetryFailed bool
	MaxRetries  int
}

// Outcome counts what Deliver did for one notification
type Outcome struct {
	Sent    int
	Failed  int
	Skipped int
}

// Result summarizes a run; Planned counts the sends a dry run would attempt
type Result struct {
	Notifications int
	Sent          int
	Failed        int
	Skipped       int
	Planned       int
}
