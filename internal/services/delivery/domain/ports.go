// Package domain defines the delivery stage ports, types and the sender registry
package domain

import (
	"context"
	"time"
)

// Sender delivers notifications over one channel type
type Sender interface {
	ChannelType() string
	// ActiveChannels returns the active and verified channels of the user
	ActiveChannels(ctx context.Context, userID int64) ([]Channel, error)
	Format(n Notification) string
	// Send makes one attempt; failures are reported in the result, not as errors
	Send(ctx context.Context, ch Channel, n Notification) SendResult
}

// ChannelStats is implemented by senders whose channels keep health counters
type ChannelStats interface {
	Succeeded(ctx context.Context, ch Channel, at time.Time) error
	Failed(ctx context.Context, ch Channel, msg string, at time.Time) error
}

// StorageRepo persists delivery bookkeeping
type StorageRepo interface {
	PendingNotifications(ctx context.Context, f PendingFilter) ([]Notification, error)
	// Claim gets or creates the delivery row for the unique key
	Claim(ctx context.Context, notificationID int64, channelType string, channelID int64) (Delivery, error)
	MarkSent(ctx context.Context, id int64, externalID string, at time.Time) error
	MarkFailed(ctx context.Context, id int64, msg string, at time.Time) error
}

// ServicePort is what the batch binary calls
type ServicePort interface {
	Deliver(ctx context.Context, n Notification, channel string) (Outcome, error)
	Run(ctx context.Context, p Params) (Result, error)
}
