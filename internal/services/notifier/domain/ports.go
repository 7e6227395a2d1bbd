// Package domain defines the notification stage ports and types
package domain

import (
	"context"
	"time"

	"djnic/internal/core/events"
)

// StorageRepo reads events and subscriptions and writes notifications
type StorageRepo interface {
	// UnprocessedEvents returns up to limit events oldest first
	UnprocessedEvents(ctx context.Context, limit int) ([]PendingEvent, error)
	TargetBySubject(ctx context.Context, s events.Subject) (Target, bool, error)
	ActiveSubscriptions(ctx context.Context, targetID int64) ([]Subscription, error)
	CreateNotification(ctx context.Context, n NewNotification) (int64, error)
	TouchSubscription(ctx context.Context, id int64, at time.Time) error
	TouchTarget(ctx context.Context, id int64, at time.Time) error
	MarkProcessed(ctx context.Context, eventID int64) error
}

// ProcessorPort is what the batch binary calls
type ProcessorPort interface {
	Process(ctx context.Context, p Params) (Result, error)
}
