// Package domain defines the subscription and notification REST ports
package domain

import (
	"context"

	"djnic/internal/core/events"

	"github.com/google/uuid"
)

// StorageRepo covers subscriptions, their targets and the notification inbox
type StorageRepo interface {
	// SubjectID resolves the internal id of a domain or registrant from its public uid
	SubjectID(ctx context.Context, kind events.SubjectKind, uid uuid.UUID) (int64, error)
	// EnsureTarget returns the target id for the subject, creating it on first use
	EnsureTarget(ctx context.Context, s events.Subject) (int64, error)
	UpsertSubscription(ctx context.Context, in UpsertSubscription) (uuid.UUID, error)
	Subscription(ctx context.Context, userID int64, uid uuid.UUID) (Subscription, error)
	ActiveSubscriptions(ctx context.Context, userID int64) ([]Subscription, error)
	Deactivate(ctx context.Context, userID int64, uid uuid.UUID) error

	Notifications(ctx context.Context, q NotificationQuery) ([]Notification, error)
	MarkRead(ctx context.Context, userID int64, uid uuid.UUID) error
	DeleteNotification(ctx context.Context, userID int64, uid uuid.UUID) error

	// FindDomains matches a full name (ejemplo.com.ar) or a bare name across zones
	FindDomains(ctx context.Context, name string, limit int) ([]DomainRef, error)
	FindRegistrants(ctx context.Context, legalUID string) ([]RegistrantRef, error)
}

// ServicePort is used by the HTTP layer
type ServicePort interface {
	Subscribe(ctx context.Context, userID int64, in SubscribeInput) (Subscription, error)
	Subscriptions(ctx context.Context, userID int64) ([]Subscription, error)
	Unsubscribe(ctx context.Context, userID int64, uid string) error

	Notifications(ctx context.Context, q NotificationQuery) ([]Notification, error)
	MarkRead(ctx context.Context, userID int64, uid string) error
	DeleteNotification(ctx context.Context, userID int64, uid string) error

	Domains(ctx context.Context, name string) ([]DomainRef, error)
	Registrants(ctx context.Context, legalUID string) ([]RegistrantRef, error)
}
