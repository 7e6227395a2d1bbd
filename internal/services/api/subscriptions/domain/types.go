package domain

import (
	"time"

	"djnic/internal/core/events"

	"github.com/google/uuid"
)

// Delivery modes; only immediate is delivered, the others are stored for digests
const (
	ModeImmediate = "immediate"
	ModeDaily     = "daily"
	ModeWeekly    = "weekly"
)

// Notification list bounds
const (
	DefaultListLimit = 50
	MaxListLimit     = 200
)

// LookupLimit caps a domain or registrant lookup
const LookupLimit = 50

// SubscribeInput follows a domain or registrant by its public uid.
// An empty EventTypes subscribes to every kind.
type SubscribeInput struct {
	TargetKind   string   `json:"target_kind" validate:"required,oneof=domain registrant" example:"domain"`
	TargetID     string   `json:"target_id" validate:"required,uuid" example:"1f0c1c7e-6f43-4b5e-9a55-0c6c1c1f3e2a"`
	EventTypes   []string `json:"event_types" validate:"omitempty,dive,oneof=registered renewed expired dropped dns_changed registrant_changed"`
	DeliveryMode string   `json:"delivery_mode" validate:"omitempty,oneof=immediate daily weekly" example:"immediate"`
}

// Subject returns the resolved kind and uid
func (in SubscribeInput) Subject() (events.SubjectKind, uuid.UUID, error) {
	id, err := uuid.Parse(in.TargetID)
	return events.SubjectKind(in.TargetKind), id, err
}

// Subscription is the REST view of one subscription
type Subscription struct {
	UID          uuid.UUID  `json:"uid"`
	TargetKind   string     `json:"target_kind"`
	TargetID     uuid.UUID  `json:"target_id"`
	Identifier   string     `json:"identifier" example:"ejemplo.com.ar"`
	EventTypes   []string   `json:"event_types"`
	DeliveryMode string     `json:"delivery_mode"`
	IsActive     bool       `json:"is_active"`
	CreatedAt    time.Time  `json:"created_at"`
	NotifiedAt   *time.Time `json:"last_notified_at,omitempty"`
}

// UpsertSubscription is what the repo writes for (user, target)
type UpsertSubscription struct {
	UserID       int64
	TargetID     int64
	EventTypes   []string
	DeliveryMode string
}

// NotificationQuery filters the caller's notifications
type NotificationQuery struct {
	UserID int64
	Unread bool
	Limit  int
}

// Notification is the REST view of one notification
type Notification struct {
	UID       uuid.UUID      `json:"uid"`
	Type      string         `json:"type"`
	Title     string         `json:"title"`
	Summary   string         `json:"summary"`
	EventData map[string]any `json:"event_data"`
	IsRead    bool           `json:"is_read"`
	EventDate *time.Time     `json:"event_date,omitempty"`
	CreatedAt time.Time      `json:"created_at"`
}

// DomainRef is a subscribable domain; UID is what SubscribeInput.TargetID takes
type DomainRef struct {
	UID        uuid.UUID      `json:"uid"`
	Name       string         `json:"name" example:"ejemplo.com.ar"`
	Status     string         `json:"status" example:"no disponible"`
	Expire     *time.Time     `json:"expire,omitempty"`
	Registrant *RegistrantRef `json:"registrant,omitempty"`
}

// RegistrantRef is a subscribable registrant
type RegistrantRef struct {
	UID      uuid.UUID `json:"uid"`
	Name     string    `json:"name" example:"ACME SA"`
	LegalUID string    `json:"legal_uid" example:"20123456789"`
}
