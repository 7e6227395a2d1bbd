package domain

import (
	"slices"
	"time"

	"djnic/internal/core/events"
	pstrings "djnic/internal/platform/strings"
)

// TitleMax is the width of notifications.title
const TitleMax = 200

// Notification types
const (
	TypeSingle = "single"
	TypeDigest = "digest"
)

// PendingEvent is an unprocessed event row
type PendingEvent struct {
	ID        int64
	Kind      events.Kind
	Subject   events.Subject
	Data      map[string]any
	CreatedAt time.Time
}

// Description returns the human text of the event payload
func (e PendingEvent) Description() string {
	s, _ := e.Data["description"].(string)
	return s
}

// Title is the notification title: the description, or the kind label when the payload has none
func (e PendingEvent) Title() string {
	if d := e.Description(); d != "" {
		return pstrings.Truncate(d, TitleMax, "...")
	}
	return e.Kind.Label()
}

// Target is the subscribable wrapper of a subject
type Target struct {
	ID int64
}

// Subscription is an active (user, target) pair
type Subscription struct {
	ID         int64
	UserID     int64
	EventTypes []string
}

// Wants reports whether kind is in the subscription's event types
func (s Subscription) Wants(kind events.Kind) bool {
	return slices.Contains(s.EventTypes, string(kind))
}

// NewNotification is a notification row to insert
type NewNotification struct {
	UserID    int64
	EventID   int64
	Type      string
	Title     string
	Summary   string
	EventData map[string]any
	EventDate time.Time
}

// Params drive one processing run
type Params struct {
	Limit  int
	DryRun bool
}

// Result summarizes a run.
// Skipped counts events that produced no notification; Failed events stay unprocessed.
type Result struct {
	Processed     int
	Notifications int
	Skipped       int
	Failed        int
}
