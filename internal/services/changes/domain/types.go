package domain

import (
	"time"

	"djnic/internal/core/diff"
	"djnic/internal/core/events"
	"djnic/internal/core/priority"
)

// Observation is one freshly fetched registry record.
// Name is the label left of the zone, e.g. "ejemplo" in zone "com.ar".
type Observation struct {
	Name     string        `json:"name" validate:"required,max=253" example:"ejemplo"`
	Zone     string        `json:"zone" validate:"required,max=63" example:"com.ar"`
	ReadAt   time.Time     `json:"read_at,omitempty" example:"2025-06-01T12:00:00Z"`
	Snapshot diff.Snapshot `json:"snapshot"`
}

// Zone is a registry zone and the location its dates are rendered in
type Zone struct {
	ID   int64
	Name string
	TZ   string
}

// StoredDomain is a domain row with the snapshot rebuilt from its columns
type StoredDomain struct {
	ID         int64
	UID        string
	Name       string
	Snapshot   diff.Snapshot
	Registrant *events.Registrant
}

// DomainUpdate is what a visit writes back onto the domain row
type DomainUpdate struct {
	ID           int64
	Status       string
	Registered   *time.Time
	Changed      *time.Time
	Expire       *time.Time
	RegistrantID *int64
	ReadAt       time.Time
	// UpdatedAt is nil on a confirmatory visit, leaving the column as is
	UpdatedAt *time.Time
}

// ApplyResult reports what one observation changed
type ApplyResult struct {
	DomainID int64              `json:"domain_id"`
	Domain   string             `json:"domain"`
	Created  bool               `json:"created"`
	Changes  []diff.FieldChange `json:"changes"`
	Events   []events.Event     `json:"events"`
	Score    priority.Score     `json:"score"`
}
