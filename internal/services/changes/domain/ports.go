// Package domain defines the ports of the change pipeline
package domain

import (
	"context"

	"djnic/internal/core/diff"
	"djnic/internal/core/events"
	"djnic/internal/core/priority"
	"djnic/internal/modkit/repokit"
)

// StorageRepo persists registry state, change records and events
type StorageRepo interface {
	EnsureZone(ctx context.Context, name, tz string) (Zone, error)
	LoadDomain(ctx context.Context, zoneID int64, name string) (StoredDomain, bool, error)
	CreateDomain(ctx context.Context, zoneID int64, name string) (StoredDomain, error)
	UpsertRegistrant(ctx context.Context, r diff.RegistrantSnapshot) (events.Registrant, error)
	// RegistrantByLegalUID returns nil when no registrant holds uid
	RegistrantByLegalUID(ctx context.Context, uid string) (*events.Registrant, error)
	ReplaceDNS(ctx context.Context, domainID int64, hosts []string) error
	UpdateDomain(ctx context.Context, u DomainUpdate) error
	InsertRecord(ctx context.Context, r diff.Record) (int64, error)
	InsertEvents(ctx context.Context, evs []events.Event) error
}

// Rescorer scores a domain inside the caller's transaction
type Rescorer interface {
	RescoreOne(ctx context.Context, q repokit.Queryer, id int64) (priority.Score, error)
}

// ServicePort is the public entrypoint of the change pipeline
type ServicePort interface {
	Apply(ctx context.Context, obs Observation) (ApplyResult, error)
}
