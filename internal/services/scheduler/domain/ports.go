// Package domain defines the scheduler ports and types
package domain

import (
	"context"
	"time"

	"djnic/internal/core/priority"
	"djnic/internal/modkit/repokit"
)

// StorageRepo reads domain state and writes scores
type StorageRepo interface {
	// Page returns up to f.Limit domains with id > f.AfterID ordered by id
	Page(ctx context.Context, f PageFilter) ([]DomainState, error)

	// BulkUpdate writes every update in one statement
	BulkUpdate(ctx context.Context, us []Update) (int64, error)

	// State loads one domain
	State(ctx context.Context, id int64) (DomainState, error)

	// Top locks up to k domains with the highest priority, skipping rows another picker holds
	Top(ctx context.Context, k int) ([]Candidate, error)

	// Handout zeroes the priority of id and keeps it out of recomputes until next
	Handout(ctx context.Context, id int64, next time.Time) error
}

// RunnerPort is what the batch binary and the ingest path call
type RunnerPort interface {
	Recompute(ctx context.Context, p Params) (Result, error)

	// RescoreOne scores one domain on q so it joins the caller's transaction
	RescoreOne(ctx context.Context, q repokit.Queryer, id int64) (priority.Score, error)
}

// PickerPort hands the next domain to poll to the external fetcher
type PickerPort interface {
	Next(ctx context.Context, k int) (Candidate, error)
}
