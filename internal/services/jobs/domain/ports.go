// Package domain defines the job lease ports
package domain

import (
	"context"
	"time"

	"github.com/google/uuid"
)

// LeaseRepo claims and releases named leases in job_leases
type LeaseRepo interface {
	// Claim takes name for owner unless another owner holds an unexpired lease
	Claim(ctx context.Context, name string, owner uuid.UUID, ttl time.Duration) (bool, error)

	// Extend pushes the expiry of owner's lease to now+ttl; false when owner no longer holds it
	Extend(ctx context.Context, name string, owner uuid.UUID, ttl time.Duration) (bool, error)

	// Release drops the lease when owner still holds it
	Release(ctx context.Context, name string, owner uuid.UUID) error
}

// RunnerPort runs do while holding the lease for job
type RunnerPort interface {
	Run(ctx context.Context, job string, do func(context.Context) error) error
}
