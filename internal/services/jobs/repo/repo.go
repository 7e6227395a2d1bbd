// Package repo stores job leases in Postgres
package repo

import (
	"context"
	"fmt"
	"time"

	"djnic/internal/modkit/repokit"
	perr "djnic/internal/platform/errors"
	jobsdom "djnic/internal/services/jobs/domain"

	"github.com/google/uuid"
)

// NewPG returns a binder for the Postgres lease repo
func NewPG() repokit.Binder[jobsdom.LeaseRepo] {
	return repokit.BindFunc[jobsdom.LeaseRepo](func(q repokit.Queryer) jobsdom.LeaseRepo { return &pgRepo{q: q} })
}

type pgRepo struct{ q repokit.Queryer }

func interval(d time.Duration) string { return fmt.Sprintf("%d seconds", int64(d/time.Second)) }

// Claim inserts the lease or takes over an expired one
func (r *pgRepo) Claim(ctx context.Context, name string, owner uuid.UUID, ttl time.Duration) (bool, error) {
	rows, err := r.q.Query(ctx, `
		INSERT INTO job_leases (name, owner, acquired_at, expires_at)
		VALUES ($1, $2, now(), now() + ($3)::interval)
		ON CONFLICT (name) DO UPDATE
		   SET owner = EXCLUDED.owner, acquired_at = EXCLUDED.acquired_at, expires_at = EXCLUDED.expires_at
		 WHERE job_leases.expires_at <= now()
		RETURNING true`,
		name, owner, interval(ttl),
	)
	if err != nil {
		return false, perr.FromPostgres(err, "claim lease")
	}
	defer rows.Close()
	claimed := rows.Next()
	if err := rows.Err(); err != nil {
		return false, perr.FromPostgres(err, "claim lease")
	}
	return claimed, nil
}

// Extend moves expires_at forward while owner still holds the row
func (r *pgRepo) Extend(ctx context.Context, name string, owner uuid.UUID, ttl time.Duration) (bool, error) {
	tag, err := r.q.Exec(ctx, `
		UPDATE job_leases SET expires_at = now() + ($3)::interval
		 WHERE name = $1 AND owner = $2`,
		name, owner, interval(ttl),
	)
	if err != nil {
		return false, perr.FromPostgres(err, "extend lease")
	}
	return tag.RowsAffected() == 1, nil
}

// Release deletes the lease row if owner still holds it
func (r *pgRepo) Release(ctx context.Context, name string, owner uuid.UUID) error {
	_, err := r.q.Exec(ctx, `DELETE FROM job_leases WHERE name = $1 AND owner = $2`, name, owner)
	return perr.FromPostgres(err, "release lease")
}
