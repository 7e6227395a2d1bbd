//go:build integration

package guardrails_test

import (
	"context"
	"testing"
	"time"

	"djnic/internal/platform/store/pgtest"
	"djnic/internal/services/jobs/guardrails"
	jobsrepo "djnic/internal/services/jobs/repo"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLeaseExcludesConcurrentRuns(t *testing.T) {
	st := pgtest.Open(t)
	ctx := context.Background()

	a := guardrails.MakeLease(st.PG, jobsrepo.NewPG(), time.Minute)
	b := guardrails.MakeLease(st.PG, jobsrepo.NewPG(), time.Minute)

	var inner error
	err := a.Run(ctx, "events", func(ctx context.Context) error {
		inner = b.Run(ctx, "events", func(context.Context) error { return nil })
		return nil
	})
	require.NoError(t, err)
	assert.True(t, guardrails.Skip(inner))

	// released on return, so the next run claims it
	require.NoError(t, b.Run(ctx, "events", func(context.Context) error { return nil }))
}

func TestLeaseTakesOverExpiredRow(t *testing.T) {
	st := pgtest.Open(t)
	ctx := context.Background()

	_, err := st.PG.Exec(ctx, `INSERT INTO job_leases (name, owner, expires_at)
		VALUES ('notify', gen_random_uuid(), now() - interval '1 minute')`)
	require.NoError(t, err)

	l := guardrails.MakeLease(st.PG, jobsrepo.NewPG(), time.Minute)
	ran := false
	require.NoError(t, l.Run(ctx, "notify", func(context.Context) error { ran = true; return nil }))
	assert.True(t, ran)
}

func TestLeaseExtendOnlyForOwner(t *testing.T) {
	st := pgtest.Open(t)
	ctx := context.Background()
	repo := jobsrepo.NewPG().Bind(st.PG)

	owner, other := uuid.New(), uuid.New()
	ok, err := repo.Claim(ctx, "priority", owner, time.Minute)
	require.NoError(t, err)
	require.True(t, ok)

	ok, err = repo.Extend(ctx, "priority", owner, time.Hour)
	require.NoError(t, err)
	assert.True(t, ok)

	var left int64
	require.NoError(t, st.PG.QueryRow(ctx,
		`SELECT EXTRACT(EPOCH FROM expires_at - now())::bigint FROM job_leases WHERE name = 'priority'`).Scan(&left))
	assert.Greater(t, left, int64(50*60))

	ok, err = repo.Extend(ctx, "priority", other, time.Hour)
	require.NoError(t, err)
	assert.False(t, ok)
}
