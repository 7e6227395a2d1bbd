// Package guardrails keeps two invocations of the same batch job from overlapping
package guardrails

import (
	"context"
	"errors"
	"sync"
	"time"

	"djnic/internal/modkit/repokit"
	perr "djnic/internal/platform/errors"
	"djnic/internal/platform/logger"
	jobsdom "djnic/internal/services/jobs/domain"

	"github.com/google/uuid"
)

// ErrLeaseHeld signals another invocation owns the job already
var ErrLeaseHeld = perr.New(perr.ErrorCodeConflict, "jobs: lease already held")

// ErrLeaseLost is the cause of a run cancelled because its row was taken over
var ErrLeaseLost = perr.New(perr.ErrorCodeConflict, "jobs: lease lost")

// Lease runs work under a job_leases row keyed by job name.
// The row expires after TTL so a crashed run never blocks the next one forever;
// a live run pushes the expiry forward every Heartbeat.
type Lease struct {
	DB     repokit.TxRunner
	Binder repokit.Binder[jobsdom.LeaseRepo]
	TTL    time.Duration

	// Heartbeat is the extension period; TTL/3 when zero
	Heartbeat time.Duration

	// Owner identifies this process; a fresh uuid when zero
	Owner uuid.UUID
}

// MakeLease builds a Lease with a 30 minute default TTL
func MakeLease(db repokit.TxRunner, binder repokit.Binder[jobsdom.LeaseRepo], ttl time.Duration) *Lease {
	if ttl <= 0 {
		ttl = 30 * time.Minute
	}
	return &Lease{DB: db, Binder: binder, TTL: ttl, Owner: uuid.New()}
}

// Run claims job, runs do and releases the lease. ErrLeaseHeld when not claimed.
func (l *Lease) Run(ctx context.Context, job string, do func(context.Context) error) error {
	if l.Owner == uuid.Nil {
		l.Owner = uuid.New()
	}
	log := logger.C(ctx).With().Str("job", job).Str("owner", l.Owner.String()).Logger()

	var claimed bool
	if err := l.DB.Tx(ctx, func(q repokit.Queryer) error {
		ok, err := l.Binder.Bind(q).Claim(ctx, job, l.Owner, l.TTL)
		claimed = ok
		return err
	}); err != nil {
		return err
	}
	if !claimed {
		return ErrLeaseHeld
	}
	log.Debug().Dur("ttl", l.TTL).Msg("lease claimed")

	wctx, cancel := context.WithCancelCause(logger.WithJob(ctx, job))
	done := make(chan struct{})
	var beat sync.WaitGroup
	beat.Add(1)
	go func() {
		defer beat.Done()
		l.heartbeat(wctx, job, done, cancel)
	}()

	defer func() {
		close(done)
		beat.Wait()
		cancel(nil)

		// release on a fresh context so a cancelled run still frees the row
		rctx, cancel := context.WithTimeout(context.WithoutCancel(ctx), 5*time.Second)
		defer cancel()
		if err := l.DB.Tx(rctx, func(q repokit.Queryer) error {
			return l.Binder.Bind(q).Release(rctx, job, l.Owner)
		}); err != nil {
			log.Warn().Err(err).Msg("lease release failed; it will expire")
		}
	}()

	err := do(wctx)
	if err != nil && errors.Is(context.Cause(wctx), ErrLeaseLost) {
		return perr.Wrap(ErrLeaseLost, perr.ErrorCodeConflict, err.Error())
	}
	return err
}

// heartbeat extends the lease until done closes; losing the row cancels the run
func (l *Lease) heartbeat(ctx context.Context, job string, done <-chan struct{}, cancel context.CancelCauseFunc) {
	every := l.Heartbeat
	if every <= 0 {
		every = l.TTL / 3
	}
	log := logger.C(ctx).With().Str("owner", l.Owner.String()).Logger()
	t := time.NewTicker(every)
	defer t.Stop()
	for {
		select {
		case <-done:
			return
		case <-ctx.Done():
			return
		case <-t.C:
		}
		var held bool
		err := l.DB.Tx(ctx, func(q repokit.Queryer) error {
			ok, err := l.Binder.Bind(q).Extend(ctx, job, l.Owner, l.TTL)
			held = ok
			return err
		})
		switch {
		case err != nil:
			log.Warn().Err(err).Msg("lease extend failed; retrying next beat")
		case !held:
			log.Error().Msg("lease taken over; cancelling run")
			cancel(ErrLeaseLost)
			return
		default:
			log.Debug().Dur("ttl", l.TTL).Msg("lease extended")
		}
	}
}

// Skip reports whether err means the job was skipped because it is already running
func Skip(err error) bool { return errors.Is(err, ErrLeaseHeld) }
