// Package service recomputes domain priorities in keyset pages
package service

import (
	"context"
	"math/rand/v2"
	"time"

	"djnic/internal/core/diff"
	"djnic/internal/core/priority"
	"djnic/internal/modkit/repokit"
	perr "djnic/internal/platform/errors"
	"djnic/internal/platform/logger"
	ptime "djnic/internal/platform/time"
	scheddom "djnic/internal/services/scheduler/domain"
)

// Service wires TxRunner + Binder into the scheduler operations
type Service struct {
	DB     repokit.TxRunner
	Binder repokit.Binder[scheddom.StorageRepo]
	Clock  ptime.Clock

	sleep func(context.Context, time.Duration) error
	pick  func(n int) int
}

// New constructs the scheduler service
func New(db repokit.TxRunner, binder repokit.Binder[scheddom.StorageRepo], clock ptime.Clock) *Service {
	if db == nil {
		panic("scheduler.Service requires a non nil TxRunner")
	}
	if binder == nil {
		panic("scheduler.Service requires a non nil Repo binder")
	}
	return &Service{DB: db, Binder: binder, Clock: clock, sleep: sleepCtx, pick: rand.IntN}
}

func sleepCtx(ctx context.Context, d time.Duration) error {
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-t.C:
		return nil
	}
}

// Score maps a stored domain to the scorer input at now
func Score(d scheddom.DomainState, now time.Time) priority.Score {
	in := priority.Input{
		ExpireDays:  priority.ExpireDays(d.Expire, now),
		ReadedDays:  priority.DaysSince(d.ReadedAt, now, priority.DaysCap, priority.DaysCap),
		UpdatedDays: priority.DaysSince(d.UpdatedAt, now, priority.DaysCap, 0),
	}
	if d.Status == diff.StatusAvailable {
		in.Availability = priority.Available
	}
	return priority.Calculate(in, now)
}

func withDefaults(p scheddom.Params) scheddom.Params {
	if p.Chunk <= 0 {
		p.Chunk = 1000
	}
	if p.Bulk <= 0 {
		p.Bulk = 500
	}
	return p
}

// Recompute scores due domains page by page and flushes in bulk batches
func (s *Service) Recompute(ctx context.Context, p scheddom.Params) (scheddom.Result, error) {
	p = withDefaults(p)
	l := logger.C(ctx).With().Str("mod", "scheduler").Logger()
	now := s.Clock.Now()
	res := scheddom.Result{Bands: map[string]int{}}

	var pending []scheddom.Update
	flush := func() error {
		if len(pending) == 0 || p.DryRun {
			pending = pending[:0]
			return nil
		}
		err := s.DB.Tx(ctx, func(q repokit.Queryer) error {
			n, err := s.Binder.Bind(q).BulkUpdate(ctx, pending)
			res.Updated += int(n)
			return err
		})
		pending = pending[:0]
		return err
	}

	var after int64
	for {
		if err := ctx.Err(); err != nil {
			return res, err
		}
		page, err := s.Binder.Bind(s.DB).Page(ctx, scheddom.PageFilter{
			AfterID:          after,
			Limit:            p.Chunk,
			All:              p.All,
			NonAvailableOnly: p.NonAvailableOnly,
			Now:              now,
		})
		if err != nil {
			return res, err
		}
		if len(page) == 0 {
			break
		}
		res.Chunks++
		for _, d := range page {
			sc := Score(d, now)
			res.Read++
			res.Bands[sc.Band]++
			pending = append(pending, scheddom.Update{ID: d.ID, Priority: sc.Priority, NextCheckAt: sc.NextCheckAt})
			l.Debug().Int64("domain_id", d.ID).Int("priority", sc.Priority).Str("band", sc.Band).Msg("scored")
			if len(pending) >= p.Bulk {
				if err := flush(); err != nil {
					return res, err
				}
			}
		}
		after = page[len(page)-1].ID
		if len(page) < p.Chunk {
			break
		}
		if p.Sleep > 0 && p.SleepEvery > 0 && res.Chunks%p.SleepEvery == 0 {
			l.Debug().Int("chunks", res.Chunks).Dur("sleep", p.Sleep).Msg("pausing")
			if err := s.sleep(ctx, p.Sleep); err != nil {
				return res, err
			}
		}
	}
	if err := flush(); err != nil {
		return res, err
	}
	l.Info().Int("read", res.Read).Int("updated", res.Updated).Int("chunks", res.Chunks).Bool("dry_run", p.DryRun).Msg("recompute done")
	return res, nil
}

// RescoreOne scores one domain on q and writes it back
func (s *Service) RescoreOne(ctx context.Context, q repokit.Queryer, id int64) (priority.Score, error) {
	repo := s.Binder.Bind(q)
	d, err := repo.State(ctx, id)
	if err != nil {
		return priority.Score{}, err
	}
	sc := Score(d, s.Clock.Now())
	if _, err := repo.BulkUpdate(ctx, []scheddom.Update{{ID: id, Priority: sc.Priority, NextCheckAt: sc.NextCheckAt}}); err != nil {
		return priority.Score{}, err
	}
	return sc, nil
}

// Next hands out one of the k highest ranked domains at random and pushes it
// HandoutDelay out so concurrent pollers spread over the top of the ranking.
// The returned candidate carries the priority it had when picked.
func (s *Service) Next(ctx context.Context, k int) (scheddom.Candidate, error) {
	if k <= 0 {
		k = scheddom.HandoutPool
	}
	var out scheddom.Candidate
	err := s.DB.Tx(ctx, func(q repokit.Queryer) error {
		repo := s.Binder.Bind(q)
		top, err := repo.Top(ctx, k)
		if err != nil {
			return err
		}
		if len(top) == 0 {
			return perr.NotFoundf("no domains to hand out")
		}
		out = top[s.pick(len(top))]
		next := s.Clock.Now().Add(scheddom.HandoutDelay)
		if err := repo.Handout(ctx, out.ID, next); err != nil {
			return err
		}
		out.NextCheckAt = &next
		return nil
	})
	if err != nil {
		return scheddom.Candidate{}, err
	}
	logger.C(ctx).Debug().Str("mod", "scheduler").Int64("domain_id", out.ID).Int("priority", out.Priority).Msg("handed out")
	return out, nil
}
