// Package service turns unprocessed events into per-user notifications
package service

import (
	"context"

	"djnic/internal/modkit/repokit"
	"djnic/internal/platform/logger"
	ptime "djnic/internal/platform/time"
	ntdom "djnic/internal/services/notifier/domain"
)

// DefaultLimit caps one run when Params.Limit is zero
const DefaultLimit = 1000

// Service wires TxRunner + Binder into Process
type Service struct {
	DB     repokit.TxRunner
	Binder repokit.Binder[ntdom.StorageRepo]
	Clock  ptime.Clock
}

// New constructs the service
func New(db repokit.TxRunner, binder repokit.Binder[ntdom.StorageRepo], clock ptime.Clock) *Service {
	if db == nil {
		panic("notifier.Service requires a non nil TxRunner")
	}
	if binder == nil {
		panic("notifier.Service requires a non nil Repo binder")
	}
	return &Service{DB: db, Binder: binder, Clock: clock}
}

// Process fans out up to p.Limit events; a failing event stays unprocessed and the run continues
func (s *Service) Process(ctx context.Context, p ntdom.Params) (ntdom.Result, error) {
	var res ntdom.Result
	if p.Limit <= 0 {
		p.Limit = DefaultLimit
	}
	l := logger.C(ctx).With().Str("mod", "notifier").Bool("dry_run", p.DryRun).Logger()

	pending, err := s.Binder.Bind(s.DB).UnprocessedEvents(ctx, p.Limit)
	if err != nil {
		return res, err
	}
	l.Debug().Int("events", len(pending)).Msg("loaded pending events")

	for _, e := range pending {
		if err := ctx.Err(); err != nil {
			return res, err
		}
		var n int
		if p.DryRun {
			n, err = s.match(ctx, s.Binder.Bind(s.DB), e)
		} else {
			err = s.DB.Tx(ctx, func(q repokit.Queryer) error {
				var ferr error
				n, ferr = s.fanOut(ctx, s.Binder.Bind(q), e)
				return ferr
			})
		}
		if err != nil {
			res.Failed++
			l.Error().Err(err).Int64("event_id", e.ID).Str("kind", string(e.Kind)).Msg("event failed")
			continue
		}
		res.Processed++
		res.Notifications += n
		if n == 0 {
			res.Skipped++
		}
		l.Debug().Int64("event_id", e.ID).Str("kind", string(e.Kind)).Int("notifications", n).Msg("event processed")
	}
	return res, nil
}

// match counts the notifications e would create
func (s *Service) match(ctx context.Context, repo ntdom.StorageRepo, e ntdom.PendingEvent) (int, error) {
	t, ok, err := repo.TargetBySubject(ctx, e.Subject)
	if err != nil || !ok {
		return 0, err
	}
	subs, err := repo.ActiveSubscriptions(ctx, t.ID)
	if err != nil {
		return 0, err
	}
	n := 0
	for _, sub := range subs {
		if sub.Wants(e.Kind) {
			n++
		}
	}
	return n, nil
}

func (s *Service) fanOut(ctx context.Context, repo ntdom.StorageRepo, e ntdom.PendingEvent) (int, error) {
	t, ok, err := repo.TargetBySubject(ctx, e.Subject)
	if err != nil {
		return 0, err
	}
	n := 0
	if ok {
		subs, err := repo.ActiveSubscriptions(ctx, t.ID)
		if err != nil {
			return 0, err
		}
		now := s.Clock.Now()
		desc := e.Description()
		for _, sub := range subs {
			if !sub.Wants(e.Kind) {
				continue
			}
			if _, err := repo.CreateNotification(ctx, ntdom.NewNotification{
				UserID:    sub.UserID,
				EventID:   e.ID,
				Type:      ntdom.TypeSingle,
				Title:     e.Title(),
				Summary:   desc,
				EventData: e.Data,
				EventDate: e.CreatedAt,
			}); err != nil {
				return 0, err
			}
			if err := repo.TouchSubscription(ctx, sub.ID, now); err != nil {
				return 0, err
			}
			n++
		}
		if n > 0 {
			if err := repo.TouchTarget(ctx, t.ID, now); err != nil {
				return 0, err
			}
		}
	}
	return n, repo.MarkProcessed(ctx, e.ID)
}

var _ ntdom.ProcessorPort = (*Service)(nil)
