// Package service fans notifications out to the channels of their users
package service

import (
	"context"

	"djnic/internal/modkit/repokit"
	"djnic/internal/platform/logger"
	"djnic/internal/platform/metrics"
	ptime "djnic/internal/platform/time"
	dvdom "djnic/internal/services/delivery/domain"
)

// DefaultLimit caps one run when Params.Limit is zero
const DefaultLimit = 100

// Service wires the repo and the sender registry into Deliver and Run.
// Delivery rows are written outside transactions since each send is an external side effect.
type Service struct {
	DB       repokit.TxRunner
	Binder   repokit.Binder[dvdom.StorageRepo]
	Registry *dvdom.Registry
	Metrics  *metrics.Metrics
	Clock    ptime.Clock
}

// New constructs the service
func New(db repokit.TxRunner, binder repokit.Binder[dvdom.StorageRepo], reg *dvdom.Registry, clock ptime.Clock) *Service {
	if db == nil {
		panic("delivery.Service requires a non nil TxRunner")
	}
	if binder == nil {
		panic("delivery.Service requires a non nil Repo binder")
	}
	if reg == nil {
		panic("delivery.Service requires a sender registry")
	}
	return &Service{DB: db, Binder: binder, Registry: reg, Clock: clock}
}

// Deliver sends n through every active channel of its user, or only channel when set.
// Deliveries already sent are skipped; a failing channel does not stop the others.
func (s *Service) Deliver(ctx context.Context, n dvdom.Notification, channel string) (dvdom.Outcome, error) {
	senders, err := s.Registry.Select(channel)
	if err != nil {
		return dvdom.Outcome{}, err
	}
	return s.deliver(ctx, s.Binder.Bind(s.DB), n, senders), nil
}

func (s *Service) deliver(ctx context.Context, repo dvdom.StorageRepo, n dvdom.Notification, senders []dvdom.Sender) dvdom.Outcome {
	var out dvdom.Outcome
	l := logger.C(ctx).With().Str("mod", "delivery").Int64("notification_id", n.ID).Logger()

	for _, sender := range senders {
		typ := sender.ChannelType()
		channels, err := sender.ActiveChannels(ctx, n.UserID)
		if err != nil {
			out.Failed++
			l.Error().Err(err).Str("channel_type", typ).Msg("load channels failed")
			continue
		}
		for _, ch := range channels {
			d, err := repo.Claim(ctx, n.ID, typ, ch.ID)
			if err != nil {
				out.Failed++
				l.Error().Err(err).Str("channel_type", typ).Int64("channel_id", ch.ID).Msg("claim delivery failed")
				continue
			}
			if d.Status == dvdom.StatusSent {
				out.Skipped++
				continue
			}

			res := sender.Send(ctx, ch, n)
			now := s.Clock.Now()
			stats, _ := sender.(dvdom.ChannelStats)
			if res.Success {
				out.Sent++
				s.Metrics.IncDelivery(typ, dvdom.StatusSent)
				if err := repo.MarkSent(ctx, d.ID, res.ExternalID, now); err != nil {
					l.Error().Err(err).Int64("delivery_id", d.ID).Msg("mark sent failed")
				}
				if stats != nil {
					if err := stats.Succeeded(ctx, ch, now); err != nil {
						l.Warn().Err(err).Int64("channel_id", ch.ID).Msg("channel stats update failed")
					}
				}
				l.Debug().Str("channel_type", typ).Int64("channel_id", ch.ID).Str("external_id", res.ExternalID).Msg("sent")
				continue
			}

			msg := res.Error
			if msg == "" {
				msg = dvdom.UnknownError
			}
			out.Failed++
			s.Metrics.IncDelivery(typ, dvdom.StatusFailed)
			if err := repo.MarkFailed(ctx, d.ID, msg, now); err != nil {
				l.Error().Err(err).Int64("delivery_id", d.ID).Msg("mark failed failed")
			}
			if stats != nil {
				if err := stats.Failed(ctx, ch, msg, now); err != nil {
					l.Warn().Err(err).Int64("channel_id", ch.ID).Msg("channel stats update failed")
				}
			}
			l.Error().Str("channel_type", typ).Int64("channel_id", ch.ID).Str("error", msg).Msg("send failed")
		}
	}
	return out
}

// Run delivers up to p.Limit pending notifications.
// Without RetryFailed only notifications never attempted are picked; with it only those
// whose failed delivery is still under MaxRetries.
func (s *Service) Run(ctx context.Context, p dvdom.Params) (dvdom.Result, error) {
	var res dvdom.Result
	if p.Limit <= 0 {
		p.Limit = DefaultLimit
	}
	if p.MaxRetries <= 0 {
		p.MaxRetries = dvdom.DefaultMaxRetries
	}
	senders, err := s.Registry.Select(p.Channel)
	if err != nil {
		return res, err
	}
	types := make([]string, len(senders))
	for i, sn := range senders {
		types[i] = sn.ChannelType()
	}

	l := logger.C(ctx).With().Str("mod", "delivery").Bool("dry_run", p.DryRun).Logger()
	repo := s.Binder.Bind(s.DB)

	pending, err := repo.PendingNotifications(ctx, dvdom.PendingFilter{
		Limit:        p.Limit,
		ChannelTypes: types,
		RetryFailed:  p.RetryFailed,
		MaxRetries:   p.MaxRetries,
	})
	if err != nil {
		return res, err
	}
	res.Notifications = len(pending)
	l.Debug().Int("notifications", len(pending)).Strs("channels", types).Msg("loaded pending notifications")

	for _, n := range pending {
		if err := ctx.Err(); err != nil {
			return res, err
		}
		if p.DryRun {
			for _, sn := range senders {
				chs, err := sn.ActiveChannels(ctx, n.UserID)
				if err != nil {
					res.Failed++
					l.Error().Err(err).Int64("notification_id", n.ID).Msg("load channels failed")
					continue
				}
				for _, ch := range chs {
					res.Planned++
					l.Info().Int64("notification_id", n.ID).Str("channel_type", sn.ChannelType()).Int64("channel_id", ch.ID).Msg("would send")
				}
			}
			continue
		}
		out := s.deliver(ctx, repo, n, senders)
		res.Sent += out.Sent
		res.Failed += out.Failed
		res.Skipped += out.Skipped
	}
	return res, nil
}

var _ dvdom.ServicePort = (*Service)(nil)
