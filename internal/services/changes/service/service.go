// Package service applies registry observations: diff, change record, events, rescore
package service

import (
	"context"
	"slices"
	"strings"

	"djnic/internal/core/diff"
	"djnic/internal/core/events"
	"djnic/internal/core/normalize"
	"djnic/internal/modkit/repokit"
	perr "djnic/internal/platform/errors"
	"djnic/internal/platform/logger"
	"djnic/internal/platform/metrics"
	ptime "djnic/internal/platform/time"
	chdom "djnic/internal/services/changes/domain"
)

// Config holds the zone location defaults
type Config struct {
	// DefaultTZ is used for new zones that do not match a ZoneTZ suffix
	DefaultTZ string
	// ZoneTZ maps a zone suffix such as "ar" to the location new zones get
	ZoneTZ map[string]string
}

// Service wires TxRunner + Binder into Apply
type Service struct {
	DB       repokit.TxRunner
	Binder   repokit.Binder[chdom.StorageRepo]
	Rescorer chdom.Rescorer
	Metrics  *metrics.Metrics
	Clock    ptime.Clock
	Cfg      Config
}

// New constructs the service
func New(db repokit.TxRunner, binder repokit.Binder[chdom.StorageRepo], rescorer chdom.Rescorer, cfg Config) *Service {
	if db == nil {
		panic("changes.Service requires a non nil TxRunner")
	}
	if binder == nil {
		panic("changes.Service requires a non nil Repo binder")
	}
	return &Service{DB: db, Binder: binder, Rescorer: rescorer, Cfg: cfg}
}

// zoneTZ picks the location for a zone seen for the first time
func (s *Service) zoneTZ(zone string) string {
	for suffix, tz := range s.Cfg.ZoneTZ {
		if zone == suffix || strings.HasSuffix(zone, "."+suffix) {
			return tz
		}
	}
	if s.Cfg.DefaultTZ != "" {
		return s.Cfg.DefaultTZ
	}
	return "UTC"
}

// clean normalizes an observed snapshot the way stored values are kept
func clean(in diff.Snapshot) (diff.Snapshot, error) {
	out := in
	switch out.Status {
	case "":
		out.Status = diff.StatusUnavailable
		if out.Registrant == nil && out.Expire == nil {
			out.Status = diff.StatusAvailable
		}
	case diff.StatusAvailable, diff.StatusUnavailable:
	default:
		return out, perr.WithField(perr.InvalidArgf("unknown status %q", in.Status), "snapshot.status")
	}
	out.DNS = normalize.Hosts(in.DNS)
	if in.Registrant != nil {
		r := *in.Registrant
		r.Name, r.LegalUID = normalize.Text(r.Name), strings.TrimSpace(r.LegalUID)
		out.Registrant = &r
		if r.LegalUID == "" {
			out.Registrant = nil
		}
	}
	return out, nil
}

// Apply records one observation in a single transaction
func (s *Service) Apply(ctx context.Context, obs chdom.Observation) (chdom.ApplyResult, error) {
	var res chdom.ApplyResult

	name, zone := normalize.Host(obs.Name), normalize.Host(obs.Zone)
	if name == "" || zone == "" {
		return res, perr.InvalidArgf("name and zone are required")
	}
	next, err := clean(obs.Snapshot)
	if err != nil {
		return res, err
	}
	at := obs.ReadAt
	if at.IsZero() {
		at = s.Clock.Now()
	}
	res.Domain = name + "." + zone

	l := logger.C(ctx).With().Str("mod", "changes").Str("domain", res.Domain).Logger()

	err = s.DB.Tx(ctx, func(q repokit.Queryer) error {
		repo := s.Binder.Bind(q)

		z, err := repo.EnsureZone(ctx, zone, s.zoneTZ(zone))
		if err != nil {
			return err
		}
		d, found, err := repo.LoadDomain(ctx, z.ID, name)
		if err != nil {
			return err
		}
		if !found {
			if d, err = repo.CreateDomain(ctx, z.ID, name); err != nil {
				return err
			}
			res.Created = true
		}
		res.DomainID = d.ID

		res.Changes = diff.Compute(d.Snapshot, next, ptime.LoadLocation(z.TZ))
		if _, err := repo.InsertRecord(ctx, diff.NewRecord(d.ID, at, res.Changes)); err != nil {
			return err
		}

		var current *events.Registrant
		if next.Registrant != nil {
			r, err := repo.UpsertRegistrant(ctx, *next.Registrant)
			if err != nil {
				return err
			}
			current = &r
		}
		if !slices.Equal(d.Snapshot.DNS, next.DNS) {
			if err := repo.ReplaceDNS(ctx, d.ID, next.DNS); err != nil {
				return err
			}
		}

		u := chdom.DomainUpdate{
			ID:         d.ID,
			Status:     next.Status,
			Registered: next.Registered,
			Changed:    next.Changed,
			Expire:     next.Expire,
			ReadAt:     at,
		}
		if current != nil {
			u.RegistrantID = &current.ID
		}
		if len(res.Changes) > 0 {
			u.UpdatedAt = &at
		}
		if err := repo.UpdateDomain(ctx, u); err != nil {
			return err
		}

		in := events.Input{
			Domain:  events.DomainRef{ID: d.ID, Name: res.Domain, URL: events.DomainURL(d.UID), Registrant: current},
			Changes: res.Changes,
		}
		if oldUID, newUID, ok := events.RegistrantUIDs(res.Changes); ok {
			if in.OldRegistrant, err = resolve(ctx, repo, oldUID); err != nil {
				return err
			}
			if in.NewRegistrant, err = resolve(ctx, repo, newUID); err != nil {
				return err
			}
		}
		res.Events = events.Derive(in)
		if err := repo.InsertEvents(ctx, res.Events); err != nil {
			return err
		}

		if s.Rescorer != nil {
			if res.Score, err = s.Rescorer.RescoreOne(ctx, q, d.ID); err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		l.Error().Err(err).Msg("apply failed")
		return chdom.ApplyResult{}, err
	}

	for _, e := range res.Events {
		s.Metrics.IncEvent(string(e.Kind), string(e.Subject.Kind))
	}
	l.Debug().
		Int64("domain_id", res.DomainID).
		Bool("created", res.Created).
		Int("changes", len(res.Changes)).
		Int("events", len(res.Events)).
		Int("priority", res.Score.Priority).
		Msg("observation applied")
	return res, nil
}

func resolve(ctx context.Context, repo chdom.StorageRepo, legalUID string) (*events.Registrant, error) {
	if legalUID == "" {
		return nil, nil
	}
	return repo.RegistrantByLegalUID(ctx, legalUID)
}

var _ chdom.ServicePort = (*Service)(nil)
