// Package service implements subscriptions and the notification inbox
package service

import (
	"context"
	"strings"

	"djnic/internal/core/events"
	"djnic/internal/core/normalize"
	"djnic/internal/modkit/repokit"
	perr "djnic/internal/platform/errors"
	"djnic/internal/platform/logger"
	subdom "djnic/internal/services/api/subscriptions/domain"

	"github.com/google/uuid"
)

// Service implements subdom.ServicePort
type Service struct {
	DB     repokit.TxRunner
	Binder repokit.Binder[subdom.StorageRepo]
}

// New constructs the service
func New(db repokit.TxRunner, binder repokit.Binder[subdom.StorageRepo]) *Service {
	if db == nil {
		panic("subscriptions.Service requires a non nil TxRunner")
	}
	if binder == nil {
		panic("subscriptions.Service requires a non nil Repo binder")
	}
	return &Service{DB: db, Binder: binder}
}

func (s *Service) repo() subdom.StorageRepo { return s.Binder.Bind(s.DB) }

// Subscribe follows the target, creating it lazily. Subscribing again updates
// the kinds and mode and reactivates a cancelled subscription.
func (s *Service) Subscribe(ctx context.Context, userID int64, in subdom.SubscribeInput) (subdom.Subscription, error) {
	kind, uid, err := in.Subject()
	if err != nil {
		return subdom.Subscription{}, perr.WithField(perr.InvalidArgf("invalid target id %q", in.TargetID), "target_id")
	}
	if !kind.Valid() {
		return subdom.Subscription{}, perr.WithField(perr.InvalidArgf("unknown target kind %q", in.TargetKind), "target_kind")
	}
	kinds, err := eventKinds(in.EventTypes)
	if err != nil {
		return subdom.Subscription{}, err
	}
	mode := in.DeliveryMode
	if mode == "" {
		mode = subdom.ModeImmediate
	}

	var out subdom.Subscription
	err = s.DB.Tx(ctx, func(q repokit.Queryer) error {
		repo := s.Binder.Bind(q)
		subjectID, err := repo.SubjectID(ctx, kind, uid)
		if err != nil {
			return err
		}
		targetID, err := repo.EnsureTarget(ctx, events.Subject{Kind: kind, ID: subjectID})
		if err != nil {
			return err
		}
		subUID, err := repo.UpsertSubscription(ctx, subdom.UpsertSubscription{
			UserID:       userID,
			TargetID:     targetID,
			EventTypes:   kinds,
			DeliveryMode: mode,
		})
		if err != nil {
			return err
		}
		out, err = repo.Subscription(ctx, userID, subUID)
		return err
	})
	if err != nil {
		return subdom.Subscription{}, err
	}
	logger.C(ctx).Info().Str("mod", "subscriptions").Str("uid", out.UID.String()).Str("target_kind", string(kind)).Msg("subscribed")
	return out, nil
}

// eventKinds validates and dedupes kinds keeping their order; an empty input is stored as every kind
func eventKinds(in []string) ([]string, error) {
	if len(in) == 0 {
		out := make([]string, len(events.Kinds))
		for i, k := range events.Kinds {
			out[i] = string(k)
		}
		return out, nil
	}
	seen := make(map[string]bool, len(in))
	out := make([]string, 0, len(in))
	for _, k := range in {
		if !events.Kind(k).Valid() {
			return nil, perr.WithField(perr.InvalidArgf("unknown event type %q", k), "event_types")
		}
		if !seen[k] {
			seen[k] = true
			out = append(out, k)
		}
	}
	return out, nil
}

// Subscriptions lists the user's active subscriptions, newest first
func (s *Service) Subscriptions(ctx context.Context, userID int64) ([]subdom.Subscription, error) {
	out, err := s.repo().ActiveSubscriptions(ctx, userID)
	if out == nil && err == nil {
		out = []subdom.Subscription{}
	}
	return out, err
}

// Unsubscribe deactivates the subscription; the row is kept
func (s *Service) Unsubscribe(ctx context.Context, userID int64, uid string) error {
	id, err := parseUID(uid)
	if err != nil {
		return err
	}
	return s.repo().Deactivate(ctx, userID, id)
}

// Notifications lists the inbox newest first
func (s *Service) Notifications(ctx context.Context, q subdom.NotificationQuery) ([]subdom.Notification, error) {
	switch {
	case q.Limit <= 0:
		q.Limit = subdom.DefaultListLimit
	case q.Limit > subdom.MaxListLimit:
		q.Limit = subdom.MaxListLimit
	}
	out, err := s.repo().Notifications(ctx, q)
	if out == nil && err == nil {
		out = []subdom.Notification{}
	}
	return out, err
}

// MarkRead flags one notification as read
func (s *Service) MarkRead(ctx context.Context, userID int64, uid string) error {
	id, err := parseUID(uid)
	if err != nil {
		return err
	}
	return s.repo().MarkRead(ctx, userID, id)
}

// DeleteNotification removes one notification
func (s *Service) DeleteNotification(ctx context.Context, userID int64, uid string) error {
	id, err := parseUID(uid)
	if err != nil {
		return err
	}
	return s.repo().DeleteNotification(ctx, userID, id)
}

func parseUID(s string) (uuid.UUID, error) {
	id, err := uuid.Parse(s)
	if err != nil {
		return uuid.Nil, perr.WithField(perr.InvalidArgf("invalid uid %q", s), "uid")
	}
	return id, nil
}

var _ subdom.ServicePort = (*Service)(nil)

// Domains resolves a domain name to the uids a subscription targets
func (s *Service) Domains(ctx context.Context, name string) ([]subdom.DomainRef, error) {
	name = normalize.Host(name)
	if name == "" {
		return nil, perr.WithField(perr.InvalidArgf("name is required"), "name")
	}
	out, err := s.repo().FindDomains(ctx, name, subdom.LookupLimit)
	if out == nil && err == nil {
		out = []subdom.DomainRef{}
	}
	return out, err
}

// Registrants resolves a legal id (CUIT/CUIL) to registrant uids
func (s *Service) Registrants(ctx context.Context, legalUID string) ([]subdom.RegistrantRef, error) {
	legalUID = strings.TrimSpace(legalUID)
	if legalUID == "" {
		return nil, perr.WithField(perr.InvalidArgf("legal_uid is required"), "legal_uid")
	}
	out, err := s.repo().FindRegistrants(ctx, legalUID)
	if out == nil && err == nil {
		out = []subdom.RegistrantRef{}
	}
	return out, err
}
