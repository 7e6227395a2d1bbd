// Package repo provides the notification stage storage on Postgres
package repo

import (
	"context"
	"time"

	"djnic/internal/core/events"
	"djnic/internal/modkit/repokit"
	perr "djnic/internal/platform/errors"
	"djnic/internal/platform/store"
	ntdom "djnic/internal/services/notifier/domain"
)

// NewPG returns a binder for the Postgres repo
func NewPG() repokit.Binder[ntdom.StorageRepo] {
	return repokit.BindFunc[ntdom.StorageRepo](func(q repokit.Queryer) ntdom.StorageRepo { return &pgRepo{q: q} })
}

type pgRepo struct{ q repokit.Queryer }

func (r *pgRepo) UnprocessedEvents(ctx context.Context, limit int) ([]ntdom.PendingEvent, error) {
	out, err := store.Many(ctx, r.q, func(row store.Row) (ntdom.PendingEvent, error) {
		var (
			e            ntdom.PendingEvent
			kind, sk string
		)
		err := row.Scan(&e.ID, &kind, &sk, &e.Subject.ID, &e.Data, &e.CreatedAt)
		e.Kind, e.Subject.Kind = events.Kind(kind), events.SubjectKind(sk)
		return e, err
	}, `
		SELECT id, kind, subject_kind, subject_id, data, created_at
		  FROM events
		 WHERE NOT processed
		 ORDER BY created_at, id
		 LIMIT $1`, limit)
	return out, perr.FromPostgres(err, "load events")
}

func (r *pgRepo) TargetBySubject(ctx context.Context, s events.Subject) (ntdom.Target, bool, error) {
	t, err := store.One(ctx, r.q, func(row store.Row) (ntdom.Target, error) {
		var t ntdom.Target
		return t, row.Scan(&t.ID)
	}, `SELECT id FROM subscription_targets WHERE subject_kind = $1 AND subject_id = $2`, string(s.Kind), s.ID)
	if err != nil {
		if perr.IsCode(err, perr.ErrorCodeNotFound) {
			return t, false, nil
		}
		return t, false, perr.FromPostgres(err, "load target")
	}
	return t, true, nil
}

func (r *pgRepo) ActiveSubscriptions(ctx context.Context, targetID int64) ([]ntdom.Subscription, error) {
	out, err := store.Many(ctx, r.q, func(row store.Row) (ntdom.Subscription, error) {
		var s ntdom.Subscription
		return s, row.Scan(&s.ID, &s.UserID, &s.EventTypes)
	}, `
		SELECT id, user_id, event_types
		  FROM subscriptions
		 WHERE target_id = $1 AND is_active
		 ORDER BY id`, targetID)
	return out, perr.FromPostgres(err, "load subscriptions")
}

func (r *pgRepo) CreateNotification(ctx context.Context, n ntdom.NewNotification) (int64, error) {
	var id int64
	err := r.q.QueryRow(ctx, `
		INSERT INTO notifications (user_id, event_id, type, title, summary, event_data, event_date)
		VALUES ($1, $2, $3, $4, $5, $6, $7::date)
		RETURNING id`,
		n.UserID, n.EventID, n.Type, n.Title, n.Summary, n.EventData, n.EventDate,
	).Scan(&id)
	return id, perr.FromPostgres(err, "create notification")
}

func (r *pgRepo) TouchSubscription(ctx context.Context, id int64, at time.Time) error {
	_, err := r.q.Exec(ctx, `UPDATE subscriptions SET last_notified_at = $2 WHERE id = $1`, id, at)
	return perr.FromPostgres(err, "touch subscription")
}

func (r *pgRepo) TouchTarget(ctx context.Context, id int64, at time.Time) error {
	_, err := r.q.Exec(ctx, `UPDATE subscription_targets SET last_event_at = $2, updated_at = $2 WHERE id = $1`, id, at)
	return perr.FromPostgres(err, "touch target")
}

func (r *pgRepo) MarkProcessed(ctx context.Context, eventID int64) error {
	return perr.FromPostgres(store.ExecOne(ctx, r.q, `UPDATE events SET processed = true WHERE id = $1`, eventID), "mark processed")
}
