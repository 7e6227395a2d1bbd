// Package repo provides subscription and notification storage on Postgres
package repo

import (
	"context"

	"djnic/internal/core/events"
	"djnic/internal/modkit/repokit"
	perr "djnic/internal/platform/errors"
	"djnic/internal/platform/store"
	subdom "djnic/internal/services/api/subscriptions/domain"

	sq "github.com/Masterminds/squirrel"
	"github.com/google/uuid"
)

// NewPG returns a binder for the Postgres repo
func NewPG() repokit.Binder[subdom.StorageRepo] {
	return repokit.BindFunc[subdom.StorageRepo](func(q repokit.Queryer) subdom.StorageRepo { return &pgRepo{q: q} })
}

type pgRepo struct{ q repokit.Queryer }

var subjectTables = map[events.SubjectKind]string{
	events.SubjectDomain:     "domains",
	events.SubjectRegistrant: "registrants",
}

func (r *pgRepo) SubjectID(ctx context.Context, kind events.SubjectKind, uid uuid.UUID) (int64, error) {
	table, ok := subjectTables[kind]
	if !ok {
		return 0, perr.WithField(perr.InvalidArgf("unknown target kind %q", kind), "target_kind")
	}
	id, err := store.One(ctx, r.q, func(row store.Row) (int64, error) {
		var id int64
		return id, row.Scan(&id)
	}, `SELECT id FROM `+table+` WHERE uid = $1`, uid)
	if err != nil {
		return 0, notFound(err, string(kind), uid, "resolve target")
	}
	return id, nil
}

func (r *pgRepo) EnsureTarget(ctx context.Context, s events.Subject) (int64, error) {
	id, err := store.Scalar[int64](ctx, r.q, `
		INSERT INTO subscription_targets (subject_kind, subject_id) VALUES ($1, $2)
		ON CONFLICT (subject_kind, subject_id) DO UPDATE SET updated_at = subscription_targets.updated_at
		RETURNING id`, string(s.Kind), s.ID)
	return id, perr.FromPostgres(err, "ensure target")
}

func (r *pgRepo) UpsertSubscription(ctx context.Context, in subdom.UpsertSubscription) (uuid.UUID, error) {
	kinds := in.EventTypes
	if kinds == nil {
		kinds = []string{}
	}
	uid, err := store.Scalar[uuid.UUID](ctx, r.q, `
		INSERT INTO subscriptions (user_id, target_id, event_types, delivery_mode, is_active)
		VALUES ($1, $2, $3, $4, true)
		ON CONFLICT (user_id, target_id) DO UPDATE
		   SET event_types = EXCLUDED.event_types,
		       delivery_mode = EXCLUDED.delivery_mode,
		       is_active = true,
		       updated_at = now()
		RETURNING uid`, in.UserID, in.TargetID, kinds, in.DeliveryMode)
	return uid, perr.FromPostgres(err, "upsert subscription")
}

// SubscriptionQuery selects subscription views with their subject identifier
func SubscriptionQuery() sq.SelectBuilder {
	return store.SQL.Select(
		"s.uid", "t.subject_kind", "COALESCE(d.uid, r.uid)",
		"COALESCE(d.name || '.' || z.name, r.name, '')",
		"s.event_types", "s.delivery_mode", "s.is_active", "s.created_at", "s.last_notified_at",
	).
		From("subscriptions s").
		Join("subscription_targets t ON t.id = s.target_id").
		LeftJoin("domains d ON t.subject_kind = 'domain' AND d.id = t.subject_id").
		LeftJoin("zones z ON z.id = d.zone_id").
		LeftJoin("registrants r ON t.subject_kind = 'registrant' AND r.id = t.subject_id")
}

func scanSubscription(row store.Row) (subdom.Subscription, error) {
	var (
		s      subdom.Subscription
		target uuid.NullUUID
	)
	err := row.Scan(&s.UID, &s.TargetKind, &target, &s.Identifier,
		&s.EventTypes, &s.DeliveryMode, &s.IsActive, &s.CreatedAt, &s.NotifiedAt)
	s.TargetID = target.UUID
	return s, err
}

func (r *pgRepo) Subscription(ctx context.Context, userID int64, uid uuid.UUID) (subdom.Subscription, error) {
	out, err := store.ManyQ(ctx, r.q, scanSubscription,
		SubscriptionQuery().Where(sq.Eq{"s.user_id": userID, "s.uid": uid}))
	if err != nil {
		return subdom.Subscription{}, perr.FromPostgres(err, "load subscription")
	}
	if len(out) == 0 {
		return subdom.Subscription{}, perr.NotFoundf("subscription %s not found", uid)
	}
	return out[0], nil
}

func (r *pgRepo) ActiveSubscriptions(ctx context.Context, userID int64) ([]subdom.Subscription, error) {
	out, err := store.ManyQ(ctx, r.q, scanSubscription,
		SubscriptionQuery().Where(sq.Eq{"s.user_id": userID, "s.is_active": true}).OrderBy("s.created_at DESC", "s.id DESC"))
	return out, perr.FromPostgres(err, "list subscriptions")
}

func (r *pgRepo) Deactivate(ctx context.Context, userID int64, uid uuid.UUID) error {
	err := store.ExecOne(ctx, r.q, `
		UPDATE subscriptions SET is_active = false, updated_at = now()
		 WHERE user_id = $1 AND uid = $2 AND is_active`, userID, uid)
	return notFound(err, "subscription", uid, "deactivate subscription")
}

// NotificationsQuery builds the inbox select, newest first
func NotificationsQuery(q subdom.NotificationQuery) sq.SelectBuilder {
	b := store.SQL.Select("uid", "type", "title", "summary", "event_data", "is_read", "event_date", "created_at").
		From("notifications").
		Where(sq.Eq{"user_id": q.UserID}).
		OrderBy("created_at DESC", "id DESC").
		Limit(uint64(max(q.Limit, 1)))
	if q.Unread {
		b = b.Where(sq.Eq{"is_read": false})
	}
	return b
}

func (r *pgRepo) Notifications(ctx context.Context, q subdom.NotificationQuery) ([]subdom.Notification, error) {
	out, err := store.ManyQ(ctx, r.q, func(row store.Row) (subdom.Notification, error) {
		var n subdom.Notification
		err := row.Scan(&n.UID, &n.Type, &n.Title, &n.Summary, &n.EventData, &n.IsRead, &n.EventDate, &n.CreatedAt)
		return n, err
	}, NotificationsQuery(q))
	return out, perr.FromPostgres(err, "list notifications")
}

func (r *pgRepo) MarkRead(ctx context.Context, userID int64, uid uuid.UUID) error {
	err := store.ExecOne(ctx, r.q, `UPDATE notifications SET is_read = true WHERE user_id = $1 AND uid = $2`, userID, uid)
	return notFound(err, "notification", uid, "mark notification read")
}

func (r *pgRepo) DeleteNotification(ctx context.Context, userID int64, uid uuid.UUID) error {
	err := store.ExecOne(ctx, r.q, `DELETE FROM notifications WHERE user_id = $1 AND uid = $2`, userID, uid)
	return notFound(err, "notification", uid, "delete notification")
}

// DomainsQuery looks a domain up by full or bare name, with its registrant
func DomainsQuery(name string, limit int) sq.SelectBuilder {
	return store.SQL.Select(
		"d.uid", "d.name || '.' || z.name", "d.status", "d.expire",
		"r.uid", "r.name", "r.legal_uid",
	).
		From("domains d").
		Join("zones z ON z.id = d.zone_id").
		LeftJoin("registrants r ON r.id = d.registrant_id").
		Where(sq.Or{sq.Expr("d.name || '.' || z.name = ?", name), sq.Eq{"d.name": name}}).
		OrderBy("d.name", "z.name").
		Limit(uint64(max(limit, 1)))
}

func (r *pgRepo) FindDomains(ctx context.Context, name string, limit int) ([]subdom.DomainRef, error) {
	out, err := store.ManyQ(ctx, r.q, func(row store.Row) (subdom.DomainRef, error) {
		var (
			d        subdom.DomainRef
			regUID   uuid.NullUUID
			regName  *string
			regLegal *string
		)
		if err := row.Scan(&d.UID, &d.Name, &d.Status, &d.Expire, &regUID, &regName, &regLegal); err != nil {
			return d, err
		}
		if regUID.Valid {
			d.Registrant = &subdom.RegistrantRef{UID: regUID.UUID, Name: deref(regName), LegalUID: deref(regLegal)}
		}
		return d, nil
	}, DomainsQuery(name, limit))
	return out, perr.FromPostgres(err, "find domains")
}

func (r *pgRepo) FindRegistrants(ctx context.Context, legalUID string) ([]subdom.RegistrantRef, error) {
	out, err := store.Many(ctx, r.q, func(row store.Row) (subdom.RegistrantRef, error) {
		var rr subdom.RegistrantRef
		return rr, row.Scan(&rr.UID, &rr.Name, &rr.LegalUID)
	}, `SELECT uid, name, legal_uid FROM registrants WHERE legal_uid = $1`, legalUID)
	return out, perr.FromPostgres(err, "find registrants")
}

func deref(s *string) string {
	if s == nil {
		return ""
	}
	return *s
}

func notFound(err error, what string, uid uuid.UUID, op string) error {
	if perr.IsCode(err, perr.ErrorCodeNotFound) {
		return perr.NotFoundf("%s %s not found", what, uid)
	}
	return perr.FromPostgres(err, op)
}
