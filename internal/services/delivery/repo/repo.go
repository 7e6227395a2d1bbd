// Package repo provides the delivery bookkeeping on Postgres
package repo

import (
	"context"
	"strings"
	"time"

	"djnic/internal/modkit/repokit"
	perr "djnic/internal/platform/errors"
	"djnic/internal/platform/store"
	dvdom "djnic/internal/services/delivery/domain"

	sq "github.com/Masterminds/squirrel"
)

// channelTables names the table holding the channels of each type
var channelTables = map[string]string{
	dvdom.ChannelTelegram: "telegram_channels",
}

// NewPG returns a binder for the Postgres repo
func NewPG() repokit.Binder[dvdom.StorageRepo] {
	return repokit.BindFunc[dvdom.StorageRepo](func(q repokit.Queryer) dvdom.StorageRepo { return &pgRepo{q: q} })
}

type pgRepo struct{ q repokit.Queryer }

// PendingQuery builds the selection of notifications that still need a delivery
func PendingQuery(f dvdom.PendingFilter) (sq.SelectBuilder, error) {
	var users []string
	for _, t := range f.ChannelTypes {
		if tbl, ok := channelTables[t]; ok {
			users = append(users, "SELECT user_id FROM "+tbl+" WHERE is_active AND is_verified")
		}
	}
	if len(users) == 0 {
		return sq.SelectBuilder{}, perr.InvalidArgf("no known channel types in %v", f.ChannelTypes)
	}

	b := store.SQL.Select(
		"n.id", "n.uid::text", "n.user_id", "n.title", "n.summary", "n.event_data", "n.event_date", "n.created_at",
	).
		From("notifications n").
		Where("n.user_id IN (" + strings.Join(users, " UNION ") + ")").
		Where("NOT EXISTS (SELECT 1 FROM channel_deliveries d WHERE d.notification_id = n.id AND d.channel_type = ANY(?) AND d.status = 'sent')", f.ChannelTypes).
		OrderBy("n.created_at", "n.id").
		Limit(uint64(max(f.Limit, 1)))

	if f.RetryFailed {
		b = b.Where("EXISTS (SELECT 1 FROM channel_deliveries d WHERE d.notification_id = n.id AND d.channel_type = ANY(?) AND d.status = 'failed' AND d.retry_count < ?)", f.ChannelTypes, f.MaxRetries)
	} else {
		b = b.Where("NOT EXISTS (SELECT 1 FROM channel_deliveries d WHERE d.notification_id = n.id AND d.channel_type = ANY(?) AND d.status = 'failed')", f.ChannelTypes)
	}
	return b, nil
}

func (r *pgRepo) PendingNotifications(ctx context.Context, f dvdom.PendingFilter) ([]dvdom.Notification, error) {
	b, err := PendingQuery(f)
	if err != nil {
		return nil, err
	}
	out, err := store.ManyQ(ctx, r.q, func(row store.Row) (dvdom.Notification, error) {
		var n dvdom.Notification
		err := row.Scan(&n.ID, &n.UID, &n.UserID, &n.Title, &n.Summary, &n.EventData, &n.EventDate, &n.CreatedAt)
		return n, err
	}, b)
	return out, perr.FromPostgres(err, "pending notifications")
}

func (r *pgRepo) Claim(ctx context.Context, notificationID int64, channelType string, channelID int64) (dvdom.Delivery, error) {
	var d dvdom.Delivery
	err := r.q.QueryRow(ctx, `
		INSERT INTO channel_deliveries (notification_id, channel_type, channel_id, status)
		VALUES ($1, $2, $3, 'pending')
		ON CONFLICT (notification_id, channel_type, channel_id)
		DO UPDATE SET updated_at = channel_deliveries.updated_at
		RETURNING id, status, retry_count`,
		notificationID, channelType, channelID,
	).Scan(&d.ID, &d.Status, &d.RetryCount)
	return d, perr.FromPostgres(err, "claim delivery")
}

func (r *pgRepo) MarkSent(ctx context.Context, id int64, externalID string, at time.Time) error {
	_, err := r.q.Exec(ctx, `
		UPDATE channel_deliveries
		   SET status = 'sent', sent_at = $2, external_id = $3, error_message = '', updated_at = $2
		 WHERE id = $1 AND status <> 'sent'`, id, at, externalID)
	return perr.FromPostgres(err, "mark sent")
}

func (r *pgRepo) MarkFailed(ctx context.Context, id int64, msg string, at time.Time) error {
	_, err := r.q.Exec(ctx, `
		UPDATE channel_deliveries
		   SET status = 'failed', error_message = $2, retry_count = retry_count + 1, updated_at = $3
		 WHERE id = $1 AND status <> 'sent'`, id, msg, at)
	return perr.FromPostgres(err, "mark failed")
}
