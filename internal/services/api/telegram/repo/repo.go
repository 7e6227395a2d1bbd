// Package repo provides Telegram channel, link token and message log storage on Postgres
package repo

import (
	"context"
	"time"

	"djnic/internal/modkit/repokit"
	perr "djnic/internal/platform/errors"
	"djnic/internal/platform/store"
	tgdom "djnic/internal/services/api/telegram/domain"
)

// NewPG returns a binder for the Postgres repo
func NewPG() repokit.Binder[tgdom.StorageRepo] {
	return repokit.BindFunc[tgdom.StorageRepo](func(q repokit.Queryer) tgdom.StorageRepo { return &pgRepo{q: q} })
}

type pgRepo struct{ q repokit.Queryer }

func (r *pgRepo) InvalidateTokens(ctx context.Context, userID int64) error {
	_, err := r.q.Exec(ctx, `UPDATE telegram_link_tokens SET used = true WHERE user_id = $1 AND NOT used`, userID)
	return perr.FromPostgres(err, "invalidate link tokens")
}

func (r *pgRepo) InsertToken(ctx context.Context, userID int64, token string, expiresAt time.Time) error {
	_, err := r.q.Exec(ctx, `
		INSERT INTO telegram_link_tokens (user_id, token, expires_at) VALUES ($1, $2, $3)`,
		userID, token, expiresAt)
	return perr.FromPostgres(err, "insert link token")
}

func (r *pgRepo) UnusedToken(ctx context.Context, token string) (tgdom.StoredToken, bool, error) {
	t, err := store.One(ctx, r.q, func(row store.Row) (tgdom.StoredToken, error) {
		var t tgdom.StoredToken
		return t, row.Scan(&t.ID, &t.UserID, &t.Token, &t.ExpiresAt)
	}, `
		SELECT id, user_id, token, expires_at
		  FROM telegram_link_tokens
		 WHERE token = $1 AND NOT used
		   FOR UPDATE`, token)
	return found(t, err, "load link token")
}

func (r *pgRepo) MarkTokenUsed(ctx context.Context, id int64) error {
	return perr.FromPostgres(store.ExecOne(ctx, r.q, `UPDATE telegram_link_tokens SET used = true WHERE id = $1`, id), "use link token")
}

const channelSelect = `
	SELECT c.id, c.user_id, COALESCE(NULLIF(u.name, ''), u.email), c.chat_id, c.username, c.first_name, c.last_name,
	       c.is_active, c.is_verified, c.last_sent_at, c.error_count
	  FROM telegram_channels c
	  JOIN users u ON u.id = c.user_id`

func scanChannel(row store.Row) (tgdom.Channel, error) {
	var c tgdom.Channel
	err := row.Scan(&c.ID, &c.UserID, &c.UserName, &c.ChatID, &c.Username, &c.FirstName, &c.LastName,
		&c.IsActive, &c.IsVerified, &c.LastSentAt, &c.ErrorCount)
	return c, err
}

func (r *pgRepo) ChannelByChat(ctx context.Context, chatID int64) (tgdom.Channel, bool, error) {
	c, err := store.One(ctx, r.q, scanChannel, channelSelect+` WHERE c.chat_id = $1`, chatID)
	return found(c, err, "load channel")
}

func (r *pgRepo) ChannelByUser(ctx context.Context, userID int64) (tgdom.Channel, bool, error) {
	c, err := store.One(ctx, r.q, scanChannel, channelSelect+` WHERE c.user_id = $1`, userID)
	return found(c, err, "load channel")
}

func (r *pgRepo) LinkChannel(ctx context.Context, userID int64, p tgdom.ChatProfile) error {
	if _, err := r.q.Exec(ctx, `DELETE FROM telegram_channels WHERE user_id = $1 AND chat_id <> $2`, userID, p.ChatID); err != nil {
		return perr.FromPostgres(err, "replace channel")
	}
	_, err := r.q.Exec(ctx, `
		INSERT INTO telegram_channels (user_id, chat_id, username, first_name, last_name, is_active, is_verified)
		VALUES ($1, $2, $3, $4, $5, true, true)
		ON CONFLICT (chat_id) DO UPDATE
		   SET user_id = EXCLUDED.user_id,
		       username = EXCLUDED.username,
		       first_name = EXCLUDED.first_name,
		       last_name = EXCLUDED.last_name,
		       is_active = true,
		       is_verified = true,
		       updated_at = now()`,
		userID, p.ChatID, p.Username, p.FirstName, p.LastName)
	return perr.FromPostgres(err, "link channel")
}

func (r *pgRepo) DeleteChannel(ctx context.Context, id int64) error {
	return perr.FromPostgres(store.ExecOne(ctx, r.q, `DELETE FROM telegram_channels WHERE id = $1`, id), "delete channel")
}

func (r *pgRepo) SetActive(ctx context.Context, id int64, active bool) error {
	return perr.FromPostgres(store.ExecOne(ctx, r.q,
		`UPDATE telegram_channels SET is_active = $2, updated_at = now() WHERE id = $1`, id, active), "toggle channel")
}

func (r *pgRepo) UserName(ctx context.Context, userID int64) (string, error) {
	name, err := store.Scalar[string](ctx, r.q, `SELECT COALESCE(NULLIF(name, ''), email) FROM users WHERE id = $1`, userID)
	return name, perr.FromPostgres(err, "load user")
}

func (r *pgRepo) ActiveSubscriptionCount(ctx context.Context, userID int64) (int, error) {
	n, err := store.Scalar[int](ctx, r.q, `SELECT count(*) FROM subscriptions WHERE user_id = $1 AND is_active`, userID)
	return n, perr.FromPostgres(err, "count subscriptions")
}

func (r *pgRepo) ActiveSubscriptions(ctx context.Context, userID int64) ([]tgdom.Subscription, error) {
	out, err := store.Many(ctx, r.q, func(row store.Row) (tgdom.Subscription, error) {
		var s tgdom.Subscription
		return s, row.Scan(&s.SubjectKind, &s.Identifier, &s.EventTypes, &s.DeliveryMode)
	}, `
		SELECT t.subject_kind,
		       COALESCE(d.name || '.' || z.name, r.name, ''),
		       s.event_types,
		       s.delivery_mode
		  FROM subscriptions s
		  JOIN subscription_targets t ON t.id = s.target_id
		  LEFT JOIN domains d ON t.subject_kind = 'domain' AND d.id = t.subject_id
		  LEFT JOIN zones z ON z.id = d.zone_id
		  LEFT JOIN registrants r ON t.subject_kind = 'registrant' AND r.id = t.subject_id
		 WHERE s.user_id = $1 AND s.is_active
		 ORDER BY s.id`, userID)
	return out, perr.FromPostgres(err, "list subscriptions")
}

func (r *pgRepo) LogMessage(ctx context.Context, m tgdom.MessageLog) error {
	var raw any
	if len(m.Raw) > 0 {
		raw = string(m.Raw)
	}
	_, err := r.q.Exec(ctx, `
		INSERT INTO telegram_messages (channel_id, chat_id, direction, text, telegram_message_id, raw_data)
		VALUES (NULLIF($1::bigint, 0), $2, $3, $4, NULLIF($5::bigint, 0), $6::jsonb)`,
		m.ChannelID, m.ChatID, m.Direction, m.Text, m.MessageID, raw)
	return perr.FromPostgres(err, "log message")
}

func found[T any](v T, err error, op string) (T, bool, error) {
	if err != nil {
		if perr.IsCode(err, perr.ErrorCodeNotFound) {
			return v, false, nil
		}
		return v, false, perr.FromPostgres(err, op)
	}
	return v, true, nil
}
