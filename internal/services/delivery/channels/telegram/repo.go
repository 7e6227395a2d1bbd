package telegram

import (
	"context"
	"time"

	"djnic/internal/modkit/repokit"
	perr "djnic/internal/platform/errors"
	"djnic/internal/platform/store"
	dvdom "djnic/internal/services/delivery/domain"
)

// OutMessage is one message the bot sent
type OutMessage struct {
	ChannelID int64
	ChatID    int64
	Text      string
	MessageID int64
}

// ChannelRepo is the storage the sender needs
type ChannelRepo interface {
	ActiveChannels(ctx context.Context, userID int64) ([]dvdom.Channel, error)
	Succeeded(ctx context.Context, channelID int64, at time.Time) error
	Failed(ctx context.Context, channelID int64, msg string, at time.Time) error
	Deactivate(ctx context.Context, channelID int64, at time.Time) error
	LogOutgoing(ctx context.Context, m OutMessage) error
}

// NewPG returns a binder for the Postgres channel repo
func NewPG() repokit.Binder[ChannelRepo] {
	return repokit.BindFunc[ChannelRepo](func(q repokit.Queryer) ChannelRepo { return &pgRepo{q: q} })
}

type pgRepo struct{ q repokit.Queryer }

func (r *pgRepo) ActiveChannels(ctx context.Context, userID int64) ([]dvdom.Channel, error) {
	out, err := store.Many(ctx, r.q, func(row store.Row) (dvdom.Channel, error) {
		var c dvdom.Channel
		err := row.Scan(&c.ID, &c.UserID, &c.ChatID, &c.ParseMode, &c.DisablePreview)
		return c, err
	}, `
		SELECT id, user_id, chat_id, parse_mode, disable_preview
		  FROM telegram_channels
		 WHERE user_id = $1 AND is_active AND is_verified
		 ORDER BY id`, userID)
	return out, perr.FromPostgres(err, "telegram channels")
}

func (r *pgRepo) Succeeded(ctx context.Context, channelID int64, at time.Time) error {
	_, err := r.q.Exec(ctx, `
		UPDATE telegram_channels SET last_sent_at = $2, error_count = 0, updated_at = $2 WHERE id = $1`,
		channelID, at)
	return perr.FromPostgres(err, "telegram channel sent")
}

func (r *pgRepo) Failed(ctx context.Context, channelID int64, msg string, at time.Time) error {
	_, err := r.q.Exec(ctx, `
		UPDATE telegram_channels
		   SET last_error_at = $2, last_error_message = $3, error_count = error_count + 1, updated_at = $2
		 WHERE id = $1`, channelID, at, msg)
	return perr.FromPostgres(err, "telegram channel failed")
}

func (r *pgRepo) Deactivate(ctx context.Context, channelID int64, at time.Time) error {
	_, err := r.q.Exec(ctx, `UPDATE telegram_channels SET is_active = false, updated_at = $2 WHERE id = $1`, channelID, at)
	return perr.FromPostgres(err, "telegram channel deactivate")
}

func (r *pgRepo) LogOutgoing(ctx context.Context, m OutMessage) error {
	_, err := r.q.Exec(ctx, `
		INSERT INTO telegram_messages (channel_id, chat_id, direction, text, telegram_message_id)
		VALUES (NULLIF($1::bigint, 0), $2, 'out', $3, $4)`, m.ChannelID, m.ChatID, m.Text, m.MessageID)
	return perr.FromPostgres(err, "log outgoing message")
}
