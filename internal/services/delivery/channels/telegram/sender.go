// Package telegram delivers notifications as Telegram bot messages
package telegram

import (
	"context"
	"errors"
	"strconv"
	"time"

	tg "djnic/internal/adapters/telegram"
	"djnic/internal/modkit/repokit"
	"djnic/internal/platform/logger"
	ptime "djnic/internal/platform/time"
	dvdom "djnic/internal/services/delivery/domain"
)

// Bot is the part of the Bot API client the sender uses
type Bot interface {
	Configured() bool
	SendMessage(ctx context.Context, m tg.SendMessage) (tg.Message, error)
}

// Sender implements dvdom.Sender and dvdom.ChannelStats for Telegram
type Sender struct {
	Bot     Bot
	DB      repokit.TxRunner
	Binder  repokit.Binder[ChannelRepo]
	SiteURL string
	Clock   ptime.Clock
}

// NewSender wires a sender
func NewSender(bot Bot, db repokit.TxRunner, binder repokit.Binder[ChannelRepo], siteURL string, clock ptime.Clock) *Sender {
	if bot == nil || db == nil || binder == nil {
		panic("telegram.Sender requires a bot, a TxRunner and a Repo binder")
	}
	return &Sender{Bot: bot, DB: db, Binder: binder, SiteURL: siteURL, Clock: clock}
}

func (s *Sender) repo() ChannelRepo { return s.Binder.Bind(s.DB) }

// ChannelType returns "telegram"
func (s *Sender) ChannelType() string { return dvdom.ChannelTelegram }

// ActiveChannels returns the linked, active chats of userID
func (s *Sender) ActiveChannels(ctx context.Context, userID int64) ([]dvdom.Channel, error) {
	return s.repo().ActiveChannels(ctx, userID)
}

// Format renders n as Telegram HTML
func (s *Sender) Format(n dvdom.Notification) string { return Format(n, s.SiteURL) }

// Send makes one attempt. A 403 from Telegram means the user blocked the bot and deactivates the channel.
func (s *Sender) Send(ctx context.Context, ch dvdom.Channel, n dvdom.Notification) dvdom.SendResult {
	if !s.Bot.Configured() {
		return dvdom.SendResult{Error: tg.ErrNotConfigured.Error()}
	}
	l := logger.C(ctx).With().Str("mod", "delivery.telegram").Int64("channel_id", ch.ID).Int64("chat_id", ch.ChatID).Logger()

	mode := ch.ParseMode
	if mode == "" {
		mode = tg.ParseModeHTML
	}
	text := s.Format(n)
	msg, err := s.Bot.SendMessage(ctx, tg.SendMessage{
		ChatID:                ch.ChatID,
		Text:                  text,
		ParseMode:             mode,
		DisableWebPagePreview: ch.DisablePreview,
	})
	if err != nil {
		var ae *tg.APIError
		if errors.As(err, &ae) && ae.Blocked() {
			l.Warn().Msg("user blocked the bot, deactivating channel")
			if derr := s.repo().Deactivate(ctx, ch.ID, s.Clock.Now()); derr != nil {
				l.Error().Err(derr).Msg("deactivate channel failed")
			}
		}
		return dvdom.SendResult{Error: err.Error()}
	}

	l.Info().Int64("message_id", msg.MessageID).Int64("notification_id", n.ID).Msg("notification sent")
	if err := s.repo().LogOutgoing(ctx, OutMessage{ChannelID: ch.ID, ChatID: ch.ChatID, Text: text, MessageID: msg.MessageID}); err != nil {
		l.Error().Err(err).Msg("log outgoing message failed")
	}
	return dvdom.SendResult{Success: true, ExternalID: strconv.FormatInt(msg.MessageID, 10)}
}

// Succeeded stamps last_sent_at and resets the error counter
func (s *Sender) Succeeded(ctx context.Context, ch dvdom.Channel, at time.Time) error {
	return s.repo().Succeeded(ctx, ch.ID, at)
}

// Failed records the error on the channel
func (s *Sender) Failed(ctx context.Context, ch dvdom.Channel, msg string, at time.Time) error {
	return s.repo().Failed(ctx, ch.ID, msg, at)
}

var (
	_ dvdom.Sender       = (*Sender)(nil)
	_ dvdom.ChannelStats = (*Sender)(nil)
)
