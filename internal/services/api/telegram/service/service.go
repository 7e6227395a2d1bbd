// Package service runs the Telegram bot commands and the account linking flow
package service

import (
	"context"
	"encoding/json"
	"strings"
	"time"

	tg "djnic/internal/adapters/telegram"
	"djnic/internal/core/normalize"
	"djnic/internal/modkit/repokit"
	perr "djnic/internal/platform/errors"
	"djnic/internal/platform/logger"
	"djnic/internal/platform/metrics"
	ptime "djnic/internal/platform/time"
	tgdom "djnic/internal/services/api/telegram/domain"
)

// DefaultTokenTTL is how long a link token stays redeemable
const DefaultTokenTTL = 30 * time.Minute

// Config holds the names and limits the bot replies with
type Config struct {
	BotName  string
	SiteName string
	TokenTTL time.Duration
	Location *time.Location
}

// Service implements tgdom.ServicePort
type Service struct {
	DB      repokit.TxRunner
	Binder  repokit.Binder[tgdom.StorageRepo]
	Bot     tgdom.Bot
	Metrics *metrics.Metrics
	Clock   ptime.Clock
	Cfg     Config

	// newToken is swapped in tests
	newToken func() (string, error)
}

// New constructs the service
func New(db repokit.TxRunner, binder repokit.Binder[tgdom.StorageRepo], bot tgdom.Bot, cfg Config) *Service {
	if db == nil {
		panic("telegram.Service requires a non nil TxRunner")
	}
	if binder == nil {
		panic("telegram.Service requires a non nil Repo binder")
	}
	if bot == nil {
		panic("telegram.Service requires a bot client")
	}
	if cfg.TokenTTL <= 0 {
		cfg.TokenTTL = DefaultTokenTTL
	}
	if cfg.Location == nil {
		cfg.Location = time.UTC
	}
	return &Service{DB: db, Binder: binder, Bot: bot, Cfg: cfg, newToken: newToken}
}

func (s *Service) repo() tgdom.StorageRepo { return s.Binder.Bind(s.DB) }

// HandleUpdate processes one webhook update. Only private chat messages are handled,
// every one of them is logged and those starting with a slash run as commands.
func (s *Service) HandleUpdate(ctx context.Context, raw []byte) error {
	var u tg.Update
	if err := json.Unmarshal(raw, &u); err != nil {
		s.Metrics.IncWebhook("invalid")
		return perr.JSONErrf("invalid update: %v", err)
	}
	m := u.Message
	if m == nil || m.Chat.Type != tg.ChatPrivate {
		s.Metrics.IncWebhook("ignored")
		return nil
	}

	l := logger.C(ctx).With().Str("mod", "telegram").Int64("chat_id", m.Chat.ID).Logger()
	repo := s.repo()

	in := tgdom.MessageLog{ChatID: m.Chat.ID, Direction: tgdom.DirectionIn, Text: m.Text, MessageID: m.MessageID, Raw: raw}
	if ch, ok, err := repo.ChannelByChat(ctx, m.Chat.ID); err != nil {
		l.Warn().Err(err).Msg("channel lookup failed")
	} else if ok {
		in.ChannelID = ch.ID
	}
	if err := repo.LogMessage(ctx, in); err != nil {
		l.Error().Err(err).Msg("log incoming message failed")
	}

	cmd, arg, ok := normalize.Command(m.Text)
	if !ok {
		s.Metrics.IncWebhook("message")
		return nil
	}
	s.Metrics.IncWebhook("command")
	l.Info().Str("command", cmd).Msg("command received")

	reply, err := s.command(ctx, cmd, arg, profile(m))
	if err != nil {
		return err
	}
	return s.reply(ctx, m.Chat.ID, reply)
}

func profile(m *tg.Message) tgdom.ChatProfile {
	p := tgdom.ChatProfile{ChatID: m.Chat.ID}
	if m.From != nil {
		p.Username, p.FirstName, p.LastName = m.From.Username, m.From.FirstName, m.From.LastName
	}
	return p
}

// reply sends text to chatID as HTML and logs it as outgoing
func (s *Service) reply(ctx context.Context, chatID int64, text string) error {
	if !s.Bot.Configured() {
		return tg.ErrNotConfigured
	}
	sent, err := s.Bot.SendMessage(ctx, tg.SendMessage{ChatID: chatID, Text: text, ParseMode: tg.ParseModeHTML})
	if err != nil {
		return err
	}

	repo := s.repo()
	out := tgdom.MessageLog{ChatID: chatID, Direction: tgdom.DirectionOut, Text: text, MessageID: sent.MessageID}
	if ch, ok, err := repo.ChannelByChat(ctx, chatID); err == nil && ok {
		out.ChannelID = ch.ID
	}
	if err := repo.LogMessage(ctx, out); err != nil {
		logger.C(ctx).Error().Err(err).Str("mod", "telegram").Int64("chat_id", chatID).Msg("log outgoing message failed")
	}
	return nil
}

func (s *Service) command(ctx context.Context, cmd, arg string, p tgdom.ChatProfile) (string, error) {
	switch cmd {
	case "/start":
		return s.start(ctx, arg, p)
	case "/link":
		return s.link(ctx, arg, p)
	case "/unlink":
		return s.unlink(ctx, p.ChatID)
	case "/status":
		return s.status(ctx, p.ChatID)
	case "/suscripciones":
		return s.subscriptions(ctx, p.ChatID)
	case "/help":
		return replyHelp(s.Cfg.SiteName), nil
	default:
		return replyUnknown, nil
	}
}

// start doubles as /link when the deep link carries a token
func (s *Service) start(ctx context.Context, arg string, p tgdom.ChatProfile) (string, error) {
	if arg != "" {
		return s.link(ctx, arg, p)
	}
	ch, ok, err := s.repo().ChannelByChat(ctx, p.ChatID)
	if err != nil {
		return "", err
	}
	if ok && ch.IsVerified {
		return replyLinkedWelcome(p.FirstName, ch.UserName, s.Cfg.SiteName), nil
	}
	return replyWelcome(s.Cfg.BotName, s.Cfg.SiteName), nil
}

func (s *Service) link(ctx context.Context, arg string, p tgdom.ChatProfile) (string, error) {
	if strings.TrimSpace(arg) == "" {
		return replyLinkUsage, nil
	}
	res, err := s.Redeem(ctx, arg, p)
	switch {
	case err != nil:
		return "", err
	case res.Invalid:
		return replyInvalidToken, nil
	case res.LinkedTo != "":
		return replyLinkedElsewhere(res.LinkedTo), nil
	default:
		return replyLinked(res.UserName), nil
	}
}

func (s *Service) unlink(ctx context.Context, chatID int64) (string, error) {
	repo := s.repo()
	ch, ok, err := repo.ChannelByChat(ctx, chatID)
	if err != nil {
		return "", err
	}
	if !ok {
		return replyNotLinked, nil
	}
	if err := repo.DeleteChannel(ctx, ch.ID); err != nil {
		return "", err
	}
	return replyUnlinked(ch.UserName), nil
}

func (s *Service) status(ctx context.Context, chatID int64) (string, error) {
	repo := s.repo()
	ch, ok, err := repo.ChannelByChat(ctx, chatID)
	if err != nil {
		return "", err
	}
	if !ok {
		return replyStatusNotLinked, nil
	}
	n, err := repo.ActiveSubscriptionCount(ctx, ch.UserID)
	if err != nil {
		return "", err
	}
	return replyStatus(ch, n, s.Cfg.Location), nil
}

func (s *Service) subscriptions(ctx context.Context, chatID int64) (string, error) {
	repo := s.repo()
	ch, ok, err := repo.ChannelByChat(ctx, chatID)
	if err != nil {
		return "", err
	}
	if !ok {
		return replySubsNotLinked, nil
	}
	subs, err := repo.ActiveSubscriptions(ctx, ch.UserID)
	if err != nil {
		return "", err
	}
	if len(subs) == 0 {
		return replyNoSubscriptions(s.Cfg.SiteName), nil
	}
	return replySubscriptions(subs), nil
}

var _ tgdom.ServicePort = (*Service)(nil)
