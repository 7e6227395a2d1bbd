package module

import (
	"time"

	tg "djnic/internal/adapters/telegram"
	"djnic/internal/platform/config"
	tgsvc "djnic/internal/services/api/telegram/service"
)

// Options for the Telegram module
type Options struct {
	WebhookSecret string
	BotName       string
	SiteName      string
	SiteTZ        string
	TokenTTL      time.Duration
	Telegram      tg.Options
}

// FromConfig fills options from environment
// TELEGRAM_WEBHOOK_SECRET (optional) must match the secret header of every update
// TELEGRAM_BOT_NAME (default djnic) is shown in the /start greeting
// TELEGRAM_LINK_TOKEN_TTL (default 30m) bounds how long a link token is redeemable
// SITE_NAME (default djnic) names the site in bot replies
// SITE_TZ (default America/Argentina/Buenos_Aires) renders times in /status
func FromConfig(cfg config.Conf) Options {
	t := cfg.Prefix("TELEGRAM_")
	site := cfg.Prefix("SITE_")
	return Options{
		WebhookSecret: t.MayString("WEBHOOK_SECRET", ""),
		BotName:       t.MayString("BOT_NAME", "djnic"),
		TokenTTL:      t.MayDuration("LINK_TOKEN_TTL", tgsvc.DefaultTokenTTL),
		SiteName:      site.MayString("NAME", "djnic"),
		SiteTZ:        site.MayString("TZ", "America/Argentina/Buenos_Aires"),
		Telegram:      tg.FromConfig(cfg),
	}
}
