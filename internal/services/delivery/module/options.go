package module

import (
	tg "djnic/internal/adapters/telegram"
	"djnic/internal/platform/config"
)

// Options for the delivery module
type Options struct {
	Limit      int
	MaxRetries int
	SiteURL    string
	Telegram   tg.Options
}

// FromConfig fills options from environment
// CORE_DELIVERY_LIMIT (default 100) caps the notifications handled per run
// CORE_DELIVERY_MAX_RETRIES (default 3) caps retried failed deliveries
// SITE_BASE_URL (default https://example.com) makes links in messages absolute
// TELEGRAM_* configures the bot client
func FromConfig(cfg config.Conf) Options {
	n := cfg.Prefix("CORE_DELIVERY_")
	return Options{
		Limit:      n.MayInt("LIMIT", 100),
		MaxRetries: n.MayInt("MAX_RETRIES", 3),
		SiteURL:    cfg.Prefix("SITE_").MayString("BASE_URL", "https://example.com"),
		Telegram:   tg.FromConfig(cfg),
	}
}
