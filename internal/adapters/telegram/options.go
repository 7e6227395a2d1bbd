package telegram

import "djnic/internal/platform/config"

// FromConfig reads the bot settings
// TELEGRAM_BOT_TOKEN is the bot token; empty disables every call
// TELEGRAM_API_URL overrides the Bot API base URL, e.g. for a local bot server
func FromConfig(cfg config.Conf) Options {
	c := cfg.Prefix("TELEGRAM_")
	return Options{
		BaseURL: c.MayString("API_URL", baseURLDefault),
		Token:   c.MayString("BOT_TOKEN", ""),
	}
}
