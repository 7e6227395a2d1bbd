package main

import (
	"context"
	"flag"
	"os"
	"os/signal"
	"strings"
	"syscall"

	tg "djnic/internal/adapters/telegram"
	"djnic/internal/platform/config"
	"djnic/internal/platform/logger"
	tgmod "djnic/internal/services/api/telegram/module"
)

func main() {
	var (
		fMode = flag.String("mode", "me", "set-webhook | delete-webhook | me")
		fURL  = flag.String("url", "", "webhook URL (default SITE_BASE_URL + "+tgmod.WebhookPath+")")
	)
	flag.Parse()

	opts := logger.FromEnv()
	if opts.Service == "" {
		opts.Service = "djnic-telegram"
	}
	logger.Init(opts)
	l := logger.Get()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	root := config.New()
	bot := tg.NewClient(tg.FromConfig(root))
	if !bot.Configured() {
		l.Error().Msg("TELEGRAM_BOT_TOKEN is not set")
		stop()
		os.Exit(2)
	}

	var err error
	switch *fMode {
	case "set-webhook":
		hook := *fURL
		if hook == "" {
			hook = strings.TrimRight(root.Prefix("SITE_").MustString("BASE_URL"), "/") + tgmod.WebhookPath
		}
		secret := root.Prefix("TELEGRAM_").MayString("WEBHOOK_SECRET", "")
		if err = bot.SetWebhook(ctx, hook, secret); err == nil {
			l.Info().Str("url", hook).Bool("secret", secret != "").Msg("webhook set")
		}
	case "delete-webhook":
		if err = bot.DeleteWebhook(ctx); err == nil {
			l.Info().Msg("webhook deleted")
		}
	case "me":
		var me tg.User
		if me, err = bot.GetMe(ctx); err == nil {
			l.Info().Int64("id", me.ID).Str("username", me.Username).Str("name", me.FirstName).Msg("bot identity")
		}
	default:
		l.Error().Str("mode", *fMode).Msg("unknown -mode")
		stop()
		os.Exit(2)
	}
	if err != nil {
		l.Error().Err(err).Str("mode", *fMode).Msg("telegram call failed")
		stop()
		os.Exit(1)
	}
}
