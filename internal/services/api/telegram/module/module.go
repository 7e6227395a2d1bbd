// Package module wires the Telegram bot and account linking as a modkit.Module
package module

import (
	"net/http"

	tg "djnic/internal/adapters/telegram"
	"djnic/internal/modkit"
	"djnic/internal/modkit/httpkit"
	pstrings "djnic/internal/platform/strings"
	ptime "djnic/internal/platform/time"
	tgdom "djnic/internal/services/api/telegram/domain"
	tghttp "djnic/internal/services/api/telegram/http"
	tgrepo "djnic/internal/services/api/telegram/repo"
	tgsvc "djnic/internal/services/api/telegram/service"
)

// WebhookPath is where Telegram posts updates, outside the versioned API
const WebhookPath = "/telegram/webhook"

// Ports exported by the Telegram module
type Ports struct {
	Service tgdom.ServicePort
}

// Module implements modkit.Module for the bot
type Module struct {
	deps   modkit.Deps
	opts   Options
	name   string
	prefix string
	mws    []func(http.Handler) http.Handler
	ports  Ports
}

// New wires the service; bot may be shared with the delivery module, nil builds one from opts
func New(deps modkit.Deps, opts Options, bot tgdom.Bot, mopts ...modkit.Option) *Module {
	b := modkit.Build(append([]modkit.Option{modkit.WithName("telegram"), modkit.WithPrefix("/telegram")}, mopts...)...)
	if bot == nil {
		bot = tg.NewClient(opts.Telegram)
	}

	svc := tgsvc.New(deps.PG, tgrepo.NewPG(), bot, tgsvc.Config{
		BotName:  opts.BotName,
		SiteName: opts.SiteName,
		TokenTTL: opts.TokenTTL,
		Location: ptime.LoadLocation(opts.SiteTZ),
	})
	svc.Metrics = deps.Metrics
	svc.Clock = deps.Clock

	return &Module{deps: deps, opts: opts, name: b.Name, prefix: b.Prefix, mws: b.Mw, ports: Ports{Service: svc}}
}

// MountRoutes mounts the authenticated account endpoints
func (m *Module) MountRoutes(r httpkit.Router) {
	httpkit.MountUnder(r, pstrings.MustPrefix(m.prefix), m.mws, func(rr httpkit.Router) {
		httpkit.Protected(rr, m.deps.Auth, func(g httpkit.Router) {
			tghttp.Register(g, m.ports.Service)
		})
	})
}

// MountWebhook mounts the public update endpoint on the root router
func (m *Module) MountWebhook(r httpkit.Router) {
	r.Post(WebhookPath, tghttp.Webhook(m.ports.Service, m.opts.WebhookSecret, m.deps.Metrics))
}

// Name returns the module name
func (m *Module) Name() string { return m.name }

// Ports returns the module ports
func (m *Module) Ports() any { return m.ports }
