// Package module wires the delivery stage and its senders as a modkit.Module
package module

import (
	tg "djnic/internal/adapters/telegram"
	"djnic/internal/modkit"
	"djnic/internal/modkit/httpkit"
	tgchan "djnic/internal/services/delivery/channels/telegram"
	dvdom "djnic/internal/services/delivery/domain"
	dvrepo "djnic/internal/services/delivery/repo"
	dvsvc "djnic/internal/services/delivery/service"
)

// Ports exported by the delivery module
type Ports struct {
	Delivery dvdom.ServicePort
	Registry *dvdom.Registry
}

// Module implements modkit.Module for delivery
type Module struct {
	opts  Options
	ports Ports
}

// New constructs the registry with the Telegram sender and the service over it.
// bot may be shared with other modules; nil builds one from opts.
func New(deps modkit.Deps, opts Options, bot tgchan.Bot) *Module {
	if bot == nil {
		bot = tg.NewClient(opts.Telegram)
	}
	reg := dvdom.NewRegistry(tgchan.NewSender(bot, deps.PG, tgchan.NewPG(), opts.SiteURL, deps.Clock))
	svc := dvsvc.New(deps.PG, dvrepo.NewPG(), reg, deps.Clock)
	svc.Metrics = deps.Metrics
	return &Module{opts: opts, ports: Ports{Delivery: svc, Registry: reg}}
}

// Defaults fills zero fields of p from the module options
func (m *Module) Defaults(p dvdom.Params) dvdom.Params {
	if p.Limit <= 0 {
		p.Limit = m.opts.Limit
	}
	if p.MaxRetries <= 0 {
		p.MaxRetries = m.opts.MaxRetries
	}
	return p
}

// Name returns the module name
func (m *Module) Name() string { return "delivery" }

// Ports returns the module ports
func (m *Module) Ports() any { return m.ports }

// MountRoutes is a no-op: delivery runs from the batch binary
func (m *Module) MountRoutes(_ httpkit.Router) {}
