// Package module wires the notifier as a modkit.Module
package module

import (
	"djnic/internal/modkit"
	"djnic/internal/modkit/httpkit"
	"djnic/internal/modkit/repokit"
	ntdom "djnic/internal/services/notifier/domain"
	ntrepo "djnic/internal/services/notifier/repo"
	ntsvc "djnic/internal/services/notifier/service"
)

// Ports exported by the notifier module
type Ports struct {
	Processor ntdom.ProcessorPort
}

// Module implements modkit.Module for the notifier
type Module struct {
	opts  Options
	ports Ports
}

// New constructs and wires the notifier
func New(deps modkit.Deps, opts Options) *Module {
	db := deps.PG
	if opts.StatementTimeout > 0 {
		db = repokit.WithBeginHooks(db, repokit.StatementTimeout(opts.StatementTimeout))
	}
	svc := ntsvc.New(db, ntrepo.NewPG(), deps.Clock)
	return &Module{opts: opts, ports: Ports{Processor: svc}}
}

// Defaults fills zero fields of p from the module options
func (m *Module) Defaults(p ntdom.Params) ntdom.Params {
	if p.Limit <= 0 {
		p.Limit = m.opts.Limit
	}
	return p
}

// Name returns the module name
func (m *Module) Name() string { return "notifier" }

// Ports returns the module ports
func (m *Module) Ports() any { return m.ports }

// MountRoutes is a no-op: notifications are served by the subscriptions API
func (m *Module) MountRoutes(_ httpkit.Router) {}
