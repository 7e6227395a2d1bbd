// Package module wires the scheduler as a modkit.Module
package module

import (
	"djnic/internal/modkit"
	"djnic/internal/modkit/httpkit"
	"djnic/internal/modkit/repokit"
	scheddom "djnic/internal/services/scheduler/domain"
	schedhttp "djnic/internal/services/scheduler/http"
	schedrepo "djnic/internal/services/scheduler/repo"
	schedsvc "djnic/internal/services/scheduler/service"
)

// Ports exported by the scheduler module
type Ports struct {
	Runner scheddom.RunnerPort
	Picker scheddom.PickerPort
}

// Module implements modkit.Module for the scheduler
type Module struct {
	deps  modkit.Deps
	opts  Options
	ports Ports
}

// New constructs and wires the scheduler
func New(deps modkit.Deps, opts Options) *Module {
	db := deps.PG
	if opts.StatementTimeout > 0 {
		db = repokit.WithBeginHooks(db, repokit.StatementTimeout(opts.StatementTimeout))
	}
	svc := schedsvc.New(db, schedrepo.NewPG(), deps.Clock)
	return &Module{deps: deps, opts: opts, ports: Ports{Runner: svc, Picker: svc}}
}

// Defaults fills zero fields of p from the module options
func (m *Module) Defaults(p scheddom.Params) scheddom.Params {
	if p.Chunk <= 0 {
		p.Chunk = m.opts.Chunk
	}
	if p.Bulk <= 0 {
		p.Bulk = m.opts.Bulk
	}
	if p.Sleep <= 0 {
		p.Sleep = m.opts.Sleep
	}
	if p.SleepEvery <= 0 {
		p.SleepEvery = m.opts.SleepEvery
	}
	return p
}

// Name returns the module name
func (m *Module) Name() string { return "scheduler" }

// Ports returns the module ports
func (m *Module) Ports() any { return m.ports }

// MountRoutes mounts the authenticated poller handout
func (m *Module) MountRoutes(r httpkit.Router) {
	httpkit.Protected(r, m.deps.Auth, func(p httpkit.Router) {
		schedhttp.Register(p, m.ports.Picker)
	})
}
