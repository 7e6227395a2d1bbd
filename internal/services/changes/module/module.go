// Package module wires the change pipeline as a modkit.Module
package module

import (
	"net/http"

	"djnic/internal/modkit"
	"djnic/internal/modkit/httpkit"
	pstrings "djnic/internal/platform/strings"
	chdom "djnic/internal/services/changes/domain"
	chhttp "djnic/internal/services/changes/http"
	chrepo "djnic/internal/services/changes/repo"
	chsvc "djnic/internal/services/changes/service"
)

// Ports exported by the changes module
type Ports struct {
	Service chdom.ServicePort
}

// Module implements modkit.Module for the change pipeline
type Module struct {
	deps   modkit.Deps
	name   string
	prefix string
	mws    []func(http.Handler) http.Handler
	ports  Ports
}

// New wires the service; rescorer is usually the scheduler runner
func New(deps modkit.Deps, opts Options, rescorer chdom.Rescorer, mopts ...modkit.Option) *Module {
	b := modkit.Build(append([]modkit.Option{modkit.WithName("changes"), modkit.WithPrefix("/changes")}, mopts...)...)

	svc := chsvc.New(deps.PG, chrepo.NewPG(), rescorer, chsvc.Config{DefaultTZ: opts.DefaultTZ, ZoneTZ: opts.ZoneTZ})
	svc.Metrics = deps.Metrics
	svc.Clock = deps.Clock

	return &Module{deps: deps, name: b.Name, prefix: b.Prefix, mws: b.Mw, ports: Ports{Service: svc}}
}

// MountRoutes mounts the authenticated apply endpoint
func (m *Module) MountRoutes(r httpkit.Router) {
	httpkit.MountUnder(r, pstrings.MustPrefix(m.prefix), m.mws, func(rr httpkit.Router) {
		httpkit.Protected(rr, m.deps.Auth, func(g httpkit.Router) {
			chhttp.Register(g, m.ports.Service)
		})
	})
}

// Name returns the module name
func (m *Module) Name() string { return m.name }

// Ports returns the module ports
func (m *Module) Ports() any { return m.ports }
