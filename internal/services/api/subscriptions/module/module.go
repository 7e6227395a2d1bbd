// Package module wires subscriptions and the notification inbox as a modkit.Module
package module

import (
	"net/http"

	"djnic/internal/modkit"
	"djnic/internal/modkit/httpkit"
	subdom "djnic/internal/services/api/subscriptions/domain"
	subhttp "djnic/internal/services/api/subscriptions/http"
	subrepo "djnic/internal/services/api/subscriptions/repo"
	subsvc "djnic/internal/services/api/subscriptions/service"
)

// Ports exported by the subscriptions module
type Ports struct {
	Service subdom.ServicePort
}

// Module implements modkit.Module; its routes sit at the API root
type Module struct {
	deps  modkit.Deps
	name  string
	mws   []func(http.Handler) http.Handler
	ports Ports
}

// New wires the service
func New(deps modkit.Deps, mopts ...modkit.Option) *Module {
	b := modkit.Build(append([]modkit.Option{modkit.WithName("subscriptions")}, mopts...)...)
	svc := subsvc.New(deps.PG, subrepo.NewPG())
	return &Module{deps: deps, name: b.Name, mws: b.Mw, ports: Ports{Service: svc}}
}

// MountRoutes mounts the authenticated routes
func (m *Module) MountRoutes(r httpkit.Router) {
	r.Group(func(g httpkit.Router) {
		if len(m.mws) > 0 {
			g.Use(m.mws...)
		}
		httpkit.Protected(g, m.deps.Auth, func(p httpkit.Router) {
			subhttp.Register(p, m.ports.Service)
		})
	})
}

// Name returns the module name
func (m *Module) Name() string { return m.name }

// Ports returns the module ports
func (m *Module) Ports() any { return m.ports }
