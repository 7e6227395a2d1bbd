// Package module wires meta endpoints into the API using a tiny module
package module

import (
	"net/http"

	"djnic/internal/modkit"
	"djnic/internal/modkit/httpkit"
	"djnic/internal/modkit/module"
	pstrings "djnic/internal/platform/strings"

	metahttp "djnic/internal/services/api/meta/http"
)

// Module implements the modkit.Module interface
type Module struct {
	name   string
	prefix string
	mws    []func(http.Handler) http.Handler
	deps   metahttp.Deps
}

// New constructs a meta module; service names the binary in health and version replies
func New(deps modkit.Deps, service string, opts ...modkit.Option) *Module {
	b := modkit.Build(append([]modkit.Option{
		modkit.WithName("meta"),
		modkit.WithPrefix("/meta"),
	}, opts...)...)

	checks := map[string]metahttp.Pinger{"pg": nil}
	if p, ok := deps.PG.(metahttp.Pinger); ok {
		checks["pg"] = p
	}

	return &Module{
		name:   b.Name,
		prefix: b.Prefix,
		mws:    b.Mw,
		deps: metahttp.Deps{
			ServiceName: service,
			StartedAt:   deps.Clock.Now(),
			Clock:       deps.Clock,
			Checks:      checks,
			Order:       []string{"pg"},
			Modules:     module.Names,
		},
	}
}

// MountRoutes implements the modkit.Module interface
func (m *Module) MountRoutes(r httpkit.Router) {
	httpkit.MountUnder(r, pstrings.MustPrefix(m.prefix), m.mws, func(rr httpkit.Router) {
		metahttp.Register(rr, m.deps)
	})
}

// Name implements the modkit.Module interface
func (m *Module) Name() string { return m.name }

// Ports implements the modkit.Module interface
func (m *Module) Ports() any { return nil }
