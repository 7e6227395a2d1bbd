// Package module wires the job lease as a modkit.Module
package module

import (
	"context"

	"djnic/internal/modkit"
	"djnic/internal/modkit/httpkit"
	jobsdom "djnic/internal/services/jobs/domain"
	"djnic/internal/services/jobs/guardrails"
	jobsrepo "djnic/internal/services/jobs/repo"
)

// Ports exported by the jobs module
type Ports struct {
	Runner jobsdom.RunnerPort
}

// Module implements modkit.Module for job leases
type Module struct {
	ports Ports
}

// New constructs the module; with leases disabled Runner runs work directly
func New(deps modkit.Deps, opts Options) *Module {
	var runner jobsdom.RunnerPort = unguarded{}
	if opts.Enabled {
		lease := guardrails.MakeLease(deps.PG, jobsrepo.NewPG(), opts.LeaseTTL)
		lease.Heartbeat = opts.Heartbeat
		runner = lease
	}
	return &Module{ports: Ports{Runner: runner}}
}

// Name returns the module name
func (m *Module) Name() string { return "jobs" }

// Ports returns the module ports
func (m *Module) Ports() any { return m.ports }

// MountRoutes is a no-op: jobs have no HTTP routes
func (m *Module) MountRoutes(_ httpkit.Router) {}

type unguarded struct{}

func (unguarded) Run(ctx context.Context, _ string, do func(context.Context) error) error {
	return do(ctx)
}
