// Package api provides the HTTP API for the application
package api

import (
	tg "djnic/internal/adapters/telegram"
	"djnic/internal/platform/config"
	"djnic/internal/platform/logger"
	"djnic/internal/platform/metrics"
	phttp "djnic/internal/platform/net/http"
	"djnic/internal/platform/net/middleware"
	ptime "djnic/internal/platform/time"
	"djnic/internal/platform/store"

	"djnic/internal/modkit"
	"djnic/internal/modkit/httpkit"
	"djnic/internal/modkit/module"
	"djnic/internal/modkit/swaggerkit"

	metamod "djnic/internal/services/api/meta/module"
	submod "djnic/internal/services/api/subscriptions/module"
	tgmod "djnic/internal/services/api/telegram/module"
	chmod "djnic/internal/services/changes/module"
	scheddom "djnic/internal/services/scheduler/domain"
	schedmod "djnic/internal/services/scheduler/module"
)

// Base is the versioned API root
const Base = "/api/v1"

// Options are the API options
type Options struct {
	Service        string
	Config         config.Conf
	Store          *store.Store
	Metrics        *metrics.Metrics
	Clock          ptime.Clock
	Auth           middleware.AuthPort
	CORS           middleware.CORSOptions
	EnableSwagger  bool
	EnableProfiler bool
	EnableMetrics  bool
}

// Mount mounts the API service onto the given router
func Mount(r phttp.Router, opt Options) {
	deps := modkit.Deps{
		Log:     *logger.Named("api"),
		Cfg:     opt.Config,
		PG:      opt.Store.PG,
		Metrics: opt.Metrics,
		Clock:   opt.Clock,
		Auth:    opt.Auth,
	}

	// the change pipeline rescores through the scheduler
	sched := schedmod.New(deps, schedmod.FromConfig(deps.Cfg))
	rescorer := module.MustPortsOf[scheddom.RunnerPort](sched)

	bot := tg.NewClient(tg.FromConfig(deps.Cfg))
	telegram := tgmod.New(deps, tgmod.FromConfig(deps.Cfg), bot)

	mods := []module.Module{
		metamod.New(deps, opt.Service),
		chmod.New(deps, chmod.FromConfig(deps.Cfg), rescorer),
		telegram,
		submod.New(deps),
		sched,
	}

	stack := append(httpkit.CommonStack(opt.CORS), opt.Metrics.Instrument)

	swaggerkit.Mount(r, opt.EnableSwagger, Base)
	phttp.MountProfiler(r, "/debug", opt.EnableProfiler)
	if opt.EnableMetrics {
		r.Handle("/metrics", metrics.Handler())
	}

	// Telegram posts outside the versioned API
	r.Group(func(g phttp.Router) {
		g.Use(stack...)
		telegram.MountWebhook(g)
	})

	httpkit.MountAPIV1(r, stack, func(api httpkit.Router) {
		for _, m := range mods {
			module.Register(m.Name(), m.Ports())
			m.MountRoutes(api)
		}
	})
}
