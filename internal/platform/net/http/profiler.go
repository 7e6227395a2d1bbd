package http

import (
	"strings"

	chimw "github.com/go-chi/chi/v5/middleware"
)

// MountProfiler serves pprof under prefix when enabled; keep it off in production
func MountProfiler(r Router, prefix string, enabled bool) {
	if !enabled {
		return
	}
	prefix = "/" + strings.Trim(prefix, "/")
	r.Route(prefix, func(sub Router) {
		sub.Handle("/*", chimw.Profiler())
	})
}
