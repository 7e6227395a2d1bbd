package httpkit

import (
	"net/http"
	"time"

	phttp "djnic/internal/platform/net/http"
	"djnic/internal/platform/net/middleware"
)

// CommonStack is the root middleware every server mounts
func CommonStack(cors middleware.CORSOptions) []func(http.Handler) http.Handler {
	return []func(http.Handler) http.Handler{
		middleware.RequestID(),
		middleware.RealIP(),
		middleware.AccessLog(middleware.AccessLogOptions{Slow: 500 * time.Millisecond}),
		middleware.RecoverJSON(phttp.RespondError),
		middleware.NoCache(),
		middleware.CORS(cors),
		middleware.Compress(),
		middleware.StripSlashes(),
		middleware.Timeout(30 * time.Second),
	}
}

// Auth wires the auth middleware to the JSON error writer
func Auth(p middleware.AuthPort) func(http.Handler) http.Handler {
	return middleware.Auth(p, phttp.RespondError)
}

// Protected mounts fn on a group that requires authentication through p
func Protected(r Router, p middleware.AuthPort, fn func(Router)) {
	r.Group(func(g Router) {
		g.Use(Auth(p))
		fn(g)
	})
}
