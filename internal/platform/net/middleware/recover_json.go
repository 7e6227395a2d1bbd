package middleware

import (
	"net/http"
	"runtime/debug"

	perr "djnic/internal/platform/errors"
	"djnic/internal/platform/logger"
	pnet "djnic/internal/platform/net"
)

// RecoverJSON turns a panic into a logged stack and a JSON 500 written by write
func RecoverJSON(write func(w http.ResponseWriter, r *http.Request, err error)) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			defer func() {
				v := recover()
				if v == nil {
					return
				}
				if v == http.ErrAbortHandler {
					panic(v)
				}
				logger.C(r.Context()).Error().
					Interface("panic", v).
					Bytes("stack", debug.Stack()).
					Msg("panic recovered")
				if id := pnet.RequestID(r.Context()); id != "" {
					w.Header().Set("X-Request-ID", id)
				}
				write(w, r, perr.PanicErrf("panic recovered"))
			}()
			next.ServeHTTP(w, r)
		})
	}
}
