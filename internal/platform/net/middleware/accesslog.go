// Package middleware holds the HTTP middleware shared by every module
package middleware

import (
	"net/http"
	"time"

	"djnic/internal/platform/logger"
	pnet "djnic/internal/platform/net"
)

// AccessLogOptions configures the access log
type AccessLogOptions struct {
	// Slow marks requests at or above this duration as warn, 0 disables
	Slow time.Duration
}

// StatusWriter records the status and byte count written through it
type StatusWriter struct {
	http.ResponseWriter
	Status int
	Bytes  int
}

// WriteHeader records code before forwarding it
func (sw *StatusWriter) WriteHeader(code int) {
	sw.Status = code
	sw.ResponseWriter.WriteHeader(code)
}

func (sw *StatusWriter) Write(b []byte) (int, error) {
	n, err := sw.ResponseWriter.Write(b)
	sw.Bytes += n
	return n, err
}

// AccessLog logs one line per request with the request scoped logger
func AccessLog(opt AccessLogOptions) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			sw := &StatusWriter{ResponseWriter: w, Status: http.StatusOK}
			start := time.Now()
			ctx := pnet.WithRequest(r.Context(), pnet.RequestID(r.Context()))

			next.ServeHTTP(sw, r.WithContext(ctx))

			elapsed := time.Since(start)
			log := logger.C(ctx)
			evt := log.Info()
			if opt.Slow > 0 && elapsed >= opt.Slow {
				evt = log.Warn()
			}
			evt.Int("status", sw.Status).
				Dur("elapsed", elapsed).
				Str("method", r.Method).
				Str("path", r.URL.Path).
				Int("bytes", sw.Bytes).
				Msg("request done")
		})
	}
}
