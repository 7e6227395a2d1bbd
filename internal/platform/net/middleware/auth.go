package middleware

import (
	"net/http"

	pnet "djnic/internal/platform/net"
)

// AuthPort resolves the caller of a request
type AuthPort interface {
	Parse(r *http.Request) (userID string, err error)
}

// Auth rejects requests p cannot authenticate and stores the user id on the context.
// A nil port lets every request through unauthenticated.
func Auth(p AuthPort, write func(w http.ResponseWriter, r *http.Request, err error)) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if p == nil {
				next.ServeHTTP(w, r)
				return
			}
			uid, err := p.Parse(r)
			if err != nil {
				write(w, r, err)
				return
			}
			next.ServeHTTP(w, r.WithContext(pnet.WithUser(r.Context(), uid)))
		})
	}
}
