package httpkit

import (
	"net/http"
	"strings"

	perr "djnic/internal/platform/errors"
)

// TokenFunc resolves a raw bearer token to a user id
type TokenFunc func(token string) (userID string, err error)

// Port implements middleware.AuthPort over the Authorization header
type Port struct {
	parse TokenFunc
}

// NewPortFunc builds a Port from a parser
func NewPortFunc(fn TokenFunc) *Port { return &Port{parse: fn} }

// Parse reads "Authorization: Bearer <token>" and delegates to the parser
func (p *Port) Parse(r *http.Request) (string, error) {
	raw, err := BearerToken(r)
	if err != nil {
		return "", err
	}
	if p.parse == nil {
		return "", perr.Unauthorizedf("invalid bearer token")
	}
	uid, err := p.parse(raw)
	if err != nil || uid == "" {
		return "", perr.Unauthorizedf("invalid bearer token")
	}
	return uid, nil
}

// BearerToken returns the token of a case insensitive Bearer Authorization header
func BearerToken(r *http.Request) (string, error) {
	scheme, raw, ok := strings.Cut(strings.TrimSpace(r.Header.Get("Authorization")), " ")
	if !ok || !strings.EqualFold(scheme, "bearer") || strings.TrimSpace(raw) == "" {
		return "", perr.Unauthorizedf("missing bearer token")
	}
	return strings.TrimSpace(raw), nil
}
