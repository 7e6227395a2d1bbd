package httpkit

import (
	"net/http"
	"strconv"

	perr "djnic/internal/platform/errors"
	pnet "djnic/internal/platform/net"
)

// UserID returns the authenticated numeric user id
func UserID(r *http.Request) (int64, error) {
	s := pnet.UserID(r.Context())
	if s == "" {
		return 0, perr.Unauthorizedf("missing bearer token")
	}
	id, err := strconv.ParseInt(s, 10, 64)
	if err != nil {
		return 0, perr.Unauthorizedf("invalid user id")
	}
	return id, nil
}
