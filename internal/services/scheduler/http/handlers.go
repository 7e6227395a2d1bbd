// Package http exposes the poller handout
package http

import (
	stdhttp "net/http"
	"strconv"

	"djnic/internal/modkit/httpkit"
	perr "djnic/internal/platform/errors"
	scheddom "djnic/internal/services/scheduler/domain"
)

// Register mounts the scheduler routes
func Register(r httpkit.Router, picker scheddom.PickerPort) {
	h := &handlers{picker: picker}
	httpkit.Get(r, "/domains/next-priority", h.next)
}

type handlers struct{ picker scheddom.PickerPort }

// swagger:route GET /domains/next-priority Domains nextPriority
// @Summary Next domain to poll
// @Description Picks one of the highest ranked domains at random, zeroes its priority and keeps it out of the ranking for three days
// @Tags Domains
// @Produce json
// @Security BearerAuth
// @Param pool query int false "How many top domains to pick from, default 100"
// @Success 200 {object} domain.Candidate
// @Failure 404 {object} http.Envelope
// @Router /domains/next-priority [get]
func (h *handlers) next(r *stdhttp.Request) (any, error) {
	k := 0
	if s := r.URL.Query().Get("pool"); s != "" {
		n, err := strconv.Atoi(s)
		if err != nil || n <= 0 || n > 1000 {
			return nil, perr.WithField(perr.InvalidArgf("pool must be between 1 and 1000"), "pool")
		}
		k = n
	}
	return h.picker.Next(r.Context(), k)
}
