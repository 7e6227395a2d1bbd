// Package http exposes the change pipeline to the WHOIS poller
package http

import (
	stdhttp "net/http"

	"djnic/internal/modkit/httpkit"
	chdom "djnic/internal/services/changes/domain"
)

// Register mounts the change endpoints
func Register(r httpkit.Router, svc chdom.ServicePort) {
	h := &handlers{svc: svc}
	httpkit.PostJSON[chdom.Observation](r, "/apply", h.apply)
}

type handlers struct{ svc chdom.ServicePort }

// swagger:route POST /changes/apply Changes changesApply
// @Summary Apply one registry observation
// @Description Diffs the observation against the stored domain, records the change, derives events and rescores the domain
// @Tags Changes
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param payload body domain.Observation true "Observation"
// @Success 200 {object} domain.ApplyResult
// @Router /changes/apply [post]
func (h *handlers) apply(r *stdhttp.Request, in chdom.Observation) (any, error) {
	return h.svc.Apply(r.Context(), in)
}
