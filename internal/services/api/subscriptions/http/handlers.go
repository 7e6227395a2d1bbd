// Package http exposes subscriptions and the notification inbox
package http

import (
	stdhttp "net/http"
	"strconv"

	"djnic/internal/modkit/httpkit"
	perr "djnic/internal/platform/errors"
	subdom "djnic/internal/services/api/subscriptions/domain"
)

// Register mounts the subscription and notification routes
func Register(r httpkit.Router, svc subdom.ServicePort) {
	h := &handlers{svc: svc}

	httpkit.PostJSON[subdom.SubscribeInput](r, "/subscriptions", h.subscribe)
	httpkit.Get(r, "/subscriptions", h.subscriptions)
	httpkit.Delete(r, "/subscriptions/{uid}", h.unsubscribe)

	httpkit.Get(r, "/notifications", h.notifications)
	httpkit.Post(r, "/notifications/{uid}/read", h.markRead)
	httpkit.Delete(r, "/notifications/{uid}", h.deleteNotification)

	httpkit.Get(r, "/domains", h.domains)
	httpkit.Get(r, "/registrants", h.registrants)
}

type handlers struct{ svc subdom.ServicePort }

// swagger:route POST /subscriptions Subscriptions subscribe
// @Summary Follow a domain or registrant
// @Description Creates the target on first use; subscribing again updates and reactivates
// @Tags Subscriptions
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param payload body domain.SubscribeInput true "Subscription"
// @Success 201 {object} domain.Subscription
// @Failure 404 {object} http.Envelope
// @Router /subscriptions [post]
func (h *handlers) subscribe(r *stdhttp.Request, in subdom.SubscribeInput) (any, error) {
	uid, err := httpkit.UserID(r)
	if err != nil {
		return nil, err
	}
	out, err := h.svc.Subscribe(r.Context(), uid, in)
	if err != nil {
		return nil, err
	}
	return httpkit.Created(out), nil
}

// swagger:route GET /subscriptions Subscriptions listSubscriptions
// @Summary Active subscriptions of the caller
// @Tags Subscriptions
// @Produce json
// @Security BearerAuth
// @Success 200 {array} domain.Subscription
// @Router /subscriptions [get]
func (h *handlers) subscriptions(r *stdhttp.Request) (any, error) {
	uid, err := httpkit.UserID(r)
	if err != nil {
		return nil, err
	}
	return h.svc.Subscriptions(r.Context(), uid)
}

// swagger:route DELETE /subscriptions/{uid} Subscriptions unsubscribe
// @Summary Cancel a subscription
// @Tags Subscriptions
// @Security BearerAuth
// @Param uid path string true "Subscription uid"
// @Success 204
// @Failure 404 {object} http.Envelope
// @Router /subscriptions/{uid} [delete]
func (h *handlers) unsubscribe(r *stdhttp.Request) (any, error) {
	uid, err := httpkit.UserID(r)
	if err != nil {
		return nil, err
	}
	if err := h.svc.Unsubscribe(r.Context(), uid, httpkit.Param(r, "uid")); err != nil {
		return nil, err
	}
	return httpkit.NoContent(), nil
}

// swagger:route GET /notifications Notifications listNotifications
// @Summary Notifications of the caller, newest first
// @Tags Notifications
// @Produce json
// @Security BearerAuth
// @Param unread query bool false "Only unread"
// @Param limit query int false "Page size, at most 200"
// @Success 200 {array} domain.Notification
// @Router /notifications [get]
func (h *handlers) notifications(r *stdhttp.Request) (any, error) {
	uid, err := httpkit.UserID(r)
	if err != nil {
		return nil, err
	}
	q := subdom.NotificationQuery{UserID: uid}
	v := r.URL.Query()
	if s := v.Get("unread"); s != "" {
		if q.Unread, err = strconv.ParseBool(s); err != nil {
			return nil, perr.WithField(perr.InvalidArgf("unread must be a boolean"), "unread")
		}
	}
	if s := v.Get("limit"); s != "" {
		if q.Limit, err = strconv.Atoi(s); err != nil || q.Limit < 0 {
			return nil, perr.WithField(perr.InvalidArgf("limit must be a positive integer"), "limit")
		}
	}
	return h.svc.Notifications(r.Context(), q)
}

// swagger:route POST /notifications/{uid}/read Notifications markNotificationRead
// @Summary Mark a notification as read
// @Tags Notifications
// @Security BearerAuth
// @Param uid path string true "Notification uid"
// @Success 204
// @Failure 404 {object} http.Envelope
// @Router /notifications/{uid}/read [post]
func (h *handlers) markRead(r *stdhttp.Request) (any, error) {
	uid, err := httpkit.UserID(r)
	if err != nil {
		return nil, err
	}
	if err := h.svc.MarkRead(r.Context(), uid, httpkit.Param(r, "uid")); err != nil {
		return nil, err
	}
	return httpkit.NoContent(), nil
}

// swagger:route DELETE /notifications/{uid} Notifications deleteNotification
// @Summary Delete a notification
// @Tags Notifications
// @Security BearerAuth
// @Param uid path string true "Notification uid"
// @Success 204
// @Failure 404 {object} http.Envelope
// @Router /notifications/{uid} [delete]
func (h *handlers) deleteNotification(r *stdhttp.Request) (any, error) {
	uid, err := httpkit.UserID(r)
	if err != nil {
		return nil, err
	}
	if err := h.svc.DeleteNotification(r.Context(), uid, httpkit.Param(r, "uid")); err != nil {
		return nil, err
	}
	return httpkit.NoContent(), nil
}

// swagger:route GET /domains Domains findDomains
// @Summary Look a domain up by name
// @Description Matches the full name (ejemplo.com.ar) or the bare name in every zone; the uid is the subscription target
// @Tags Domains
// @Produce json
// @Security BearerAuth
// @Param name query string true "Domain name"
// @Success 200 {array} domain.DomainRef
// @Failure 422 {object} http.Envelope
// @Router /domains [get]
func (h *handlers) domains(r *stdhttp.Request) (any, error) {
	return h.svc.Domains(r.Context(), r.URL.Query().Get("name"))
}

// swagger:route GET /registrants Registrants findRegistrants
// @Summary Look a registrant up by legal id
// @Tags Registrants
// @Produce json
// @Security BearerAuth
// @Param legal_uid query string true "CUIT/CUIL"
// @Success 200 {array} domain.RegistrantRef
// @Failure 422 {object} http.Envelope
// @Router /registrants [get]
func (h *handlers) registrants(r *stdhttp.Request) (any, error) {
	return h.svc.Registrants(r.Context(), r.URL.Query().Get("legal_uid"))
}
