// Package http exposes the Telegram webhook and the account linking endpoints
package http

import (
	"crypto/subtle"
	"io"
	stdhttp "net/http"

	"djnic/internal/modkit/httpkit"
	"djnic/internal/platform/logger"
	"djnic/internal/platform/metrics"
	tgdom "djnic/internal/services/api/telegram/domain"
)

// SecretHeader carries the secret Telegram was given in setWebhook
const SecretHeader = "X-Telegram-Bot-Api-Secret-Token"

// maxUpdate bounds the body of one webhook update
const maxUpdate = 1 << 20

// Webhook returns the update handler. With a secret set, requests without the
// matching header get 403; anything else answers 200 so Telegram does not redeliver.
func Webhook(svc tgdom.ServicePort, secret string, m *metrics.Metrics) httpkit.Handler {
	return func(w stdhttp.ResponseWriter, r *stdhttp.Request) {
		l := logger.C(r.Context()).With().Str("mod", "telegram").Logger()
		if secret != "" && subtle.ConstantTimeCompare([]byte(r.Header.Get(SecretHeader)), []byte(secret)) != 1 {
			m.IncWebhook("forbidden")
			l.Warn().Str("remote", r.RemoteAddr).Msg("webhook secret mismatch")
			text(w, stdhttp.StatusForbidden, "Forbidden")
			return
		}

		raw, err := io.ReadAll(stdhttp.MaxBytesReader(w, r.Body, maxUpdate))
		if err != nil {
			m.IncWebhook("error")
			l.Error().Err(err).Msg("read update failed")
			text(w, stdhttp.StatusOK, "OK")
			return
		}
		if err := svc.HandleUpdate(r.Context(), raw); err != nil {
			m.IncWebhook("error")
			l.Error().Err(err).Msg("handle update failed")
		}
		text(w, stdhttp.StatusOK, "OK")
	}
}

func text(w stdhttp.ResponseWriter, status int, body string) {
	w.Header().Set("Content-Type", "text/plain; charset=utf-8")
	w.WriteHeader(status)
	_, _ = io.WriteString(w, body)
}

// Register mounts the authenticated account endpoints
func Register(r httpkit.Router, svc tgdom.ServicePort) {
	h := &handlers{svc: svc}

	httpkit.Post(r, "/link-token", h.linkToken)
	httpkit.Get(r, "/status", h.status)
	httpkit.Post(r, "/toggle", h.toggle)
	httpkit.Delete(r, "/", h.unlink)
}

type handlers struct{ svc tgdom.ServicePort }

// swagger:route POST /telegram/link-token Telegram telegramLinkToken
// @Summary Issue a link token
// @Description Retires earlier unused tokens. The user sends the token to the bot with /link
// @Tags Telegram
// @Produce json
// @Security BearerAuth
// @Success 200 {object} domain.LinkToken
// @Router /telegram/link-token [post]
func (h *handlers) linkToken(r *stdhttp.Request) (any, error) {
	uid, err := httpkit.UserID(r)
	if err != nil {
		return nil, err
	}
	return h.svc.IssueToken(r.Context(), uid)
}

// swagger:route GET /telegram/status Telegram telegramStatus
// @Summary Linked Telegram account
// @Tags Telegram
// @Produce json
// @Security BearerAuth
// @Success 200 {object} domain.Status
// @Router /telegram/status [get]
func (h *handlers) status(r *stdhttp.Request) (any, error) {
	uid, err := httpkit.UserID(r)
	if err != nil {
		return nil, err
	}
	return h.svc.Status(r.Context(), uid)
}

// swagger:route POST /telegram/toggle Telegram telegramToggle
// @Summary Enable or pause Telegram notifications
// @Description An empty body flips the current state
// @Tags Telegram
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param payload body domain.ToggleRequest false "Action"
// @Success 200 {object} domain.ToggleResult
// @Failure 404 {object} http.Envelope
// @Router /telegram/toggle [post]
func (h *handlers) toggle(r *stdhttp.Request) (any, error) {
	uid, err := httpkit.UserID(r)
	if err != nil {
		return nil, err
	}
	var in tgdom.ToggleRequest
	if r.ContentLength != 0 {
		if in, err = httpkit.BindJSON[tgdom.ToggleRequest](r); err != nil {
			return nil, err
		}
	}
	return h.svc.Toggle(r.Context(), uid, in.Action)
}

// swagger:route DELETE /telegram Telegram telegramUnlink
// @Summary Unlink the Telegram account
// @Tags Telegram
// @Produce json
// @Security BearerAuth
// @Success 200 {object} domain.UnlinkResult
// @Failure 404 {object} http.Envelope
// @Router /telegram [delete]
func (h *handlers) unlink(r *stdhttp.Request) (any, error) {
	uid, err := httpkit.UserID(r)
	if err != nil {
		return nil, err
	}
	return h.svc.Unlink(r.Context(), uid)
}
