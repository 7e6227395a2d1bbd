package http

import (
	"context"
	"errors"
	stdhttp "net/http"
	"net/http/httptest"
	"strings"
	"testing"

	tgdom "djnic/internal/services/api/telegram/domain"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeSvc struct {
	tgdom.ServicePort
	got []string
	err error
}

func (f *fakeSvc) HandleUpdate(_ context.Context, raw []byte) error {
	f.got = append(f.got, string(raw))
	return f.err
}

func post(h stdhttp.HandlerFunc, secret, body string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(stdhttp.MethodPost, "/telegram/webhook", strings.NewReader(body))
	if secret != "" {
		req.Header.Set(SecretHeader, secret)
	}
	rec := httptest.NewRecorder()
	h(rec, req)
	return rec
}

func TestWebhook(t *testing.T) {
	t.Run("secret mismatch", func(t *testing.T) {
		svc := &fakeSvc{}
		rec := post(Webhook(svc, "s3cret", nil), "nope", `{}`)
		assert.Equal(t, stdhttp.StatusForbidden, rec.Code)
		assert.Equal(t, "Forbidden", rec.Body.String())
		assert.Empty(t, svc.got)
	})

	t.Run("secret match", func(t *testing.T) {
		svc := &fakeSvc{}
		rec := post(Webhook(svc, "s3cret", nil), "s3cret", `{"update_id":1}`)
		assert.Equal(t, stdhttp.StatusOK, rec.Code)
		assert.Equal(t, "OK", rec.Body.String())
		require.Len(t, svc.got, 1)
		assert.Equal(t, `{"update_id":1}`, svc.got[0])
	})

	t.Run("no secret configured", func(t *testing.T) {
		svc := &fakeSvc{}
		rec := post(Webhook(svc, "", nil), "", `{}`)
		assert.Equal(t, stdhttp.StatusOK, rec.Code)
		assert.Len(t, svc.got, 1)
	})

	t.Run("errors are swallowed", func(t *testing.T) {
		svc := &fakeSvc{err: errors.New("boom")}
		rec := post(Webhook(svc, "", nil), "", `{}`)
		assert.Equal(t, stdhttp.StatusOK, rec.Code)
		assert.Equal(t, "OK", rec.Body.String())
	})
}
