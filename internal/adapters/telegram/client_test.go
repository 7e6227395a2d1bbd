package telegram

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync/atomic"
	"testing"
	"time"
)

func newTestClient(t *testing.T, h http.HandlerFunc) *Client {
	t.Helper()
	srv := httptest.NewServer(h)
	t.Cleanup(srv.Close)
	return NewClient(Options{BaseURL: srv.URL, Token: "123:abc", Timeout: time.Second, RetryDelay: time.Millisecond})
}

func TestSendMessage(t *testing.T) {
	var got SendMessage
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/bot123:abc/sendMessage" {
			t.Errorf("path = %q", r.URL.Path)
		}
		if err := json.NewDecoder(r.Body).Decode(&got); err != nil {
			t.Errorf("decode: %v", err)
		}
		_, _ = w.Write([]byte(`{"ok":true,"result":{"message_id":42,"chat":{"id":7,"type":"private"},"date":1}}`))
	})

	m, err := c.SendMessage(context.Background(), SendMessage{ChatID: 7, Text: "<b>hola</b>", ParseMode: ParseModeHTML, DisableWebPagePreview: true})
	if err != nil {
		t.Fatalf("send: %v", err)
	}
	if m.MessageID != 42 || m.Chat.ID != 7 {
		t.Fatalf("message = %+v", m)
	}
	if got.ChatID != 7 || got.ParseMode != "HTML" || !got.DisableWebPagePreview {
		t.Fatalf("payload = %+v", got)
	}
}

func TestAPIError(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusForbidden)
		_, _ = w.Write([]byte(`{"ok":false,"error_code":403,"description":"Forbidden: bot was blocked by the user"}`))
	})

	_, err := c.SendMessage(context.Background(), SendMessage{ChatID: 7, Text: "x"})
	var ae *APIError
	if !errors.As(err, &ae) || !ae.Blocked() {
		t.Fatalf("want blocked APIError, got %v", err)
	}
	if want := "Telegram API error 403: Forbidden: bot was blocked by the user"; err.Error() != want {
		t.Fatalf("error = %q", err.Error())
	}
}

func TestNotConfigured(t *testing.T) {
	c := NewClient(Options{})
	if c.Configured() {
		t.Fatal("configured without token")
	}
	_, err := c.SendMessage(context.Background(), SendMessage{ChatID: 1})
	if !errors.Is(err, ErrNotConfigured) || err.Error() != "TELEGRAM_BOT_TOKEN not configured" {
		t.Fatalf("err = %v", err)
	}
}

func TestTimeout(t *testing.T) {
	release := make(chan struct{})
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		select {
		case <-release:
		case <-r.Context().Done():
		}
	}))
	t.Cleanup(srv.Close)
	t.Cleanup(func() { close(release) })

	c := NewClient(Options{BaseURL: srv.URL, Token: "t", Timeout: 50 * time.Millisecond})
	_, err := c.SendMessage(context.Background(), SendMessage{ChatID: 1})
	if !errors.Is(err, ErrTimeout) || err.Error() != "Telegram API timeout" {
		t.Fatalf("err = %v", err)
	}
}

func TestRequestErrorHidesToken(t *testing.T) {
	srv := httptest.NewServer(http.NotFoundHandler())
	url := srv.URL
	srv.Close()

	c := NewClient(Options{BaseURL: url, Token: "secret-token"})
	_, err := c.SendMessage(context.Background(), SendMessage{ChatID: 1})
	if err == nil || !strings.HasPrefix(err.Error(), "Request error: ") {
		t.Fatalf("err = %v", err)
	}
	if strings.Contains(err.Error(), "secret-token") {
		t.Fatalf("token leaked: %v", err)
	}
}

func TestSetWebhookRetriesServerErrors(t *testing.T) {
	var calls atomic.Int32
	var got setWebhook
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		if calls.Add(1) < 3 {
			w.WriteHeader(http.StatusBadGateway)
			_, _ = w.Write([]byte(`{"ok":false,"error_code":502,"description":"Bad Gateway"}`))
			return
		}
		_ = json.NewDecoder(r.Body).Decode(&got)
		_, _ = w.Write([]byte(`{"ok":true,"result":true,"description":"Webhook was set"}`))
	})

	if err := c.SetWebhook(context.Background(), "https://djnic.example/telegram/webhook", "s3"); err != nil {
		t.Fatalf("set webhook: %v", err)
	}
	if calls.Load() != 3 {
		t.Fatalf("calls = %d", calls.Load())
	}
	if got.URL != "https://djnic.example/telegram/webhook" || got.SecretToken != "s3" {
		t.Fatalf("payload = %+v", got)
	}
}

func TestSetWebhookDoesNotRetryClientErrors(t *testing.T) {
	var calls atomic.Int32
	c := newTestClient(t, func(w http.ResponseWriter, _ *http.Request) {
		calls.Add(1)
		w.WriteHeader(http.StatusBadRequest)
		_, _ = w.Write([]byte(`{"ok":false,"error_code":400,"description":"Bad Request: bad webhook"}`))
	})

	err := c.SetWebhook(context.Background(), "http://bad", "")
	var ae *APIError
	if !errors.As(err, &ae) || ae.Code != 400 {
		t.Fatalf("err = %v", err)
	}
	if calls.Load() != 1 {
		t.Fatalf("calls = %d", calls.Load())
	}
}

func TestGetMe(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, _ *http.Request) {
		_, _ = w.Write([]byte(`{"ok":true,"result":{"id":99,"is_bot":true,"first_name":"djnic","username":"djnic_bot"}}`))
	})
	u, err := c.GetMe(context.Background())
	if err != nil || u.Username != "djnic_bot" || !u.IsBot {
		t.Fatalf("me = %+v, %v", u, err)
	}
}
