// Package telegram is a small Bot API client for sending messages and managing the webhook
package telegram

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"io"
	"net"
	"net/http"
	"net/url"
	"strings"
	"time"

	perr "djnic/internal/platform/errors"
	"djnic/internal/platform/logger"

	"github.com/codeGROOVE-dev/retry"
)

const (
	baseURLDefault      = "https://api.telegram.org"
	defaultTimeout      = 10 * time.Second
	defaultSetupRetries = 3
	defaultRetryDelay   = 500 * time.Millisecond
)

var (
	// ErrNotConfigured is returned by every call when no bot token is set
	ErrNotConfigured = perr.New(perr.ErrorCodeUnavailable, "TELEGRAM_BOT_TOKEN not configured")
	// ErrTimeout is returned when the Bot API did not answer in time
	ErrTimeout = perr.New(perr.ErrorCodeUnavailable, "Telegram API timeout")
)

// Options configures the Client
type Options struct {
	BaseURL string
	Token   string
	Timeout time.Duration

	// SetupRetries and RetryDelay apply to webhook management only; sends are never retried
	SetupRetries uint
	RetryDelay   time.Duration
}

// Client calls the Bot API over HTTPS
type Client struct {
	http *http.Client
	opts Options
	log  logger.Logger
}

// NewClient creates a Client with defaults filled in
func NewClient(o Options) *Client {
	if o.BaseURL == "" {
		o.BaseURL = baseURLDefault
	}
	o.BaseURL = strings.TrimRight(o.BaseURL, "/")
	if o.Timeout <= 0 {
		o.Timeout = defaultTimeout
	}
	if o.SetupRetries == 0 {
		o.SetupRetries = defaultSetupRetries
	}
	if o.RetryDelay <= 0 {
		o.RetryDelay = defaultRetryDelay
	}
	return &Client{
		http: &http.Client{Timeout: o.Timeout},
		opts: o,
		log:  *logger.Named("telegram"),
	}
}

// Configured reports whether a bot token is set
func (c *Client) Configured() bool { return c != nil && c.opts.Token != "" }

// SendMessage posts one message and returns what Telegram stored
func (c *Client) SendMessage(ctx context.Context, m SendMessage) (Message, error) {
	var out Message
	err := c.call(ctx, "sendMessage", m, &out)
	return out, err
}

// SetWebhook points the bot at hookURL; secret is echoed back in X-Telegram-Bot-Api-Secret-Token
func (c *Client) SetWebhook(ctx context.Context, hookURL, secret string) error {
	return c.setup(ctx, "setWebhook", setWebhook{URL: hookURL, SecretToken: secret, AllowedUpdates: []string{"message"}})
}

// DeleteWebhook removes the webhook
func (c *Client) DeleteWebhook(ctx context.Context) error {
	return c.setup(ctx, "deleteWebhook", struct{}{})
}

// GetMe returns the bot account
func (c *Client) GetMe(ctx context.Context) (User, error) {
	var u User
	err := c.call(ctx, "getMe", struct{}{}, &u)
	return u, err
}

// setup retries transport failures and 5xx answers; 4xx answers are final
func (c *Client) setup(ctx context.Context, method string, payload any) error {
	return retry.Do(
		func() error {
			var ok bool
			return c.call(ctx, method, payload, &ok)
		},
		retry.Attempts(c.opts.SetupRetries),
		retry.Delay(c.opts.RetryDelay),
		retry.MaxDelay(10*time.Second),
		retry.Context(ctx),
		retry.LastErrorOnly(true),
		retry.RetryIf(func(err error) bool {
			var ae *APIError
			return !errors.As(err, &ae) || ae.Code >= 500 || ae.Code == http.StatusTooManyRequests
		}),
		retry.OnRetry(func(n uint, err error) {
			c.log.Warn().Str("method", method).Uint("attempt", n+1).Err(err).Msg("bot api call failed, retrying")
		}),
	)
}

// call posts payload as JSON to method and decodes result into out
func (c *Client) call(ctx context.Context, method string, payload, out any) error {
	if !c.Configured() {
		return ErrNotConfigured
	}
	body, err := json.Marshal(payload)
	if err != nil {
		return perr.Wrap(err, perr.ErrorCodeJSON, "encode "+method)
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.opts.BaseURL+"/bot"+c.opts.Token+"/"+method, bytes.NewReader(body))
	if err != nil {
		return perr.Wrap(err, perr.ErrorCodeUnknown, "Request error")
	}
	req.Header.Set("Content-Type", "application/json")

	start := time.Now()
	resp, err := c.http.Do(req)
	if err != nil {
		if timedOut(err) {
			return ErrTimeout
		}
		// the url carries the token
		var ue *url.Error
		if errors.As(err, &ue) {
			err = ue.Err
		}
		return perr.Wrap(err, perr.ErrorCodeUnavailable, "Request error")
	}
	defer func() { _ = resp.Body.Close() }()

	var env envelope
	if err := json.NewDecoder(io.LimitReader(resp.Body, 1<<20)).Decode(&env); err != nil {
		if timedOut(err) {
			return ErrTimeout
		}
		return perr.Wrapf(err, perr.ErrorCodeUpstream, "Request error: HTTP %d", resp.StatusCode)
	}

	c.log.Debug().
		Str("method", method).
		Int("status", resp.StatusCode).
		Bool("ok", env.OK).
		Dur("latency", time.Since(start)).
		Msg("bot api response")

	if !env.OK {
		code := env.ErrorCode
		if code == 0 {
			code = resp.StatusCode
		}
		desc := env.Description
		if desc == "" {
			desc = "Unknown Telegram API error"
		}
		return &APIError{Code: code, Description: desc}
	}
	if out == nil || len(env.Result) == 0 {
		return nil
	}
	if err := json.Unmarshal(env.Result, out); err != nil {
		return perr.Wrap(err, perr.ErrorCodeUpstream, "decode "+method+" result")
	}
	return nil
}

func timedOut(err error) bool {
	if errors.Is(err, context.DeadlineExceeded) {
		return true
	}
	var ne net.Error
	return errors.As(err, &ne) && ne.Timeout()
}
