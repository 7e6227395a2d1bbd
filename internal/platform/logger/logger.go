// Package logger wraps zerolog with env driven defaults and context scoped fields
package logger

import (
	"context"
	"io"
	"os"
	"strings"
	"sync"
	"sync/atomic"
	"time"

	"djnic/internal/platform/config/raw"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/pkgerrors"
)

// Options configures the root logger
type Options struct {
	Level      string
	Format     string // console or json
	Service    string
	Writer     io.Writer
	WithCaller bool
	Static     map[string]string
}

// FromEnv reads LOG_LEVEL, LOG_FORMAT, LOG_SERVICE and LOG_CALLER
func FromEnv() Options {
	rc := raw.New().Prefix("LOG_")
	return Options{
		Level:      strings.ToLower(rc.Get("LEVEL", "info")),
		Format:     strings.ToLower(rc.Get("FORMAT", "console")),
		Service:    rc.Get("SERVICE", ""),
		WithCaller: rc.GetBool("CALLER", false),
	}
}

// Logger is the logging type used across the module
type Logger = zerolog.Logger

var (
	once sync.Once
	root atomic.Pointer[zerolog.Logger]
)

// Init builds the root logger; only the first call has an effect
func Init(opt Options) {
	once.Do(func() {
		zerolog.ErrorStackMarshaler = pkgerrors.MarshalStack
		zerolog.TimeFieldFormat = time.RFC3339Nano

		var w io.Writer = os.Stderr
		if opt.Writer != nil {
			w = opt.Writer
		}
		if opt.Format != "json" {
			w = zerolog.ConsoleWriter{Out: w, TimeFormat: time.RFC3339}
		}

		lvl, err := zerolog.ParseLevel(strings.TrimSpace(opt.Level))
		if err != nil || lvl == zerolog.NoLevel {
			lvl = zerolog.InfoLevel
		}

		b := zerolog.New(w).Level(lvl).With().Timestamp()
		if opt.Service != "" {
			b = b.Str("service", opt.Service)
		}
		for k, v := range opt.Static {
			b = b.Str(k, v)
		}
		if opt.WithCaller {
			b = b.Caller()
		}
		l := b.Logger()
		root.Store(&l)
	})
}

// Get returns the root logger, initialising it from the env on first use
func Get() *Logger {
	if l := root.Load(); l != nil {
		return l
	}
	Init(FromEnv())
	return root.Load()
}

// Named returns a child logger tagged with component
func Named(component string) *Logger {
	if component == "" {
		return Get()
	}
	l := Get().With().Str("component", component).Logger()
	return &l
}

type ctxKey int

const (
	keyRequestID ctxKey = iota
	keyUserID
	keyJob
)

// WithRequest stores the request id and authenticated user id on ctx
func WithRequest(ctx context.Context, reqID, userID string) context.Context {
	if reqID != "" {
		ctx = context.WithValue(ctx, keyRequestID, reqID)
	}
	if userID != "" {
		ctx = context.WithValue(ctx, keyUserID, userID)
	}
	return ctx
}

// WithJob stores the batch job name on ctx
func WithJob(ctx context.Context, job string) context.Context {
	if job == "" {
		return ctx
	}
	return context.WithValue(ctx, keyJob, job)
}

// C returns a child logger carrying request_id, user_id and job from ctx
func C(ctx context.Context) *Logger {
	b := Get().With()
	for _, f := range []struct {
		key  ctxKey
		name string
	}{{keyRequestID, "request_id"}, {keyUserID, "user_id"}, {keyJob, "job"}} {
		if s, ok := ctx.Value(f.key).(string); ok && s != "" {
			b = b.Str(f.name, s)
		}
	}
	l := b.Logger()
	return &l
}
