package store

import (
	"context"
	"time"

	perr "djnic/internal/platform/errors"
	"djnic/internal/platform/logger"
	"djnic/internal/platform/store/pg"

	"github.com/codeGROOVE-dev/retry"
)

// openPG builds the pool and only returns once a ping succeeds
func openPG(ctx context.Context, cfg PGConfig, log logger.Logger) (*pgAdapter, error) {
	var tracer pg.QueryTracer
	if cfg.LogSQL {
		tracer = pg.Tracer(log)
	}
	p, err := pg.Open(ctx, pg.Config{URL: cfg.URL, MaxConns: cfg.MaxConns, SlowMs: cfg.SlowQueryMs, AppName: cfg.AppName}, tracer)
	if err != nil {
		return nil, perr.Wrap(err, perr.ErrorCodeInvalidArgument, "postgres config")
	}

	attempts := cfg.ConnectAttempts
	if attempts == 0 {
		attempts = 10
	}
	timeout := cfg.PingTimeout
	if timeout <= 0 {
		timeout = 3 * time.Second
	}

	err = retry.Do(
		func() error {
			pctx, cancel := context.WithTimeout(ctx, timeout)
			defer cancel()
			return p.Pool.Ping(pctx)
		},
		retry.Attempts(attempts),
		retry.Delay(150*time.Millisecond),
		retry.MaxDelay(2*time.Second),
		retry.Context(ctx),
		retry.LastErrorOnly(true),
		retry.OnRetry(func(n uint, err error) {
			log.Warn().Uint("attempt", n+1).Err(err).Msg("postgres not ready, retrying")
		}),
	)
	if err != nil {
		p.Close()
		return nil, perr.Wrapf(err, perr.ErrorCodeUnavailable, "postgres ping failed after %d attempts", attempts)
	}
	return &pgAdapter{p: p}, nil
}
