package main

import (
	"context"
	"flag"
	"os"
	"os/signal"
	"syscall"

	"djnic/internal/modkit/batchkit"
	"djnic/internal/platform/config"
	"djnic/internal/platform/logger"
	"djnic/internal/platform/store/migrate"
)

func main() {
	fMode := flag.String("mode", "up", "up | down | status | version")
	flag.Parse()

	opts := logger.FromEnv()
	if opts.Service == "" {
		opts.Service = "djnic-migrate"
	}
	logger.Init(opts)

	if err := run(*fMode); err != nil {
		logger.Get().Error().Err(err).Str("mode", *fMode).Msg("migrate failed")
		os.Exit(1)
	}
}

func run(mode string) error {
	l := logger.Get()
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	st, err := batchkit.OpenStore(ctx, config.New(), "djnic-migrate", 2)
	if err != nil {
		return err
	}
	defer func() { _ = st.Close(context.Background()) }()

	db, err := st.SQLDB()
	if err != nil {
		return err
	}
	defer func() { _ = db.Close() }()

	r, err := migrate.New(db)
	if err != nil {
		return err
	}

	switch mode {
	case "up":
		n, err := r.Up(ctx)
		if err != nil {
			return err
		}
		l.Info().Int("applied", n).Msg("schema up to date")
	case "down":
		return r.Down(ctx)
	case "status":
		rows, err := r.Status(ctx)
		if err != nil {
			return err
		}
		for _, s := range rows {
			l.Info().Int64("version", s.Version).Str("path", s.Path).Bool("applied", s.Applied).Msg("migration")
		}
	case "version":
		v, err := r.Version(ctx)
		if err != nil {
			return err
		}
		l.Info().Int64("version", v).Msg("schema version")
	default:
		return flag.ErrHelp
	}
	return nil
}
