// @title         djnic API
// @version       0.1.0
// @description   Telegram webhook, link tokens, subscriptions and notifications

package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"djnic/internal/modkit/batchkit"
	"djnic/internal/modkit/httpkit"
	"djnic/internal/platform/config"
	"djnic/internal/platform/logger"
	"djnic/internal/platform/metrics"
	phttp "djnic/internal/platform/net/http"
	"djnic/internal/platform/net/middleware"

	"djnic/internal/services/api"

	"golang.org/x/sync/errgroup"

	_ "time/tzdata"
)

const service = "djnic-api"

func main() {
	if err := run(); err != nil {
		logger.Get().Error().Err(err).Msg("http server stopped")
		os.Exit(1)
	}
}

func run() error {
	opts := logger.FromEnv()
	if opts.Service == "" {
		opts.Service = service
	}
	logger.Init(opts)
	l := logger.Get()

	root := config.New()
	apiCfg := root.Prefix("API_")
	authCfg := root.Prefix("AUTH_")

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	st, err := batchkit.OpenStore(ctx, root, opts.Service, 8)
	if err != nil {
		return err
	}
	defer func() {
		if err := st.Close(context.Background()); err != nil {
			l.Error().Err(err).Msg("failed to close store")
		}
	}()

	jwt := httpkit.NewJWT(authCfg.MustString("SECRET"), authCfg.MayString("ISSUER", ""))

	srv := phttp.NewServer(apiCfg.MustPort("PORT"))
	api.Mount(srv.Router(), api.Options{
		Service: service,
		Config:  root,
		Store:   st,
		Metrics: metrics.Default(),
		Auth:    httpkit.NewPortFunc(jwt.Verify),
		CORS: middleware.CORSOptions{
			AllowedOrigins: apiCfg.MayCSV("CORS_ORIGINS", nil),
		},
		EnableSwagger:  apiCfg.MayBool("SWAGGER", true),
		EnableProfiler: apiCfg.MayBool("PROFILER", false),
		EnableMetrics:  apiCfg.MayBool("METRICS", true),
	})

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error { return srv.Run(gctx) })
	g.Go(func() error {
		<-gctx.Done()
		l.Info().Msg("shutting down")
		return nil
	})
	return g.Wait()
}
