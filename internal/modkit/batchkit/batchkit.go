// Package batchkit runs one invocation of a batch job.
//
// Every batch binary follows the same shape: open the store, take the job
// lease, do the work, log a summary line and push the run to a Pushgateway.
// Main owns the process plumbing; Runner.Execute is the testable core.
package batchkit

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"djnic/internal/modkit"
	"djnic/internal/platform/config"
	"djnic/internal/platform/logger"
	"djnic/internal/platform/metrics"
	"djnic/internal/platform/store"
	ptime "djnic/internal/platform/time"
	jobsdom "djnic/internal/services/jobs/domain"
	"djnic/internal/services/jobs/guardrails"
	jobsmod "djnic/internal/services/jobs/module"

	"golang.org/x/text/language"
	"golang.org/x/text/message"
)

// Summary is what a job reports back
type Summary struct {
	// Line is the human summary logged at info level
	Line   string
	Counts map[string]int

	// Skipped is set when another invocation held the lease
	Skipped bool
}

// Work is the body of a job
type Work func(ctx context.Context) (Summary, error)

// Runner executes Work under a lease and reports on it
type Runner struct {
	Job     string
	Lease   jobsdom.RunnerPort
	PushURL string
	Clock   ptime.Clock

	push func(context.Context, string, metrics.RunSummary) error
}

// NewRunner builds a Runner pushing through metrics.Push
func NewRunner(job string, lease jobsdom.RunnerPort, pushURL string, clock ptime.Clock) *Runner {
	if lease == nil {
		panic("batchkit: nil lease runner")
	}
	return &Runner{Job: job, Lease: lease, PushURL: pushURL, Clock: clock, push: metrics.Push}
}

// Execute runs work. A held lease is not an error: the summary comes back with Skipped set.
func (r *Runner) Execute(ctx context.Context, work Work) (Summary, error) {
	log := logger.C(ctx).With().Str("job", r.Job).Logger()
	start := r.Clock.Now()

	var sum Summary
	err := r.Lease.Run(ctx, r.Job, func(ctx context.Context) error {
		s, err := work(ctx)
		sum = s
		return err
	})
	if guardrails.Skip(err) {
		log.Info().Msg("another run holds the lease; nothing to do")
		return Summary{Skipped: true}, nil
	}
	took := r.Clock.Now().Sub(start)

	if r.PushURL != "" && r.push != nil {
		rs := metrics.RunSummary{Job: r.Job, Counts: sum.Counts, Duration: took, Failed: err != nil}
		if perr := r.push(ctx, r.PushURL, rs); perr != nil {
			log.Warn().Err(perr).Msg("pushgateway push failed")
		}
	}

	if err != nil {
		log.Error().Err(err).Dur("took", took).Msg("job failed")
		return sum, err
	}
	ev := log.Info().Dur("took", took)
	for k, v := range sum.Counts {
		ev = ev.Int(k, v)
	}
	ev.Msg(sum.Line)
	return sum, nil
}

var printer = message.NewPrinter(language.Spanish)

// Sprintf formats like fmt.Sprintf with Spanish digit grouping, e.g. 12.345
func Sprintf(format string, args ...any) string { return printer.Sprintf(format, args...) }

// Env is what Main hands to a job body
type Env struct {
	Deps  modkit.Deps
	Store *store.Store
}

// Main runs job as a process: it exits 1 when the work fails and 0 otherwise,
// including when another invocation holds the lease.
// SERVICE_PGSQL_DBURL is required; METRICS_PUSHGATEWAY_URL enables the push.
func Main(job string, body func(ctx context.Context, env Env) (Summary, error)) {
	os.Exit(run(job, body))
}

func run(job string, body func(ctx context.Context, env Env) (Summary, error)) int {
	opts := logger.FromEnv()
	if opts.Service == "" {
		opts.Service = "djnic-" + job
	}
	logger.Init(opts)
	l := logger.Get()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	root := config.New()
	st, err := OpenStore(ctx, root, opts.Service, 4)
	if err != nil {
		l.Error().Err(err).Msg("store.Open failed")
		return 1
	}
	defer func() {
		if err := st.Close(context.Background()); err != nil {
			l.Error().Err(err).Msg("failed to close store")
		}
	}()

	deps := modkit.Deps{
		Log:     *l,
		Cfg:     root,
		PG:      st.PG,
		Metrics: metrics.Default(),
	}
	lease := jobsmod.New(deps, jobsmod.FromConfig(root))
	ports := lease.Ports().(jobsmod.Ports)

	r := NewRunner(job, ports.Runner, root.Prefix("METRICS_").MayString("PUSHGATEWAY_URL", ""), deps.Clock)
	if _, err := r.Execute(ctx, func(ctx context.Context) (Summary, error) {
		return body(ctx, Env{Deps: deps, Store: st})
	}); err != nil {
		return 1
	}
	return 0
}

// OpenStore opens Postgres as app from the SERVICE_PGSQL_ variables:
// DBURL (required), MAX_CONNS, SLOW_MS, LOG_SQL, CONNECT_ATTEMPTS and PING_TIMEOUT
func OpenStore(ctx context.Context, root config.Conf, app string, maxConns int) (*store.Store, error) {
	pg := root.Prefix("SERVICE_PGSQL_")
	return store.Open(ctx, store.Config{
		PG: store.PGConfig{
			Enabled:         true,
			AppName:         app,
			URL:             pg.MustString("DBURL"),
			MaxConns:        int32(pg.MayInt("MAX_CONNS", maxConns)),
			SlowQueryMs:     pg.MayInt("SLOW_MS", 500),
			LogSQL:          pg.MayBool("LOG_SQL", false),
			ConnectAttempts: uint(pg.MayInt("CONNECT_ATTEMPTS", 10)),
			PingTimeout:     pg.MayDuration("PING_TIMEOUT", 0),
		},
	}, store.WithLogger(*logger.Get()))
}
