package main

import (
	"context"
	"flag"

	"djnic/internal/modkit/batchkit"
	"djnic/internal/modkit/module"
	dvdom "djnic/internal/services/delivery/domain"
	dvmod "djnic/internal/services/delivery/module"

	_ "time/tzdata"
)

func main() {
	var (
		fLimit      = flag.Int("limit", 100, "max notifications handled this run")
		fChannel    = flag.String("channel", "", "only this channel type, e.g. telegram")
		fDryRun     = flag.Bool("dryrun", false, "list what would be sent without sending")
		fRetry      = flag.Bool("retry-failed", false, "also retry failed deliveries")
		fMaxRetries = flag.Int("max-retries", dvdom.DefaultMaxRetries, "retry ceiling for failed deliveries")
	)
	flag.Parse()

	batchkit.Main("notify", func(ctx context.Context, env batchkit.Env) (batchkit.Summary, error) {
		dv := dvmod.New(env.Deps, dvmod.FromConfig(env.Deps.Cfg), nil)
		module.Register(dv.Name(), dv.Ports())
		svc := module.MustPortsOf[dvdom.ServicePort](dv)

		p := dv.Defaults(dvdom.Params{
			Limit:       *fLimit,
			Channel:     *fChannel,
			DryRun:      *fDryRun,
			RetryFailed: *fRetry,
			MaxRetries:  *fMaxRetries,
		})
		res, err := svc.Run(ctx, p)

		line := batchkit.Sprintf("completed: %d sent, %d failed", res.Sent, res.Failed)
		if p.DryRun {
			line = batchkit.Sprintf("dry run: %d deliveries planned over %d notifications", res.Planned, res.Notifications)
		}
		return batchkit.Summary{
			Line: line,
			Counts: map[string]int{
				"notifications": res.Notifications,
				"sent":          res.Sent,
				"failed":        res.Failed,
				"skipped":       res.Skipped,
				"planned":       res.Planned,
			},
		}, err
	})
}
