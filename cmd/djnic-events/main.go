package main

import (
	"context"
	"flag"

	"djnic/internal/modkit/batchkit"
	"djnic/internal/modkit/module"
	ntdom "djnic/internal/services/notifier/domain"
	ntmod "djnic/internal/services/notifier/module"

	_ "time/tzdata"
)

func main() {
	var (
		fLimit  = flag.Int("limit", 1000, "max events handled this run")
		fDryRun = flag.Bool("dryrun", false, "read and match but write nothing")
	)
	flag.Parse()

	batchkit.Main("events", func(ctx context.Context, env batchkit.Env) (batchkit.Summary, error) {
		nt := ntmod.New(env.Deps, ntmod.FromConfig(env.Deps.Cfg))
		module.Register(nt.Name(), nt.Ports())
		proc := module.MustPortsOf[ntdom.ProcessorPort](nt)

		res, err := proc.Process(ctx, nt.Defaults(ntdom.Params{Limit: *fLimit, DryRun: *fDryRun}))
		return batchkit.Summary{
			Line: batchkit.Sprintf("processed %d events, created %d notifications", res.Processed, res.Notifications),
			Counts: map[string]int{
				"processed":     res.Processed,
				"notifications": res.Notifications,
				"skipped":       res.Skipped,
				"failed":        res.Failed,
			},
		}, err
	})
}
