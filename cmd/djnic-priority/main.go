package main

import (
	"context"
	"flag"

	"djnic/internal/modkit/batchkit"
	"djnic/internal/modkit/module"
	scheddom "djnic/internal/services/scheduler/domain"
	schedmod "djnic/internal/services/scheduler/module"

	_ "time/tzdata"
)

func main() {
	var (
		fAll        = flag.Bool("all", false, "recompute every domain, not only those due")
		fChunk      = flag.Int("chunk", 0, "domains read per page (0 = CORE_SCHEDULER_CHUNK)")
		fSleep      = flag.Duration("sleep", 0, "pause between page groups (0 = CORE_SCHEDULER_SLEEP)")
		fSleepEvery = flag.Int("sleep-every", 0, "pages read between pauses (0 = CORE_SCHEDULER_SLEEP_EVERY)")
		fBulk       = flag.Int("bulk", 0, "rows per UPDATE (0 = CORE_SCHEDULER_BULK)")
		fNonAvail   = flag.Bool("non-available", false, "only registered domains")
		fDryRun     = flag.Bool("dryrun", false, "score but do not write")
	)
	flag.Parse()

	batchkit.Main("priority", func(ctx context.Context, env batchkit.Env) (batchkit.Summary, error) {
		sched := schedmod.New(env.Deps, schedmod.FromConfig(env.Deps.Cfg))
		module.Register(sched.Name(), sched.Ports())
		runner := module.MustPortsOf[scheddom.RunnerPort](sched)

		p := sched.Defaults(scheddom.Params{
			All:              *fAll,
			Chunk:            *fChunk,
			Sleep:            *fSleep,
			SleepEvery:       *fSleepEvery,
			Bulk:             *fBulk,
			NonAvailableOnly: *fNonAvail,
			DryRun:           *fDryRun,
		})
		env.Deps.Log.Debug().Bool("all", p.All).Int("chunk", p.Chunk).Int("bulk", p.Bulk).
			Dur("sleep", p.Sleep).Bool("dryrun", p.DryRun).Msg("recompute starting")

		res, err := runner.Recompute(ctx, p)
		counts := map[string]int{"read": res.Read, "updated": res.Updated, "chunks": res.Chunks}
		for band, n := range res.Bands {
			counts["band_"+band] = n
		}
		line := batchkit.Sprintf("recomputed %d domains", res.Updated)
		if p.DryRun {
			line = batchkit.Sprintf("dry run: scored %d domains", res.Read)
		}
		return batchkit.Summary{Line: line, Counts: counts}, err
	})
}

