package main

import (
	"bufio"
	"context"
	"encoding/json"
	"flag"
	"io"
	"os"
	"strings"

	"djnic/internal/modkit/batchkit"
	"djnic/internal/modkit/module"
	chdom "djnic/internal/services/changes/domain"
	chmod "djnic/internal/services/changes/module"
	scheddom "djnic/internal/services/scheduler/domain"
	schedmod "djnic/internal/services/scheduler/module"

	_ "time/tzdata"
)

// maxLine bounds one JSON observation
const maxLine = 1 << 20

func main() {
	var (
		fFile   = flag.String("file", "-", "JSON lines of observations; - reads stdin")
		fStrict = flag.Bool("strict", false, "stop at the first observation that fails")
	)
	flag.Parse()

	batchkit.Main("ingest", func(ctx context.Context, env batchkit.Env) (batchkit.Summary, error) {
		in, closeIn, err := open(*fFile)
		if err != nil {
			return batchkit.Summary{}, err
		}
		defer closeIn()

		sched := schedmod.New(env.Deps, schedmod.FromConfig(env.Deps.Cfg))
		changes := chmod.New(env.Deps, chmod.FromConfig(env.Deps.Cfg), module.MustPortsOf[scheddom.RunnerPort](sched))
		svc := module.MustPortsOf[chdom.ServicePort](changes)

		var applied, created, changed, confirmed, evs, failed int
		sc := bufio.NewScanner(in)
		sc.Buffer(make([]byte, 64*1024), maxLine)
		line := 0
		for sc.Scan() {
			line++
			raw := strings.TrimSpace(sc.Text())
			if raw == "" {
				continue
			}
			if err := ctx.Err(); err != nil {
				return summary(applied, created, changed, confirmed, evs, failed), err
			}

			var obs chdom.Observation
			if err := json.Unmarshal([]byte(raw), &obs); err != nil {
				failed++
				env.Deps.Log.Warn().Err(err).Int("line", line).Msg("bad observation")
				if *fStrict {
					return summary(applied, created, changed, confirmed, evs, failed), err
				}
				continue
			}

			res, err := svc.Apply(ctx, obs)
			if err != nil {
				failed++
				env.Deps.Log.Warn().Err(err).Int("line", line).Str("name", obs.Name).Str("zone", obs.Zone).Msg("apply failed")
				if *fStrict {
					return summary(applied, created, changed, confirmed, evs, failed), err
				}
				continue
			}
			applied++
			if res.Created {
				created++
			}
			if len(res.Changes) > 0 {
				changed++
			} else {
				confirmed++
			}
			evs += len(res.Events)
			env.Deps.Log.Debug().Str("domain", res.Domain).Int("changes", len(res.Changes)).
				Int("events", len(res.Events)).Int("priority", res.Score.Priority).Msg("applied")
		}
		return summary(applied, created, changed, confirmed, evs, failed), sc.Err()
	})
}

func summary(applied, created, changed, confirmed, evs, failed int) batchkit.Summary {
	return batchkit.Summary{
		Line: batchkit.Sprintf("applied %d observations, %d changed, %d events", applied, changed, evs),
		Counts: map[string]int{
			"applied":   applied,
			"created":   created,
			"changed":   changed,
			"confirmed": confirmed,
			"events":    evs,
			"failed":    failed,
		},
	}
}

func open(path string) (io.Reader, func(), error) {
	if path == "" || path == "-" {
		return os.Stdin, func() {}, nil
	}
	f, err := os.Open(path)
	if err != nil {
		return nil, nil, err
	}
	return f, func() { _ = f.Close() }, nil
}
