package module

import (
	"time"

	"djnic/internal/platform/config"
)

// Options for the scheduler module
type Options struct {
	Chunk            int
	Bulk             int
	Sleep            time.Duration
	SleepEvery       int
	StatementTimeout time.Duration
}

// FromConfig fills options from environment
// CORE_SCHEDULER_CHUNK (default 1000) is the read page size
// CORE_SCHEDULER_BULK (default 500) is the number of rows per UPDATE
// CORE_SCHEDULER_SLEEP (default 0) and CORE_SCHEDULER_SLEEP_EVERY (default 10) rate limit the reads
// CORE_SCHEDULER_STATEMENT_TIMEOUT (default 30s) bounds each write transaction
func FromConfig(cfg config.Conf) Options {
	n := cfg.Prefix("CORE_SCHEDULER_")
	return Options{
		Chunk:            n.MayInt("CHUNK", 1000),
		Bulk:             n.MayInt("BULK", 500),
		Sleep:            n.MayDuration("SLEEP", 0),
		SleepEvery:       n.MayInt("SLEEP_EVERY", 10),
		StatementTimeout: n.MayDuration("STATEMENT_TIMEOUT", 30*time.Second),
	}
}
