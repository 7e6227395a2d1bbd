package module

import (
	"time"

	"djnic/internal/platform/config"
)

// Options for the notifier module
type Options struct {
	Limit            int
	StatementTimeout time.Duration
}

// FromConfig fills options from environment
// CORE_NOTIFIER_LIMIT (default 1000) caps the events handled per run
// CORE_NOTIFIER_STATEMENT_TIMEOUT (default 10s) bounds each per-event transaction
func FromConfig(cfg config.Conf) Options {
	n := cfg.Prefix("CORE_NOTIFIER_")
	return Options{
		Limit:            n.MayInt("LIMIT", 1000),
		StatementTimeout: n.MayDuration("STATEMENT_TIMEOUT", 10*time.Second),
	}
}
