package module

import (
	"time"

	"djnic/internal/platform/config"
)

// Options for the jobs module
type Options struct {
	Enabled   bool
	LeaseTTL  time.Duration
	Heartbeat time.Duration
}

// FromConfig fills options from environment
// JOBS_LEASES (default true) guards batch jobs with a job_leases row
// JOBS_LEASE_TTL (default 30m) is how long a crashed run blocks the next one
// JOBS_LEASE_HEARTBEAT (default TTL/3) is how often a live run extends its lease
func FromConfig(cfg config.Conf) Options {
	n := cfg.Prefix("JOBS_")
	return Options{
		Enabled:   n.MayBool("LEASES", true),
		LeaseTTL:  n.MayDuration("LEASE_TTL", 30*time.Minute),
		Heartbeat: n.MayDuration("LEASE_HEARTBEAT", 0),
	}
}
