package store

import "time"

// Config groups per backend settings
type Config struct {
	PG PGConfig
}

// PGConfig configures the Postgres pool
type PGConfig struct {
	Enabled     bool
	URL         string
	MaxConns    int32
	LogSQL      bool
	SlowQueryMs int
	AppName     string

	ConnectAttempts uint          // default 10
	PingTimeout     time.Duration // default 3s
}
