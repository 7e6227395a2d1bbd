package modkit

import (
	"djnic/internal/modkit/repokit"
	"djnic/internal/platform/config"
	"djnic/internal/platform/logger"
	"djnic/internal/platform/metrics"
	"djnic/internal/platform/net/middleware"
	ptime "djnic/internal/platform/time"
)

// Deps holds what every module may need; optional fields can be zero in tests
type Deps struct {
	Log     logger.Logger
	Cfg     config.Conf
	PG      repokit.TxRunner
	Metrics *metrics.Metrics
	Clock   ptime.Clock

	// Auth resolves the caller of protected routes; nil leaves them open
	Auth middleware.AuthPort
}
