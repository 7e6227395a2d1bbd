package store

import "djnic/internal/platform/logger"

// Option adjusts the Store during Open
type Option func(*Store)

// WithLogger sets the logger handed to the query tracer
func WithLogger(l logger.Logger) Option {
	return func(s *Store) { s.Log = l }
}
