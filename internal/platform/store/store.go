// Package store exposes Postgres behind a small query and transaction seam
package store

import (
	"context"
	"database/sql"
	"errors"

	"djnic/internal/platform/logger"

	"github.com/jackc/pgx/v5/stdlib"
)

// Store holds the opened backends; the zero value has none
type Store struct {
	Log logger.Logger

	// PG is nil when Postgres is disabled
	PG TxRunner

	pg *pgAdapter
}

// Row is the single row scan contract
type Row interface {
	Scan(dest ...any) error
}

// Rows iterates a result set
type Rows interface {
	Next() bool
	Scan(dest ...any) error
	Err() error
	Close()
}

// CommandTag reports the outcome of a write
type CommandTag interface {
	String() string
	RowsAffected() int64
}

// RowQuerier is what repositories run SQL against
type RowQuerier interface {
	Exec(ctx context.Context, sql string, args ...any) (CommandTag, error)
	Query(ctx context.Context, sql string, args ...any) (Rows, error)
	QueryRow(ctx context.Context, sql string, args ...any) Row
}

// TxRunner is a RowQuerier that can also open a transaction
type TxRunner interface {
	RowQuerier
	Tx(ctx context.Context, fn func(q RowQuerier) error) error
}

// Pinger is anything that reports readiness
type Pinger interface{ Ping(context.Context) error }

// Open connects the backends enabled in cfg
func Open(ctx context.Context, cfg Config, opts ...Option) (*Store, error) {
	s := &Store{Log: *logger.Get()}
	for _, o := range opts {
		o(s)
	}
	if cfg.PG.Enabled {
		a, err := openPG(ctx, cfg.PG, s.Log)
		if err != nil {
			return nil, err
		}
		s.pg = a
		s.PG = a
	}
	return s, nil
}

// Guard pings every opened backend
func (s *Store) Guard(ctx context.Context) error {
	if s == nil {
		return errors.New("nil store")
	}
	if s.pg == nil {
		return nil
	}
	return s.pg.Ping(ctx)
}

// SQLDB returns a database/sql handle over the pool for tools that need one, such as goose
func (s *Store) SQLDB() (*sql.DB, error) {
	if s == nil || s.pg == nil {
		return nil, errors.New("postgres not opened")
	}
	return stdlib.OpenDBFromPool(s.pg.p.Pool), nil
}

// Close releases every opened backend
func (s *Store) Close(context.Context) error {
	if s != nil && s.pg != nil {
		s.pg.p.Close()
	}
	return nil
}
