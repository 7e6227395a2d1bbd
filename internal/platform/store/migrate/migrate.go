// Package migrate applies the embedded schema with goose
package migrate

import (
	"context"
	"database/sql"
	"embed"
	"io/fs"

	perr "djnic/internal/platform/errors"
	"djnic/internal/platform/logger"

	"github.com/pressly/goose/v3"
)

//go:embed sql/*.sql
var embedded embed.FS

// Files returns the migration sources
func Files() fs.FS {
	sub, err := fs.Sub(embedded, "sql")
	if err != nil {
		panic(err)
	}
	return sub
}

// Runner wraps a goose provider over the embedded migrations
type Runner struct {
	p *goose.Provider
}

// New builds a Runner on db
func New(db *sql.DB) (*Runner, error) {
	p, err := goose.NewProvider(goose.DialectPostgres, db, Files())
	if err != nil {
		return nil, perr.Wrap(err, perr.ErrorCodeDB, "goose provider")
	}
	return &Runner{p: p}, nil
}

// Up applies every pending migration and returns how many ran
func (r *Runner) Up(ctx context.Context) (int, error) {
	res, err := r.p.Up(ctx)
	for _, m := range res {
		logger.C(ctx).Info().Int64("version", m.Source.Version).Dur("took", m.Duration).Msg("migration applied")
	}
	if err != nil {
		return len(res), perr.Wrap(err, perr.ErrorCodeDB, "migrate up")
	}
	return len(res), nil
}

// Down rolls back the latest migration
func (r *Runner) Down(ctx context.Context) error {
	m, err := r.p.Down(ctx)
	if err != nil {
		return perr.Wrap(err, perr.ErrorCodeDB, "migrate down")
	}
	if m != nil {
		logger.C(ctx).Info().Int64("version", m.Source.Version).Msg("migration rolled back")
	}
	return nil
}

// Status is one line of the migration table
type Status struct {
	Version int64
	Path    string
	Applied bool
}

// Status lists every known migration and whether it has been applied
func (r *Runner) Status(ctx context.Context) ([]Status, error) {
	st, err := r.p.Status(ctx)
	if err != nil {
		return nil, perr.Wrap(err, perr.ErrorCodeDB, "migrate status")
	}
	out := make([]Status, 0, len(st))
	for _, s := range st {
		out = append(out, Status{
			Version: s.Source.Version,
			Path:    s.Source.Path,
			Applied: s.State == goose.StateApplied,
		})
	}
	return out, nil
}

// Version returns the current schema version
func (r *Runner) Version(ctx context.Context) (int64, error) {
	v, err := r.p.GetDBVersion(ctx)
	if err != nil {
		return 0, perr.Wrap(err, perr.ErrorCodeDB, "migrate version")
	}
	return v, nil
}
