package store

import (
	"context"

	perr "djnic/internal/platform/errors"

	sq "github.com/Masterminds/squirrel"
)

// SQL is the Postgres flavoured statement builder used by repositories
// that assemble queries from optional filters
var SQL = sq.StatementBuilder.PlaceholderFormat(sq.Dollar)

// Exec runs a write and returns the tag
func Exec(ctx context.Context, q RowQuerier, sql string, args ...any) (CommandTag, error) {
	return q.Exec(ctx, sql, args...)
}

// ExecOne runs a write that must touch exactly one row; zero rows is NotFound
func ExecOne(ctx context.Context, q RowQuerier, sql string, args ...any) error {
	tag, err := q.Exec(ctx, sql, args...)
	if err != nil {
		return err
	}
	switch n := tag.RowsAffected(); n {
	case 1:
		return nil
	case 0:
		return perr.ErrNotFound
	default:
		return perr.Newf(perr.ErrorCodeDB, "expected one row affected, got %d", n)
	}
}

// Scalar scans the first column of the first row into T
func Scalar[T any](ctx context.Context, q RowQuerier, sql string, args ...any) (T, error) {
	var v T
	err := q.QueryRow(ctx, sql, args...).Scan(&v)
	return v, err
}

// One maps the first row with scan; no row is perr.ErrNotFound
func One[T any](ctx context.Context, q RowQuerier, scan func(Row) (T, error), sql string, args ...any) (T, error) {
	var zero T
	rows, err := q.Query(ctx, sql, args...)
	if err != nil {
		return zero, err
	}
	defer rows.Close()
	if !rows.Next() {
		if err := rows.Err(); err != nil {
			return zero, err
		}
		return zero, perr.ErrNotFound
	}
	item, err := scan(rows)
	if err != nil {
		return zero, err
	}
	return item, nil
}

// Many maps every row with scan
func Many[T any](ctx context.Context, q RowQuerier, scan func(Row) (T, error), sql string, args ...any) ([]T, error) {
	rows, err := q.Query(ctx, sql, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []T
	for rows.Next() {
		item, err := scan(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, item)
	}
	return out, rows.Err()
}

// ManyQ renders a squirrel builder and maps every row with scan
func ManyQ[T any](ctx context.Context, q RowQuerier, scan func(Row) (T, error), b sq.Sqlizer) ([]T, error) {
	sql, args, err := b.ToSql()
	if err != nil {
		return nil, perr.Wrap(err, perr.ErrorCodeDB, "build query")
	}
	return Many(ctx, q, scan, sql, args...)
}

// ExecQ renders a squirrel builder and runs it as a write
func ExecQ(ctx context.Context, q RowQuerier, b sq.Sqlizer) (CommandTag, error) {
	sql, args, err := b.ToSql()
	if err != nil {
		return nil, perr.Wrap(err, perr.ErrorCodeDB, "build query")
	}
	return q.Exec(ctx, sql, args...)
}
