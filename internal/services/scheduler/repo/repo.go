// Package repo provides the scheduler storage on Postgres
package repo

import (
	"context"
	"time"

	"djnic/internal/core/diff"
	"djnic/internal/modkit/repokit"
	perr "djnic/internal/platform/errors"
	"djnic/internal/platform/store"
	scheddom "djnic/internal/services/scheduler/domain"

	sq "github.com/Masterminds/squirrel"
)

// NewPG returns a binder for the Postgres repo
func NewPG() repokit.Binder[scheddom.StorageRepo] {
	return repokit.BindFunc[scheddom.StorageRepo](func(q repokit.Queryer) scheddom.StorageRepo { return &pgRepo{q: q} })
}

type pgRepo struct{ q repokit.Queryer }

var stateCols = []string{"id", "status", "expire", "data_readed_at", "data_updated_at"}

func scanState(r store.Row) (scheddom.DomainState, error) {
	var d scheddom.DomainState
	err := r.Scan(&d.ID, &d.Status, &d.Expire, &d.ReadedAt, &d.UpdatedAt)
	return d, err
}

// PageQuery builds the keyset page select
func PageQuery(f scheddom.PageFilter) sq.SelectBuilder {
	b := store.SQL.Select(stateCols...).
		From("domains").
		Where(sq.Gt{"id": f.AfterID}).
		OrderBy("id").
		Limit(uint64(max(f.Limit, 1)))
	if !f.All {
		b = b.Where(sq.Or{sq.Eq{"next_priority_at": nil}, sq.Lt{"next_priority_at": f.Now}})
	}
	if f.NonAvailableOnly {
		b = b.Where(sq.NotEq{"status": diff.StatusAvailable})
	}
	return b
}

func (r *pgRepo) Page(ctx context.Context, f scheddom.PageFilter) ([]scheddom.DomainState, error) {
	out, err := store.ManyQ(ctx, r.q, scanState, PageQuery(f))
	return out, perr.FromPostgres(err, "page domains")
}

func (r *pgRepo) BulkUpdate(ctx context.Context, us []scheddom.Update) (int64, error) {
	if len(us) == 0 {
		return 0, nil
	}
	ids := make([]int64, len(us))
	prios := make([]int64, len(us))
	next := make([]time.Time, len(us))
	for i, u := range us {
		ids[i], prios[i], next[i] = u.ID, int64(u.Priority), u.NextCheckAt.UTC()
	}
	tag, err := r.q.Exec(ctx, `
		UPDATE domains d
		   SET priority = u.priority, next_priority_at = u.next_at
		  FROM unnest($1::bigint[], $2::bigint[], $3::timestamptz[]) AS u(id, priority, next_at)
		 WHERE d.id = u.id`,
		ids, prios, next,
	)
	if err != nil {
		return 0, perr.FromPostgres(err, "bulk update priority")
	}
	return tag.RowsAffected(), nil
}

func (r *pgRepo) State(ctx context.Context, id int64) (scheddom.DomainState, error) {
	d, err := store.One(ctx, r.q, scanState,
		`SELECT id, status, expire, data_readed_at, data_updated_at FROM domains WHERE id = $1`, id)
	if err != nil {
		if perr.IsCode(err, perr.ErrorCodeNotFound) {
			return d, perr.NotFoundf("domain %d not found", id)
		}
		return d, perr.FromPostgres(err, "load domain")
	}
	return d, nil
}

func (r *pgRepo) Top(ctx context.Context, k int) ([]scheddom.Candidate, error) {
	out, err := store.Many(ctx, r.q, func(row store.Row) (scheddom.Candidate, error) {
		var c scheddom.Candidate
		err := row.Scan(&c.ID, &c.UID, &c.Name, &c.Status, &c.Priority, &c.Expire, &c.ReadedAt, &c.UpdatedAt, &c.NextCheckAt)
		return c, err
	}, `
		SELECT d.id, d.uid, d.name || '.' || z.name, d.status, d.priority,
		       d.expire, d.data_readed_at, d.data_updated_at, d.next_priority_at
		  FROM domains d
		  JOIN zones z ON z.id = d.zone_id
		 ORDER BY d.priority DESC, d.id
		 LIMIT $1
		   FOR UPDATE OF d SKIP LOCKED`, max(k, 1))
	return out, perr.FromPostgres(err, "top domains")
}

func (r *pgRepo) Handout(ctx context.Context, id int64, next time.Time) error {
	err := store.ExecOne(ctx, r.q,
		`UPDATE domains SET priority = 0, next_priority_at = $2 WHERE id = $1`, id, next.UTC())
	if perr.IsCode(err, perr.ErrorCodeNotFound) {
		return perr.NotFoundf("domain %d not found", id)
	}
	return perr.FromPostgres(err, "hand out domain")
}
