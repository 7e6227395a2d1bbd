// Package repo persists the change pipeline on Postgres
package repo

import (
	"context"

	"djnic/internal/core/diff"
	"djnic/internal/core/events"
	"djnic/internal/modkit/repokit"
	perr "djnic/internal/platform/errors"
	"djnic/internal/platform/store"
	chdom "djnic/internal/services/changes/domain"
)

// NewPG returns a binder for the Postgres repo
func NewPG() repokit.Binder[chdom.StorageRepo] {
	return repokit.BindFunc[chdom.StorageRepo](func(q repokit.Queryer) chdom.StorageRepo { return &pgRepo{q: q} })
}

type pgRepo struct{ q repokit.Queryer }

func (r *pgRepo) EnsureZone(ctx context.Context, name, tz string) (chdom.Zone, error) {
	z, err := store.One(ctx, r.q, func(row store.Row) (chdom.Zone, error) {
		var z chdom.Zone
		err := row.Scan(&z.ID, &z.Name, &z.TZ)
		return z, err
	}, `
		WITH ins AS (
			INSERT INTO zones (name, tz) VALUES ($1, $2)
			ON CONFLICT (name) DO NOTHING
			RETURNING id, name, tz
		)
		SELECT id, name, tz FROM ins
		UNION ALL
		SELECT id, name, tz FROM zones WHERE name = $1
		LIMIT 1`, name, tz)
	return z, perr.FromPostgres(err, "ensure zone")
}

const domainSelect = `
	SELECT d.id, d.uid::text, d.name, d.status, d.registered, d.changed, d.expire,
	       r.id, r.uid::text, r.name, r.legal_uid, r.created, r.changed
	  FROM domains d
	  LEFT JOIN registrants r ON r.id = d.registrant_id`

func scanDomain(row store.Row) (chdom.StoredDomain, error) {
	var (
		d      chdom.StoredDomain
		rid    *int64
		ruid   *string
		rname  *string
		rlegal *string
		rs     diff.RegistrantSnapshot
	)
	err := row.Scan(&d.ID, &d.UID, &d.Name, &d.Snapshot.Status, &d.Snapshot.Registered, &d.Snapshot.Changed, &d.Snapshot.Expire,
		&rid, &ruid, &rname, &rlegal, &rs.Created, &rs.Changed)
	if err != nil {
		return d, err
	}
	if rid != nil {
		rs.Name, rs.LegalUID = deref(rname), deref(rlegal)
		d.Snapshot.Registrant = &rs
		d.Registrant = &events.Registrant{ID: *rid, UID: deref(ruid), Name: rs.Name, LegalUID: rs.LegalUID}
	}
	return d, nil
}

func deref(s *string) string {
	if s == nil {
		return ""
	}
	return *s
}

func (r *pgRepo) LoadDomain(ctx context.Context, zoneID int64, name string) (chdom.StoredDomain, bool, error) {
	d, err := store.One(ctx, r.q, scanDomain, domainSelect+` WHERE d.zone_id = $1 AND d.name = $2`, zoneID, name)
	if err != nil {
		if perr.IsCode(err, perr.ErrorCodeNotFound) {
			return d, false, nil
		}
		return d, false, perr.FromPostgres(err, "load domain")
	}
	hosts, err := store.Many(ctx, r.q, func(row store.Row) (string, error) {
		var h string
		return h, row.Scan(&h)
	}, `
		SELECT h.name
		  FROM domain_dns dd
		  JOIN dns_hosts h ON h.id = dd.dns_id
		 WHERE dd.domain_id = $1
		 ORDER BY dd.position`, d.ID)
	if err != nil {
		return d, false, perr.FromPostgres(err, "load dns")
	}
	d.Snapshot.DNS = hosts
	return d, true, nil
}

func (r *pgRepo) CreateDomain(ctx context.Context, zoneID int64, name string) (chdom.StoredDomain, error) {
	d := chdom.StoredDomain{Name: name, Snapshot: diff.Initial()}
	err := r.q.QueryRow(ctx, `
		INSERT INTO domains (name, zone_id, status) VALUES ($1, $2, $3)
		RETURNING id, uid::text`, name, zoneID, diff.StatusAvailable).Scan(&d.ID, &d.UID)
	return d, perr.FromPostgres(err, "create domain")
}

func (r *pgRepo) UpsertRegistrant(ctx context.Context, rs diff.RegistrantSnapshot) (events.Registrant, error) {
	var out events.Registrant
	err := r.q.QueryRow(ctx, `
		INSERT INTO registrants (name, legal_uid, created, changed) VALUES ($1, $2, $3, $4)
		ON CONFLICT (legal_uid) DO UPDATE
		   SET name = EXCLUDED.name, created = EXCLUDED.created, changed = EXCLUDED.changed
		RETURNING id, uid::text, name, legal_uid`,
		rs.Name, rs.LegalUID, rs.Created, rs.Changed,
	).Scan(&out.ID, &out.UID, &out.Name, &out.LegalUID)
	return out, perr.FromPostgres(err, "upsert registrant")
}

func (r *pgRepo) RegistrantByLegalUID(ctx context.Context, uid string) (*events.Registrant, error) {
	reg, err := store.One(ctx, r.q, func(row store.Row) (events.Registrant, error) {
		var e events.Registrant
		err := row.Scan(&e.ID, &e.UID, &e.Name, &e.LegalUID)
		return e, err
	}, `SELECT id, uid::text, name, legal_uid FROM registrants WHERE legal_uid = $1`, uid)
	if err != nil {
		if perr.IsCode(err, perr.ErrorCodeNotFound) {
			return nil, nil
		}
		return nil, perr.FromPostgres(err, "load registrant")
	}
	return &reg, nil
}

func (r *pgRepo) ReplaceDNS(ctx context.Context, domainID int64, hosts []string) error {
	if _, err := r.q.Exec(ctx, `DELETE FROM domain_dns WHERE domain_id = $1`, domainID); err != nil {
		return perr.FromPostgres(err, "clear dns")
	}
	if len(hosts) == 0 {
		return nil
	}
	if _, err := r.q.Exec(ctx, `
		INSERT INTO dns_hosts (name) SELECT DISTINCT unnest($1::text[])
		ON CONFLICT (name) DO NOTHING`, hosts); err != nil {
		return perr.FromPostgres(err, "insert dns hosts")
	}
	_, err := r.q.Exec(ctx, `
		INSERT INTO domain_dns (domain_id, dns_id, position)
		SELECT $1, h.id, u.pos
		  FROM unnest($2::text[]) WITH ORDINALITY AS u(name, pos)
		  JOIN dns_hosts h ON h.name = u.name`, domainID, hosts)
	return perr.FromPostgres(err, "link dns")
}

func (r *pgRepo) UpdateDomain(ctx context.Context, u chdom.DomainUpdate) error {
	err := store.ExecOne(ctx, r.q, `
		UPDATE domains
		   SET status = $2, registered = $3, changed = $4, expire = $5, registrant_id = $6,
		       data_readed_at = $7, data_updated_at = COALESCE($8, data_updated_at)
		 WHERE id = $1`,
		u.ID, u.Status, u.Registered, u.Changed, u.Expire, u.RegistrantID, u.ReadAt, u.UpdatedAt)
	return perr.FromPostgres(err, "update domain")
}

func (r *pgRepo) InsertRecord(ctx context.Context, rec diff.Record) (int64, error) {
	var id int64
	if err := r.q.QueryRow(ctx, `
		INSERT INTO change_records (domain_id, at, have_changes) VALUES ($1, $2, $3)
		RETURNING id`, rec.DomainID, rec.At, rec.HaveChanges).Scan(&id); err != nil {
		return 0, perr.FromPostgres(err, "insert change record")
	}
	if len(rec.Fields) == 0 {
		return id, nil
	}
	fields := make([]string, len(rec.Fields))
	olds := make([]string, len(rec.Fields))
	news := make([]string, len(rec.Fields))
	for i, f := range rec.Fields {
		fields[i], olds[i], news[i] = f.Field, f.Old, f.New
	}
	_, err := r.q.Exec(ctx, `
		INSERT INTO field_changes (record_id, position, field, old_value, new_value)
		SELECT $1, u.pos, u.field, u.old_value, u.new_value
		  FROM unnest($2::text[], $3::text[], $4::text[]) WITH ORDINALITY AS u(field, old_value, new_value, pos)`,
		id, fields, olds, news)
	return id, perr.FromPostgres(err, "insert field changes")
}

func (r *pgRepo) InsertEvents(ctx context.Context, evs []events.Event) error {
	for _, e := range evs {
		if _, err := r.q.Exec(ctx, `
			INSERT INTO events (kind, subject_kind, subject_id, data) VALUES ($1, $2, $3, $4)`,
			string(e.Kind), string(e.Subject.Kind), e.Subject.ID, e.Data); err != nil {
			return perr.FromPostgres(err, "insert event")
		}
	}
	return nil
}
