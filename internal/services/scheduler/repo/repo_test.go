package repo

import (
	"testing"
	"time"

	scheddom "djnic/internal/services/scheduler/domain"
)

func TestPageQuery(t *testing.T) {
	now := time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC)
	cases := []struct {
		name string
		f    scheddom.PageFilter
		sql  string
		args int
	}{
		{
			"due only",
			scheddom.PageFilter{AfterID: 10, Limit: 50, Now: now},
			"SELECT id, status, expire, data_readed_at, data_updated_at FROM domains WHERE id > $1 AND (next_priority_at IS NULL OR next_priority_at < $2) ORDER BY id LIMIT 50",
			2,
		},
		{
			"all non available",
			scheddom.PageFilter{Limit: 5, All: true, NonAvailableOnly: true},
			"SELECT id, status, expire, data_readed_at, data_updated_at FROM domains WHERE id > $1 AND status <> $2 ORDER BY id LIMIT 5",
			2,
		},
	}
	for _, c := range cases {
		t.Run(c.name, func(t *testing.T) {
			sql, args, err := PageQuery(c.f).ToSql()
			if err != nil {
				t.Fatal(err)
			}
			if sql != c.sql {
				t.Fatalf("sql:\n got %s\nwant %s", sql, c.sql)
			}
			if len(args) != c.args {
				t.Fatalf("args = %v", args)
			}
		})
	}
}
