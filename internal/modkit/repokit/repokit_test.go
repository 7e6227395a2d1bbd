package repokit

import (
	"context"
	"errors"
	"testing"
	"time"
)

type recTx struct {
	execs []string
}

func (r *recTx) Exec(_ context.Context, sql string, _ ...any) (CommandTag, error) {
	r.execs = append(r.execs, sql)
	return nil, nil
}
func (r *recTx) Query(context.Context, string, ...any) (Rows, error) { return nil, nil }
func (r *recTx) QueryRow(context.Context, string, ...any) Row        { return nil }
func (r *recTx) Tx(ctx context.Context, fn func(q Queryer) error) error {
	return fn(r)
}

func TestBeginHooksRunFirst(t *testing.T) {
	inner := &recTx{}
	tx := WithBeginHooks(inner, StatementTimeout(1500*time.Millisecond))

	err := tx.Tx(context.Background(), func(q Queryer) error {
		_, err := q.Exec(context.Background(), "UPDATE domains")
		return err
	})
	if err != nil {
		t.Fatal(err)
	}
	if len(inner.execs) != 2 || inner.execs[0] != "SET LOCAL statement_timeout = 1500" {
		t.Fatalf("execs = %v", inner.execs)
	}
}

func TestHookErrorAbortsTx(t *testing.T) {
	boom := errors.New("boom")
	ran := false
	tx := WithBeginHooks(&recTx{}, func(context.Context, Queryer) error { return boom })
	err := tx.Tx(context.Background(), func(Queryer) error { ran = true; return nil })
	if !errors.Is(err, boom) || ran {
		t.Fatalf("err=%v ran=%v", err, ran)
	}
}

func TestBindFunc(t *testing.T) {
	var b Binder[string] = BindFunc[string](func(Queryer) string { return "bound" })
	if b.Bind(&recTx{}) != "bound" {
		t.Fatal("bind failed")
	}
}
