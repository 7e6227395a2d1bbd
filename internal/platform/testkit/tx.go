package testkit

import (
	"context"
	"errors"

	"djnic/internal/platform/store"
)

// ErrNoSQL is returned by Tx when a test reaches real SQL
var ErrNoSQL = errors.New("testkit: no SQL backend")

// Tx is a store.TxRunner for service tests whose repos are fakes bound by a Binder.
// Tx runs fn in place; Fail makes every transaction fail before fn runs.
type Tx struct {
	Calls int
	Fail  error
}

// Tx counts the call and runs fn with t as the queryer
func (t *Tx) Tx(_ context.Context, fn func(q store.RowQuerier) error) error {
	t.Calls++
	if t.Fail != nil {
		return t.Fail
	}
	return fn(t)
}

// Exec always fails
func (t *Tx) Exec(context.Context, string, ...any) (store.CommandTag, error) { return nil, ErrNoSQL }

// Query always fails
func (t *Tx) Query(context.Context, string, ...any) (store.Rows, error) { return nil, ErrNoSQL }

// QueryRow returns a row whose Scan fails
func (t *Tx) QueryRow(context.Context, string, ...any) store.Row { return errRow{} }

type errRow struct{}

func (errRow) Scan(...any) error { return ErrNoSQL }
