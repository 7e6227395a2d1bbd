// Package repokit provides the types repositories are written against
package repokit

import (
	"context"

	"djnic/internal/platform/store"
)

// Queryer is the read and write surface a repo binds to
type Queryer = store.RowQuerier

// TxRunner can also run a function in a transaction
type TxRunner = store.TxRunner

type (
	// Rows are the result set of a query
	Rows = store.Rows
	// Row is a single row result
	Row = store.Row
	// CommandTag is the result of a write
	CommandTag = store.CommandTag
)

// WithTx runs fn inside a transaction on tx
func WithTx(ctx context.Context, tx TxRunner, fn func(q Queryer) error) error {
	return tx.Tx(ctx, fn)
}
