package repository

import (
	"context"

	"github.com/jackc/pgx/v4"
)

// Tx is an opaque transaction handle passed through use cases into
// repositories. Repositories MUST gracefully accept a nil Tx (the
// non-transactional path); the concrete type is infra-defined (pgx.Tx
// for Postgres).
type Tx interface{}

// TransactionManager executes fn within a database transaction, passing the
// underlying handle via tx. Keeping the interface this small keeps use-case
// signatures free of storage types.
type TransactionManager interface {
	WithTx(ctx context.Context, txOpt pgx.TxOptions, fn func(ctx context.Context, tx Tx) error) error
}
