package repository

import (
	"context"

	"github.com/jackc/pgx/v4"
)

// Tx is an opaque transaction handle threaded through repository calls.
// The concrete type is infra-defined (pgx.Tx for Postgres); repositories
// must gracefully accept nil for the non-transactional path.
type Tx interface{}

// TransactionManager executes a function inside one database
// transaction, passing the handle via tx. It keeps use-case interfaces
// clean: no transaction types leak out, and repository methods detect a
// tx implementation-side to run SELECT ... FOR UPDATE or tx-bound Exec.
//
// USAGE
//
//	tm.WithTx(ctx, pgx.TxOptions{}, func(ctx context.Context, tx repository.Tx) error {
//	    p, err := payments.FindByID(ctx, tx, id)
//	    ...
//	    return err
//	})
type TransactionManager interface {
	WithTx(ctx context.Context, txOpt pgx.TxOptions, fn func(ctx context.Context, tx Tx) error) error
}
