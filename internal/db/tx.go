package db

import (
	"github.com/jackc/pgx/v5"
)

// pgTx implements Tx on a single PostgreSQL transaction.
type pgTx struct {
	tx pgx.Tx
}

var _ Tx = (*pgTx)(nil)
