// Package sqlxrepos implements the repositories on PostgreSQL via sqlx.
package sqlxrepos

import (
	"context"
	"database/sql"

	"github.com/jmoiron/sqlx"
	"github.com/pkg/errors"

	"github.com/trezcool/mazungumzo/core"
)

// DB adapts *sqlx.DB to core.DB so services can open transactions without
// depending on sqlx.
type DB struct {
	*sqlx.DB
}

var _ core.DB = (*DB)(nil)

func NewDB(db *sql.DB) *DB {
	return &DB{DB: sqlx.NewDb(db, "postgres")}
}

func (db *DB) BeginTx(ctx context.Context) (core.DBTransactor, error) {
	tx, err := db.DB.BeginTxx(ctx, nil)
	if err != nil {
		return nil, errors.Wrap(err, "beginning transaction")
	}
	return tx, nil
}

// getExec resolves the executor for a repository call; an open transaction
// takes precedence over the pool.
func (db *DB) getExec(exec ...core.DBExecutor) sqlx.ExtContext {
	if len(exec) > 0 && exec[0] != nil {
		if tx, ok := exec[0].(*sqlx.Tx); ok {
			return tx
		}
	}
	return db.DB
}
