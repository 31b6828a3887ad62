package postgres

import (
	"context"
	"database/sql"
)

// Runner abre una transacción real y la propaga por el context; los repos
// la levantan vía q(). Commit si fn devuelve nil, rollback si no.
type Runner struct {
	db *sql.DB
}

func NewRunner(db *sql.DB) *Runner { return &Runner{db: db} }

func (r *Runner) WithinTx(ctx context.Context, fn func(ctx context.Context) error) error {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}

	if err := fn(context.WithValue(ctx, txKey{}, tx)); err != nil {
		_ = tx.Rollback()
		return err
	}
	return tx.Commit()
}
