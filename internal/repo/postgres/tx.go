package postgres

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

// WithTx runs fn inside a transaction, rolling back on any error.
func WithTx(ctx context.Context, pool *pgxpool.Pool, fn func(context.Context, pgx.Tx) error) error {
	if pool == nil {
		return errors.New("postgres pool is nil")
	}

	tx, err := pool.BeginTx(ctx, pgx.TxOptions{})
	if err != nil {
		return fmt.Errorf("begin tx: %w", err)
	}

	defer func() {
		_ = tx.Rollback(ctx)
	}()

	if err := fn(ctx, tx); err != nil {
		return err
	}

	if err := tx.Commit(ctx); err != nil {
		return fmt.Errorf("commit tx: %w", err)
	}

	return nil
}

// TxRunner binds a pool into the transaction-boundary function the services
// hold, so tests can replace it with a plain pass-through call.
func TxRunner(pool *pgxpool.Pool) func(context.Context, func(context.Context, pgx.Tx) error) error {
	return func(ctx context.Context, fn func(context.Context, pgx.Tx) error) error {
		return WithTx(ctx, pool, fn)
	}
}
