package database

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

// TxFunc is the function type executed inside a transaction.
type TxFunc func(pgx.Tx) error

// TxRunner abstracts transaction execution so services can be exercised
// against fakes. Production wiring uses PoolRunner.
type TxRunner interface {
	RunTx(ctx context.Context, fn TxFunc) error
}

// PoolRunner runs transactions on a pgx pool.
type PoolRunner struct {
	Pool *pgxpool.Pool
}

func (r PoolRunner) RunTx(ctx context.Context, fn TxFunc) error {
	return WithTransaction(ctx, r.Pool, fn)
}

// WithTransaction wraps fn in a transaction: rollback on error or panic,
// commit on success.
func WithTransaction(ctx context.Context, pool *pgxpool.Pool, fn TxFunc) error {
	return WithTransactionOpts(ctx, pool, pgx.TxOptions{}, fn)
}

// WithTransactionOpts is WithTransaction with explicit transaction options
// (isolation level, access mode). The rating aggregate path uses the
// default read-committed level plus row locks; the listing path uses a
// repeatable-read read-only transaction so both keyset passes observe the
// same snapshot.
func WithTransactionOpts(ctx context.Context, pool *pgxpool.Pool, opts pgx.TxOptions, fn TxFunc) error {
	tx, err := pool.BeginTx(ctx, opts)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}

	// Rollback is a no-op once the transaction committed.
	defer func() {
		if p := recover(); p != nil {
			_ = tx.Rollback(ctx)
			panic(p)
		} else if err != nil {
			_ = tx.Rollback(ctx)
		}
	}()

	err = fn(tx)
	if err != nil {
		return err
	}

	if err = tx.Commit(ctx); err != nil {
		return fmt.Errorf("failed to commit transaction: %w", err)
	}

	return nil
}

// WithTransactionResult wraps a function with a return value in a transaction.
func WithTransactionResult[T any](ctx context.Context, pool *pgxpool.Pool, fn func(pgx.Tx) (T, error)) (T, error) {
	return WithTransactionResultOpts(ctx, pool, pgx.TxOptions{}, fn)
}

// WithTransactionResultOpts is WithTransactionResult with explicit options.
func WithTransactionResultOpts[T any](ctx context.Context, pool *pgxpool.Pool, opts pgx.TxOptions, fn func(pgx.Tx) (T, error)) (T, error) {
	var result T
	var fnErr error

	err := WithTransactionOpts(ctx, pool, opts, func(tx pgx.Tx) error {
		result, fnErr = fn(tx)
		return fnErr
	})

	if err != nil {
		var zero T
		return zero, err
	}

	return result, nil
}
