package db

import (
	"context"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

// Op is a single staged mutation, executed inside the unit's transaction.
type Op func(ctx context.Context, tx pgx.Tx) error

// UnitOfWork collects staged mutations and applies them atomically. Either
// every staged operation is made durable by Save, or none are. The unit never
// retries; retry policy belongs to the caller or the storage layer.
type UnitOfWork interface {
	// Stage appends a mutation to the unit. Nothing touches storage until Save.
	Stage(op Op)
	// Save applies all staged operations in one transaction. A failure is
	// reported as *SaveError and leaves storage untouched.
	Save(ctx context.Context) error
}

// UnitSource hands out fresh units of work.
type UnitSource interface {
	NewUnit() UnitOfWork
}

// SaveError reports a failed commit. No staged mutation has been applied.
type SaveError struct {
	Cause error
}

func (e *SaveError) Error() string {
	return "platform/db: unit of work save: " + e.Cause.Error()
}

func (e *SaveError) Unwrap() error {
	return e.Cause
}

type poolUnitSource struct {
	pool *pgxpool.Pool
}

// NewUnitSource returns a UnitSource backed by the connection pool.
func NewUnitSource(pool *pgxpool.Pool) UnitSource {
	return &poolUnitSource{pool: pool}
}

func (s *poolUnitSource) NewUnit() UnitOfWork {
	return &txUnit{pool: s.pool}
}

type txUnit struct {
	pool *pgxpool.Pool
	ops  []Op
}

func (u *txUnit) Stage(op Op) {
	u.ops = append(u.ops, op)
}

func (u *txUnit) Save(ctx context.Context) error {
	if len(u.ops) == 0 {
		return nil
	}
	err := WithTx(ctx, u.pool, func(tx pgx.Tx) error {
		for _, op := range u.ops {
			if err := op(ctx, tx); err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		return &SaveError{Cause: err}
	}
	u.ops = nil
	return nil
}
