package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/jmoiron/sqlx"
	"github.com/lib/pq"

	apperrors "github.com/medlinx/clinic-api/pkg/errors"
)

// BaseRepository provides common functionality for all repositories
type BaseRepository struct {
	db *sqlx.DB
}

// NewBaseRepository creates a new base repository
func NewBaseRepository(db *sqlx.DB) BaseRepository {
	return BaseRepository{db: db}
}

// GetDB returns the database instance
func (r *BaseRepository) GetDB() *sqlx.DB {
	return r.db
}

type txKey struct{}

// withTx returns a ctx carrying the transaction; ext resolves it back.
// Repositories issue every statement through ext so that calls made
// inside a booking transaction run on that transaction.
func withTx(ctx context.Context, tx *sqlx.Tx) context.Context {
	return context.WithValue(ctx, txKey{}, tx)
}

type extContext interface {
	sqlx.ExtContext
	GetContext(ctx context.Context, dest interface{}, query string, args ...interface{}) error
	SelectContext(ctx context.Context, dest interface{}, query string, args ...interface{}) error
	ExecContext(ctx context.Context, query string, args ...interface{}) (sql.Result, error)
}

func (r *BaseRepository) ext(ctx context.Context) extContext {
	if tx, ok := ctx.Value(txKey{}).(*sqlx.Tx); ok {
		return tx
	}
	return r.db
}

// WithTx executes fn within a transaction carried on the context.
func (r *BaseRepository) WithTx(ctx context.Context, fn func(ctx context.Context) error) error {
	tx, err := r.db.BeginTxx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}

	defer func() {
		if p := recover(); p != nil {
			tx.Rollback()
			panic(p)
		}
	}()

	if err := fn(withTx(ctx, tx)); err != nil {
		tx.Rollback()
		return err
	}

	return tx.Commit()
}

// isConcurrencyConflict reports whether err is a storage-level failure
// caused by a concurrent conflicting write: serialization failure,
// deadlock, lock timeout or unique violation.
func isConcurrencyConflict(err error) bool {
	var pqErr *pq.Error
	if !errors.As(err, &pqErr) {
		return false
	}
	switch pqErr.Code {
	case "40001", "40P01", "55P03", "23505":
		return true
	}
	return false
}

// mapConflict rewrites storage concurrency failures into the Conflict
// error the caller is expected to handle; anything else passes through.
func mapConflict(err error) error {
	if err == nil {
		return nil
	}
	if isConcurrencyConflict(err) {
		return apperrors.Conflict("a concurrent booking modified the schedule, please retry")
	}
	return err
}
