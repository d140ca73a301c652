package txmanager

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/lib/pq"

	"github.com/mark-szabo/carwash/pkg/dbmetrics"
)

const defaultMaxAttempts = 3

// PostgreSQL SQLSTATE codes that mean "retry the whole transaction"
const (
	codeSerializationFailure = "40001"
	codeDeadlockDetected     = "40P01"
)

var ErrTransaction = errors.New("txmanager: transaction error")

// Beginner opens transactions; *dbmetrics.DB implements it
type Beginner interface {
	BeginTx(ctx context.Context, opts *sql.TxOptions) (dbmetrics.TxExecutor, error)
}

// RetryObserver counts serializable retries
type RetryObserver interface {
	ObserveTxRetry()
}

// TransactionManager runs callbacks inside a transaction carried by ctx
type TransactionManager struct {
	db          Beginner
	maxAttempts int
	observer    RetryObserver
}

func NewTransactionManager(db Beginner, observer RetryObserver) *TransactionManager {
	return &TransactionManager{
		db:          db,
		maxAttempts: defaultMaxAttempts,
		observer:    observer,
	}
}

// Do runs fn at the default isolation level
func (m *TransactionManager) Do(ctx context.Context, fn func(ctx context.Context) error) error {
	return m.run(ctx, &sql.TxOptions{}, fn)
}

// DoReadOnly runs fn in a read-only transaction
func (m *TransactionManager) DoReadOnly(ctx context.Context, fn func(ctx context.Context) error) error {
	return m.run(ctx, &sql.TxOptions{ReadOnly: true}, fn)
}

// DoSerializable runs fn at SERIALIZABLE, retrying the whole callback on serialization failures.
// fn must be safe to re-run.
func (m *TransactionManager) DoSerializable(ctx context.Context, fn func(ctx context.Context) error) error {
	opts := &sql.TxOptions{Isolation: sql.LevelSerializable}

	var err error
	for attempt := 1; attempt <= m.maxAttempts; attempt++ {
		err = m.run(ctx, opts, fn)
		if err == nil || !IsRetryable(err) {
			return err
		}
		if m.observer != nil && attempt < m.maxAttempts {
			m.observer.ObserveTxRetry()
		}
	}
	return err
}

func (m *TransactionManager) run(ctx context.Context, opts *sql.TxOptions, fn func(ctx context.Context) error) (err error) {
	// nested call: join the outer transaction
	if dbmetrics.IsInTransaction(ctx) {
		return fn(ctx)
	}

	tx, err := m.db.BeginTx(ctx, opts)
	if err != nil {
		return fmt.Errorf("%w: begin: %v", ErrTransaction, err)
	}

	defer func() {
		if p := recover(); p != nil {
			_ = tx.Rollback()
			panic(p)
		}
	}()

	if err := fn(dbmetrics.WithTx(ctx, tx)); err != nil {
		_ = tx.Rollback()
		return err
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("%w: commit: %w", ErrTransaction, err)
	}
	return nil
}

// IsRetryable reports whether err carries a serialization failure or deadlock
func IsRetryable(err error) bool {
	var pqErr *pq.Error
	if !errors.As(err, &pqErr) {
		return false
	}
	return pqErr.Code == codeSerializationFailure || pqErr.Code == codeDeadlockDetected
}
