package repository

import (
	"context"
	"database/sql"
)

// queryer is the subset of *sql.DB and *sql.Tx the repositories use.
// Every repository method resolves its queryer through the context,
// so the same method works against the pool or inside a transaction
// without a parallel set of *Tx variants.
type queryer interface {
	ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error)
	QueryContext(ctx context.Context, query string, args ...any) (*sql.Rows, error)
	QueryRowContext(ctx context.Context, query string, args ...any) *sql.Row
}

type txKey struct{}

// from returns the transaction carried by ctx, or db when there is
// none.
func from(ctx context.Context, db *sql.DB) queryer {
	if tx, ok := ctx.Value(txKey{}).(*sql.Tx); ok {
		return tx
	}
	return db
}

// TxManager runs a function inside a single database transaction.
// The booking service depends on this interface rather than *sql.DB
// so its unit of work can be faked in tests.
type TxManager interface {
	RunInTx(ctx context.Context, fn func(ctx context.Context) error) error
}

// SQLTxManager is the MySQL-backed TxManager.  It begins a
// transaction, injects it into the context for the repositories to
// pick up, and commits only when fn returns nil.  Any error, panic or
// context cancellation rolls back every write in the unit.
type SQLTxManager struct {
	db *sql.DB
}

// NewTxManager returns a SQLTxManager bound to the given pool.
func NewTxManager(db *sql.DB) *SQLTxManager { return &SQLTxManager{db: db} }

// RunInTx implements TxManager.
func (m *SQLTxManager) RunInTx(ctx context.Context, fn func(ctx context.Context) error) (err error) {
	tx, err := m.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer func() {
		if p := recover(); p != nil {
			_ = tx.Rollback()
			panic(p)
		}
		if err != nil {
			_ = tx.Rollback()
		}
	}()
	if err = fn(context.WithValue(ctx, txKey{}, tx)); err != nil {
		return err
	}
	return tx.Commit()
}
