package postgres

import (
	"context"
	"errors"

	"gorm.io/gorm"

	"github.com/Apurer/pet-adoption-api/internal/shared/txn"
)

var _ txn.Transactor = (*Transactor)(nil)

type txKey struct{}

// Transactor runs units of work inside a database transaction. Repositories
// pick the transaction up through Conn.
type Transactor struct {
	db *gorm.DB
}

// NewTransactor wraps db.
func NewTransactor(db *gorm.DB) *Transactor {
	return &Transactor{db: db}
}

// WithinTx commits when fn succeeds and rolls back otherwise. Nested calls
// reuse the outer transaction.
func (t *Transactor) WithinTx(ctx context.Context, fn func(ctx context.Context) error) error {
	if t == nil || t.db == nil {
		return errors.New("postgres transactor not configured")
	}
	if _, ok := ctx.Value(txKey{}).(*gorm.DB); ok {
		return fn(ctx)
	}
	return t.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		return fn(context.WithValue(ctx, txKey{}, tx))
	})
}

// RollsBack reports that failed units leave no writes behind.
func (t *Transactor) RollsBack() bool { return true }

// Conn returns the transaction bound to ctx, or db scoped to ctx.
func Conn(ctx context.Context, db *gorm.DB) *gorm.DB {
	if tx, ok := ctx.Value(txKey{}).(*gorm.DB); ok && tx != nil {
		return tx.WithContext(ctx)
	}
	return db.WithContext(ctx)
}
