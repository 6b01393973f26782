// Package txn defines the unit-of-work boundary used by application services.
package txn

import (
	"context"
	"sync"
)

// Transactor runs fn as one unit of work. Repositories that participate in
// the unit read the transaction from the context they are handed.
type Transactor interface {
	WithinTx(ctx context.Context, fn func(ctx context.Context) error) error
}

// rollbacker is implemented by transactors whose failed units leave no writes behind.
type rollbacker interface {
	RollsBack() bool
}

// RollsBack reports whether a failed unit run by t is undone by the store.
// Callers compensate partial writes themselves when it returns false.
func RollsBack(t Transactor) bool {
	rb, ok := t.(rollbacker)
	return ok && rb.RollsBack()
}

// Noop runs fn directly. Used with stores that only offer per-item conditions.
type Noop struct{}

func (Noop) WithinTx(ctx context.Context, fn func(ctx context.Context) error) error {
	return fn(ctx)
}

// Locking serializes units of work behind a mutex. Nested calls on the same
// context join the outer unit instead of deadlocking.
type Locking struct {
	mu sync.Mutex
}

// NewLocking returns a transactor for in-memory repositories.
func NewLocking() *Locking {
	return &Locking{}
}

type lockHeldKey struct{}

func (l *Locking) WithinTx(ctx context.Context, fn func(ctx context.Context) error) error {
	if held, _ := ctx.Value(lockHeldKey{}).(*Locking); held == l {
		return fn(ctx)
	}
	l.mu.Lock()
	defer l.mu.Unlock()
	return fn(context.WithValue(ctx, lockHeldKey{}, l))
}

var (
	_ Transactor = Noop{}
	_ Transactor = (*Locking)(nil)
)
