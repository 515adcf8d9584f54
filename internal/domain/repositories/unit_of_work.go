package repositories

import (
	"context"
)

// UnitOfWork scopes a set of repository calls to one atomic transaction.
// Any error returned by fn rolls the whole transaction back; no partial
// state is ever observable.
type UnitOfWork interface {
	Do(ctx context.Context, fn func(ctx context.Context) error) error
	// WithLock marks the context so that reads inside the transaction take
	// row-level locks (SELECT ... FOR UPDATE where the store supports it).
	WithLock(ctx context.Context) context.Context
}
