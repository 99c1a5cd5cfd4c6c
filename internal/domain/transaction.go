package domain

import "context"

// TransactionManager runs fn inside one database transaction. The
// repository picks the transaction up from ctx.
type TransactionManager interface {
	WithTransaction(ctx context.Context, fn func(ctx context.Context) error) error
}
