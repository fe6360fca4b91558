package persistence

import "context"

// TxManager runs a function within a database transaction. The function
// receives a session-bound context; every repository call made with that
// context participates in the same transaction.
type TxManager interface {
	WithTransaction(ctx context.Context, fn func(sessCtx context.Context) (any, error)) (any, error)
}
