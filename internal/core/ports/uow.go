// internal/core/ports/uow.go
package ports

import "context"

// TxManager scopes a unit of work: a store-level transaction with
// guaranteed commit-or-rollback on every exit path.
//
// RunInTx begins a transaction, stores it on the context handed to fn, and
// commits when fn returns nil or rolls back when it returns an error or
// panics. If the incoming context already carries a unit of work the call
// flat-joins it: fn runs inside the existing transaction and the outer
// scope owns the outcome; an error from the inner fn marks the outer scope
// abort-only by propagating up.
//
// Store-level write contention is retried with capped exponential backoff
// before being surfaced.
//
// AfterCommit defers fn until the outermost unit of work on ctx has
// committed; a rollback discards it. Outside a unit of work fn runs
// immediately. Side effects that must not observe uncommitted state, cache
// invalidation in particular, register here instead of running inline.
type TxManager interface {
	RunInTx(ctx context.Context, fn func(ctx context.Context) error) error
	AfterCommit(ctx context.Context, fn func(ctx context.Context))
}
