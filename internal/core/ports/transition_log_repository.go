package ports

import (
	"context"

	"orderflow/internal/core/domain/model/kernel"
	"orderflow/internal/core/domain/model/order"
)

// TransitionLogRepository defines the persistence contract for the append-only
// transition audit log.
//
// The store is strictly append-only: Add is the only mutating operation and no
// update or delete is ever exposed. Rows are retained indefinitely.
type TransitionLogRepository interface {
	// Add appends one audit record. The record must be valid; appending it is
	// expected to happen in the same transaction as the order status update it
	// documents, so both succeed or fail together.
	Add(ctx context.Context, entry *order.TransitionLog) error

	// ListForOrder returns all audit records for the order, oldest first,
	// for rendering timelines.
	ListForOrder(ctx context.Context, orderID kernel.UUID) ([]*order.TransitionLog, error)

	// FindByIdempotencyKey returns the audit record stored for the given
	// (order, key) pair, used by the workflow service's idempotent replay
	// short-circuit. Returns an error wrapping errs.ErrObjectNotFound when no
	// record exists.
	FindByIdempotencyKey(ctx context.Context, orderID kernel.UUID, key string) (*order.TransitionLog, error)
}
