package ports

import (
	"context"

	"orderflow/internal/core/domain/model/kernel"
	"orderflow/internal/core/domain/model/order"
)

// OrderRepository defines the persistence contract for order aggregates.
// Provides methods for storing, retrieving, and querying order entities,
// including the exclusive-lock read the workflow engine serializes
// transitions with.
type OrderRepository interface {
	// Add persists a new order aggregate to storage.
	// The order must be valid and not already exist in the repository.
	Add(ctx context.Context, aggregate *order.Order) error

	// Update persists changes to an existing order aggregate.
	// The order must exist in the repository and be valid.
	Update(ctx context.Context, aggregate *order.Order) error

	// Get retrieves an order aggregate by its unique identifier.
	Get(ctx context.Context, id kernel.UUID) (*order.Order, error)

	// GetForUpdate retrieves an order while taking an exclusive per-order lock.
	// The lock is held until the surrounding unit of work commits or rolls
	// back, serializing concurrent transitions on the same order. When the
	// lock is already held by another transition, implementations return an
	// error wrapping workflow.ErrLockContention rather than queueing.
	GetForUpdate(ctx context.Context, id kernel.UUID) (*order.Order, error)

	// GetAllInStatus retrieves all orders currently in the given status.
	// Used by reporting surfaces and the status summary job.
	GetAllInStatus(ctx context.Context, status order.Status) ([]*order.Order, error)
}
