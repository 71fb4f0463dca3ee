package ports

import (
	"context"
)

// UnitOfWorkFactory creates new UnitOfWork instances for each request/command.
// This ensures proper isolation between concurrent operations.
type UnitOfWorkFactory interface {
	Create() UnitOfWork
}

// UnitOfWork represents a business transaction boundary.
// It provides transaction control and repository access bound to that
// transaction. Client code must explicitly manage the transaction lifecycle.
//
// The workflow engine relies on the unit of work for its atomicity boundary:
// the per-order lock, the status update and the audit log insert all happen
// inside one unit of work and either commit together or roll back together.
type UnitOfWork interface {
	// Begin starts a new database transaction.
	Begin(ctx context.Context) error

	// Commit commits the current transaction.
	// Returns error if no active transaction or commit fails.
	Commit(ctx context.Context) error

	// Rollback rolls back the current transaction.
	// Returns error if no active transaction or rollback fails.
	Rollback(ctx context.Context) error

	// OrderRepository returns an OrderRepository instance bound to the current
	// transaction. Without an active transaction, operations execute directly
	// against the database.
	OrderRepository() OrderRepository

	// TransitionLogRepository returns a TransitionLogRepository instance bound
	// to the current transaction. Without an active transaction, operations
	// execute directly against the database.
	TransitionLogRepository() TransitionLogRepository
}
