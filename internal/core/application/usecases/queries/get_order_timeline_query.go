// Package queries contains read-only operations over the order store.
// Implements the Query side of the CQRS architecture: handlers read the
// database directly and return plain response structures, bypassing the
// domain aggregates and the unit of work.
package queries

import (
	"errors"
	"time"

	"orderflow/internal/core/domain/model/kernel"
	"orderflow/internal/pkg/guard"
)

var ErrGetOrderTimelineQueryIsNotConstructed = errors.New(
	"GetOrderTimelineQuery must be created via NewGetOrderTimelineQuery constructor",
)

// GetOrderTimelineQuery retrieves the full transition history of one order.
//
// Example:
//
//	query, err := NewGetOrderTimelineQuery(orderID)
//	if err != nil {
//	    return err
//	}
//
//	entries, err := handler.Handle(ctx, query)
type GetOrderTimelineQuery struct { //nolint:recvcheck //using for validation
	orderID kernel.UUID

	guard guard.ConstructorGuard
}

// NewGetOrderTimelineQuery creates a query for an order's transition history.
// Validates the order ID.
func NewGetOrderTimelineQuery(orderID kernel.UUID) (GetOrderTimelineQuery, error) {
	if err := orderID.Validate(); err != nil {
		return GetOrderTimelineQuery{}, err
	}

	return GetOrderTimelineQuery{
		orderID: orderID,
		guard:   guard.NewConstructorGuard(),
	}, nil
}

// Validate ensures the query was created through the constructor.
// Returns ErrGetOrderTimelineQueryIsNotConstructed if validation fails.
func (q GetOrderTimelineQuery) Validate() error {
	return q.guard.Validate(ErrGetOrderTimelineQueryIsNotConstructed)
}

// OrderID returns the identifier of the order whose history is requested.
func (q GetOrderTimelineQuery) OrderID() kernel.UUID {
	return q.orderID
}

// GetOrderTimelineQueryResponse represents one executed transition in an
// order's history, oldest first.
type GetOrderTimelineQueryResponse struct {
	ID             kernel.UUID
	FromState      string
	ToState        string
	Actor          string
	Note           string
	TransitionName string
	Effects        []string
	IdempotencyKey string
	CreatedAt      time.Time
}
