package queries

import (
	"errors"

	"orderflow/internal/pkg/guard"
)

var ErrGetStatusSummaryQueryIsNotConstructed = errors.New(
	"GetStatusSummaryQuery must be created via NewGetStatusSummaryQuery constructor",
)

// GetStatusSummaryQuery retrieves the order count per status.
// Backs the operations dashboard and the periodic summary job.
//
// Example:
//
//	query := NewGetStatusSummaryQuery()
//	summary, err := handler.Handle(ctx, query)
//	if err != nil {
//	    return err
//	}
//	for _, item := range summary {
//	    fmt.Printf("%s: %d\n", item.Status, item.Count)
//	}
type GetStatusSummaryQuery struct {
	guard guard.ConstructorGuard
}

// NewGetStatusSummaryQuery creates a query for per-status order counts.
// This is a parameterless query.
func NewGetStatusSummaryQuery() GetStatusSummaryQuery {
	return GetStatusSummaryQuery{guard: guard.NewConstructorGuard()}
}

// Validate ensures the query was created through the constructor.
// Returns ErrGetStatusSummaryQueryIsNotConstructed if validation fails.
func (q GetStatusSummaryQuery) Validate() error {
	return q.guard.Validate(ErrGetStatusSummaryQueryIsNotConstructed)
}

// GetStatusSummaryQueryResponse represents the order count for one status.
// Statuses without orders are omitted.
type GetStatusSummaryQueryResponse struct {
	Status string
	Count  int64
}
