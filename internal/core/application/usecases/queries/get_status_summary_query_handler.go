package queries

import (
	"context"

	"gorm.io/gorm"
)

// GetStatusSummaryQueryHandler counts orders per status straight from the
// orders table.
type GetStatusSummaryQueryHandler struct {
	db *gorm.DB
}

// NewGetStatusSummaryQueryHandler creates a handler for status summary queries.
// Requires a GORM database connection for query execution.
func NewGetStatusSummaryQueryHandler(db *gorm.DB) GetStatusSummaryQueryHandler {
	return GetStatusSummaryQueryHandler{db: db}
}

// Handle executes the query and returns one row per status holding at least
// one order, sorted by status name for stable output.
func (h GetStatusSummaryQueryHandler) Handle(
	ctx context.Context,
	query GetStatusSummaryQuery,
) ([]GetStatusSummaryQueryResponse, error) {
	if err := query.Validate(); err != nil {
		return nil, err
	}

	summary := make([]GetStatusSummaryQueryResponse, 0)

	rows, err := h.db.WithContext(ctx).Raw(`
		SELECT
			status,
			COUNT(*) AS total
		FROM orders
		GROUP BY status
		ORDER BY status
	`).Rows()
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	for rows.Next() {
		var item GetStatusSummaryQueryResponse
		if err = rows.Scan(&item.Status, &item.Count); err != nil {
			return nil, err
		}
		summary = append(summary, item)
	}

	if err = rows.Err(); err != nil {
		return nil, err
	}

	return summary, nil
}
