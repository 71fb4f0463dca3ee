package queries

import (
	"context"
	"database/sql"
	"encoding/json"

	"orderflow/internal/core/domain/model/kernel"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// GetOrderTimelineQueryHandler retrieves the audit trail of one order from the
// database, oldest entry first.
//
// Example:
//
//	handler := NewGetOrderTimelineQueryHandler(db)
//	query, _ := NewGetOrderTimelineQuery(orderID)
//
//	entries, err := handler.Handle(ctx, query)
//	if err != nil {
//	    return err
//	}
//	for _, e := range entries {
//	    fmt.Printf("%s: %s -> %s by %s\n", e.CreatedAt, e.FromState, e.ToState, e.Actor)
//	}
type GetOrderTimelineQueryHandler struct {
	db *gorm.DB
}

// NewGetOrderTimelineQueryHandler creates a handler for timeline queries.
// Requires a GORM database connection for query execution.
func NewGetOrderTimelineQueryHandler(db *gorm.DB) GetOrderTimelineQueryHandler {
	return GetOrderTimelineQueryHandler{db: db}
}

// Handle executes the query and returns the order's transitions oldest first.
// An order without history yields an empty slice, not an error.
func (h GetOrderTimelineQueryHandler) Handle(
	ctx context.Context,
	query GetOrderTimelineQuery,
) ([]GetOrderTimelineQueryResponse, error) {
	if err := query.Validate(); err != nil {
		return nil, err
	}

	entries := make([]GetOrderTimelineQueryResponse, 0)

	rows, err := h.db.WithContext(ctx).Raw(`
		SELECT
			id,
			from_state,
			to_state,
			actor,
			note,
			transition_name,
			effects,
			idempotency_key,
			created_at
		FROM transition_logs
		WHERE order_id = ?
		ORDER BY created_at, id
	`, query.OrderID().Bytes()).Rows()
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	for rows.Next() {
		var entry GetOrderTimelineQueryResponse
		var id uuid.UUID
		var effectsRaw sql.NullString
		var idempotencyKey sql.NullString

		err = rows.Scan(
			&id,
			&entry.FromState,
			&entry.ToState,
			&entry.Actor,
			&entry.Note,
			&entry.TransitionName,
			&effectsRaw,
			&idempotencyKey,
			&entry.CreatedAt,
		)
		if err != nil {
			return nil, err
		}

		entryID, idErr := kernel.UUIDFromBytes(id[:])
		if idErr != nil {
			return nil, idErr
		}
		entry.ID = entryID

		if effectsRaw.Valid && effectsRaw.String != "" {
			if err = json.Unmarshal([]byte(effectsRaw.String), &entry.Effects); err != nil {
				return nil, err
			}
		}
		entry.IdempotencyKey = idempotencyKey.String

		entries = append(entries, entry)
	}

	if err = rows.Err(); err != nil {
		return nil, err
	}

	return entries, nil
}
