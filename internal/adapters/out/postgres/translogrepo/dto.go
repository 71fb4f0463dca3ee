// Package translogrepo provides data transfer objects and mapping functions for
// the append-only transition audit log. Each row documents one executed
// transition: the states involved, who triggered it, which effects ran and the
// idempotency key it was deduplicated on.
package translogrepo

import (
	"encoding/json"
	"time"

	"orderflow/internal/core/domain/model/kernel"
	"orderflow/internal/core/domain/model/order"

	"github.com/google/uuid"
)

// TransitionLogDTO represents the database structure for persisting audit records.
//
// The composite unique index on (order_id, idempotency_key) is the storage-level
// backstop for at-most-once execution: if two first-time calls with the same key
// race past the replay lookup, the second insert fails and its transaction rolls
// back. The key column is nullable so rows without a key never collide.
type TransitionLogDTO struct {
	ID             uuid.UUID `gorm:"type:uuid;primaryKey"`
	OrderID        uuid.UUID `gorm:"type:uuid;index;uniqueIndex:ux_transition_logs_order_idem,priority:1;not null"`
	FromState      string    `gorm:"type:varchar(16);not null"`
	ToState        string    `gorm:"type:varchar(16);not null"`
	Actor          string
	Note           string
	TransitionName string    `gorm:"not null"`
	Effects        string    `gorm:"type:text"`
	IdempotencyKey *string   `gorm:"uniqueIndex:ux_transition_logs_order_idem,priority:2"`
	CreatedAt      time.Time `gorm:"not null;index"`
}

// TableName specifies the database table name for audit records.
func (TransitionLogDTO) TableName() string {
	return "transition_logs"
}

// fromDomain converts an audit record to its database representation.
// Effects are stored as a JSON array; an empty idempotency key maps to NULL so
// the unique index only applies to keyed transitions.
func fromDomain(entry *order.TransitionLog) (TransitionLogDTO, error) {
	effects, err := json.Marshal(entry.Effects())
	if err != nil {
		return TransitionLogDTO{}, err
	}

	var key *string
	if k := entry.IdempotencyKey(); k != "" {
		key = &k
	}

	return TransitionLogDTO{
		ID:             entry.ID().Bytes(),
		OrderID:        entry.OrderID().Bytes(),
		FromState:      entry.FromState().String(),
		ToState:        entry.ToState().String(),
		Actor:          entry.Actor(),
		Note:           entry.Note(),
		TransitionName: entry.TransitionName(),
		Effects:        string(effects),
		IdempotencyKey: key,
		CreatedAt:      entry.CreatedAt(),
	}, nil
}

// toDomain converts a database DTO to an audit record using RestoreTransitionLog.
func toDomain(dto TransitionLogDTO) (*order.TransitionLog, error) {
	id, err := kernel.UUIDFromBytes(dto.ID[:])
	if err != nil {
		return nil, err
	}

	orderID, err := kernel.UUIDFromBytes(dto.OrderID[:])
	if err != nil {
		return nil, err
	}

	fromState, err := order.StatusFromString(dto.FromState)
	if err != nil {
		return nil, err
	}

	toState, err := order.StatusFromString(dto.ToState)
	if err != nil {
		return nil, err
	}

	var effects []string
	if dto.Effects != "" {
		if err = json.Unmarshal([]byte(dto.Effects), &effects); err != nil {
			return nil, err
		}
	}

	var key string
	if dto.IdempotencyKey != nil {
		key = *dto.IdempotencyKey
	}

	return order.RestoreTransitionLog(
		id,
		orderID,
		fromState,
		toState,
		dto.Actor,
		dto.Note,
		dto.TransitionName,
		effects,
		key,
		dto.CreatedAt,
	)
}
