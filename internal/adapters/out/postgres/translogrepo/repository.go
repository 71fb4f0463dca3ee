package translogrepo

import (
	"context"
	"errors"
	"fmt"

	"orderflow/internal/core/domain/model/kernel"
	"orderflow/internal/core/domain/model/order"
	"orderflow/internal/pkg/errs"

	"gorm.io/gorm"
)

// GormTransitionLogRepository implements TransitionLogRepository using GORM.
// The repository is strictly append-only: no update or delete is exposed.
type GormTransitionLogRepository struct {
	db *gorm.DB
}

// NewGormTransitionLogRepository creates a new GORM transition log repository.
func NewGormTransitionLogRepository(db *gorm.DB) *GormTransitionLogRepository {
	return &GormTransitionLogRepository{db: db}
}

// Add appends one audit record.
//
// A duplicate (order_id, idempotency_key) pair violates the unique index and
// fails the insert, which in turn fails the surrounding transaction. Callers
// treat that as a lost idempotency race, not as data corruption.
func (r *GormTransitionLogRepository) Add(ctx context.Context, entry *order.TransitionLog) error {
	if err := entry.Validate(); err != nil {
		return err
	}

	dto, err := fromDomain(entry)
	if err != nil {
		return err
	}

	if err = r.db.WithContext(ctx).Create(&dto).Error; err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			return fmt.Errorf("transition already recorded for order %s with key %q: %w",
				entry.OrderID(), entry.IdempotencyKey(), err)
		}
		return err
	}

	return nil
}

// ListForOrder returns all audit records for the order, oldest first.
func (r *GormTransitionLogRepository) ListForOrder(
	ctx context.Context,
	orderID kernel.UUID,
) ([]*order.TransitionLog, error) {
	if err := orderID.Validate(); err != nil {
		return nil, err
	}

	var dtos []TransitionLogDTO
	err := r.db.WithContext(ctx).
		Where("order_id = ?", orderID.Bytes()).
		Order("created_at ASC, id ASC").
		Find(&dtos).Error
	if err != nil {
		return nil, err
	}

	entries := make([]*order.TransitionLog, 0, len(dtos))
	for _, dto := range dtos {
		entry, convErr := toDomain(dto)
		if convErr != nil {
			return nil, convErr
		}
		entries = append(entries, entry)
	}

	return entries, nil
}

// FindByIdempotencyKey returns the audit record stored for the (order, key)
// pair, or an error wrapping errs.ErrObjectNotFound when none exists.
func (r *GormTransitionLogRepository) FindByIdempotencyKey(
	ctx context.Context,
	orderID kernel.UUID,
	key string,
) (*order.TransitionLog, error) {
	if err := orderID.Validate(); err != nil {
		return nil, err
	}
	if key == "" {
		return nil, errs.NewValueIsRequiredError("idempotency key")
	}

	var dto TransitionLogDTO
	err := r.db.WithContext(ctx).
		First(&dto, "order_id = ? AND idempotency_key = ?", orderID.Bytes(), key).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, errs.NewObjectNotFoundError("transition log", key)
		}
		return nil, err
	}

	return toDomain(dto)
}
