package exclusion

import (
	"context"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type repository struct {
	db *gorm.DB
}

func NewRepository(db *gorm.DB) Registry {
	return &repository{db: db}
}

func (r *repository) ExcludedOrderIDs(ctx context.Context) ([]string, error) {
	var ids []string
	if err := r.db.WithContext(ctx).
		Model(&ExcludedOrder{}).
		Pluck("order_id", &ids).Error; err != nil {
		return nil, err
	}
	return ids, nil
}

func (r *repository) List(ctx context.Context) ([]ExcludedOrder, error) {
	var rows []ExcludedOrder
	if err := r.db.WithContext(ctx).
		Order("created_at DESC").
		Find(&rows).Error; err != nil {
		return nil, err
	}
	return rows, nil
}

// Add is idempotent: re-flagging an already excluded order is a no-op.
func (r *repository) Add(ctx context.Context, orderIDs []string, reason string) error {
	if len(orderIDs) == 0 {
		return nil
	}
	rows := make([]ExcludedOrder, 0, len(orderIDs))
	now := time.Now().UTC()
	for _, id := range orderIDs {
		rows = append(rows, ExcludedOrder{
			ID:        uuid.New(),
			OrderID:   id,
			Reason:    reason,
			CreatedAt: now,
		})
	}
	return r.db.WithContext(ctx).
		Clauses(clause.OnConflict{
			Columns:   []clause.Column{{Name: "order_id"}},
			DoNothing: true,
		}).
		Create(&rows).Error
}

func (r *repository) Remove(ctx context.Context, orderID string) error {
	return r.db.WithContext(ctx).
		Where("order_id = ?", orderID).
		Delete(&ExcludedOrder{}).Error
}
