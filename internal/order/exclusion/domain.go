// Package exclusion persists the set of distributor order ids that must
// never be invoiced. Staff flag orders from the review screen; bulk
// assembly filters against this set on every run.
package exclusion

import (
	"context"
	"time"

	"github.com/google/uuid"
)

type ExcludedOrder struct {
	ID        uuid.UUID `json:"id" gorm:"type:uuid;primaryKey"`
	OrderID   string    `json:"order_id" gorm:"type:text;not null;uniqueIndex"`
	Reason    string    `json:"reason" gorm:"type:text"`
	CreatedAt time.Time `json:"created_at" gorm:"not null"`
}

func (ExcludedOrder) TableName() string { return "excluded_orders" }

type Registry interface {
	ExcludedOrderIDs(ctx context.Context) ([]string, error)
	List(ctx context.Context) ([]ExcludedOrder, error)
	Add(ctx context.Context, orderIDs []string, reason string) error
	Remove(ctx context.Context, orderID string) error
}
