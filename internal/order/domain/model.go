package domain

import (
	"context"
	"time"

	"github.com/shopspring/decimal"
)

// Order is a single distributor sale as returned by the order source.
// Orders are read-only input: this application never mutates one.
type Order struct {
	// ID is the distributor's opaque identifier; the exclusion registry
	// keys on it.
	ID        string
	Number    string
	EntryDate time.Time
	// Contractor is the lightweight customer reference embedded on the
	// order, not a full billing profile. Number carries the NIP.
	Contractor OrderContractor
	Items      []OrderItem
}

type OrderContractor struct {
	Name   string
	Number string
}

type OrderItem struct {
	PartNumber string
	Quantity   int
	// UnitPrice is net. Items whose Quantity*UnitPrice is not positive
	// are valid domain data but never billed.
	UnitPrice decimal.Decimal
	VatRate   decimal.Decimal
}

// Total returns Quantity * UnitPrice, net.
func (i OrderItem) Total() decimal.Decimal {
	return i.UnitPrice.Mul(decimal.NewFromInt(int64(i.Quantity)))
}

// Source is the distributor order feed. Implementations already retry
// transient failures; only non-retryable errors surface here.
type Source interface {
	OrdersByDateRange(ctx context.Context, from, to time.Time) ([]Order, error)
	OrdersByDates(ctx context.Context, dates []time.Time) ([]Order, error)
}
