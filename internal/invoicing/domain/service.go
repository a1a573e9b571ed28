package domain

import (
	"context"
	"time"
)

// CreateInvoiceInput is the single-invoice path: the caller already
// knows which orders and which billing profile to use.
type CreateInvoiceInput struct {
	// Number is optional; empty lets the provider auto-assign.
	Number       string
	IssueDate    time.Time
	SaleDate     time.Time
	Dates        []time.Time
	OrderIDs     []string
	ContractorID int64
}

type Service interface {
	// CreateBulkInvoices assembles one invoice per contractor from all
	// non-excluded orders in the inclusive date range and submits them
	// sequentially. Returns the provider identifiers of the submitted
	// invoices.
	CreateBulkInvoices(ctx context.Context, dateFrom, dateTo time.Time) ([]string, error)

	// CreateInvoice builds and submits exactly one invoice from an
	// explicit order subset and contractor.
	CreateInvoice(ctx context.Context, input CreateInvoiceInput) (string, error)
}
