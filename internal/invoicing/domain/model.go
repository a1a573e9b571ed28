package domain

import (
	"time"

	contractordomain "github.com/motodesk/motodesk/internal/contractor/domain"
	"github.com/shopspring/decimal"
)

// VatType distinguishes percentage-rated lines from VAT-exempt ones.
type VatType string

const (
	VatTypePercentage VatType = "percentage"
	VatTypeExempt     VatType = "exempt"
)

// Invoice is the provider-neutral aggregate handed to an adapter. It is
// built fresh per invoicing attempt and discarded after submission; the
// identity of record is whatever number the provider returns.
type Invoice struct {
	// Number is empty when the provider should auto-assign one.
	Number        string
	IssueDate     time.Time
	SaleDate      time.Time
	PaymentDue    time.Time
	PlaceOfIssue  string
	PaymentMethod string
	Notes         string
	// Contractor is a denormalized snapshot of the billing profile at
	// assembly time.
	Contractor contractordomain.Contractor
	Items      []InvoiceItem
}

type InvoiceItem struct {
	Name     string
	Quantity int
	// UnitPrice is net, already rounded via RoundMoney.
	UnitPrice decimal.Decimal
	VatRate   decimal.Decimal
	VatType   VatType
	Discount  *decimal.Decimal
	PKWiU     string
	GTU       string
}

// Total returns the net line total.
func (i InvoiceItem) Total() decimal.Decimal {
	return i.UnitPrice.Mul(decimal.NewFromInt(int64(i.Quantity)))
}

// RoundMoney rounds to 2 decimal places, half away from zero. Applied
// before a price is embedded in an InvoiceItem so locally computed and
// provider-side totals cannot drift by more than one grosz. Idempotent.
func RoundMoney(d decimal.Decimal) decimal.Decimal {
	return d.Round(2)
}

// ToGroszy converts a decimal PLN amount to integer groszy. Only
// adapter boundaries that speak minor units call this; everything
// internal stays decimal.
func ToGroszy(d decimal.Decimal) int64 {
	return RoundMoney(d).Shift(2).IntPart()
}
