package domain

import "context"

// Product is a row of the part catalog mirrored from the distributor.
// Read-only for invoicing; only the sync worker writes it.
type Product struct {
	Number string `json:"number" gorm:"type:text;primaryKey"`
	Name   string `json:"name" gorm:"type:text;not null"`
	EAN13  string `json:"ean13" gorm:"type:text"`
}

func (Product) TableName() string { return "products" }

// Catalog resolves part numbers to products. Absent numbers are simply
// omitted from the result, never an error.
type Catalog interface {
	ByNumbers(ctx context.Context, numbers []string) ([]Product, error)
}

// Feed is the upstream catalog source the sync worker pulls from.
type Feed interface {
	FetchProducts(ctx context.Context) ([]Product, error)
}

// Store is the writable side of the catalog, used by the sync worker.
type Store interface {
	Catalog
	ReplaceAll(ctx context.Context, products []Product) error
}
