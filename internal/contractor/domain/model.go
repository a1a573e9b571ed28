package domain

import "context"

// Contractor is a full customer billing profile. The NIP is the join
// key between an order's embedded contractor reference and this record;
// matching is exact, inputs are assumed pre-normalized upstream.
type Contractor struct {
	ID      int64  `json:"id" gorm:"primaryKey;autoIncrement"`
	Name    string `json:"name" gorm:"type:text;not null"`
	NIP     string `json:"nip" gorm:"column:nip;type:text;not null;uniqueIndex"`
	Street  string `json:"street" gorm:"type:text"`
	City    string `json:"city" gorm:"type:text"`
	ZipCode string `json:"zip_code" gorm:"type:text"`
	Email   string `json:"email" gorm:"type:text"`
}

func (Contractor) TableName() string { return "contractors" }

// Directory resolves billing profiles. ByID returns (nil, nil) when the
// id is unknown; ByNIPs omits unmatched NIPs from the result.
type Directory interface {
	ByID(ctx context.Context, id int64) (*Contractor, error)
	ByNIPs(ctx context.Context, nips []string) ([]Contractor, error)
}
