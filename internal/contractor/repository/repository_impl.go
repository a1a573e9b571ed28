package repository

import (
	"context"
	"errors"

	"github.com/motodesk/motodesk/internal/contractor/domain"
	"gorm.io/gorm"
)

type repository struct {
	db *gorm.DB
}

func NewRepository(db *gorm.DB) domain.Directory {
	return &repository{db: db}
}

func (r *repository) ByID(ctx context.Context, id int64) (*domain.Contractor, error) {
	var c domain.Contractor
	err := r.db.WithContext(ctx).First(&c, "id = ?", id).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &c, nil
}

func (r *repository) ByNIPs(ctx context.Context, nips []string) ([]domain.Contractor, error) {
	if len(nips) == 0 {
		return nil, nil
	}
	var rows []domain.Contractor
	if err := r.db.WithContext(ctx).
		Where("nip IN ?", nips).
		Find(&rows).Error; err != nil {
		return nil, err
	}
	return rows, nil
}
