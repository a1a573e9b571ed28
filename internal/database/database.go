package database

import (
	"fmt"

	"github.com/glebarez/sqlite"
	"github.com/motodesk/motodesk/internal/config"
	contractordomain "github.com/motodesk/motodesk/internal/contractor/domain"
	"github.com/motodesk/motodesk/internal/order/exclusion"
	productdomain "github.com/motodesk/motodesk/internal/product/domain"
	"go.uber.org/fx"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
)

var Module = fx.Module("database",
	fx.Provide(Open),
)

func Open(cfg config.Config) (*gorm.DB, error) {
	var dialector gorm.Dialector
	switch cfg.Database.Driver {
	case "sqlite":
		dialector = sqlite.Open(cfg.Database.DSN)
	case "postgres", "":
		dialector = postgres.Open(cfg.Database.DSN)
	default:
		return nil, fmt.Errorf("database: unknown driver %q", cfg.Database.Driver)
	}

	db, err := gorm.Open(dialector, &gorm.Config{})
	if err != nil {
		return nil, err
	}
	if err := Migrate(db); err != nil {
		return nil, err
	}
	return db, nil
}

func Migrate(db *gorm.DB) error {
	return db.AutoMigrate(
		&exclusion.ExcludedOrder{},
		&productdomain.Product{},
		&contractordomain.Contractor{},
	)
}
