package product

import (
	"github.com/motodesk/motodesk/internal/product/domain"
	"github.com/motodesk/motodesk/internal/product/repository"
	"github.com/motodesk/motodesk/internal/product/service"
	"go.uber.org/fx"
)

var Module = fx.Module("product",
	fx.Provide(repository.NewRepository),
	fx.Provide(func(s domain.Store) domain.Catalog { return s }),
	fx.Provide(service.NewSyncer),
)
