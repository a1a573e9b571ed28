package invoicing

import (
	"github.com/motodesk/motodesk/internal/config"
	"github.com/motodesk/motodesk/internal/invoicing/adapters"
	"github.com/motodesk/motodesk/internal/invoicing/adapters/ifirma"
	"github.com/motodesk/motodesk/internal/invoicing/adapters/infakt"
	"github.com/motodesk/motodesk/internal/invoicing/service"
	"go.uber.org/fx"
	"go.uber.org/zap"
)

var Module = fx.Module("invoicing",
	fx.Provide(func(cfg config.Config, log *zap.Logger) *adapters.Registry {
		return adapters.NewRegistry(
			ifirma.NewAdapter(cfg, log),
			infakt.NewAdapter(cfg, log),
		)
	}),
	fx.Provide(service.NewService),
)
