package order

import (
	"github.com/motodesk/motodesk/internal/order/distributor"
	orderdomain "github.com/motodesk/motodesk/internal/order/domain"
	"github.com/motodesk/motodesk/internal/order/exclusion"
	"github.com/motodesk/motodesk/internal/order/service"
	productdomain "github.com/motodesk/motodesk/internal/product/domain"
	"go.uber.org/fx"
)

var Module = fx.Module("order",
	fx.Provide(
		fx.Annotate(
			distributor.NewClient,
			fx.As(new(orderdomain.Source)),
			fx.As(new(productdomain.Feed)),
		),
	),
	fx.Provide(exclusion.NewRepository),
	fx.Provide(service.NewService),
)
