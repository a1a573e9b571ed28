package service

import (
	"context"
	"time"

	orderdomain "github.com/motodesk/motodesk/internal/order/domain"
	"github.com/motodesk/motodesk/internal/order/exclusion"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
)

// AnnotatedOrder is an order plus its exclusion flag, for the review
// screen.
type AnnotatedOrder struct {
	Order    orderdomain.Order
	Excluded bool
}

type Service interface {
	ListOrders(ctx context.Context, dateFrom, dateTo time.Time) ([]AnnotatedOrder, error)
}

type service struct {
	log        *zap.Logger
	orders     orderdomain.Source
	exclusions exclusion.Registry
}

func NewService(log *zap.Logger, orders orderdomain.Source, exclusions exclusion.Registry) Service {
	return &service{
		log:        log.Named("order.service"),
		orders:     orders,
		exclusions: exclusions,
	}
}

func (s *service) ListOrders(ctx context.Context, dateFrom, dateTo time.Time) ([]AnnotatedOrder, error) {
	var (
		orders   []orderdomain.Order
		excluded []string
	)
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		var err error
		orders, err = s.orders.OrdersByDateRange(gctx, dateFrom, dateTo)
		return err
	})
	g.Go(func() error {
		var err error
		excluded, err = s.exclusions.ExcludedOrderIDs(gctx)
		return err
	})
	if err := g.Wait(); err != nil {
		return nil, err
	}

	excludedSet := make(map[string]struct{}, len(excluded))
	for _, id := range excluded {
		excludedSet[id] = struct{}{}
	}

	out := make([]AnnotatedOrder, 0, len(orders))
	for _, o := range orders {
		_, isExcluded := excludedSet[o.ID]
		out = append(out, AnnotatedOrder{Order: o, Excluded: isExcluded})
	}
	return out, nil
}
