package service

import (
	"context"
	"time"

	"github.com/motodesk/motodesk/internal/config"
	"github.com/motodesk/motodesk/internal/product/domain"
	"go.uber.org/zap"
)

// Syncer mirrors the distributor's part catalog into the local table on
// a fixed interval. It runs independently of invoice submission; the
// catalog is only ever read during assembly.
type Syncer struct {
	feed     domain.Feed
	store    domain.Store
	log      *zap.Logger
	interval time.Duration
}

func NewSyncer(feed domain.Feed, store domain.Store, cfg config.Config, log *zap.Logger) *Syncer {
	return &Syncer{
		feed:     feed,
		store:    store,
		log:      log.Named("product.syncer"),
		interval: cfg.Catalog.SyncInterval,
	}
}

// SyncOnce pulls the full catalog and replaces the local mirror.
func (s *Syncer) SyncOnce(ctx context.Context) error {
	started := time.Now()
	products, err := s.feed.FetchProducts(ctx)
	if err != nil {
		return err
	}
	if err := s.store.ReplaceAll(ctx, products); err != nil {
		return err
	}
	s.log.Info("catalog synced",
		zap.Int("products", len(products)),
		zap.Duration("took", time.Since(started)))
	return nil
}

// Run resyncs on the configured interval until the context is cancelled.
// A failed cycle is logged and retried on the next tick.
func (s *Syncer) Run(ctx context.Context) {
	if err := s.SyncOnce(ctx); err != nil {
		s.log.Error("initial catalog sync failed", zap.Error(err))
	}
	ticker := time.NewTicker(s.interval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			if err := s.SyncOnce(ctx); err != nil {
				s.log.Error("catalog sync failed", zap.Error(err))
			}
		}
	}
}
