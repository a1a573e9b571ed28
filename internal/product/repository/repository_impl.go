package repository

import (
	"context"
	"encoding/json"
	"time"

	"github.com/motodesk/motodesk/internal/config"
	"github.com/motodesk/motodesk/internal/product/domain"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

const cacheKeyPrefix = "product:"

// Repository serves the part catalog from the database with a redis
// read-through in front. Cache misses fall back to the table; cache
// failures degrade to the table silently.
type Repository struct {
	db       *gorm.DB
	rdb      *redis.Client
	log      *zap.Logger
	cacheTTL time.Duration
}

func NewRepository(db *gorm.DB, rdb *redis.Client, cfg config.Config, log *zap.Logger) domain.Store {
	return &Repository{
		db:       db,
		rdb:      rdb,
		log:      log.Named("product.repository"),
		cacheTTL: cfg.Catalog.CacheTTL,
	}
}

func (r *Repository) ByNumbers(ctx context.Context, numbers []string) ([]domain.Product, error) {
	if len(numbers) == 0 {
		return nil, nil
	}

	found, missing := r.fromCache(ctx, numbers)
	if len(missing) == 0 {
		return found, nil
	}

	var rows []domain.Product
	if err := r.db.WithContext(ctx).
		Where("number IN ?", missing).
		Find(&rows).Error; err != nil {
		return nil, err
	}
	r.backfill(ctx, rows)

	return append(found, rows...), nil
}

func (r *Repository) ReplaceAll(ctx context.Context, products []domain.Product) error {
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("1 = 1").Delete(&domain.Product{}).Error; err != nil {
			return err
		}
		if len(products) == 0 {
			return nil
		}
		return tx.CreateInBatches(products, 500).Error
	})
	if err != nil {
		return err
	}
	r.invalidate(ctx, products)
	return nil
}

func (r *Repository) fromCache(ctx context.Context, numbers []string) (found []domain.Product, missing []string) {
	if r.rdb == nil {
		return nil, numbers
	}
	keys := make([]string, len(numbers))
	for i, n := range numbers {
		keys[i] = cacheKeyPrefix + n
	}
	values, err := r.rdb.MGet(ctx, keys...).Result()
	if err != nil {
		r.log.Warn("product cache read failed", zap.Error(err))
		return nil, numbers
	}
	for i, v := range values {
		raw, ok := v.(string)
		if !ok {
			missing = append(missing, numbers[i])
			continue
		}
		var p domain.Product
		if err := json.Unmarshal([]byte(raw), &p); err != nil {
			missing = append(missing, numbers[i])
			continue
		}
		found = append(found, p)
	}
	return found, missing
}

func (r *Repository) backfill(ctx context.Context, products []domain.Product) {
	if r.rdb == nil || len(products) == 0 {
		return
	}
	pipe := r.rdb.Pipeline()
	for _, p := range products {
		raw, err := json.Marshal(p)
		if err != nil {
			continue
		}
		pipe.Set(ctx, cacheKeyPrefix+p.Number, raw, r.cacheTTL)
	}
	if _, err := pipe.Exec(ctx); err != nil {
		r.log.Warn("product cache backfill failed", zap.Error(err))
	}
}

func (r *Repository) invalidate(ctx context.Context, products []domain.Product) {
	if r.rdb == nil || len(products) == 0 {
		return
	}
	keys := make([]string, len(products))
	for i, p := range products {
		keys[i] = cacheKeyPrefix + p.Number
	}
	if err := r.rdb.Del(ctx, keys...).Err(); err != nil {
		r.log.Warn("product cache invalidation failed", zap.Error(err))
	}
}
