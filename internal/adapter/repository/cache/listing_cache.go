// Package cache puts a Redis read-through cache in front of a listing repository.
package cache

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/Abdurahmanit/reusehub/internal/config"
	"github.com/Abdurahmanit/reusehub/internal/listing/domain"
	"github.com/Abdurahmanit/reusehub/internal/platform/logger"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
)

const listingKeyPrefix = "listing:"

func NewRedisClient(ctx context.Context, cfg config.RedisConfig, log *logger.Logger) (*redis.Client, error) {
	rdb := redis.NewClient(&redis.Options{
		Addr:     cfg.Address,
		Password: cfg.Password,
		DB:       cfg.DB,
	})

	pingCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()
	if err := rdb.Ping(pingCtx).Err(); err != nil {
		log.Error("Failed to connect to Redis", zap.String("address", cfg.Address), zap.Error(err))
		_ = rdb.Close()
		return nil, fmt.Errorf("failed to ping redis at %s: %w", cfg.Address, err)
	}
	log.Info("Successfully connected to Redis", zap.String("address", cfg.Address))
	return rdb, nil
}

// Store is the subset of the Redis command set the cache needs. *redis.Client satisfies it.
type Store interface {
	Get(ctx context.Context, key string) *redis.StringCmd
	Set(ctx context.Context, key string, value interface{}, expiration time.Duration) *redis.StatusCmd
	Del(ctx context.Context, keys ...string) *redis.IntCmd
}

// CachedListingRepository caches single-listing lookups. Cache failures are
// logged and never surface to callers; the wrapped repository stays authoritative.
type CachedListingRepository struct {
	next   domain.ListingRepository
	client Store
	ttl    time.Duration
	logger *logger.Logger
}

func NewCachedListingRepository(next domain.ListingRepository, client Store, ttl time.Duration, log *logger.Logger) *CachedListingRepository {
	return &CachedListingRepository{
		next:   next,
		client: client,
		ttl:    ttl,
		logger: log.Named("ListingCache"),
	}
}

func listingKey(id string) string {
	return listingKeyPrefix + id
}

func (c *CachedListingRepository) Create(ctx context.Context, listing *domain.Listing) error {
	if err := c.next.Create(ctx, listing); err != nil {
		return err
	}
	c.set(ctx, listing)
	return nil
}

func (c *CachedListingRepository) FindByID(ctx context.Context, id string) (*domain.Listing, error) {
	data, err := c.client.Get(ctx, listingKey(id)).Bytes()
	switch {
	case err == nil:
		var listing domain.Listing
		if jsonErr := json.Unmarshal(data, &listing); jsonErr == nil {
			return &listing, nil
		}
		c.logger.Warn("Dropping undecodable cache entry", zap.String("listing_id", id))
		c.delete(ctx, id)
	case errors.Is(err, redis.Nil):
	default:
		c.logger.Warn("Redis get failed, reading through", zap.String("listing_id", id), zap.Error(err))
	}

	listing, err := c.next.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	c.set(ctx, listing)
	return listing, nil
}

func (c *CachedListingRepository) List(ctx context.Context) ([]*domain.Listing, error) {
	return c.next.List(ctx)
}

func (c *CachedListingRepository) UpdateStatus(ctx context.Context, id string, status domain.ListingStatus, at time.Time) (*domain.Listing, error) {
	listing, err := c.next.UpdateStatus(ctx, id, status, at)
	if err != nil {
		c.delete(ctx, id)
		return nil, err
	}
	c.set(ctx, listing)
	return listing, nil
}

func (c *CachedListingRepository) Ping(ctx context.Context) error {
	return c.next.Ping(ctx)
}

func (c *CachedListingRepository) set(ctx context.Context, listing *domain.Listing) {
	data, err := json.Marshal(listing)
	if err != nil {
		c.logger.Warn("Failed to encode listing for cache", zap.String("listing_id", listing.ID), zap.Error(err))
		return
	}
	if err := c.client.Set(ctx, listingKey(listing.ID), data, c.ttl).Err(); err != nil {
		c.logger.Warn("Redis set failed", zap.String("listing_id", listing.ID), zap.Error(err))
	}
}

func (c *CachedListingRepository) delete(ctx context.Context, id string) {
	if err := c.client.Del(ctx, listingKey(id)).Err(); err != nil {
		c.logger.Warn("Redis del failed", zap.String("listing_id", id), zap.Error(err))
	}
}
