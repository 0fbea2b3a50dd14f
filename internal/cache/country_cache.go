package cache

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/worldexplorer/backend/internal/repository"
)

// CountryCache is a cache-aside layer over country reads. Every error is
// reported to the caller as a miss after being logged; the database stays
// the source of truth and the cache is free to be cold or down.
type CountryCache struct {
	client *redis.Client
	logger *slog.Logger
	ttl    time.Duration
}

func NewCountryCache(client *redis.Client, ttl time.Duration, logger *slog.Logger) *CountryCache {
	return &CountryCache{client: client, logger: logger, ttl: ttl}
}

func countryKey(id int64) string {
	return fmt.Sprintf("country:%d", id)
}

// Get returns the cached country and true on a hit.
func (c *CountryCache) Get(ctx context.Context, id int64) (repository.Country, bool) {
	data, err := c.client.Get(ctx, countryKey(id)).Bytes()
	if err != nil {
		if !errors.Is(err, redis.Nil) {
			c.logger.Warn("Country cache read failed", slog.Int64("id", id), slog.Any("error", err))
		}
		return repository.Country{}, false
	}

	var country repository.Country
	if err := json.Unmarshal(data, &country); err != nil {
		c.logger.Warn("Country cache entry is corrupt", slog.Int64("id", id), slog.Any("error", err))
		return repository.Country{}, false
	}
	return country, true
}

// Set stores the country under its id with the configured TTL.
func (c *CountryCache) Set(ctx context.Context, country repository.Country) {
	data, err := json.Marshal(country)
	if err != nil {
		c.logger.Warn("Failed to serialize country for cache", slog.Int64("id", country.ID), slog.Any("error", err))
		return
	}
	if err := c.client.Set(ctx, countryKey(country.ID), data, c.ttl).Err(); err != nil {
		c.logger.Warn("Country cache write failed", slog.Int64("id", country.ID), slog.Any("error", err))
	}
}

// Invalidate drops the cached entry after an update or delete.
func (c *CountryCache) Invalidate(ctx context.Context, id int64) {
	if err := c.client.Del(ctx, countryKey(id)).Err(); err != nil {
		c.logger.Warn("Country cache invalidation failed", slog.Int64("id", id), slog.Any("error", err))
	}
}
