package gmaps

import (
	"context"
	"encoding/json"
	"strings"
	"time"

	"github.com/redis/go-redis/v9"

	"sms-ride-workers/internal/common/logger"
	"sms-ride-workers/internal/common/metrics"
)

const cacheKeyPrefix = "geocode:"

// Lookup is anything that resolves an address, typically *Client.
type Lookup interface {
	Geocode(ctx context.Context, address string) ([]Result, error)
}

// CachedGeocoder is a read-through Redis cache in front of a Lookup.
// Only successful, non-empty lookups are stored. Redis failures fall back to
// the live lookup.
type CachedGeocoder struct {
	next   Lookup
	redis  *redis.Client
	ttl    time.Duration
	logger logger.Logger
}

func NewCachedGeocoder(next Lookup, client *redis.Client, ttl time.Duration, log logger.Logger) *CachedGeocoder {
	return &CachedGeocoder{next: next, redis: client, ttl: ttl, logger: log}
}

func (c *CachedGeocoder) Geocode(ctx context.Context, address string) ([]Result, error) {
	key := CacheKey(address)

	if results, ok := c.fromCache(ctx, key); ok {
		metrics.GeocodeCacheHits.Inc()
		return results, nil
	}

	results, err := c.next.Geocode(ctx, address)
	if err != nil {
		return nil, err
	}

	if len(results) > 0 {
		c.store(ctx, key, results)
	}
	return results, nil
}

func (c *CachedGeocoder) fromCache(ctx context.Context, key string) ([]Result, bool) {
	data, err := c.redis.Get(ctx, key).Bytes()
	if err == redis.Nil {
		return nil, false
	}
	if err != nil {
		c.logger.Warn("geocode cache read failed", map[string]interface{}{
			"key":   key,
			"error": err.Error(),
		})
		return nil, false
	}

	var results []Result
	if err := json.Unmarshal(data, &results); err != nil || len(results) == 0 {
		return nil, false
	}
	return results, true
}

func (c *CachedGeocoder) store(ctx context.Context, key string, results []Result) {
	data, err := json.Marshal(results)
	if err != nil {
		return
	}
	if err := c.redis.Set(ctx, key, data, c.ttl).Err(); err != nil {
		c.logger.Warn("geocode cache write failed", map[string]interface{}{
			"key":   key,
			"error": err.Error(),
		})
	}
}

// CacheKey normalizes address so that case and spacing variants share a key.
func CacheKey(address string) string {
	return cacheKeyPrefix + strings.Join(strings.Fields(strings.ToLower(address)), " ")
}
