package travel

import (
	"context"
	"fmt"
	"strconv"
	"time"

	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"

	"github.com/sells-group/dispatch-cli/internal/config"
	"github.com/sells-group/dispatch-cli/internal/geo"
)

// Cache stores resolved drive times in Redis keyed by coordinate pair.
// Lookups and writes absorb their own failures; a broken cache only costs
// the cascade one tier.
type Cache struct {
	rdb *redis.Client
	ttl time.Duration
}

// NewCache creates a Cache from config. Returns nil when the cache is
// disabled so callers can skip the tier entirely.
func NewCache(cfg config.RedisConfig) *Cache {
	if !cfg.Enabled {
		return nil
	}
	ttl := time.Duration(cfg.TTLHours) * time.Hour
	if ttl <= 0 {
		ttl = 24 * time.Hour
	}
	return &Cache{
		rdb: redis.NewClient(&redis.Options{
			Addr:     cfg.Addr,
			Password: cfg.Password,
			DB:       cfg.DB,
		}),
		ttl: ttl,
	}
}

// cacheKey identifies a coordinate pair at ~11m precision, enough to share
// entries between jobs at the same address.
func cacheKey(origin, dest geo.Point) string {
	return fmt.Sprintf("travel:%.4f,%.4f:%.4f,%.4f", origin.Lat, origin.Lng, dest.Lat, dest.Lng)
}

// Get returns the cached minutes for the pair, if present.
func (c *Cache) Get(ctx context.Context, origin, dest geo.Point) (float64, bool) {
	val, err := c.rdb.Get(ctx, cacheKey(origin, dest)).Result()
	if err != nil {
		if err != redis.Nil {
			zap.L().Debug("travel: cache get failed", zap.Error(err))
		}
		return 0, false
	}
	minutes, err := strconv.ParseFloat(val, 64)
	if err != nil {
		zap.L().Warn("travel: corrupt cache entry", zap.String("value", val))
		return 0, false
	}
	return minutes, true
}

// Set stores the minutes for the pair with the configured TTL.
func (c *Cache) Set(ctx context.Context, origin, dest geo.Point, minutes float64) {
	key := cacheKey(origin, dest)
	if err := c.rdb.Set(ctx, key, strconv.FormatFloat(minutes, 'f', 2, 64), c.ttl).Err(); err != nil {
		zap.L().Debug("travel: cache set failed", zap.String("key", key), zap.Error(err))
	}
}

// Close releases the underlying Redis connection.
func (c *Cache) Close() error {
	return c.rdb.Close()
}
