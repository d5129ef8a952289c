package cache

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	redis "github.com/redis/go-redis/v9"
	"github.com/smartstock/smartstock/internal/logger"
	"github.com/smartstock/smartstock/internal/models"
	"github.com/smartstock/smartstock/pkg/utils"
)

// ForecastCache is a read-through Redis cache for range-forecast
// series. Forecasts for a fixed (item, window) are stable between model
// retrains, so a short TTL shaves the dominant latency cost off
// repeated dashboard queries. All methods are nil-safe: without Redis
// every lookup is a miss.
type ForecastCache struct {
	client *redis.Client
	ttl    time.Duration
}

// New connects to Redis, or returns nil when no URL is configured
func New(redisURL string, ttl time.Duration) (*ForecastCache, error) {
	if redisURL == "" {
		return nil, nil
	}

	opt, err := redis.ParseURL(redisURL)
	if err != nil {
		return nil, fmt.Errorf("parse redis url: %w", err)
	}
	client := redis.NewClient(opt)

	ctx, cancel := context.WithTimeout(context.Background(), 3*time.Second)
	defer cancel()
	if err := client.Ping(ctx).Err(); err != nil {
		return nil, fmt.Errorf("redis ping: %w", err)
	}

	return &ForecastCache{client: client, ttl: ttl}, nil
}

// Close releases the Redis connection
func (c *ForecastCache) Close() error {
	if c == nil {
		return nil
	}
	return c.client.Close()
}

// rangeKey hashes the lookup key; family names carry spaces and
// punctuation that make poor raw Redis keys.
func rangeKey(key models.ItemKey, days int, end time.Time) string {
	raw := fmt.Sprintf("%d|%s|%d|%s", key.StoreNbr, key.Family, days, end.Format(utils.DateOnly))
	return "rangeforecast:" + utils.HashString(raw)
}

// GetRange returns a cached series, or false on miss
func (c *ForecastCache) GetRange(ctx context.Context, key models.ItemKey, days int, end time.Time) ([]models.RangePoint, bool) {
	if c == nil {
		return nil, false
	}

	data, err := c.client.Get(ctx, rangeKey(key, days, end)).Bytes()
	if err == redis.Nil {
		return nil, false
	}
	if err != nil {
		logger.Warn("Forecast cache read failed", "error", err)
		return nil, false
	}

	var points []models.RangePoint
	if err := json.Unmarshal(data, &points); err != nil {
		logger.Warn("Forecast cache entry corrupt", "error", err)
		return nil, false
	}

	return points, true
}

// SetRange stores a series under its (item, window) key
func (c *ForecastCache) SetRange(ctx context.Context, key models.ItemKey, days int, end time.Time, points []models.RangePoint) {
	if c == nil {
		return
	}

	data, err := json.Marshal(points)
	if err != nil {
		return
	}
	if err := c.client.Set(ctx, rangeKey(key, days, end), data, c.ttl).Err(); err != nil {
		logger.Warn("Forecast cache write failed", "error", err)
	}
}
