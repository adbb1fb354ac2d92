package cache

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/coder4052/market-analysis/pkg/storage"
)

const latestReportKey = "reports:latest"

// Client wraps the Redis connection used to cache the latest analysis report.
type Client struct {
	Redis *redis.Client
	ttl   time.Duration
}

// NewClient connects to Redis and verifies the connection.
func NewClient(redisURL string, ttl time.Duration) (*Client, error) {
	opts, err := redis.ParseURL(redisURL)
	if err != nil {
		return nil, fmt.Errorf("failed parsing redis URL: %w", err)
	}

	client := redis.NewClient(opts)

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := client.Ping(ctx).Err(); err != nil {
		return nil, fmt.Errorf("failed connecting to redis: %w", err)
	}

	return &Client{Redis: client, ttl: ttl}, nil
}

// Close closes the Redis connection.
func (c *Client) Close() error {
	return c.Redis.Close()
}

// Set sets a key-value pair with expiration.
func (c *Client) Set(ctx context.Context, key string, value interface{}, expiration time.Duration) error {
	return c.Redis.Set(ctx, key, value, expiration).Err()
}

// Get gets a value by key.
func (c *Client) Get(ctx context.Context, key string) (string, error) {
	return c.Redis.Get(ctx, key).Result()
}

// Delete deletes a key.
func (c *Client) Delete(ctx context.Context, keys ...string) error {
	return c.Redis.Del(ctx, keys...).Err()
}

// SetLatest caches the most recent stored report.
func (c *Client) SetLatest(ctx context.Context, report *storage.StoredReport) error {
	data, err := json.Marshal(report)
	if err != nil {
		return fmt.Errorf("encoding cached report: %w", err)
	}
	return c.Set(ctx, latestReportKey, data, c.ttl)
}

// GetLatest returns the cached latest report, or nil on a cache miss.
func (c *Client) GetLatest(ctx context.Context) (*storage.StoredReport, error) {
	data, err := c.Get(ctx, latestReportKey)
	if err == redis.Nil {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}

	var report storage.StoredReport
	if err := json.Unmarshal([]byte(data), &report); err != nil {
		return nil, fmt.Errorf("decoding cached report: %w", err)
	}
	return &report, nil
}

// InvalidateLatest drops the cached latest report.
func (c *Client) InvalidateLatest(ctx context.Context) error {
	return c.Delete(ctx, latestReportKey)
}
