package cache

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/xavierca1/consult-intake/internal/entity"
)

const (
	statsKey        = "consultation:stats"
	DefaultStatsTTL = time.Minute
)

type Client struct {
	Redis    *redis.Client
	StatsTTL time.Duration
}

func NewClient(redisURL string, statsTTL time.Duration) (*Client, error) {
	opts, err := redis.ParseURL(redisURL)
	if err != nil {
		return nil, fmt.Errorf("parse redis url: %w", err)
	}

	client := redis.NewClient(opts)

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := client.Ping(ctx).Err(); err != nil {
		client.Close()
		return nil, fmt.Errorf("connect redis: %w", err)
	}

	return newClient(client, statsTTL), nil
}

func newClient(rdb *redis.Client, statsTTL time.Duration) *Client {
	if statsTTL <= 0 {
		statsTTL = DefaultStatsTTL
	}
	return &Client{Redis: rdb, StatsTTL: statsTTL}
}

func (c *Client) Close() error {
	return c.Redis.Close()
}

func (c *Client) Ping(ctx context.Context) error {
	return c.Redis.Ping(ctx).Err()
}

// GetStats reports ok=false on a cache miss.
func (c *Client) GetStats(ctx context.Context) (*entity.ConsultationStats, bool, error) {
	raw, err := c.Redis.Get(ctx, statsKey).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, fmt.Errorf("get stats: %w", err)
	}

	var stats entity.ConsultationStats
	if err := json.Unmarshal(raw, &stats); err != nil {
		return nil, false, fmt.Errorf("decode cached stats: %w", err)
	}
	return &stats, true, nil
}

func (c *Client) SetStats(ctx context.Context, stats *entity.ConsultationStats) error {
	raw, err := json.Marshal(stats)
	if err != nil {
		return fmt.Errorf("encode stats: %w", err)
	}
	if err := c.Redis.Set(ctx, statsKey, raw, c.StatsTTL).Err(); err != nil {
		return fmt.Errorf("set stats: %w", err)
	}
	return nil
}

