package cache

import (
	"context"
	"fmt"
	"time"

	"github.com/FleetShare/FleetShare/internal/common/config"
	"github.com/FleetShare/FleetShare/internal/common/middleware"
	"github.com/redis/go-redis/v9"
)

// Cache 读侧缓存接口。Miss 统一返回 ErrCacheMiss。
type Cache interface {
	Get(ctx context.Context, key string) ([]byte, error)
	Set(ctx context.Context, key string, value []byte, ttl time.Duration) error
	Delete(ctx context.Context, key string) error
}

var ErrCacheMiss = fmt.Errorf("cache miss")

// RedisCache redis 实现。所有调用经过熔断器，redis 故障时快速失败，
// 调用方按 miss 处理、直接回源数据库。
type RedisCache struct {
	client  *redis.Client
	breaker *middleware.CircuitBreaker
}

// NewRedisClient 创建 redis 客户端并探活。
func NewRedisClient(ctx context.Context, cfg config.RedisConfig) (*redis.Client, error) {
	client := redis.NewClient(&redis.Options{
		Addr:     fmt.Sprintf("%s:%d", cfg.Host, cfg.Port),
		Password: cfg.Password,
		DB:       cfg.DB,
		PoolSize: cfg.PoolSize,
	})
	if err := client.Ping(ctx).Err(); err != nil {
		return nil, fmt.Errorf("failed to connect to redis: %w", err)
	}
	return client, nil
}

func NewRedisCache(client *redis.Client) *RedisCache {
	return &RedisCache{
		client:  client,
		breaker: middleware.NewCircuitBreaker("redis-cache", 5, 30*time.Second),
	}
}

func (c *RedisCache) Get(ctx context.Context, key string) ([]byte, error) {
	var out []byte
	miss := false
	err := c.breaker.Call(ctx, func() error {
		b, err := c.client.Get(ctx, key).Bytes()
		if err == redis.Nil {
			// miss 不算故障，不能计入熔断统计
			miss = true
			return nil
		}
		if err != nil {
			return err
		}
		out = b
		return nil
	})
	if err != nil {
		return nil, err
	}
	if miss {
		return nil, ErrCacheMiss
	}
	return out, nil
}

func (c *RedisCache) Set(ctx context.Context, key string, value []byte, ttl time.Duration) error {
	return c.breaker.Call(ctx, func() error {
		return c.client.Set(ctx, key, value, ttl).Err()
	})
}

func (c *RedisCache) Delete(ctx context.Context, key string) error {
	return c.breaker.Call(ctx, func() error {
		return c.client.Del(ctx, key).Err()
	})
}
