package repository

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"time"

	"github.com/redis/go-redis/v9"

	"carrier_pricing_v1/internal/exchange"
)

// DefaultRateCacheKey 汇率快照 hash key
const DefaultRateCacheKey = "pricing:exchange_rates"

// RedisRateStore 基于 Redis hash 的汇率快照，多实例共享同一份兜底值
// 字段: <pair> = 汇率, <pair>:at = 获取时间 (UnixNano)
type RedisRateStore struct {
	client redis.Cmdable
	key    string
}

// NewRedisRateStore 创建 Redis 汇率快照存储
func NewRedisRateStore(client redis.Cmdable, key string) *RedisRateStore {
	if key == "" {
		key = DefaultRateCacheKey
	}
	return &RedisRateStore{client: client, key: key}
}

func (s *RedisRateStore) Load(ctx context.Context, pair exchange.Pair) (float64, time.Time, error) {
	vals, err := s.client.HMGet(ctx, s.key, string(pair), atField(pair)).Result()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return 0, time.Time{}, exchange.ErrNoSnapshot
		}
		return 0, time.Time{}, fmt.Errorf("redis hmget %s: %w", s.key, err)
	}
	if len(vals) < 2 || vals[0] == nil {
		return 0, time.Time{}, exchange.ErrNoSnapshot
	}

	rate, err := strconv.ParseFloat(fmt.Sprint(vals[0]), 64)
	if err != nil {
		return 0, time.Time{}, fmt.Errorf("parse cached rate %s: %w", pair, err)
	}

	var fetchedAt time.Time
	if vals[1] != nil {
		if ns, err := strconv.ParseInt(fmt.Sprint(vals[1]), 10, 64); err == nil {
			fetchedAt = time.Unix(0, ns)
		}
	}
	return rate, fetchedAt, nil
}

func (s *RedisRateStore) Save(ctx context.Context, pair exchange.Pair, rate float64, fetchedAt time.Time) error {
	err := s.client.HSet(ctx, s.key,
		string(pair), strconv.FormatFloat(rate, 'f', -1, 64),
		atField(pair), strconv.FormatInt(fetchedAt.UnixNano(), 10),
	).Err()
	if err != nil {
		return fmt.Errorf("redis hset %s: %w", s.key, err)
	}
	return nil
}

func atField(pair exchange.Pair) string {
	return string(pair) + ":at"
}

// NewRedisClient 创建并检测 Redis 连接
func NewRedisClient(ctx context.Context, addr, password string, db int) (*redis.Client, error) {
	client := redis.NewClient(&redis.Options{
		Addr:     addr,
		Password: password,
		DB:       db,
	})
	if err := client.Ping(ctx).Err(); err != nil {
		return nil, fmt.Errorf("failed to connect to redis: %w", err)
	}
	return client, nil
}
