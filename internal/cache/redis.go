package cache

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"math/rand"
	"time"

	"print-order-service/internal/model"

	"github.com/redis/go-redis/v9"
)

// setIfVersion stores the cart only while the version key still holds the
// version the caller read. A missing version key counts as 0.
var setIfVersion = redis.NewScript(`
local current = redis.call("GET", KEYS[2])
if current == false then current = "0" end
if current ~= ARGV[1] then return 0 end
redis.call("SET", KEYS[1], ARGV[2], "PX", ARGV[3])
return 1
`)

// RedisCartCache keeps a user's cart lines as one JSON value next to a
// per-user version counter.
type RedisCartCache struct {
	client     *redis.Client
	baseTTL    time.Duration
	versionTTL time.Duration
}

func NewRedisCartCache(client *redis.Client) *RedisCartCache {
	return &RedisCartCache{
		client:     client,
		baseTTL:    10 * time.Minute,
		versionTTL: 24 * time.Hour,
	}
}

func (r *RedisCartCache) Get(ctx context.Context, userID string) ([]model.CartLine, error) {
	data, err := r.client.Get(ctx, cacheKey(userID)).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, ErrCacheMiss
	}
	if err != nil {
		return nil, fmt.Errorf("redis get failed: %w", err)
	}

	var lines []model.CartLine
	if err := json.Unmarshal(data, &lines); err != nil {
		return nil, fmt.Errorf("unmarshal cart failed: %w", err)
	}
	return lines, nil
}

func (r *RedisCartCache) Version(ctx context.Context, userID string) (int64, error) {
	v, err := r.client.Get(ctx, versionKey(userID)).Int64()
	if errors.Is(err, redis.Nil) {
		return 0, nil
	}
	if err != nil {
		return 0, fmt.Errorf("redis get version failed: %w", err)
	}
	return v, nil
}

// Set stores lines read under version. It returns ErrStale, and stores
// nothing, when the cart was invalidated in the meantime.
func (r *RedisCartCache) Set(ctx context.Context, userID string, version int64, lines []model.CartLine) error {
	data, err := json.Marshal(lines)
	if err != nil {
		return fmt.Errorf("marshal cart failed: %w", err)
	}

	ttl := r.baseTTL + time.Duration(rand.Intn(3))*time.Minute
	stored, err := setIfVersion.Run(ctx, r.client,
		[]string{cacheKey(userID), versionKey(userID)},
		version, data, ttl.Milliseconds(),
	).Int()
	if err != nil {
		return fmt.Errorf("redis set failed: %w", err)
	}
	if stored == 0 {
		return ErrStale
	}
	return nil
}

// Invalidate bumps the version and drops the cached cart in one transaction.
func (r *RedisCartCache) Invalidate(ctx context.Context, userID string) error {
	_, err := r.client.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
		pipe.Incr(ctx, versionKey(userID))
		pipe.Expire(ctx, versionKey(userID), r.versionTTL)
		pipe.Del(ctx, cacheKey(userID))
		return nil
	})
	if err != nil {
		return fmt.Errorf("redis invalidate failed: %w", err)
	}
	return nil
}

func cacheKey(userID string) string {
	return fmt.Sprintf("cart:%s", userID)
}

func versionKey(userID string) string {
	return fmt.Sprintf("cart:ver:%s", userID)
}
