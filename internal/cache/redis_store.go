package cache

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/angelmondragon/refundlens/pkg/redis"
)

type redisClient interface {
	Set(ctx context.Context, key string, value any, ttl time.Duration) error
	GetBytes(ctx context.Context, key string) ([]byte, error)
	OrdersKey(cacheKey string) string
}

// RedisStore keeps entries in redis, written with an expiry of ttl so the
// server drops them on its own.
type RedisStore struct {
	client redisClient
	ttl    time.Duration
}

func NewRedisStore(client redisClient, ttl time.Duration) (*RedisStore, error) {
	if client == nil {
		return nil, fmt.Errorf("redis client required")
	}
	if ttl <= 0 {
		return nil, fmt.Errorf("cache ttl must be positive")
	}
	return &RedisStore{client: client, ttl: ttl}, nil
}

func (s *RedisStore) Load(ctx context.Context, key string) (Entry, bool, error) {
	raw, err := s.client.GetBytes(ctx, s.client.OrdersKey(key))
	if err != nil {
		if redis.IsMiss(err) {
			return Entry{}, false, nil
		}
		return Entry{}, false, fmt.Errorf("load cache entry: %w", err)
	}
	var entry Entry
	if err := json.Unmarshal(raw, &entry); err != nil {
		return Entry{}, false, fmt.Errorf("decode cache entry: %w", err)
	}
	return entry, true, nil
}

func (s *RedisStore) Save(ctx context.Context, key string, entry Entry) error {
	payload, err := json.Marshal(entry)
	if err != nil {
		return fmt.Errorf("encode cache entry: %w", err)
	}
	if err := s.client.Set(ctx, s.client.OrdersKey(key), payload, s.ttl); err != nil {
		return fmt.Errorf("save cache entry: %w", err)
	}
	return nil
}

// Sweep is a no-op; keys expire server side.
func (s *RedisStore) Sweep(context.Context, time.Time, time.Duration) (int, error) {
	return 0, nil
}
