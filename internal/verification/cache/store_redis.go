package cache

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"platewise/pkg/platform/sentinel"
)

const redisKeyPrefix = "verification:subject:"

// RedisStore shares cached results across sidecar instances. Entries carry a
// native Redis TTL so stale data also ages out server-side; the cache's own
// freshness check still applies on read.
type RedisStore struct {
	client *redis.Client
}

func NewRedisStore(client *redis.Client) *RedisStore {
	return &RedisStore{client: client}
}

func (s *RedisStore) Get(ctx context.Context, subjectKey string) (*Entry, error) {
	raw, err := s.client.Get(ctx, redisKeyPrefix+subjectKey).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, sentinel.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("redis get: %w", err)
	}

	var entry Entry
	if err := json.Unmarshal(raw, &entry); err != nil {
		return nil, fmt.Errorf("decode cache entry: %w", err)
	}
	return &entry, nil
}

func (s *RedisStore) Put(ctx context.Context, entry Entry, ttl time.Duration) error {
	raw, err := json.Marshal(entry)
	if err != nil {
		return fmt.Errorf("encode cache entry: %w", err)
	}
	// Error results keep a short server-side expiry; they are only retained
	// for inspection, never served as fresh.
	if !entry.Result.Status.Definite() {
		ttl = 30 * time.Second
	}
	return s.client.Set(ctx, redisKeyPrefix+entry.SubjectKey, raw, ttl).Err()
}

func (s *RedisStore) Delete(ctx context.Context, subjectKey string) error {
	return s.client.Del(ctx, redisKeyPrefix+subjectKey).Err()
}

func (s *RedisStore) DeleteAll(ctx context.Context) error {
	iter := s.client.Scan(ctx, 0, redisKeyPrefix+"*", 0).Iterator()
	var keys []string
	for iter.Next(ctx) {
		keys = append(keys, iter.Val())
	}
	if err := iter.Err(); err != nil {
		return fmt.Errorf("scan cache keys: %w", err)
	}
	if len(keys) == 0 {
		return nil
	}
	return s.client.Del(ctx, keys...).Err()
}
