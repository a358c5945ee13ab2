// Package cache stores derived views (compiled flowcharts, RACI overviews) in
// Redis as JSON. Every miss or Redis failure falls back to recomputation.
package cache

import (
	"context"
	"encoding/json"
	"errors"
	"strconv"
	"time"

	"github.com/redis/go-redis/v9"
)

// ErrMiss is returned when the key is absent.
var ErrMiss = errors.New("cache miss")

// Store is a JSON key/value cache.
type Store interface {
	Get(ctx context.Context, key string, dest any) error
	Set(ctx context.Context, key string, value any, ttl time.Duration) error
	DeletePrefix(ctx context.Context, prefix string) error
}

// RedisStore implements Store on go-redis. A nil client disables caching.
type RedisStore struct {
	client    redis.UniversalClient
	namespace string
}

// NewRedisStore namespaces every key with namespace.
func NewRedisStore(client redis.UniversalClient, namespace string) *RedisStore {
	return &RedisStore{client: client, namespace: namespace}
}

func (s *RedisStore) key(k string) string {
	return s.namespace + ":" + k
}

// Get decodes the cached value into dest.
func (s *RedisStore) Get(ctx context.Context, key string, dest any) error {
	if s == nil || s.client == nil {
		return ErrMiss
	}
	raw, err := s.client.Get(ctx, s.key(key)).Bytes()
	if errors.Is(err, redis.Nil) {
		return ErrMiss
	}
	if err != nil {
		return err
	}
	return json.Unmarshal(raw, dest)
}

// Set stores value for ttl. A non-positive ttl skips the write.
func (s *RedisStore) Set(ctx context.Context, key string, value any, ttl time.Duration) error {
	if s == nil || s.client == nil || ttl <= 0 {
		return nil
	}
	raw, err := json.Marshal(value)
	if err != nil {
		return err
	}
	return s.client.Set(ctx, s.key(key), raw, ttl).Err()
}

// DeletePrefix removes every key starting with prefix.
func (s *RedisStore) DeletePrefix(ctx context.Context, prefix string) error {
	if s == nil || s.client == nil {
		return nil
	}
	iter := s.client.Scan(ctx, 0, s.key(prefix)+"*", 200).Iterator()
	var batch []string
	for iter.Next(ctx) {
		batch = append(batch, iter.Val())
		if len(batch) == 200 {
			if err := s.client.Del(ctx, batch...).Err(); err != nil {
				return err
			}
			batch = batch[:0]
		}
	}
	if err := iter.Err(); err != nil {
		return err
	}
	if len(batch) > 0 {
		return s.client.Del(ctx, batch...).Err()
	}
	return nil
}

// Key prefixes.
const (
	DiagramPrefix = "diagram:"
	RaciPrefix    = "raci:"
)

// DiagramKey identifies a compiled flowchart of one process revision.
func DiagramKey(processID string, revision time.Time, direction string, lanes bool, width int) string {
	lane := "0"
	if lanes {
		lane = "1"
	}
	return DiagramPrefix + processID + ":" + revision.UTC().Format(time.RFC3339Nano) + ":" + direction + ":" + lane + ":" + strconv.Itoa(width)
}

// RaciKey identifies an organization-wide RACI view.
func RaciKey(view string) string {
	return RaciPrefix + view
}
