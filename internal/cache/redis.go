package cache

import (
	"context"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/voltio/panelquote/internal/platform/logger"
)

// RedisStore backs the Store contract with redis, for deployments where
// several server instances must share one cache. Expiry is delegated to
// redis TTLs, so there is no sweep here.
type RedisStore struct {
	client *redis.Client
	log    *logger.Logger
}

func NewRedisStore(addr string, log *logger.Logger) *RedisStore {
	return &RedisStore{
		client: redis.NewClient(&redis.Options{Addr: addr}),
		log:    log,
	}
}

func (s *RedisStore) Get(ctx context.Context, key string) ([]byte, bool) {
	data, err := s.client.Get(ctx, key).Bytes()
	if err != nil {
		if err != redis.Nil {
			s.log.Warn("redis get failed", "key", key, "error", err)
		}
		return nil, false
	}
	return data, true
}

func (s *RedisStore) Set(ctx context.Context, key string, data []byte, ttl time.Duration) {
	if err := s.client.Set(ctx, key, data, ttl).Err(); err != nil {
		s.log.Warn("redis set failed", "key", key, "error", err)
	}
}

func (s *RedisStore) Delete(ctx context.Context, key string) {
	if err := s.client.Del(ctx, key).Err(); err != nil {
		s.log.Warn("redis del failed", "key", key, "error", err)
	}
}

func (s *RedisStore) DeletePrefix(ctx context.Context, prefix string) {
	iter := s.client.Scan(ctx, 0, prefix+"*", 100).Iterator()
	for iter.Next(ctx) {
		if err := s.client.Del(ctx, iter.Val()).Err(); err != nil {
			s.log.Warn("redis del failed", "key", iter.Val(), "error", err)
		}
	}
	if err := iter.Err(); err != nil {
		s.log.Warn("redis scan failed", "prefix", prefix, "error", err)
	}
}

func (s *RedisStore) Close() error { return s.client.Close() }
