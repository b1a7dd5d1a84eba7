package cache

import (
	"context"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/crestview/residency-api/pkg/config"
)

// Store is a redis-backed key/value store used for idempotency records.
type Store struct {
	client *redis.Client
}

func New(cfg config.RedisConfig) *Store {
	client := redis.NewClient(&redis.Options{
		Addr:     cfg.Addr,
		Password: cfg.Password,
		DB:       cfg.DB,
	})
	return &Store{client: client}
}

func (s *Store) Get(ctx context.Context, key string) (string, error) {
	val, err := s.client.Get(ctx, key).Result()
	if err == redis.Nil {
		return "", nil
	}
	return val, err
}

func (s *Store) Set(ctx context.Context, key, value string, ttl time.Duration) error {
	return s.client.Set(ctx, key, value, ttl).Err()
}

func (s *Store) Close() error {
	return s.client.Close()
}
