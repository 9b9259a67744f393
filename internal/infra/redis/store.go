package redis

import (
	"context"
	"errors"
	"time"

	"quizmaster/internal/domain"
	"github.com/redis/go-redis/v9"
)

// DefaultPrefix namespaces every record so one redis database can host several shows.
const DefaultPrefix = "quizmaster:"

// Store is a Redis-backed implementation of app.KeyValueStore.
// Records are plain string values stored as: SET {prefix}{key} {value}.
// A zero TTL keeps records until they are deleted.
type Store struct {
	client *redis.Client
	prefix string
	ttl    time.Duration
}

func NewStore(client *redis.Client, prefix string, ttl time.Duration) *Store {
	if prefix == "" {
		prefix = DefaultPrefix
	}
	return &Store{client: client, prefix: prefix, ttl: ttl}
}

func (s *Store) Get(ctx context.Context, key string) ([]byte, error) {
	value, err := s.client.Get(ctx, s.key(key)).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, domain.ErrKeyNotFound
	}
	if err != nil {
		return nil, err
	}
	return value, nil
}

func (s *Store) Set(ctx context.Context, key string, value []byte) error {
	return s.client.Set(ctx, s.key(key), value, s.ttl).Err()
}

func (s *Store) Delete(ctx context.Context, key string) error {
	return s.client.Del(ctx, s.key(key)).Err()
}

func (s *Store) key(key string) string {
	return s.prefix + key
}
