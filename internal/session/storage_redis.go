package session

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/go-redis/redis/v8"
)

const redisKeyPrefix = "session:"

// RedisStorage implements fiber.Storage on a shared redis client so session
// ids stay valid across restarts and replicas.
type RedisStorage struct {
	client *redis.Client
}

func NewRedisStorage(client *redis.Client) *RedisStorage {
	return &RedisStorage{client: client}
}

func (s *RedisStorage) key(id string) string {
	return redisKeyPrefix + id
}

// Get returns nil, nil for an unknown id, which the session store treats as
// "issue a new one".
func (s *RedisStorage) Get(id string) ([]byte, error) {
	if id == "" {
		return nil, nil
	}
	b, err := s.client.Get(context.Background(), s.key(id)).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get session: %w", err)
	}
	return b, nil
}

func (s *RedisStorage) Set(id string, val []byte, exp time.Duration) error {
	if id == "" || len(val) == 0 {
		return nil
	}
	if err := s.client.Set(context.Background(), s.key(id), val, exp).Err(); err != nil {
		return fmt.Errorf("failed to save session: %w", err)
	}
	return nil
}

func (s *RedisStorage) Delete(id string) error {
	if id == "" {
		return nil
	}
	return s.client.Del(context.Background(), s.key(id)).Err()
}

// Reset removes every stored session.
func (s *RedisStorage) Reset() error {
	ctx := context.Background()
	iter := s.client.Scan(ctx, 0, redisKeyPrefix+"*", 100).Iterator()
	for iter.Next(ctx) {
		if err := s.client.Del(ctx, iter.Val()).Err(); err != nil {
			return err
		}
	}
	return iter.Err()
}

// Close is a no-op; the client is owned by the caller and shared with the
// cart repository.
func (s *RedisStorage) Close() error {
	return nil
}
