package cart

import (
	"context"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/go-redis/redis/v8"
)

const (
	redisKeyPrefix  = "cart:"
	redisItemPrefix = "item:"
	redisFormField  = "form"
)

// RedisRepository keeps each cart in a hash: item:<productID> -> quantity and
// a form flag. The hash expires with the session.
type RedisRepository struct {
	client *redis.Client
	ttl    time.Duration
}

// NewRedisClient parses url and checks the connection.
func NewRedisClient(url string) (*redis.Client, error) {
	opt, err := redis.ParseURL(url)
	if err != nil {
		return nil, fmt.Errorf("invalid redis URL: %w", err)
	}
	client := redis.NewClient(opt)

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := client.Ping(ctx).Err(); err != nil {
		client.Close()
		return nil, fmt.Errorf("failed to connect to Redis: %w", err)
	}
	return client, nil
}

func NewRedisRepository(client *redis.Client, ttl time.Duration) *RedisRepository {
	return &RedisRepository{client: client, ttl: ttl}
}

func (r *RedisRepository) key(sessionID string) string {
	return redisKeyPrefix + sessionID
}

func (r *RedisRepository) Get(ctx context.Context, sessionID string) (*Cart, error) {
	vals, err := r.client.HGetAll(ctx, r.key(sessionID)).Result()
	if err != nil {
		return nil, fmt.Errorf("failed to get cart: %w", err)
	}

	c := New()
	for field, v := range vals {
		if field == redisFormField {
			c.FormOpen = v == "1"
			continue
		}
		idStr, ok := strings.CutPrefix(field, redisItemPrefix)
		if !ok {
			continue
		}
		id, err := strconv.Atoi(idStr)
		if err != nil {
			return nil, fmt.Errorf("corrupt cart field %q", field)
		}
		qty, err := strconv.Atoi(v)
		if err != nil {
			return nil, fmt.Errorf("corrupt quantity %q for product %d", v, id)
		}
		if qty >= 1 && qty <= MaxQuantity {
			c.Items[id] = qty
		}
	}
	if len(c.Items) == 0 {
		c.FormOpen = false
	}
	return c, nil
}

// Save replaces the stored cart atomically and refreshes its TTL.
func (r *RedisRepository) Save(ctx context.Context, sessionID string, c *Cart) error {
	key := r.key(sessionID)
	_, err := r.client.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
		pipe.Del(ctx, key)
		if c.Len() == 0 {
			return nil
		}
		fields := make(map[string]interface{}, c.Len()+1)
		for id, qty := range c.Items {
			fields[redisItemPrefix+strconv.Itoa(id)] = qty
		}
		form := "0"
		if c.FormOpen {
			form = "1"
		}
		fields[redisFormField] = form
		pipe.HSet(ctx, key, fields)
		pipe.Expire(ctx, key, r.ttl)
		return nil
	})
	if err != nil {
		return fmt.Errorf("failed to save cart: %w", err)
	}
	return nil
}

func (r *RedisRepository) Delete(ctx context.Context, sessionID string) error {
	if err := r.client.Del(ctx, r.key(sessionID)).Err(); err != nil {
		return fmt.Errorf("failed to delete cart: %w", err)
	}
	return nil
}
