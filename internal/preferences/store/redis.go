package store

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"reviewapp/pkg/platform/sentinel"
)

const (
	// Redis key prefix for preference values
	preferenceKeyPrefix = "pref:"
)

// Redis is a Redis-backed Store shared by every process of a deployment.
type Redis struct {
	client *redis.Client
	prefix string
}

// RedisOption configures a Redis store.
type RedisOption func(*Redis)

// WithKeyPrefix namespaces keys, e.g. per device or tenant.
func WithKeyPrefix(prefix string) RedisOption {
	return func(r *Redis) {
		r.prefix = prefix
	}
}

func NewRedis(client *redis.Client, opts ...RedisOption) *Redis {
	r := &Redis{
		client: client,
		prefix: preferenceKeyPrefix,
	}
	for _, opt := range opts {
		if opt != nil {
			opt(r)
		}
	}
	return r
}

func (r *Redis) Load(ctx context.Context, key Key) (value string, err error) {
	start := time.Now()
	defer func() {
		if errors.Is(err, sentinel.ErrNotFound) {
			observe("redis", "load", start, nil)
			return
		}
		observe("redis", "load", start, err)
	}()

	value, err = r.client.Get(ctx, r.prefix+key.String()).Result()
	if errors.Is(err, redis.Nil) {
		return "", sentinel.ErrNotFound
	}
	if err != nil {
		return "", fmt.Errorf("%w: redis get %s: %w", ErrStorage, key, err)
	}
	return value, nil
}

// Save stores the value without expiry; preferences live until overwritten.
func (r *Redis) Save(ctx context.Context, key Key, value string) (err error) {
	start := time.Now()
	defer func() { observe("redis", "save", start, err) }()

	if err = r.client.Set(ctx, r.prefix+key.String(), value, 0).Err(); err != nil {
		return fmt.Errorf("%w: redis set %s: %w", ErrStorage, key, err)
	}
	return nil
}

// LoadMany reads keys with a single MGET.
func (r *Redis) LoadMany(ctx context.Context, keys []Key) (out map[Key]string, err error) {
	start := time.Now()
	defer func() { observe("redis", "load_many", start, err) }()

	if len(keys) == 0 {
		return map[Key]string{}, nil
	}
	redisKeys := make([]string, len(keys))
	for i, key := range keys {
		redisKeys[i] = r.prefix + key.String()
	}
	values, err := r.client.MGet(ctx, redisKeys...).Result()
	if err != nil {
		return nil, fmt.Errorf("%w: redis mget: %w", ErrStorage, err)
	}
	out = make(map[Key]string, len(keys))
	for i, v := range values {
		if s, ok := v.(string); ok {
			out[keys[i]] = s
		}
	}
	return out, nil
}
