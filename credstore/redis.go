package credstore

import (
	"context"
	"time"

	"github.com/goliatone/go-errors"
	"github.com/redis/go-redis/v9"

	authstate "github.com/goliatone/go-authstate"
)

// Redis keeps credential slots in a shared Redis instance, for deployments
// where several front-end shells share one keyring.
type Redis struct {
	client *redis.Client
	prefix string
	ttl    time.Duration
}

// RedisOption configures a Redis credential store
type RedisOption func(*Redis)

// WithPrefix namespaces the slot keys
func WithPrefix(prefix string) RedisOption {
	return func(r *Redis) {
		r.prefix = prefix
	}
}

// WithTTL bounds how long an untouched credential survives
func WithTTL(ttl time.Duration) RedisOption {
	return func(r *Redis) {
		r.ttl = ttl
	}
}

// NewRedis wraps an existing go-redis client
func NewRedis(client *redis.Client, opts ...RedisOption) *Redis {
	r := &Redis{
		client: client,
		prefix: "authstate:",
	}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

func (r *Redis) key(domain authstate.SessionDomain) string {
	return r.prefix + domain.Slot()
}

func (r *Redis) Get(ctx context.Context, domain authstate.SessionDomain) (string, error) {
	token, err := r.client.Get(ctx, r.key(domain)).Result()
	if err == redis.Nil {
		return "", nil
	}
	if err != nil {
		return "", errors.Wrap(err, errors.CategoryOperation, "failed to read credential slot")
	}
	return token, nil
}

func (r *Redis) Set(ctx context.Context, domain authstate.SessionDomain, token string) error {
	if err := r.client.Set(ctx, r.key(domain), token, r.ttl).Err(); err != nil {
		return errors.Wrap(err, errors.CategoryOperation, "failed to write credential slot")
	}
	return nil
}

func (r *Redis) Delete(ctx context.Context, domain authstate.SessionDomain) error {
	if err := r.client.Del(ctx, r.key(domain)).Err(); err != nil {
		return errors.Wrap(err, errors.CategoryOperation, "failed to evict credential slot")
	}
	return nil
}
