package repository

import (
	"context"

	"github.com/harbourstay/harbourstay/backend/cms-api/internal/content"
	"github.com/redis/go-redis/v9"
)

// RedisRepo stores the document under a single key, without TTL.
// SET replaces the value atomically.
type RedisRepo struct {
	client *redis.Client
	key    string
}

// NewRedisRepo creates a Redis-backed content repository. Key defaults to "site-content".
func NewRedisRepo(client *redis.Client, key string) *RedisRepo {
	if key == "" {
		key = "site-content"
	}
	return &RedisRepo{client: client, key: key}
}

func (r *RedisRepo) Name() string { return "redis" }

func (r *RedisRepo) Load(ctx context.Context) ([]byte, error) {
	b, err := r.client.Get(ctx, r.key).Bytes()
	if err != nil {
		if err == redis.Nil {
			return nil, content.ErrNotFound
		}
		return nil, err
	}
	return b, nil
}

func (r *RedisRepo) Save(ctx context.Context, data []byte) error {
	return r.client.Set(ctx, r.key, data, 0).Err()
}
