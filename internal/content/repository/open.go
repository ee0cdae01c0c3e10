package repository

import (
	"context"
	"fmt"
	"time"

	"github.com/harbourstay/harbourstay/backend/cms-api/internal/config"
	"github.com/harbourstay/harbourstay/backend/cms-api/internal/database"
	"github.com/redis/go-redis/v9"
)

// Backend is implemented by every repository in this package.
type Backend interface {
	Name() string
	Load(ctx context.Context) ([]byte, error)
	Save(ctx context.Context, data []byte) error
}

// Open builds the backend named by cfg.Content.Backend. rdb is required for
// the redis backend and ignored otherwise. The returned close function
// releases any connection Open created itself and is never nil.
func Open(ctx context.Context, cfg *config.Config, rdb *redis.Client) (Backend, func(), error) {
	noop := func() {}
	switch cfg.Content.Backend {
	case "", "file":
		return NewFileRepo(cfg.Content.Path), noop, nil
	case "memory":
		return NewMemoryRepo(), noop, nil
	case "redis":
		if rdb == nil {
			return nil, noop, fmt.Errorf("content backend redis: REDIS_HOST is not configured")
		}
		return NewRedisRepo(rdb, cfg.Content.Key), noop, nil
	case "mongo":
		if cfg.MongoDB.URI == "" {
			return nil, noop, fmt.Errorf("content backend mongo: MONGODB_URI is not configured")
		}
		client, err := database.ConnectMongoRetry(ctx, cfg.MongoDB.URI, cfg.MongoDB.Timeout, 5, time.Second)
		if err != nil {
			return nil, noop, fmt.Errorf("content backend mongo: %w", err)
		}
		col := client.Database(cfg.MongoDB.Database).Collection(cfg.Content.Collection)
		closeFn := func() {
			ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
			defer cancel()
			_ = client.Disconnect(ctx)
		}
		return NewMongoRepo(col, cfg.Content.Key), closeFn, nil
	default:
		return nil, noop, fmt.Errorf("unknown content backend %q", cfg.Content.Backend)
	}
}
