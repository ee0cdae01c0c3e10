package sessions

import (
	"context"
	"time"

	"github.com/redis/go-redis/v9"
)

// DefaultPrefix namespaces denylist keys.
const DefaultPrefix = "cms:denylist:"

// RedisDenylist stores revoked credential ids in Redis.
// Keys are "<prefix><jti>" with TTL equal to the credential's remaining lifetime,
// so the list never outgrows the set of still-valid tokens.
type RedisDenylist struct {
	client *redis.Client
	prefix string
}

// NewRedisDenylist creates a Redis-backed denylist. Prefix may be empty.
func NewRedisDenylist(client *redis.Client, prefix string) *RedisDenylist {
	if prefix == "" {
		prefix = DefaultPrefix
	}
	return &RedisDenylist{client: client, prefix: prefix}
}

func (d *RedisDenylist) key(id string) string {
	return d.prefix + id
}

// Deny records id until ttl elapses. Non-positive TTLs are ignored since the
// credential has already expired.
func (d *RedisDenylist) Deny(ctx context.Context, id string, ttl time.Duration) error {
	if ttl <= 0 {
		return nil
	}
	return d.client.Set(ctx, d.key(id), "1", ttl).Err()
}

// IsDenied reports whether id was denied and has not yet aged out.
func (d *RedisDenylist) IsDenied(ctx context.Context, id string) (bool, error) {
	n, err := d.client.Exists(ctx, d.key(id)).Result()
	if err != nil {
		return false, err
	}
	return n > 0, nil
}
