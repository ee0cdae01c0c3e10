package sessions

import (
	"context"
	"errors"
	"testing"
	"time"

	mr "github.com/alicebob/miniredis/v2"
	"github.com/harbourstay/harbourstay/backend/cms-api/internal/config"
	"github.com/harbourstay/harbourstay/backend/cms-api/internal/tokens"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"
)

func TestRedisDenylist_DenyAndExpire(t *testing.T) {
	m, err := mr.Run()
	require.NoError(t, err)
	defer m.Close()

	client := redis.NewClient(&redis.Options{Addr: m.Addr()})
	dl := NewRedisDenylist(client, "")

	ctx := context.Background()
	require.NoError(t, dl.Deny(ctx, "jti-1", 2*time.Second))
	require.True(t, m.Exists(DefaultPrefix+"jti-1"))

	ok, err := dl.IsDenied(ctx, "jti-1")
	require.NoError(t, err)
	require.True(t, ok)

	ok, err = dl.IsDenied(ctx, "jti-2")
	require.NoError(t, err)
	require.False(t, ok)

	// advance past TTL
	m.FastForward(3 * time.Second)

	ok, err = dl.IsDenied(ctx, "jti-1")
	require.NoError(t, err)
	require.False(t, ok)
}

func TestRedisDenylist_IgnoresExpiredTTL(t *testing.T) {
	m, err := mr.Run()
	require.NoError(t, err)
	defer m.Close()

	dl := NewRedisDenylist(redis.NewClient(&redis.Options{Addr: m.Addr()}), "test:")
	require.NoError(t, dl.Deny(context.Background(), "old", 0))
	require.False(t, m.Exists("test:old"))
}

func TestRedisDenylist_RevokesIssuedCredential(t *testing.T) {
	m, err := mr.Run()
	require.NoError(t, err)
	defer m.Close()

	dl := NewRedisDenylist(redis.NewClient(&redis.Options{Addr: m.Addr()}), "")
	cfg := config.AuthConfig{OperatorPassword: "pw", JWTSecret: "denylist-secret-32-bytes-xxxxxxxx", TTL: time.Hour}
	svc := tokens.NewService(cfg, tokens.WithDenylist(dl), tokens.WithBcryptCost(bcrypt.MinCost))

	ctx := context.Background()
	cred, err := svc.Issue(ctx, "pw")
	require.NoError(t, err)

	_, err = svc.Verify(ctx, cred.Token)
	require.NoError(t, err)

	require.NoError(t, svc.Invalidate(ctx, cred.Token))
	_, err = svc.Verify(ctx, cred.Token)
	require.True(t, errors.Is(err, tokens.ErrInvalidOrExpired))

	ttl := m.TTL(DefaultPrefix + cred.ID)
	require.True(t, ttl > 59*time.Minute && ttl <= time.Hour, "unexpected ttl %v", ttl)
}
