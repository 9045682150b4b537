package repository

import (
	"context"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func setupMiniRedis(t *testing.T) (*miniredis.Miniredis, *redis.Client) {
	t.Helper()

	mr, err := miniredis.Run()
	require.NoError(t, err)
	t.Cleanup(mr.Close)

	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = client.Close() })
	return mr, client
}

func TestRedisTokenRepository(t *testing.T) {
	ctx := context.Background()
	mr, client := setupMiniRedis(t)
	repo := NewRedisTokenRepository(client, "pizza:auth:")

	require.NoError(t, repo.AddToken(ctx, "sig", 42, time.Time{}))
	assert.True(t, mr.Exists("pizza:auth:sig"))
	assert.Zero(t, mr.TTL("pizza:auth:sig"))

	got, err := mr.Get("pizza:auth:sig")
	require.NoError(t, err)
	assert.Equal(t, "42", got)

	ok, err := repo.HasToken(ctx, "sig")
	require.NoError(t, err)
	assert.True(t, ok)

	require.NoError(t, repo.DeleteToken(ctx, "sig"))
	ok, err = repo.HasToken(ctx, "sig")
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestRedisTokenRepository_Expiry(t *testing.T) {
	ctx := context.Background()
	mr, client := setupMiniRedis(t)
	repo := NewRedisTokenRepository(client, "p:")

	require.NoError(t, repo.AddToken(ctx, "short", 1, time.Now().Add(time.Hour)))
	assert.Greater(t, mr.TTL("p:short"), 59*time.Minute)

	mr.FastForward(2 * time.Hour)
	ok, err := repo.HasToken(ctx, "short")
	require.NoError(t, err)
	assert.False(t, ok)

	require.NoError(t, repo.AddToken(ctx, "stale", 1, time.Now().Add(-time.Second)))
	assert.False(t, mr.Exists("p:stale"), "already expired tokens are not stored")
}

func TestRedisTokenRepository_Unavailable(t *testing.T) {
	mr, client := setupMiniRedis(t)
	repo := NewRedisTokenRepository(client, "p:")
	mr.Close()

	_, err := repo.HasToken(context.Background(), "sig")
	assert.Error(t, err)
}
