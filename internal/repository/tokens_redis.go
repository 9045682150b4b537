package repository

import (
	"context"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

// RedisTokenRepository keeps the token allow-list in Redis. Keys expire
// together with the token when it carries an expiry.
type RedisTokenRepository struct {
	client redis.UniversalClient
	prefix string
}

func NewRedisTokenRepository(client redis.UniversalClient, prefix string) TokenRepositoryInterface {
	return &RedisTokenRepository{client: client, prefix: prefix}
}

func (rr *RedisTokenRepository) key(signature string) string {
	return rr.prefix + signature
}

func (rr *RedisTokenRepository) AddToken(ctx context.Context, signature string, userID int64, expiresAt time.Time) error {
	var ttl time.Duration
	if !expiresAt.IsZero() {
		ttl = time.Until(expiresAt)
		if ttl <= 0 {
			return nil
		}
	}
	if err := rr.client.SetNX(ctx, rr.key(signature), userID, ttl).Err(); err != nil {
		return fmt.Errorf("failed to store token: %w", err)
	}
	return nil
}

func (rr *RedisTokenRepository) HasToken(ctx context.Context, signature string) (bool, error) {
	n, err := rr.client.Exists(ctx, rr.key(signature)).Result()
	if err != nil {
		return false, fmt.Errorf("failed to look up token: %w", err)
	}
	return n == 1, nil
}

func (rr *RedisTokenRepository) DeleteToken(ctx context.Context, signature string) error {
	if err := rr.client.Del(ctx, rr.key(signature)).Err(); err != nil {
		return fmt.Errorf("failed to delete token: %w", err)
	}
	return nil
}
