package auth

import (
	"context"
	"errors"
	"time"

	"github.com/geocoder89/taskhub/internal/cache"
	"github.com/redis/go-redis/v9"
)

// Revoker keeps the ids of logged-out tokens until they would have expired.
type Revoker interface {
	Revoke(ctx context.Context, tokenID string, until time.Time) error
	IsRevoked(ctx context.Context, tokenID string) (bool, error)
}

const revokedKeyPrefix = "taskhub:revoked:"

type RedisRevoker struct {
	rdb *redis.Client
}

func NewRedisRevoker(rdb *redis.Client) *RedisRevoker {
	return &RedisRevoker{rdb: rdb}
}

func (r *RedisRevoker) Revoke(ctx context.Context, tokenID string, until time.Time) error {
	ttl := time.Until(until)
	if ttl <= 0 {
		return nil
	}
	return r.rdb.Set(ctx, revokedKeyPrefix+tokenID, "1", ttl).Err()
}

func (r *RedisRevoker) IsRevoked(ctx context.Context, tokenID string) (bool, error) {
	err := r.rdb.Get(ctx, revokedKeyPrefix+tokenID).Err()
	if err == nil {
		return true, nil
	}
	if errors.Is(err, redis.Nil) {
		return false, nil
	}
	return false, err
}

// MemoryRevoker is the single-process fallback used when Redis is not
// configured.
type MemoryRevoker struct {
	c *cache.Cache
}

func NewMemoryRevoker(maxTTL time.Duration) *MemoryRevoker {
	return &MemoryRevoker{c: cache.New(maxTTL)}
}

func (m *MemoryRevoker) Revoke(_ context.Context, tokenID string, until time.Time) error {
	ttl := time.Until(until)
	if ttl <= 0 {
		return nil
	}
	m.c.SetWithTTL(tokenID, struct{}{}, ttl)
	return nil
}

func (m *MemoryRevoker) IsRevoked(_ context.Context, tokenID string) (bool, error) {
	_, ok := m.c.Get(tokenID)
	return ok, nil
}
