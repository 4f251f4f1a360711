package cache

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

// RedisTokenBlacklist 基于 Redis 的 Token 黑名单，键过期时间等于 Token 剩余有效期
type RedisTokenBlacklist struct {
	client *redis.Client
	prefix string
}

// NewRedisTokenBlacklist 创建 Redis Token 黑名单
func NewRedisTokenBlacklist(client *redis.Client, prefix string) *RedisTokenBlacklist {
	return &RedisTokenBlacklist{client: client, prefix: prefix}
}

func (b *RedisTokenBlacklist) key(tokenHash string) string {
	return fmt.Sprintf("%s:auth:revoked:%s", b.prefix, tokenHash)
}

// Revoke 加入黑名单，已过期的 Token 无需记录
func (b *RedisTokenBlacklist) Revoke(ctx context.Context, tokenHash string, expiresAt time.Time) error {
	if b == nil || b.client == nil || tokenHash == "" {
		return nil
	}
	ttl := time.Until(expiresAt)
	if ttl <= 0 {
		return nil
	}
	return b.client.Set(ctx, b.key(tokenHash), 1, ttl).Err()
}

// IsRevoked 是否已加入黑名单
func (b *RedisTokenBlacklist) IsRevoked(ctx context.Context, tokenHash string) (bool, error) {
	if b == nil || b.client == nil || tokenHash == "" {
		return false, nil
	}
	_, err := b.client.Get(ctx, b.key(tokenHash)).Result()
	if errors.Is(err, redis.Nil) {
		return false, nil
	}
	if err != nil {
		return false, err
	}
	return true, nil
}
