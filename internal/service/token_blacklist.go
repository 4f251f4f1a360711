package service

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"strings"
	"time"

	"github.com/foodtruck-next/internal/repository"
)

// TokenBlacklist 已注销 Token 存储
type TokenBlacklist interface {
	Revoke(ctx context.Context, tokenHash string, expiresAt time.Time) error
	IsRevoked(ctx context.Context, tokenHash string) (bool, error)
}

// HashToken 计算 Token 的 SHA-256，黑名单只保存摘要
func HashToken(token string) string {
	sum := sha256.Sum256([]byte(strings.TrimSpace(token)))
	return hex.EncodeToString(sum[:])
}

// DBTokenBlacklist 基于数据库的 Token 黑名单（Redis 未启用时使用）
type DBTokenBlacklist struct {
	repo  repository.RevokedTokenRepository
	clock Clock
}

// NewDBTokenBlacklist 创建数据库 Token 黑名单
func NewDBTokenBlacklist(repo repository.RevokedTokenRepository, clock Clock) *DBTokenBlacklist {
	return &DBTokenBlacklist{repo: repo, clock: resolveClock(clock)}
}

// Revoke 写入注销记录，已过期的 Token 无需记录
func (b *DBTokenBlacklist) Revoke(_ context.Context, tokenHash string, expiresAt time.Time) error {
	if b == nil || b.repo == nil || tokenHash == "" {
		return nil
	}
	if !expiresAt.After(b.clock.Now()) {
		return nil
	}
	return b.repo.Add(tokenHash, expiresAt)
}

// IsRevoked 是否已注销
func (b *DBTokenBlacklist) IsRevoked(_ context.Context, tokenHash string) (bool, error) {
	if b == nil || b.repo == nil || tokenHash == "" {
		return false, nil
	}
	return b.repo.Exists(tokenHash, b.clock.Now())
}

// PurgeExpired 清理已过期的注销记录
func (b *DBTokenBlacklist) PurgeExpired() (int64, error) {
	if b == nil || b.repo == nil {
		return 0, nil
	}
	return b.repo.PurgeExpired(b.clock.Now())
}
