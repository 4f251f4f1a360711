package repository

import (
	"time"

	"github.com/foodtruck-next/internal/models"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// RevokedTokenRepository 已注销令牌数据访问接口
type RevokedTokenRepository interface {
	Add(tokenHash string, expiresAt time.Time) error
	Exists(tokenHash string, now time.Time) (bool, error)
	PurgeExpired(now time.Time) (int64, error)
}

// GormRevokedTokenRepository GORM 实现
type GormRevokedTokenRepository struct {
	db *gorm.DB
}

// NewRevokedTokenRepository 创建已注销令牌仓库
func NewRevokedTokenRepository(db *gorm.DB) *GormRevokedTokenRepository {
	return &GormRevokedTokenRepository{db: db}
}

// Add 写入注销记录，重复写入忽略
func (r *GormRevokedTokenRepository) Add(tokenHash string, expiresAt time.Time) error {
	row := models.RevokedToken{TokenHash: tokenHash, ExpiresAt: expiresAt}
	return r.db.Clauses(clause.OnConflict{DoNothing: true}).Create(&row).Error
}

// Exists 令牌是否已注销且尚未过期
func (r *GormRevokedTokenRepository) Exists(tokenHash string, now time.Time) (bool, error) {
	var count int64
	err := r.db.Model(&models.RevokedToken{}).
		Where("token_hash = ? AND expires_at > ?", tokenHash, now).
		Count(&count).Error
	if err != nil {
		return false, err
	}
	return count > 0, nil
}

// PurgeExpired 清理已过期的注销记录
func (r *GormRevokedTokenRepository) PurgeExpired(now time.Time) (int64, error) {
	result := r.db.Where("expires_at <= ?", now).Delete(&models.RevokedToken{})
	return result.RowsAffected, result.Error
}
