package models

import "time"

// RevokedToken 已注销的访问令牌（Redis 不可用时的黑名单存储）
type RevokedToken struct {
	ID        uint      `gorm:"primarykey" json:"id"`
	TokenHash string    `gorm:"type:varchar(64);uniqueIndex;not null" json:"-"` // 令牌 SHA-256
	ExpiresAt time.Time `gorm:"index;not null" json:"expires_at"`               // 令牌原过期时间，过期后可清理
	CreatedAt time.Time `json:"created_at"`
}

// TableName 指定表名
func (RevokedToken) TableName() string {
	return "revoked_tokens"
}
