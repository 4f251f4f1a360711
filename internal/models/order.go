package models

import (
	"time"

	"gorm.io/gorm"
)

// Order 订单表
type Order struct {
	ID            uint           `gorm:"primarykey" json:"id"`                                  // 主键
	UserID        uint           `gorm:"index;not null" json:"user_id"`                         // 下单用户ID
	Status        string         `gorm:"type:varchar(20);index;not null" json:"status"`         // 订单状态
	Subtotal      Money          `gorm:"type:decimal(20,2);not null;default:0" json:"subtotal"` // 商品小计
	Tip           Money          `gorm:"type:decimal(20,2);not null;default:0" json:"tip"`      // 小费
	Total         Money          `gorm:"type:decimal(20,2);not null;default:0" json:"total"`    // 合计（小计 + 小费）
	EstimatedTime string         `gorm:"type:varchar(16)" json:"estimated_time"`                // 预计等待时间 MM:SS
	Notes         string         `gorm:"type:varchar(500)" json:"notes"`                        // 备注
	DeliveredAt   *time.Time     `gorm:"index" json:"delivered_at"`                             // 交付时间
	CanceledAt    *time.Time     `gorm:"index" json:"canceled_at"`                              // 取消时间
	CreatedAt     time.Time      `gorm:"index" json:"created_at"`                               // 创建时间
	UpdatedAt     time.Time      `gorm:"index" json:"updated_at"`                               // 更新时间
	DeletedAt     gorm.DeletedAt `gorm:"index" json:"-"`                                        // 软删除时间

	// 关联
	Items []OrderItem `gorm:"foreignKey:OrderID" json:"items,omitempty"` // 订单项
	User  *User       `gorm:"foreignKey:UserID" json:"user,omitempty"`   // 下单用户
}

// TableName 指定表名
func (Order) TableName() string {
	return "orders"
}
