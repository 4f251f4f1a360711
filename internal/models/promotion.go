package models

import (
	"time"

	"gorm.io/gorm"
)

// Promotion 促销（临时促销按日期区间生效，周期促销按每周时段生效）
type Promotion struct {
	ID          uint           `gorm:"primarykey" json:"id"`                         // 主键
	Name        string         `gorm:"type:varchar(120);not null;index" json:"name"` // 名称
	Description string         `gorm:"type:text" json:"description"`                 // 描述
	ImageURL    string         `gorm:"type:varchar(500)" json:"image_url"`           // 图片地址
	Price       Money          `gorm:"type:decimal(20,2);not null" json:"price"`     // 促销价
	Type        string         `gorm:"type:varchar(20);not null;index" json:"type"`  // 类型（TEMPORARY/RECURRING）
	IsActive    bool           `gorm:"not null;index" json:"is_active"`              // 是否启用
	StartsAt    *time.Time     `gorm:"index" json:"starts_at"`                       // 开始日期（仅临时促销）
	EndsAt      *time.Time     `gorm:"index" json:"ends_at"`                         // 结束日期（仅临时促销）
	CreatedAt   time.Time      `gorm:"index" json:"created_at"`                      // 创建时间
	UpdatedAt   time.Time      `gorm:"index" json:"updated_at"`                      // 更新时间
	DeletedAt   gorm.DeletedAt `gorm:"index" json:"-"`                               // 软删除时间

	// 关联
	WeeklyRules []PromotionWeeklyRule `gorm:"foreignKey:PromotionID" json:"weekly_rules,omitempty"`    // 每周时段规则
	Products    []Product             `gorm:"many2many:promotion_products;" json:"products,omitempty"` // 关联商品
}

// TableName 指定表名
func (Promotion) TableName() string {
	return "promotions"
}

// ProductIDs 返回关联商品 ID 列表
func (p *Promotion) ProductIDs() []uint {
	if p == nil {
		return nil
	}
	ids := make([]uint, 0, len(p.Products))
	for _, product := range p.Products {
		ids = append(ids, product.ID)
	}
	return ids
}
