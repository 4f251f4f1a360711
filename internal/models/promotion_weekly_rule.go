package models

import "time"

// PromotionWeeklyRule 周期促销的每周时段，随规则集整体替换（先删后插）
type PromotionWeeklyRule struct {
	ID          uint      `gorm:"primarykey" json:"id"`                               // 主键
	PromotionID uint      `gorm:"index;not null" json:"promotion_id"`                 // 促销ID
	DayOfWeek   string    `gorm:"type:varchar(16);not null;index" json:"day_of_week"` // 星期（MONDAY..SUNDAY）
	StartTime   string    `gorm:"type:varchar(8);not null" json:"start_time"`         // 开始时间 HH:MM:SS
	EndTime     string    `gorm:"type:varchar(8);not null" json:"end_time"`           // 结束时间 HH:MM:SS
	CreatedAt   time.Time `json:"created_at"`                                         // 创建时间
}

// TableName 指定表名
func (PromotionWeeklyRule) TableName() string {
	return "promotion_weekly_rules"
}
