package models

import "time"

// OrderItem 订单项表，下单时冻结名称与单价
type OrderItem struct {
	ID          uint      `gorm:"primarykey" json:"id"`                                    // 主键
	OrderID     uint      `gorm:"index;not null" json:"order_id"`                          // 订单ID
	ItemType    string    `gorm:"type:varchar(20);not null" json:"item_type"`              // 类型（PRODUCT/PROMOTION）
	ProductID   *uint     `gorm:"index" json:"product_id,omitempty"`                       // 菜品ID
	PromotionID *uint     `gorm:"index" json:"promotion_id,omitempty"`                     // 促销ID
	ItemName    string    `gorm:"type:varchar(120);not null" json:"item_name"`             // 名称快照
	UnitPrice   Money     `gorm:"type:decimal(20,2);not null;default:0" json:"unit_price"` // 单价快照
	Quantity    int       `gorm:"not null" json:"quantity"`                                // 数量
	LineTotal   Money     `gorm:"type:decimal(20,2);not null;default:0" json:"line_total"` // 行小计
	CreatedAt   time.Time `json:"created_at"`                                              // 创建时间
}

// TableName 指定表名
func (OrderItem) TableName() string {
	return "order_items"
}
