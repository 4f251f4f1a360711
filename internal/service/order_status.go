package service

import (
	"strings"
	"time"

	"github.com/foodtruck-next/internal/constants"
	"github.com/foodtruck-next/internal/models"
)

// orderTransitions 订单状态流转表，DELIVERED 与 CANCELLED 为终态
var orderTransitions = map[string][]string{
	constants.OrderStatusPending:       {constants.OrderStatusInPreparation, constants.OrderStatusCancelled},
	constants.OrderStatusInPreparation: {constants.OrderStatusReady, constants.OrderStatusCancelled},
	constants.OrderStatusReady:         {constants.OrderStatusDelivered},
	constants.OrderStatusDelivered:     {},
	constants.OrderStatusCancelled:     {},
}

// DefaultModifyGracePeriod 制作中订单的默认可修改宽限期
const DefaultModifyGracePeriod = 5 * time.Minute

// NormalizeOrderStatus 规范化订单状态，无法识别时返回空串
func NormalizeOrderStatus(raw string) string {
	status := strings.ToUpper(strings.TrimSpace(raw))
	if _, ok := orderTransitions[status]; ok {
		return status
	}
	return ""
}

// CanTransitionOrder 判断状态流转是否合法
func CanTransitionOrder(from, to string) bool {
	for _, next := range orderTransitions[from] {
		if next == to {
			return true
		}
	}
	return false
}

// IsTerminalOrderStatus 是否终态
func IsTerminalOrderStatus(status string) bool {
	next, ok := orderTransitions[status]
	return ok && len(next) == 0
}

// IsActiveOrderStatus 是否为进行中状态（计入用户并发订单上限）
func IsActiveOrderStatus(status string) bool {
	return status == constants.OrderStatusPending || status == constants.OrderStatusInPreparation
}

// ActiveOrderStatuses 进行中状态列表
func ActiveOrderStatuses() []string {
	return []string{constants.OrderStatusPending, constants.OrderStatusInPreparation}
}

// ApplyOrderTransition 校验并应用状态流转，进入 DELIVERED/CANCELLED 时写入对应时间戳（只写一次）
func ApplyOrderTransition(order *models.Order, to string, now time.Time) error {
	if order == nil {
		return ErrOrderNotFound
	}
	target := NormalizeOrderStatus(to)
	if target == "" {
		return ErrOrderStatusInvalid
	}
	if target == order.Status {
		return ErrOrderStatusUnchanged
	}
	if !CanTransitionOrder(order.Status, target) {
		return &InvalidTransitionError{From: order.Status, To: target}
	}
	order.Status = target
	switch target {
	case constants.OrderStatusDelivered:
		if order.DeliveredAt == nil {
			stamp := now
			order.DeliveredAt = &stamp
		}
	case constants.OrderStatusCancelled:
		if order.CanceledAt == nil {
			stamp := now
			order.CanceledAt = &stamp
		}
	}
	return nil
}

// IsOrderModifiable 订单项与小费是否仍可修改：
// PENDING 始终可改；IN_PREPARATION 仅在下单后 grace 内可改（按 created_at 计算）。
func IsOrderModifiable(order *models.Order, now time.Time, grace time.Duration) bool {
	if order == nil {
		return false
	}
	if grace <= 0 {
		grace = DefaultModifyGracePeriod
	}
	switch order.Status {
	case constants.OrderStatusPending:
		return true
	case constants.OrderStatusInPreparation:
		return now.Sub(order.CreatedAt) <= grace
	default:
		return false
	}
}

// CanCancelOrder 是否允许顾客取消（READY 之后不可取消）
func CanCancelOrder(order *models.Order) bool {
	if order == nil {
		return false
	}
	return CanTransitionOrder(order.Status, constants.OrderStatusCancelled)
}
