package queue

import (
	"encoding/json"
	"time"

	"github.com/foodtruck-next/internal/constants"

	"github.com/hibiken/asynq"
)

const (
	// TaskOrderNotify 订单通知分发任务
	TaskOrderNotify = constants.TaskOrderNotify
	// TaskPromotionExpireSweep 过期促销停用任务
	TaskPromotionExpireSweep = constants.TaskPromotionExpireSweep
)

// OrderNotifyPayload 订单通知任务载荷
type OrderNotifyPayload struct {
	OrderID       uint      `json:"order_id"`
	UserID        uint      `json:"user_id"`
	UserName      string    `json:"user_name"`
	Status        string    `json:"status"`
	Total         string    `json:"total"`
	EstimatedTime string    `json:"estimated_time"`
	CreatedAt     time.Time `json:"created_at"`
	Type          string    `json:"type"`
	Message       string    `json:"message"`
}

// PromotionExpireSweepPayload 过期促销停用任务载荷
type PromotionExpireSweepPayload struct {
	Trigger string `json:"trigger"`
}

// NewOrderNotifyTask 创建订单通知任务
func NewOrderNotifyTask(payload OrderNotifyPayload) (*asynq.Task, error) {
	body, err := json.Marshal(payload)
	if err != nil {
		return nil, err
	}
	return asynq.NewTask(TaskOrderNotify, body), nil
}

// NewPromotionExpireSweepTask 创建过期促销停用任务
func NewPromotionExpireSweepTask(payload PromotionExpireSweepPayload) (*asynq.Task, error) {
	body, err := json.Marshal(payload)
	if err != nil {
		return nil, err
	}
	return asynq.NewTask(TaskPromotionExpireSweep, body), nil
}
