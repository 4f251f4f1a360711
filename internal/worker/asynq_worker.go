package worker

import (
	"context"
	"encoding/json"

	"github.com/foodtruck-next/internal/logger"
	"github.com/foodtruck-next/internal/provider"
	"github.com/foodtruck-next/internal/queue"

	"github.com/hibiken/asynq"
)

// Consumer 异步任务消费者
type Consumer struct {
	*provider.Container
}

// NewConsumer 创建消费者
func NewConsumer(c *provider.Container) *Consumer {
	return &Consumer{
		Container: c,
	}
}

// Register 注册消费者
func (c *Consumer) Register(mux *asynq.ServeMux) {
	if c == nil || mux == nil {
		logger.Debugw("worker_register_skip_nil", "consumer_nil", c == nil, "mux_nil", mux == nil)
		return
	}
	mux.HandleFunc(queue.TaskOrderNotify, c.handleOrderNotify)
	mux.HandleFunc(queue.TaskPromotionExpireSweep, c.handlePromotionExpireSweep)
}

func (c *Consumer) handleOrderNotify(ctx context.Context, task *asynq.Task) error {
	if c == nil || c.Container == nil || task == nil {
		logger.Debugw("worker_order_notify_skip_nil", "consumer_nil", c == nil, "task_nil", task == nil)
		return nil
	}
	var payload queue.OrderNotifyPayload
	if err := json.Unmarshal(task.Payload(), &payload); err != nil {
		logger.Warnw("worker_order_notify_unmarshal_failed", "error", err)
		return err
	}
	if payload.OrderID == 0 || payload.Type == "" {
		logger.Debugw("worker_order_notify_skip_invalid_payload", "order_id", payload.OrderID, "type", payload.Type)
		return nil
	}
	if c.OrderNotificationService == nil {
		logger.Warnw("worker_order_notify_skip_service_nil", "order_id", payload.OrderID)
		return nil
	}
	return c.OrderNotificationService.Dispatch(ctx, payload)
}

func (c *Consumer) handlePromotionExpireSweep(ctx context.Context, task *asynq.Task) error {
	if c == nil || c.Container == nil || task == nil {
		logger.Debugw("worker_promotion_sweep_skip_nil", "consumer_nil", c == nil, "task_nil", task == nil)
		return nil
	}
	var payload queue.PromotionExpireSweepPayload
	if len(task.Payload()) > 0 {
		if err := json.Unmarshal(task.Payload(), &payload); err != nil {
			logger.Warnw("worker_promotion_sweep_unmarshal_failed", "error", err)
			return err
		}
	}
	if c.PromotionExpiryService == nil {
		logger.Warnw("worker_promotion_sweep_skip_service_nil", "trigger", payload.Trigger)
		return nil
	}
	processed, err := c.PromotionExpiryService.DeactivateExpired(ctx)
	if err != nil {
		logger.Warnw("worker_promotion_sweep_failed", "trigger", payload.Trigger, "processed", processed, "error", err)
		return err
	}
	logger.Infow("worker_promotion_sweep_done", "trigger", payload.Trigger, "processed", processed)
	return nil
}
