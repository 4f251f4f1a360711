package service

import (
	"context"
	"encoding/json"
	"strings"
	"time"

	"github.com/foodtruck-next/internal/constants"
	"github.com/foodtruck-next/internal/i18n"
	"github.com/foodtruck-next/internal/logger"
	"github.com/foodtruck-next/internal/models"
	"github.com/foodtruck-next/internal/queue"
	"github.com/foodtruck-next/internal/realtime"

	"github.com/hibiken/asynq"
)

// DefaultNotifyLocale 通知默认语言
const DefaultNotifyLocale = constants.LocaleEsAR

// OrderNotification 推送给员工与顾客的订单通知
type OrderNotification struct {
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

// OrderNotifier 订单事件通知，失败只记录日志
type OrderNotifier interface {
	NotifyOrder(order *models.Order, notifyType string)
}

// OrderNotificationService 订单通知服务：有队列时异步投递，否则直接分发
type OrderNotificationService struct {
	broker      realtime.Broker
	telegram    TelegramSender
	queueClient *queue.Client
	locale      string
}

// NewOrderNotificationService 创建订单通知服务
func NewOrderNotificationService(broker realtime.Broker, telegram TelegramSender, queueClient *queue.Client, locale string) *OrderNotificationService {
	return &OrderNotificationService{
		broker:      broker,
		telegram:    telegram,
		queueClient: queueClient,
		locale:      i18n.NormalizeLocale(locale),
	}
}

// employeeNotifyTypes 员工频道接收的通知类型
var employeeNotifyTypes = map[string]bool{
	constants.NotificationOrderCreated:   true,
	constants.NotificationOrderUpdated:   true,
	constants.NotificationOrderCancelled: true,
}

// userNotifyTypes 顾客频道接收的通知类型
var userNotifyTypes = map[string]bool{
	constants.NotificationOrderStatusChanged:        true,
	constants.NotificationOrderEstimatedTimeChanged: true,
	constants.NotificationOrderCancelled:            true,
}

// NotifyOrder 投递订单通知
func (s *OrderNotificationService) NotifyOrder(order *models.Order, notifyType string) {
	if s == nil || order == nil {
		return
	}
	notification := s.Build(order, notifyType)
	payload := queue.OrderNotifyPayload(notification)
	if s.queueClient != nil && s.queueClient.Enabled() {
		err := s.queueClient.EnqueueOrderNotify(payload, asynq.MaxRetry(3))
		if err == nil {
			return
		}
		logger.Warnw("order_notify_enqueue_failed",
			"order_id", order.ID,
			"type", notifyType,
			"error", err,
		)
	}
	go func() {
		_ = s.Dispatch(context.Background(), payload)
	}()
}

// Build 组装通知内容
func (s *OrderNotificationService) Build(order *models.Order, notifyType string) OrderNotification {
	userName := ""
	if order.User != nil {
		userName = strings.TrimSpace(order.User.Name)
		if userName == "" {
			userName = order.User.Username
		}
	}
	notification := OrderNotification{
		OrderID:       order.ID,
		UserID:        order.UserID,
		UserName:      userName,
		Status:        order.Status,
		Total:         order.Total.String(),
		EstimatedTime: order.EstimatedTime,
		CreatedAt:     order.CreatedAt,
		Type:          notifyType,
	}
	notification.Message = s.buildMessage(notification)
	return notification
}

func (s *OrderNotificationService) buildMessage(n OrderNotification) string {
	locale := DefaultNotifyLocale
	if s != nil && s.locale != "" {
		locale = s.locale
	}
	switch n.Type {
	case constants.NotificationOrderCreated:
		return i18n.Tf(locale, "notify.order_created", n.OrderID, n.UserName, n.Total)
	case constants.NotificationOrderUpdated:
		return i18n.Tf(locale, "notify.order_updated", n.OrderID, n.UserName)
	case constants.NotificationOrderCancelled:
		return i18n.Tf(locale, "notify.order_cancelled", n.OrderID)
	case constants.NotificationOrderStatusChanged:
		return i18n.Tf(locale, "notify.order_status_changed", n.OrderID, i18n.T(locale, "status."+n.Status))
	case constants.NotificationOrderEstimatedTimeChanged:
		return i18n.Tf(locale, "notify.order_estimated_time_changed", n.OrderID, n.EstimatedTime)
	default:
		return ""
	}
}

// Dispatch 按通知类型分发到员工频道、Telegram 与顾客频道
func (s *OrderNotificationService) Dispatch(ctx context.Context, payload queue.OrderNotifyPayload) error {
	if s == nil {
		return nil
	}
	if ctx == nil {
		ctx = context.Background()
	}
	notification := OrderNotification(payload)
	body, err := json.Marshal(notification)
	if err != nil {
		logger.Errorw("order_notify_marshal_failed", "order_id", payload.OrderID, "error", err)
		return nil
	}

	if employeeNotifyTypes[payload.Type] {
		s.publish(ctx, realtime.EmployeesChannel(), payload, body)
		if s.telegram != nil {
			if err := s.telegram.Send(ctx, notification.Message); err != nil {
				logger.Warnw("order_notify_telegram_failed",
					"order_id", payload.OrderID,
					"type", payload.Type,
					"error", err,
				)
			}
		}
	}
	if userNotifyTypes[payload.Type] && payload.UserID != 0 {
		s.publish(ctx, realtime.UserChannel(payload.UserID), payload, body)
	}
	return nil
}

func (s *OrderNotificationService) publish(ctx context.Context, channel string, payload queue.OrderNotifyPayload, body []byte) {
	if s.broker == nil {
		return
	}
	err := s.broker.Publish(ctx, realtime.Message{
		Channel: channel,
		Event:   payload.Type,
		Data:    body,
	})
	if err != nil {
		logger.Warnw("order_notify_publish_failed",
			"order_id", payload.OrderID,
			"channel", channel,
			"type", payload.Type,
			"error", err,
		)
		return
	}
	logger.Debugw("order_notify_published",
		"order_id", payload.OrderID,
		"channel", channel,
		"type", payload.Type,
	)
}
