package service

import (
	"fmt"
	"regexp"
	"strconv"
	"strings"
	"time"

	"github.com/foodtruck-next/internal/config"
	"github.com/foodtruck-next/internal/constants"
	"github.com/foodtruck-next/internal/logger"
	"github.com/foodtruck-next/internal/models"
	"github.com/foodtruck-next/internal/repository"

	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

// maxOrderItemQuantity 单个订单项数量上限
const maxOrderItemQuantity = 99

var estimatedTimePattern = regexp.MustCompile(`^\d{2}:\d{2}$`)

// OrderItemRef 订单项引用：菜品或促销二选一
type OrderItemRef interface {
	itemType() string
	refID() uint
}

// ProductRef 引用菜品
type ProductRef struct {
	ID uint
}

func (r ProductRef) itemType() string { return constants.OrderItemTypeProduct }
func (r ProductRef) refID() uint      { return r.ID }

// PromotionRef 引用促销
type PromotionRef struct {
	ID uint
}

func (r PromotionRef) itemType() string { return constants.OrderItemTypePromotion }
func (r PromotionRef) refID() uint      { return r.ID }

// OrderItemInput 订单项输入
type OrderItemInput struct {
	Ref      OrderItemRef
	Quantity int
}

// CreateOrderInput 创建订单输入
type CreateOrderInput struct {
	UserID uint
	Items  []OrderItemInput
	Tip    *models.Money
	Notes  string
}

// UpdateOrderInput 修改订单输入，nil 字段保持不变，Items 非 nil 时整体替换
type UpdateOrderInput struct {
	Items []OrderItemInput
	Tip   *models.Money
	Notes *string
}

// OrderService 订单服务
type OrderService struct {
	orderRepo     repository.OrderRepository
	productRepo   repository.ProductRepository
	promotionRepo repository.PromotionRepository
	notifier      OrderNotifier
	clock         Clock
	loc           *time.Location
	grace         time.Duration
	activeLimit   int
}

// NewOrderService 创建订单服务
func NewOrderService(
	orderRepo repository.OrderRepository,
	productRepo repository.ProductRepository,
	promotionRepo repository.PromotionRepository,
	notifier OrderNotifier,
	clock Clock,
	cfg config.OrderConfig,
	loc *time.Location,
) *OrderService {
	if loc == nil {
		loc = time.Local
	}
	return &OrderService{
		orderRepo:     orderRepo,
		productRepo:   productRepo,
		promotionRepo: promotionRepo,
		notifier:      notifier,
		clock:         resolveClock(clock),
		loc:           loc,
		grace:         cfg.GracePeriod(),
		activeLimit:   cfg.ActiveOrderLimit(),
	}
}

func (s *OrderService) now() time.Time {
	return s.clock.Now().In(s.loc)
}

// Create 创建订单：校验进行中订单上限，冻结订单项名称与单价
func (s *OrderService) Create(input CreateOrderInput) (*models.Order, error) {
	if input.UserID == 0 {
		return nil, ErrOrderAccessDenied
	}
	if len(input.Items) == 0 {
		return nil, ErrOrderItemsRequired
	}
	tip, err := normalizeOrderTip(input.Tip)
	if err != nil {
		return nil, err
	}

	now := s.now()
	order := &models.Order{
		UserID:    input.UserID,
		Status:    constants.OrderStatusPending,
		Tip:       tip,
		Notes:     strings.TrimSpace(input.Notes),
		CreatedAt: now,
		UpdatedAt: now,
	}

	err = s.orderRepo.Transaction(func(tx *gorm.DB) error {
		orderRepo := s.orderRepo.WithTx(tx)
		active, err := orderRepo.CountByUserAndStatuses(input.UserID, ActiveOrderStatuses())
		if err != nil {
			return err
		}
		if int(active) >= s.activeLimit {
			return ErrActiveOrderLimit
		}
		items, err := s.buildOrderItems(tx, input.Items, now)
		if err != nil {
			return err
		}
		applyOrderTotals(order, items)
		return orderRepo.Create(order, items)
	})
	if err != nil {
		if ErrorKind(err) == nil {
			logger.Errorw("order_create_failed", "user_id", input.UserID, "error", err)
			return nil, ErrOrderUpdateFailed
		}
		return nil, err
	}

	created, err := s.reload(order.ID)
	if err != nil {
		return nil, err
	}
	logger.Infow("order_created",
		"order_id", created.ID,
		"user_id", created.UserID,
		"items", len(created.Items),
		"total", created.Total.String(),
	)
	s.notify(created, constants.NotificationOrderCreated)
	return created, nil
}

// Update 顾客修改订单：替换订单项并重新计算金额
func (s *OrderService) Update(orderID, userID uint, input UpdateOrderInput) (*models.Order, error) {
	if input.Items != nil && len(input.Items) == 0 {
		return nil, ErrOrderItemsRequired
	}
	var tip *models.Money
	if input.Tip != nil {
		normalized, err := normalizeOrderTip(input.Tip)
		if err != nil {
			return nil, err
		}
		tip = &normalized
	}

	err := s.mutate(orderID, func(tx *gorm.DB, order *models.Order, now time.Time) error {
		if order.UserID != userID {
			return ErrOrderAccessDenied
		}
		if !IsOrderModifiable(order, now, s.grace) {
			return ErrOrderCannotModify
		}
		items := order.Items
		if input.Items != nil {
			built, err := s.buildOrderItems(tx, input.Items, now)
			if err != nil {
				return err
			}
			if err := s.orderRepo.WithTx(tx).ReplaceItems(order.ID, built); err != nil {
				return err
			}
			items = built
		}
		if tip != nil {
			order.Tip = *tip
		}
		if input.Notes != nil {
			order.Notes = strings.TrimSpace(*input.Notes)
		}
		applyOrderTotals(order, items)
		return nil
	})
	if err != nil {
		return nil, err
	}
	return s.afterMutation(orderID, constants.NotificationOrderUpdated, "order_updated")
}

// UpdateStatus 员工推进订单状态
func (s *OrderService) UpdateStatus(orderID uint, status string) (*models.Order, error) {
	target := NormalizeOrderStatus(status)
	if target == "" {
		return nil, ErrOrderStatusInvalid
	}
	var from string
	err := s.mutate(orderID, func(_ *gorm.DB, order *models.Order, now time.Time) error {
		from = order.Status
		return ApplyOrderTransition(order, target, now)
	})
	if err != nil {
		return nil, err
	}
	notifyType := constants.NotificationOrderStatusChanged
	if target == constants.OrderStatusCancelled {
		notifyType = constants.NotificationOrderCancelled
	}
	order, err := s.afterMutation(orderID, notifyType, "order_status_updated")
	if err != nil {
		return nil, err
	}
	logger.Debugw("order_status_transition", "order_id", orderID, "from", from, "to", target)
	return order, nil
}

// UpdateTip 顾客修改小费
func (s *OrderService) UpdateTip(orderID, userID uint, tip models.Money) (*models.Order, error) {
	normalized, err := normalizeOrderTip(&tip)
	if err != nil {
		return nil, err
	}
	err = s.mutate(orderID, func(_ *gorm.DB, order *models.Order, now time.Time) error {
		if order.UserID != userID {
			return ErrOrderAccessDenied
		}
		if !IsOrderModifiable(order, now, s.grace) {
			return ErrOrderCannotModify
		}
		order.Tip = normalized
		applyOrderTotals(order, order.Items)
		return nil
	})
	if err != nil {
		return nil, err
	}
	return s.afterMutation(orderID, constants.NotificationOrderUpdated, "order_tip_updated")
}

// Cancel 顾客取消订单，READY 之后不可取消
func (s *OrderService) Cancel(orderID, userID uint) (*models.Order, error) {
	err := s.mutate(orderID, func(_ *gorm.DB, order *models.Order, now time.Time) error {
		if order.UserID != userID {
			return ErrOrderAccessDenied
		}
		if !CanCancelOrder(order) {
			return fmt.Errorf("%w: %s", ErrOrderCannotCancel, order.Status)
		}
		return ApplyOrderTransition(order, constants.OrderStatusCancelled, now)
	})
	if err != nil {
		return nil, err
	}
	return s.afterMutation(orderID, constants.NotificationOrderCancelled, "order_cancelled")
}

// UpdateEstimatedTime 员工设置预计等待时间（MM:SS）
func (s *OrderService) UpdateEstimatedTime(orderID uint, value string) (*models.Order, error) {
	normalized, err := ParseEstimatedTime(value)
	if err != nil {
		return nil, err
	}
	err = s.mutate(orderID, func(_ *gorm.DB, order *models.Order, _ time.Time) error {
		order.EstimatedTime = normalized
		return nil
	})
	if err != nil {
		return nil, err
	}
	return s.afterMutation(orderID, constants.NotificationOrderEstimatedTimeChanged, "order_estimated_time_updated")
}

// ParseEstimatedTime 校验预计时间格式 MM:SS（秒数小于 60）
func ParseEstimatedTime(raw string) (string, error) {
	value := strings.TrimSpace(raw)
	if !estimatedTimePattern.MatchString(value) {
		return "", ErrEstimatedTimeInvalid
	}
	seconds, err := strconv.Atoi(value[3:])
	if err != nil || seconds >= 60 {
		return "", ErrEstimatedTimeInvalid
	}
	return value, nil
}

// mutate 在事务中锁定订单行后执行修改并保存
func (s *OrderService) mutate(orderID uint, fn func(tx *gorm.DB, order *models.Order, now time.Time) error) error {
	err := s.orderRepo.Transaction(func(tx *gorm.DB) error {
		orderRepo := s.orderRepo.WithTx(tx)
		order, err := orderRepo.GetByIDForUpdate(orderID)
		if err != nil {
			return err
		}
		if order == nil {
			return ErrOrderNotFound
		}
		now := s.now()
		if err := fn(tx, order, now); err != nil {
			return err
		}
		order.UpdatedAt = now
		return orderRepo.Update(order)
	})
	if err != nil && ErrorKind(err) == nil {
		logger.Errorw("order_update_failed", "order_id", orderID, "error", err)
		return ErrOrderUpdateFailed
	}
	return err
}

func (s *OrderService) afterMutation(orderID uint, notifyType, event string) (*models.Order, error) {
	order, err := s.reload(orderID)
	if err != nil {
		return nil, err
	}
	logger.Infow(event,
		"order_id", order.ID,
		"status", order.Status,
		"total", order.Total.String(),
	)
	s.notify(order, notifyType)
	return order, nil
}

func (s *OrderService) reload(orderID uint) (*models.Order, error) {
	order, err := s.orderRepo.GetByID(orderID)
	if err != nil {
		return nil, ErrOrderFetchFailed
	}
	if order == nil {
		return nil, ErrOrderNotFound
	}
	return order, nil
}

func (s *OrderService) notify(order *models.Order, notifyType string) {
	if s.notifier == nil || order == nil {
		return
	}
	s.notifier.NotifyOrder(order, notifyType)
}

// buildOrderItems 解析订单项并冻结名称与单价
func (s *OrderService) buildOrderItems(tx *gorm.DB, inputs []OrderItemInput, now time.Time) ([]models.OrderItem, error) {
	productRepo := s.productRepo.WithTx(tx)
	promotionRepo := s.promotionRepo.WithTx(tx)
	items := make([]models.OrderItem, 0, len(inputs))
	for _, input := range inputs {
		if input.Ref == nil || input.Ref.refID() == 0 {
			return nil, ErrInvalidOrderItem
		}
		if input.Quantity < 1 || input.Quantity > maxOrderItemQuantity {
			return nil, fmt.Errorf("%w: 数量必须在 1 到 %d 之间", ErrInvalidOrderItem, maxOrderItemQuantity)
		}
		id := input.Ref.refID()
		item := models.OrderItem{
			ItemType:  input.Ref.itemType(),
			Quantity:  input.Quantity,
			CreatedAt: now,
		}
		switch input.Ref.(type) {
		case ProductRef:
			product, err := productRepo.GetByID(id)
			if err != nil {
				return nil, err
			}
			if product == nil {
				return nil, fmt.Errorf("%w: %d", ErrProductNotFound, id)
			}
			if !product.IsActive {
				return nil, fmt.Errorf("%w: %s", ErrProductUnavailable, product.Name)
			}
			productID := product.ID
			item.ProductID = &productID
			item.ItemName = product.Name
			item.UnitPrice = product.Price
		case PromotionRef:
			promotion, err := promotionRepo.GetByID(id)
			if err != nil {
				return nil, err
			}
			if promotion == nil {
				return nil, fmt.Errorf("%w: %d", ErrPromotionNotFound, id)
			}
			if !IsPromotionRedeemableAt(promotion, now) {
				return nil, fmt.Errorf("%w: %s", ErrPromotionUnavailable, promotion.Name)
			}
			promotionID := promotion.ID
			item.PromotionID = &promotionID
			item.ItemName = promotion.Name
			item.UnitPrice = promotion.Price
		default:
			return nil, ErrInvalidOrderItem
		}
		item.LineTotal = item.UnitPrice.MulInt(item.Quantity)
		items = append(items, item)
	}
	return items, nil
}

// applyOrderTotals subtotal = Σ 行小计，total = subtotal + tip
func applyOrderTotals(order *models.Order, items []models.OrderItem) {
	lines := make([]models.Money, 0, len(items))
	for _, item := range items {
		lines = append(lines, item.LineTotal)
	}
	order.Subtotal = models.SumMoney(lines...)
	order.Total = order.Subtotal.Add(order.Tip)
}

func normalizeOrderTip(tip *models.Money) (models.Money, error) {
	if tip == nil {
		return models.NewMoneyFromDecimal(decimal.Zero), nil
	}
	if tip.Decimal.IsNegative() {
		return models.Money{}, ErrOrderTipInvalid
	}
	return models.NewMoneyFromDecimal(tip.Decimal), nil
}
