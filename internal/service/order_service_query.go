package service

import (
	"strings"
	"time"

	"github.com/foodtruck-next/internal/constants"
	"github.com/foodtruck-next/internal/models"
	"github.com/foodtruck-next/internal/repository"
)

const (
	defaultRecentOrderLimit = 5
	defaultTopSellingLimit  = 10
)

// OrderStatistics 订单统计
type OrderStatistics struct {
	TotalOrders         int64        `json:"total_orders"`
	PendingOrders       int64        `json:"pending_orders"`
	InPreparationOrders int64        `json:"in_preparation_orders"`
	ReadyOrders         int64        `json:"ready_orders"`
	DeliveredOrders     int64        `json:"delivered_orders"`
	CancelledOrders     int64        `json:"cancelled_orders"`
	Revenue             models.Money `json:"revenue"`
}

// TopSellingItem 销量排行项
type TopSellingItem struct {
	ItemID    uint   `json:"item_id"`
	ItemName  string `json:"item_name"`
	ItemType  string `json:"item_type"`
	TotalSold int64  `json:"total_sold"`
}

// GetForUser 顾客获取订单详情，非本人订单返回无权访问
func (s *OrderService) GetForUser(orderID, userID uint) (*models.Order, error) {
	order, err := s.GetByID(orderID)
	if err != nil {
		return nil, err
	}
	if order.UserID != userID {
		return nil, ErrOrderAccessDenied
	}
	return order, nil
}

// GetByID 获取订单详情（员工端）
func (s *OrderService) GetByID(orderID uint) (*models.Order, error) {
	return s.reload(orderID)
}

// ListByUser 顾客订单分页
func (s *OrderService) ListByUser(userID uint, page, pageSize int) ([]models.Order, int64, error) {
	return s.list(repository.OrderListFilter{UserID: userID, Page: page, PageSize: pageSize})
}

// ListRecentByUser 顾客最近订单
func (s *OrderService) ListRecentByUser(userID uint, limit int) ([]models.Order, error) {
	if limit <= 0 {
		limit = defaultRecentOrderLimit
	}
	orders, err := s.orderRepo.ListRecentByUser(userID, limit)
	if err != nil {
		return nil, ErrOrderFetchFailed
	}
	return orders, nil
}

// GetLastByUser 顾客最后一笔订单
func (s *OrderService) GetLastByUser(userID uint) (*models.Order, error) {
	order, err := s.orderRepo.GetLastByUser(userID)
	if err != nil {
		return nil, ErrOrderFetchFailed
	}
	if order == nil {
		return nil, ErrOrderNotFound
	}
	return order, nil
}

// ListByUserAndStatus 顾客指定状态的订单
func (s *OrderService) ListByUserAndStatus(userID uint, status string) ([]models.Order, error) {
	normalized := NormalizeOrderStatus(status)
	if normalized == "" {
		return nil, ErrOrderStatusInvalid
	}
	orders, err := s.orderRepo.ListByUserAndStatus(userID, normalized)
	if err != nil {
		return nil, ErrOrderFetchFailed
	}
	return orders, nil
}

// HasActiveOrders 顾客是否有进行中的订单
func (s *OrderService) HasActiveOrders(userID uint) (bool, error) {
	count, err := s.orderRepo.CountByUserAndStatuses(userID, ActiveOrderStatuses())
	if err != nil {
		return false, ErrOrderFetchFailed
	}
	return count > 0, nil
}

// ListPending 待处理订单，先下单的在前
func (s *OrderService) ListPending(page, pageSize int) ([]models.Order, int64, error) {
	return s.list(repository.OrderListFilter{
		Status:      constants.OrderStatusPending,
		OldestFirst: true,
		Page:        page,
		PageSize:    pageSize,
	})
}

// ListActive 员工看板：未交付且未取消的订单
func (s *OrderService) ListActive(page, pageSize int) ([]models.Order, int64, error) {
	return s.list(repository.OrderListFilter{
		ExcludeStatuses: []string{constants.OrderStatusDelivered, constants.OrderStatusCancelled},
		OldestFirst:     true,
		Page:            page,
		PageSize:        pageSize,
	})
}

// ListByStatus 按状态分页
func (s *OrderService) ListByStatus(status string, page, pageSize int) ([]models.Order, int64, error) {
	normalized := NormalizeOrderStatus(status)
	if normalized == "" {
		return nil, 0, ErrOrderStatusInvalid
	}
	return s.list(repository.OrderListFilter{Status: normalized, Page: page, PageSize: pageSize})
}

// ListByDateRange 按下单时间范围分页
func (s *OrderService) ListByDateRange(from, to time.Time, page, pageSize int) ([]models.Order, int64, error) {
	if from.IsZero() || to.IsZero() || from.After(to) {
		return nil, 0, ErrOrderDateRangeInvalid
	}
	return s.list(repository.OrderListFilter{
		CreatedFrom: &from,
		CreatedTo:   &to,
		Page:        page,
		PageSize:    pageSize,
	})
}

// ListForAdmin 员工端订单列表
func (s *OrderService) ListForAdmin(filter repository.OrderListFilter) ([]models.Order, int64, error) {
	if strings.TrimSpace(filter.Status) != "" {
		filter.Status = NormalizeOrderStatus(filter.Status)
		if filter.Status == "" {
			return nil, 0, ErrOrderStatusInvalid
		}
	}
	if filter.CreatedFrom != nil && filter.CreatedTo != nil && filter.CreatedFrom.After(*filter.CreatedTo) {
		return nil, 0, ErrOrderDateRangeInvalid
	}
	return s.list(filter)
}

func (s *OrderService) list(filter repository.OrderListFilter) ([]models.Order, int64, error) {
	orders, total, err := s.orderRepo.List(filter)
	if err != nil {
		return nil, 0, ErrOrderFetchFailed
	}
	return orders, total, nil
}

// Statistics 各状态订单数与已交付营收，可选时间范围
func (s *OrderService) Statistics(from, to *time.Time) (*OrderStatistics, error) {
	if from != nil && to != nil && from.After(*to) {
		return nil, ErrOrderDateRangeInvalid
	}
	stats := &OrderStatistics{}
	total, err := s.orderRepo.Count(from, to)
	if err != nil {
		return nil, ErrOrderFetchFailed
	}
	stats.TotalOrders = total

	counters := []struct {
		status string
		target *int64
	}{
		{constants.OrderStatusPending, &stats.PendingOrders},
		{constants.OrderStatusInPreparation, &stats.InPreparationOrders},
		{constants.OrderStatusReady, &stats.ReadyOrders},
		{constants.OrderStatusDelivered, &stats.DeliveredOrders},
		{constants.OrderStatusCancelled, &stats.CancelledOrders},
	}
	for _, counter := range counters {
		count, err := s.orderRepo.CountByStatus(counter.status, from, to)
		if err != nil {
			return nil, ErrOrderFetchFailed
		}
		*counter.target = count
	}

	revenue, err := s.orderRepo.SumDeliveredRevenue(from, to)
	if err != nil {
		return nil, ErrOrderFetchFailed
	}
	stats.Revenue = models.NewMoneyFromDecimal(revenue)
	return stats, nil
}

// TopSelling 已交付订单中的销量排行（菜品或促销）
func (s *OrderService) TopSelling(itemType string, limit int) ([]TopSellingItem, error) {
	normalized := strings.ToUpper(strings.TrimSpace(itemType))
	if normalized == "" {
		normalized = constants.OrderItemTypeProduct
	}
	if normalized != constants.OrderItemTypeProduct && normalized != constants.OrderItemTypePromotion {
		return nil, ErrInvalidOrderItem
	}
	if limit <= 0 {
		limit = defaultTopSellingLimit
	}
	rows, err := s.orderRepo.TopSellingItems(normalized, limit)
	if err != nil {
		return nil, ErrOrderFetchFailed
	}
	items := make([]TopSellingItem, 0, len(rows))
	for _, row := range rows {
		items = append(items, TopSellingItem{
			ItemID:    row.ItemID,
			ItemName:  row.ItemName,
			ItemType:  normalized,
			TotalSold: row.TotalSold,
		})
	}
	return items, nil
}
