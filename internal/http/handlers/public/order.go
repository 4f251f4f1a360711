package public

import (
	"strconv"
	"strings"
	"time"

	"github.com/foodtruck-next/internal/constants"
	handlershared "github.com/foodtruck-next/internal/http/handlers/shared"
	"github.com/foodtruck-next/internal/http/response"
	"github.com/foodtruck-next/internal/models"
	"github.com/foodtruck-next/internal/realtime"
	"github.com/foodtruck-next/internal/service"

	"github.com/gin-gonic/gin"
)

// OrderItemRequest 订单项请求，type 为 PRODUCT 时只能带 product_id，PROMOTION 时只能带 promotion_id
type OrderItemRequest struct {
	Type        string `json:"type"`
	ProductID   uint   `json:"product_id"`
	PromotionID uint   `json:"promotion_id"`
	Quantity    int    `json:"quantity"`
}

// CreateOrderRequest 下单请求
type CreateOrderRequest struct {
	Items []OrderItemRequest `json:"items" binding:"required"`
	Tip   *models.Money      `json:"tip"`
	Notes string             `json:"notes"`
}

// UpdateOrderRequest 修改订单请求，缺省字段保持不变，items 出现时整体替换
type UpdateOrderRequest struct {
	Items []OrderItemRequest `json:"items"`
	Tip   *models.Money      `json:"tip"`
	Notes *string            `json:"notes"`
}

// UpdateTipRequest 修改小费请求
type UpdateTipRequest struct {
	Tip *models.Money `json:"tip" binding:"required"`
}

func toOrderItemInputs(items []OrderItemRequest) ([]service.OrderItemInput, error) {
	if items == nil {
		return nil, nil
	}
	inputs := make([]service.OrderItemInput, 0, len(items))
	for _, item := range items {
		var ref service.OrderItemRef
		switch strings.ToUpper(strings.TrimSpace(item.Type)) {
		case constants.OrderItemTypeProduct:
			if item.ProductID == 0 || item.PromotionID != 0 {
				return nil, service.ErrInvalidOrderItem
			}
			ref = service.ProductRef{ID: item.ProductID}
		case constants.OrderItemTypePromotion:
			if item.PromotionID == 0 || item.ProductID != 0 {
				return nil, service.ErrInvalidOrderItem
			}
			ref = service.PromotionRef{ID: item.PromotionID}
		default:
			return nil, service.ErrInvalidOrderItem
		}
		inputs = append(inputs, service.OrderItemInput{Ref: ref, Quantity: item.Quantity})
	}
	return inputs, nil
}

// CreateOrder 顾客下单
func (h *Handler) CreateOrder(c *gin.Context) {
	userID, ok := getUserID(c)
	if !ok {
		return
	}
	var req CreateOrderRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondError(c, response.CodeBadRequest, "error.bad_request", err)
		return
	}
	items, err := toOrderItemInputs(req.Items)
	if err != nil {
		respondServiceError(c, err, "error.internal")
		return
	}

	order, err := h.OrderService.Create(service.CreateOrderInput{
		UserID: userID,
		Items:  items,
		Tip:    req.Tip,
		Notes:  req.Notes,
	})
	if err != nil {
		respondServiceError(c, err, "error.internal")
		return
	}
	response.Success(c, order)
}

// UpdateOrder 顾客修改订单
func (h *Handler) UpdateOrder(c *gin.Context) {
	userID, ok := getUserID(c)
	if !ok {
		return
	}
	orderID, ok := handlershared.ParseIDParam(c, "id")
	if !ok {
		return
	}
	var req UpdateOrderRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondError(c, response.CodeBadRequest, "error.bad_request", err)
		return
	}
	items, err := toOrderItemInputs(req.Items)
	if err != nil {
		respondServiceError(c, err, "error.internal")
		return
	}

	order, err := h.OrderService.Update(orderID, userID, service.UpdateOrderInput{
		Items: items,
		Tip:   req.Tip,
		Notes: req.Notes,
	})
	if err != nil {
		respondServiceError(c, err, "error.internal")
		return
	}
	response.Success(c, order)
}

// UpdateOrderTip 顾客修改小费
func (h *Handler) UpdateOrderTip(c *gin.Context) {
	userID, ok := getUserID(c)
	if !ok {
		return
	}
	orderID, ok := handlershared.ParseIDParam(c, "id")
	if !ok {
		return
	}
	var req UpdateTipRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondError(c, response.CodeBadRequest, "error.bad_request", err)
		return
	}

	order, err := h.OrderService.UpdateTip(orderID, userID, *req.Tip)
	if err != nil {
		respondServiceError(c, err, "error.internal")
		return
	}
	response.Success(c, order)
}

// CancelOrder 顾客取消订单
func (h *Handler) CancelOrder(c *gin.Context) {
	userID, ok := getUserID(c)
	if !ok {
		return
	}
	orderID, ok := handlershared.ParseIDParam(c, "id")
	if !ok {
		return
	}
	order, err := h.OrderService.Cancel(orderID, userID)
	if err != nil {
		respondServiceError(c, err, "error.internal")
		return
	}
	response.Success(c, order)
}

// GetOrder 顾客订单详情
func (h *Handler) GetOrder(c *gin.Context) {
	userID, ok := getUserID(c)
	if !ok {
		return
	}
	orderID, ok := handlershared.ParseIDParam(c, "id")
	if !ok {
		return
	}
	order, err := h.OrderService.GetForUser(orderID, userID)
	if err != nil {
		respondServiceError(c, err, "error.internal")
		return
	}
	response.Success(c, order)
}

// ListOrders 顾客订单分页
func (h *Handler) ListOrders(c *gin.Context) {
	userID, ok := getUserID(c)
	if !ok {
		return
	}
	page, pageSize := handlershared.ParsePageQuery(c)
	orders, total, err := h.OrderService.ListByUser(userID, page, pageSize)
	if err != nil {
		respondServiceError(c, err, "error.internal")
		return
	}
	response.SuccessWithPage(c, orders, response.BuildPagination(page, pageSize, total))
}

// ListRecentOrders 顾客最近订单
func (h *Handler) ListRecentOrders(c *gin.Context) {
	userID, ok := getUserID(c)
	if !ok {
		return
	}
	limit, _ := strconv.Atoi(c.DefaultQuery("limit", "0"))
	orders, err := h.OrderService.ListRecentByUser(userID, limit)
	if err != nil {
		respondServiceError(c, err, "error.internal")
		return
	}
	response.Success(c, orders)
}

// GetLastOrder 顾客最后一笔订单
func (h *Handler) GetLastOrder(c *gin.Context) {
	userID, ok := getUserID(c)
	if !ok {
		return
	}
	order, err := h.OrderService.GetLastByUser(userID)
	if err != nil {
		respondServiceError(c, err, "error.internal")
		return
	}
	response.Success(c, order)
}

// ListOrdersByStatus 顾客指定状态的订单
func (h *Handler) ListOrdersByStatus(c *gin.Context) {
	userID, ok := getUserID(c)
	if !ok {
		return
	}
	orders, err := h.OrderService.ListByUserAndStatus(userID, c.Param("status"))
	if err != nil {
		respondServiceError(c, err, "error.internal")
		return
	}
	response.Success(c, orders)
}

// HasActiveOrders 顾客是否有进行中的订单
func (h *Handler) HasActiveOrders(c *gin.Context) {
	userID, ok := getUserID(c)
	if !ok {
		return
	}
	active, err := h.OrderService.HasActiveOrders(userID)
	if err != nil {
		respondServiceError(c, err, "error.internal")
		return
	}
	response.Success(c, gin.H{"has_active_orders": active})
}

// StreamOrders 顾客订单状态实时推送（SSE）
func (h *Handler) StreamOrders(c *gin.Context) {
	userID, ok := getUserID(c)
	if !ok {
		return
	}
	if !h.Config.Notify.Realtime.Enabled {
		respondError(c, response.CodeNotFound, "error.realtime_unavailable", nil)
		return
	}
	heartbeat := time.Duration(h.Config.Notify.Realtime.HeartbeatSeconds) * time.Second
	handlershared.StreamChannel(c, h.Broker, realtime.UserChannel(userID), heartbeat)
}
