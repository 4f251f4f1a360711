package admin

import (
	"strconv"
	"strings"
	"time"

	handlershared "github.com/foodtruck-next/internal/http/handlers/shared"
	"github.com/foodtruck-next/internal/http/response"
	"github.com/foodtruck-next/internal/realtime"
	"github.com/foodtruck-next/internal/repository"

	"github.com/gin-gonic/gin"
)

// UpdateOrderStatusRequest 订单状态流转请求
type UpdateOrderStatusRequest struct {
	Status string `json:"status" binding:"required"`
}

// UpdateEstimatedTimeRequest 预计等待时间请求（MM:SS）
type UpdateEstimatedTimeRequest struct {
	EstimatedTime string `json:"estimated_time" binding:"required"`
}

// parseDateRange 读取 from/to 日期参数，to 包含当天
func (h *Handler) parseDateRange(c *gin.Context) (*time.Time, *time.Time, bool) {
	loc := h.Config.Promotion.Location()
	from, ok := handlershared.ParseDateQuery(c, "from", loc)
	if !ok {
		return nil, nil, false
	}
	to, ok := handlershared.ParseDateQuery(c, "to", loc)
	if !ok {
		return nil, nil, false
	}
	if to != nil {
		endOfDay := to.AddDate(0, 0, 1).Add(-time.Nanosecond)
		to = &endOfDay
	}
	return from, to, true
}

// GetAdminOrders 订单列表，可按状态、顾客与下单日期筛选
func (h *Handler) GetAdminOrders(c *gin.Context) {
	page, pageSize := handlershared.ParsePageQuery(c)
	from, to, ok := h.parseDateRange(c)
	if !ok {
		return
	}
	var userID uint
	if raw := strings.TrimSpace(c.Query("user_id")); raw != "" {
		parsed, err := strconv.ParseUint(raw, 10, 64)
		if err != nil {
			respondError(c, response.CodeBadRequest, "error.bad_request", err)
			return
		}
		userID = uint(parsed)
	}

	orders, total, err := h.OrderService.ListForAdmin(repository.OrderListFilter{
		UserID:      userID,
		Status:      c.Query("status"),
		CreatedFrom: from,
		CreatedTo:   to,
		Page:        page,
		PageSize:    pageSize,
	})
	if err != nil {
		respondServiceError(c, err, "error.internal")
		return
	}
	response.SuccessWithPage(c, orders, response.BuildPagination(page, pageSize, total))
}

// GetActiveOrders 员工看板：未交付且未取消的订单
func (h *Handler) GetActiveOrders(c *gin.Context) {
	page, pageSize := handlershared.ParsePageQuery(c)
	orders, total, err := h.OrderService.ListActive(page, pageSize)
	if err != nil {
		respondServiceError(c, err, "error.internal")
		return
	}
	response.SuccessWithPage(c, orders, response.BuildPagination(page, pageSize, total))
}

// GetPendingOrders 待处理订单
func (h *Handler) GetPendingOrders(c *gin.Context) {
	page, pageSize := handlershared.ParsePageQuery(c)
	orders, total, err := h.OrderService.ListPending(page, pageSize)
	if err != nil {
		respondServiceError(c, err, "error.internal")
		return
	}
	response.SuccessWithPage(c, orders, response.BuildPagination(page, pageSize, total))
}

// GetOrdersByStatus 按状态分页
func (h *Handler) GetOrdersByStatus(c *gin.Context) {
	page, pageSize := handlershared.ParsePageQuery(c)
	orders, total, err := h.OrderService.ListByStatus(c.Param("status"), page, pageSize)
	if err != nil {
		respondServiceError(c, err, "error.internal")
		return
	}
	response.SuccessWithPage(c, orders, response.BuildPagination(page, pageSize, total))
}

// GetUserOrders 指定顾客的订单
func (h *Handler) GetUserOrders(c *gin.Context) {
	userID, ok := handlershared.ParseIDParam(c, "id")
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

// GetAdminOrder 订单详情
func (h *Handler) GetAdminOrder(c *gin.Context) {
	orderID, ok := handlershared.ParseIDParam(c, "id")
	if !ok {
		return
	}
	order, err := h.OrderService.GetByID(orderID)
	if err != nil {
		respondServiceError(c, err, "error.internal")
		return
	}
	response.Success(c, order)
}

// UpdateOrderStatus 订单状态流转
func (h *Handler) UpdateOrderStatus(c *gin.Context) {
	orderID, ok := handlershared.ParseIDParam(c, "id")
	if !ok {
		return
	}
	var req UpdateOrderStatusRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondError(c, response.CodeBadRequest, "error.bad_request", err)
		return
	}
	order, err := h.OrderService.UpdateStatus(orderID, req.Status)
	if err != nil {
		respondServiceError(c, err, "error.internal")
		return
	}
	requestLog(c).Infow("admin_order_status_updated", "order_id", orderID, "status", order.Status, "operator_id", c.GetUint(handlershared.ContextUserIDKey))
	response.Success(c, order)
}

// UpdateOrderEstimatedTime 设置预计等待时间
func (h *Handler) UpdateOrderEstimatedTime(c *gin.Context) {
	orderID, ok := handlershared.ParseIDParam(c, "id")
	if !ok {
		return
	}
	var req UpdateEstimatedTimeRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondError(c, response.CodeBadRequest, "error.bad_request", err)
		return
	}
	order, err := h.OrderService.UpdateEstimatedTime(orderID, req.EstimatedTime)
	if err != nil {
		respondServiceError(c, err, "error.internal")
		return
	}
	response.Success(c, order)
}

// GetOrderStatistics 各状态订单数与营收
func (h *Handler) GetOrderStatistics(c *gin.Context) {
	from, to, ok := h.parseDateRange(c)
	if !ok {
		return
	}
	stats, err := h.OrderService.Statistics(from, to)
	if err != nil {
		respondServiceError(c, err, "error.internal")
		return
	}
	response.Success(c, stats)
}

// GetTopSelling 销量排行
func (h *Handler) GetTopSelling(c *gin.Context) {
	limit, _ := strconv.Atoi(c.DefaultQuery("limit", "0"))
	items, err := h.OrderService.TopSelling(c.Query("type"), limit)
	if err != nil {
		respondServiceError(c, err, "error.internal")
		return
	}
	response.Success(c, items)
}

// StreamOrders 员工订单实时推送（SSE）
func (h *Handler) StreamOrders(c *gin.Context) {
	if !h.Config.Notify.Realtime.Enabled {
		respondError(c, response.CodeNotFound, "error.realtime_unavailable", nil)
		return
	}
	heartbeat := time.Duration(h.Config.Notify.Realtime.HeartbeatSeconds) * time.Second
	handlershared.StreamChannel(c, h.Broker, realtime.EmployeesChannel(), heartbeat)
}
