package admin

import (
	"strings"
	"time"

	handlershared "github.com/foodtruck-next/internal/http/handlers/shared"
	"github.com/foodtruck-next/internal/http/response"
	"github.com/foodtruck-next/internal/models"
	"github.com/foodtruck-next/internal/repository"
	"github.com/foodtruck-next/internal/service"

	"github.com/gin-gonic/gin"
)

// WeeklyRuleRequest 每周时段请求
type WeeklyRuleRequest struct {
	DayOfWeek string `json:"day_of_week"`
	StartTime string `json:"start_time"`
	EndTime   string `json:"end_time"`
}

// CreatePromotionRequest 创建促销请求，日期格式 YYYY-MM-DD
type CreatePromotionRequest struct {
	Name        string              `json:"name" binding:"required"`
	Description string              `json:"description"`
	ImageURL    string              `json:"image_url"`
	Price       models.Money        `json:"price"`
	Type        string              `json:"type" binding:"required"`
	IsActive    *bool               `json:"is_active"`
	StartsAt    string              `json:"starts_at"`
	EndsAt      string              `json:"ends_at"`
	WeeklyRules []WeeklyRuleRequest `json:"weekly_rules"`
	ProductIDs  []uint              `json:"product_ids"`
}

// UpdatePromotionRequest 更新促销请求，缺省字段保持不变
type UpdatePromotionRequest struct {
	Name        *string             `json:"name"`
	Description *string             `json:"description"`
	ImageURL    *string             `json:"image_url"`
	Price       *models.Money       `json:"price"`
	IsActive    *bool               `json:"is_active"`
	StartsAt    *string             `json:"starts_at"`
	EndsAt      *string             `json:"ends_at"`
	WeeklyRules []WeeklyRuleRequest `json:"weekly_rules"`
	ProductIDs  []uint              `json:"product_ids"`
}

func toWeeklyRuleInputs(rules []WeeklyRuleRequest) []service.WeeklyRuleInput {
	if rules == nil {
		return nil
	}
	inputs := make([]service.WeeklyRuleInput, 0, len(rules))
	for _, rule := range rules {
		inputs = append(inputs, service.WeeklyRuleInput{
			DayOfWeek: rule.DayOfWeek,
			StartTime: rule.StartTime,
			EndTime:   rule.EndTime,
		})
	}
	return inputs
}

func (h *Handler) parsePromotionDate(c *gin.Context, raw *string) (*time.Time, bool) {
	if raw == nil {
		return nil, true
	}
	parsed, err := handlershared.ParseDate(*raw, h.Config.Promotion.Location())
	if err != nil {
		respondError(c, response.CodeBadRequest, "error.date_invalid", nil)
		return nil, false
	}
	return parsed, true
}

// CreatePromotion 创建促销
func (h *Handler) CreatePromotion(c *gin.Context) {
	var req CreatePromotionRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondError(c, response.CodeBadRequest, "error.bad_request", err)
		return
	}
	startsAt, ok := h.parsePromotionDate(c, &req.StartsAt)
	if !ok {
		return
	}
	endsAt, ok := h.parsePromotionDate(c, &req.EndsAt)
	if !ok {
		return
	}

	promotion, err := h.PromotionAdminService.Create(service.CreatePromotionInput{
		Name:        req.Name,
		Description: req.Description,
		ImageURL:    req.ImageURL,
		Price:       req.Price,
		Type:        req.Type,
		IsActive:    req.IsActive,
		StartsAt:    startsAt,
		EndsAt:      endsAt,
		WeeklyRules: toWeeklyRuleInputs(req.WeeklyRules),
		ProductIDs:  req.ProductIDs,
	})
	if err != nil {
		respondServiceError(c, err, "error.internal")
		return
	}
	response.Success(c, promotion)
}

// UpdatePromotion 更新促销
func (h *Handler) UpdatePromotion(c *gin.Context) {
	id, ok := handlershared.ParseIDParam(c, "id")
	if !ok {
		return
	}
	var req UpdatePromotionRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondError(c, response.CodeBadRequest, "error.bad_request", err)
		return
	}
	startsAt, ok := h.parsePromotionDate(c, req.StartsAt)
	if !ok {
		return
	}
	endsAt, ok := h.parsePromotionDate(c, req.EndsAt)
	if !ok {
		return
	}

	promotion, err := h.PromotionAdminService.Update(id, service.UpdatePromotionInput{
		Name:        req.Name,
		Description: req.Description,
		ImageURL:    req.ImageURL,
		Price:       req.Price,
		IsActive:    req.IsActive,
		StartsAt:    startsAt,
		EndsAt:      endsAt,
		WeeklyRules: toWeeklyRuleInputs(req.WeeklyRules),
		ProductIDs:  req.ProductIDs,
	})
	if err != nil {
		respondServiceError(c, err, "error.internal")
		return
	}
	response.Success(c, promotion)
}

// TogglePromotion 切换促销启用状态
func (h *Handler) TogglePromotion(c *gin.Context) {
	id, ok := handlershared.ParseIDParam(c, "id")
	if !ok {
		return
	}
	promotion, err := h.PromotionAdminService.ToggleActive(id)
	if err != nil {
		respondServiceError(c, err, "error.internal")
		return
	}
	response.Success(c, promotion)
}

// UploadPromotionImage 上传促销图片
func (h *Handler) UploadPromotionImage(c *gin.Context) {
	id, ok := handlershared.ParseIDParam(c, "id")
	if !ok {
		return
	}
	file, err := c.FormFile("file")
	if err != nil {
		respondError(c, response.CodeBadRequest, "error.upload_invalid", nil)
		return
	}
	promotion, err := h.PromotionAdminService.UploadImage(id, file)
	if err != nil {
		respondServiceError(c, err, "error.internal")
		return
	}
	response.Success(c, promotion)
}

// DeletePromotion 删除促销（仅限已停用）
func (h *Handler) DeletePromotion(c *gin.Context) {
	id, ok := handlershared.ParseIDParam(c, "id")
	if !ok {
		return
	}
	if err := h.PromotionAdminService.Delete(id); err != nil {
		respondServiceError(c, err, "error.internal")
		return
	}
	response.Success(c, gin.H{"deleted": true})
}

// GetAdminPromotion 获取促销详情（含已停用）
func (h *Handler) GetAdminPromotion(c *gin.Context) {
	id, ok := handlershared.ParseIDParam(c, "id")
	if !ok {
		return
	}
	promotion, err := h.PromotionService.GetByID(id)
	if err != nil {
		respondServiceError(c, err, "error.internal")
		return
	}
	response.Success(c, promotion)
}

// GetAdminPromotions 获取促销分页列表
func (h *Handler) GetAdminPromotions(c *gin.Context) {
	page, pageSize := handlershared.ParsePageQuery(c)
	isActive, ok := handlershared.ParseBoolQuery(c, "is_active")
	if !ok {
		return
	}

	promotions, total, err := h.PromotionService.List(repository.PromotionListFilter{
		Keyword:  strings.TrimSpace(c.Query("keyword")),
		Type:     c.Query("type"),
		IsActive: isActive,
		Page:     page,
		PageSize: pageSize,
	})
	if err != nil {
		respondServiceError(c, err, "error.internal")
		return
	}
	response.SuccessWithPage(c, promotions, response.BuildPagination(page, pageSize, total))
}

// GetPromotionsByType 指定类型的促销
func (h *Handler) GetPromotionsByType(c *gin.Context) {
	promotions, err := h.PromotionService.ListByType(c.Param("type"))
	if err != nil {
		respondServiceError(c, err, "error.internal")
		return
	}
	response.Success(c, promotions)
}

// CountPromotionsByType 指定类型的促销数量
func (h *Handler) CountPromotionsByType(c *gin.Context) {
	promotionType := c.Query("type")
	count, err := h.PromotionService.CountByType(promotionType)
	if err != nil {
		respondServiceError(c, err, "error.internal")
		return
	}
	response.Success(c, gin.H{
		"type":  strings.ToUpper(strings.TrimSpace(promotionType)),
		"count": count,
	})
}

// GetExpiredPromotions 已过期的临时促销
func (h *Handler) GetExpiredPromotions(c *gin.Context) {
	promotions, err := h.PromotionService.ListExpired()
	if err != nil {
		respondServiceError(c, err, "error.internal")
		return
	}
	response.Success(c, promotions)
}

// GetExpiringPromotions 结束日期落在 [from, to] 内的临时促销
func (h *Handler) GetExpiringPromotions(c *gin.Context) {
	loc := h.Config.Promotion.Location()
	from, ok := handlershared.ParseDateQuery(c, "from", loc)
	if !ok {
		return
	}
	to, ok := handlershared.ParseDateQuery(c, "to", loc)
	if !ok {
		return
	}
	if from == nil || to == nil {
		respondError(c, response.CodeBadRequest, "error.date_invalid", nil)
		return
	}
	promotions, err := h.PromotionService.ListExpiringBetween(*from, *to)
	if err != nil {
		respondServiceError(c, err, "error.internal")
		return
	}
	response.Success(c, promotions)
}

// GetPromotionsByProduct 包含指定菜品的促销
func (h *Handler) GetPromotionsByProduct(c *gin.Context) {
	productID, ok := handlershared.ParseIDParam(c, "id")
	if !ok {
		return
	}
	promotions, err := h.PromotionService.ListByProduct(productID)
	if err != nil {
		respondServiceError(c, err, "error.internal")
		return
	}
	response.Success(c, promotions)
}

// RunPromotionSweep 手动触发过期促销停用（仅管理员）
func (h *Handler) RunPromotionSweep(c *gin.Context) {
	processed, err := h.PromotionExpiryService.DeactivateExpired(c.Request.Context())
	if err != nil {
		requestLog(c).Warnw("admin_promotion_sweep_failed", "processed", processed, "error", err)
		respondServiceError(c, err, "error.internal")
		return
	}
	requestLog(c).Infow("admin_promotion_sweep_done", "processed", processed)
	response.Success(c, gin.H{"processed": processed})
}
