package public

import (
	"strconv"
	"strings"

	handlershared "github.com/foodtruck-next/internal/http/handlers/shared"
	"github.com/foodtruck-next/internal/http/response"
	"github.com/foodtruck-next/internal/service"

	"github.com/gin-gonic/gin"
)

// GetCategories 获取启用的分类列表
func (h *Handler) GetCategories(c *gin.Context) {
	categories, err := h.CategoryService.ListPublic()
	if err != nil {
		respondServiceError(c, err, "error.internal")
		return
	}
	response.Success(c, categories)
}

// GetProducts 获取在售菜品列表
func (h *Handler) GetProducts(c *gin.Context) {
	page, pageSize := handlershared.ParsePageQuery(c)
	var categoryID uint
	if raw := strings.TrimSpace(c.Query("category_id")); raw != "" {
		parsed, err := strconv.ParseUint(raw, 10, 64)
		if err != nil {
			respondError(c, response.CodeBadRequest, "error.bad_request", err)
			return
		}
		categoryID = uint(parsed)
	}

	products, total, err := h.ProductService.ListPublic(categoryID, c.Query("search"), page, pageSize)
	if err != nil {
		respondServiceError(c, err, "error.internal")
		return
	}
	response.SuccessWithPage(c, products, response.BuildPagination(page, pageSize, total))
}

// GetProduct 获取在售菜品详情
func (h *Handler) GetProduct(c *gin.Context) {
	id, ok := handlershared.ParseIDParam(c, "id")
	if !ok {
		return
	}
	product, err := h.ProductService.GetPublicByID(id)
	if err != nil {
		respondServiceError(c, err, "error.internal")
		return
	}
	response.Success(c, product)
}

// GetCurrentPromotions 今天有效的促销
func (h *Handler) GetCurrentPromotions(c *gin.Context) {
	promotions, err := h.PromotionService.ListCurrentlyValid()
	if err != nil {
		respondServiceError(c, err, "error.internal")
		return
	}
	response.Success(c, promotions)
}

// GetRedeemablePromotions 此刻可下单的促销
func (h *Handler) GetRedeemablePromotions(c *gin.Context) {
	promotions, err := h.PromotionService.ListRedeemableNow()
	if err != nil {
		respondServiceError(c, err, "error.internal")
		return
	}
	response.Success(c, promotions)
}

// GetActivePromotions 全部启用中的促销
func (h *Handler) GetActivePromotions(c *gin.Context) {
	promotions, err := h.PromotionService.ListActive()
	if err != nil {
		respondServiceError(c, err, "error.internal")
		return
	}
	response.Success(c, promotions)
}

// SearchPromotions 按名称搜索启用中的促销
func (h *Handler) SearchPromotions(c *gin.Context) {
	keyword := strings.TrimSpace(c.Query("q"))
	if keyword == "" {
		respondError(c, response.CodeBadRequest, "error.bad_request", nil)
		return
	}
	promotions, err := h.PromotionService.SearchActiveByName(keyword)
	if err != nil {
		respondServiceError(c, err, "error.internal")
		return
	}
	response.Success(c, promotions)
}

// GetPromotion 获取启用中的促销详情
func (h *Handler) GetPromotion(c *gin.Context) {
	id, ok := handlershared.ParseIDParam(c, "id")
	if !ok {
		return
	}
	promotion, err := h.PromotionService.GetByID(id)
	if err != nil {
		respondServiceError(c, err, "error.internal")
		return
	}
	if !promotion.IsActive {
		respondServiceError(c, service.ErrPromotionNotFound, "error.internal")
		return
	}
	response.Success(c, promotion)
}
