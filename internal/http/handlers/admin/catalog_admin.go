package admin

import (
	"strconv"
	"strings"

	handlershared "github.com/foodtruck-next/internal/http/handlers/shared"
	"github.com/foodtruck-next/internal/http/response"
	"github.com/foodtruck-next/internal/models"
	"github.com/foodtruck-next/internal/service"

	"github.com/gin-gonic/gin"
)

// CategoryRequest 分类创建/更新请求
type CategoryRequest struct {
	Name        string `json:"name" binding:"required"`
	Description string `json:"description"`
	IsActive    *bool  `json:"is_active"`
	SortOrder   int    `json:"sort_order"`
}

func (r CategoryRequest) toInput() service.CreateCategoryInput {
	return service.CreateCategoryInput{
		Name:        r.Name,
		Description: r.Description,
		IsActive:    r.IsActive,
		SortOrder:   r.SortOrder,
	}
}

// ProductRequest 菜品创建/更新请求
type ProductRequest struct {
	CategoryID  uint         `json:"category_id" binding:"required"`
	Name        string       `json:"name" binding:"required"`
	Description string       `json:"description"`
	ImageURL    string       `json:"image_url"`
	Price       models.Money `json:"price"`
	IsActive    *bool        `json:"is_active"`
	SortOrder   int          `json:"sort_order"`
}

func (r ProductRequest) toInput() service.CreateProductInput {
	return service.CreateProductInput{
		CategoryID:  r.CategoryID,
		Name:        r.Name,
		Description: r.Description,
		ImageURL:    r.ImageURL,
		Price:       r.Price,
		IsActive:    r.IsActive,
		SortOrder:   r.SortOrder,
	}
}

// ToggleProductRequest 菜品上下架请求
type ToggleProductRequest struct {
	IsActive *bool `json:"is_active" binding:"required"`
}

// GetAdminCategories 获取分类列表 (Admin)
func (h *Handler) GetAdminCategories(c *gin.Context) {
	categories, err := h.CategoryService.ListAdmin()
	if err != nil {
		respondServiceError(c, err, "error.internal")
		return
	}
	response.Success(c, categories)
}

// CreateCategory 创建分类
func (h *Handler) CreateCategory(c *gin.Context) {
	var req CategoryRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondError(c, response.CodeBadRequest, "error.bad_request", err)
		return
	}
	category, err := h.CategoryService.Create(req.toInput())
	if err != nil {
		respondServiceError(c, err, "error.internal")
		return
	}
	response.Success(c, category)
}

// UpdateCategory 更新分类
func (h *Handler) UpdateCategory(c *gin.Context) {
	id, ok := handlershared.ParseIDParam(c, "id")
	if !ok {
		return
	}
	var req CategoryRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondError(c, response.CodeBadRequest, "error.bad_request", err)
		return
	}
	category, err := h.CategoryService.Update(id, req.toInput())
	if err != nil {
		respondServiceError(c, err, "error.internal")
		return
	}
	response.Success(c, category)
}

// DeleteCategory 删除分类
func (h *Handler) DeleteCategory(c *gin.Context) {
	id, ok := handlershared.ParseIDParam(c, "id")
	if !ok {
		return
	}
	if err := h.CategoryService.Delete(id); err != nil {
		respondServiceError(c, err, "error.internal")
		return
	}
	response.Success(c, gin.H{"deleted": true})
}

// GetAdminProducts 获取菜品列表 (Admin)
func (h *Handler) GetAdminProducts(c *gin.Context) {
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

	products, total, err := h.ProductService.ListAdmin(categoryID, c.Query("search"), page, pageSize)
	if err != nil {
		respondServiceError(c, err, "error.internal")
		return
	}
	response.SuccessWithPage(c, products, response.BuildPagination(page, pageSize, total))
}

// GetAdminProduct 获取菜品详情 (Admin)
func (h *Handler) GetAdminProduct(c *gin.Context) {
	id, ok := handlershared.ParseIDParam(c, "id")
	if !ok {
		return
	}
	product, err := h.ProductService.GetAdminByID(id)
	if err != nil {
		respondServiceError(c, err, "error.internal")
		return
	}
	response.Success(c, product)
}

// CreateProduct 创建菜品
func (h *Handler) CreateProduct(c *gin.Context) {
	var req ProductRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondError(c, response.CodeBadRequest, "error.bad_request", err)
		return
	}
	product, err := h.ProductService.Create(req.toInput())
	if err != nil {
		respondServiceError(c, err, "error.internal")
		return
	}
	response.Success(c, product)
}

// UpdateProduct 更新菜品
func (h *Handler) UpdateProduct(c *gin.Context) {
	id, ok := handlershared.ParseIDParam(c, "id")
	if !ok {
		return
	}
	var req ProductRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondError(c, response.CodeBadRequest, "error.bad_request", err)
		return
	}
	product, err := h.ProductService.Update(id, req.toInput())
	if err != nil {
		respondServiceError(c, err, "error.internal")
		return
	}
	response.Success(c, product)
}

// UpdateProductStatus 菜品上下架
func (h *Handler) UpdateProductStatus(c *gin.Context) {
	id, ok := handlershared.ParseIDParam(c, "id")
	if !ok {
		return
	}
	var req ToggleProductRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondError(c, response.CodeBadRequest, "error.bad_request", err)
		return
	}
	product, err := h.ProductService.ToggleActive(id, *req.IsActive)
	if err != nil {
		respondServiceError(c, err, "error.internal")
		return
	}
	response.Success(c, product)
}

// UploadProductImage 上传菜品图片
func (h *Handler) UploadProductImage(c *gin.Context) {
	id, ok := handlershared.ParseIDParam(c, "id")
	if !ok {
		return
	}
	file, err := c.FormFile("file")
	if err != nil {
		respondError(c, response.CodeBadRequest, "error.upload_invalid", nil)
		return
	}
	product, err := h.ProductService.UploadImage(id, file)
	if err != nil {
		respondServiceError(c, err, "error.internal")
		return
	}
	response.Success(c, product)
}

// DeleteProduct 删除菜品
func (h *Handler) DeleteProduct(c *gin.Context) {
	id, ok := handlershared.ParseIDParam(c, "id")
	if !ok {
		return
	}
	if err := h.ProductService.Delete(id); err != nil {
		respondServiceError(c, err, "error.internal")
		return
	}
	response.Success(c, gin.H{"deleted": true})
}
