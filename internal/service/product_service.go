package service

import (
	"mime/multipart"
	"strings"

	"github.com/foodtruck-next/internal/logger"
	"github.com/foodtruck-next/internal/models"
	"github.com/foodtruck-next/internal/repository"
)

// ProductService 菜品业务服务
type ProductService struct {
	repo          repository.ProductRepository
	categoryRepo  repository.CategoryRepository
	promotionRepo repository.PromotionRepository
	storage       ImageStorage
}

// NewProductService 创建菜品服务
func NewProductService(repo repository.ProductRepository, categoryRepo repository.CategoryRepository, promotionRepo repository.PromotionRepository, storage ImageStorage) *ProductService {
	return &ProductService{
		repo:          repo,
		categoryRepo:  categoryRepo,
		promotionRepo: promotionRepo,
		storage:       storage,
	}
}

// CreateProductInput 创建/更新菜品输入
type CreateProductInput struct {
	CategoryID  uint
	Name        string
	Description string
	ImageURL    string
	Price       models.Money
	IsActive    *bool
	SortOrder   int
}

// ListPublic 获取在售菜品列表
func (s *ProductService) ListPublic(categoryID uint, search string, page, pageSize int) ([]models.Product, int64, error) {
	return s.repo.List(repository.ProductListFilter{
		Page:         page,
		PageSize:     pageSize,
		CategoryID:   categoryID,
		Search:       search,
		OnlyActive:   true,
		WithCategory: true,
	})
}

// GetPublicByID 获取在售菜品详情
func (s *ProductService) GetPublicByID(id uint) (*models.Product, error) {
	product, err := s.load(id)
	if err != nil {
		return nil, err
	}
	if !product.IsActive {
		return nil, ErrProductNotFound
	}
	return product, nil
}

// ListAdmin 获取后台菜品列表
func (s *ProductService) ListAdmin(categoryID uint, search string, page, pageSize int) ([]models.Product, int64, error) {
	return s.repo.List(repository.ProductListFilter{
		Page:         page,
		PageSize:     pageSize,
		CategoryID:   categoryID,
		Search:       search,
		WithCategory: true,
	})
}

// GetAdminByID 获取后台菜品详情
func (s *ProductService) GetAdminByID(id uint) (*models.Product, error) {
	return s.load(id)
}

// Create 创建菜品
func (s *ProductService) Create(input CreateProductInput) (*models.Product, error) {
	if err := s.validate(input); err != nil {
		return nil, err
	}
	isActive := true
	if input.IsActive != nil {
		isActive = *input.IsActive
	}
	product := models.Product{
		CategoryID:  input.CategoryID,
		Name:        strings.TrimSpace(input.Name),
		Description: strings.TrimSpace(input.Description),
		ImageURL:    strings.TrimSpace(input.ImageURL),
		Price:       models.NewMoneyFromDecimal(input.Price.Decimal),
		IsActive:    isActive,
		SortOrder:   input.SortOrder,
	}
	if err := s.repo.Create(&product); err != nil {
		return nil, err
	}
	logger.Infow("product_created", "product_id", product.ID, "name", product.Name)
	return &product, nil
}

// Update 更新菜品，图片地址变更时异步清理旧图
func (s *ProductService) Update(id uint, input CreateProductInput) (*models.Product, error) {
	product, err := s.load(id)
	if err != nil {
		return nil, err
	}
	if err := s.validate(input); err != nil {
		return nil, err
	}

	oldImage := product.ImageURL
	product.CategoryID = input.CategoryID
	product.Category = nil
	product.Name = strings.TrimSpace(input.Name)
	product.Description = strings.TrimSpace(input.Description)
	product.ImageURL = strings.TrimSpace(input.ImageURL)
	product.Price = models.NewMoneyFromDecimal(input.Price.Decimal)
	product.SortOrder = input.SortOrder
	if input.IsActive != nil {
		product.IsActive = *input.IsActive
	}
	if err := s.repo.Update(product); err != nil {
		return nil, err
	}
	if oldImage != "" && oldImage != product.ImageURL {
		deleteImageAsync(s.storage, oldImage, "product_image_cleanup_failed", "product_id", product.ID)
	}
	return product, nil
}

// ToggleActive 切换在售状态
func (s *ProductService) ToggleActive(id uint, active bool) (*models.Product, error) {
	product, err := s.load(id)
	if err != nil {
		return nil, err
	}
	if product.IsActive == active {
		return product, nil
	}
	product.IsActive = active
	if err := s.repo.Update(product); err != nil {
		return nil, err
	}
	logger.Infow("product_toggled", "product_id", product.ID, "is_active", active)
	return product, nil
}

// UploadImage 保存新图片并替换菜品图片
func (s *ProductService) UploadImage(id uint, file *multipart.FileHeader) (*models.Product, error) {
	product, err := s.load(id)
	if err != nil {
		return nil, err
	}
	if s.storage == nil {
		return nil, ErrUploadEmpty
	}
	url, err := s.storage.SaveFile(file, "product")
	if err != nil {
		return nil, err
	}
	oldImage := product.ImageURL
	product.ImageURL = url
	if err := s.repo.Update(product); err != nil {
		deleteImageAsync(s.storage, url, "product_image_rollback_failed", "product_id", product.ID)
		return nil, err
	}
	if oldImage != "" && oldImage != url {
		deleteImageAsync(s.storage, oldImage, "product_image_cleanup_failed", "product_id", product.ID)
	}
	return product, nil
}

// Delete 删除菜品，仍被促销引用时拒绝
func (s *ProductService) Delete(id uint) error {
	product, err := s.load(id)
	if err != nil {
		return err
	}
	if s.promotionRepo != nil {
		count, err := s.promotionRepo.CountByProduct(id)
		if err != nil {
			return err
		}
		if count > 0 {
			return ErrProductInUse
		}
	}
	if err := s.repo.Delete(id); err != nil {
		return err
	}
	deleteImageAsync(s.storage, product.ImageURL, "product_image_cleanup_failed", "product_id", product.ID)
	logger.Infow("product_deleted", "product_id", id)
	return nil
}

func (s *ProductService) validate(input CreateProductInput) error {
	if strings.TrimSpace(input.Name) == "" {
		return ErrProductInvalid
	}
	if !input.Price.Decimal.IsPositive() {
		return ErrProductInvalid
	}
	if input.CategoryID == 0 {
		return ErrCategoryNotFound
	}
	category, err := s.categoryRepo.GetByID(input.CategoryID)
	if err != nil {
		return err
	}
	if category == nil {
		return ErrCategoryNotFound
	}
	return nil
}

func (s *ProductService) load(id uint) (*models.Product, error) {
	if id == 0 {
		return nil, ErrProductNotFound
	}
	product, err := s.repo.GetByID(id)
	if err != nil {
		return nil, err
	}
	if product == nil {
		return nil, ErrProductNotFound
	}
	return product, nil
}
