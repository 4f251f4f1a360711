package repository

import (
	"errors"
	"strings"

	"github.com/foodtruck-next/internal/models"

	"gorm.io/gorm"
)

// ProductRepository 菜品数据访问接口
type ProductRepository interface {
	List(filter ProductListFilter) ([]models.Product, int64, error)
	GetByID(id uint) (*models.Product, error)
	ListByIDs(ids []uint) ([]models.Product, error)
	Create(product *models.Product) error
	Update(product *models.Product) error
	Delete(id uint) error
	WithTx(tx *gorm.DB) ProductRepository
}

// GormProductRepository GORM 实现
type GormProductRepository struct {
	db *gorm.DB
}

// NewProductRepository 创建菜品仓库
func NewProductRepository(db *gorm.DB) *GormProductRepository {
	return &GormProductRepository{db: db}
}

// WithTx 绑定事务
func (r *GormProductRepository) WithTx(tx *gorm.DB) ProductRepository {
	if tx == nil {
		return r
	}
	return &GormProductRepository{db: tx}
}

// List 菜品列表
func (r *GormProductRepository) List(filter ProductListFilter) ([]models.Product, int64, error) {
	query := r.db.Model(&models.Product{})
	if filter.WithCategory {
		query = query.Preload("Category")
	}
	if filter.OnlyActive {
		query = query.Where("is_active = ?", true)
	}
	if filter.CategoryID != 0 {
		query = query.Where("category_id = ?", filter.CategoryID)
	}
	if search := strings.TrimSpace(filter.Search); search != "" {
		condition, argCount := buildContainsCondition(r.db, "name", "description")
		query = query.Where(condition, repeatLikeArgs(containsPattern(search), argCount)...)
	}

	query, total, err := countAndPage(query, filter.Page, filter.PageSize)
	if err != nil {
		return nil, 0, err
	}

	var products []models.Product
	if err := query.Order("sort_order DESC, id ASC").Find(&products).Error; err != nil {
		return nil, 0, err
	}
	return products, total, nil
}

// GetByID 根据 ID 获取菜品
func (r *GormProductRepository) GetByID(id uint) (*models.Product, error) {
	var product models.Product
	if err := r.db.Preload("Category").First(&product, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &product, nil
}

// ListByIDs 批量获取菜品
func (r *GormProductRepository) ListByIDs(ids []uint) ([]models.Product, error) {
	if len(ids) == 0 {
		return []models.Product{}, nil
	}
	var products []models.Product
	if err := r.db.Where("id IN ?", ids).Order("id asc").Find(&products).Error; err != nil {
		return nil, err
	}
	return products, nil
}

// Create 创建菜品
func (r *GormProductRepository) Create(product *models.Product) error {
	return r.db.Omit("Category").Create(product).Error
}

// Update 更新菜品
func (r *GormProductRepository) Update(product *models.Product) error {
	return r.db.Omit("Category").Save(product).Error
}

// Delete 删除菜品（软删除）
func (r *GormProductRepository) Delete(id uint) error {
	return r.db.Delete(&models.Product{}, id).Error
}
