package service

import (
	"strings"

	"github.com/foodtruck-next/internal/logger"
	"github.com/foodtruck-next/internal/models"
	"github.com/foodtruck-next/internal/repository"
)

// CategoryService 分类业务服务
type CategoryService struct {
	repo repository.CategoryRepository
}

// NewCategoryService 创建分类服务
func NewCategoryService(repo repository.CategoryRepository) *CategoryService {
	return &CategoryService{repo: repo}
}

// CreateCategoryInput 创建/更新分类输入
type CreateCategoryInput struct {
	Name        string
	Description string
	IsActive    *bool
	SortOrder   int
}

// ListPublic 启用中的分类
func (s *CategoryService) ListPublic() ([]models.Category, error) {
	return s.repo.List(true)
}

// ListAdmin 全部分类
func (s *CategoryService) ListAdmin() ([]models.Category, error) {
	return s.repo.List(false)
}

// Create 创建分类
func (s *CategoryService) Create(input CreateCategoryInput) (*models.Category, error) {
	name := strings.TrimSpace(input.Name)
	if name == "" {
		return nil, ErrCategoryInvalid
	}
	if err := s.ensureNameAvailable(name, 0); err != nil {
		return nil, err
	}

	isActive := true
	if input.IsActive != nil {
		isActive = *input.IsActive
	}
	category := models.Category{
		Name:        name,
		Description: strings.TrimSpace(input.Description),
		IsActive:    isActive,
		SortOrder:   input.SortOrder,
	}
	if err := s.repo.Create(&category); err != nil {
		return nil, err
	}
	logger.Infow("category_created", "category_id", category.ID, "name", category.Name)
	return &category, nil
}

// Update 更新分类
func (s *CategoryService) Update(id uint, input CreateCategoryInput) (*models.Category, error) {
	category, err := s.load(id)
	if err != nil {
		return nil, err
	}
	name := strings.TrimSpace(input.Name)
	if name == "" {
		return nil, ErrCategoryInvalid
	}
	if err := s.ensureNameAvailable(name, id); err != nil {
		return nil, err
	}

	category.Name = name
	category.Description = strings.TrimSpace(input.Description)
	category.SortOrder = input.SortOrder
	if input.IsActive != nil {
		category.IsActive = *input.IsActive
	}
	if err := s.repo.Update(category); err != nil {
		return nil, err
	}
	return category, nil
}

// Delete 删除分类，仍有菜品时拒绝
func (s *CategoryService) Delete(id uint) error {
	if _, err := s.load(id); err != nil {
		return err
	}
	count, err := s.repo.CountProducts(id)
	if err != nil {
		return err
	}
	if count > 0 {
		return ErrCategoryInUse
	}
	if err := s.repo.Delete(id); err != nil {
		return err
	}
	logger.Infow("category_deleted", "category_id", id)
	return nil
}

func (s *CategoryService) load(id uint) (*models.Category, error) {
	if id == 0 {
		return nil, ErrCategoryNotFound
	}
	category, err := s.repo.GetByID(id)
	if err != nil {
		return nil, err
	}
	if category == nil {
		return nil, ErrCategoryNotFound
	}
	return category, nil
}

func (s *CategoryService) ensureNameAvailable(name string, excludeID uint) error {
	count, err := s.repo.CountByName(name, excludeID)
	if err != nil {
		return err
	}
	if count > 0 {
		return ErrCategoryExists
	}
	return nil
}
