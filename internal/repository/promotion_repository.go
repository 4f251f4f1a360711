package repository

import (
	"errors"
	"strings"
	"time"

	"github.com/foodtruck-next/internal/constants"
	"github.com/foodtruck-next/internal/models"

	"gorm.io/gorm"
)

// PromotionRepository 促销数据访问接口
type PromotionRepository interface {
	GetByID(id uint) (*models.Promotion, error)
	Create(promotion *models.Promotion) error
	Update(promotion *models.Promotion) error
	Delete(id uint) error
	ReplaceWeeklyRules(promotionID uint, rules []models.PromotionWeeklyRule) error
	ReplaceProducts(promotion *models.Promotion, products []models.Product) error
	ExistsActiveByName(name string, excludeID uint) (bool, error)
	List(filter PromotionListFilter) ([]models.Promotion, int64, error)
	ListActive() ([]models.Promotion, error)
	SearchActiveByName(keyword string) ([]models.Promotion, error)
	ListByType(promotionType string) ([]models.Promotion, error)
	ListExpired(today time.Time) ([]models.Promotion, error)
	ListExpiredActive(today time.Time) ([]models.Promotion, error)
	ListExpiringBetween(from, to time.Time) ([]models.Promotion, error)
	ListByProduct(productID uint) ([]models.Promotion, error)
	CountByType(promotionType string) (int64, error)
	CountByProduct(productID uint) (int64, error)
	DeactivateByIDs(ids []uint) (int64, error)
	Transaction(fn func(tx *gorm.DB) error) error
	WithTx(tx *gorm.DB) PromotionRepository
}

// PromotionListFilter 促销列表筛选
type PromotionListFilter struct {
	Keyword  string
	Type     string
	IsActive *bool
	Page     int
	PageSize int
}

// GormPromotionRepository GORM 实现
type GormPromotionRepository struct {
	db *gorm.DB
}

// NewPromotionRepository 创建促销仓库
func NewPromotionRepository(db *gorm.DB) *GormPromotionRepository {
	return &GormPromotionRepository{db: db}
}

// WithTx 绑定事务
func (r *GormPromotionRepository) WithTx(tx *gorm.DB) PromotionRepository {
	if tx == nil {
		return r
	}
	return &GormPromotionRepository{db: tx}
}

// Transaction 执行事务
func (r *GormPromotionRepository) Transaction(fn func(tx *gorm.DB) error) error {
	if fn == nil {
		return nil
	}
	return r.db.Transaction(fn)
}

func (r *GormPromotionRepository) withAssociations(query *gorm.DB) *gorm.DB {
	return query.
		Preload("WeeklyRules", func(db *gorm.DB) *gorm.DB {
			return db.Order("id asc")
		}).
		Preload("Products", func(db *gorm.DB) *gorm.DB {
			return db.Order("products.id asc")
		})
}

// GetByID 根据 ID 获取促销（含每周时段与关联菜品）
func (r *GormPromotionRepository) GetByID(id uint) (*models.Promotion, error) {
	var promotion models.Promotion
	if err := r.withAssociations(r.db).First(&promotion, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &promotion, nil
}

// Create 创建促销，同时写入每周时段与菜品关联
func (r *GormPromotionRepository) Create(promotion *models.Promotion) error {
	return r.db.Create(promotion).Error
}

// Update 更新促销基础字段，关联集合通过 Replace* 单独维护
func (r *GormPromotionRepository) Update(promotion *models.Promotion) error {
	return r.db.Omit("WeeklyRules", "Products").Save(promotion).Error
}

// Delete 删除促销及其每周时段、菜品关联
func (r *GormPromotionRepository) Delete(id uint) error {
	if id == 0 {
		return nil
	}
	if err := r.db.Where("promotion_id = ?", id).Delete(&models.PromotionWeeklyRule{}).Error; err != nil {
		return err
	}
	if err := r.db.Model(&models.Promotion{ID: id}).Association("Products").Clear(); err != nil {
		return err
	}
	return r.db.Delete(&models.Promotion{}, id).Error
}

// ReplaceWeeklyRules 整体替换每周时段（先删后插）
func (r *GormPromotionRepository) ReplaceWeeklyRules(promotionID uint, rules []models.PromotionWeeklyRule) error {
	if promotionID == 0 {
		return nil
	}
	if err := r.db.Where("promotion_id = ?", promotionID).Delete(&models.PromotionWeeklyRule{}).Error; err != nil {
		return err
	}
	if len(rules) == 0 {
		return nil
	}
	rows := make([]models.PromotionWeeklyRule, 0, len(rules))
	for _, rule := range rules {
		rule.ID = 0
		rule.PromotionID = promotionID
		rows = append(rows, rule)
	}
	return r.db.Create(&rows).Error
}

// ReplaceProducts 整体替换关联菜品
func (r *GormPromotionRepository) ReplaceProducts(promotion *models.Promotion, products []models.Product) error {
	if promotion == nil || promotion.ID == 0 {
		return nil
	}
	return r.db.Model(promotion).Association("Products").Replace(products)
}

// ExistsActiveByName 启用中的促销是否已使用该名称（忽略大小写）
func (r *GormPromotionRepository) ExistsActiveByName(name string, excludeID uint) (bool, error) {
	var count int64
	query := r.db.Model(&models.Promotion{}).
		Where("is_active = ? AND LOWER(name) = ?", true, strings.ToLower(strings.TrimSpace(name)))
	if excludeID != 0 {
		query = query.Where("id <> ?", excludeID)
	}
	if err := query.Count(&count).Error; err != nil {
		return false, err
	}
	return count > 0, nil
}

// List 促销分页列表
func (r *GormPromotionRepository) List(filter PromotionListFilter) ([]models.Promotion, int64, error) {
	query := r.db.Model(&models.Promotion{})
	if keyword := strings.TrimSpace(filter.Keyword); keyword != "" {
		condition, argCount := buildContainsCondition(r.db, "name", "description")
		query = query.Where(condition, repeatLikeArgs(containsPattern(keyword), argCount)...)
	}
	if promotionType := strings.TrimSpace(filter.Type); promotionType != "" {
		query = query.Where("type = ?", promotionType)
	}
	if filter.IsActive != nil {
		query = query.Where("is_active = ?", *filter.IsActive)
	}

	query, total, err := countAndPage(query, filter.Page, filter.PageSize)
	if err != nil {
		return nil, 0, err
	}

	var promotions []models.Promotion
	if err := r.withAssociations(query).Order("id desc").Find(&promotions).Error; err != nil {
		return nil, 0, err
	}
	return promotions, total, nil
}

// ListActive 全部启用中的促销
func (r *GormPromotionRepository) ListActive() ([]models.Promotion, error) {
	return r.find(r.db.Where("is_active = ?", true))
}

// SearchActiveByName 按名称模糊搜索启用中的促销
func (r *GormPromotionRepository) SearchActiveByName(keyword string) ([]models.Promotion, error) {
	condition, argCount := buildContainsCondition(r.db, "name")
	query := r.db.Where("is_active = ?", true).Where(condition, repeatLikeArgs(containsPattern(keyword), argCount)...)
	return r.find(query)
}

// ListByType 按类型查询
func (r *GormPromotionRepository) ListByType(promotionType string) ([]models.Promotion, error) {
	return r.find(r.db.Where("type = ?", promotionType))
}

// ListExpired 结束日期早于 today 的临时促销
func (r *GormPromotionRepository) ListExpired(today time.Time) ([]models.Promotion, error) {
	return r.find(r.db.Where("type = ? AND ends_at IS NOT NULL AND ends_at < ?", constants.PromotionTypeTemporary, today))
}

// ListExpiredActive 已过期但仍启用的临时促销（过期停用任务使用）
func (r *GormPromotionRepository) ListExpiredActive(today time.Time) ([]models.Promotion, error) {
	var promotions []models.Promotion
	err := r.db.
		Where("type = ? AND is_active = ? AND ends_at IS NOT NULL AND ends_at < ?", constants.PromotionTypeTemporary, true, today).
		Order("id asc").
		Find(&promotions).Error
	if err != nil {
		return nil, err
	}
	return promotions, nil
}

// ListExpiringBetween 结束日期落在 [from, to] 的启用临时促销
func (r *GormPromotionRepository) ListExpiringBetween(from, to time.Time) ([]models.Promotion, error) {
	return r.find(r.db.Where(
		"type = ? AND is_active = ? AND ends_at >= ? AND ends_at <= ?",
		constants.PromotionTypeTemporary, true, from, to,
	))
}

// ListByProduct 关联了某菜品的促销
func (r *GormPromotionRepository) ListByProduct(productID uint) ([]models.Promotion, error) {
	query := r.db.Where("id IN (?)", r.db.Table("promotion_products").Select("promotion_id").Where("product_id = ?", productID))
	return r.find(query)
}

// CountByType 按类型统计数量
func (r *GormPromotionRepository) CountByType(promotionType string) (int64, error) {
	var count int64
	if err := r.db.Model(&models.Promotion{}).Where("type = ?", promotionType).Count(&count).Error; err != nil {
		return 0, err
	}
	return count, nil
}

// CountByProduct 统计引用某菜品的促销数量
func (r *GormPromotionRepository) CountByProduct(productID uint) (int64, error) {
	var count int64
	err := r.db.Table("promotion_products").
		Joins("JOIN promotions ON promotions.id = promotion_products.promotion_id AND promotions.deleted_at IS NULL").
		Where("promotion_products.product_id = ?", productID).
		Count(&count).Error
	if err != nil {
		return 0, err
	}
	return count, nil
}

// DeactivateByIDs 批量停用
func (r *GormPromotionRepository) DeactivateByIDs(ids []uint) (int64, error) {
	if len(ids) == 0 {
		return 0, nil
	}
	result := r.db.Model(&models.Promotion{}).
		Where("id IN ? AND is_active = ?", ids, true).
		Updates(map[string]interface{}{"is_active": false, "updated_at": time.Now()})
	return result.RowsAffected, result.Error
}

func (r *GormPromotionRepository) find(query *gorm.DB) ([]models.Promotion, error) {
	var promotions []models.Promotion
	if err := r.withAssociations(query).Order("id desc").Find(&promotions).Error; err != nil {
		return nil, err
	}
	return promotions, nil
}
