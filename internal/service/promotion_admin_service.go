package service

import (
	"mime/multipart"
	"sort"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/foodtruck-next/internal/constants"
	"github.com/foodtruck-next/internal/logger"
	"github.com/foodtruck-next/internal/models"
	"github.com/foodtruck-next/internal/repository"

	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

var minPromotionPrice = decimal.RequireFromString("0.01")

// PromotionAdminService 促销管理服务
type PromotionAdminService struct {
	repo        repository.PromotionRepository
	productRepo repository.ProductRepository
	storage     ImageStorage
	clock       Clock
	loc         *time.Location
}

// NewPromotionAdminService 创建促销管理服务
func NewPromotionAdminService(repo repository.PromotionRepository, productRepo repository.ProductRepository, storage ImageStorage, clock Clock, loc *time.Location) *PromotionAdminService {
	if loc == nil {
		loc = time.Local
	}
	return &PromotionAdminService{
		repo:        repo,
		productRepo: productRepo,
		storage:     storage,
		clock:       resolveClock(clock),
		loc:         loc,
	}
}

// WeeklyRuleInput 每周时段输入
type WeeklyRuleInput struct {
	DayOfWeek string
	StartTime string
	EndTime   string
}

// CreatePromotionInput 创建促销输入
type CreatePromotionInput struct {
	Name        string
	Description string
	ImageURL    string
	Price       models.Money
	Type        string
	IsActive    *bool
	StartsAt    *time.Time
	EndsAt      *time.Time
	WeeklyRules []WeeklyRuleInput
	ProductIDs  []uint
}

// UpdatePromotionInput 更新促销输入，nil 字段保持不变
type UpdatePromotionInput struct {
	Name        *string
	Description *string
	ImageURL    *string
	Price       *models.Money
	IsActive    *bool
	StartsAt    *time.Time
	EndsAt      *time.Time
	WeeklyRules []WeeklyRuleInput // nil 表示不修改，非 nil 时整体替换
	ProductIDs  []uint            // nil 表示不修改，非 nil 时整体替换
}

func (s *PromotionAdminService) now() time.Time {
	return s.clock.Now().In(s.loc)
}

// Create 创建促销
func (s *PromotionAdminService) Create(input CreatePromotionInput) (*models.Promotion, error) {
	name, err := normalizePromotionName(input.Name)
	if err != nil {
		return nil, err
	}
	if err := validatePromotionPrice(input.Price); err != nil {
		return nil, err
	}
	promotionType := strings.ToUpper(strings.TrimSpace(input.Type))

	promotion := &models.Promotion{
		Name:        name,
		Description: strings.TrimSpace(input.Description),
		ImageURL:    strings.TrimSpace(input.ImageURL),
		Price:       models.NewMoneyFromDecimal(input.Price.Decimal),
		Type:        promotionType,
		IsActive:    true,
	}
	if input.IsActive != nil {
		promotion.IsActive = *input.IsActive
	}

	switch promotionType {
	case constants.PromotionTypeTemporary:
		if len(input.WeeklyRules) > 0 {
			return nil, ErrPromotionRulesNotAllowed
		}
		if input.StartsAt == nil || input.EndsAt == nil {
			return nil, ErrPromotionDatesRequired
		}
		startsAt := CivilDate(*input.StartsAt)
		endsAt := CivilDate(*input.EndsAt)
		if startsAt.After(endsAt) {
			return nil, ErrPromotionDateRange
		}
		if endsAt.Before(CivilDate(s.now())) {
			return nil, ErrPromotionEndsInPast
		}
		promotion.StartsAt = &startsAt
		promotion.EndsAt = &endsAt
	case constants.PromotionTypeRecurring:
		if input.StartsAt != nil || input.EndsAt != nil {
			return nil, ErrPromotionDatesNotAllowed
		}
		if len(input.WeeklyRules) == 0 {
			return nil, ErrPromotionRulesRequired
		}
		rules, err := buildWeeklyRules(input.WeeklyRules)
		if err != nil {
			return nil, err
		}
		promotion.WeeklyRules = rules
	default:
		return nil, ErrPromotionTypeInvalid
	}

	products, err := s.resolveProducts(input.ProductIDs)
	if err != nil {
		return nil, err
	}
	promotion.Products = products

	if promotion.IsActive {
		if err := s.ensureNameAvailable(name, 0); err != nil {
			return nil, err
		}
	}

	if err := s.repo.Create(promotion); err != nil {
		return nil, err
	}
	logger.Infow("promotion_created",
		"promotion_id", promotion.ID,
		"type", promotion.Type,
		"product_count", len(products),
	)
	return s.reload(promotion.ID)
}

// Update 部分更新促销，类型创建后不可变
func (s *PromotionAdminService) Update(id uint, input UpdatePromotionInput) (*models.Promotion, error) {
	existing, err := s.load(id)
	if err != nil {
		return nil, err
	}
	oldImage := existing.ImageURL

	if input.Name != nil {
		name, err := normalizePromotionName(*input.Name)
		if err != nil {
			return nil, err
		}
		existing.Name = name
	}
	if input.Description != nil {
		existing.Description = strings.TrimSpace(*input.Description)
	}
	if input.ImageURL != nil {
		existing.ImageURL = strings.TrimSpace(*input.ImageURL)
	}
	if input.Price != nil {
		if err := validatePromotionPrice(*input.Price); err != nil {
			return nil, err
		}
		existing.Price = models.NewMoneyFromDecimal(input.Price.Decimal)
	}

	if input.StartsAt != nil || input.EndsAt != nil {
		if existing.Type != constants.PromotionTypeTemporary {
			return nil, ErrPromotionDatesNotAllowed
		}
		if input.StartsAt != nil {
			startsAt := CivilDate(*input.StartsAt)
			existing.StartsAt = &startsAt
		}
		if input.EndsAt != nil {
			endsAt := CivilDate(*input.EndsAt)
			existing.EndsAt = &endsAt
		}
		if existing.StartsAt != nil && existing.EndsAt != nil && storedDate(*existing.StartsAt).After(storedDate(*existing.EndsAt)) {
			return nil, ErrPromotionDateRange
		}
	}

	var rules []models.PromotionWeeklyRule
	if input.WeeklyRules != nil {
		if existing.Type != constants.PromotionTypeRecurring {
			return nil, ErrPromotionRulesNotAllowed
		}
		if len(input.WeeklyRules) == 0 {
			return nil, ErrPromotionRulesRequired
		}
		rules, err = buildWeeklyRules(input.WeeklyRules)
		if err != nil {
			return nil, err
		}
	}

	var products []models.Product
	if input.ProductIDs != nil {
		products, err = s.resolveProducts(input.ProductIDs)
		if err != nil {
			return nil, err
		}
	}

	if input.IsActive != nil {
		if *input.IsActive && !existing.IsActive && IsPromotionExpired(existing, s.now()) {
			return nil, ErrPromotionExpired
		}
		existing.IsActive = *input.IsActive
	}
	if existing.IsActive {
		if err := s.ensureNameAvailable(existing.Name, existing.ID); err != nil {
			return nil, err
		}
	}

	err = s.repo.Transaction(func(tx *gorm.DB) error {
		repo := s.repo.WithTx(tx)
		if err := repo.Update(existing); err != nil {
			return err
		}
		if input.WeeklyRules != nil {
			if err := repo.ReplaceWeeklyRules(existing.ID, rules); err != nil {
				return err
			}
		}
		if input.ProductIDs != nil {
			if err := repo.ReplaceProducts(existing, products); err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	if oldImage != "" && oldImage != existing.ImageURL {
		deleteImageAsync(s.storage, oldImage, "promotion_image_cleanup_failed", "promotion_id", existing.ID)
	}
	return s.reload(existing.ID)
}

// ToggleActive 切换启用状态；已过期的临时促销只能停用
func (s *PromotionAdminService) ToggleActive(id uint) (*models.Promotion, error) {
	promotion, err := s.load(id)
	if err != nil {
		return nil, err
	}
	if promotion.IsActive {
		promotion.IsActive = false
	} else {
		if IsPromotionExpired(promotion, s.now()) {
			return nil, ErrPromotionExpired
		}
		if err := s.ensureNameAvailable(promotion.Name, promotion.ID); err != nil {
			return nil, err
		}
		promotion.IsActive = true
	}
	if err := s.repo.Update(promotion); err != nil {
		return nil, err
	}
	logger.Infow("promotion_active_toggled", "promotion_id", promotion.ID, "is_active", promotion.IsActive)
	return promotion, nil
}

// Delete 删除促销，启用中的促销需先停用
func (s *PromotionAdminService) Delete(id uint) error {
	promotion, err := s.load(id)
	if err != nil {
		return err
	}
	if promotion.IsActive {
		return ErrPromotionDeleteActive
	}
	err = s.repo.Transaction(func(tx *gorm.DB) error {
		return s.repo.WithTx(tx).Delete(promotion.ID)
	})
	if err != nil {
		return err
	}
	deleteImageAsync(s.storage, promotion.ImageURL, "promotion_image_cleanup_failed", "promotion_id", promotion.ID)
	logger.Infow("promotion_deleted", "promotion_id", promotion.ID)
	return nil
}

// UploadImage 保存新图片并替换促销图片地址，旧图片异步删除
func (s *PromotionAdminService) UploadImage(id uint, file *multipart.FileHeader) (*models.Promotion, error) {
	promotion, err := s.load(id)
	if err != nil {
		return nil, err
	}
	if s.storage == nil {
		return nil, ErrUploadEmpty
	}
	url, err := s.storage.SaveFile(file, "promotion")
	if err != nil {
		return nil, err
	}
	oldImage := promotion.ImageURL
	promotion.ImageURL = url
	if err := s.repo.Update(promotion); err != nil {
		deleteImageAsync(s.storage, url, "promotion_image_rollback_failed", "promotion_id", promotion.ID)
		return nil, err
	}
	if oldImage != "" && oldImage != url {
		deleteImageAsync(s.storage, oldImage, "promotion_image_cleanup_failed", "promotion_id", promotion.ID)
	}
	return promotion, nil
}

func (s *PromotionAdminService) load(id uint) (*models.Promotion, error) {
	if id == 0 {
		return nil, ErrPromotionNotFound
	}
	promotion, err := s.repo.GetByID(id)
	if err != nil {
		return nil, err
	}
	if promotion == nil {
		return nil, ErrPromotionNotFound
	}
	return promotion, nil
}

func (s *PromotionAdminService) reload(id uint) (*models.Promotion, error) {
	return s.load(id)
}

func (s *PromotionAdminService) ensureNameAvailable(name string, excludeID uint) error {
	exists, err := s.repo.ExistsActiveByName(name, excludeID)
	if err != nil {
		return err
	}
	if exists {
		return ErrPromotionNameExists
	}
	return nil
}

// resolveProducts 加载关联菜品，缺失的 ID 全部列出
func (s *PromotionAdminService) resolveProducts(ids []uint) ([]models.Product, error) {
	unique := uniqueIDs(ids)
	if len(unique) == 0 {
		return nil, ErrPromotionProductsRequired
	}
	products, err := s.productRepo.ListByIDs(unique)
	if err != nil {
		return nil, err
	}
	found := make(map[uint]struct{}, len(products))
	for _, product := range products {
		found[product.ID] = struct{}{}
	}
	missing := make([]uint, 0)
	for _, id := range unique {
		if _, ok := found[id]; !ok {
			missing = append(missing, id)
		}
	}
	if len(missing) > 0 {
		return nil, &MissingProductsError{IDs: missing}
	}
	return products, nil
}

// buildWeeklyRules 解析并校验每周时段
func buildWeeklyRules(inputs []WeeklyRuleInput) ([]models.PromotionWeeklyRule, error) {
	windows := make([]TimeWindow, 0, len(inputs))
	for _, input := range inputs {
		window, err := NewTimeWindow(input.DayOfWeek, input.StartTime, input.EndTime)
		if err != nil {
			return nil, err
		}
		windows = append(windows, window)
	}
	if err := ValidateWeeklyRules(windows); err != nil {
		return nil, err
	}
	rules := make([]models.PromotionWeeklyRule, 0, len(windows))
	for _, window := range windows {
		rules = append(rules, window.ToRule(0))
	}
	return rules, nil
}

func normalizePromotionName(raw string) (string, error) {
	name := strings.TrimSpace(raw)
	if name == "" || utf8.RuneCountInString(name) > constants.PromotionNameMaxLength {
		return "", ErrPromotionNameInvalid
	}
	return name, nil
}

func validatePromotionPrice(price models.Money) error {
	if price.Decimal.LessThan(minPromotionPrice) {
		return ErrPromotionPriceInvalid
	}
	return nil
}

func uniqueIDs(ids []uint) []uint {
	seen := make(map[uint]struct{}, len(ids))
	result := make([]uint, 0, len(ids))
	for _, id := range ids {
		if id == 0 {
			continue
		}
		if _, ok := seen[id]; ok {
			continue
		}
		seen[id] = struct{}{}
		result = append(result, id)
	}
	sort.Slice(result, func(i, j int) bool { return result[i] < result[j] })
	return result
}
