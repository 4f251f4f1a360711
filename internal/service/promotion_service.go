package service

import (
	"strings"
	"time"

	"github.com/foodtruck-next/internal/constants"
	"github.com/foodtruck-next/internal/models"
	"github.com/foodtruck-next/internal/repository"
)

// PromotionService 促销查询服务
type PromotionService struct {
	promotionRepo repository.PromotionRepository
	clock         Clock
	loc           *time.Location
}

// NewPromotionService 创建促销查询服务
func NewPromotionService(promotionRepo repository.PromotionRepository, clock Clock, loc *time.Location) *PromotionService {
	if loc == nil {
		loc = time.Local
	}
	return &PromotionService{
		promotionRepo: promotionRepo,
		clock:         resolveClock(clock),
		loc:           loc,
	}
}

func (s *PromotionService) now() time.Time {
	return s.clock.Now().In(s.loc)
}

// GetByID 获取促销详情
func (s *PromotionService) GetByID(id uint) (*models.Promotion, error) {
	if id == 0 {
		return nil, ErrPromotionNotFound
	}
	promotion, err := s.promotionRepo.GetByID(id)
	if err != nil {
		return nil, err
	}
	if promotion == nil {
		return nil, ErrPromotionNotFound
	}
	return promotion, nil
}

// List 后台分页列表
func (s *PromotionService) List(filter repository.PromotionListFilter) ([]models.Promotion, int64, error) {
	filter.Type = strings.ToUpper(strings.TrimSpace(filter.Type))
	return s.promotionRepo.List(filter)
}

// ListActive 全部启用中的促销
func (s *PromotionService) ListActive() ([]models.Promotion, error) {
	return s.promotionRepo.ListActive()
}

// ListCurrentlyValid 今天有效的促销（周期促销启用即返回）
func (s *PromotionService) ListCurrentlyValid() ([]models.Promotion, error) {
	promotions, err := s.promotionRepo.ListActive()
	if err != nil {
		return nil, err
	}
	now := s.now()
	valid := make([]models.Promotion, 0, len(promotions))
	for i := range promotions {
		if IsPromotionCurrentlyValid(&promotions[i], now) {
			valid = append(valid, promotions[i])
		}
	}
	return valid, nil
}

// ListRedeemableNow 此刻可下单兑换的促销
func (s *PromotionService) ListRedeemableNow() ([]models.Promotion, error) {
	promotions, err := s.promotionRepo.ListActive()
	if err != nil {
		return nil, err
	}
	now := s.now()
	redeemable := make([]models.Promotion, 0, len(promotions))
	for i := range promotions {
		if IsPromotionRedeemableAt(&promotions[i], now) {
			redeemable = append(redeemable, promotions[i])
		}
	}
	return redeemable, nil
}

// SearchActiveByName 按名称搜索启用中的促销
func (s *PromotionService) SearchActiveByName(keyword string) ([]models.Promotion, error) {
	keyword = strings.TrimSpace(keyword)
	if keyword == "" {
		return s.promotionRepo.ListActive()
	}
	return s.promotionRepo.SearchActiveByName(keyword)
}

// ListByType 按类型查询
func (s *PromotionService) ListByType(promotionType string) ([]models.Promotion, error) {
	normalized, err := normalizePromotionType(promotionType)
	if err != nil {
		return nil, err
	}
	return s.promotionRepo.ListByType(normalized)
}

// CountByType 按类型统计
func (s *PromotionService) CountByType(promotionType string) (int64, error) {
	normalized, err := normalizePromotionType(promotionType)
	if err != nil {
		return 0, err
	}
	return s.promotionRepo.CountByType(normalized)
}

// ListExpired 已过期的临时促销
func (s *PromotionService) ListExpired() ([]models.Promotion, error) {
	return s.promotionRepo.ListExpired(CivilDate(s.now()))
}

// ListExpiringBetween 结束日期落在 [from, to] 的启用临时促销
func (s *PromotionService) ListExpiringBetween(from, to time.Time) ([]models.Promotion, error) {
	start := CivilDate(from)
	end := CivilDate(to)
	if start.After(end) {
		return nil, ErrPromotionDateRange
	}
	return s.promotionRepo.ListExpiringBetween(start, end)
}

// ListByProduct 包含某菜品的促销
func (s *PromotionService) ListByProduct(productID uint) ([]models.Promotion, error) {
	if productID == 0 {
		return nil, ErrProductNotFound
	}
	return s.promotionRepo.ListByProduct(productID)
}

func normalizePromotionType(raw string) (string, error) {
	value := strings.ToUpper(strings.TrimSpace(raw))
	switch value {
	case constants.PromotionTypeTemporary, constants.PromotionTypeRecurring:
		return value, nil
	default:
		return "", ErrPromotionTypeInvalid
	}
}
