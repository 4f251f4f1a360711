package service

import (
	"context"
	"time"

	"github.com/foodtruck-next/internal/logger"
	"github.com/foodtruck-next/internal/repository"
)

const promotionExpiryBatchSize = 100

// PromotionExpiryService 过期临时促销停用
type PromotionExpiryService struct {
	repo  repository.PromotionRepository
	clock Clock
	loc   *time.Location
}

// NewPromotionExpiryService 创建过期停用服务
func NewPromotionExpiryService(repo repository.PromotionRepository, clock Clock, loc *time.Location) *PromotionExpiryService {
	if loc == nil {
		loc = time.Local
	}
	return &PromotionExpiryService{repo: repo, clock: resolveClock(clock), loc: loc}
}

// DeactivateExpired 停用结束日期早于今天的启用临时促销。
// 分批提交，中途失败时已处理的批次保持停用，返回已停用数量与错误。
func (s *PromotionExpiryService) DeactivateExpired(ctx context.Context) (int, error) {
	if ctx == nil {
		ctx = context.Background()
	}
	today := CivilDate(s.clock.Now().In(s.loc))
	expired, err := s.repo.ListExpiredActive(today)
	if err != nil {
		logger.Errorw("promotion_expiry_sweep_list_failed", "today", today.Format("2006-01-02"), "error", err)
		return 0, err
	}
	if len(expired) == 0 {
		logger.Debugw("promotion_expiry_sweep_empty", "today", today.Format("2006-01-02"))
		return 0, nil
	}

	ids := make([]uint, 0, len(expired))
	for _, promotion := range expired {
		ids = append(ids, promotion.ID)
	}

	processed := 0
	for start := 0; start < len(ids); start += promotionExpiryBatchSize {
		if err := ctx.Err(); err != nil {
			logger.Warnw("promotion_expiry_sweep_interrupted", "processed", processed, "total", len(ids), "error", err)
			return processed, err
		}
		end := start + promotionExpiryBatchSize
		if end > len(ids) {
			end = len(ids)
		}
		affected, err := s.repo.DeactivateByIDs(ids[start:end])
		if err != nil {
			logger.Errorw("promotion_expiry_sweep_failed", "processed", processed, "total", len(ids), "error", err)
			return processed, err
		}
		processed += int(affected)
	}

	logger.Infow("promotion_expiry_sweep_done", "today", today.Format("2006-01-02"), "deactivated", processed)
	return processed, nil
}
