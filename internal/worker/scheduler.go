package worker

import (
	"context"
	"strings"

	"github.com/foodtruck-next/internal/logger"
	"github.com/foodtruck-next/internal/provider"
	"github.com/foodtruck-next/internal/queue"

	"github.com/robfig/cron/v3"
)

const (
	defaultPromotionSweepSpec = "0 0 * * *"
	revokedTokenPurgeSpec     = "@hourly"
)

// Scheduler 定时任务调度
type Scheduler struct {
	container *provider.Container
	cron      *cron.Cron
	ctx       context.Context
	cancel    context.CancelFunc
}

// NewScheduler 创建定时任务调度器并注册任务
func NewScheduler(c *provider.Container) (*Scheduler, error) {
	ctx, cancel := context.WithCancel(context.Background())
	s := &Scheduler{
		container: c,
		cron:      cron.New(cron.WithLocation(c.Config.Promotion.Location())),
		ctx:       ctx,
		cancel:    cancel,
	}

	if c.Config.Promotion.ExpirySweepEnabled {
		spec := strings.TrimSpace(c.Config.Promotion.ExpirySweepCron)
		if spec == "" {
			spec = defaultPromotionSweepSpec
		}
		if _, err := s.cron.AddFunc(spec, s.RunPromotionSweep); err != nil {
			cancel()
			return nil, err
		}
		logger.Infow("worker_promotion_sweep_scheduled", "spec", spec)
	}
	if c.DBTokenBlacklist != nil {
		if _, err := s.cron.AddFunc(revokedTokenPurgeSpec, s.RunRevokedTokenPurge); err != nil {
			cancel()
			return nil, err
		}
	}
	return s, nil
}

// Start 启动调度
func (s *Scheduler) Start() {
	if s == nil || s.cron == nil {
		return
	}
	s.cron.Start()
}

// Stop 停止调度并等待执行中的任务结束
func (s *Scheduler) Stop(ctx context.Context) {
	if s == nil || s.cron == nil {
		return
	}
	s.cancel()
	done := s.cron.Stop().Done()
	select {
	case <-done:
	case <-ctx.Done():
		logger.Warnw("worker_scheduler_stop_timeout", "error", ctx.Err())
	}
}

// Entries 已注册任务数量
func (s *Scheduler) Entries() int {
	if s == nil || s.cron == nil {
		return 0
	}
	return len(s.cron.Entries())
}

// RunPromotionSweep 触发过期促销停用：队列可用时投递任务，否则直接执行
func (s *Scheduler) RunPromotionSweep() {
	if s.container.QueueClient.Enabled() {
		err := s.container.QueueClient.EnqueuePromotionExpireSweep(queue.PromotionExpireSweepPayload{Trigger: "cron"}, 0)
		if err == nil {
			return
		}
		logger.Warnw("worker_promotion_sweep_enqueue_failed", "error", err)
	}
	if s.container.PromotionExpiryService == nil {
		return
	}
	processed, err := s.container.PromotionExpiryService.DeactivateExpired(s.ctx)
	if err != nil {
		logger.Warnw("worker_promotion_sweep_failed", "trigger", "cron", "processed", processed, "error", err)
	}
}

// RunRevokedTokenPurge 清理过期的注销 Token 记录
func (s *Scheduler) RunRevokedTokenPurge() {
	if s.container.DBTokenBlacklist == nil {
		return
	}
	purged, err := s.container.DBTokenBlacklist.PurgeExpired()
	if err != nil {
		logger.Warnw("worker_revoked_token_purge_failed", "error", err)
		return
	}
	if purged > 0 {
		logger.Infow("worker_revoked_token_purged", "count", purged)
	}
}
