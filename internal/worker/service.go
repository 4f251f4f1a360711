package worker

import (
	"context"
	"errors"

	"github.com/foodtruck-next/internal/config"
	"github.com/foodtruck-next/internal/logger"
	"github.com/foodtruck-next/internal/queue"

	"github.com/hibiken/asynq"
)

// Service 异步队列与定时任务服务
type Service struct {
	name      string
	server    *asynq.Server
	mux       *asynq.ServeMux
	scheduler *Scheduler
}

// NewService 创建 worker 服务；队列未启用时只运行定时任务
func NewService(cfg *config.QueueConfig, consumer *Consumer) (*Service, error) {
	if consumer == nil || consumer.Container == nil {
		return nil, errors.New("consumer is nil")
	}
	scheduler, err := NewScheduler(consumer.Container)
	if err != nil {
		return nil, err
	}
	svc := &Service{
		name:      "worker",
		scheduler: scheduler,
	}
	if cfg != nil && cfg.Enabled {
		opt, serverCfg := queue.BuildServerConfig(cfg)
		svc.server = asynq.NewServer(opt, serverCfg)
		svc.mux = asynq.NewServeMux()
		consumer.Register(svc.mux)
	} else {
		logger.Infow("worker_queue_disabled_scheduler_only")
	}
	return svc, nil
}

// Name 服务名称
func (s *Service) Name() string {
	if s == nil || s.name == "" {
		return "worker"
	}
	return s.name
}

// Start 启动服务
func (s *Service) Start(ctx context.Context) error {
	if s == nil || s.scheduler == nil {
		return errors.New("worker not initialized")
	}
	s.scheduler.Start()
	if s.server == nil {
		<-ctx.Done()
		return nil
	}
	return s.server.Run(s.mux)
}

// Stop 停止服务
func (s *Service) Stop(ctx context.Context) error {
	if s == nil {
		return nil
	}
	s.scheduler.Stop(ctx)
	if s.server != nil {
		s.server.Shutdown()
	}
	return nil
}
