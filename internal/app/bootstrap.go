package app

import (
	"errors"

	"github.com/foodtruck-next/internal/cache"
	"github.com/foodtruck-next/internal/config"
	"github.com/foodtruck-next/internal/logger"
	"github.com/foodtruck-next/internal/provider"
	"github.com/foodtruck-next/internal/router"
	"github.com/foodtruck-next/internal/worker"
)

// BuildRunner 按启动模式组装 HTTP 与 worker 服务
func BuildRunner(cfg *config.Config, mode string) (*Runner, error) {
	if cfg == nil {
		return nil, errors.New("config is nil")
	}
	if err := validateMode(mode); err != nil {
		return nil, err
	}
	modes := modeSet{mode: mode}

	container := provider.NewContainer(cfg)
	logger.Infow("app_components",
		"mode", mode,
		"redis_enabled", cache.Enabled(),
		"queue_enabled", cfg.Queue.Enabled,
		"realtime_enabled", cfg.Notify.Realtime.Enabled,
		"telegram_enabled", container.TelegramNotifyService != nil,
	)

	var services []Service
	if modes.has(ModeAPI) {
		engine := router.SetupRouter(cfg, container)
		addr := cfg.Server.Host + ":" + cfg.Server.Port
		services = append(services, NewHTTPService(addr, engine, func() {
			// 结束 SSE 订阅，避免 Shutdown 等待长连接
			if container.Broker != nil {
				_ = container.Broker.Close()
			}
		}))
	}
	if modes.has(ModeWorker) {
		consumer := worker.NewConsumer(container)
		workerService, err := worker.NewService(&cfg.Queue, consumer)
		if err != nil {
			return nil, err
		}
		services = append(services, workerService)
	}

	runner := NewRunner(services...)
	runner.AddCloser("queue_client", container.QueueClient.Close)
	if !modes.has(ModeAPI) && container.Broker != nil {
		runner.AddCloser("realtime_broker", container.Broker.Close)
	}
	runner.AddCloser("redis", cache.Close)
	return runner, nil
}

// Run 应用启动入口
func Run(opts Options) error {
	opts = normalizeOptions(opts)
	if opts.Config == nil {
		return errors.New("config is nil")
	}

	runner, err := BuildRunner(opts.Config, opts.Mode)
	if err != nil {
		return err
	}

	addr := opts.Config.Server.Host + ":" + opts.Config.Server.Port
	opts.Logger.Infow("app_start", "addr", addr, "mode", opts.Mode)
	return RunWithOptions(runner, opts)
}
