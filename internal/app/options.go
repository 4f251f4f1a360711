package app

import (
	"fmt"
	"os"
	"time"

	"github.com/foodtruck-next/internal/config"
	"github.com/foodtruck-next/internal/logger"

	"go.uber.org/zap"
)

// 启动模式：api 只提供接口，worker 只处理通知队列与定时停用过期促销
const (
	ModeAll    = "all"
	ModeAPI    = "api"
	ModeWorker = "worker"
)

// Options 应用启动选项
type Options struct {
	Config          *config.Config
	Logger          *zap.SugaredLogger
	Signals         []os.Signal
	ShutdownTimeout time.Duration
	Mode            string
}

// normalizeOptions 补齐默认参数
func normalizeOptions(opts Options) Options {
	if opts.Logger == nil {
		opts.Logger = logger.S()
	}
	if opts.ShutdownTimeout <= 0 {
		opts.ShutdownTimeout = 15 * time.Second
	}
	if opts.Mode == "" {
		opts.Mode = ModeAll
	}
	return opts
}

func validateMode(mode string) error {
	switch mode {
	case ModeAll, ModeAPI, ModeWorker:
		return nil
	default:
		return fmt.Errorf("unknown mode %q (expected %s, %s or %s)", mode, ModeAll, ModeAPI, ModeWorker)
	}
}

type modeSet struct {
	mode string
}

func (m modeSet) has(mode string) bool {
	return m.mode == ModeAll || m.mode == mode
}
