package app

import (
	"context"
	"errors"
	"net/http"
	"time"
)

const defaultReadHeaderTimeout = 10 * time.Second

// HTTPService HTTP 服务封装
// SSE 长连接不设写超时，关闭时先通过 onShutdown 结束推送订阅
type HTTPService struct {
	name   string
	server *http.Server
}

// NewHTTPService 创建 HTTP 服务
func NewHTTPService(addr string, handler http.Handler, onShutdown ...func()) *HTTPService {
	server := &http.Server{
		Addr:              addr,
		Handler:           handler,
		ReadHeaderTimeout: defaultReadHeaderTimeout,
	}
	for _, hook := range onShutdown {
		if hook != nil {
			server.RegisterOnShutdown(hook)
		}
	}
	return &HTTPService{name: "http", server: server}
}

// Name 服务名称
func (s *HTTPService) Name() string {
	if s == nil || s.name == "" {
		return "http"
	}
	return s.name
}

// Start 启动服务，直到 Stop 被调用
func (s *HTTPService) Start(_ context.Context) error {
	if s == nil || s.server == nil {
		return errors.New("http server not initialized")
	}
	if err := s.server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	return nil
}

// Stop 优雅关闭，超时后强制断开剩余连接
func (s *HTTPService) Stop(ctx context.Context) error {
	if s == nil || s.server == nil {
		return nil
	}
	if err := s.server.Shutdown(ctx); err != nil {
		_ = s.server.Close()
		return err
	}
	return nil
}
