package admin

import "github.com/foodtruck-next/internal/provider"

// Handler 员工后台接口处理器入口
// 说明：该处理器仅用于员工与管理员使用的 API。
type Handler struct {
	*provider.Container
}

// New 创建后台处理器
func New(c *provider.Container) *Handler {
	return &Handler{Container: c}
}
