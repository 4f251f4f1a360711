package public

import "github.com/foodtruck-next/internal/provider"

// Handler 顾客端接口处理器入口
// 说明：目录、促销浏览与顾客下单相关 API。
type Handler struct {
	*provider.Container
}

// New 创建顾客端处理器
func New(c *provider.Container) *Handler {
	return &Handler{Container: c}
}
