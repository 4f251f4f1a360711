package realtime

import "errors"

var (
	// ErrChannelRequired 频道为空
	ErrChannelRequired = errors.New("频道不能为空")
	// ErrBrokerClosed 分发器已关闭
	ErrBrokerClosed = errors.New("消息分发器已关闭")
)
