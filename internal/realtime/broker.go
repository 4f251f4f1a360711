package realtime

import (
	"context"
	"fmt"
	"strings"
)

// Message 推送消息
type Message struct {
	Channel string
	Event   string
	Data    []byte
}

// Broker 频道消息分发
type Broker interface {
	Publish(ctx context.Context, msg Message) error
	Subscribe(ctx context.Context, channel string) (*Subscription, error)
	Close() error
}

// Subscription 频道订阅，Close 后 C 会被关闭
type Subscription struct {
	C     <-chan Message
	close func()
}

// Close 取消订阅
func (s *Subscription) Close() {
	if s == nil || s.close == nil {
		return
	}
	s.close()
}

// EmployeesChannel 员工频道
func EmployeesChannel() string {
	return "employees"
}

// UserChannel 顾客个人频道
func UserChannel(userID uint) string {
	return fmt.Sprintf("user:%d", userID)
}

func normalizeChannel(channel string) (string, error) {
	trimmed := strings.TrimSpace(channel)
	if trimmed == "" {
		return "", ErrChannelRequired
	}
	return trimmed, nil
}
