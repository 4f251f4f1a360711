package realtime

import (
	"context"
	"sync"

	"github.com/foodtruck-next/internal/logger"
)

const defaultBufferSize = 16

// MemoryBroker 进程内分发器，单实例部署或 Redis 不可用时使用
type MemoryBroker struct {
	mu          sync.RWMutex
	subscribers map[string]map[chan Message]struct{}
	bufferSize  int
	closed      bool
}

// NewMemoryBroker 创建进程内分发器
func NewMemoryBroker(bufferSize int) *MemoryBroker {
	if bufferSize <= 0 {
		bufferSize = defaultBufferSize
	}
	return &MemoryBroker{
		subscribers: make(map[string]map[chan Message]struct{}),
		bufferSize:  bufferSize,
	}
}

// Publish 投递到频道的全部订阅者，订阅者缓冲已满时丢弃该条消息
func (b *MemoryBroker) Publish(_ context.Context, msg Message) error {
	channel, err := normalizeChannel(msg.Channel)
	if err != nil {
		return err
	}
	msg.Channel = channel

	b.mu.RLock()
	defer b.mu.RUnlock()
	if b.closed {
		return ErrBrokerClosed
	}
	for ch := range b.subscribers[channel] {
		select {
		case ch <- msg:
		default:
			logger.Warnw("realtime_subscriber_buffer_full", "channel", channel, "event", msg.Event)
		}
	}
	return nil
}

// Subscribe 订阅频道，ctx 结束时自动取消
func (b *MemoryBroker) Subscribe(ctx context.Context, channel string) (*Subscription, error) {
	channel, err := normalizeChannel(channel)
	if err != nil {
		return nil, err
	}
	ch := make(chan Message, b.bufferSize)

	b.mu.Lock()
	if b.closed {
		b.mu.Unlock()
		return nil, ErrBrokerClosed
	}
	if b.subscribers[channel] == nil {
		b.subscribers[channel] = make(map[chan Message]struct{})
	}
	b.subscribers[channel][ch] = struct{}{}
	b.mu.Unlock()

	var once sync.Once
	done := make(chan struct{})
	unsubscribe := func() {
		once.Do(func() {
			close(done)
			b.mu.Lock()
			if subs, ok := b.subscribers[channel]; ok {
				if _, exists := subs[ch]; exists {
					delete(subs, ch)
					close(ch)
				}
				if len(subs) == 0 {
					delete(b.subscribers, channel)
				}
			}
			b.mu.Unlock()
		})
	}
	if ctx != nil {
		go func() {
			select {
			case <-ctx.Done():
				unsubscribe()
			case <-done:
			}
		}()
	}
	return &Subscription{C: ch, close: unsubscribe}, nil
}

// SubscriberCount 频道当前订阅数
func (b *MemoryBroker) SubscriberCount(channel string) int {
	b.mu.RLock()
	defer b.mu.RUnlock()
	return len(b.subscribers[channel])
}

// Close 关闭全部订阅
func (b *MemoryBroker) Close() error {
	b.mu.Lock()
	defer b.mu.Unlock()
	if b.closed {
		return nil
	}
	b.closed = true
	for channel, subs := range b.subscribers {
		for ch := range subs {
			close(ch)
		}
		delete(b.subscribers, channel)
	}
	return nil
}
