package realtime

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"sync"

	"github.com/foodtruck-next/internal/logger"

	"github.com/redis/go-redis/v9"
)

// RedisBroker 基于 Redis Pub/Sub 的分发器，多实例部署时各实例的 SSE 连接都能收到消息
type RedisBroker struct {
	client     *redis.Client
	prefix     string
	bufferSize int

	mu     sync.Mutex
	active map[uint64]func()
	nextID uint64
	closed bool
}

type redisEnvelope struct {
	Event string          `json:"event"`
	Data  json.RawMessage `json:"data"`
}

// NewRedisBroker 创建 Redis 分发器
func NewRedisBroker(client *redis.Client, prefix string, bufferSize int) *RedisBroker {
	prefix = strings.TrimSpace(prefix)
	if prefix == "" {
		prefix = "orders"
	}
	if bufferSize <= 0 {
		bufferSize = defaultBufferSize
	}
	return &RedisBroker{
		client:     client,
		prefix:     prefix,
		bufferSize: bufferSize,
		active:     make(map[uint64]func()),
	}
}

func (b *RedisBroker) topic(channel string) string {
	return fmt.Sprintf("%s:%s", b.prefix, channel)
}

// Publish 发布消息
func (b *RedisBroker) Publish(ctx context.Context, msg Message) error {
	channel, err := normalizeChannel(msg.Channel)
	if err != nil {
		return err
	}
	if b.client == nil {
		return ErrBrokerClosed
	}
	data := msg.Data
	if len(data) == 0 || !json.Valid(data) {
		encoded, err := json.Marshal(string(msg.Data))
		if err != nil {
			return err
		}
		data = encoded
	}
	body, err := json.Marshal(redisEnvelope{Event: msg.Event, Data: data})
	if err != nil {
		return err
	}
	return b.client.Publish(ctx, b.topic(channel), body).Err()
}

// Subscribe 订阅频道，ctx 结束或 Close 时释放 Redis 订阅
func (b *RedisBroker) Subscribe(ctx context.Context, channel string) (*Subscription, error) {
	channel, err := normalizeChannel(channel)
	if err != nil {
		return nil, err
	}
	if b.client == nil || b.isClosed() {
		return nil, ErrBrokerClosed
	}
	if ctx == nil {
		ctx = context.Background()
	}
	pubsub := b.client.Subscribe(ctx, b.topic(channel))
	if _, err := pubsub.Receive(ctx); err != nil {
		_ = pubsub.Close()
		return nil, err
	}

	out := make(chan Message, b.bufferSize)
	done := make(chan struct{})
	var once sync.Once
	var id uint64
	unsubscribe := func() {
		once.Do(func() {
			close(done)
			_ = pubsub.Close()
			b.forget(id)
		})
	}
	id, ok := b.track(unsubscribe)
	if !ok {
		unsubscribe()
		return nil, ErrBrokerClosed
	}

	go func() {
		defer close(out)
		source := pubsub.Channel()
		for {
			select {
			case <-ctx.Done():
				unsubscribe()
				return
			case <-done:
				return
			case raw, ok := <-source:
				if !ok {
					return
				}
				var envelope redisEnvelope
				if err := json.Unmarshal([]byte(raw.Payload), &envelope); err != nil {
					logger.Warnw("realtime_redis_payload_invalid", "channel", channel, "error", err)
					continue
				}
				select {
				case out <- Message{Channel: channel, Event: envelope.Event, Data: envelope.Data}:
				default:
					logger.Warnw("realtime_subscriber_buffer_full", "channel", channel, "event", envelope.Event)
				}
			}
		}
	}()

	return &Subscription{C: out, close: unsubscribe}, nil
}

func (b *RedisBroker) isClosed() bool {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.closed
}

func (b *RedisBroker) track(unsubscribe func()) (uint64, bool) {
	b.mu.Lock()
	defer b.mu.Unlock()
	if b.closed {
		return 0, false
	}
	b.nextID++
	b.active[b.nextID] = unsubscribe
	return b.nextID, true
}

func (b *RedisBroker) forget(id uint64) {
	b.mu.Lock()
	delete(b.active, id)
	b.mu.Unlock()
}

// Close 结束全部订阅，Redis 客户端由 cache 包统一管理
func (b *RedisBroker) Close() error {
	b.mu.Lock()
	if b.closed {
		b.mu.Unlock()
		return nil
	}
	b.closed = true
	pending := make([]func(), 0, len(b.active))
	for _, unsubscribe := range b.active {
		pending = append(pending, unsubscribe)
	}
	b.mu.Unlock()

	for _, unsubscribe := range pending {
		unsubscribe()
	}
	return nil
}
