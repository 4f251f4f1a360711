package realtime

import (
	"context"
	"testing"
	"time"
)

func receive(t *testing.T, sub *Subscription) Message {
	t.Helper()
	select {
	case msg, ok := <-sub.C:
		if !ok {
			t.Fatalf("subscription closed unexpectedly")
		}
		return msg
	case <-time.After(time.Second):
		t.Fatalf("timeout waiting for message")
	}
	return Message{}
}

func TestMemoryBrokerPublishToSubscribers(t *testing.T) {
	broker := NewMemoryBroker(4)
	defer broker.Close()

	employees, err := broker.Subscribe(context.Background(), EmployeesChannel())
	if err != nil {
		t.Fatalf("subscribe employees failed: %v", err)
	}
	user, err := broker.Subscribe(context.Background(), UserChannel(7))
	if err != nil {
		t.Fatalf("subscribe user failed: %v", err)
	}

	if err := broker.Publish(context.Background(), Message{Channel: EmployeesChannel(), Event: "ORDER_CREATED", Data: []byte(`{"order_id":1}`)}); err != nil {
		t.Fatalf("publish failed: %v", err)
	}
	msg := receive(t, employees)
	if msg.Event != "ORDER_CREATED" || string(msg.Data) != `{"order_id":1}` {
		t.Fatalf("unexpected message: %+v", msg)
	}
	select {
	case msg := <-user.C:
		t.Fatalf("user channel should not receive employee message: %+v", msg)
	default:
	}
}

func TestMemoryBrokerUnsubscribeOnContextDone(t *testing.T) {
	broker := NewMemoryBroker(1)
	defer broker.Close()

	ctx, cancel := context.WithCancel(context.Background())
	sub, err := broker.Subscribe(ctx, UserChannel(1))
	if err != nil {
		t.Fatalf("subscribe failed: %v", err)
	}
	if broker.SubscriberCount(UserChannel(1)) != 1 {
		t.Fatalf("subscriber count want 1")
	}
	cancel()

	select {
	case _, ok := <-sub.C:
		if ok {
			t.Fatalf("channel should be closed after cancel")
		}
	case <-time.After(time.Second):
		t.Fatalf("timeout waiting for unsubscribe")
	}
	if broker.SubscriberCount(UserChannel(1)) != 0 {
		t.Fatalf("subscriber should be removed")
	}
	sub.Close()
}

func TestMemoryBrokerDropsWhenBufferFull(t *testing.T) {
	broker := NewMemoryBroker(1)
	defer broker.Close()

	sub, err := broker.Subscribe(context.Background(), "orders")
	if err != nil {
		t.Fatalf("subscribe failed: %v", err)
	}
	for i := 0; i < 3; i++ {
		if err := broker.Publish(context.Background(), Message{Channel: "orders", Event: "tick"}); err != nil {
			t.Fatalf("publish %d failed: %v", i, err)
		}
	}
	receive(t, sub)
	select {
	case msg := <-sub.C:
		t.Fatalf("extra message should have been dropped: %+v", msg)
	default:
	}
}

func TestMemoryBrokerRejectsEmptyChannelAndClosed(t *testing.T) {
	broker := NewMemoryBroker(1)
	if err := broker.Publish(context.Background(), Message{Channel: " "}); err != ErrChannelRequired {
		t.Fatalf("empty channel want ErrChannelRequired got %v", err)
	}
	if err := broker.Close(); err != nil {
		t.Fatalf("close failed: %v", err)
	}
	if _, err := broker.Subscribe(context.Background(), "orders"); err != ErrBrokerClosed {
		t.Fatalf("subscribe after close want ErrBrokerClosed got %v", err)
	}
}
