package progress

import (
	"sync"
)

// subscriberBuffer là kích thước buffer của mỗi channel subscriber.
// Subscriber chậm sẽ bị drop event thay vì chặn pipeline.
const subscriberBuffer = 16

// Broker quản lý các subscriber theo user id.
// Publish cho user không có subscriber là no-op, không phải lỗi.
type Broker struct {
	mu          sync.RWMutex
	subscribers map[string][]chan Event
}

// NewBroker tạo mới một Broker
func NewBroker() *Broker {
	return &Broker{
		subscribers: make(map[string][]chan Event),
	}
}

// Subscribe đăng ký nhận sự kiện của một user.
// Trả về channel nhận event và hàm hủy đăng ký.
// Gọi hàm hủy sẽ đóng channel — subscriber không được dùng channel sau đó.
func (b *Broker) Subscribe(userID string) (<-chan Event, func()) {
	ch := make(chan Event, subscriberBuffer)

	b.mu.Lock()
	b.subscribers[userID] = append(b.subscribers[userID], ch)
	b.mu.Unlock()

	unsubscribe := func() {
		b.mu.Lock()
		defer b.mu.Unlock()

		list := b.subscribers[userID]
		for i, c := range list {
			if c == ch {
				b.subscribers[userID] = append(list[:i], list[i+1:]...)
				close(ch)
				break
			}
		}
		if len(b.subscribers[userID]) == 0 {
			delete(b.subscribers, userID)
		}
	}

	return ch, unsubscribe
}

// Publish gửi sự kiện đến tất cả subscriber của một user.
// Không có subscriber thì bỏ qua. Subscriber đầy buffer bị drop event
// (event tiến độ là fire-and-forget, không durable).
func (b *Broker) Publish(userID string, e Event) {
	b.mu.RLock()
	defer b.mu.RUnlock()

	for _, ch := range b.subscribers[userID] {
		select {
		case ch <- e:
		default:
			// Subscriber chậm, drop event
		}
	}
}

// SubscriberCount trả về số subscriber hiện tại của một user (dùng cho test)
func (b *Broker) SubscriberCount(userID string) int {
	b.mu.RLock()
	defer b.mu.RUnlock()
	return len(b.subscribers[userID])
}
