package progress

import "testing"

func TestPublish_NoSubscriber_NoPanic(t *testing.T) {
	b := NewBroker()

	// Không có subscriber nào: publish phải là no-op
	b.Publish("user-1", Event{Type: EventProgress, VideoID: "v1", Progress: 50})

	if b.SubscriberCount("user-1") != 0 {
		t.Error("Publish không được tự tạo subscriber")
	}
}

func TestSubscribe_ReceivesOwnEventsOnly(t *testing.T) {
	b := NewBroker()

	chA, unsubA := b.Subscribe("user-a")
	defer unsubA()
	chB, unsubB := b.Subscribe("user-b")
	defer unsubB()

	b.Publish("user-a", Event{Type: EventStart, VideoID: "v1"})

	select {
	case e := <-chA:
		if e.Type != EventStart || e.VideoID != "v1" {
			t.Errorf("Event nhận được sai nội dung: %+v", e)
		}
	default:
		t.Fatal("Subscriber của user-a phải nhận được event")
	}

	select {
	case e := <-chB:
		t.Errorf("Subscriber của user-b không được nhận event của user-a, nhận %+v", e)
	default:
	}
}

func TestSubscribe_MultipleSubscribersSameUser(t *testing.T) {
	b := NewBroker()

	ch1, unsub1 := b.Subscribe("user-a")
	defer unsub1()
	ch2, unsub2 := b.Subscribe("user-a")
	defer unsub2()

	if b.SubscriberCount("user-a") != 2 {
		t.Fatalf("Phải có 2 subscriber, có %d", b.SubscriberCount("user-a"))
	}

	b.Publish("user-a", Event{Type: EventComplete, VideoID: "v1"})

	for i, ch := range []<-chan Event{ch1, ch2} {
		select {
		case e := <-ch:
			if e.Type != EventComplete {
				t.Errorf("Subscriber %d nhận sai event: %+v", i, e)
			}
		default:
			t.Errorf("Subscriber %d phải nhận được event", i)
		}
	}
}

func TestUnsubscribe_ClosesChannelAndRemoves(t *testing.T) {
	b := NewBroker()

	ch, unsub := b.Subscribe("user-a")
	unsub()

	if b.SubscriberCount("user-a") != 0 {
		t.Error("Hủy đăng ký phải gỡ subscriber khỏi broker")
	}

	if _, ok := <-ch; ok {
		t.Error("Channel phải được đóng sau khi hủy đăng ký")
	}

	// Publish sau khi hủy không được panic (gửi vào channel đã đóng)
	b.Publish("user-a", Event{Type: EventProgress, VideoID: "v1"})
}

func TestUnsubscribe_Idempotent(t *testing.T) {
	b := NewBroker()

	_, unsub := b.Subscribe("user-a")
	unsub()
	unsub() // Gọi lần hai không được panic
}

func TestPublish_SlowSubscriberDropsEvents(t *testing.T) {
	b := NewBroker()

	ch, unsub := b.Subscribe("user-a")
	defer unsub()

	// Đổ nhiều hơn buffer: các event thừa bị drop, không block
	for i := 0; i < subscriberBuffer+10; i++ {
		b.Publish("user-a", Event{Type: EventProgress, VideoID: "v1", Progress: i})
	}

	if len(ch) != subscriberBuffer {
		t.Errorf("Channel phải đầy đúng %d event, có %d", subscriberBuffer, len(ch))
	}

	// Event đầu tiên vẫn còn nguyên thứ tự
	e := <-ch
	if e.Progress != 0 {
		t.Errorf("Event đầu tiên phải là progress 0, nhận %d", e.Progress)
	}
}
