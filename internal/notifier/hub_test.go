package notifier

import (
	"testing"
	"time"
)

func TestHubFanOut(t *testing.T) {
	h := NewHub()
	a := h.Subscribe(1)
	b := h.Subscribe(1)
	other := h.Subscribe(2)
	defer h.Unsubscribe(other)

	u := Update{ShowingID: 1, AvailableTickets: 40, TotalCapacity: 50}
	h.Publish(u)

	for _, sub := range []*Subscription{a, b} {
		select {
		case got := <-sub.C:
			if got != u {
				t.Fatalf("got %+v, want %+v", got, u)
			}
		case <-time.After(time.Second):
			t.Fatal("timed out waiting for update")
		}
	}
	select {
	case got := <-other.C:
		t.Fatalf("subscriber of showing 2 received %+v", got)
	default:
	}

	h.Unsubscribe(a)
	h.Unsubscribe(b)
	if n := h.SubscriberCount(1); n != 0 {
		t.Fatalf("SubscriberCount = %d after unsubscribe, want 0", n)
	}
}

func TestHubDropsSlowSubscriber(t *testing.T) {
	h := NewHub()
	slow := h.Subscribe(7)
	fast := h.Subscribe(7)
	defer h.Unsubscribe(fast)

	// Fill the slow subscriber's buffer without draining, then publish
	// once more: the hub must drop it instead of blocking.
	for i := 0; i < subscriberBuffer+1; i++ {
		h.Publish(Update{ShowingID: 7, AvailableTickets: uint32(i)})
		for len(fast.ch) > 0 {
			<-fast.C
		}
	}

	// Drain what was buffered; the channel must then be closed.
	for i := 0; i < subscriberBuffer; i++ {
		if _, ok := <-slow.C; !ok {
			t.Fatalf("channel closed after %d of %d buffered updates", i, subscriberBuffer)
		}
	}
	select {
	case _, ok := <-slow.C:
		if ok {
			t.Fatal("expected slow subscriber channel to be closed")
		}
	case <-time.After(time.Second):
		t.Fatal("slow subscriber channel not closed")
	}
	if n := h.SubscriberCount(7); n != 1 {
		t.Fatalf("SubscriberCount = %d, want 1", n)
	}

	// The surviving subscriber still receives updates.
	h.Publish(Update{ShowingID: 7, AvailableTickets: 99})
	select {
	case got := <-fast.C:
		if got.AvailableTickets != 99 {
			t.Fatalf("got %+v, want AvailableTickets=99", got)
		}
	case <-time.After(time.Second):
		t.Fatal("surviving subscriber received nothing")
	}
}

func TestHubUnsubscribeTwice(t *testing.T) {
	h := NewHub()
	sub := h.Subscribe(3)
	h.Unsubscribe(sub)
	h.Unsubscribe(sub) // second call must be a no-op, not a double close
	if n := h.SubscriberCount(3); n != 0 {
		t.Fatalf("SubscriberCount = %d, want 0", n)
	}
}
