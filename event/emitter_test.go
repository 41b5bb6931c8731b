package event

import (
	"errors"
	"reflect"
	"testing"
)

func TestEmitter_OnAndEmit(t *testing.T) {
	e := NewEmitter()

	var got []any
	if _, err := e.On("routes", func(state any) { got = append(got, state) }); err != nil {
		t.Fatalf("On error: %v", err)
	}

	if n := e.Emit("routes", "/"); n != 1 {
		t.Errorf("Emit delivered to %d listeners, want 1", n)
	}
	if n := e.Emit("other", "x"); n != 0 {
		t.Errorf("Emit on unknown channel delivered to %d, want 0", n)
	}
	if !reflect.DeepEqual(got, []any{"/"}) {
		t.Errorf("received %v, want [/]", got)
	}
}

func TestEmitter_SubscriptionOrder(t *testing.T) {
	e := NewEmitter()

	var order []int
	for i := 1; i <= 3; i++ {
		i := i
		if _, err := e.On("c", func(any) { order = append(order, i) }); err != nil {
			t.Fatalf("On error: %v", err)
		}
	}

	e.Emit("c", nil)
	if !reflect.DeepEqual(order, []int{1, 2, 3}) {
		t.Errorf("delivery order = %v, want [1 2 3]", order)
	}
}

func TestEmitter_Validation(t *testing.T) {
	e := NewEmitter()

	if _, err := e.On("c", nil); !errors.Is(err, ErrNilListener) {
		t.Errorf("nil listener: got %v, want ErrNilListener", err)
	}
	if _, err := e.On("", func(any) {}); !errors.Is(err, ErrInvalidChannel) {
		t.Errorf("empty channel: got %v, want ErrInvalidChannel", err)
	}
	if err := e.Off(nil); !errors.Is(err, ErrInvalidSubscription) {
		t.Errorf("nil subscription: got %v, want ErrInvalidSubscription", err)
	}
}

func TestEmitter_Off(t *testing.T) {
	e := NewEmitter()

	calls := 0
	sub, err := e.On("c", func(any) { calls++ })
	if err != nil {
		t.Fatalf("On error: %v", err)
	}
	if sub.ID() == "" || sub.Channel() != "c" || !sub.IsActive() {
		t.Fatalf("unexpected subscription: id=%q channel=%q active=%v", sub.ID(), sub.Channel(), sub.IsActive())
	}

	if err := e.Off(sub); err != nil {
		t.Fatalf("Off error: %v", err)
	}
	if sub.IsActive() {
		t.Error("subscription should be inactive after Off")
	}
	if err := e.Off(sub); !errors.Is(err, ErrSubscriptionNotFound) {
		t.Errorf("second Off: got %v, want ErrSubscriptionNotFound", err)
	}

	e.Emit("c", nil)
	if calls != 0 {
		t.Errorf("listener called %d times after Off", calls)
	}
	if e.ListenerCount("c") != 0 || e.Count() != 0 {
		t.Errorf("counts after Off: channel=%d total=%d", e.ListenerCount("c"), e.Count())
	}
}

func TestEmitter_Once(t *testing.T) {
	e := NewEmitter()

	calls := 0
	sub, err := e.Once("c", func(any) { calls++ })
	if err != nil {
		t.Fatalf("Once error: %v", err)
	}
	if !sub.Once() {
		t.Error("Once() should report true")
	}

	e.Emit("c", nil)
	e.Emit("c", nil)

	if calls != 1 {
		t.Errorf("once listener called %d times, want 1", calls)
	}
	if e.Count() != 0 {
		t.Errorf("Count() = %d after once delivery, want 0", e.Count())
	}
}

func TestEmitter_UnsubscribeDuringEmit(t *testing.T) {
	e := NewEmitter()

	var second *Subscription
	calls := 0
	if _, err := e.On("c", func(any) {
		if err := e.Off(second); err != nil {
			t.Errorf("Off during emit: %v", err)
		}
	}); err != nil {
		t.Fatalf("On error: %v", err)
	}
	second, _ = e.On("c", func(any) { calls++ })

	e.Emit("c", nil)
	if calls != 0 {
		t.Errorf("listener removed mid-emit was called %d times", calls)
	}
}

func TestEmitter_SubscribeDuringEmit(t *testing.T) {
	e := NewEmitter()

	added := 0
	if _, err := e.On("c", func(any) {
		_, _ = e.On("c", func(any) { added++ })
	}); err != nil {
		t.Fatalf("On error: %v", err)
	}

	e.Emit("c", nil)
	if added != 0 {
		t.Error("listener added during emit should not receive the same emission")
	}
	if e.ListenerCount("c") != 2 {
		t.Errorf("ListenerCount = %d, want 2", e.ListenerCount("c"))
	}
}

func TestEmitter_ReentrantEmit(t *testing.T) {
	e := NewEmitter()

	var order []string
	_, _ = e.On("outer", func(any) {
		order = append(order, "outer")
		e.Emit("inner", nil)
	})
	_, _ = e.On("inner", func(any) { order = append(order, "inner") })

	e.Emit("outer", nil)
	if !reflect.DeepEqual(order, []string{"outer", "inner"}) {
		t.Errorf("order = %v", order)
	}
}

func TestEmitter_OffChannelAndClear(t *testing.T) {
	e := NewEmitter()
	a, _ := e.On("a", func(any) {})
	_, _ = e.On("a", func(any) {})
	_, _ = e.On("b", func(any) {})

	if got := e.Channels(); !reflect.DeepEqual(got, []string{"a", "b"}) {
		t.Errorf("Channels() = %v", got)
	}

	if n := e.OffChannel("a"); n != 2 {
		t.Errorf("OffChannel removed %d, want 2", n)
	}
	if a.IsActive() {
		t.Error("subscriptions removed by OffChannel should be inactive")
	}
	if e.Count() != 1 {
		t.Errorf("Count() = %d, want 1", e.Count())
	}

	e.Clear()
	if e.Count() != 0 || e.Channels() != nil {
		t.Errorf("after Clear: count=%d channels=%v", e.Count(), e.Channels())
	}
}
