package app

import (
	"testing"
)

func TestHub_SubscribeAndCancel(t *testing.T) {
	h := NewHub()

	if _, ok := h.Latest(); ok {
		t.Error("Latest() on an empty hub reported a snapshot")
	}

	a, cancelA := h.Subscribe(4)
	b, cancelB := h.Subscribe(4)
	if h.Subscribers() != 2 {
		t.Fatalf("Subscribers() = %d, want 2", h.Subscribers())
	}

	h.Publish(Snapshot{Seq: 1})
	if got := (<-a).Seq; got != 1 {
		t.Errorf("a got seq %d, want 1", got)
	}
	if got := (<-b).Seq; got != 1 {
		t.Errorf("b got seq %d, want 1", got)
	}

	cancelA()
	cancelA()
	if _, open := <-a; open {
		t.Error("cancelled subscription channel still open")
	}
	if h.Subscribers() != 1 {
		t.Errorf("Subscribers() = %d after cancel, want 1", h.Subscribers())
	}

	h.Publish(Snapshot{Seq: 2})
	if got := (<-b).Seq; got != 2 {
		t.Errorf("b got seq %d, want 2", got)
	}
	cancelB()
}

func TestHub_SlowSubscriberGetsLatest(t *testing.T) {
	h := NewHub()
	ch, cancel := h.Subscribe(1)
	defer cancel()

	for i := uint64(1); i <= 5; i++ {
		h.Publish(Snapshot{Seq: i})
	}

	if got := (<-ch).Seq; got != 5 {
		t.Errorf("slow subscriber got seq %d, want 5", got)
	}
	select {
	case s := <-ch:
		t.Errorf("unexpected extra snapshot %d", s.Seq)
	default:
	}

	latest, ok := h.Latest()
	if !ok || latest.Seq != 5 {
		t.Errorf("Latest() = %d, %v, want 5", latest.Seq, ok)
	}
}
