package metrics

import (
	"io"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
)

func TestManager_Counters(t *testing.T) {
	m := NewManager()

	m.GestureObserved("Right", "Pinch")
	m.GestureObserved("Right", "Pinch")
	m.GestureObserved("Left", "Fist")
	m.SwipeObserved("Left")
	m.ActionExecuted("click")
	m.ActionFailed("hotkey")
	m.FrameDropped("no_hands")
	m.ModeSwitched("draw")

	tests := []struct {
		name string
		c    prometheus.Collector
		want float64
	}{
		{"right pinch", m.gestures.WithLabelValues("Right", "Pinch"), 2},
		{"left fist", m.gestures.WithLabelValues("Left", "Fist"), 1},
		{"swipe", m.swipes.WithLabelValues("Left"), 1},
		{"click", m.actions.WithLabelValues("click"), 1},
		{"failed hotkey", m.actionFailures.WithLabelValues("hotkey"), 1},
		{"dropped", m.framesDropped.WithLabelValues("no_hands"), 1},
		{"mode", m.modeSwitches.WithLabelValues("draw"), 1},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := testutil.ToFloat64(tt.c); got != tt.want {
				t.Errorf("value = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestManager_FramesAndHands(t *testing.T) {
	m := NewManager(WithNamespace("test"))

	m.FrameProcessed(0.01)
	m.FrameProcessed(0.02)
	m.SetTrackedHands(2)

	if got := testutil.ToFloat64(m.framesProcessed); got != 2 {
		t.Errorf("frames processed = %v, want 2", got)
	}
	if got := testutil.ToFloat64(m.trackedHands); got != 2 {
		t.Errorf("tracked hands = %v, want 2", got)
	}
	if n := testutil.CollectAndCount(m.frameDuration); n != 1 {
		t.Errorf("histogram series = %d, want 1", n)
	}
}

func TestManager_NilIsNoop(t *testing.T) {
	var m *Manager
	m.FrameProcessed(1)
	m.FrameDropped("x")
	m.SetTrackedHands(1)
	m.GestureObserved("Right", "Fist")
	m.SwipeObserved("Up")
	m.ActionExecuted("click")
	m.ActionFailed("click")
	m.ModeSwitched("menu")
}

func TestManager_Handler(t *testing.T) {
	m := NewManager()
	m.ActionExecuted("right_click")

	rec := httptest.NewRecorder()
	m.Handler().ServeHTTP(rec, httptest.NewRequest("GET", "/metrics", nil))

	body, _ := io.ReadAll(rec.Body)
	if !strings.Contains(string(body), `mudra_actions_total{kind="right_click"} 1`) {
		t.Errorf("exposition missing actions counter:\n%s", body)
	}
}

func TestManager_SeparateRegistries(t *testing.T) {
	// Two managers must not collide on registration.
	a := NewManager()
	b := NewManager()
	a.SwipeObserved("Up")

	if got := testutil.ToFloat64(b.swipes.WithLabelValues("Up")); got != 0 {
		t.Errorf("second manager saw %v swipes, want 0", got)
	}
}
