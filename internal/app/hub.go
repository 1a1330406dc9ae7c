package app

import (
	"sync"
	"time"

	"github.com/ayusman/mudra/internal/action"
	"github.com/ayusman/mudra/internal/cursor"
	"github.com/ayusman/mudra/internal/detector"
	"github.com/ayusman/mudra/internal/gesture"
	"github.com/ayusman/mudra/internal/keyboard"
	"github.com/ayusman/mudra/internal/mode"
)

// HandSnapshot is what the HUD shows for one hand.
type HandSnapshot struct {
	SessionID     string                                  `json:"session_id"`
	Hand          detector.Handedness                     `json:"hand"`
	Gesture       gesture.Gesture                         `json:"gesture"`
	Fingers       [5]bool                                 `json:"fingers"`
	FingerCount   int                                     `json:"finger_count"`
	Swipe         gesture.Swipe                           `json:"swipe,omitempty"`
	Pointer       cursor.Point                            `json:"pointer"`
	Screen        cursor.Point                            `json:"screen"`
	Analytics     gesture.Analytics                       `json:"analytics"`
	Clicking      bool                                    `json:"clicking"`
	RightClicking bool                                    `json:"right_clicking"`
	Landmarks     [detector.NumLandmarks]detector.Point3D `json:"landmarks"`
	Brush         *action.Brush                           `json:"brush,omitempty"`
}

// MenuSnapshot describes the mode menu while it is open.
type MenuSnapshot struct {
	Buttons  []mode.Button `json:"buttons"`
	Hover    mode.Name     `json:"hover,omitempty"`
	Progress float64       `json:"progress"`
}

// Snapshot is an immutable view of one processed frame. Receivers must not
// modify it.
type Snapshot struct {
	Seq     uint64         `json:"seq"`
	At      time.Time      `json:"at"`
	Width   int            `json:"width"`
	Height  int            `json:"height"`
	Active  bool           `json:"active"`
	State   State          `json:"state"`
	Hands   []HandSnapshot `json:"hands"`
	Faces   int            `json:"faces"`
	Actions []string       `json:"actions,omitempty"`
	Keys    []keyboard.Key `json:"keys,omitempty"`
	Menu    *MenuSnapshot  `json:"menu,omitempty"`
	Palette *mode.Palette  `json:"palette,omitempty"`
	Strokes []mode.Stroke  `json:"strokes,omitempty"`
}

// Hub fans snapshots out to subscribers. A slow subscriber misses
// intermediate snapshots instead of stalling the pipeline.
type Hub struct {
	mu     sync.Mutex
	subs   map[chan Snapshot]struct{}
	latest Snapshot
	has    bool
}

// NewHub creates an empty Hub.
func NewHub() *Hub {
	return &Hub{subs: make(map[chan Snapshot]struct{})}
}

// Subscribe returns a channel of snapshots and a function that ends the
// subscription and closes the channel.
func (h *Hub) Subscribe(buffer int) (<-chan Snapshot, func()) {
	if buffer < 1 {
		buffer = 1
	}
	ch := make(chan Snapshot, buffer)

	h.mu.Lock()
	h.subs[ch] = struct{}{}
	h.mu.Unlock()

	var once sync.Once
	return ch, func() {
		once.Do(func() {
			h.mu.Lock()
			delete(h.subs, ch)
			h.mu.Unlock()
			close(ch)
		})
	}
}

// Publish records s as the latest snapshot and offers it to every subscriber.
// A full subscriber has its oldest pending snapshot replaced.
func (h *Hub) Publish(s Snapshot) {
	h.mu.Lock()
	defer h.mu.Unlock()

	h.latest, h.has = s, true
	for ch := range h.subs {
		select {
		case ch <- s:
			continue
		default:
		}
		select {
		case <-ch:
		default:
		}
		select {
		case ch <- s:
		default:
		}
	}
}

// Latest returns the last published snapshot.
func (h *Hub) Latest() (Snapshot, bool) {
	h.mu.Lock()
	defer h.mu.Unlock()
	return h.latest, h.has
}

// Subscribers reports how many subscriptions are open.
func (h *Hub) Subscribers() int {
	h.mu.Lock()
	defer h.mu.Unlock()
	return len(h.subs)
}
