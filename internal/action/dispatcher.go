package action

import (
	"time"

	"github.com/ayusman/mudra/internal/cursor"
	"github.com/ayusman/mudra/internal/gesture"
)

// Config maps swipes to hotkeys and sets the click debounce.
type Config struct {
	SwipeLeft  string `koanf:"swipe_left"`
	SwipeRight string `koanf:"swipe_right"`
	SwipeUp    string `koanf:"swipe_up"`
	SwipeDown  string `koanf:"swipe_down"`

	// ClickDebounce swallows a click whose pinch run starts sooner than this
	// after the previous click. Zero disables it.
	ClickDebounce time.Duration `koanf:"click_debounce"`
}

// DefaultConfig switches virtual desktops on horizontal swipes and windows
// on vertical ones.
func DefaultConfig() Config {
	return Config{
		SwipeLeft:     "ctrl+cmd+left",
		SwipeRight:    "ctrl+cmd+right",
		SwipeUp:       "alt+tab",
		SwipeDown:     "alt+tab",
		ClickDebounce: 250 * time.Millisecond,
	}
}

// Modes are the application toggles that gate dispatch.
type Modes struct {
	MouseControl    bool `json:"mouse_control"`
	KeyboardOverlay bool `json:"keyboard_overlay"`
}

// KeyLocator finds the overlay key under a camera-space point.
type KeyLocator interface {
	KeyAt(p cursor.Point) (string, bool)
}

// Input is everything the dispatcher needs about one hand in one frame.
type Input struct {
	Gesture gesture.Gesture
	Swipe   gesture.Swipe

	// Pointer is the smoothed index tip in camera pixels.
	Pointer cursor.Point
	// Screen is Pointer mapped onto the display.
	Screen cursor.Point

	Modes Modes
	At    time.Time
}

// Dispatcher is the per-hand click state machine. Clicking and right-clicking
// are independent edge flags: an action fires on the frame a pose starts and
// not again until some other pose has been seen.
type Dispatcher struct {
	cfg  Config
	keys KeyLocator

	clicking      bool
	rightClicking bool

	lastClick      time.Time
	lastRightClick time.Time
}

// NewDispatcher creates a Dispatcher. keys may be nil when no keyboard overlay
// exists.
func NewDispatcher(cfg Config, keys KeyLocator) *Dispatcher {
	return &Dispatcher{cfg: cfg, keys: keys}
}

// Dispatch advances the state machine by one frame and returns the actions
// to perform, pointer motion first.
func (d *Dispatcher) Dispatch(in Input) []Event {
	var events []Event

	if in.Modes.MouseControl {
		events = append(events, CursorMove(in.Screen))
	}

	if in.Gesture == gesture.Pinch {
		if !d.clicking {
			d.clicking = true
			if ev, ok := d.press(in); ok {
				events = append(events, ev)
			}
		}
	} else {
		d.clicking = false
	}

	if in.Gesture == gesture.TwoFinger {
		if !d.rightClicking {
			d.rightClicking = true
			if in.Modes.MouseControl && !d.debounced(d.lastRightClick, in.At) {
				d.lastRightClick = in.At
				events = append(events, RightClick())
			}
		}
	} else {
		d.rightClicking = false
	}

	if combo := d.hotkey(in.Swipe); combo != "" {
		events = append(events, Hotkey(combo))
	}
	return events
}

// Track follows the pose edges for a frame without emitting anything.
func (d *Dispatcher) Track(g gesture.Gesture) {
	d.clicking = g == gesture.Pinch
	d.rightClicking = g == gesture.TwoFinger
}

// press resolves the start of a pinch run into a key press or a click.
func (d *Dispatcher) press(in Input) (Event, bool) {
	if d.debounced(d.lastClick, in.At) {
		return Event{}, false
	}
	if in.Modes.KeyboardOverlay && d.keys != nil {
		if key, ok := d.keys.KeyAt(in.Pointer); ok {
			d.lastClick = in.At
			return KeyPress(key), true
		}
	}
	if in.Modes.MouseControl {
		d.lastClick = in.At
		return Click(), true
	}
	return Event{}, false
}

func (d *Dispatcher) debounced(last, at time.Time) bool {
	return d.cfg.ClickDebounce > 0 && !last.IsZero() && at.Sub(last) < d.cfg.ClickDebounce
}

func (d *Dispatcher) hotkey(s gesture.Swipe) string {
	switch s {
	case gesture.SwipeLeft:
		return d.cfg.SwipeLeft
	case gesture.SwipeRight:
		return d.cfg.SwipeRight
	case gesture.SwipeUp:
		return d.cfg.SwipeUp
	case gesture.SwipeDown:
		return d.cfg.SwipeDown
	default:
		return ""
	}
}

// Clicking reports whether a pinch run is in progress.
func (d *Dispatcher) Clicking() bool {
	return d.clicking
}

// RightClicking reports whether a two-finger run is in progress.
func (d *Dispatcher) RightClicking() bool {
	return d.rightClicking
}
