// Package action turns per-frame gestures into discrete input actions and
// applies them to an input sink.
package action

import (
	"fmt"
	"strings"

	"github.com/ayusman/mudra/internal/cursor"
)

// Kind names an action.
type Kind string

const (
	KindCursorMove Kind = "cursor_move"
	KindClick      Kind = "click"
	KindRightClick Kind = "right_click"
	KindKeyPress   Kind = "key_press"
	KindHotkey     Kind = "hotkey"
	KindToggleMode Kind = "toggle_mode"
	KindStroke     Kind = "stroke"
	KindClear      Kind = "clear"
)

// Event is one action produced for a frame. Only the fields relevant to Kind
// are set.
type Event struct {
	Kind  Kind    `json:"kind"`
	X     float64 `json:"x,omitempty"`
	Y     float64 `json:"y,omitempty"`
	Key   string  `json:"key,omitempty"`
	Combo string  `json:"combo,omitempty"`
	Mode  string  `json:"mode,omitempty"`
	Brush Brush   `json:"brush,omitzero"`
}

// Brush is the pen a stroke is drawn with.
type Brush struct {
	Color string `json:"color"`
	Size  int    `json:"size"`
}

// CursorMove moves the pointer to a screen position.
func CursorMove(p cursor.Point) Event {
	return Event{Kind: KindCursorMove, X: p.X, Y: p.Y}
}

// Click is a primary button click at the current pointer position.
func Click() Event {
	return Event{Kind: KindClick}
}

// RightClick is a secondary button click at the current pointer position.
func RightClick() Event {
	return Event{Kind: KindRightClick}
}

// KeyPress taps a single key.
func KeyPress(key string) Event {
	return Event{Kind: KindKeyPress, Key: key}
}

// Hotkey sends a key combination written as "mod+mod+key".
func Hotkey(combo string) Event {
	return Event{Kind: KindHotkey, Combo: combo}
}

// ToggleMode asks the application to switch to the named mode.
func ToggleMode(mode string) Event {
	return Event{Kind: KindToggleMode, Mode: mode}
}

// Stroke extends the drawing at a camera-space position.
func Stroke(p cursor.Point, b Brush) Event {
	return Event{Kind: KindStroke, X: p.X, Y: p.Y, Brush: b}
}

// Clear wipes the drawing canvas.
func Clear() Event {
	return Event{Kind: KindClear}
}

// Discrete reports whether the event is a one-shot action rather than
// continuous pointer motion.
func (e Event) Discrete() bool {
	return e.Kind != KindCursorMove
}

// Point returns the event position.
func (e Event) Point() cursor.Point {
	return cursor.Point{X: e.X, Y: e.Y}
}

func (e Event) String() string {
	switch e.Kind {
	case KindCursorMove, KindStroke:
		return fmt.Sprintf("%s(%.0f,%.0f)", e.Kind, e.X, e.Y)
	case KindKeyPress:
		return fmt.Sprintf("%s(%s)", e.Kind, e.Key)
	case KindHotkey:
		return fmt.Sprintf("%s(%s)", e.Kind, e.Combo)
	case KindToggleMode:
		return fmt.Sprintf("%s(%s)", e.Kind, e.Mode)
	default:
		return string(e.Kind)
	}
}

// SplitCombo splits "ctrl+cmd+left" into the key and its modifiers.
func SplitCombo(combo string) (key string, modifiers []string) {
	parts := strings.Split(strings.ToLower(strings.TrimSpace(combo)), "+")
	var keep []string
	for _, p := range parts {
		if p = strings.TrimSpace(p); p != "" {
			keep = append(keep, p)
		}
	}
	if len(keep) == 0 {
		return "", nil
	}
	return keep[len(keep)-1], keep[:len(keep)-1]
}
