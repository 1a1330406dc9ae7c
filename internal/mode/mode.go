// Package mode holds the interchangeable per-hand behaviours selected by the
// application: the desktop controller, the mode menu and the drawing board.
package mode

import (
	"errors"
	"fmt"
	"time"

	"github.com/ayusman/mudra/internal/action"
	"github.com/ayusman/mudra/internal/cursor"
	"github.com/ayusman/mudra/internal/gesture"
)

// ErrUnknownMode is returned by Parse for names that are not modes.
var ErrUnknownMode = errors.New("unknown mode")

// Name identifies a mode.
type Name string

const (
	Menu    Name = "menu"
	Control Name = "control"
	Draw    Name = "draw"
)

// Names lists every mode in menu order.
func Names() []Name {
	return []Name{Control, Draw, Menu}
}

// Parse validates a mode name.
func Parse(s string) (Name, error) {
	for _, n := range Names() {
		if string(n) == s {
			return n, nil
		}
	}
	return "", fmt.Errorf("%w %q", ErrUnknownMode, s)
}

// Input is one classified hand in one frame.
type Input struct {
	Gesture gesture.Gesture
	Fingers gesture.FingerState
	Swipe   gesture.Swipe

	// Pointer is the smoothed index tip in camera pixels.
	Pointer cursor.Point
	// Screen is Pointer mapped onto the display.
	Screen cursor.Point
	// Palm is the palm centre in camera pixels.
	Palm cursor.Point

	FrameWidth  int
	FrameHeight int

	Modes action.Modes
	At    time.Time
}

// Handler consumes classified frames for one hand.
type Handler interface {
	Name() Name
	Handle(in Input) []action.Event
}

// Observer is implemented by handlers that track the hand while another mode
// is active, so their edge state is current when they take over.
type Observer interface {
	Observe(in Input)
}

// Set holds one handler per mode for a single hand.
type Set struct {
	handlers map[Name]Handler
}

// NewSet creates a Set from handlers keyed by their Name.
func NewSet(handlers ...Handler) *Set {
	s := &Set{handlers: make(map[Name]Handler, len(handlers))}
	for _, h := range handlers {
		s.handlers[h.Name()] = h
	}
	return s
}

// Handle routes in to the handler for mode and lets every other handler
// observe it. Unknown modes produce nothing.
func (s *Set) Handle(mode Name, in Input) []action.Event {
	for name, h := range s.handlers {
		if o, ok := h.(Observer); ok && name != mode {
			o.Observe(in)
		}
	}
	h, ok := s.handlers[mode]
	if !ok {
		return nil
	}
	return h.Handle(in)
}
