package mode

import "github.com/ayusman/mudra/internal/action"

// ControlHandler drives the desktop: pointer, clicks, keys and hotkeys.
type ControlHandler struct {
	dispatcher *action.Dispatcher
}

// NewControlHandler wraps a per-hand dispatcher.
func NewControlHandler(d *action.Dispatcher) *ControlHandler {
	return &ControlHandler{dispatcher: d}
}

func (h *ControlHandler) Name() Name { return Control }

func (h *ControlHandler) Handle(in Input) []action.Event {
	return h.dispatcher.Dispatch(action.Input{
		Gesture: in.Gesture,
		Swipe:   in.Swipe,
		Pointer: in.Pointer,
		Screen:  in.Screen,
		Modes:   in.Modes,
		At:      in.At,
	})
}

// Observe keeps the click edges current outside control mode, so a pinch
// that began elsewhere does not click on arrival or swallow the next one.
func (h *ControlHandler) Observe(in Input) {
	h.dispatcher.Track(in.Gesture)
}
