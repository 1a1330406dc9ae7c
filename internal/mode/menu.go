package mode

import (
	"image"
	"time"

	"github.com/ayusman/mudra/internal/action"
	"github.com/ayusman/mudra/internal/gesture"
)

// MenuConfig lays out the mode buttons in camera pixels.
type MenuConfig struct {
	ButtonWidth  int           `koanf:"button_width"`
	ButtonHeight int           `koanf:"button_height"`
	Top          int           `koanf:"top"`
	Spacing      int           `koanf:"spacing"`
	Hold         time.Duration `koanf:"hold"`
}

// DefaultMenuConfig returns large buttons and a 1.5s hover hold.
func DefaultMenuConfig() MenuConfig {
	return MenuConfig{
		ButtonWidth:  500,
		ButtonHeight: 80,
		Top:          180,
		Spacing:      30,
		Hold:         1500 * time.Millisecond,
	}
}

// Button is one selectable mode.
type Button struct {
	Mode Name            `json:"mode"`
	Rect image.Rectangle `json:"rect"`
}

// MenuButtons lays out the selectable modes centred in a frame of the
// given width.
func MenuButtons(cfg MenuConfig, frameWidth int) []Button {
	x := frameWidth/2 - cfg.ButtonWidth/2
	var out []Button
	for i, n := range []Name{Control, Draw} {
		y := cfg.Top + i*(cfg.ButtonHeight+cfg.Spacing)
		out = append(out, Button{Mode: n, Rect: image.Rect(x, y, x+cfg.ButtonWidth, y+cfg.ButtonHeight)})
	}
	return out
}

// MenuHandler selects a mode when the pointer rests on a button for Hold, or
// when the hand closes into a fist over it.
type MenuHandler struct {
	cfg MenuConfig

	hover      Name
	hoverSince time.Time
}

// NewMenuHandler creates a MenuHandler.
func NewMenuHandler(cfg MenuConfig) *MenuHandler {
	return &MenuHandler{cfg: cfg}
}

func (h *MenuHandler) Name() Name { return Menu }

func (h *MenuHandler) Handle(in Input) []action.Event {
	target := h.buttonAt(in)
	if target == "" {
		h.hover = ""
		return nil
	}
	if target != h.hover {
		h.hover, h.hoverSince = target, in.At
	}

	if in.Gesture == gesture.Fist || in.At.Sub(h.hoverSince) >= h.cfg.Hold {
		h.hover = ""
		return []action.Event{action.ToggleMode(string(target))}
	}
	return nil
}

// Observe drops any hover so a later visit starts its hold afresh.
func (h *MenuHandler) Observe(Input) {
	h.hover = ""
}

// Progress reports the hovered mode and how far its hold has run, in [0, 1].
func (h *MenuHandler) Progress(at time.Time) (Name, float64) {
	if h.hover == "" || h.cfg.Hold <= 0 {
		return "", 0
	}
	p := float64(at.Sub(h.hoverSince)) / float64(h.cfg.Hold)
	if p > 1 {
		p = 1
	}
	if p < 0 {
		p = 0
	}
	return h.hover, p
}

func (h *MenuHandler) buttonAt(in Input) Name {
	pt := image.Pt(int(in.Pointer.X), int(in.Pointer.Y))
	for _, b := range MenuButtons(h.cfg, in.FrameWidth) {
		if pt.In(b.Rect) {
			return b.Mode
		}
	}
	return ""
}
