package mode

import (
	"image"
	"math"

	"github.com/ayusman/mudra/internal/action"
	"github.com/ayusman/mudra/internal/gesture"
)

// Palette geometry in camera pixels.
const (
	paletteLeft  = 50
	swatchWidth  = 60
	swatchHeight = 50
	swatchStep   = 80
	clearWidth   = 100
	clearRight   = 50
)

// DrawConfig sets the brush palette and limits.
type DrawConfig struct {
	// Colors are the selectable brush colours, first one active.
	Colors []string `koanf:"colors"`

	// BrushSize is the starting brush radius in pixels.
	BrushSize int `koanf:"brush_size"`
	MinBrush  int `koanf:"min_brush"`
	MaxBrush  int `koanf:"max_brush"`

	// SizeInset is the margin above and below the band the palm moves
	// through to size the brush: high in the frame is large.
	SizeInset int `koanf:"size_inset"`

	// PaletteTop is the top edge of the swatch row.
	PaletteTop int `koanf:"palette_top"`

	// MaxPoints caps the drawing; the oldest points go first. Zero keeps
	// everything.
	MaxPoints int `koanf:"max_points"`
}

// DefaultDrawConfig returns the neon palette and a 10 px brush.
func DefaultDrawConfig() DrawConfig {
	return DrawConfig{
		Colors:     []string{"#ff00ff", "#00ff00", "#00ffff", "#ffa500", "#ff0000", "#ffff00", "#ffffff"},
		BrushSize:  10,
		MinBrush:   5,
		MaxBrush:   50,
		SizeInset:  150,
		PaletteTop: 30,
		MaxPoints:  4096,
	}
}

// Swatch is one selectable colour on the palette.
type Swatch struct {
	Color string          `json:"color"`
	Rect  image.Rectangle `json:"rect"`
}

// Palette is the drawing toolbar: a row of swatches and a clear button.
type Palette struct {
	Swatches []Swatch        `json:"swatches"`
	Clear    image.Rectangle `json:"clear"`
}

// PaletteLayout places the toolbar along the top of a frame of the given
// width.
func PaletteLayout(cfg DrawConfig, frameWidth int) Palette {
	top := cfg.PaletteTop
	p := Palette{
		Clear: image.Rect(frameWidth-clearRight-clearWidth, top, frameWidth-clearRight, top+swatchHeight),
	}
	for i, c := range cfg.Colors {
		x := paletteLeft + i*swatchStep
		p.Swatches = append(p.Swatches, Swatch{Color: c, Rect: image.Rect(x, top, x+swatchWidth, top+swatchHeight)})
	}
	return p
}

// DrawHandler paints with the index finger, by finger count:
//
//	1 (index only)  draw
//	2               pick a colour, or clear from the toolbar button
//	3               size the brush by palm height
//	5               clear, once per open-hand run
type DrawHandler struct {
	cfg      DrawConfig
	color    int
	size     int
	clearing bool
}

// NewDrawHandler creates a DrawHandler.
func NewDrawHandler(cfg DrawConfig) *DrawHandler {
	return &DrawHandler{cfg: cfg, size: cfg.BrushSize}
}

func (h *DrawHandler) Name() Name { return Draw }

// Brush returns the pen strokes are currently drawn with.
func (h *DrawHandler) Brush() action.Brush {
	b := action.Brush{Size: h.size}
	if h.color < len(h.cfg.Colors) {
		b.Color = h.cfg.Colors[h.color]
	}
	return b
}

func (h *DrawHandler) Handle(in Input) []action.Event {
	switch {
	case in.Fingers.Count == 5:
		return h.clear()
	case in.Fingers.Count == 2:
		pal := PaletteLayout(h.cfg, in.FrameWidth)
		pt := image.Pt(int(in.Pointer.X), int(in.Pointer.Y))
		if pt.In(pal.Clear) {
			return h.clear()
		}
		for i, sw := range pal.Swatches {
			if pt.In(sw.Rect) {
				h.color = i
				break
			}
		}
	case in.Fingers.Count == 3:
		h.size = h.brushSize(in.Palm.Y, in.FrameHeight)
	case in.Fingers.Only(gesture.Index):
		h.clearing = false
		return []action.Event{action.Stroke(in.Pointer, h.Brush())}
	}
	h.clearing = false
	return nil
}

// Observe keeps the clear edge current while another mode is active, so
// arriving with an open hand does not wipe the board.
func (h *DrawHandler) Observe(in Input) {
	h.clearing = in.Fingers.Count == 5
}

func (h *DrawHandler) clear() []action.Event {
	if h.clearing {
		return nil
	}
	h.clearing = true
	return []action.Event{action.Clear()}
}

// brushSize maps the palm height onto [MinBrush, MaxBrush].
func (h *DrawHandler) brushSize(palmY float64, frameHeight int) int {
	lo, hi := float64(h.cfg.SizeInset), float64(frameHeight-h.cfg.SizeInset)
	if hi <= lo {
		return h.size
	}
	t := math.Min(1, math.Max(0, (palmY-lo)/(hi-lo)))
	return int(math.Round(float64(h.cfg.MaxBrush) - t*float64(h.cfg.MaxBrush-h.cfg.MinBrush)))
}
