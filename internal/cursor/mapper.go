package cursor

// MapperConfig configures camera-to-screen mapping.
type MapperConfig struct {
	// Inset is the border, in camera pixels, excluded on every side of the
	// frame. The remaining interior rectangle spans the whole screen.
	Inset float64 `koanf:"inset"`

	// Margin keeps the output this many pixels away from the screen edges,
	// clear of corner-triggered OS failsafes.
	Margin float64 `koanf:"margin"`

	ScreenWidth  int `koanf:"screen_width"`
	ScreenHeight int `koanf:"screen_height"`
}

// DefaultMapperConfig returns the mapping used by the desktop controller.
// Screen size is left zero and filled in from the display at startup.
func DefaultMapperConfig() MapperConfig {
	return MapperConfig{
		Inset:  150,
		Margin: 2,
	}
}

// Mapper maps camera-space points onto the screen. It is stateless.
type Mapper struct {
	cfg MapperConfig
}

// NewMapper creates a Mapper.
func NewMapper(cfg MapperConfig) *Mapper {
	return &Mapper{cfg: cfg}
}

// Screen returns the target screen size.
func (m *Mapper) Screen() (int, int) {
	return m.cfg.ScreenWidth, m.cfg.ScreenHeight
}

// Map converts p from a frameW x frameH camera frame into screen pixels,
// clamped to [margin, screen-margin] on both axes.
func (m *Mapper) Map(p Point, frameW, frameH int) Point {
	sw, sh := float64(m.cfg.ScreenWidth), float64(m.cfg.ScreenHeight)
	return Point{
		X: m.axis(p.X, float64(frameW), sw),
		Y: m.axis(p.Y, float64(frameH), sh),
	}
}

func (m *Mapper) axis(v, frame, screen float64) float64 {
	lo, hi := m.cfg.Inset, frame-m.cfg.Inset
	if hi <= lo {
		lo, hi = 0, frame
	}

	var out float64
	if hi > lo {
		out = interp(v, lo, hi, 0, screen)
	}
	return clamp(out, m.cfg.Margin, screen-m.cfg.Margin)
}

// interp linearly maps v from [x0,x1] onto [y0,y1], saturating at the ends.
func interp(v, x0, x1, y0, y1 float64) float64 {
	if v <= x0 {
		return y0
	}
	if v >= x1 {
		return y1
	}
	return y0 + (v-x0)*(y1-y0)/(x1-x0)
}

func clamp(v, lo, hi float64) float64 {
	if hi < lo {
		return lo
	}
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}
