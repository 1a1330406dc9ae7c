// Package cursor turns a landmark position into a stable on-screen coordinate.
package cursor

// Point is a 2D position, in camera pixels or screen pixels depending on context.
type Point struct {
	X float64 `json:"x"`
	Y float64 `json:"y"`
}

// Smoother is a first-order IIR low-pass filter:
//
//	s = s + (raw - s) / factor
//
// A larger factor gives heavier smoothing and more lag. The filter is primed
// with the first sample so the cursor does not glide in from the origin.
type Smoother struct {
	factor float64
	pos    Point
	primed bool
}

// NewSmoother creates a Smoother. Factors below 1 are treated as 1 (no smoothing).
func NewSmoother(factor float64) *Smoother {
	if factor < 1 {
		factor = 1
	}
	return &Smoother{factor: factor}
}

// Update feeds a raw sample and returns the new smoothed position.
func (s *Smoother) Update(raw Point) Point {
	if !s.primed {
		s.pos = raw
		s.primed = true
		return s.pos
	}
	s.pos.X += (raw.X - s.pos.X) / s.factor
	s.pos.Y += (raw.Y - s.pos.Y) / s.factor
	return s.pos
}

// Position returns the last smoothed position.
func (s *Smoother) Position() Point {
	return s.pos
}

// Factor returns the smoothing factor in use.
func (s *Smoother) Factor() float64 {
	return s.factor
}
