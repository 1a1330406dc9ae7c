package mode

import (
	"sync"

	"github.com/ayusman/mudra/internal/action"
	"github.com/ayusman/mudra/internal/cursor"
)

// Stroke is one polyline drawn with a single brush.
type Stroke struct {
	action.Brush
	Points []cursor.Point `json:"points"`
}

// Canvas collects drawing strokes in camera pixels. Each hand draws its own
// polyline; a hand that stops drawing or changes brush starts a new one.
// Once the drawing holds more than maxPoints points the oldest are dropped.
// Safe for concurrent use.
type Canvas struct {
	mu        sync.RWMutex
	maxPoints int
	points    int
	strokes   []Stroke
	open      map[string]int
}

// NewCanvas creates an empty Canvas. A non-positive maxPoints keeps every
// point.
func NewCanvas(maxPoints int) *Canvas {
	return &Canvas{maxPoints: maxPoints, open: make(map[string]int)}
}

// Extend appends p to the pen's current stroke, starting one if the pen is up
// or its brush changed.
func (c *Canvas) Extend(pen string, p cursor.Point, b action.Brush) {
	c.mu.Lock()
	defer c.mu.Unlock()

	i, ok := c.open[pen]
	if ok && c.strokes[i].Brush != b {
		ok = false
	}
	if !ok {
		c.strokes = append(c.strokes, Stroke{Brush: b})
		i = len(c.strokes) - 1
		c.open[pen] = i
	}
	c.strokes[i].Points = append(c.strokes[i].Points, p)
	c.points++
	c.trim()
}

// trim drops the oldest points until the drawing fits. Callers hold mu.
func (c *Canvas) trim() {
	if c.maxPoints <= 0 {
		return
	}
	for c.points > c.maxPoints {
		first := &c.strokes[0]
		if drop := c.points - c.maxPoints; drop < len(first.Points) {
			first.Points = first.Points[drop:]
			c.points -= drop
			return
		}
		c.points -= len(first.Points)
		c.strokes = c.strokes[1:]
		for pen, i := range c.open {
			if i == 0 {
				delete(c.open, pen)
			} else {
				c.open[pen] = i - 1
			}
		}
	}
}

// Lift ends the pen's current stroke.
func (c *Canvas) Lift(pen string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	delete(c.open, pen)
}

// Clear removes every stroke.
func (c *Canvas) Clear() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.strokes = nil
	c.points = 0
	c.open = make(map[string]int)
}

// Points reports how many points the drawing holds.
func (c *Canvas) Points() int {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.points
}

// Strokes returns a deep copy of the drawing.
func (c *Canvas) Strokes() []Stroke {
	c.mu.RLock()
	defer c.mu.RUnlock()

	out := make([]Stroke, len(c.strokes))
	for i, s := range c.strokes {
		out[i] = Stroke{Brush: s.Brush, Points: append([]cursor.Point(nil), s.Points...)}
	}
	return out
}
