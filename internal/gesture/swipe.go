package gesture

import (
	"math"
	"time"

	"gonum.org/v1/gonum/spatial/r2"

	"github.com/ayusman/mudra/internal/detector"
)

// SwipeConfig tunes swipe detection.
type SwipeConfig struct {
	// MinSpeed is the reference-point speed, in pixels per second, a
	// frame-to-frame move must exceed along its dominant axis.
	MinSpeed float64 `koanf:"min_speed"`

	// Cooldown is the quiet period after a swipe fires.
	Cooldown time.Duration `koanf:"cooldown"`

	// MaxGap is the oldest previous observation a move is measured
	// against. Zero disables the check.
	MaxGap time.Duration `koanf:"max_gap"`
}

// DefaultSwipeConfig returns 15 px/frame and a 15-frame cooldown at 30 fps.
func DefaultSwipeConfig() SwipeConfig {
	return SwipeConfig{
		MinSpeed: 450,
		Cooldown: 500 * time.Millisecond,
		MaxGap:   250 * time.Millisecond,
	}
}

// SwipeDetector tracks the middle-finger MCP of one hand across frames.
type SwipeDetector struct {
	cfg SwipeConfig

	prev    r2.Vec
	prevAt  time.Time
	hasPrev bool

	// interval is the latest frame spacing, used to round the cooldown to
	// the nearest frame.
	interval time.Duration

	firedAt time.Time
	fired   bool
}

// NewSwipeDetector creates a SwipeDetector for a single tracked hand.
func NewSwipeDetector(cfg SwipeConfig) *SwipeDetector {
	return &SwipeDetector{cfg: cfg}
}

// Detect compares the hand's reference point captured at the given time with
// the previous call and returns the swipe it makes, if any. The point is
// always remembered for the next call.
func (d *SwipeDetector) Detect(hand *detector.HandLandmarks, at time.Time) Swipe {
	cur := planar(hand.Points[detector.MiddleMCP])
	prev, prevAt, ok := d.prev, d.prevAt, d.hasPrev
	d.prev, d.prevAt, d.hasPrev = cur, at, true

	if !ok {
		return SwipeNone
	}
	dt := at.Sub(prevAt)
	if dt <= 0 || (d.cfg.MaxGap > 0 && dt > d.cfg.MaxGap) {
		return SwipeNone
	}
	d.interval = dt
	if d.CoolingDown(at) {
		return SwipeNone
	}

	delta := r2.Sub(cur, prev)
	ax, ay := math.Abs(delta.X), math.Abs(delta.Y)
	secs := dt.Seconds()

	var s Swipe
	switch {
	case ax/secs > d.cfg.MinSpeed && ax > ay:
		s = SwipeLeft
		if delta.X > 0 {
			s = SwipeRight
		}
	case ay/secs > d.cfg.MinSpeed && ay > ax:
		s = SwipeUp
		if delta.Y > 0 {
			s = SwipeDown
		}
	default:
		return SwipeNone
	}

	d.firedAt, d.fired = at, true
	return s
}

// CoolingDown reports whether a swipe fired less than Cooldown before at.
// The window ends on the frame nearest Cooldown, so at 30 fps a 500 ms
// cooldown blocks exactly the 14 frames after a swipe.
func (d *SwipeDetector) CoolingDown(at time.Time) bool {
	return d.fired && at.Sub(d.firedAt)+d.interval/2 < d.cfg.Cooldown
}

// Reset forgets the previous point. The cooldown keeps running.
func (d *SwipeDetector) Reset() {
	d.hasPrev = false
}
