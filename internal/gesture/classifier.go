package gesture

import (
	"github.com/ayusman/mudra/internal/cursor"
	"github.com/ayusman/mudra/internal/detector"
)

// ClassifierConfig tunes the pose classifier.
type ClassifierConfig struct {
	// SmoothFactor is the cursor low-pass divisor; larger is smoother.
	SmoothFactor float64 `koanf:"smooth_factor"`

	// BaseThreshold is the pinch distance, in pixels, for a hand whose
	// wrist-to-index-MCP length equals ReferenceScale.
	BaseThreshold  float64 `koanf:"base_threshold"`
	ReferenceScale float64 `koanf:"reference_scale"`
	MinThreshold   float64 `koanf:"min_threshold"`
	MaxThreshold   float64 `koanf:"max_threshold"`

	// TwoFinger enables the index+middle right-click pose.
	TwoFinger bool `koanf:"two_finger"`
}

// DefaultClassifierConfig returns the tuning used for a 1280x720 webcam.
func DefaultClassifierConfig() ClassifierConfig {
	return ClassifierConfig{
		SmoothFactor:   7,
		BaseThreshold:  30,
		ReferenceScale: 80,
		MinThreshold:   20,
		MaxThreshold:   50,
		TwoFinger:      true,
	}
}

// Analytics is the per-frame measurement snapshot of one classifier.
type Analytics struct {
	PinchDist       float64      `json:"pinch_dist"`
	IndexMiddleDist float64      `json:"index_middle_dist"`
	HandScale       float64      `json:"hand_scale"`
	Threshold       float64      `json:"threshold"`
	ScreenPos       cursor.Point `json:"screen_pos"`
}

// DynamicThreshold scales base by handScale/reference and clamps the result
// to [lo, hi]. A non-positive reference disables scaling.
func DynamicThreshold(handScale, base, reference, lo, hi float64) float64 {
	t := base
	if reference > 0 {
		t = base * handScale / reference
	}
	if t < lo {
		t = lo
	}
	if t > hi {
		t = hi
	}
	return t
}

// Classifier turns one hand's landmarks into a Gesture. It owns the smoothed
// cursor for that hand.
type Classifier struct {
	cfg       ClassifierConfig
	smoother  *cursor.Smoother
	analytics Analytics
}

// NewClassifier creates a Classifier for a single tracked hand.
func NewClassifier(cfg ClassifierConfig) *Classifier {
	return &Classifier{
		cfg:      cfg,
		smoother: cursor.NewSmoother(cfg.SmoothFactor),
	}
}

// Classify measures the hand, advances the cursor filter and returns the
// first matching gesture in the order Fist, Pinch, OpenPalm, TwoFinger.
// The thumb does not count toward the Fist and OpenPalm finger totals.
func (c *Classifier) Classify(hand *detector.HandLandmarks) (Gesture, FingerState) {
	p := &hand.Points

	pinch := distance(p[detector.ThumbTip], p[detector.IndexTip])
	scale := distance(p[detector.Wrist], p[detector.IndexMCP])
	threshold := DynamicThreshold(scale, c.cfg.BaseThreshold, c.cfg.ReferenceScale,
		c.cfg.MinThreshold, c.cfg.MaxThreshold)

	pos := c.smoother.Update(cursor.Point{X: p[detector.IndexTip].X, Y: p[detector.IndexTip].Y})

	c.analytics = Analytics{
		PinchDist:       pinch,
		IndexMiddleDist: distance(p[detector.IndexTip], p[detector.MiddleTip]),
		HandScale:       scale,
		Threshold:       threshold,
		ScreenPos:       pos,
	}

	fs := ExtractFingers(hand)
	up := fs.Fingers()

	switch {
	case up == 0:
		return Fist, fs
	case pinch < threshold:
		return Pinch, fs
	case up >= 4:
		return OpenPalm, fs
	case c.cfg.TwoFinger && fs.Extended[Index] && fs.Extended[Middle] &&
		!fs.Extended[Ring] && !fs.Extended[Pinky]:
		return TwoFinger, fs
	default:
		return Unknown, fs
	}
}

// Analytics returns the measurements from the last Classify call.
func (c *Classifier) Analytics() Analytics {
	return c.analytics
}

// Cursor returns the smoothed index-tip position in camera pixels.
func (c *Classifier) Cursor() cursor.Point {
	return c.smoother.Position()
}
