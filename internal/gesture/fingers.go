package gesture

import "github.com/ayusman/mudra/internal/detector"

// Finger indices into FingerState.Extended.
const (
	Thumb = iota
	Index
	Middle
	Ring
	Pinky
)

// FingerState records which fingers are extended in one frame.
type FingerState struct {
	Extended [5]bool `json:"extended"`
	// Count is the number of extended fingers, thumb included.
	Count int `json:"count"`
}

// Fingers returns the number of extended fingers excluding the thumb.
func (f FingerState) Fingers() int {
	n := f.Count
	if f.Extended[Thumb] {
		n--
	}
	return n
}

// Only reports whether exactly the given fingers are extended.
func (f FingerState) Only(fingers ...int) bool {
	var want [5]bool
	for _, i := range fingers {
		want[i] = true
	}
	return f.Extended == want
}

// tipPIP pairs each non-thumb fingertip with its PIP joint.
var tipPIP = [4][2]int{
	{detector.IndexTip, detector.IndexPIP},
	{detector.MiddleTip, detector.MiddlePIP},
	{detector.RingTip, detector.RingPIP},
	{detector.PinkyTip, detector.PinkyPIP},
}

// ExtractFingers computes the finger state of one hand.
//
// Coordinates are those of the mirrored image the detector receives, with y
// growing downward. A right hand's thumb is extended when its tip lies left of
// the IP joint; a left hand's when it lies right of it. Labels other than
// Left are treated as Right. A non-thumb finger is extended when its tip is
// above its PIP joint.
func ExtractFingers(hand *detector.HandLandmarks) FingerState {
	var fs FingerState
	p := &hand.Points

	if hand.Handedness.Normalize() == detector.HandLeft {
		fs.Extended[Thumb] = p[detector.ThumbTip].X > p[detector.ThumbIP].X
	} else {
		fs.Extended[Thumb] = p[detector.ThumbTip].X < p[detector.ThumbIP].X
	}

	for i, pair := range tipPIP {
		fs.Extended[Index+i] = p[pair[0]].Y < p[pair[1]].Y
	}

	for _, up := range fs.Extended {
		if up {
			fs.Count++
		}
	}
	return fs
}
