package detector

import (
	"sync"

	"gocv.io/x/gocv"
)

// MockDetector is a test implementation of the Detector interface.
// It allows tests to control the detection results.
type MockDetector struct {
	mu     sync.Mutex
	result Result
	err    error
	calls  int
}

// NewMockDetector creates a new MockDetector instance.
func NewMockDetector() *MockDetector {
	return &MockDetector{}
}

// SetHands sets the hands that will be returned by Detect.
func (m *MockDetector) SetHands(hands []HandLandmarks) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.result.Hands = hands
}

// SetFaces sets the faces that will be returned by Detect.
func (m *MockDetector) SetFaces(faces []FaceLandmarks) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.result.Faces = faces
}

// SetError sets the error that will be returned by Detect.
func (m *MockDetector) SetError(err error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.err = err
}

// Calls reports how many times Detect ran.
func (m *MockDetector) Calls() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.calls
}

// Detect returns the pre-configured result or error.
func (m *MockDetector) Detect(frame *gocv.Mat) (Result, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.calls++
	if m.err != nil {
		return Result{}, m.err
	}
	return m.result, nil
}

// Close is a no-op for the mock detector.
func (m *MockDetector) Close() error {
	return nil
}

// The fixtures below are right hands in pixel coordinates of a mirrored
// 640x480 frame. The palm is fixed; each finger is either extended (tip above
// its PIP joint) or curled (tip below it). Wrist to index MCP is ~102 px.

type fingerPose [4]Point3D

var (
	thumbOut  = fingerPose{{X: 280, Y: 400}, {X: 250, Y: 370}, {X: 230, Y: 340}, {X: 210, Y: 320}}
	thumbIn   = fingerPose{{X: 280, Y: 400}, {X: 250, Y: 370}, {X: 230, Y: 340}, {X: 260, Y: 340}}
	indexUp   = fingerPose{{X: 300, Y: 320}, {X: 300, Y: 270}, {X: 300, Y: 240}, {X: 300, Y: 210}}
	indexDown = fingerPose{{X: 300, Y: 320}, {X: 300, Y: 290}, {X: 305, Y: 310}, {X: 310, Y: 330}}
	middleUp  = fingerPose{{X: 330, Y: 315}, {X: 330, Y: 260}, {X: 330, Y: 230}, {X: 330, Y: 200}}
	middleDn  = fingerPose{{X: 330, Y: 315}, {X: 330, Y: 285}, {X: 335, Y: 305}, {X: 340, Y: 325}}
	ringUp    = fingerPose{{X: 360, Y: 320}, {X: 360, Y: 270}, {X: 360, Y: 240}, {X: 360, Y: 215}}
	ringDown  = fingerPose{{X: 360, Y: 320}, {X: 360, Y: 290}, {X: 365, Y: 310}, {X: 370, Y: 330}}
	pinkyUp   = fingerPose{{X: 385, Y: 330}, {X: 390, Y: 290}, {X: 392, Y: 265}, {X: 395, Y: 245}}
	pinkyDown = fingerPose{{X: 385, Y: 330}, {X: 390, Y: 305}, {X: 393, Y: 320}, {X: 398, Y: 338}}
)

func buildHand(thumb, index, middle, ring, pinky fingerPose) HandLandmarks {
	hand := HandLandmarks{Handedness: HandRight, Score: 0.95}
	hand.Points[Wrist] = Point3D{X: 320, Y: 420}
	copy(hand.Points[ThumbCMC:ThumbTip+1], thumb[:])
	copy(hand.Points[IndexMCP:IndexTip+1], index[:])
	copy(hand.Points[MiddleMCP:MiddleTip+1], middle[:])
	copy(hand.Points[RingMCP:RingTip+1], ring[:])
	copy(hand.Points[PinkyMCP:PinkyTip+1], pinky[:])
	return hand
}

// FistLandmarks returns a closed hand: every finger curled.
func FistLandmarks() HandLandmarks {
	return buildHand(thumbIn, indexDown, middleDn, ringDown, pinkyDown)
}

// OpenPalmLandmarks returns a hand with all five fingers extended and the
// thumb well away from the index tip.
func OpenPalmLandmarks() HandLandmarks {
	return buildHand(thumbOut, indexUp, middleUp, ringUp, pinkyUp)
}

// PinchLandmarks returns an open hand whose thumb tip touches the index tip.
func PinchLandmarks() HandLandmarks {
	hand := buildHand(thumbIn, indexUp, middleUp, ringUp, pinkyUp)
	hand.Points[ThumbTip] = Point3D{X: 295, Y: 215}
	return hand
}

// TwoFingerLandmarks returns index and middle extended, ring and pinky curled.
func TwoFingerLandmarks() HandLandmarks {
	return buildHand(thumbIn, indexUp, middleUp, ringDown, pinkyDown)
}

// PointLandmarks returns only the index finger extended.
func PointLandmarks() HandLandmarks {
	return buildHand(thumbIn, indexUp, middleDn, ringDown, pinkyDown)
}

// Translate returns a copy of hand moved by (dx, dy) pixels.
func Translate(hand HandLandmarks, dx, dy float64) HandLandmarks {
	for i := range hand.Points {
		hand.Points[i].X += dx
		hand.Points[i].Y += dy
	}
	return hand
}
