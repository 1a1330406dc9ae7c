// Package gesture classifies hand landmarks into discrete gestures and swipes.
//
// Every type here holds per-hand state. Create one Classifier and one
// SwipeDetector per tracked hand and never share them across hands.
package gesture

import (
	"gonum.org/v1/gonum/spatial/r2"

	"github.com/ayusman/mudra/internal/cursor"
	"github.com/ayusman/mudra/internal/detector"
)

// Gesture is the discrete hand pose recognised in a frame.
type Gesture string

const (
	// None means no hand was classified this frame.
	None      Gesture = "None"
	Fist      Gesture = "Fist"
	Pinch     Gesture = "Pinch"
	OpenPalm  Gesture = "OpenPalm"
	TwoFinger Gesture = "TwoFinger"
	Unknown   Gesture = "Unknown"
)

// Swipe is a directional flick of the whole hand.
type Swipe string

const (
	SwipeNone  Swipe = ""
	SwipeLeft  Swipe = "Left"
	SwipeRight Swipe = "Right"
	SwipeUp    Swipe = "Up"
	SwipeDown  Swipe = "Down"
)

// Horizontal reports whether s is Left or Right.
func (s Swipe) Horizontal() bool {
	return s == SwipeLeft || s == SwipeRight
}

// Vertical reports whether s is Up or Down.
func (s Swipe) Vertical() bool {
	return s == SwipeUp || s == SwipeDown
}

// planar drops depth; all thresholds are in image-plane pixels.
func planar(p detector.Point3D) r2.Vec {
	return r2.Vec{X: p.X, Y: p.Y}
}

// distance is the 2D Euclidean distance between two landmarks.
func distance(a, b detector.Point3D) float64 {
	return r2.Norm(r2.Sub(planar(a), planar(b)))
}

// palmPoints are the wrist and the four finger bases.
var palmPoints = [5]int{detector.Wrist, detector.IndexMCP, detector.MiddleMCP, detector.RingMCP, detector.PinkyMCP}

// PalmCentre is the mean of the wrist and finger-base landmarks.
func PalmCentre(hand *detector.HandLandmarks) cursor.Point {
	var sum r2.Vec
	for _, i := range palmPoints {
		sum = r2.Add(sum, planar(hand.Points[i]))
	}
	n := float64(len(palmPoints))
	return cursor.Point{X: sum.X / n, Y: sum.Y / n}
}
