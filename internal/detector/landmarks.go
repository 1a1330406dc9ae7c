// Package detector provides the landmark source: hand and face keypoints for a video frame.
package detector

import "time"

// Hand landmark indices following MediaPipe convention.
// See: https://developers.google.com/mediapipe/solutions/vision/hand_landmarker
const (
	Wrist        = 0
	ThumbCMC     = 1
	ThumbMCP     = 2
	ThumbIP      = 3
	ThumbTip     = 4
	IndexMCP     = 5
	IndexPIP     = 6
	IndexDIP     = 7
	IndexTip     = 8
	MiddleMCP    = 9
	MiddlePIP    = 10
	MiddleDIP    = 11
	MiddleTip    = 12
	RingMCP      = 13
	RingPIP      = 14
	RingDIP      = 15
	RingTip      = 16
	PinkyMCP     = 17
	PinkyPIP     = 18
	PinkyDIP     = 19
	PinkyTip     = 20
	NumLandmarks = 21
)

// Handedness is the detector's left/right label for a hand.
type Handedness string

const (
	HandLeft  Handedness = "Left"
	HandRight Handedness = "Right"
)

// Normalize maps any label other than Left to Right.
func (h Handedness) Normalize() Handedness {
	if h == HandLeft {
		return HandLeft
	}
	return HandRight
}

// Point3D represents a landmark position. X and Y are in camera pixels once a
// frame has been scaled with ToPixels; Z is the detector's relative depth.
type Point3D struct {
	X float64 `json:"x"`
	Y float64 `json:"y"`
	Z float64 `json:"z"`
}

// HandLandmarks represents the 21 hand landmarks of one detected hand.
type HandLandmarks struct {
	Points     [NumLandmarks]Point3D `json:"points"`
	Handedness Handedness            `json:"handedness"`
	Score      float64               `json:"score"`
}

// ToPixels returns a copy with normalized [0,1] coordinates scaled to a
// width x height frame.
func (h HandLandmarks) ToPixels(width, height int) HandLandmarks {
	w, ht := float64(width), float64(height)
	for i := range h.Points {
		h.Points[i].X *= w
		h.Points[i].Y *= ht
	}
	return h
}

// FaceLandmarks is a face mesh. Faces are only drawn, never classified.
type FaceLandmarks struct {
	Points []Point3D `json:"points"`
}

// Frame is everything the landmark source produced for one video frame.
type Frame struct {
	Hands     []HandLandmarks `json:"hands"`
	Faces     []FaceLandmarks `json:"faces"`
	Width     int             `json:"width"`
	Height    int             `json:"height"`
	Timestamp time.Time       `json:"timestamp"`
}
