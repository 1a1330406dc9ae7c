package detector

import "gocv.io/x/gocv"

// Result holds the landmarks found in one image, in normalized [0,1] coordinates.
type Result struct {
	Hands []HandLandmarks
	Faces []FaceLandmarks
}

// Detector defines the interface for landmark detection implementations.
type Detector interface {
	// Detect analyzes a video frame and returns detected landmarks.
	// A frame without hands yields an empty Result, not an error.
	Detect(frame *gocv.Mat) (Result, error)

	// Close releases any resources held by the detector.
	Close() error
}

// Config holds configuration options for landmark detection.
type Config struct {
	// MaxHands is the maximum number of hands to detect (default: 1).
	MaxHands int `koanf:"max_hands"`

	// MaxFaces is the maximum number of faces to detect; 0 disables the face mesh.
	MaxFaces int `koanf:"max_faces"`

	// MinConfidence is the minimum detection confidence threshold (0.0-1.0).
	MinConfidence float64 `koanf:"min_confidence"`

	// MinTrackingConf is the minimum tracking confidence threshold (0.0-1.0).
	MinTrackingConf float64 `koanf:"min_tracking_confidence"`

	// Script overrides the location of mediapipe_service.py.
	Script string `koanf:"script"`
}

// DefaultConfig returns a Config with sensible default values.
func DefaultConfig() Config {
	return Config{
		MaxHands:        1,
		MaxFaces:        1,
		MinConfidence:   0.8,
		MinTrackingConf: 0.5,
	}
}
