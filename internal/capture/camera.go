// Package capture reads mirrored frames from a webcam and measures motion
// between them.
package capture

import (
	"errors"
	"fmt"
	"sync"

	"gocv.io/x/gocv"
)

var (
	// ErrCameraNotOpen is returned when reading from a closed camera.
	ErrCameraNotOpen = errors.New("camera is not open")
	// ErrEmptyFrame is returned when the device delivers no pixels.
	ErrEmptyFrame = errors.New("captured frame is empty")
)

// Config selects and sizes the capture device.
type Config struct {
	Device int `koanf:"device"`
	Width  int `koanf:"width"`
	Height int `koanf:"height"`

	// ActiveFPS is the capture rate while a hand is moving; IdleFPS the rate
	// while the scene is still.
	ActiveFPS int `koanf:"active_fps"`
	IdleFPS   int `koanf:"idle_fps"`

	// Mirror flips frames horizontally so the preview behaves like a mirror
	// and the user's right hand moves the cursor right.
	Mirror bool `koanf:"mirror"`
}

// DefaultConfig returns 1280x720 mirrored capture at 30 fps active, 5 idle.
func DefaultConfig() Config {
	return Config{
		Width:     1280,
		Height:    720,
		ActiveFPS: 30,
		IdleFPS:   5,
		Mirror:    true,
	}
}

// Camera is a frame source.
type Camera interface {
	Open() error
	Close() error
	// ReadFrame returns the next frame. The caller must Close it.
	ReadFrame() (*gocv.Mat, error)
	SetFPS(fps int)
	FPS() int
	IsOpen() bool
}

type gocvCamera struct {
	cfg Config

	mu      sync.Mutex
	capture *gocv.VideoCapture
	fps     int
}

// NewCamera creates a Camera for cfg.Device. It starts at the idle rate.
func NewCamera(cfg Config) Camera {
	fps := cfg.IdleFPS
	if fps <= 0 {
		fps = DefaultConfig().IdleFPS
	}
	return &gocvCamera{cfg: cfg, fps: fps}
}

func (c *gocvCamera) Open() error {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.capture != nil {
		return nil
	}

	vc, err := gocv.OpenVideoCapture(c.cfg.Device)
	if err != nil {
		return fmt.Errorf("failed to open camera %d: %w", c.cfg.Device, err)
	}
	if c.cfg.Width > 0 && c.cfg.Height > 0 {
		vc.Set(gocv.VideoCaptureFrameWidth, float64(c.cfg.Width))
		vc.Set(gocv.VideoCaptureFrameHeight, float64(c.cfg.Height))
	}
	vc.Set(gocv.VideoCaptureFPS, float64(c.fps))

	c.capture = vc
	return nil
}

func (c *gocvCamera) Close() error {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.capture == nil {
		return nil
	}
	err := c.capture.Close()
	c.capture = nil
	return err
}

func (c *gocvCamera) ReadFrame() (*gocv.Mat, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.capture == nil {
		return nil, ErrCameraNotOpen
	}

	mat := gocv.NewMat()
	if ok := c.capture.Read(&mat); !ok || mat.Empty() {
		mat.Close()
		return nil, fmt.Errorf("camera %d: %w", c.cfg.Device, ErrEmptyFrame)
	}
	if c.cfg.Mirror {
		gocv.Flip(mat, &mat, 1)
	}
	return &mat, nil
}

// SetFPS ignores non-positive values.
func (c *gocvCamera) SetFPS(fps int) {
	if fps <= 0 {
		return
	}

	c.mu.Lock()
	defer c.mu.Unlock()

	c.fps = fps
	if c.capture != nil {
		c.capture.Set(gocv.VideoCaptureFPS, float64(fps))
	}
}

func (c *gocvCamera) FPS() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.fps
}

func (c *gocvCamera) IsOpen() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.capture != nil
}
