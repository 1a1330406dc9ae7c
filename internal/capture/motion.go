package capture

import (
	"image"
	"sync"

	"gocv.io/x/gocv"
)

// MotionConfig tunes frame differencing.
type MotionConfig struct {
	// Threshold is the percentage of changed pixels that counts as motion.
	Threshold float64 `koanf:"threshold"`

	// BlurSize is the odd Gaussian kernel size applied before differencing.
	BlurSize int `koanf:"blur_size"`

	// PixelDelta is the grey-level change that marks a pixel as changed.
	PixelDelta float32 `koanf:"pixel_delta"`

	// SampleWidth downsizes frames to this width before comparing. Zero
	// compares at full resolution.
	SampleWidth int `koanf:"sample_width"`
}

// DefaultMotionConfig returns settings that ignore sensor noise but wake on a
// hand entering the frame.
func DefaultMotionConfig() MotionConfig {
	return MotionConfig{
		Threshold:   1.0,
		BlurSize:    21,
		PixelDelta:  25,
		SampleWidth: 320,
	}
}

// MotionDetector compares each frame with the previous one.
type MotionDetector struct {
	mu          sync.Mutex
	cfg         MotionConfig
	prev        gocv.Mat
	initialized bool
}

// NewMotionDetector creates a MotionDetector.
func NewMotionDetector(cfg MotionConfig) *MotionDetector {
	if cfg.BlurSize%2 == 0 {
		cfg.BlurSize++
	}
	return &MotionDetector{cfg: cfg, prev: gocv.NewMat()}
}

// Detect reports whether frame differs from the previous one by more than the
// threshold, and the percentage of pixels that changed. The first frame only
// sets the baseline.
func (m *MotionDetector) Detect(frame *gocv.Mat) (bool, float64) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if frame == nil || frame.Empty() {
		return false, 0
	}

	gray := m.prepare(frame)
	defer gray.Close()

	if !m.initialized {
		gray.CopyTo(&m.prev)
		m.initialized = true
		return false, 0
	}

	diff := gocv.NewMat()
	defer diff.Close()
	gocv.AbsDiff(gray, m.prev, &diff)
	gocv.Threshold(diff, &diff, m.cfg.PixelDelta, 255, gocv.ThresholdBinary)

	changed := 100 * float64(gocv.CountNonZero(diff)) / float64(diff.Rows()*diff.Cols())
	gray.CopyTo(&m.prev)

	return changed > m.cfg.Threshold, changed
}

// prepare returns a blurred greyscale copy, downsized to SampleWidth.
func (m *MotionDetector) prepare(frame *gocv.Mat) gocv.Mat {
	gray := gocv.NewMat()
	if frame.Channels() > 1 {
		gocv.CvtColor(*frame, &gray, gocv.ColorBGRToGray)
	} else {
		frame.CopyTo(&gray)
	}

	if w := m.cfg.SampleWidth; w > 0 && gray.Cols() > w {
		small := gocv.NewMat()
		gocv.Resize(gray, &small, image.Pt(w, gray.Rows()*w/gray.Cols()), 0, 0, gocv.InterpolationArea)
		gray.Close()
		gray = small
	}
	if k := m.cfg.BlurSize; k > 1 {
		gocv.GaussianBlur(gray, &gray, image.Pt(k, k), 0, 0, gocv.BorderDefault)
	}
	return gray
}

// Reset drops the baseline so the next frame starts fresh.
func (m *MotionDetector) Reset() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.reset()
}

// Close releases the baseline Mat. The detector stays usable.
func (m *MotionDetector) Close() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.reset()
}

func (m *MotionDetector) reset() {
	if !m.prev.Empty() {
		m.prev.Close()
		m.prev = gocv.NewMat()
	}
	m.initialized = false
}

// SetThreshold changes the motion percentage. Non-positive values are ignored.
func (m *MotionDetector) SetThreshold(threshold float64) {
	if threshold <= 0 {
		return
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	m.cfg.Threshold = threshold
}
