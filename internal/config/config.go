// Package config defines the application configuration and its loader.
package config

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/ayusman/mudra/internal/action"
	"github.com/ayusman/mudra/internal/capture"
	"github.com/ayusman/mudra/internal/cursor"
	"github.com/ayusman/mudra/internal/detector"
	"github.com/ayusman/mudra/internal/gesture"
	"github.com/ayusman/mudra/internal/keyboard"
	"github.com/ayusman/mudra/internal/logging"
	"github.com/ayusman/mudra/internal/mode"
)

// Sentinel errors for errors.Is checks by callers.
var (
	ErrInvalidConfig = errors.New("invalid config")
	ErrLoadConfig    = errors.New("load config failed")
)

// Input drivers.
const (
	DriverRobot = "robotgo"
	DriverLog   = "log"
	DriverExec  = "exec"
)

// ServerConfig configures the HTTP API.
type ServerConfig struct {
	Addr string `koanf:"addr"`
	// WebDir serves a dashboard when set; otherwise common locations are searched.
	WebDir string `koanf:"web_dir"`
}

// StoreConfig locates the SQLite database. An empty path means
// ~/.mudra/mudra.db.
type StoreConfig struct {
	Path string `koanf:"path"`
	// Retention drops logged actions older than this at startup. Zero keeps
	// everything.
	Retention time.Duration `koanf:"retention"`
}

// TrackingConfig controls the frame loop.
type TrackingConfig struct {
	// IdleTimeout is how long without motion before dropping to the idle rate.
	IdleTimeout time.Duration `koanf:"idle_timeout"`
	// SessionTTL is how long a hand may be missing before its state is dropped.
	SessionTTL time.Duration `koanf:"session_ttl"`
}

// InputConfig selects the OS input driver.
type InputConfig struct {
	// Driver is "robotgo" for real input, "log" to only log actions or
	// "exec" to hand each action to an external helper.
	Driver string `koanf:"driver"`

	// Command and Args start the helper for the exec driver.
	Command string   `koanf:"command"`
	Args    []string `koanf:"args"`
	// Timeout bounds a single helper call.
	Timeout time.Duration `koanf:"timeout"`
}

// TrayConfig controls the system tray menu.
type TrayConfig struct {
	// Enabled shows the tray; disable it on headless machines.
	Enabled bool `koanf:"enabled"`
}

// StartConfig is the state used when nothing has been persisted yet.
type StartConfig struct {
	Mode            string `koanf:"mode"`
	MouseControl    bool   `koanf:"mouse_control"`
	KeyboardOverlay bool   `koanf:"keyboard_overlay"`
}

// Config is the complete application configuration.
type Config struct {
	Log        logging.Options          `koanf:"log"`
	Server     ServerConfig             `koanf:"server"`
	Store      StoreConfig              `koanf:"store"`
	Camera     capture.Config           `koanf:"camera"`
	Motion     capture.MotionConfig     `koanf:"motion"`
	Tracking   TrackingConfig           `koanf:"tracking"`
	Detector   detector.Config          `koanf:"detector"`
	Classifier gesture.ClassifierConfig `koanf:"classifier"`
	Swipe      gesture.SwipeConfig      `koanf:"swipe"`
	Cursor     cursor.MapperConfig      `koanf:"cursor"`
	Dispatch   action.Config            `koanf:"dispatch"`
	Keyboard   keyboard.Config          `koanf:"keyboard"`
	Menu       mode.MenuConfig          `koanf:"menu"`
	Draw       mode.DrawConfig          `koanf:"draw"`
	Input      InputConfig              `koanf:"input"`
	Start      StartConfig              `koanf:"start"`
	Tray       TrayConfig               `koanf:"tray"`
}

// Default returns the built-in configuration.
func Default() *Config {
	return &Config{
		Log:    logging.Options{Level: "info", Format: "console"},
		Server: ServerConfig{Addr: ":8080"},
		Store:  StoreConfig{Retention: 30 * 24 * time.Hour},
		Camera: capture.DefaultConfig(),
		Motion: capture.DefaultMotionConfig(),
		Tracking: TrackingConfig{
			IdleTimeout: 2 * time.Second,
			SessionTTL:  5 * time.Second,
		},
		Detector:   detector.DefaultConfig(),
		Classifier: gesture.DefaultClassifierConfig(),
		Swipe:      gesture.DefaultSwipeConfig(),
		Cursor:     cursor.DefaultMapperConfig(),
		Dispatch:   action.DefaultConfig(),
		Keyboard:   keyboard.DefaultConfig(),
		Menu:       mode.DefaultMenuConfig(),
		Draw:       mode.DefaultDrawConfig(),
		Input:      InputConfig{Driver: DriverRobot, Timeout: 2 * time.Second},
		Start:      StartConfig{Mode: string(mode.Control)},
		Tray:       TrayConfig{Enabled: true},
	}
}

// Validate rejects values the pipeline cannot run with.
func (c *Config) Validate() error {
	var problems []string
	check := func(ok bool, format string, args ...any) {
		if !ok {
			problems = append(problems, fmt.Sprintf(format, args...))
		}
	}

	check(c.Server.Addr != "", "server.addr must not be empty")
	check(c.Camera.Width > 0 && c.Camera.Height > 0, "camera size must be positive, got %dx%d", c.Camera.Width, c.Camera.Height)
	check(c.Camera.ActiveFPS > 0, "camera.active_fps must be positive")
	check(c.Camera.IdleFPS > 0, "camera.idle_fps must be positive")
	check(c.Motion.Threshold >= 0, "motion.threshold must not be negative")
	check(c.Store.Retention >= 0, "store.retention must not be negative")
	check(c.Tracking.SessionTTL > 0, "tracking.session_ttl must be positive")
	check(c.Detector.MaxHands > 0, "detector.max_hands must be positive")
	check(c.Classifier.SmoothFactor >= 1, "classifier.smooth_factor must be at least 1")
	check(c.Classifier.ReferenceScale > 0, "classifier.reference_scale must be positive")
	check(c.Classifier.MinThreshold <= c.Classifier.MaxThreshold,
		"classifier.min_threshold %v exceeds max_threshold %v", c.Classifier.MinThreshold, c.Classifier.MaxThreshold)
	check(c.Swipe.MinSpeed > 0, "swipe.min_speed must be positive")
	check(c.Swipe.Cooldown >= 0, "swipe.cooldown must not be negative")
	check(c.Cursor.Inset >= 0 && c.Cursor.Margin >= 0, "cursor.inset and cursor.margin must not be negative")
	check(c.Dispatch.ClickDebounce >= 0, "dispatch.click_debounce must not be negative")
	check(c.Keyboard.KeySize > 0, "keyboard.key_size must be positive")
	check(len(c.Draw.Colors) > 0, "draw.colors must not be empty")
	check(c.Draw.MinBrush > 0 && c.Draw.MinBrush <= c.Draw.MaxBrush,
		"draw brush range %d..%d is invalid", c.Draw.MinBrush, c.Draw.MaxBrush)
	check(c.Draw.MaxPoints >= 0, "draw.max_points must not be negative")
	switch c.Input.Driver {
	case DriverRobot, DriverLog:
	case DriverExec:
		check(c.Input.Command != "", "input.command is required for the %q driver", DriverExec)
		check(c.Input.Timeout > 0, "input.timeout must be positive")
	default:
		check(false, "input.driver must be %q, %q or %q, got %q",
			DriverRobot, DriverLog, DriverExec, c.Input.Driver)
	}
	_, err := mode.Parse(c.Start.Mode)
	check(err == nil, "start.mode: %v", err)

	if len(problems) > 0 {
		return fmt.Errorf("%w: %s", ErrInvalidConfig, strings.Join(problems, "; "))
	}
	return nil
}
