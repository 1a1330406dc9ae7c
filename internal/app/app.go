// Package app ties the camera, the landmark detector and the per-hand gesture
// pipeline together and owns the application toggles.
package app

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"sync/atomic"
	"time"

	"github.com/rs/zerolog"

	"github.com/ayusman/mudra/internal/action"
	"github.com/ayusman/mudra/internal/capture"
	"github.com/ayusman/mudra/internal/cursor"
	"github.com/ayusman/mudra/internal/detector"
	"github.com/ayusman/mudra/internal/gesture"
	"github.com/ayusman/mudra/internal/keyboard"
	"github.com/ayusman/mudra/internal/logging"
	"github.com/ayusman/mudra/internal/metrics"
	"github.com/ayusman/mudra/internal/mode"
	"github.com/ayusman/mudra/internal/store"
)

// ErrNoCamera is returned by Start when no camera was configured.
var ErrNoCamera = errors.New("no camera configured")

// State is the set of user-facing toggles.
type State struct {
	action.Modes
	Mode mode.Name `json:"mode"`
}

// StateUpdate changes the fields that are set.
type StateUpdate struct {
	MouseControl    *bool   `json:"mouse_control,omitempty"`
	KeyboardOverlay *bool   `json:"keyboard_overlay,omitempty"`
	Mode            *string `json:"mode,omitempty"`
}

// Config wires an App. Camera, Motion, Detector and Sink are required to run
// the camera loop; ProcessFrame only needs Sink.
type Config struct {
	Camera   capture.Camera
	Motion   *capture.MotionDetector
	Detector detector.Detector
	Sink     action.Sink

	// Store persists toggles and the action log. Optional.
	Store   *store.Store
	Metrics *metrics.Manager
	Logger  zerolog.Logger

	Mapper   *cursor.Mapper
	Keyboard *keyboard.Keyboard

	Classifier gesture.ClassifierConfig
	Swipe      gesture.SwipeConfig
	Dispatch   action.Config
	Menu       mode.MenuConfig
	Draw       mode.DrawConfig

	ActiveFPS   int
	IdleFPS     int
	IdleTimeout time.Duration
	// SessionTTL is how long a hand may be missing before its state is dropped.
	SessionTTL time.Duration

	// Start is used when the store holds no saved state.
	Start State
}

// App runs the gesture pipeline.
type App struct {
	config   Config
	log      zerolog.Logger
	frameLog zerolog.Logger
	executor *action.Executor
	mapper   *cursor.Mapper
	keyboard *keyboard.Keyboard
	canvas   *mode.Canvas
	hub      *Hub

	mu          sync.RWMutex
	state       State
	enabled     bool
	lastGesture gesture.Gesture
	watchers    []func(State)
	cancel      context.CancelFunc
	done        chan struct{}

	// procMu serializes ProcessFrame; sessions belong to whoever holds it.
	procMu   sync.Mutex
	sessions map[detector.Handedness]*session
	seq      uint64

	active atomic.Bool
	jpeg   atomic.Pointer[[]byte]
}

// New creates an App. Missing optional parts get defaults.
func New(config Config) *App {
	if config.Mapper == nil {
		config.Mapper = cursor.NewMapper(cursor.DefaultMapperConfig())
	}
	if config.Keyboard == nil {
		config.Keyboard = keyboard.New(keyboard.DefaultConfig())
	}
	if config.ActiveFPS <= 0 {
		config.ActiveFPS = capture.DefaultConfig().ActiveFPS
	}
	if config.IdleFPS <= 0 {
		config.IdleFPS = capture.DefaultConfig().IdleFPS
	}
	if config.IdleTimeout <= 0 {
		config.IdleTimeout = 2 * time.Second
	}
	if config.SessionTTL <= 0 {
		config.SessionTTL = 5 * time.Second
	}
	if len(config.Draw.Colors) == 0 {
		config.Draw = mode.DefaultDrawConfig()
	}
	if config.Start.Mode == "" {
		config.Start.Mode = mode.Control
	}

	log := logging.Component(config.Logger, "app")
	opts := []action.ExecutorOption{action.WithMetrics(config.Metrics)}
	if config.Store != nil {
		opts = append(opts, action.WithRecorder(config.Store))
	}

	return &App{
		config:   config,
		log:      log,
		frameLog: logging.PerFrame(log),
		executor: action.NewExecutor(config.Sink, logging.Component(config.Logger, "executor"), opts...),
		mapper:   config.Mapper,
		keyboard: config.Keyboard,
		canvas:   mode.NewCanvas(config.Draw.MaxPoints),
		hub:      NewHub(),
		state:    config.Start,
		enabled:  true,
		sessions: make(map[detector.Handedness]*session),
	}
}

// Restore loads the saved toggles, keeping the start values for anything
// never saved.
func (a *App) Restore(ctx context.Context) error {
	if a.config.Store == nil {
		return nil
	}
	settings := a.config.Store.Settings()

	a.mu.Lock()
	defer a.mu.Unlock()

	mc, err := settings.GetBool(ctx, store.SettingMouseControl, a.state.MouseControl)
	if err != nil {
		return fmt.Errorf("failed to restore mouse control: %w", err)
	}
	ko, err := settings.GetBool(ctx, store.SettingKeyboardOverlay, a.state.KeyboardOverlay)
	if err != nil {
		return fmt.Errorf("failed to restore keyboard overlay: %w", err)
	}
	a.state.MouseControl, a.state.KeyboardOverlay = mc, ko

	saved, err := settings.Get(ctx, store.SettingMode)
	switch {
	case errors.Is(err, store.ErrNotFound):
	case err != nil:
		return fmt.Errorf("failed to restore mode: %w", err)
	default:
		if m, perr := mode.Parse(saved); perr == nil {
			a.state.Mode = m
		} else {
			a.log.Warn().Str("mode", saved).Msg("ignoring unknown saved mode")
		}
	}

	a.log.Info().
		Bool("mouse_control", a.state.MouseControl).
		Bool("keyboard_overlay", a.state.KeyboardOverlay).
		Str("mode", string(a.state.Mode)).
		Msg("state restored")
	return nil
}

// State returns the current toggles.
func (a *App) State() State {
	a.mu.RLock()
	defer a.mu.RUnlock()
	return a.state
}

// Update applies u, persists the result and notifies watchers.
func (a *App) Update(ctx context.Context, u StateUpdate) (State, error) {
	var next mode.Name
	if u.Mode != nil {
		m, err := mode.Parse(*u.Mode)
		if err != nil {
			return a.State(), err
		}
		next = m
	}

	a.mu.Lock()
	prev := a.state
	if u.MouseControl != nil {
		a.state.MouseControl = *u.MouseControl
	}
	if u.KeyboardOverlay != nil {
		a.state.KeyboardOverlay = *u.KeyboardOverlay
	}
	if next != "" {
		a.state.Mode = next
	}
	st := a.state
	watchers := append([]func(State){}, a.watchers...)
	a.mu.Unlock()

	if st == prev {
		return st, nil
	}
	if st.Mode != prev.Mode {
		a.config.Metrics.ModeSwitched(string(st.Mode))
		a.log.Info().Str("from", string(prev.Mode)).Str("to", string(st.Mode)).Msg("mode switched")
	}

	err := a.persist(ctx, prev, st)
	for _, fn := range watchers {
		fn(st)
	}
	return st, err
}

// SetMouseControl turns cursor control on or off.
func (a *App) SetMouseControl(ctx context.Context, on bool) error {
	_, err := a.Update(ctx, StateUpdate{MouseControl: &on})
	return err
}

// SetKeyboardOverlay shows or hides the virtual keyboard.
func (a *App) SetKeyboardOverlay(ctx context.Context, on bool) error {
	_, err := a.Update(ctx, StateUpdate{KeyboardOverlay: &on})
	return err
}

// SetMode switches the active mode.
func (a *App) SetMode(ctx context.Context, m mode.Name) error {
	s := string(m)
	_, err := a.Update(ctx, StateUpdate{Mode: &s})
	return err
}

func (a *App) persist(ctx context.Context, prev, st State) error {
	if a.config.Store == nil {
		return nil
	}
	settings := a.config.Store.Settings()

	var errs []error
	if st.MouseControl != prev.MouseControl {
		errs = append(errs, settings.SetBool(ctx, store.SettingMouseControl, st.MouseControl))
	}
	if st.KeyboardOverlay != prev.KeyboardOverlay {
		errs = append(errs, settings.SetBool(ctx, store.SettingKeyboardOverlay, st.KeyboardOverlay))
	}
	if st.Mode != prev.Mode {
		errs = append(errs, settings.Set(ctx, store.SettingMode, string(st.Mode)))
	}
	if err := errors.Join(errs...); err != nil {
		return fmt.Errorf("failed to save state: %w", err)
	}
	return nil
}

// Watch registers fn to be called after every state change.
func (a *App) Watch(fn func(State)) {
	a.mu.Lock()
	defer a.mu.Unlock()
	a.watchers = append(a.watchers, fn)
}

// SetEnabled pauses or resumes hand tracking. The camera keeps running so the
// preview stream stays live.
func (a *App) SetEnabled(enabled bool) {
	a.mu.Lock()
	defer a.mu.Unlock()
	a.enabled = enabled
}

// IsEnabled returns whether hand tracking is running.
func (a *App) IsEnabled() bool {
	a.mu.RLock()
	defer a.mu.RUnlock()
	return a.enabled
}

// LastGesture returns the most recent non-Unknown gesture of any hand.
func (a *App) LastGesture() gesture.Gesture {
	a.mu.RLock()
	defer a.mu.RUnlock()
	return a.lastGesture
}

// Start opens the camera and runs the frame loop until Stop or ctx ends.
func (a *App) Start(ctx context.Context) error {
	a.mu.Lock()
	defer a.mu.Unlock()

	if a.cancel != nil {
		return nil
	}
	if a.config.Camera == nil {
		return ErrNoCamera
	}
	if err := a.config.Camera.Open(); err != nil {
		return fmt.Errorf("failed to open camera: %w", err)
	}
	a.config.Camera.SetFPS(a.config.IdleFPS)

	ctx, cancel := context.WithCancel(ctx)
	a.cancel = cancel
	a.done = make(chan struct{})
	go func(done chan struct{}) {
		defer close(done)
		a.runPipeline(ctx)
	}(a.done)

	a.log.Info().Int("idle_fps", a.config.IdleFPS).Int("active_fps", a.config.ActiveFPS).Msg("pipeline started")
	return nil
}

// Stop halts the frame loop and releases the camera and detector.
func (a *App) Stop() {
	a.mu.Lock()
	cancel, done := a.cancel, a.done
	a.cancel, a.done = nil, nil
	a.mu.Unlock()

	if cancel == nil {
		return
	}
	cancel()
	<-done

	if err := a.config.Camera.Close(); err != nil {
		a.log.Warn().Err(err).Msg("failed to close camera")
	}
	if a.config.Motion != nil {
		a.config.Motion.Close()
	}
	if a.config.Detector != nil {
		if err := a.config.Detector.Close(); err != nil {
			a.log.Warn().Err(err).Msg("failed to close detector")
		}
	}
	a.active.Store(false)
	a.log.Info().Msg("pipeline stopped")
}

// Running reports whether the frame loop is active.
func (a *App) Running() bool {
	a.mu.RLock()
	defer a.mu.RUnlock()
	return a.cancel != nil
}

// Active reports whether motion has switched the loop to the active rate.
func (a *App) Active() bool {
	return a.active.Load()
}

// Hub returns the snapshot hub.
func (a *App) Hub() *Hub {
	return a.hub
}

// Canvas returns the drawing board.
func (a *App) Canvas() *mode.Canvas {
	return a.canvas
}

// Keyboard returns the overlay layout.
func (a *App) Keyboard() *keyboard.Keyboard {
	return a.keyboard
}

// LatestJPEG returns the most recent camera frame as JPEG, or nil.
func (a *App) LatestJPEG() []byte {
	if p := a.jpeg.Load(); p != nil {
		return *p
	}
	return nil
}

// TrackedHands reports how many hand sessions are alive.
func (a *App) TrackedHands() int {
	a.procMu.Lock()
	defer a.procMu.Unlock()
	return len(a.sessions)
}
