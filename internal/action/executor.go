package action

import (
	"context"
	"errors"
	"fmt"

	"github.com/rs/zerolog"

	"github.com/ayusman/mudra/internal/metrics"
)

// ErrUnsupported is returned by sinks for actions they cannot perform.
var ErrUnsupported = errors.New("action not supported")

// Sink performs OS-level input.
type Sink interface {
	MoveCursor(x, y int) error
	Click() error
	RightClick() error
	PressKey(key string) error
	SendHotkey(key string, modifiers ...string) error
}

// Meta identifies where a batch of events came from.
type Meta struct {
	SessionID string
	Hand      string
	Mode      string
}

// Recorder persists discrete actions.
type Recorder interface {
	RecordAction(ctx context.Context, meta Meta, ev Event) error
}

// Executor applies events to a Sink. A failed action is logged, counted and
// skipped; it never aborts the remaining events.
type Executor struct {
	sink     Sink
	recorder Recorder
	metrics  *metrics.Manager
	log      zerolog.Logger
}

// ExecutorOption configures an Executor.
type ExecutorOption func(*Executor)

// WithRecorder stores every successful discrete action.
func WithRecorder(r Recorder) ExecutorOption {
	return func(e *Executor) {
		e.recorder = r
	}
}

// WithMetrics counts executed and failed actions.
func WithMetrics(m *metrics.Manager) ExecutorOption {
	return func(e *Executor) {
		e.metrics = m
	}
}

// NewExecutor creates an Executor writing to sink.
func NewExecutor(sink Sink, log zerolog.Logger, opts ...ExecutorOption) *Executor {
	e := &Executor{sink: sink, log: log}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// Execute applies events in order and returns how many failed.
// Application-level events (mode toggles, drawing) are not sent to the sink.
func (e *Executor) Execute(ctx context.Context, meta Meta, events []Event) int {
	failed := 0
	for _, ev := range events {
		if err := e.apply(ev); err != nil {
			failed++
			e.metrics.ActionFailed(string(ev.Kind))
			e.log.Warn().Err(err).
				Str("action", ev.String()).
				Str("hand", meta.Hand).
				Msg("action failed")
			continue
		}
		e.metrics.ActionExecuted(string(ev.Kind))

		if !ev.Discrete() || ev.Kind == KindStroke {
			continue
		}
		e.log.Debug().Str("action", ev.String()).Str("hand", meta.Hand).Msg("action")
		if e.recorder != nil {
			if err := e.recorder.RecordAction(ctx, meta, ev); err != nil {
				e.log.Warn().Err(err).Str("action", ev.String()).Msg("failed to record action")
			}
		}
	}
	return failed
}

func (e *Executor) apply(ev Event) error {
	switch ev.Kind {
	case KindCursorMove:
		return e.sink.MoveCursor(int(ev.X), int(ev.Y))
	case KindClick:
		return e.sink.Click()
	case KindRightClick:
		return e.sink.RightClick()
	case KindKeyPress:
		return e.sink.PressKey(ev.Key)
	case KindHotkey:
		key, mods := SplitCombo(ev.Combo)
		if key == "" {
			return fmt.Errorf("empty hotkey %q: %w", ev.Combo, ErrUnsupported)
		}
		return e.sink.SendHotkey(key, mods...)
	case KindToggleMode, KindStroke, KindClear:
		return nil
	default:
		return fmt.Errorf("kind %q: %w", ev.Kind, ErrUnsupported)
	}
}
