package app

import (
	"time"

	"github.com/google/uuid"

	"github.com/ayusman/mudra/internal/action"
	"github.com/ayusman/mudra/internal/detector"
	"github.com/ayusman/mudra/internal/gesture"
	"github.com/ayusman/mudra/internal/mode"
)

// session is the state of one tracked hand. Sessions are keyed by handedness
// and never share state, so a second hand cannot disturb the first one's
// smoothing, swipe history or click edges.
type session struct {
	id   string
	hand detector.Handedness

	classifier *gesture.Classifier
	swipe      *gesture.SwipeDetector
	dispatcher *action.Dispatcher
	menu       *mode.MenuHandler
	draw       *mode.DrawHandler
	handlers   *mode.Set

	lastSeen    time.Time
	lastGesture gesture.Gesture
}

func (a *App) newSession(hand detector.Handedness, at time.Time) *session {
	d := action.NewDispatcher(a.config.Dispatch, a.keyboard)
	menu := mode.NewMenuHandler(a.config.Menu)
	draw := mode.NewDrawHandler(a.config.Draw)
	return &session{
		id:         uuid.New().String(),
		hand:       hand,
		classifier: gesture.NewClassifier(a.config.Classifier),
		swipe:      gesture.NewSwipeDetector(a.config.Swipe),
		dispatcher: d,
		menu:       menu,
		draw:       draw,
		handlers: mode.NewSet(
			mode.NewControlHandler(d),
			menu,
			draw,
		),
		lastSeen: at,
	}
}

// session returns the live session for hand, creating one if needed.
// Callers hold procMu.
func (a *App) session(hand detector.Handedness, at time.Time) *session {
	s, ok := a.sessions[hand]
	if !ok {
		s = a.newSession(hand, at)
		a.sessions[hand] = s
		a.log.Info().Str("hand", string(hand)).Str("session", s.id).Msg("hand tracked")
	}
	s.lastSeen = at
	return s
}

// expire drops sessions for hands missing longer than the TTL. Every hand not
// seen this frame lifts its pen and forgets its swipe point. Callers hold
// procMu.
func (a *App) expire(seen map[detector.Handedness]bool, at time.Time) {
	for hand, s := range a.sessions {
		if seen[hand] {
			continue
		}
		a.canvas.Lift(s.id)
		s.swipe.Reset()
		if at.Sub(s.lastSeen) > a.config.SessionTTL {
			delete(a.sessions, hand)
			a.log.Info().Str("hand", string(hand)).Str("session", s.id).Msg("hand lost")
		}
	}
}
