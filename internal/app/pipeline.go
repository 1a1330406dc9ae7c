package app

import (
	"context"
	"time"

	"gocv.io/x/gocv"

	"github.com/ayusman/mudra/internal/action"
	"github.com/ayusman/mudra/internal/detector"
	"github.com/ayusman/mudra/internal/gesture"
	"github.com/ayusman/mudra/internal/mode"
)

// runPipeline is the camera loop. It starts at the idle rate and only runs the
// detector while motion is present:
//
//  1. Read a frame and publish it as JPEG for the preview stream.
//  2. Switch to the active rate on motion; drop back after IdleTimeout.
//  3. Detect landmarks, scale them to pixels and hand them to ProcessFrame.
func (a *App) runPipeline(ctx context.Context) {
	active := false
	lastMotion := time.Now()

	ticker := time.NewTicker(time.Second / time.Duration(a.config.IdleFPS))
	defer ticker.Stop()

	setRate := func(fps int) {
		a.config.Camera.SetFPS(fps)
		ticker.Reset(time.Second / time.Duration(fps))
	}

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
		}

		frame, err := a.config.Camera.ReadFrame()
		if err != nil {
			a.config.Metrics.FrameDropped("read")
			a.frameLog.Warn().Err(err).Msg("failed to read frame")
			continue
		}
		a.encodeJPEG(frame)

		moving, changed := true, 100.0
		if a.config.Motion != nil {
			moving, changed = a.config.Motion.Detect(frame)
		}
		now := time.Now()
		if moving {
			lastMotion = now
			if !active {
				active = true
				a.active.Store(true)
				setRate(a.config.ActiveFPS)
				a.log.Debug().Float64("changed_pct", changed).Msg("switched to active rate")
			}
		} else if active && now.Sub(lastMotion) > a.config.IdleTimeout {
			active = false
			a.active.Store(false)
			setRate(a.config.IdleFPS)
			a.log.Debug().Msg("switched to idle rate")
		}

		if !active || !a.IsEnabled() || a.config.Detector == nil {
			frame.Close()
			a.config.Metrics.FrameDropped("idle")
			continue
		}

		width, height := frame.Cols(), frame.Rows()
		res, err := a.config.Detector.Detect(frame)
		frame.Close()
		if err != nil {
			a.config.Metrics.FrameDropped("detect")
			a.frameLog.Warn().Err(err).Msg("failed to detect landmarks")
			continue
		}

		a.ProcessFrame(ctx, toFrame(res, width, height, now))
	}
}

// toFrame scales a detector result into camera pixels.
func toFrame(res detector.Result, width, height int, at time.Time) detector.Frame {
	f := detector.Frame{
		Hands:     make([]detector.HandLandmarks, len(res.Hands)),
		Faces:     res.Faces,
		Width:     width,
		Height:    height,
		Timestamp: at,
	}
	for i, h := range res.Hands {
		f.Hands[i] = h.ToPixels(width, height)
	}
	return f
}

func (a *App) encodeJPEG(frame *gocv.Mat) {
	buf, err := gocv.IMEncode(gocv.JPEGFileExt, *frame)
	if err != nil {
		a.frameLog.Warn().Err(err).Msg("failed to encode preview")
		return
	}
	data := append([]byte(nil), buf.GetBytes()...)
	buf.Close()
	a.jpeg.Store(&data)
}

// ProcessFrame runs the gesture pipeline for one frame of pixel-space
// landmarks, applies the resulting actions and publishes a snapshot.
func (a *App) ProcessFrame(ctx context.Context, f detector.Frame) Snapshot {
	started := time.Now()

	a.procMu.Lock()
	defer a.procMu.Unlock()

	at := f.Timestamp
	if at.IsZero() {
		at = started
	}
	st := a.State()

	seen := make(map[detector.Handedness]bool, len(f.Hands))
	var hands []HandSnapshot
	var performed []string
	var menuView *MenuSnapshot

	for i := range f.Hands {
		hand := f.Hands[i]
		hand.Handedness = hand.Handedness.Normalize()
		if seen[hand.Handedness] {
			a.frameLog.Debug().Str("hand", string(hand.Handedness)).Msg("duplicate handedness ignored")
			continue
		}
		seen[hand.Handedness] = true

		s := a.session(hand.Handedness, at)
		g, fingers := s.classifier.Classify(&hand)
		swipe := s.swipe.Detect(&hand, at)
		pointer := s.classifier.Cursor()
		screen := a.mapper.Map(pointer, f.Width, f.Height)

		events := s.handlers.Handle(st.Mode, mode.Input{
			Gesture:     g,
			Fingers:     fingers,
			Swipe:       swipe,
			Pointer:     pointer,
			Screen:      screen,
			Palm:        gesture.PalmCentre(&hand),
			FrameWidth:  f.Width,
			FrameHeight: f.Height,
			Modes:       st.Modes,
			At:          at,
		})

		drew := a.applyLocal(ctx, s, events)
		if !drew {
			a.canvas.Lift(s.id)
		}
		a.executor.Execute(ctx, action.Meta{
			SessionID: s.id,
			Hand:      string(s.hand),
			Mode:      string(st.Mode),
		}, events)

		a.observe(s, g, swipe)
		for _, ev := range events {
			if ev.Discrete() && ev.Kind != action.KindStroke {
				performed = append(performed, ev.String())
			}
		}

		an := s.classifier.Analytics()
		an.ScreenPos = screen
		var brush *action.Brush
		if st.Mode == mode.Draw {
			b := s.draw.Brush()
			brush = &b
		}
		hands = append(hands, HandSnapshot{
			SessionID:     s.id,
			Hand:          s.hand,
			Gesture:       g,
			Fingers:       fingers.Extended,
			FingerCount:   fingers.Count,
			Swipe:         swipe,
			Pointer:       pointer,
			Screen:        screen,
			Analytics:     an,
			Clicking:      s.dispatcher.Clicking(),
			RightClicking: s.dispatcher.RightClicking(),
			Landmarks:     hand.Points,
			Brush:         brush,
		})

		if st.Mode == mode.Menu && menuView == nil {
			hover, progress := s.menu.Progress(at)
			menuView = &MenuSnapshot{Hover: hover, Progress: progress}
		}
	}

	a.expire(seen, at)
	a.config.Metrics.SetTrackedHands(len(a.sessions))

	snap := a.snapshot(f, at, hands, performed, menuView)
	a.hub.Publish(snap)
	a.config.Metrics.FrameProcessed(time.Since(started).Seconds())
	return snap
}

// applyLocal handles the events the application consumes itself and reports
// whether the hand drew this frame.
func (a *App) applyLocal(ctx context.Context, s *session, events []action.Event) bool {
	drew := false
	for _, ev := range events {
		switch ev.Kind {
		case action.KindToggleMode:
			m, err := mode.Parse(ev.Mode)
			if err != nil {
				a.log.Warn().Err(err).Msg("ignoring mode toggle")
				continue
			}
			if err := a.SetMode(ctx, m); err != nil {
				a.log.Warn().Err(err).Msg("failed to save mode")
			}
		case action.KindStroke:
			a.canvas.Extend(s.id, ev.Point(), ev.Brush)
			drew = true
		case action.KindClear:
			a.canvas.Clear()
		}
	}
	return drew
}

func (a *App) observe(s *session, g gesture.Gesture, swipe gesture.Swipe) {
	a.config.Metrics.GestureObserved(string(s.hand), string(g))
	if swipe != gesture.SwipeNone {
		a.config.Metrics.SwipeObserved(string(swipe))
		a.log.Debug().Str("hand", string(s.hand)).Str("swipe", string(swipe)).Msg("swipe")
	}
	if g != s.lastGesture {
		a.frameLog.Debug().Str("hand", string(s.hand)).Str("gesture", string(g)).Msg("gesture changed")
		s.lastGesture = g
	}
	if g != gesture.Unknown {
		a.mu.Lock()
		a.lastGesture = g
		a.mu.Unlock()
	}
}

func (a *App) snapshot(f detector.Frame, at time.Time, hands []HandSnapshot, performed []string, menu *MenuSnapshot) Snapshot {
	a.seq++
	st := a.State()

	snap := Snapshot{
		Seq:     a.seq,
		At:      at,
		Width:   f.Width,
		Height:  f.Height,
		Active:  a.active.Load(),
		State:   st,
		Hands:   hands,
		Faces:   len(f.Faces),
		Actions: performed,
	}
	if st.KeyboardOverlay {
		snap.Keys = a.keyboard.Keys()
	}
	if st.Mode == mode.Menu {
		if menu == nil {
			menu = &MenuSnapshot{}
		}
		menu.Buttons = mode.MenuButtons(a.config.Menu, f.Width)
		snap.Menu = menu
	}
	if st.Mode == mode.Draw {
		palette := mode.PaletteLayout(a.config.Draw, f.Width)
		snap.Palette = &palette
		snap.Strokes = a.canvas.Strokes()
	}
	return snap
}
