package app

import (
	"context"
	"errors"
	"path/filepath"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/rs/zerolog"

	"github.com/ayusman/mudra/internal/action"
	"github.com/ayusman/mudra/internal/cursor"
	"github.com/ayusman/mudra/internal/detector"
	"github.com/ayusman/mudra/internal/gesture"
	"github.com/ayusman/mudra/internal/metrics"
	"github.com/ayusman/mudra/internal/mode"
	"github.com/ayusman/mudra/internal/store"
)

var t0 = time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)

type recordingSink struct {
	mu    sync.Mutex
	calls []string
}

func (s *recordingSink) add(c string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.calls = append(s.calls, c)
	return nil
}

func (s *recordingSink) MoveCursor(x, y int) error { return s.add("move") }
func (s *recordingSink) Click() error              { return s.add("click") }
func (s *recordingSink) RightClick() error         { return s.add("right_click") }
func (s *recordingSink) PressKey(key string) error { return s.add("key:" + key) }
func (s *recordingSink) SendHotkey(key string, mods ...string) error {
	return s.add("hotkey:" + strings.Join(append(mods, key), "+"))
}

func (s *recordingSink) count(c string) int {
	s.mu.Lock()
	defer s.mu.Unlock()
	n := 0
	for _, got := range s.calls {
		if got == c {
			n++
		}
	}
	return n
}

func newTestApp(t *testing.T, start State, st *store.Store) (*App, *recordingSink, *metrics.Manager) {
	t.Helper()
	sink := &recordingSink{}
	m := metrics.NewManager()
	mapper := cursor.NewMapper(cursor.MapperConfig{Inset: 150, Margin: 2, ScreenWidth: 1920, ScreenHeight: 1080})
	a := New(Config{
		Sink:       sink,
		Store:      st,
		Metrics:    m,
		Logger:     zerolog.Nop(),
		Mapper:     mapper,
		Classifier: gesture.DefaultClassifierConfig(),
		Swipe:      gesture.DefaultSwipeConfig(),
		Dispatch:   action.DefaultConfig(),
		Menu:       mode.DefaultMenuConfig(),
		SessionTTL: 5 * time.Second,
		Start:      start,
	})
	return a, sink, m
}

func newTestStore(t *testing.T) *store.Store {
	t.Helper()
	s, err := store.New(filepath.Join(t.TempDir(), "test.db"))
	if err != nil {
		t.Fatalf("store.New() error = %v", err)
	}
	t.Cleanup(func() { s.Close() })
	return s
}

func frameAt(i int, hands ...detector.HandLandmarks) detector.Frame {
	return detector.Frame{
		Hands:     hands,
		Width:     640,
		Height:    480,
		Timestamp: t0.Add(time.Duration(i) * time.Second / 30),
	}
}

var controlOn = State{Modes: action.Modes{MouseControl: true}, Mode: mode.Control}

func TestApp_PinchClicksOnce(t *testing.T) {
	st := newTestStore(t)
	a, sink, _ := newTestApp(t, controlOn, st)
	ctx := context.Background()

	pinch := detector.PinchLandmarks()
	var snaps []Snapshot
	for i := 0; i < 4; i++ {
		snaps = append(snaps, a.ProcessFrame(ctx, frameAt(i, pinch)))
	}
	a.ProcessFrame(ctx, frameAt(4, detector.OpenPalmLandmarks()))

	if n := sink.count("click"); n != 1 {
		t.Errorf("clicks = %d, want 1", n)
	}
	if n := sink.count("move"); n != 5 {
		t.Errorf("moves = %d, want one per frame", n)
	}

	first := snaps[0]
	if len(first.Hands) != 1 || first.Hands[0].Gesture != gesture.Pinch {
		t.Fatalf("first snapshot hands = %+v", first.Hands)
	}
	if diff := cmp.Diff([]string{"click"}, first.Actions); diff != "" {
		t.Errorf("first snapshot actions mismatch (-want +got):\n%s", diff)
	}
	if len(snaps[1].Actions) != 0 {
		t.Errorf("held pinch produced actions: %v", snaps[1].Actions)
	}
	if !snaps[1].Hands[0].Clicking {
		t.Error("Clicking = false during a pinch run")
	}

	logged, err := st.Events().Recent(ctx, 10)
	if err != nil {
		t.Fatal(err)
	}
	if len(logged) != 1 || logged[0].Kind != "click" || logged[0].SessionID != first.Hands[0].SessionID {
		t.Errorf("logged events = %+v, want the one click", logged)
	}
}

func TestApp_MouseControlOffSuppressesPointer(t *testing.T) {
	a, sink, _ := newTestApp(t, State{Mode: mode.Control}, nil)

	for i := 0; i < 3; i++ {
		a.ProcessFrame(context.Background(), frameAt(i, detector.PinchLandmarks()))
	}
	if len(sink.calls) != 0 {
		t.Errorf("sink calls = %v with mouse control off", sink.calls)
	}
}

func TestApp_RightSwipe(t *testing.T) {
	a, sink, m := newTestApp(t, State{Mode: mode.Control}, nil)

	palm := detector.OpenPalmLandmarks()
	var swipes []gesture.Swipe
	for i := 0; i < 5; i++ {
		snap := a.ProcessFrame(context.Background(), frameAt(i, detector.Translate(palm, float64(30*i), 0)))
		swipes = append(swipes, snap.Hands[0].Swipe)
	}

	want := []gesture.Swipe{gesture.SwipeNone, gesture.SwipeRight, gesture.SwipeNone, gesture.SwipeNone, gesture.SwipeNone}
	if diff := cmp.Diff(want, swipes); diff != "" {
		t.Errorf("swipes mismatch (-want +got):\n%s", diff)
	}
	if n := sink.count("hotkey:ctrl+cmd+right"); n != 1 {
		t.Errorf("desktop hotkeys = %d, want 1", n)
	}

	const exposition = `
# HELP mudra_swipes_total Detected swipes, by direction.
# TYPE mudra_swipes_total counter
mudra_swipes_total{direction="Right"} 1
`
	if err := testutil.GatherAndCompare(m.Registry(), strings.NewReader(exposition), "mudra_swipes_total"); err != nil {
		t.Error(err)
	}
}

func TestApp_HandsAreIndependent(t *testing.T) {
	a, sink, m := newTestApp(t, controlOn, nil)
	ctx := context.Background()

	left := detector.PinchLandmarks()
	left.Handedness = detector.HandLeft
	right := detector.OpenPalmLandmarks()

	snap := a.ProcessFrame(ctx, frameAt(0, left, right))
	if len(snap.Hands) != 2 {
		t.Fatalf("hands = %d, want 2", len(snap.Hands))
	}
	if snap.Hands[0].SessionID == snap.Hands[1].SessionID {
		t.Error("hands share a session")
	}
	if a.TrackedHands() != 2 {
		t.Errorf("TrackedHands() = %d, want 2", a.TrackedHands())
	}

	// A second Right label in the same frame is ignored.
	dup := a.ProcessFrame(ctx, frameAt(1, right, detector.PinchLandmarks()))
	if len(dup.Hands) != 1 || dup.Hands[0].Gesture != gesture.OpenPalm {
		t.Errorf("duplicate handedness snapshot = %+v", dup.Hands)
	}

	if n := sink.count("click"); n != 1 {
		t.Errorf("clicks = %d, want 1 from the left hand", n)
	}

	// Within the TTL a missing hand keeps its session; past it the session goes.
	a.ProcessFrame(ctx, detector.Frame{Width: 640, Height: 480, Timestamp: t0.Add(2 * time.Second)})
	if a.TrackedHands() != 2 {
		t.Errorf("TrackedHands() = %d within TTL, want 2", a.TrackedHands())
	}
	a.ProcessFrame(ctx, detector.Frame{Width: 640, Height: 480, Timestamp: t0.Add(10 * time.Second)})
	if a.TrackedHands() != 0 {
		t.Errorf("TrackedHands() = %d after TTL, want 0", a.TrackedHands())
	}

	const exposition = `
# HELP mudra_tracked_hands Hands with a live tracking session.
# TYPE mudra_tracked_hands gauge
mudra_tracked_hands 0
`
	if err := testutil.GatherAndCompare(m.Registry(), strings.NewReader(exposition), "mudra_tracked_hands"); err != nil {
		t.Error(err)
	}
}

func TestApp_NewSessionAfterExpiry(t *testing.T) {
	a, _, _ := newTestApp(t, controlOn, nil)
	ctx := context.Background()

	first := a.ProcessFrame(ctx, frameAt(0, detector.OpenPalmLandmarks()))
	a.ProcessFrame(ctx, detector.Frame{Width: 640, Height: 480, Timestamp: t0.Add(6 * time.Second)})
	again := a.ProcessFrame(ctx, detector.Frame{
		Hands:     []detector.HandLandmarks{detector.OpenPalmLandmarks()},
		Width:     640,
		Height:    480,
		Timestamp: t0.Add(7 * time.Second),
	})

	if first.Hands[0].SessionID == again.Hands[0].SessionID {
		t.Error("returning hand reused an expired session")
	}
}

func TestApp_DroppedFrameForgetsSwipePoint(t *testing.T) {
	a, sink, _ := newTestApp(t, controlOn, nil)
	ctx := context.Background()
	palm := detector.OpenPalmLandmarks()

	a.ProcessFrame(ctx, frameAt(0, palm))
	a.ProcessFrame(ctx, frameAt(1))
	back := a.ProcessFrame(ctx, frameAt(2, detector.Translate(palm, 40, 0)))

	if back.Hands[0].Swipe != gesture.SwipeNone {
		t.Errorf("swipe = %q across a frame without the hand, want none", back.Hands[0].Swipe)
	}
	if n := sink.count("hotkey:ctrl+cmd+right"); n != 0 {
		t.Errorf("desktop switches = %d, want 0", n)
	}
}

func TestApp_MenuSelectsMode(t *testing.T) {
	st := newTestStore(t)
	a, _, m := newTestApp(t, State{Mode: mode.Menu}, st)
	ctx := context.Background()

	var changes []State
	a.Watch(func(s State) { changes = append(changes, s) })

	// Index tip at (310, 230) sits on the Control button.
	fist := detector.Translate(detector.FistLandmarks(), 0, -100)
	snap := a.ProcessFrame(ctx, frameAt(0, fist))

	if got := a.State().Mode; got != mode.Control {
		t.Fatalf("mode = %q, want control", got)
	}
	if diff := cmp.Diff([]string{"toggle_mode(control)"}, snap.Actions); diff != "" {
		t.Errorf("actions mismatch (-want +got):\n%s", diff)
	}
	if snap.Menu != nil {
		t.Error("snapshot still shows the menu after leaving it")
	}
	if len(changes) != 1 || changes[0].Mode != mode.Control {
		t.Errorf("watchers saw %+v", changes)
	}

	const exposition = `
# HELP mudra_mode_switches_total Mode changes, by target mode.
# TYPE mudra_mode_switches_total counter
mudra_mode_switches_total{mode="control"} 1
`
	if err := testutil.GatherAndCompare(m.Registry(), strings.NewReader(exposition), "mudra_mode_switches_total"); err != nil {
		t.Error(err)
	}

	saved, err := st.Settings().Get(ctx, store.SettingMode)
	if err != nil || saved != "control" {
		t.Errorf("saved mode = (%q, %v), want control", saved, err)
	}
}

func TestApp_MenuSnapshot(t *testing.T) {
	a, _, _ := newTestApp(t, State{Mode: mode.Menu}, nil)

	snap := a.ProcessFrame(context.Background(), frameAt(0, detector.PointLandmarks()))

	if snap.Menu == nil {
		t.Fatal("menu snapshot missing in menu mode")
	}
	if len(snap.Menu.Buttons) != 2 {
		t.Errorf("buttons = %d, want 2", len(snap.Menu.Buttons))
	}
	if snap.Menu.Hover != mode.Control || snap.Menu.Progress != 0 {
		t.Errorf("hover = %q progress = %v, want control at 0", snap.Menu.Hover, snap.Menu.Progress)
	}
}

func TestApp_DrawMode(t *testing.T) {
	a, sink, _ := newTestApp(t, State{Modes: action.Modes{MouseControl: true}, Mode: mode.Draw}, nil)
	ctx := context.Background()

	point := detector.PointLandmarks()
	for i := 0; i < 3; i++ {
		a.ProcessFrame(ctx, frameAt(i, detector.Translate(point, float64(i), 0)))
	}
	// Lifting the finger ends the stroke; pointing again starts another.
	a.ProcessFrame(ctx, frameAt(3, detector.FistLandmarks()))
	snap := a.ProcessFrame(ctx, frameAt(4, point))

	if len(snap.Strokes) != 2 {
		t.Fatalf("strokes = %d, want 2", len(snap.Strokes))
	}
	if len(snap.Strokes[0].Points) != 3 || len(snap.Strokes[1].Points) != 1 {
		t.Errorf("stroke lengths = %d, %d, want 3, 1", len(snap.Strokes[0].Points), len(snap.Strokes[1].Points))
	}
	wantBrush := action.Brush{Color: "#ff00ff", Size: 10}
	if snap.Strokes[0].Brush != wantBrush {
		t.Errorf("stroke brush = %+v, want %+v", snap.Strokes[0].Brush, wantBrush)
	}
	if b := snap.Hands[0].Brush; b == nil || *b != wantBrush {
		t.Errorf("hand brush = %v, want %+v", b, wantBrush)
	}
	if snap.Palette == nil || len(snap.Palette.Swatches) != 7 {
		t.Errorf("palette = %+v, want 7 swatches", snap.Palette)
	}
	if len(sink.calls) != 0 {
		t.Errorf("draw mode reached the sink: %v", sink.calls)
	}

	cleared := a.ProcessFrame(ctx, frameAt(5, detector.OpenPalmLandmarks()))
	if len(cleared.Strokes) != 0 {
		t.Errorf("strokes after open palm = %d, want 0", len(cleared.Strokes))
	}
	if diff := cmp.Diff([]string{"clear"}, cleared.Actions); diff != "" {
		t.Errorf("actions mismatch (-want +got):\n%s", diff)
	}
}

func TestApp_ClickEdgesFollowTheHandAcrossModes(t *testing.T) {
	ctx := context.Background()
	pinch, fist := detector.PinchLandmarks(), detector.FistLandmarks()

	t.Run("pinch released in another mode clicks on return", func(t *testing.T) {
		a, sink, _ := newTestApp(t, controlOn, nil)

		a.ProcessFrame(ctx, frameAt(0, pinch))
		if err := a.SetMode(ctx, mode.Draw); err != nil {
			t.Fatalf("SetMode() error = %v", err)
		}
		for i := 1; i <= 3; i++ {
			a.ProcessFrame(ctx, frameAt(i, fist))
		}
		if err := a.SetMode(ctx, mode.Control); err != nil {
			t.Fatalf("SetMode() error = %v", err)
		}
		a.ProcessFrame(ctx, frameAt(20, pinch))

		if n := sink.count("click"); n != 2 {
			t.Errorf("clicks = %d, want 2", n)
		}
	})

	t.Run("pinch begun in another mode does not click on arrival", func(t *testing.T) {
		a, sink, _ := newTestApp(t, State{Modes: action.Modes{MouseControl: true}, Mode: mode.Draw}, nil)

		for i := 0; i < 3; i++ {
			a.ProcessFrame(ctx, frameAt(i, pinch))
		}
		if err := a.SetMode(ctx, mode.Control); err != nil {
			t.Fatalf("SetMode() error = %v", err)
		}
		a.ProcessFrame(ctx, frameAt(3, pinch))
		if n := sink.count("click"); n != 0 {
			t.Fatalf("clicks = %d on arrival mid-pinch, want 0", n)
		}

		a.ProcessFrame(ctx, frameAt(4, fist))
		a.ProcessFrame(ctx, frameAt(20, pinch))
		if n := sink.count("click"); n != 1 {
			t.Errorf("clicks = %d after a fresh pinch, want 1", n)
		}
	})
}

func TestApp_KeyboardOverlay(t *testing.T) {
	a, sink, _ := newTestApp(t, State{Modes: action.Modes{KeyboardOverlay: true}, Mode: mode.Control}, nil)

	key := a.Keyboard().Keys()[0]
	center := key.Rect.Min.Add(key.Rect.Size().Div(2))

	pinch := detector.PinchLandmarks()
	tip := pinch.Points[detector.IndexTip]
	pinch = detector.Translate(pinch, float64(center.X)-tip.X, float64(center.Y)-tip.Y)

	snap := a.ProcessFrame(context.Background(), frameAt(0, pinch))

	if n := sink.count("key:" + key.Code); n != 1 {
		t.Errorf("key presses for %q = %d, want 1 (calls %v)", key.Code, n, sink.calls)
	}
	if len(snap.Keys) != len(a.Keyboard().Keys()) {
		t.Errorf("snapshot keys = %d, want the full layout", len(snap.Keys))
	}
}

func TestApp_StateRestore(t *testing.T) {
	st := newTestStore(t)
	ctx := context.Background()

	a, _, _ := newTestApp(t, State{Mode: mode.Control}, st)
	on := true
	drawName := "draw"
	got, err := a.Update(ctx, StateUpdate{MouseControl: &on, Mode: &drawName})
	if err != nil {
		t.Fatalf("Update() error = %v", err)
	}
	want := State{Modes: action.Modes{MouseControl: true}, Mode: mode.Draw}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Errorf("Update() mismatch (-want +got):\n%s", diff)
	}

	b, _, _ := newTestApp(t, State{Modes: action.Modes{KeyboardOverlay: true}, Mode: mode.Control}, st)
	if err := b.Restore(ctx); err != nil {
		t.Fatalf("Restore() error = %v", err)
	}
	// Keyboard overlay was never saved, so the start value stays.
	want.KeyboardOverlay = true
	if diff := cmp.Diff(want, b.State()); diff != "" {
		t.Errorf("restored state mismatch (-want +got):\n%s", diff)
	}
}

func TestApp_UpdateRejectsUnknownMode(t *testing.T) {
	a, _, _ := newTestApp(t, controlOn, nil)

	bad := "juggle"
	_, err := a.Update(context.Background(), StateUpdate{Mode: &bad})
	if !errors.Is(err, mode.ErrUnknownMode) {
		t.Errorf("Update() error = %v, want ErrUnknownMode", err)
	}
	if a.State() != controlOn {
		t.Errorf("state changed on a rejected update: %+v", a.State())
	}
}

func TestApp_PublishesSnapshots(t *testing.T) {
	a, _, _ := newTestApp(t, controlOn, nil)

	ch, cancel := a.Hub().Subscribe(1)
	defer cancel()

	a.ProcessFrame(context.Background(), frameAt(0, detector.OpenPalmLandmarks()))
	a.ProcessFrame(context.Background(), frameAt(1, detector.FistLandmarks()))

	select {
	case snap := <-ch:
		if snap.Seq != 2 || snap.Hands[0].Gesture != gesture.Fist {
			t.Errorf("subscriber got seq %d %+v, want the latest frame", snap.Seq, snap.Hands)
		}
	default:
		t.Fatal("no snapshot delivered")
	}

	latest, ok := a.Hub().Latest()
	if !ok || latest.Seq != 2 {
		t.Errorf("Latest() = seq %d, %v", latest.Seq, ok)
	}
	if a.LastGesture() != gesture.Fist {
		t.Errorf("LastGesture() = %q, want Fist", a.LastGesture())
	}
}
