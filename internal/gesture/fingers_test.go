package gesture

import (
	"testing"

	"github.com/google/go-cmp/cmp"

	"github.com/ayusman/mudra/internal/detector"
)

// mirrorX flips a hand horizontally within a frame of the given width and
// relabels it as the other hand.
func mirrorX(hand detector.HandLandmarks, width float64) detector.HandLandmarks {
	for i := range hand.Points {
		hand.Points[i].X = width - hand.Points[i].X
	}
	if hand.Handedness == detector.HandLeft {
		hand.Handedness = detector.HandRight
	} else {
		hand.Handedness = detector.HandLeft
	}
	return hand
}

func TestExtractFingers(t *testing.T) {
	tests := []struct {
		name string
		hand detector.HandLandmarks
		want FingerState
	}{
		{
			name: "fist",
			hand: detector.FistLandmarks(),
			want: FingerState{},
		},
		{
			name: "open palm",
			hand: detector.OpenPalmLandmarks(),
			want: FingerState{Extended: [5]bool{true, true, true, true, true}, Count: 5},
		},
		{
			name: "two finger",
			hand: detector.TwoFingerLandmarks(),
			want: FingerState{Extended: [5]bool{false, true, true, false, false}, Count: 2},
		},
		{
			name: "pointing",
			hand: detector.PointLandmarks(),
			want: FingerState{Extended: [5]bool{false, true, false, false, false}, Count: 1},
		},
		{
			name: "left open palm",
			hand: mirrorX(detector.OpenPalmLandmarks(), 640),
			want: FingerState{Extended: [5]bool{true, true, true, true, true}, Count: 5},
		},
		{
			name: "left fist",
			hand: mirrorX(detector.FistLandmarks(), 640),
			want: FingerState{},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := ExtractFingers(&tt.hand)
			if diff := cmp.Diff(tt.want, got); diff != "" {
				t.Errorf("ExtractFingers() mismatch (-want +got):\n%s", diff)
			}
		})
	}
}

func TestExtractFingers_Handedness(t *testing.T) {
	palm := detector.OpenPalmLandmarks()

	t.Run("left label flips the thumb rule", func(t *testing.T) {
		hand := palm
		hand.Handedness = detector.HandLeft
		if ExtractFingers(&hand).Extended[Thumb] {
			t.Error("right-hand geometry labelled Left should read the thumb as curled")
		}
	})

	for _, label := range []detector.Handedness{"", "left", "Both", "??"} {
		t.Run("label "+string(label)+" uses the right-hand rule", func(t *testing.T) {
			hand := palm
			hand.Handedness = label
			if !ExtractFingers(&hand).Extended[Thumb] {
				t.Errorf("Handedness %q: thumb not extended", label)
			}
		})
	}
}

func TestFingerState_Fingers(t *testing.T) {
	tests := []struct {
		name string
		fs   FingerState
		want int
	}{
		{"none", FingerState{}, 0},
		{"thumb only", FingerState{Extended: [5]bool{true}, Count: 1}, 0},
		{"all", FingerState{Extended: [5]bool{true, true, true, true, true}, Count: 5}, 4},
		{"four without thumb", FingerState{Extended: [5]bool{false, true, true, true, true}, Count: 4}, 4},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.fs.Fingers(); got != tt.want {
				t.Errorf("Fingers() = %d, want %d", got, tt.want)
			}
		})
	}
}

func TestFingerState_Only(t *testing.T) {
	hand := detector.PointLandmarks()
	fs := ExtractFingers(&hand)

	if !fs.Only(Index) {
		t.Error("Only(Index) = false for a pointing hand")
	}
	if fs.Only(Index, Middle) {
		t.Error("Only(Index, Middle) = true for a pointing hand")
	}
}

func TestPalmCentre(t *testing.T) {
	var hand detector.HandLandmarks
	hand.Points[detector.Wrist] = detector.Point3D{X: 300, Y: 400, Z: 0.5}
	hand.Points[detector.IndexMCP] = detector.Point3D{X: 260, Y: 300}
	hand.Points[detector.MiddleMCP] = detector.Point3D{X: 290, Y: 290}
	hand.Points[detector.RingMCP] = detector.Point3D{X: 320, Y: 300}
	hand.Points[detector.PinkyMCP] = detector.Point3D{X: 330, Y: 310}
	hand.Points[detector.IndexTip] = detector.Point3D{X: 0, Y: 0}

	got := PalmCentre(&hand)
	if got.X != 300 || got.Y != 320 {
		t.Errorf("PalmCentre() = %+v, want (300, 320)", got)
	}
}
