package api

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"
	"github.com/rs/zerolog"

	"github.com/ayusman/mudra/internal/action"
	"github.com/ayusman/mudra/internal/app"
	"github.com/ayusman/mudra/internal/mode"
	"github.com/ayusman/mudra/internal/store"
)

// newTestStore creates a new Store with a temporary database for testing.
func newTestStore(t *testing.T) *store.Store {
	t.Helper()

	s, err := store.New(filepath.Join(t.TempDir(), "test.db"))
	if err != nil {
		t.Fatalf("failed to create store: %v", err)
	}
	t.Cleanup(func() {
		s.Close()
	})
	return s
}

func newTestApp(st *store.Store) *app.App {
	return app.New(app.Config{
		Store:  st,
		Logger: zerolog.Nop(),
		Start:  app.State{Mode: mode.Control},
	})
}

func TestStateHandler_Get(t *testing.T) {
	a := newTestApp(nil)
	a.Hub().Publish(app.Snapshot{Seq: 7, State: a.State()})
	handler := NewStateHandler(a)

	req := httptest.NewRequest(http.MethodGet, "/api/state", nil)
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want %d", rec.Code, http.StatusOK)
	}

	var got struct {
		MouseControl    bool        `json:"mouse_control"`
		KeyboardOverlay bool        `json:"keyboard_overlay"`
		Mode            string      `json:"mode"`
		Tracking        bool        `json:"tracking"`
		Running         bool        `json:"running"`
		Modes           []mode.Name `json:"modes"`
		Snapshot        struct {
			Seq uint64 `json:"seq"`
		} `json:"snapshot"`
	}
	if err := json.NewDecoder(rec.Body).Decode(&got); err != nil {
		t.Fatalf("failed to decode response: %v", err)
	}

	if got.Mode != "control" || got.MouseControl || !got.Tracking || got.Running {
		t.Errorf("state = %+v", got)
	}
	if diff := cmp.Diff(mode.Names(), got.Modes); diff != "" {
		t.Errorf("modes mismatch (-want +got):\n%s", diff)
	}
	if got.Snapshot.Seq != 7 {
		t.Errorf("snapshot seq = %d, want 7", got.Snapshot.Seq)
	}
}

func TestStateHandler_Put(t *testing.T) {
	st := newTestStore(t)
	a := newTestApp(st)
	handler := NewStateHandler(a)

	tests := []struct {
		name       string
		body       string
		wantStatus int
		want       app.State
		tracking   bool
	}{
		{
			name:       "enable mouse control",
			body:       `{"mouse_control": true}`,
			wantStatus: http.StatusOK,
			want:       app.State{Modes: action.Modes{MouseControl: true}, Mode: mode.Control},
			tracking:   true,
		},
		{
			name:       "switch mode and show keyboard",
			body:       `{"mode": "draw", "keyboard_overlay": true}`,
			wantStatus: http.StatusOK,
			want:       app.State{Modes: action.Modes{MouseControl: true, KeyboardOverlay: true}, Mode: mode.Draw},
			tracking:   true,
		},
		{
			name:       "pause tracking",
			body:       `{"tracking": false}`,
			wantStatus: http.StatusOK,
			want:       app.State{Modes: action.Modes{MouseControl: true, KeyboardOverlay: true}, Mode: mode.Draw},
			tracking:   false,
		},
		{
			name:       "unknown mode",
			body:       `{"mode": "juggle"}`,
			wantStatus: http.StatusBadRequest,
			want:       app.State{Modes: action.Modes{MouseControl: true, KeyboardOverlay: true}, Mode: mode.Draw},
			tracking:   false,
		},
		{
			name:       "invalid json",
			body:       `{"mode":`,
			wantStatus: http.StatusBadRequest,
			want:       app.State{Modes: action.Modes{MouseControl: true, KeyboardOverlay: true}, Mode: mode.Draw},
			tracking:   false,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodPut, "/api/state", bytes.NewBufferString(tt.body))
			rec := httptest.NewRecorder()
			handler.ServeHTTP(rec, req)

			if rec.Code != tt.wantStatus {
				t.Errorf("status = %d, want %d: %s", rec.Code, tt.wantStatus, rec.Body.String())
			}
			if diff := cmp.Diff(tt.want, a.State()); diff != "" {
				t.Errorf("state mismatch (-want +got):\n%s", diff)
			}
			if a.IsEnabled() != tt.tracking {
				t.Errorf("tracking = %v, want %v", a.IsEnabled(), tt.tracking)
			}
		})
	}

	saved, err := st.Settings().All(context.Background())
	if err != nil {
		t.Fatal(err)
	}
	want := map[string]string{"mouse_control": "true", "keyboard_overlay": "true", "mode": "draw"}
	if diff := cmp.Diff(want, saved); diff != "" {
		t.Errorf("saved settings mismatch (-want +got):\n%s", diff)
	}
}

func TestStateHandler_MethodNotAllowed(t *testing.T) {
	handler := NewStateHandler(newTestApp(nil))

	for _, method := range []string{http.MethodPost, http.MethodDelete, http.MethodPatch} {
		req := httptest.NewRequest(method, "/api/state", nil)
		rec := httptest.NewRecorder()
		handler.ServeHTTP(rec, req)

		if rec.Code != http.StatusMethodNotAllowed {
			t.Errorf("method %s: status = %d, want %d", method, rec.Code, http.StatusMethodNotAllowed)
		}
	}
}

func TestEventHandler(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()
	base := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	for i, kind := range []string{"click", "click", "hotkey"} {
		if err := s.Events().Create(ctx, &store.ActionEvent{
			SessionID: "s", Hand: "Right", Kind: kind, CreatedAt: base.Add(time.Duration(i) * time.Second),
		}); err != nil {
			t.Fatal(err)
		}
	}
	handler := NewEventHandler(s)

	tests := []struct {
		name       string
		query      string
		wantStatus int
		wantKinds  []string
	}{
		{"default limit", "", http.StatusOK, []string{"hotkey", "click", "click"}},
		{"limited", "?limit=1", http.StatusOK, []string{"hotkey"}},
		{"over max is capped", "?limit=100000", http.StatusOK, []string{"hotkey", "click", "click"}},
		{"zero", "?limit=0", http.StatusBadRequest, nil},
		{"garbage", "?limit=many", http.StatusBadRequest, nil},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodGet, "/api/events"+tt.query, nil)
			rec := httptest.NewRecorder()
			handler.ServeHTTP(rec, req)

			if rec.Code != tt.wantStatus {
				t.Fatalf("status = %d, want %d", rec.Code, tt.wantStatus)
			}
			if tt.wantStatus != http.StatusOK {
				return
			}

			var resp listEventsResponse
			if err := json.NewDecoder(rec.Body).Decode(&resp); err != nil {
				t.Fatalf("failed to decode response: %v", err)
			}
			var kinds []string
			for _, e := range resp.Events {
				kinds = append(kinds, e.Kind)
			}
			if diff := cmp.Diff(tt.wantKinds, kinds); diff != "" {
				t.Errorf("kinds mismatch (-want +got):\n%s", diff)
			}
			if diff := cmp.Diff(map[string]int{"click": 2, "hotkey": 1}, resp.Counts); diff != "" {
				t.Errorf("counts mismatch (-want +got):\n%s", diff)
			}
		})
	}
}

func TestEventHandler_Empty(t *testing.T) {
	handler := NewEventHandler(newTestStore(t))

	req := httptest.NewRequest(http.MethodGet, "/api/events", nil)
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want %d", rec.Code, http.StatusOK)
	}
	if !bytes.Contains(rec.Body.Bytes(), []byte(`"events":[]`)) {
		t.Errorf("empty log should encode as an empty list: %s", rec.Body.String())
	}
}
