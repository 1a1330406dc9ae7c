package server

import (
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gorilla/websocket"
	"github.com/rs/zerolog"

	"github.com/ayusman/mudra/internal/app"
	"github.com/ayusman/mudra/internal/gesture"
)

func dialHUD(t *testing.T, hub *app.Hub) *websocket.Conn {
	t.Helper()
	ts := httptest.NewServer(NewHUDHandler(hub, zerolog.Nop()))
	t.Cleanup(ts.Close)

	url := "ws" + strings.TrimPrefix(ts.URL, "http")
	conn, _, err := websocket.DefaultDialer.Dial(url, nil)
	if err != nil {
		t.Fatalf("Dial() error = %v", err)
	}
	t.Cleanup(func() { conn.Close() })
	return conn
}

func readSnapshot(t *testing.T, conn *websocket.Conn) app.Snapshot {
	t.Helper()
	conn.SetReadDeadline(time.Now().Add(3 * time.Second))
	var snap app.Snapshot
	if err := conn.ReadJSON(&snap); err != nil {
		t.Fatalf("ReadJSON() error = %v", err)
	}
	return snap
}

func TestHUDHandler_SendsLatestOnConnect(t *testing.T) {
	hub := app.NewHub()
	hub.Publish(app.Snapshot{
		Seq:   3,
		Hands: []app.HandSnapshot{{Hand: "Right", Gesture: gesture.Pinch}},
	})

	conn := dialHUD(t, hub)
	snap := readSnapshot(t, conn)

	if snap.Seq != 3 {
		t.Errorf("seq = %d, want 3", snap.Seq)
	}
	if len(snap.Hands) != 1 || snap.Hands[0].Gesture != gesture.Pinch {
		t.Errorf("hands = %+v", snap.Hands)
	}
}

func TestHUDHandler_StreamsUpdates(t *testing.T) {
	hub := app.NewHub()
	conn := dialHUD(t, hub)

	// The subscription is registered after the upgrade; wait for it.
	deadline := time.Now().Add(3 * time.Second)
	for hub.Subscribers() == 0 {
		if time.Now().After(deadline) {
			t.Fatal("handler never subscribed")
		}
		time.Sleep(10 * time.Millisecond)
	}

	hub.Publish(app.Snapshot{Seq: 1})
	hub.Publish(app.Snapshot{Seq: 2})

	if got := readSnapshot(t, conn).Seq; got != 1 {
		t.Errorf("first seq = %d, want 1", got)
	}
	if got := readSnapshot(t, conn).Seq; got != 2 {
		t.Errorf("second seq = %d, want 2", got)
	}

	conn.Close()
	deadline = time.Now().Add(3 * time.Second)
	for hub.Subscribers() != 0 {
		if time.Now().After(deadline) {
			t.Fatal("subscription not released after the client left")
		}
		time.Sleep(10 * time.Millisecond)
	}
}
