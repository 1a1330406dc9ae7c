package server

import (
	"net/http"
	"time"

	"github.com/gorilla/websocket"
	"github.com/rs/zerolog"

	"github.com/ayusman/mudra/internal/app"
)

const hudWriteTimeout = 2 * time.Second

var upgrader = websocket.Upgrader{
	CheckOrigin: func(r *http.Request) bool {
		return true // Allow local connections
	},
}

// HUDHandler pushes pipeline snapshots to WebSocket clients. Each client gets
// the latest snapshot on connect and every later one it can keep up with.
type HUDHandler struct {
	hub *app.Hub
	log zerolog.Logger
}

// NewHUDHandler creates a HUDHandler reading from hub.
func NewHUDHandler(hub *app.Hub, log zerolog.Logger) *HUDHandler {
	return &HUDHandler{hub: hub, log: log}
}

// ServeHTTP handles WebSocket upgrade requests.
func (h *HUDHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		h.log.Warn().Err(err).Msg("websocket upgrade failed")
		return
	}
	defer conn.Close()

	snaps, cancel := h.hub.Subscribe(4)
	defer cancel()

	// The client never sends anything we use; reading detects the close.
	closed := make(chan struct{})
	go func() {
		defer close(closed)
		for {
			if _, _, err := conn.ReadMessage(); err != nil {
				return
			}
		}
	}()

	if latest, ok := h.hub.Latest(); ok {
		if err := h.write(conn, latest); err != nil {
			return
		}
	}

	for {
		select {
		case <-closed:
			return
		case <-r.Context().Done():
			return
		case snap, ok := <-snaps:
			if !ok {
				return
			}
			if err := h.write(conn, snap); err != nil {
				h.log.Debug().Err(err).Msg("hud client dropped")
				return
			}
		}
	}
}

func (h *HUDHandler) write(conn *websocket.Conn, snap app.Snapshot) error {
	conn.SetWriteDeadline(time.Now().Add(hudWriteTimeout))
	return conn.WriteJSON(snap)
}
