package stats

import (
	"encoding/json"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/gorilla/websocket"
)

// NewServer builds the chi router exposing hub's snapshots: GET /healthz
// for a trivial liveness probe, GET /status for the latest Snapshot as
// plain JSON, and GET /ws for a live websocket feed of every broadcast
// Snapshot going forward. Routing and middleware stack mirror
// TheKrainBow-gomoku's backend router (RequestID/RealIP/Logger/Recoverer).
func NewServer(hub *Hub) http.Handler {
	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(middleware.Logger)
	r.Use(middleware.Recoverer)

	r.Get("/healthz", func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusOK, map[string]bool{"ok": true})
	})

	r.Get("/status", func(w http.ResponseWriter, r *http.Request) {
		snap, ok := hub.Latest()
		if !ok {
			writeJSON(w, http.StatusOK, map[string]any{"idle": true})
			return
		}
		writeJSON(w, http.StatusOK, snap)
	})

	r.Get("/ws", func(w http.ResponseWriter, r *http.Request) {
		serveWS(hub, w, r)
	})

	return r
}

var upgrader = websocket.Upgrader{
	CheckOrigin: func(r *http.Request) bool { return true },
}

func serveWS(hub *Hub, w http.ResponseWriter, r *http.Request) {
	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		return
	}
	client := &Client{hub: hub, send: make(chan []byte, 16)}
	hub.Register(client)

	if snap, ok := hub.Latest(); ok {
		if payload, err := json.Marshal(snap); err == nil {
			if msg, err := json.Marshal(wsMessage{Type: "stats", Payload: payload}); err == nil {
				client.sendBytes(msg)
			}
		}
	}

	go writeLoop(conn, client)
	readLoop(hub, conn, client)
}

// writeLoop drains client.send to the websocket connection, closing conn
// once send is closed by Unregister (gomoku's writeWSWithHeartbeat idiom,
// trimmed to the single-direction broadcast case stats needs).
func writeLoop(conn *websocket.Conn, client *Client) {
	defer conn.Close()
	for msg := range client.send {
		if err := conn.WriteMessage(websocket.TextMessage, msg); err != nil {
			return
		}
	}
	conn.WriteMessage(websocket.CloseMessage, websocket.FormatCloseMessage(websocket.CloseNormalClosure, ""))
}

// readLoop exists only to detect client disconnects (stats never accepts
// inbound messages); it unregisters the client once the connection drops.
func readLoop(hub *Hub, conn *websocket.Conn, client *Client) {
	conn.SetReadDeadline(time.Now().Add(60 * time.Second))
	for {
		if _, _, err := conn.ReadMessage(); err != nil {
			hub.Unregister(client)
			return
		}
	}
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v)
}
