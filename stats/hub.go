// Package stats broadcasts periodic search statistics to connected
// websocket clients and a plain HTTP status endpoint, the ambient
// "can a caller watch the engine think" surface spec.md's core leaves out
// (it explicitly excludes GTP; this is the non-GTP substitute, grounded on
// TheKrainBow-gomoku's backend Hub).
package stats

import (
	"encoding/json"
	"sync"
)

// Snapshot is one point-in-time view of a running or finished think() call,
// pushed by the search package. It deliberately mirrors only exported,
// JSON-friendly fields so stats never needs to import search.
type Snapshot struct {
	Move        string  `json:"move"`
	RootVisits  int64   `json:"root_visits"`
	Playouts    int64   `json:"playouts"`
	ElapsedMs   int64   `json:"elapsed_ms"`
	PlayoutsSec float64 `json:"playouts_per_sec"`
	WinRate     float64 `json:"win_rate"`
	PV          []string `json:"pv"`
	Done        bool    `json:"done"`
}

type wsMessage struct {
	Type    string          `json:"type"`
	Payload json.RawMessage `json:"payload,omitempty"`
}

// Client is one connected websocket consumer.
type Client struct {
	hub  *Hub
	send chan []byte
}

// Hub fans out Snapshot broadcasts to every registered Client, mirroring
// gomoku's backend.Hub: a mutex-guarded client set plus one buffered
// broadcast channel drained by Run.
type Hub struct {
	mu      sync.Mutex
	clients map[*Client]struct{}

	broadcast chan Snapshot
	latest    Snapshot
	hasLatest bool
}

// NewHub constructs an empty Hub. Call Run in its own goroutine to start
// fanning out broadcasts.
func NewHub() *Hub {
	return &Hub{
		clients:   make(map[*Client]struct{}),
		broadcast: make(chan Snapshot, 32),
	}
}

// Run drains broadcasts until done is closed, forwarding each Snapshot to
// every currently registered client as a JSON "stats" message.
func (h *Hub) Run(done <-chan struct{}) {
	for {
		select {
		case <-done:
			return
		case snap := <-h.broadcast:
			h.mu.Lock()
			h.latest = snap
			h.hasLatest = true
			payload, err := json.Marshal(snap)
			if err == nil {
				msg, err := json.Marshal(wsMessage{Type: "stats", Payload: payload})
				if err == nil {
					for c := range h.clients {
						c.sendBytes(msg)
					}
				}
			}
			h.mu.Unlock()
		}
	}
}

// Broadcast enqueues a Snapshot for delivery to all connected clients.
// Non-blocking: a full queue drops the oldest pending snapshot, since stats
// are advisory and a stale one is worse than a dropped one.
func (h *Hub) Broadcast(snap Snapshot) {
	select {
	case h.broadcast <- snap:
	default:
		select {
		case <-h.broadcast:
		default:
		}
		h.broadcast <- snap
	}
}

// Latest returns the most recently broadcast Snapshot and whether one has
// ever been broadcast, for the plain HTTP /status endpoint.
func (h *Hub) Latest() (Snapshot, bool) {
	h.mu.Lock()
	defer h.mu.Unlock()
	return h.latest, h.hasLatest
}

// Register adds a client to the broadcast set.
func (h *Hub) Register(c *Client) {
	h.mu.Lock()
	h.clients[c] = struct{}{}
	h.mu.Unlock()
}

// Unregister removes a client and closes its send channel.
func (h *Hub) Unregister(c *Client) {
	h.mu.Lock()
	if _, ok := h.clients[c]; ok {
		delete(h.clients, c)
		close(c.send)
	}
	h.mu.Unlock()
}

func (c *Client) sendBytes(data []byte) {
	select {
	case c.send <- data:
	default:
	}
}
