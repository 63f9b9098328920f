package realtime

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/backpackor/planner/internal/domain"
)

const clientBuffer = 32

type client struct {
	id          string
	events      chan domain.PlaceRatingPatch
	connectedAt time.Time
}

// Hub streams rating patches to browsers over server-sent events. A client
// that falls behind loses events rather than slowing the others.
type Hub struct {
	mu        sync.RWMutex
	clients   map[string]*client
	logger    *slog.Logger
	heartbeat time.Duration
	done      chan struct{}
	closeOnce sync.Once
}

// NewHub creates a Hub that sends a heartbeat comment every heartbeat.
func NewHub(logger *slog.Logger, heartbeat time.Duration) *Hub {
	return &Hub{
		clients:   make(map[string]*client),
		logger:    logger,
		heartbeat: heartbeat,
		done:      make(chan struct{}),
	}
}

// Shutdown ends every open stream. Register it with
// http.Server.RegisterOnShutdown.
func (h *Hub) Shutdown() {
	h.closeOnce.Do(func() { close(h.done) })
}

// HandlePatch broadcasts patch to every connected client.
func (h *Hub) HandlePatch(_ context.Context, patch domain.PlaceRatingPatch) {
	h.mu.RLock()
	defer h.mu.RUnlock()

	for _, c := range h.clients {
		select {
		case c.events <- patch:
		default:
			h.logger.Warn("dropped rating patch for slow client",
				slog.String("client_id", c.id),
				slog.String("place_id", patch.PlaceID))
		}
	}
}

// Len returns the number of connected clients.
func (h *Hub) Len() int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.clients)
}

func (h *Hub) connect() *client {
	c := &client{
		id:          uuid.NewString(),
		events:      make(chan domain.PlaceRatingPatch, clientBuffer),
		connectedAt: time.Now(),
	}
	h.mu.Lock()
	h.clients[c.id] = c
	total := len(h.clients)
	h.mu.Unlock()

	h.logger.Info("SSE client connected", slog.String("client_id", c.id), slog.Int("total_clients", total))
	return c
}

func (h *Hub) disconnect(c *client) {
	h.mu.Lock()
	delete(h.clients, c.id)
	total := len(h.clients)
	h.mu.Unlock()

	h.logger.Info("SSE client disconnected",
		slog.String("client_id", c.id),
		slog.Duration("duration", time.Since(c.connectedAt)),
		slog.Int("total_clients", total))
}

// ServeHTTP streams events until the client goes away.
func (h *Hub) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "text/event-stream")
	w.Header().Set("Cache-Control", "no-cache")
	w.Header().Set("Connection", "keep-alive")
	w.Header().Set("X-Accel-Buffering", "no")

	rc := http.NewResponseController(w)
	if err := rc.Flush(); err != nil {
		h.logger.Error("streaming not supported", slog.String("error", err.Error()))
		http.Error(w, "streaming not supported", http.StatusInternalServerError)
		return
	}
	// The server's WriteTimeout would otherwise end the stream.
	_ = rc.SetWriteDeadline(time.Time{})

	c := h.connect()
	defer h.disconnect(c)

	if err := writeEvent(w, rc, "connected", map[string]string{"client_id": c.id}); err != nil {
		return
	}

	ticker := time.NewTicker(h.heartbeat)
	defer ticker.Stop()

	for {
		select {
		case patch := <-c.events:
			if err := writeEvent(w, rc, "rating", patch); err != nil {
				return
			}
		case <-ticker.C:
			if _, err := fmt.Fprint(w, ": ping\n\n"); err != nil {
				return
			}
			if err := rc.Flush(); err != nil {
				return
			}
		case <-r.Context().Done():
			return
		case <-h.done:
			return
		}
	}
}

func writeEvent(w http.ResponseWriter, rc *http.ResponseController, event string, data any) error {
	b, err := json.Marshal(data)
	if err != nil {
		return fmt.Errorf("marshal event data: %w", err)
	}
	if _, err := fmt.Fprintf(w, "event: %s\ndata: %s\n\n", event, b); err != nil {
		return err
	}
	return rc.Flush()
}
