// comply/cmd/complyd/events.go

package main

import (
	"context"
	"encoding/json"
	"net/http"
	"sync"
	"time"

	"github.com/gorilla/websocket"

	"rgehrsitz/comply/pkg/logging"
	"rgehrsitz/comply/pkg/store"
)

var upgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
	CheckOrigin: func(r *http.Request) bool {
		return true // Allow all origins for now. In production, this should be more restrictive.
	},
}

// Hub tracks the latest evaluation summary per asset and broadcasts the set
// to connected websocket clients on a fixed interval.
type Hub struct {
	mu             sync.Mutex
	clients        map[*websocket.Conn]bool
	latest         map[string]store.Summary
	updateInterval time.Duration
}

func NewHub(updateInterval time.Duration) *Hub {
	return &Hub{
		clients:        make(map[*websocket.Conn]bool),
		latest:         make(map[string]store.Summary),
		updateInterval: updateInterval,
	}
}

// Update records the latest summary for an asset.
func (h *Hub) Update(summary store.Summary) {
	h.mu.Lock()
	h.latest[summary.Asset] = summary
	h.mu.Unlock()
}

// Snapshot returns a copy of the current summaries.
func (h *Hub) Snapshot() map[string]store.Summary {
	h.mu.Lock()
	defer h.mu.Unlock()
	out := make(map[string]store.Summary, len(h.latest))
	for k, v := range h.latest {
		out[k] = v
	}
	return out
}

func (h *Hub) HandleWebSocket(w http.ResponseWriter, r *http.Request) {
	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		logging.Logger.Error().Err(err).Msg("Error upgrading to WebSocket")
		return
	}
	defer conn.Close()

	logging.Logger.Debug().Str("remote", conn.RemoteAddr().String()).Msg("Client connected")

	h.mu.Lock()
	h.clients[conn] = true
	h.mu.Unlock()

	for {
		_, _, err := conn.ReadMessage()
		if err != nil {
			break
		}
	}

	h.mu.Lock()
	delete(h.clients, conn)
	h.mu.Unlock()

	logging.Logger.Debug().Str("remote", conn.RemoteAddr().String()).Msg("Client disconnected")
}

// Run broadcasts summaries until the context is cancelled.
func (h *Hub) Run(ctx context.Context) {
	ticker := time.NewTicker(h.updateInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			h.broadcast()
		}
	}
}

// tailReportEvents feeds report events published by other instances into
// the hub, so every instance broadcasts the same latest scores.
func tailReportEvents(ctx context.Context, pub *store.RedisPublisher, hub *Hub) {
	sub := pub.Subscribe(ctx)
	defer sub.Close()

	for {
		select {
		case <-ctx.Done():
			return
		case msg, ok := <-sub.Channel():
			if !ok {
				return
			}
			var summary store.Summary
			if err := json.Unmarshal([]byte(msg.Payload), &summary); err != nil {
				logging.Logger.Warn().Err(err).Msg("Malformed report event")
				continue
			}
			hub.Update(summary)
		}
	}
}

func (h *Hub) broadcast() {
	snapshot := h.Snapshot()
	if len(snapshot) == 0 {
		return
	}
	message, err := json.Marshal(snapshot)
	if err != nil {
		logging.Logger.Error().Err(err).Msg("Error marshaling summaries")
		return
	}

	h.mu.Lock()
	defer h.mu.Unlock()
	for client := range h.clients {
		if err := client.WriteMessage(websocket.TextMessage, message); err != nil {
			logging.Logger.Warn().Err(err).Msg("Error sending message to client")
			client.Close()
			delete(h.clients, client)
		}
	}
}
