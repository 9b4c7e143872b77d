// Package livesync pushes level documents to running game clients over
// websockets so that edits show up without restarting the runtime.
package livesync

import (
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"
	"sync"

	"github.com/ephdisc/grimpossiblemission/levels"
	"github.com/gorilla/websocket"
)

const (
	TypeLevel = "level"
	TypeError = "error"
)

// Message is the only frame sent to clients. Level carries the document in
// the level file format when Type is TypeLevel.
type Message struct {
	Type   string          `json:"type"`
	Name   string          `json:"name"`
	Errors []string        `json:"errors,omitempty"`
	Error  string          `json:"error,omitempty"`
	Level  json.RawMessage `json:"level,omitempty"`
}

// Hub tracks connected clients and remembers the last message so late
// joiners start from the current state.
type Hub struct {
	clients  map[*conn]bool
	mutex    sync.RWMutex
	last     []byte
	logger   *slog.Logger
	upgrader websocket.Upgrader
}

func NewHub(logger *slog.Logger) *Hub {
	if logger == nil {
		logger = slog.Default()
	}
	return &Hub{
		clients: make(map[*conn]bool),
		logger:  logger,
		upgrader: websocket.Upgrader{
			// The runtime connects from localhost tooling, not browsers.
			CheckOrigin: func(r *http.Request) bool { return true },
		},
	}
}

// Handler upgrades each request to a websocket and serves it until the
// client disconnects.
func (h *Hub) Handler() http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		ws, err := h.upgrader.Upgrade(w, r, nil)
		if err != nil {
			h.logger.Warn("livesync upgrade failed", slog.Any("error", err))
			return
		}
		c := newConn(ws, h.logger)
		h.add(c)
		go c.writePump()
		c.readPump()
		h.remove(c)
	})
}

func (h *Hub) add(c *conn) {
	h.mutex.Lock()
	defer h.mutex.Unlock()
	h.clients[c] = true
	if h.last != nil {
		c.send <- h.last
	}
	h.logger.Info("livesync client connected", slog.String("remote", c.ws.RemoteAddr().String()), slog.Int("clients", len(h.clients)))
}

func (h *Hub) remove(c *conn) {
	h.mutex.Lock()
	defer h.mutex.Unlock()
	h.drop(c)
}

// drop must be called with the write lock held.
func (h *Hub) drop(c *conn) {
	if !h.clients[c] {
		return
	}
	delete(h.clients, c)
	close(c.send)
}

// Clients returns the number of connected clients.
func (h *Hub) Clients() int {
	h.mutex.RLock()
	defer h.mutex.RUnlock()
	return len(h.clients)
}

// Broadcast sends msg to every client. Clients whose queue is full are
// disconnected. Level messages are remembered for clients that join later.
func (h *Hub) Broadcast(msg Message) error {
	data, err := json.Marshal(msg)
	if err != nil {
		return fmt.Errorf("livesync: encode %s: %w", msg.Name, err)
	}

	h.mutex.Lock()
	defer h.mutex.Unlock()
	if msg.Type == TypeLevel {
		h.last = data
	}
	for c := range h.clients {
		select {
		case c.send <- data:
		default:
			h.logger.Warn("livesync client too slow, disconnecting", slog.String("remote", c.ws.RemoteAddr().String()))
			h.drop(c)
		}
	}
	return nil
}

// Publish sends lvl together with its validation errors.
func (h *Hub) Publish(name string, lvl *levels.Level) error {
	doc, err := lvl.MarshalJSON()
	if err != nil {
		return fmt.Errorf("livesync: encode %s: %w", name, err)
	}
	errs := lvl.Validate()
	if err := h.Broadcast(Message{Type: TypeLevel, Name: name, Errors: errs, Level: doc}); err != nil {
		return err
	}
	h.logger.Info("level published", slog.String("name", name), slog.Int("rooms", len(lvl.Rooms)), slog.Int("errors", len(errs)))
	return nil
}

// PublishError tells clients that name could not be loaded. Clients keep
// the previous level.
func (h *Hub) PublishError(name string, loadErr error) error {
	return h.Broadcast(Message{Type: TypeError, Name: name, Error: loadErr.Error()})
}

// Close disconnects every client.
func (h *Hub) Close() {
	h.mutex.Lock()
	defer h.mutex.Unlock()
	for c := range h.clients {
		h.drop(c)
	}
}
