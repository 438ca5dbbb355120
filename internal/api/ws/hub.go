// Package ws implements the real-time notification channel: clients
// connect over a websocket and receive a "post created" event for every
// new post. Delivery is best-effort; a dead client is dropped, never
// retried.
package ws

import (
	"net/http"
	"sync"
	"time"

	"github.com/gorilla/websocket"

	"github.com/feedhub/feedhub-server/internal/logger"
	"github.com/feedhub/feedhub-server/internal/model"
)

var _ model.Notifier = (*Hub)(nil)

// Hub tracks connected websocket clients and broadcasts events to them.
type Hub struct {
	upgrader  websocket.Upgrader
	logger    *logger.Logger
	writeWait time.Duration

	mu      sync.Mutex
	clients map[*websocket.Conn]struct{}
}

// NewHub creates a new Hub instance.
func NewHub(logger *logger.Logger) *Hub {
	return &Hub{
		upgrader: websocket.Upgrader{
			// The REST CORS policy is open, keep the socket consistent.
			CheckOrigin: func(r *http.Request) bool { return true },
		},
		logger:    logger,
		writeWait: 10 * time.Second,
		clients:   make(map[*websocket.Conn]struct{}),
	}
}

type postEvent struct {
	Action string   `json:"action"`
	Post   postView `json:"post"`
}

type postView struct {
	ID        string    `json:"_id"`
	Title     string    `json:"title"`
	Content   string    `json:"content"`
	ImageURL  string    `json:"imageUrl"`
	Creator   string    `json:"creator"`
	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`
}

// Handle upgrades the connection and registers the client until it
// disconnects.
func (h *Hub) Handle(w http.ResponseWriter, r *http.Request) {
	conn, err := h.upgrader.Upgrade(w, r, nil)
	if err != nil {
		h.logger.Error("WS hub: failed to upgrade connection", "error", err.Error())
		return
	}

	h.register(conn)
	h.logger.Info("WS hub: client connected", "remote", conn.RemoteAddr().String())

	// Drain incoming frames; the channel is one-way, we only care about
	// detecting the close.
	go func() {
		defer h.unregister(conn)
		for {
			if _, _, err := conn.ReadMessage(); err != nil {
				return
			}
		}
	}()
}

// PostCreated broadcasts a "post created" event to every client.
func (h *Hub) PostCreated(post model.Post) {
	h.broadcast(postEvent{
		Action: "create",
		Post: postView{
			ID:        post.ID.String(),
			Title:     post.Title,
			Content:   post.Content,
			ImageURL:  post.ImageURL,
			Creator:   post.CreatorID.String(),
			CreatedAt: post.CreatedAt,
			UpdatedAt: post.UpdatedAt,
		},
	})
}

// Close disconnects every client.
func (h *Hub) Close() {
	h.mu.Lock()
	defer h.mu.Unlock()
	for conn := range h.clients {
		conn.Close()
		delete(h.clients, conn)
	}
}

func (h *Hub) register(conn *websocket.Conn) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.clients[conn] = struct{}{}
}

func (h *Hub) unregister(conn *websocket.Conn) {
	h.mu.Lock()
	defer h.mu.Unlock()
	if _, ok := h.clients[conn]; ok {
		delete(h.clients, conn)
		conn.Close()
	}
}

func (h *Hub) broadcast(event postEvent) {
	h.mu.Lock()
	defer h.mu.Unlock()

	// A write that cannot complete within the window means a stalled
	// client; it is dropped so one dead reader never blocks the rest.
	for conn := range h.clients {
		conn.SetWriteDeadline(time.Now().Add(h.writeWait))
		if err := conn.WriteJSON(event); err != nil {
			h.logger.Error("WS hub: failed to send event, dropping client",
				"remote", conn.RemoteAddr().String(),
				"error", err.Error())
			delete(h.clients, conn)
			conn.Close()
		}
	}
}
