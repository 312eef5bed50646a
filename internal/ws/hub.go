package ws

import (
	"context"
	"sync"

	"github.com/google/uuid"
	"github.com/gorilla/websocket"
	"go.uber.org/zap"

	"github.com/mehrbod2002/ibadmin/internal/events"
)

// Hub fans domain events out to connected admin dashboards.
type Hub struct {
	clients map[string]*Client

	register chan *Client

	unregister chan *Client

	broadcast chan events.Event

	// done is closed once Run returns.
	done chan struct{}

	mu  sync.RWMutex
	log *zap.Logger
}

func NewHub(log *zap.Logger) *Hub {
	return &Hub{
		clients:    make(map[string]*Client),
		register:   make(chan *Client),
		unregister: make(chan *Client),
		broadcast:  make(chan events.Event, 64),
		done:       make(chan struct{}),
		log:        log,
	}
}

func (h *Hub) Run(ctx context.Context) {
	defer close(h.done)
	for {
		select {
		case <-ctx.Done():
			h.mu.Lock()
			for id, client := range h.clients {
				delete(h.clients, id)
				close(client.Send)
			}
			h.mu.Unlock()
			return

		case client := <-h.register:
			h.mu.Lock()
			h.clients[client.ID] = client
			h.mu.Unlock()

		case client := <-h.unregister:
			h.mu.Lock()
			if _, ok := h.clients[client.ID]; ok {
				delete(h.clients, client.ID)
				close(client.Send)
			}
			h.mu.Unlock()

		case e := <-h.broadcast:
			h.mu.RLock()
			for _, client := range h.clients {
				if !client.IsSubscribed(e.Topic) {
					continue
				}
				select {
				case client.Send <- e:
				default:
					h.log.Warn("websocket client buffer full, dropping event",
						zap.String("client_id", client.ID), zap.String("topic", e.Topic))
				}
			}
			h.mu.RUnlock()
		}
	}
}

// RegisterClient returns nil once the hub has stopped.
func (h *Hub) RegisterClient(conn *websocket.Conn) *Client {
	client := NewClient(uuid.New().String(), conn)
	select {
	case h.register <- client:
		return client
	case <-h.done:
		return nil
	}
}

func (h *Hub) UnregisterClient(client *Client) {
	select {
	case h.unregister <- client:
	case <-h.done:
	}
}

// Publish makes the hub an events.Publisher. It never blocks the caller.
func (h *Hub) Publish(ctx context.Context, e events.Event) error {
	select {
	case h.broadcast <- e:
	case <-ctx.Done():
		return ctx.Err()
	default:
		h.log.Warn("websocket hub busy, dropping event", zap.String("topic", e.Topic))
	}
	return nil
}

func (h *Hub) GetClientCount() int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.clients)
}
