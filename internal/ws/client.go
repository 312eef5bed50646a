package ws

import (
	"sync"

	"github.com/gorilla/websocket"

	"github.com/mehrbod2002/ibadmin/internal/events"
)

type Client struct {
	ID      string
	Conn    *websocket.Conn
	Send    chan events.Event
	replies chan interface{}
	topics  map[string]bool
	mu      sync.RWMutex
}

// NewClient starts subscribed to every topic; dashboards narrow it down.
func NewClient(id string, conn *websocket.Conn) *Client {
	return &Client{
		ID:      id,
		Conn:    conn,
		Send:    make(chan events.Event, 256),
		replies: make(chan interface{}, 16),
		topics: map[string]bool{
			events.TopicIBStatus:    true,
			events.TopicWithdrawals: true,
			events.TopicCommission:  true,
			events.TopicGroups:      true,
		},
	}
}

func (c *Client) Subscribe(topic string) {
	c.mu.Lock()
	c.topics[topic] = true
	c.mu.Unlock()
}

func (c *Client) Unsubscribe(topic string) {
	c.mu.Lock()
	delete(c.topics, topic)
	c.mu.Unlock()
}

func (c *Client) IsSubscribed(topic string) bool {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.topics[topic]
}

func (c *Client) Topics() []string {
	c.mu.RLock()
	defer c.mu.RUnlock()
	out := make([]string, 0, len(c.topics))
	for t := range c.topics {
		out = append(out, t)
	}
	return out
}

type socketMessage struct {
	Action string `json:"action"`
	Topic  string `json:"topic"`
}

type subscriptionResponse struct {
	Status  string   `json:"status"`
	Message string   `json:"message"`
	Topics  []string `json:"topics,omitempty"`
}

type errorResponse struct {
	Error string `json:"error"`
}
