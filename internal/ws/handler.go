package ws

import (
	"encoding/json"
	"net/http"
	"sort"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"
	"go.uber.org/zap"
)

const (
	writeWait = 10 * time.Second

	pongWait = 60 * time.Second

	pingPeriod = (pongWait * 9) / 10

	maxMessageSize = 512
)

var upgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
	CheckOrigin: func(r *http.Request) bool {
		return true
	},
}

type WebSocketHandler struct {
	hub *Hub
	log *zap.Logger
}

func NewWebSocketHandler(hub *Hub, log *zap.Logger) *WebSocketHandler {
	return &WebSocketHandler{hub: hub, log: log}
}

// @Summary Live admin events
// @Description Streams IB status, withdrawal, commission and trading group events
// @Tags Admin
// @Security BearerAuth
// @Router /admin/ws [get]
func (h *WebSocketHandler) HandleConnection(c *gin.Context) {
	conn, err := upgrader.Upgrade(c.Writer, c.Request, nil)
	if err != nil {
		h.log.Warn("websocket upgrade failed", zap.Error(err))
		return
	}

	client := h.hub.RegisterClient(conn)
	if client == nil {
		conn.WriteMessage(websocket.CloseMessage, websocket.FormatCloseMessage(websocket.CloseGoingAway, "shutting down"))
		conn.Close()
		return
	}

	go h.readPump(client)
	go h.writePump(client)
}

func (h *WebSocketHandler) readPump(client *Client) {
	defer h.hub.UnregisterClient(client)

	client.Conn.SetReadLimit(maxMessageSize)
	client.Conn.SetReadDeadline(time.Now().Add(pongWait))
	client.Conn.SetPongHandler(func(string) error {
		client.Conn.SetReadDeadline(time.Now().Add(pongWait))
		return nil
	})

	for {
		_, message, err := client.Conn.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseAbnormalClosure) {
				h.log.Warn("websocket read failed", zap.String("client_id", client.ID), zap.Error(err))
			}
			return
		}

		var msg socketMessage
		if err := json.Unmarshal(message, &msg); err != nil {
			h.reply(client, errorResponse{Error: "Invalid message format"})
			continue
		}

		switch msg.Action {
		case "subscribe":
			client.Subscribe(msg.Topic)
			h.reply(client, subscriptionResponse{Status: "success", Message: "Subscribed to " + msg.Topic, Topics: sortedTopics(client)})
		case "unsubscribe":
			client.Unsubscribe(msg.Topic)
			h.reply(client, subscriptionResponse{Status: "success", Message: "Unsubscribed from " + msg.Topic, Topics: sortedTopics(client)})
		default:
			h.reply(client, errorResponse{Error: "Unknown action"})
		}
	}
}

// reply hands the message to writePump; the connection has a single writer.
func (h *WebSocketHandler) reply(client *Client, v interface{}) {
	select {
	case client.replies <- v:
	default:
		h.log.Debug("websocket reply dropped", zap.String("client_id", client.ID))
	}
}

func (h *WebSocketHandler) writePump(client *Client) {
	ticker := time.NewTicker(pingPeriod)
	defer func() {
		ticker.Stop()
		client.Conn.Close()
	}()

	for {
		select {
		case e, ok := <-client.Send:
			client.Conn.SetWriteDeadline(time.Now().Add(writeWait))
			if !ok {
				client.Conn.WriteMessage(websocket.CloseMessage, []byte{})
				return
			}
			if err := client.Conn.WriteJSON(e); err != nil {
				return
			}

		case v := <-client.replies:
			client.Conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := client.Conn.WriteJSON(v); err != nil {
				return
			}

		case <-ticker.C:
			client.Conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := client.Conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}
		}
	}
}

func sortedTopics(c *Client) []string {
	topics := c.Topics()
	sort.Strings(topics)
	return topics
}
