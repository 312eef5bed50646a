// Package mt5bridge accepts the newline-delimited JSON feed of an MT5
// gateway: closed deals, trading accounts, groups and symbols.
package mt5bridge

import (
	"bufio"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net"
	"sync"
	"time"

	"go.uber.org/zap"

	"github.com/mehrbod2002/ibadmin/internal/metrics"
)

const (
	pingInterval   = 20 * time.Second
	readTimeout    = 3 * pingInterval
	writeTimeout   = 10 * time.Second
	maxMessageSize = 1024 * 1024
)

type HandlerFunc func(msg json.RawMessage, c *Client) error

type Client struct {
	ID   string
	conn net.Conn
	mu   sync.Mutex
}

// Send writes one JSON line. Safe for concurrent use.
func (c *Client) Send(message interface{}) error {
	data, err := json.Marshal(message)
	if err != nil {
		return fmt.Errorf("failed to marshal JSON: %w", err)
	}
	data = append(data, '\n')

	c.mu.Lock()
	defer c.mu.Unlock()
	if err := c.conn.SetWriteDeadline(time.Now().Add(writeTimeout)); err != nil {
		return fmt.Errorf("failed to set write deadline: %w", err)
	}
	if _, err := c.conn.Write(data); err != nil {
		return fmt.Errorf("failed to write message: %w", err)
	}
	return nil
}

type Server struct {
	listenAddr string
	log        *zap.Logger

	handlers   map[string]HandlerFunc
	handlersMu sync.RWMutex

	clients   map[string]*Client
	clientsMu sync.RWMutex

	listener net.Listener
	wg       sync.WaitGroup
}

func NewServer(listenPort int, log *zap.Logger) *Server {
	return &Server{
		listenAddr: fmt.Sprintf(":%d", listenPort),
		log:        log,
		handlers:   make(map[string]HandlerFunc),
		clients:    make(map[string]*Client),
	}
}

func (s *Server) RegisterHandler(msgType string, handler HandlerFunc) {
	s.handlersMu.Lock()
	defer s.handlersMu.Unlock()
	s.handlers[msgType] = handler
}

// Start listens and serves until ctx is cancelled.
func (s *Server) Start(ctx context.Context) error {
	s.RegisterHandler("handshake", s.handleHandshake)
	s.RegisterHandler("pong", s.handlePong)
	s.RegisterHandler("disconnect", s.handleDisconnect)

	listener, err := net.Listen("tcp", s.listenAddr)
	if err != nil {
		return fmt.Errorf("failed to start MT5 bridge: %w", err)
	}
	s.listener = listener
	s.log.Info("MT5 bridge listening", zap.String("addr", listener.Addr().String()))

	go func() {
		<-ctx.Done()
		listener.Close()
		s.closeClients()
	}()

	s.wg.Add(1)
	go func() {
		defer s.wg.Done()
		for {
			conn, err := listener.Accept()
			if err != nil {
				if errors.Is(err, net.ErrClosed) {
					return
				}
				s.log.Warn("failed to accept MT5 connection", zap.Error(err))
				continue
			}

			if tcp, ok := conn.(*net.TCPConn); ok {
				tcp.SetKeepAlive(true)
				tcp.SetKeepAlivePeriod(30 * time.Second)
			}

			client := &Client{ID: conn.RemoteAddr().String(), conn: conn}
			s.addClient(client)

			done := make(chan struct{})
			s.wg.Add(2)
			go func() {
				defer s.wg.Done()
				defer close(done)
				s.handleConnection(client)
			}()
			go func() {
				defer s.wg.Done()
				s.pingLoop(ctx, client, done)
			}()
		}
	}()
	return nil
}

// Addr is the bound address once Start returned.
func (s *Server) Addr() net.Addr {
	if s.listener == nil {
		return nil
	}
	return s.listener.Addr()
}

// Wait blocks until the accept loop and every connection have finished.
func (s *Server) Wait() {
	s.wg.Wait()
}

func (s *Server) ClientCount() int {
	s.clientsMu.RLock()
	defer s.clientsMu.RUnlock()
	return len(s.clients)
}

func (s *Server) addClient(client *Client) {
	s.clientsMu.Lock()
	defer s.clientsMu.Unlock()

	if old, exists := s.clients[client.ID]; exists {
		s.log.Info("replacing MT5 connection", zap.String("client_id", client.ID))
		old.conn.Close()
	} else {
		metrics.BridgeConnections.Inc()
	}
	s.clients[client.ID] = client
	s.log.Info("MT5 client connected", zap.String("client_id", client.ID))
}

func (s *Server) removeClient(client *Client) {
	s.clientsMu.Lock()
	defer s.clientsMu.Unlock()
	if current, ok := s.clients[client.ID]; ok && current == client {
		delete(s.clients, client.ID)
		metrics.BridgeConnections.Dec()
	}
}

func (s *Server) closeClients() {
	s.clientsMu.RLock()
	defer s.clientsMu.RUnlock()
	for _, c := range s.clients {
		c.conn.Close()
	}
}

func (s *Server) pingLoop(ctx context.Context, client *Client, done <-chan struct{}) {
	ticker := time.NewTicker(pingInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-done:
			return
		case <-ticker.C:
			ping := map[string]interface{}{
				"type":      "ping",
				"timestamp": time.Now().Unix(),
			}
			if err := client.Send(ping); err != nil {
				s.log.Warn("failed to ping MT5 client", zap.String("client_id", client.ID), zap.Error(err))
				client.conn.Close()
				return
			}
		}
	}
}

func (s *Server) handleConnection(client *Client) {
	defer func() {
		client.conn.Close()
		s.removeClient(client)
		s.log.Info("MT5 connection closed", zap.String("client_id", client.ID))
	}()

	scanner := bufio.NewScanner(client.conn)
	scanner.Buffer(make([]byte, 0, 8192), maxMessageSize)

	for {
		if err := client.conn.SetReadDeadline(time.Now().Add(readTimeout)); err != nil {
			return
		}
		if !scanner.Scan() {
			if err := scanner.Err(); err != nil && !errors.Is(err, net.ErrClosed) {
				s.log.Warn("MT5 read failed", zap.String("client_id", client.ID), zap.Error(err))
			}
			return
		}

		line := scanner.Bytes()
		if len(line) == 0 {
			continue
		}
		if err := s.processMessage(line, client); err != nil {
			s.log.Warn("failed to process MT5 message", zap.String("client_id", client.ID), zap.Error(err))
			_ = client.Send(map[string]interface{}{"type": "error", "message": err.Error()})
		}
	}
}

func (s *Server) processMessage(line []byte, client *Client) error {
	var envelope struct {
		Type string `json:"type"`
	}
	if err := json.Unmarshal(line, &envelope); err != nil {
		return fmt.Errorf("failed to decode JSON: %w", err)
	}
	if envelope.Type == "" {
		return errors.New("missing or invalid 'type' field in message")
	}

	s.handlersMu.RLock()
	handler, exists := s.handlers[envelope.Type]
	s.handlersMu.RUnlock()

	if !exists {
		metrics.BridgeMessages.WithLabelValues("unknown").Inc()
		return fmt.Errorf("unknown message type: %s", envelope.Type)
	}
	metrics.BridgeMessages.WithLabelValues(envelope.Type).Inc()

	// The scanner reuses its buffer between lines.
	msg := make(json.RawMessage, len(line))
	copy(msg, line)
	return handler(msg, client)
}

func (s *Server) handleHandshake(msg json.RawMessage, c *Client) error {
	var hs struct {
		Terminal string `json:"terminal"`
		Version  string `json:"version"`
	}
	_ = json.Unmarshal(msg, &hs)
	s.log.Info("MT5 handshake", zap.String("client_id", c.ID), zap.String("terminal", hs.Terminal), zap.String("version", hs.Version))

	return c.Send(map[string]interface{}{
		"type":      "handshake_response",
		"status":    "success",
		"server":    "IBAdmin_Server",
		"version":   "1.0",
		"timestamp": time.Now().Unix(),
	})
}

func (s *Server) handlePong(msg json.RawMessage, c *Client) error {
	s.log.Debug("MT5 pong", zap.String("client_id", c.ID))
	return nil
}

func (s *Server) handleDisconnect(msg json.RawMessage, c *Client) error {
	var d struct {
		Reason string `json:"reason"`
	}
	_ = json.Unmarshal(msg, &d)
	s.log.Info("MT5 client initiated disconnect", zap.String("client_id", c.ID), zap.String("reason", d.Reason))
	return nil
}
