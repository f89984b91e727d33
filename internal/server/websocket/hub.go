// Package websocket pushes hierarchy and pairing events to WebSocket clients.
//
// A client receives every event until it sends a topics frame such as
// {"topics": ["hierarchy.built"]}; from then on it only receives those types.
// An empty list restores the full stream.
package websocket

import (
	"context"
	"encoding/json"
	"maps"
	"slices"
	"sync"
	"time"

	"github.com/gorilla/websocket"
	"github.com/rs/zerolog"

	"github.com/agentstation/leimap/pkg/constants"
)

// TopicsUpdated acknowledges a topics frame.
const TopicsUpdated = "topics.updated"

// Hub tracks connected clients and fans broadcast messages out to them.
type Hub struct {
	mu      sync.RWMutex
	clients map[*Client]struct{}
	closed  bool

	broadcast chan Message
	logger    *zerolog.Logger
}

// NewHub creates a new WebSocket hub.
func NewHub(logger *zerolog.Logger) *Hub {
	return &Hub{
		clients:   make(map[*Client]struct{}),
		broadcast: make(chan Message, constants.ChannelBufferSize),
		logger:    logger,
	}
}

// Run delivers broadcasts until ctx is canceled, then disconnects every client.
func (h *Hub) Run(ctx context.Context) {
	for {
		select {
		case <-ctx.Done():
			h.mu.Lock()
			for client := range h.clients {
				h.drop(client)
			}
			h.closed = true
			h.mu.Unlock()
			h.logger.Info().Msg("WebSocket hub shut down")
			return

		case message := <-h.broadcast:
			h.mu.Lock()
			for client := range h.clients {
				if !client.wants(message.Type) {
					continue
				}
				if !client.enqueue(message) {
					h.logger.Warn().Str("client_id", client.id).Msg("Slow WebSocket client dropped")
					h.drop(client)
				}
			}
			h.mu.Unlock()
		}
	}
}

// drop removes client and closes its queue. Callers hold h.mu.
func (h *Hub) drop(client *Client) {
	delete(h.clients, client)
	close(client.send)
}

// Register adds a client. After shutdown the client's queue is closed at once,
// which makes its WritePump close the connection.
func (h *Hub) Register(c *Client) {
	h.mu.Lock()
	defer h.mu.Unlock()
	if h.closed {
		close(c.send)
		return
	}
	h.clients[c] = struct{}{}
	h.logger.Info().
		Str("client_id", c.id).
		Int("total_clients", len(h.clients)).
		Msg("WebSocket client connected")
}

// Unregister removes a client. It is safe to call more than once.
func (h *Hub) Unregister(c *Client) {
	h.mu.Lock()
	defer h.mu.Unlock()
	if _, ok := h.clients[c]; !ok {
		return
	}
	h.drop(c)
	h.logger.Info().
		Str("client_id", c.id).
		Int("total_clients", len(h.clients)).
		Msg("WebSocket client disconnected")
}

// Broadcast queues a message for all interested clients. It never blocks.
func (h *Hub) Broadcast(message Message) {
	select {
	case h.broadcast <- message:
	default:
		h.logger.Warn().Str("type", message.Type).Msg("Broadcast channel full, message dropped")
	}
}

// Send queues a message for one client, ignoring its topics. It reports
// whether the client is connected and had room.
func (h *Hub) Send(c *Client, message Message) bool {
	h.mu.RLock()
	defer h.mu.RUnlock()
	if _, ok := h.clients[c]; !ok {
		return false
	}
	return c.enqueue(message)
}

// ClientCount returns the number of connected clients.
func (h *Hub) ClientCount() int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.clients)
}

// Message is one JSON frame sent to clients.
type Message struct {
	Type      string    `json:"type"`
	Timestamp time.Time `json:"timestamp"`
	Data      any       `json:"data"`
}

// topicsFrame is the only frame clients send.
type topicsFrame struct {
	Topics []string `json:"topics"`
}

// Client is one WebSocket connection.
type Client struct {
	id   string
	hub  *Hub
	conn *websocket.Conn
	send chan Message

	mu     sync.RWMutex
	topics map[string]struct{} // nil means every type
}

// NewClient creates a client for conn. Call Hub.Register, then start
// WritePump and ReadPump.
func NewClient(id string, hub *Hub, conn *websocket.Conn) *Client {
	return &Client{
		id:   id,
		hub:  hub,
		conn: conn,
		send: make(chan Message, constants.ChannelBufferSize),
	}
}

// ID returns the client id.
func (c *Client) ID() string {
	return c.id
}

// Topics returns the subscribed event types, or nil when the client
// receives everything.
func (c *Client) Topics() []string {
	c.mu.RLock()
	defer c.mu.RUnlock()
	if c.topics == nil {
		return nil
	}
	return slices.Sorted(maps.Keys(c.topics))
}

// SetTopics restricts the client to the given event types.
func (c *Client) SetTopics(topics []string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if len(topics) == 0 {
		c.topics = nil
		return
	}
	c.topics = make(map[string]struct{}, len(topics))
	for _, t := range topics {
		c.topics[t] = struct{}{}
	}
}

func (c *Client) wants(messageType string) bool {
	c.mu.RLock()
	defer c.mu.RUnlock()
	if c.topics == nil {
		return true
	}
	_, ok := c.topics[messageType]
	return ok
}

// enqueue never blocks. The hub lock must be held so send is open.
func (c *Client) enqueue(message Message) bool {
	select {
	case c.send <- message:
		return true
	default:
		return false
	}
}

const (
	writeWait      = 10 * time.Second
	pongWait       = 60 * time.Second
	pingPeriod     = (pongWait * 9) / 10 // must be below pongWait
	maxMessageSize = 4096
)

// ReadPump applies topics frames until the connection fails, then
// unregisters the client.
func (c *Client) ReadPump() {
	defer func() {
		c.hub.Unregister(c)
		_ = c.conn.Close()
	}()

	c.conn.SetReadLimit(maxMessageSize)
	_ = c.conn.SetReadDeadline(time.Now().Add(pongWait))
	c.conn.SetPongHandler(func(string) error {
		return c.conn.SetReadDeadline(time.Now().Add(pongWait))
	})

	for {
		_, data, err := c.conn.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseAbnormalClosure) {
				c.hub.logger.Warn().Err(err).Str("client_id", c.id).Msg("WebSocket read error")
			}
			return
		}

		var frame topicsFrame
		if err := json.Unmarshal(data, &frame); err != nil {
			c.hub.logger.Debug().Err(err).Str("client_id", c.id).Msg("Ignoring malformed WebSocket frame")
			continue
		}
		c.SetTopics(frame.Topics)
		c.hub.Send(c, Message{
			Type:      TopicsUpdated,
			Timestamp: time.Now().UTC(),
			Data:      map[string]any{"topics": c.Topics()},
		})
	}
}

// WritePump writes queued messages and periodic pings to the connection.
func (c *Client) WritePump() {
	ticker := time.NewTicker(pingPeriod)
	defer func() {
		ticker.Stop()
		_ = c.conn.Close()
	}()

	for {
		select {
		case message, ok := <-c.send:
			_ = c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if !ok {
				_ = c.conn.WriteMessage(websocket.CloseMessage, []byte{})
				return
			}
			if err := c.conn.WriteJSON(message); err != nil {
				return
			}

		case <-ticker.C:
			_ = c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := c.conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}
		}
	}
}
