package api

import (
	"encoding/json"
	"sync"
	"time"

	"github.com/gorilla/websocket"

	"sensor-dashboard/internal/logging"
	"sensor-dashboard/internal/metrics"
)

const (
	writeWait          = 10 * time.Second
	maxMessageSize     = 512
	maxConnsPerVariant = 100
	sendBufferSize     = 16
)

// client owns the write side of one connection. Only writePump writes to conn.
type client struct {
	conn *websocket.Conn
	send chan []byte
}

// WebSocketManager tracks browser connections per variant. Broadcast never
// writes to a socket itself; slow clients whose buffer fills up are dropped.
type WebSocketManager struct {
	connections map[string]map[*websocket.Conn]*client // variant -> connections
	mutex       sync.Mutex
	logger      *logging.Logger
}

func NewWebSocketManager(logger *logging.Logger) *WebSocketManager {
	return &WebSocketManager{
		connections: make(map[string]map[*websocket.Conn]*client),
		logger:      logger,
	}
}

// AddConnection registers conn, queues the current view for it and starts its
// writer. It reports false when the variant is at its connection limit or the
// view cannot be encoded.
func (m *WebSocketManager) AddConnection(variant string, conn *websocket.Conn, initial interface{}) bool {
	message, err := json.Marshal(initial)
	if err != nil {
		m.logger.Errorf("Failed to encode initial %s view: %v", variant, err)
		return false
	}

	m.mutex.Lock()
	defer m.mutex.Unlock()
	if _, exists := m.connections[variant]; !exists {
		m.connections[variant] = make(map[*websocket.Conn]*client)
	}
	if len(m.connections[variant]) >= maxConnsPerVariant {
		m.logger.Warnf("Max connections reached for %s", variant)
		return false
	}
	c := &client{conn: conn, send: make(chan []byte, sendBufferSize)}
	c.send <- message
	m.connections[variant][conn] = c
	go m.writePump(variant, c)

	metrics.SetWebsocketClients(variant, len(m.connections[variant]))
	m.logger.Infof("Added WebSocket connection for %s (total: %d)", variant, len(m.connections[variant]))
	return true
}

// RemoveConnection drops conn and stops its writer, which closes the socket.
func (m *WebSocketManager) RemoveConnection(variant string, conn *websocket.Conn) {
	m.mutex.Lock()
	defer m.mutex.Unlock()
	m.removeLocked(variant, conn)
}

func (m *WebSocketManager) removeLocked(variant string, conn *websocket.Conn) {
	conns, exists := m.connections[variant]
	if !exists {
		return
	}
	c, ok := conns[conn]
	if !ok {
		return
	}
	delete(conns, conn)
	close(c.send)
	metrics.SetWebsocketClients(variant, len(conns))
	if len(conns) == 0 {
		delete(m.connections, variant)
	}
	m.logger.Infof("Removed WebSocket connection for %s (remaining: %d)", variant, len(conns))
}

// Broadcast queues view for every connection of variant without blocking.
func (m *WebSocketManager) Broadcast(variant string, view interface{}) {
	message, err := json.Marshal(view)
	if err != nil {
		m.logger.Errorf("Failed to encode %s view: %v", variant, err)
		return
	}
	m.mutex.Lock()
	defer m.mutex.Unlock()
	for conn, c := range m.connections[variant] {
		select {
		case c.send <- message:
		default:
			m.logger.Warnf("WebSocket client of %s is too slow, dropping it", variant)
			m.removeLocked(variant, conn)
		}
	}
}

// Count returns the connections of variant.
func (m *WebSocketManager) Count(variant string) int {
	m.mutex.Lock()
	defer m.mutex.Unlock()
	return len(m.connections[variant])
}

// ReadUntilClosed discards client frames until the connection fails, then removes it.
func (m *WebSocketManager) ReadUntilClosed(variant string, conn *websocket.Conn) {
	defer m.RemoveConnection(variant, conn)
	conn.SetReadLimit(maxMessageSize)
	for {
		if _, _, err := conn.ReadMessage(); err != nil {
			return
		}
	}
}

// writePump writes queued views until the send channel is closed or a write
// fails. It always closes the socket on exit.
func (m *WebSocketManager) writePump(variant string, c *client) {
	defer c.conn.Close()
	for message := range c.send {
		c.conn.SetWriteDeadline(time.Now().Add(writeWait))
		if err := c.conn.WriteMessage(websocket.TextMessage, message); err != nil {
			m.logger.Errorf("Failed to send WebSocket message to %s client: %v", variant, err)
			m.RemoveConnection(variant, c.conn)
			return
		}
	}
	c.conn.SetWriteDeadline(time.Now().Add(writeWait))
	c.conn.WriteMessage(websocket.CloseMessage, []byte{})
}
