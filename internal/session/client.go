package session

import (
	"sync"

	"github.com/google/uuid"
	"github.com/gorilla/websocket"
)

// Client is the coordinator's handle on one live participant connection.
// ConnID identifies the connection itself; ClientID is the caller-supplied
// identifier that stays stable across the lobby-to-room transition.
type Client struct {
	ConnID   string
	ClientID string

	conn *websocket.Conn
	mu   sync.Mutex
	hook func(v any)
}

func NewClient(conn *websocket.Conn, clientID string) *Client {
	return &Client{
		ConnID:   uuid.New().String(),
		ClientID: clientID,
		conn:     conn,
	}
}

// SetSendHook replaces the default WebSocket sender (used in tests).
func (c *Client) SetSendHook(fn func(v any)) {
	c.mu.Lock()
	c.hook = fn
	c.mu.Unlock()
}

// Send writes v as a JSON text message. Sends are best-effort: a write to a
// closed or half-closed connection reports false and is never retried.
func (c *Client) Send(v any) bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.hook != nil {
		c.hook(v)
		return true
	}
	if c.conn == nil {
		return false
	}
	return c.conn.WriteJSON(v) == nil
}

// Close tears down the underlying connection, which releases the blocked
// read loop on the other side.
func (c *Client) Close() {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.conn != nil {
		_ = c.conn.Close()
	}
}
