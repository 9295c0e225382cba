package hub

import (
	"context"
	"encoding/json"
	"sync"

	"github.com/google/uuid"
	"github.com/gorilla/websocket"
)

const sendBuffer = 32

// Conn is the subset of *websocket.Conn the pumps need, so tests can run
// against an in-memory fake.
type Conn interface {
	ReadMessage() (int, []byte, error)
	WriteMessage(messageType int, data []byte) error
	Close() error
}

// Client is one authenticated live connection. It exists only after the
// handshake credential has been verified; its room memberships are local
// state discarded on disconnect.
type Client struct {
	ID  string
	UID string

	hub  *Hub
	conn Conn
	send chan []byte

	mu     sync.Mutex
	rooms  map[string]bool
	closed bool

	closeOnce sync.Once
}

// NewClient wraps an authenticated connection. The caller runs the pumps.
func (h *Hub) NewClient(uid string, conn Conn) *Client {
	return &Client{
		ID:    uuid.NewString(),
		UID:   uid,
		hub:   h,
		conn:  conn,
		send:  make(chan []byte, sendBuffer),
		rooms: make(map[string]bool),
	}
}

// ReadPump consumes join/leave events until the connection drops, then
// discards the client's memberships and closes the write side.
func (c *Client) ReadPump(ctx context.Context) {
	defer c.shutdown()
	for {
		_, data, err := c.conn.ReadMessage()
		if err != nil {
			return
		}
		var ev clientEvent
		if err := json.Unmarshal(data, &ev); err != nil {
			continue
		}
		switch ev.Type {
		case eventJoin:
			if err := c.hub.join(ctx, c, ev.ConversationKey); err != nil {
				c.sendEvent(serverEvent{Type: eventError, ConversationKey: ev.ConversationKey, Code: "forbidden", Error: err.Error()})
				continue
			}
			c.sendEvent(serverEvent{Type: eventJoined, ConversationKey: ev.ConversationKey})
		case eventLeave:
			c.hub.leave(c, ev.ConversationKey)
			c.sendEvent(serverEvent{Type: eventLeft, ConversationKey: ev.ConversationKey})
		}
	}
}

// WritePump drains the outbound buffer onto the socket. A failed write
// closes the socket, which in turn ends the read pump.
func (c *Client) WritePump() {
	defer func() { _ = c.conn.Close() }()
	for data := range c.send {
		if err := c.conn.WriteMessage(websocket.TextMessage, data); err != nil {
			return
		}
	}
}

func (c *Client) sendEvent(ev serverEvent) {
	data, err := json.Marshal(ev)
	if err != nil {
		return
	}
	c.trySend(data)
}

// trySend never blocks; a full buffer means the frame is dropped and the
// client catches up over the pull API.
func (c *Client) trySend(data []byte) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.closed {
		return
	}
	select {
	case c.send <- data:
	default:
	}
}

func (c *Client) shutdown() {
	c.closeOnce.Do(func() {
		c.hub.drop(c)
		c.mu.Lock()
		c.closed = true
		close(c.send)
		c.mu.Unlock()
	})
}
