// Package hub fans newly persisted messages out to live websocket
// connections. Room membership here is an ephemeral index; it is never a
// source of truth for message content, read state, or authorization.
package hub

import (
	"context"
	"encoding/json"
	"log"
	"sync"

	"github.com/123Jonas/aluguel-imoveis-backend/internal/model"
)

// Authorizer decides whether a user may act on a conversation. The message
// service implements it against stored messages.
type Authorizer interface {
	ValidateParticipant(ctx context.Context, key, uid string) (bool, error)
}

type Hub struct {
	mu    sync.RWMutex
	rooms map[string]map[*Client]bool

	auth Authorizer
}

func New() *Hub {
	return &Hub{rooms: make(map[string]map[*Client]bool)}
}

// SetAuthorizer breaks the construction cycle between the hub and the
// message service; it must be called before the first connection is served.
func (h *Hub) SetAuthorizer(a Authorizer) {
	h.auth = a
}

// BroadcastNewMessage pushes the message to every connected member of its
// conversation's room. It is called after the message is durably stored and
// while the send path still holds the conversation's lock, so delivery order
// matches store order. Delivery is at most once: a member whose outbound
// buffer is full is skipped, catch-up belongs to the pull path.
func (h *Hub) BroadcastNewMessage(msg *model.Message) {
	data, err := json.Marshal(serverEvent{Type: eventMessageCreated, Message: msg})
	if err != nil {
		log.Printf("hub: marshal message %d: %v", msg.ID, err)
		return
	}

	h.mu.RLock()
	members := make([]*Client, 0, len(h.rooms[msg.ConversationKey]))
	for c := range h.rooms[msg.ConversationKey] {
		members = append(members, c)
	}
	h.mu.RUnlock()

	for _, c := range members {
		c.trySend(data)
	}
}

// join adds the client to the conversation's room after re-checking that the
// client's user is a participant. A refused join leaves the connection open.
func (h *Hub) join(ctx context.Context, c *Client, key string) error {
	ok, err := h.auth.ValidateParticipant(ctx, key, c.UID)
	if err != nil || !ok {
		return errNotParticipant
	}

	h.mu.Lock()
	room, exists := h.rooms[key]
	if !exists {
		room = make(map[*Client]bool)
		h.rooms[key] = room
	}
	room[c] = true
	h.mu.Unlock()

	c.mu.Lock()
	c.rooms[key] = true
	c.mu.Unlock()
	return nil
}

// leave is idempotent.
func (h *Hub) leave(c *Client, key string) {
	h.mu.Lock()
	if room, ok := h.rooms[key]; ok {
		delete(room, c)
		if len(room) == 0 {
			delete(h.rooms, key)
		}
	}
	h.mu.Unlock()

	c.mu.Lock()
	delete(c.rooms, key)
	c.mu.Unlock()
}

// drop discards every membership of a closed connection.
func (h *Hub) drop(c *Client) {
	c.mu.Lock()
	keys := make([]string, 0, len(c.rooms))
	for key := range c.rooms {
		keys = append(keys, key)
	}
	c.rooms = make(map[string]bool)
	c.mu.Unlock()

	h.mu.Lock()
	for _, key := range keys {
		if room, ok := h.rooms[key]; ok {
			delete(room, c)
			if len(room) == 0 {
				delete(h.rooms, key)
			}
		}
	}
	h.mu.Unlock()
}

// RoomSize reports the number of connected members in a room.
func (h *Hub) RoomSize(key string) int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.rooms[key])
}
