package hub

import (
	"errors"

	"github.com/123Jonas/aluguel-imoveis-backend/internal/model"
)

const (
	eventJoin           = "join"
	eventLeave          = "leave"
	eventJoined         = "joined"
	eventLeft           = "left"
	eventError          = "error"
	eventMessageCreated = "messageCreated"
)

var errNotParticipant = errors.New("not a participant of this conversation")

// clientEvent is what a connected client may send post-handshake.
type clientEvent struct {
	Type            string `json:"type"`
	ConversationKey string `json:"conversationKey"`
}

type serverEvent struct {
	Type            string         `json:"type"`
	ConversationKey string         `json:"conversationKey,omitempty"`
	Code            string         `json:"code,omitempty"`
	Error           string         `json:"error,omitempty"`
	Message         *model.Message `json:"message,omitempty"`
}
