package service

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/123Jonas/aluguel-imoveis-backend/internal/chatkey"
	"github.com/123Jonas/aluguel-imoveis-backend/internal/identity"
	"github.com/123Jonas/aluguel-imoveis-backend/internal/model"
	"github.com/123Jonas/aluguel-imoveis-backend/internal/repository"
	"gorm.io/gorm"
)

// Broadcaster pushes a freshly persisted message to live connections. The
// hub implements it; tests substitute a recorder.
type Broadcaster interface {
	BroadcastNewMessage(msg *model.Message)
}

// Notifier informs the out-of-band notification collaborator that a message
// was created. Best-effort; must never fail the send.
type Notifier interface {
	NotifyMessageCreated(msg *model.Message)
}

type MessageService interface {
	Send(ctx context.Context, senderUID, receiverUID string, listingID uint64, body string) (*model.Message, error)
	History(ctx context.Context, key, uid string) ([]model.Message, error)
	MarkConversationRead(ctx context.Context, key, readerUID string) (int64, error)
	UnreadCount(ctx context.Context, uid string) (int64, error)
	ValidateParticipant(ctx context.Context, key, uid string) (bool, error)
}

type messageService struct {
	msgRepo     repository.MessageRepository
	listingRepo repository.ListingRepository
	users       identity.Directory
	broadcaster Broadcaster
	notifier    Notifier
	locks       stripedLock
}

func NewMessageService(msgRepo repository.MessageRepository, listingRepo repository.ListingRepository, users identity.Directory, broadcaster Broadcaster, notifier Notifier) MessageService {
	return &messageService{
		msgRepo:     msgRepo,
		listingRepo: listingRepo,
		users:       users,
		broadcaster: broadcaster,
		notifier:    notifier,
	}
}

// Send validates, derives the conversation key server-side, persists the
// message, then broadcasts, then notifies. Persist -> broadcast happens under
// the conversation's lock so live delivery order matches store order.
func (s *messageService) Send(ctx context.Context, senderUID, receiverUID string, listingID uint64, body string) (*model.Message, error) {
	if senderUID == "" {
		return nil, fmt.Errorf("%w: sender is required", ErrValidation)
	}
	body = strings.TrimSpace(body)
	if body == "" {
		return nil, fmt.Errorf("%w: body is required", ErrValidation)
	}
	if senderUID == receiverUID {
		return nil, fmt.Errorf("%w: cannot message yourself", ErrValidation)
	}
	key, err := chatkey.Derive(listingID, senderUID, receiverUID)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrValidation, err)
	}
	if _, err := s.users.Lookup(ctx, receiverUID); err != nil {
		return nil, fmt.Errorf("%w: receiver does not exist", ErrNotFound)
	}
	if _, err := s.listingRepo.FindByID(ctx, listingID); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, fmt.Errorf("%w: listing does not exist", ErrNotFound)
		}
		return nil, err
	}

	msg := &model.Message{
		ConversationKey: key,
		ListingID:       listingID,
		SenderUID:       senderUID,
		ReceiverUID:     receiverUID,
		Body:            body,
	}

	s.locks.Lock(key)
	err = s.msgRepo.Create(ctx, msg)
	if err == nil && s.broadcaster != nil {
		s.broadcaster.BroadcastNewMessage(msg)
	}
	s.locks.Unlock(key)
	if err != nil {
		return nil, err
	}

	if s.notifier != nil {
		s.notifier.NotifyMessageCreated(msg)
	}
	return msg, nil
}

func (s *messageService) History(ctx context.Context, key, uid string) ([]model.Message, error) {
	if err := s.authorize(ctx, key, uid); err != nil {
		return nil, err
	}
	return s.msgRepo.ListByConversation(ctx, key)
}

func (s *messageService) MarkConversationRead(ctx context.Context, key, readerUID string) (int64, error) {
	if err := s.authorize(ctx, key, readerUID); err != nil {
		return 0, err
	}
	s.locks.Lock(key)
	defer s.locks.Unlock(key)
	return s.msgRepo.MarkRead(ctx, key, readerUID)
}

func (s *messageService) UnreadCount(ctx context.Context, uid string) (int64, error) {
	if uid == "" {
		return 0, fmt.Errorf("%w: uid is required", ErrValidation)
	}
	return s.msgRepo.CountUnread(ctx, uid)
}

// ValidateParticipant reports whether uid may act on the conversation. The
// check always goes through stored sender/receiver columns; the key string
// itself only authorizes a conversation that has no messages yet, and only
// for a uid the well-formed key names.
func (s *messageService) ValidateParticipant(ctx context.Context, key, uid string) (bool, error) {
	if key == "" || uid == "" {
		return false, fmt.Errorf("%w: key and uid are required", ErrValidation)
	}
	if _, _, _, err := chatkey.Parse(key); err != nil {
		return false, fmt.Errorf("%w: %v", ErrValidation, err)
	}
	ok, err := s.msgRepo.IsParticipant(ctx, key, uid)
	if err != nil {
		return false, err
	}
	if ok {
		return true, nil
	}
	has, err := s.msgRepo.HasMessages(ctx, key)
	if err != nil {
		return false, err
	}
	if has {
		return false, nil
	}
	return chatkey.Mentions(key, uid), nil
}

func (s *messageService) authorize(ctx context.Context, key, uid string) error {
	ok, err := s.ValidateParticipant(ctx, key, uid)
	if err != nil {
		return err
	}
	if !ok {
		return fmt.Errorf("%w: not a participant", ErrForbidden)
	}
	return nil
}
