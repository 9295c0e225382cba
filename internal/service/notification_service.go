package service

import (
	"context"
	"errors"
	"log"
	"time"

	"github.com/123Jonas/aluguel-imoveis-backend/internal/model"
	"github.com/123Jonas/aluguel-imoveis-backend/internal/repository"
	"gorm.io/gorm"
)

const notifyBodyLimit = 120

type NotificationService interface {
	Notifier
	List(ctx context.Context, userUID string, unreadOnly bool, limit int) ([]model.Notification, int64, error)
}

type notificationService struct {
	repo        repository.NotificationRepository
	listingRepo repository.ListingRepository
}

func NewNotificationService(repo repository.NotificationRepository, listingRepo repository.ListingRepository) NotificationService {
	return &notificationService{repo: repo, listingRepo: listingRepo}
}

// NotifyMessageCreated is best-effort: it runs off the request path with its
// own short deadline and logs failures instead of returning them. The message
// is already durable and broadcast by the time this is called.
func (s *notificationService) NotifyMessageCreated(msg *model.Message) {
	go func() {
		ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
		defer cancel()

		title := "New message"
		if listing, err := s.listingRepo.FindByID(ctx, msg.ListingID); err == nil && listing.Title != "" {
			title = "New message about " + listing.Title
		}
		body := msg.Body
		if r := []rune(body); len(r) > notifyBodyLimit {
			body = string(r[:notifyBodyLimit])
		}
		listingID := msg.ListingID
		key := msg.ConversationKey
		n := &model.Notification{
			UserUID:         msg.ReceiverUID,
			Type:            "message",
			Title:           title,
			Body:            body,
			ListingID:       &listingID,
			ConversationKey: &key,
		}
		if err := s.repo.Create(ctx, n); err != nil {
			log.Printf("notification create failed for %s: %v", msg.ReceiverUID, err)
		}
	}()
}

func (s *notificationService) List(ctx context.Context, userUID string, unreadOnly bool, limit int) ([]model.Notification, int64, error) {
	if userUID == "" {
		return nil, 0, nil
	}
	list, err := s.repo.ListByUser(ctx, userUID, unreadOnly, limit)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, 0, nil
		}
		return nil, 0, err
	}
	cnt, err := s.repo.CountUnread(ctx, userUID)
	if err != nil {
		return list, 0, err
	}
	return list, cnt, nil
}
