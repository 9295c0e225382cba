package service

import (
	"context"
	"fmt"
	"sort"
	"time"

	"github.com/123Jonas/aluguel-imoveis-backend/internal/identity"
	"github.com/123Jonas/aluguel-imoveis-backend/internal/model"
	"github.com/123Jonas/aluguel-imoveis-backend/internal/repository"
)

// listingTitleFallback labels a conversation whose listing lookup failed.
// A broken directory must not hide the conversation list.
const listingTitleFallback = "Listing unavailable"

type ConversationSummary struct {
	ConversationKey string    `json:"conversationKey"`
	ListingID       uint64    `json:"listingId"`
	ListingTitle    string    `json:"listingTitle"`
	OtherUID        string    `json:"otherUid"`
	OtherName       string    `json:"otherName"`
	LastMessageBody string    `json:"lastMessageBody"`
	LastMessageAt   time.Time `json:"lastMessageAt"`
	UnreadForViewer bool      `json:"unreadForViewer"`
}

type ConversationService interface {
	ConversationsFor(ctx context.Context, uid string) ([]ConversationSummary, error)
}

type conversationService struct {
	msgRepo     repository.MessageRepository
	listingRepo repository.ListingRepository
	users       identity.Directory
}

func NewConversationService(msgRepo repository.MessageRepository, listingRepo repository.ListingRepository, users identity.Directory) ConversationService {
	return &conversationService{msgRepo: msgRepo, listingRepo: listingRepo, users: users}
}

// ConversationsFor recomputes the viewer's conversation summaries from the
// store on every call. Messages arrive in (created_at, id) order, so the
// last element of each group is the conversation's last message.
func (s *conversationService) ConversationsFor(ctx context.Context, uid string) ([]ConversationSummary, error) {
	if uid == "" {
		return nil, fmt.Errorf("%w: uid is required", ErrValidation)
	}
	msgs, err := s.msgRepo.ListForParticipant(ctx, uid)
	if err != nil {
		return nil, err
	}

	type group struct {
		last   model.Message
		unread bool
	}
	groups := make(map[string]*group)
	for _, m := range msgs {
		g, ok := groups[m.ConversationKey]
		if !ok {
			g = &group{}
			groups[m.ConversationKey] = g
		}
		g.last = m
		if m.ReceiverUID == uid && !m.Read {
			g.unread = true
		}
	}

	summaries := make([]ConversationSummary, 0, len(groups))
	for key, g := range groups {
		other := g.last.SenderUID
		if other == uid {
			other = g.last.ReceiverUID
		}
		summaries = append(summaries, ConversationSummary{
			ConversationKey: key,
			ListingID:       g.last.ListingID,
			ListingTitle:    s.listingTitle(ctx, g.last.ListingID),
			OtherUID:        other,
			OtherName:       s.displayName(ctx, other),
			LastMessageBody: g.last.Body,
			LastMessageAt:   g.last.CreatedAt,
			UnreadForViewer: g.unread,
		})
	}

	sort.Slice(summaries, func(i, j int) bool {
		if !summaries[i].LastMessageAt.Equal(summaries[j].LastMessageAt) {
			return summaries[i].LastMessageAt.After(summaries[j].LastMessageAt)
		}
		return summaries[i].ConversationKey < summaries[j].ConversationKey
	})
	return summaries, nil
}

func (s *conversationService) listingTitle(ctx context.Context, listingID uint64) string {
	listing, err := s.listingRepo.FindByID(ctx, listingID)
	if err != nil || listing.Title == "" {
		return listingTitleFallback
	}
	return listing.Title
}

func (s *conversationService) displayName(ctx context.Context, uid string) string {
	principal, err := s.users.Lookup(ctx, uid)
	if err != nil || principal.DisplayName == "" {
		return uid
	}
	return principal.DisplayName
}
