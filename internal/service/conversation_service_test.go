package service

import (
	"context"
	"errors"
	"testing"

	"github.com/123Jonas/aluguel-imoveis-backend/internal/identity"
	"github.com/123Jonas/aluguel-imoveis-backend/internal/model"
)

func newTestConversationService() (ConversationService, MessageService, *fakeListingRepo) {
	repo := newFakeMessageRepo(nil)
	listings := newFakeListingRepo(
		model.Listing{ID: 7, Title: "Apartamento T2", OwnerUID: "owner"},
		model.Listing{ID: 8, Title: "Casa com quintal", OwnerUID: "owner"},
	)
	users := &fakeDirectory{users: map[string]identity.Principal{
		"alice": {UID: "alice", DisplayName: "Alice"},
		"bob":   {UID: "bob", DisplayName: "Bob"},
		"carol": {UID: "carol", DisplayName: ""},
	}}
	conv := NewConversationService(repo, listings, users)
	msg := NewMessageService(repo, listings, users, nil, nil)
	return conv, msg, listings
}

func TestConversationsForSingleMessage(t *testing.T) {
	conv, msg, _ := newTestConversationService()
	if _, err := msg.Send(context.Background(), "alice", "bob", 7, "Hello"); err != nil {
		t.Fatal(err)
	}

	summaries, err := conv.ConversationsFor(context.Background(), "bob")
	if err != nil {
		t.Fatal(err)
	}
	if len(summaries) != 1 {
		t.Fatalf("len=%d want 1", len(summaries))
	}
	s := summaries[0]
	if s.LastMessageBody != "Hello" {
		t.Fatalf("lastMessageBody=%q", s.LastMessageBody)
	}
	if !s.UnreadForViewer {
		t.Fatal("receiver's summary not marked unread")
	}
	if s.OtherUID != "alice" || s.OtherName != "Alice" {
		t.Fatalf("other=%q/%q want alice/Alice", s.OtherUID, s.OtherName)
	}
	if s.ListingTitle != "Apartamento T2" {
		t.Fatalf("listingTitle=%q", s.ListingTitle)
	}

	// The sender sees the same conversation without the unread flag.
	senderSide, err := conv.ConversationsFor(context.Background(), "alice")
	if err != nil {
		t.Fatal(err)
	}
	if len(senderSide) != 1 || senderSide[0].UnreadForViewer {
		t.Fatalf("sender side unexpectedly unread: %+v", senderSide)
	}
	if senderSide[0].OtherUID != "bob" {
		t.Fatalf("sender's other=%q want bob", senderSide[0].OtherUID)
	}
}

func TestConversationsForUnreadClearsAfterMarkRead(t *testing.T) {
	conv, msg, _ := newTestConversationService()
	m, err := msg.Send(context.Background(), "alice", "bob", 7, "Hello")
	if err != nil {
		t.Fatal(err)
	}
	if _, err := msg.MarkConversationRead(context.Background(), m.ConversationKey, "bob"); err != nil {
		t.Fatal(err)
	}
	summaries, err := conv.ConversationsFor(context.Background(), "bob")
	if err != nil {
		t.Fatal(err)
	}
	if summaries[0].UnreadForViewer {
		t.Fatal("unread flag survived mark-read")
	}
	count, _ := msg.UnreadCount(context.Background(), "bob")
	if count != 0 {
		t.Fatalf("unread count=%d want 0", count)
	}
}

func TestConversationsForOrdering(t *testing.T) {
	conv, msg, _ := newTestConversationService()
	// Older conversation about listing 7, newer about listing 8.
	if _, err := msg.Send(context.Background(), "alice", "bob", 7, "first"); err != nil {
		t.Fatal(err)
	}
	if _, err := msg.Send(context.Background(), "carol", "bob", 8, "second"); err != nil {
		t.Fatal(err)
	}

	summaries, err := conv.ConversationsFor(context.Background(), "bob")
	if err != nil {
		t.Fatal(err)
	}
	if len(summaries) != 2 {
		t.Fatalf("len=%d want 2", len(summaries))
	}
	if summaries[0].LastMessageBody != "second" || summaries[1].LastMessageBody != "first" {
		t.Fatalf("not sorted by recency: %q then %q", summaries[0].LastMessageBody, summaries[1].LastMessageBody)
	}
	if !summaries[0].LastMessageAt.After(summaries[1].LastMessageAt) {
		t.Fatal("timestamps not descending")
	}
}

func TestConversationsForOtherParticipantFromLastMessage(t *testing.T) {
	conv, msg, _ := newTestConversationService()
	if _, err := msg.Send(context.Background(), "alice", "bob", 7, "ping"); err != nil {
		t.Fatal(err)
	}
	if _, err := msg.Send(context.Background(), "bob", "alice", 7, "pong"); err != nil {
		t.Fatal(err)
	}
	summaries, err := conv.ConversationsFor(context.Background(), "alice")
	if err != nil {
		t.Fatal(err)
	}
	if len(summaries) != 1 {
		t.Fatalf("len=%d want 1", len(summaries))
	}
	// Last message is bob -> alice, so the other participant is bob.
	if summaries[0].OtherUID != "bob" {
		t.Fatalf("other=%q want bob", summaries[0].OtherUID)
	}
	if summaries[0].LastMessageBody != "pong" {
		t.Fatalf("lastMessageBody=%q want pong", summaries[0].LastMessageBody)
	}
	if !summaries[0].UnreadForViewer {
		t.Fatal("alice has an unread reply but no unread flag")
	}
}

func TestConversationsForListingFailureDegrades(t *testing.T) {
	conv, msg, listings := newTestConversationService()
	if _, err := msg.Send(context.Background(), "alice", "bob", 7, "Hello"); err != nil {
		t.Fatal(err)
	}
	listings.fail = errors.New("directory down")

	summaries, err := conv.ConversationsFor(context.Background(), "bob")
	if err != nil {
		t.Fatalf("aggregation failed on collaborator outage: %v", err)
	}
	if len(summaries) != 1 {
		t.Fatalf("conversation hidden by collaborator outage")
	}
	if summaries[0].ListingTitle != listingTitleFallback {
		t.Fatalf("listingTitle=%q want fallback", summaries[0].ListingTitle)
	}
}

func TestConversationsForNameFallsBackToUID(t *testing.T) {
	conv, msg, _ := newTestConversationService()
	if _, err := msg.Send(context.Background(), "carol", "bob", 8, "hi"); err != nil {
		t.Fatal(err)
	}
	summaries, err := conv.ConversationsFor(context.Background(), "bob")
	if err != nil {
		t.Fatal(err)
	}
	if summaries[0].OtherName != "carol" {
		t.Fatalf("otherName=%q want uid fallback", summaries[0].OtherName)
	}
}

func TestConversationsForRequiresUID(t *testing.T) {
	conv, _, _ := newTestConversationService()
	if _, err := conv.ConversationsFor(context.Background(), ""); !errors.Is(err, ErrValidation) {
		t.Fatalf("err=%v want ErrValidation", err)
	}
}
