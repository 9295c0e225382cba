package service

import (
	"context"
	"errors"
	"sort"
	"sync"
	"time"

	"github.com/123Jonas/aluguel-imoveis-backend/internal/identity"
	"github.com/123Jonas/aluguel-imoveis-backend/internal/model"
	"gorm.io/gorm"
)

// opJournal records the order of side effects so tests can assert that
// persistence precedes broadcast precedes notification.
type opJournal struct {
	mu  sync.Mutex
	ops []string
}

func (j *opJournal) record(op string) {
	j.mu.Lock()
	j.ops = append(j.ops, op)
	j.mu.Unlock()
}

func (j *opJournal) snapshot() []string {
	j.mu.Lock()
	defer j.mu.Unlock()
	return append([]string(nil), j.ops...)
}

type fakeMessageRepo struct {
	mu      sync.Mutex
	msgs    []model.Message
	nextID  uint64
	clock   time.Time
	journal *opJournal
	failAll error
}

func newFakeMessageRepo(j *opJournal) *fakeMessageRepo {
	return &fakeMessageRepo{clock: time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC), journal: j}
}

func (r *fakeMessageRepo) Create(_ context.Context, msg *model.Message) error {
	if r.failAll != nil {
		return r.failAll
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	r.nextID++
	msg.ID = r.nextID
	r.clock = r.clock.Add(time.Second)
	msg.CreatedAt = r.clock
	r.msgs = append(r.msgs, *msg)
	if r.journal != nil {
		r.journal.record("persist:" + msg.Body)
	}
	return nil
}

func (r *fakeMessageRepo) ListByConversation(_ context.Context, key string) ([]model.Message, error) {
	if r.failAll != nil {
		return nil, r.failAll
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []model.Message
	for _, m := range r.msgs {
		if m.ConversationKey == key {
			out = append(out, m)
		}
	}
	sortMessages(out)
	return out, nil
}

func (r *fakeMessageRepo) ListForParticipant(_ context.Context, uid string) ([]model.Message, error) {
	if r.failAll != nil {
		return nil, r.failAll
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []model.Message
	for _, m := range r.msgs {
		if m.SenderUID == uid || m.ReceiverUID == uid {
			out = append(out, m)
		}
	}
	sortMessages(out)
	return out, nil
}

func (r *fakeMessageRepo) MarkRead(_ context.Context, key, readerUID string) (int64, error) {
	if r.failAll != nil {
		return 0, r.failAll
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	var n int64
	for i := range r.msgs {
		m := &r.msgs[i]
		if m.ConversationKey == key && m.ReceiverUID == readerUID && !m.Read {
			m.Read = true
			n++
		}
	}
	return n, nil
}

func (r *fakeMessageRepo) CountUnread(_ context.Context, uid string) (int64, error) {
	if r.failAll != nil {
		return 0, r.failAll
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	var n int64
	for _, m := range r.msgs {
		if m.ReceiverUID == uid && !m.Read {
			n++
		}
	}
	return n, nil
}

func (r *fakeMessageRepo) IsParticipant(_ context.Context, key, uid string) (bool, error) {
	if r.failAll != nil {
		return false, r.failAll
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, m := range r.msgs {
		if m.ConversationKey == key && (m.SenderUID == uid || m.ReceiverUID == uid) {
			return true, nil
		}
	}
	return false, nil
}

func (r *fakeMessageRepo) HasMessages(_ context.Context, key string) (bool, error) {
	if r.failAll != nil {
		return false, r.failAll
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, m := range r.msgs {
		if m.ConversationKey == key {
			return true, nil
		}
	}
	return false, nil
}

func (r *fakeMessageRepo) SetDB(_ *gorm.DB) {}

func sortMessages(msgs []model.Message) {
	sort.Slice(msgs, func(i, j int) bool {
		if !msgs[i].CreatedAt.Equal(msgs[j].CreatedAt) {
			return msgs[i].CreatedAt.Before(msgs[j].CreatedAt)
		}
		return msgs[i].ID < msgs[j].ID
	})
}

type fakeListingRepo struct {
	mu       sync.Mutex
	listings map[uint64]model.Listing
	fail     error
}

func newFakeListingRepo(listings ...model.Listing) *fakeListingRepo {
	r := &fakeListingRepo{listings: make(map[uint64]model.Listing)}
	for _, l := range listings {
		r.listings[l.ID] = l
	}
	return r
}

func (r *fakeListingRepo) Create(_ context.Context, listing *model.Listing) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.listings[listing.ID] = *listing
	return nil
}

func (r *fakeListingRepo) FindByID(_ context.Context, id uint64) (*model.Listing, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.fail != nil {
		return nil, r.fail
	}
	l, ok := r.listings[id]
	if !ok {
		return nil, gorm.ErrRecordNotFound
	}
	return &l, nil
}

func (r *fakeListingRepo) SetDB(_ *gorm.DB) {}

type fakeDirectory struct {
	users map[string]identity.Principal
}

func (d *fakeDirectory) Lookup(_ context.Context, uid string) (*identity.Principal, error) {
	p, ok := d.users[uid]
	if !ok {
		return nil, errors.New("user not found")
	}
	return &p, nil
}

type recordingBroadcaster struct {
	mu      sync.Mutex
	msgs    []model.Message
	journal *opJournal
}

func (b *recordingBroadcaster) BroadcastNewMessage(msg *model.Message) {
	b.mu.Lock()
	b.msgs = append(b.msgs, *msg)
	b.mu.Unlock()
	if b.journal != nil {
		b.journal.record("broadcast:" + msg.Body)
	}
}

type recordingNotifier struct {
	mu      sync.Mutex
	msgs    []model.Message
	journal *opJournal
}

func (n *recordingNotifier) NotifyMessageCreated(msg *model.Message) {
	n.mu.Lock()
	n.msgs = append(n.msgs, *msg)
	n.mu.Unlock()
	if n.journal != nil {
		n.journal.record("notify:" + msg.Body)
	}
}
