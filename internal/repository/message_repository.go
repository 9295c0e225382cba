package repository

import (
	"context"
	"errors"

	"github.com/123Jonas/aluguel-imoveis-backend/internal/model"
	"gorm.io/gorm"
)

var ErrDBNotReady = errors.New("database not initialized")

type MessageRepository interface {
	Create(ctx context.Context, msg *model.Message) error
	ListByConversation(ctx context.Context, key string) ([]model.Message, error)
	ListForParticipant(ctx context.Context, uid string) ([]model.Message, error)
	MarkRead(ctx context.Context, key, readerUID string) (int64, error)
	CountUnread(ctx context.Context, uid string) (int64, error)
	IsParticipant(ctx context.Context, key, uid string) (bool, error)
	HasMessages(ctx context.Context, key string) (bool, error)
	SetDB(db *gorm.DB)
}

type messageRepository struct {
	db *gorm.DB
}

func NewMessageRepository(db *gorm.DB) MessageRepository {
	return &messageRepository{db: db}
}

func (r *messageRepository) SetDB(db *gorm.DB) {
	r.db = db
}

func (r *messageRepository) Create(ctx context.Context, msg *model.Message) error {
	if r.db == nil {
		return ErrDBNotReady
	}
	return r.db.WithContext(ctx).Create(msg).Error
}

// ListByConversation returns the conversation's messages in visibility order:
// created_at ascending, message id breaking ties.
func (r *messageRepository) ListByConversation(ctx context.Context, key string) ([]model.Message, error) {
	if r.db == nil {
		return nil, ErrDBNotReady
	}
	var msgs []model.Message
	if err := r.db.WithContext(ctx).
		Where("conversation_key = ?", key).
		Order("created_at ASC, id ASC").
		Find(&msgs).Error; err != nil {
		return nil, err
	}
	return msgs, nil
}

func (r *messageRepository) ListForParticipant(ctx context.Context, uid string) ([]model.Message, error) {
	if r.db == nil {
		return nil, ErrDBNotReady
	}
	var msgs []model.Message
	if err := r.db.WithContext(ctx).
		Where("sender_uid = ? OR receiver_uid = ?", uid, uid).
		Order("created_at ASC, id ASC").
		Find(&msgs).Error; err != nil {
		return nil, err
	}
	return msgs, nil
}

// MarkRead flips every unread message addressed to readerUID in the
// conversation. A single guarded UPDATE keeps it idempotent: a second call
// matches zero rows, and a message appended concurrently commits with
// read=false outside the predicate of an in-flight update.
func (r *messageRepository) MarkRead(ctx context.Context, key, readerUID string) (int64, error) {
	if r.db == nil {
		return 0, ErrDBNotReady
	}
	res := r.db.WithContext(ctx).
		Model(&model.Message{}).
		Where("conversation_key = ? AND receiver_uid = ? AND is_read = ?", key, readerUID, false).
		Update("is_read", true)
	if res.Error != nil {
		return 0, res.Error
	}
	return res.RowsAffected, nil
}

func (r *messageRepository) CountUnread(ctx context.Context, uid string) (int64, error) {
	if r.db == nil {
		return 0, ErrDBNotReady
	}
	var cnt int64
	if err := r.db.WithContext(ctx).
		Model(&model.Message{}).
		Where("receiver_uid = ? AND is_read = ?", uid, false).
		Count(&cnt).Error; err != nil {
		return 0, err
	}
	return cnt, nil
}

func (r *messageRepository) HasMessages(ctx context.Context, key string) (bool, error) {
	if r.db == nil {
		return false, ErrDBNotReady
	}
	var cnt int64
	if err := r.db.WithContext(ctx).
		Model(&model.Message{}).
		Where("conversation_key = ?", key).
		Limit(1).
		Count(&cnt).Error; err != nil {
		return false, err
	}
	return cnt > 0, nil
}

// IsParticipant checks membership against stored messages, never against the
// key string a client supplied.
func (r *messageRepository) IsParticipant(ctx context.Context, key, uid string) (bool, error) {
	if r.db == nil {
		return false, ErrDBNotReady
	}
	var cnt int64
	if err := r.db.WithContext(ctx).
		Model(&model.Message{}).
		Where("conversation_key = ? AND (sender_uid = ? OR receiver_uid = ?)", key, uid, uid).
		Limit(1).
		Count(&cnt).Error; err != nil {
		return false, err
	}
	return cnt > 0, nil
}
