package repository

import (
	"Admission/internal/model"
	"context"
	"time"

	"gorm.io/gorm"
)

// MessageQuery 游标分页查询条件，Before 优先于 After
type MessageQuery struct {
	Before *time.Time
	After  *time.Time
	Limit  int
}

type MessageRepo interface {
	CreateMessage(ctx context.Context, msg *model.Message, imageIDs []uint64) ([]uint64, error)
	ListMessages(ctx context.Context, convID uint64, q MessageQuery) ([]*model.Message, error)
}

type messageRepoImpl struct {
	db *gorm.DB
}

func NewMessageRepo(db *gorm.DB) MessageRepo {
	return &messageRepoImpl{db: db}
}

// CreateMessage 同一事务内写入消息、挂载图片并读取会话成员，返回成员 ID 列表
func (s *messageRepoImpl) CreateMessage(ctx context.Context, msg *model.Message, imageIDs []uint64) ([]uint64, error) {
	var recipients []uint64
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Omit("Sender", "Images").Create(msg).Error; err != nil {
			return err
		}

		if len(imageIDs) > 0 {
			if err := tx.Model(&model.Image{}).
				Where("id IN ? AND uploader_id = ? AND message_id IS NULL AND post_id IS NULL AND comment_id IS NULL", imageIDs, msg.SenderID).
				Update("message_id", msg.ID).Error; err != nil {
				return err
			}
		}

		if err := tx.Model(&model.ConversationMember{}).
			Where("conversation_id = ?", msg.ConversationID).
			Pluck("user_id", &recipients).Error; err != nil {
			return err
		}

		// 回填发送者与图片，供推送与响应使用
		return tx.Preload("Sender").Preload("Images").First(msg, msg.ID).Error
	})
	if err != nil {
		return nil, err
	}
	return recipients, nil
}

// ListMessages 按创建时间倒序取 Limit 条
func (s *messageRepoImpl) ListMessages(ctx context.Context, convID uint64, q MessageQuery) ([]*model.Message, error) {
	query := s.db.WithContext(ctx).
		Preload("Sender").
		Preload("Images").
		Where("conversation_id = ?", convID)

	switch {
	case q.Before != nil:
		query = query.Where("created_at < ?", *q.Before)
	case q.After != nil:
		query = query.Where("created_at > ?", *q.After)
	}

	msgs := make([]*model.Message, 0, q.Limit)
	err := query.Order("created_at DESC, id DESC").Limit(q.Limit).Find(&msgs).Error
	return msgs, err
}
