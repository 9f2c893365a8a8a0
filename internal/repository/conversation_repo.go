package repository

import (
	"Admission/internal/model"
	"context"
	"errors"
	"time"

	"gorm.io/gorm"
)

// ConversationSummary 会话列表项
type ConversationSummary struct {
	Conversation *model.Conversation
	LastMessage  *model.Message
	UnreadCount  int64
}

type ConversationRepo interface {
	GetConversation(ctx context.Context, convID uint64) (*model.Conversation, error)
	GetConversationByPeerKey(ctx context.Context, peerKey string) (*model.Conversation, error)
	CreateConversation(ctx context.Context, conv *model.Conversation, memberIDs []uint64) error
	IsMember(ctx context.Context, convID, userID uint64) (bool, error)
	GetMemberIDs(ctx context.Context, convID uint64) ([]uint64, error)
	AddMembers(ctx context.Context, convID uint64, userIDs []uint64) ([]uint64, error)
	RemoveMember(ctx context.Context, convID, userID uint64) (bool, error)
	LeaveConversation(ctx context.Context, convID, userID uint64) (destroyed bool, publicIDs []string, err error)
	DeleteConversation(ctx context.Context, convID uint64) ([]string, error)
	Rename(ctx context.Context, convID uint64, name string) error
	MarkRead(ctx context.Context, convID, userID uint64, at time.Time) error
	ListUserConversations(ctx context.Context, userID uint64, search string) ([]*ConversationSummary, error)
	ListMembers(ctx context.Context, convID uint64, search string, limit, offset int) ([]*model.User, int64, error)
}

type conversationRepoImpl struct {
	db *gorm.DB
}

func NewConversationRepo(db *gorm.DB) ConversationRepo {
	return &conversationRepoImpl{db: db}
}

// GetConversation 根据会话 ID 获取会话，不存在时返回 nil
func (s *conversationRepoImpl) GetConversation(ctx context.Context, convID uint64) (*model.Conversation, error) {
	var conv model.Conversation
	err := s.db.WithContext(ctx).First(&conv, convID).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &conv, nil
}

// GetConversationByPeerKey 根据单聊标识获取会话
func (s *conversationRepoImpl) GetConversationByPeerKey(ctx context.Context, peerKey string) (*model.Conversation, error) {
	var conv model.Conversation
	err := s.db.WithContext(ctx).Where("peer_key = ?", peerKey).First(&conv).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &conv, nil
}

// CreateConversation 开启事务创建会话及初始成员
func (s *conversationRepoImpl) CreateConversation(ctx context.Context, conv *model.Conversation, memberIDs []uint64) error {
	return s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Create(conv).Error; err != nil {
			return err
		}
		members := make([]*model.ConversationMember, 0, len(memberIDs))
		for _, uid := range uniqueIDs(memberIDs) {
			members = append(members, &model.ConversationMember{ConversationID: conv.ID, UserID: uid})
		}
		if len(members) == 0 {
			return nil
		}
		return tx.Create(&members).Error
	})
}

// IsMember 检查用户是否是会话成员
func (s *conversationRepoImpl) IsMember(ctx context.Context, convID, userID uint64) (bool, error) {
	var count int64
	err := s.db.WithContext(ctx).Model(&model.ConversationMember{}).
		Where("conversation_id = ? AND user_id = ?", convID, userID).
		Count(&count).Error
	return count > 0, err
}

func (s *conversationRepoImpl) GetMemberIDs(ctx context.Context, convID uint64) ([]uint64, error) {
	var ids []uint64
	err := s.db.WithContext(ctx).Model(&model.ConversationMember{}).
		Where("conversation_id = ?", convID).
		Pluck("user_id", &ids).Error
	return ids, err
}

// AddMembers 批量加入成员，已在会话中的用户跳过，返回实际加入的用户
func (s *conversationRepoImpl) AddMembers(ctx context.Context, convID uint64, userIDs []uint64) ([]uint64, error) {
	var added []uint64
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var existing []uint64
		if err := tx.Model(&model.ConversationMember{}).
			Where("conversation_id = ? AND user_id IN ?", convID, userIDs).
			Pluck("user_id", &existing).Error; err != nil {
			return err
		}
		skip := make(map[uint64]struct{}, len(existing))
		for _, id := range existing {
			skip[id] = struct{}{}
		}

		members := make([]*model.ConversationMember, 0, len(userIDs))
		for _, uid := range uniqueIDs(userIDs) {
			if _, ok := skip[uid]; ok {
				continue
			}
			members = append(members, &model.ConversationMember{ConversationID: convID, UserID: uid})
			added = append(added, uid)
		}
		if len(members) == 0 {
			return nil
		}
		return tx.Create(&members).Error
	})
	return added, err
}

// RemoveMember 移除成员，返回该用户原本是否在会话中
func (s *conversationRepoImpl) RemoveMember(ctx context.Context, convID, userID uint64) (bool, error) {
	res := s.db.WithContext(ctx).
		Where("conversation_id = ? AND user_id = ?", convID, userID).
		Delete(&model.ConversationMember{})
	return res.RowsAffected > 0, res.Error
}

// LeaveConversation 退出会话，最后一名成员退出时级联删除会话
func (s *conversationRepoImpl) LeaveConversation(ctx context.Context, convID, userID uint64) (bool, []string, error) {
	var destroyed bool
	var publicIDs []string
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("conversation_id = ? AND user_id = ?", convID, userID).
			Delete(&model.ConversationMember{}).Error; err != nil {
			return err
		}

		var remaining int64
		if err := tx.Model(&model.ConversationMember{}).
			Where("conversation_id = ?", convID).
			Count(&remaining).Error; err != nil {
			return err
		}
		if remaining > 0 {
			return nil
		}

		ids, err := cascadeDeleteConversation(tx, convID)
		if err != nil {
			return err
		}
		destroyed, publicIDs = true, ids
		return nil
	})
	return destroyed, publicIDs, err
}

// DeleteConversation 级联删除会话，返回需要清理的图片 publicId
func (s *conversationRepoImpl) DeleteConversation(ctx context.Context, convID uint64) ([]string, error) {
	var publicIDs []string
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		ids, err := cascadeDeleteConversation(tx, convID)
		publicIDs = ids
		return err
	})
	return publicIDs, err
}

// cascadeDeleteConversation 依次删除 图片 -> 消息 -> 成员 -> 会话
func cascadeDeleteConversation(tx *gorm.DB, convID uint64) ([]string, error) {
	messageIDs := tx.Model(&model.Message{}).Select("id").Where("conversation_id = ?", convID)

	var publicIDs []string
	if err := tx.Model(&model.Image{}).
		Where("message_id IN (?)", messageIDs).
		Pluck("public_id", &publicIDs).Error; err != nil {
		return nil, err
	}
	if err := tx.Where("message_id IN (?)", messageIDs).Delete(&model.Image{}).Error; err != nil {
		return nil, err
	}
	if err := tx.Where("conversation_id = ?", convID).Delete(&model.Message{}).Error; err != nil {
		return nil, err
	}
	if err := tx.Where("conversation_id = ?", convID).Delete(&model.ConversationMember{}).Error; err != nil {
		return nil, err
	}
	if err := tx.Delete(&model.Conversation{}, convID).Error; err != nil {
		return nil, err
	}
	return publicIDs, nil
}

func (s *conversationRepoImpl) Rename(ctx context.Context, convID uint64, name string) error {
	return s.db.WithContext(ctx).Model(&model.Conversation{}).
		Where("id = ?", convID).
		Update("name", name).Error
}

// MarkRead 更新用户已读时间
func (s *conversationRepoImpl) MarkRead(ctx context.Context, convID, userID uint64, at time.Time) error {
	return s.db.WithContext(ctx).Model(&model.ConversationMember{}).
		Where("conversation_id = ? AND user_id = ?", convID, userID).
		Update("last_read_at", at).Error
}

// ListUserConversations 用户的全部会话，附带最后一条消息与未读数，按最后活跃时间倒序
func (s *conversationRepoImpl) ListUserConversations(ctx context.Context, userID uint64, search string) ([]*ConversationSummary, error) {
	db := s.db.WithContext(ctx)

	query := db.Model(&model.Conversation{}).
		Where("id IN (?)", db.Model(&model.ConversationMember{}).Select("conversation_id").Where("user_id = ?", userID))
	if search != "" {
		like := "%" + search + "%"
		query = query.Where("name LIKE ? OR id IN (?)", like,
			db.Table("conversation_members m").
				Select("m.conversation_id").
				Joins("JOIN users u ON u.id = m.user_id").
				Where("u.name LIKE ? AND m.user_id <> ?", like, userID))
	}

	var convs []*model.Conversation
	if err := query.Preload("Members.User").Find(&convs).Error; err != nil {
		return nil, err
	}

	list := make([]*ConversationSummary, 0, len(convs))
	for _, conv := range convs {
		summary := &ConversationSummary{Conversation: conv}

		var last model.Message
		err := db.Preload("Sender").Preload("Images").
			Where("conversation_id = ?", conv.ID).
			Order("created_at DESC, id DESC").
			First(&last).Error
		if err == nil {
			summary.LastMessage = &last
		} else if !errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, err
		}

		since := time.Unix(0, 0)
		for _, m := range conv.Members {
			if m.UserID == userID && m.LastReadAt != nil {
				since = *m.LastReadAt
			}
		}
		if err = db.Model(&model.Message{}).
			Where("conversation_id = ? AND created_at > ? AND sender_id <> ?", conv.ID, since, userID).
			Count(&summary.UnreadCount).Error; err != nil {
			return nil, err
		}
		list = append(list, summary)
	}

	sortSummaries(list)
	return list, nil
}

// ListMembers 会话成员分页，按姓名排序，支持姓名/邮箱搜索
func (s *conversationRepoImpl) ListMembers(ctx context.Context, convID uint64, search string, limit, offset int) ([]*model.User, int64, error) {
	query := s.db.WithContext(ctx).Model(&model.User{}).
		Joins("JOIN conversation_members m ON m.user_id = users.id").
		Where("m.conversation_id = ?", convID)
	if search != "" {
		like := "%" + search + "%"
		query = query.Where("users.name LIKE ? OR users.email LIKE ?", like, like)
	}

	var total int64
	if err := query.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	users := make([]*model.User, 0, limit)
	err := query.Order("users.name ASC").Limit(limit).Offset(offset).Find(&users).Error
	return users, total, err
}
