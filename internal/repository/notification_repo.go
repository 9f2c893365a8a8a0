package repository

import (
	"Admission/internal/model"
	"context"
	"errors"
	"time"

	"gorm.io/gorm"
)

// NotificationFilter 列表过滤条件，nil 表示不过滤
type NotificationFilter struct {
	Type *string
	Read *bool
}

type NotificationRepo interface {
	CreateNotifications(ctx context.Context, list []*model.Notification) error
	GetNotification(ctx context.Context, id uint64) (*model.Notification, error)
	ListNotifications(ctx context.Context, userID uint64, filter NotificationFilter, limit, offset int) ([]*model.Notification, int64, error)
	CountUnread(ctx context.Context, userID uint64) (int64, error)
	MarkRead(ctx context.Context, id uint64) error
	MarkAllRead(ctx context.Context, userID uint64) (int64, error)
	DeleteNotification(ctx context.Context, id uint64) error
	DeleteReadBefore(ctx context.Context, before time.Time) (int64, error)
}

type notificationRepoImpl struct {
	db *gorm.DB
}

func NewNotificationRepo(db *gorm.DB) NotificationRepo {
	return &notificationRepoImpl{db: db}
}

// CreateNotifications 批量写入，写入后回填 CreatedBy
func (s *notificationRepoImpl) CreateNotifications(ctx context.Context, list []*model.Notification) error {
	if len(list) == 0 {
		return nil
	}
	return s.db.WithContext(ctx).Omit("CreatedBy").CreateInBatches(list, 100).Error
}

func (s *notificationRepoImpl) GetNotification(ctx context.Context, id uint64) (*model.Notification, error) {
	var n model.Notification
	err := s.db.WithContext(ctx).First(&n, id).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &n, nil
}

func (s *notificationRepoImpl) ListNotifications(ctx context.Context, userID uint64, filter NotificationFilter, limit, offset int) ([]*model.Notification, int64, error) {
	query := s.db.WithContext(ctx).Model(&model.Notification{}).Where("user_id = ?", userID)
	if filter.Type != nil {
		query = query.Where("type = ?", *filter.Type)
	}
	if filter.Read != nil {
		query = query.Where("`read` = ?", *filter.Read)
	}

	var total int64
	if err := query.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	list := make([]*model.Notification, 0, limit)
	err := query.Preload("CreatedBy").
		Order("created_at DESC, id DESC").
		Limit(limit).Offset(offset).
		Find(&list).Error
	return list, total, err
}

func (s *notificationRepoImpl) CountUnread(ctx context.Context, userID uint64) (int64, error) {
	var count int64
	err := s.db.WithContext(ctx).Model(&model.Notification{}).
		Where("user_id = ? AND `read` = ?", userID, false).
		Count(&count).Error
	return count, err
}

func (s *notificationRepoImpl) MarkRead(ctx context.Context, id uint64) error {
	return s.db.WithContext(ctx).Model(&model.Notification{}).
		Where("id = ?", id).
		Update("read", true).Error
}

// MarkAllRead 只更新未读的通知，返回更新条数
func (s *notificationRepoImpl) MarkAllRead(ctx context.Context, userID uint64) (int64, error) {
	res := s.db.WithContext(ctx).Model(&model.Notification{}).
		Where("user_id = ? AND `read` = ?", userID, false).
		Update("read", true)
	return res.RowsAffected, res.Error
}

func (s *notificationRepoImpl) DeleteNotification(ctx context.Context, id uint64) error {
	return s.db.WithContext(ctx).Delete(&model.Notification{}, id).Error
}

// DeleteReadBefore 清理早于指定时间的已读通知
func (s *notificationRepoImpl) DeleteReadBefore(ctx context.Context, before time.Time) (int64, error) {
	res := s.db.WithContext(ctx).
		Where("`read` = ? AND created_at < ?", true, before).
		Delete(&model.Notification{})
	return res.RowsAffected, res.Error
}
