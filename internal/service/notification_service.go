package service

import (
	"Admission/internal/api/dto"
	"Admission/internal/repository"
	"context"
	"time"

	"github.com/jinzhu/copier"
)

type NotificationService interface {
	List(ctx context.Context, userID uint64, query *dto.NotificationQuery) (*dto.PageResult[*dto.NotificationDTO], error)
	UnreadCount(ctx context.Context, userID uint64) (*dto.UnreadCountDTO, error)
	MarkRead(ctx context.Context, userID, id uint64) error
	MarkAllRead(ctx context.Context, userID uint64) (*dto.MarkAllReadDTO, error)
	Delete(ctx context.Context, userID, id uint64) error
	CleanupRead(ctx context.Context, retention time.Duration) (int64, error)
}

type notificationServiceImpl struct {
	repo repository.NotificationRepo
}

func NewNotificationService(repo repository.NotificationRepo) NotificationService {
	return &notificationServiceImpl{repo: repo}
}

func (s *notificationServiceImpl) List(ctx context.Context, userID uint64, query *dto.NotificationQuery) (*dto.PageResult[*dto.NotificationDTO], error) {
	page, limit, offset := normalizePage(query.Page, query.Limit)
	filter := repository.NotificationFilter{Type: query.Type, Read: query.Read}

	list, total, err := s.repo.ListNotifications(ctx, userID, filter, limit, offset)
	if err != nil {
		return nil, err
	}

	res := make([]*dto.NotificationDTO, 0, len(list))
	for _, n := range list {
		item := &dto.NotificationDTO{}
		if err = copier.Copy(item, n); err != nil {
			return nil, err
		}
		item.CreatedBy = toUserBrief(&n.CreatedBy)
		res = append(res, item)
	}
	return dto.NewPageResult(res, total, page, limit), nil
}

func (s *notificationServiceImpl) UnreadCount(ctx context.Context, userID uint64) (*dto.UnreadCountDTO, error) {
	count, err := s.repo.CountUnread(ctx, userID)
	if err != nil {
		return nil, err
	}
	return &dto.UnreadCountDTO{UnreadCount: count}, nil
}

// MarkRead 通知不存在或不属于当前用户时统一返回 404
func (s *notificationServiceImpl) MarkRead(ctx context.Context, userID, id uint64) error {
	if err := s.checkOwner(ctx, userID, id); err != nil {
		return err
	}
	return s.repo.MarkRead(ctx, id)
}

func (s *notificationServiceImpl) MarkAllRead(ctx context.Context, userID uint64) (*dto.MarkAllReadDTO, error) {
	updated, err := s.repo.MarkAllRead(ctx, userID)
	if err != nil {
		return nil, err
	}
	return &dto.MarkAllReadDTO{Updated: updated}, nil
}

func (s *notificationServiceImpl) Delete(ctx context.Context, userID, id uint64) error {
	if err := s.checkOwner(ctx, userID, id); err != nil {
		return err
	}
	return s.repo.DeleteNotification(ctx, id)
}

// CleanupRead 删除超过保留期的已读通知
func (s *notificationServiceImpl) CleanupRead(ctx context.Context, retention time.Duration) (int64, error) {
	return s.repo.DeleteReadBefore(ctx, time.Now().Add(-retention))
}

func (s *notificationServiceImpl) checkOwner(ctx context.Context, userID, id uint64) error {
	n, err := s.repo.GetNotification(ctx, id)
	if err != nil {
		return err
	}
	if n == nil || n.UserID != userID {
		return ErrNotificationNotFound
	}
	return nil
}
