package service

import (
	"Admission/internal/api/dto"
	"Admission/internal/model"
	"Admission/internal/repository"
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeNotificationRepo struct {
	repository.NotificationRepo
	rows       map[uint64]*model.Notification
	deleted    []uint64
	lastFilter repository.NotificationFilter
	lastBefore time.Time
}

func (r *fakeNotificationRepo) GetNotification(_ context.Context, id uint64) (*model.Notification, error) {
	return r.rows[id], nil
}

func (r *fakeNotificationRepo) MarkRead(_ context.Context, id uint64) error {
	r.rows[id].Read = true
	return nil
}

func (r *fakeNotificationRepo) DeleteNotification(_ context.Context, id uint64) error {
	r.deleted = append(r.deleted, id)
	delete(r.rows, id)
	return nil
}

func (r *fakeNotificationRepo) ListNotifications(_ context.Context, userID uint64, filter repository.NotificationFilter, limit, offset int) ([]*model.Notification, int64, error) {
	r.lastFilter = filter
	var list []*model.Notification
	for _, n := range r.rows {
		if n.UserID == userID {
			list = append(list, n)
		}
	}
	return list, int64(len(list)), nil
}

func (r *fakeNotificationRepo) DeleteReadBefore(_ context.Context, before time.Time) (int64, error) {
	r.lastBefore = before
	return 3, nil
}

func newNotificationFixture() (*fakeNotificationRepo, NotificationService) {
	repo := &fakeNotificationRepo{rows: map[uint64]*model.Notification{
		10: {ID: 10, UserID: 2, Type: "LIKE", Message: "王老师 赞了你的帖子", CreatedBy: model.User{ID: 1, Name: "王老师"}},
		11: {ID: 11, UserID: 3, Type: "COMMENT", Message: "别人的通知"},
	}}
	return repo, NewNotificationService(repo)
}

func TestNotificationMarkReadChecksOwnership(t *testing.T) {
	repo, svc := newNotificationFixture()
	ctx := context.Background()

	assert.ErrorIs(t, svc.MarkRead(ctx, 2, 11), ErrNotificationNotFound)
	assert.False(t, repo.rows[11].Read)
	assert.ErrorIs(t, svc.MarkRead(ctx, 2, 99), ErrNotificationNotFound)

	require.NoError(t, svc.MarkRead(ctx, 2, 10))
	assert.True(t, repo.rows[10].Read)
}

func TestNotificationDeleteChecksOwnership(t *testing.T) {
	repo, svc := newNotificationFixture()
	ctx := context.Background()

	assert.ErrorIs(t, svc.Delete(ctx, 2, 11), ErrNotificationNotFound)
	assert.Empty(t, repo.deleted)

	require.NoError(t, svc.Delete(ctx, 2, 10))
	assert.Equal(t, []uint64{10}, repo.deleted)
}

func TestNotificationListMapsCreator(t *testing.T) {
	repo, svc := newNotificationFixture()
	read := false

	page, err := svc.List(context.Background(), 2, &dto.NotificationQuery{Read: &read, Limit: 1000})
	require.NoError(t, err)
	require.Len(t, page.List, 1)
	assert.Equal(t, uint64(10), page.List[0].ID)
	assert.Equal(t, "王老师", page.List[0].CreatedBy.Name)
	assert.Equal(t, maxPageSize, page.Limit)
	assert.Equal(t, &read, repo.lastFilter.Read)
}

func TestNotificationCleanupUsesRetention(t *testing.T) {
	repo, svc := newNotificationFixture()

	n, err := svc.CleanupRead(context.Background(), 30*24*time.Hour)
	require.NoError(t, err)
	assert.Equal(t, int64(3), n)
	assert.WithinDuration(t, time.Now().Add(-30*24*time.Hour), repo.lastBefore, time.Minute)
}
