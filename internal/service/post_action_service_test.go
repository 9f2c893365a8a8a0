package service

import (
	"Admission/internal/api/dto"
	"Admission/internal/model"
	"Admission/internal/pkg/consts"
	"Admission/internal/repository"
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakePostRepo struct {
	repository.PostRepo
	posts     map[uint64]*model.Post
	likes     map[[2]uint64]bool
	publicIDs map[uint64][]string
	comments  []*model.Comment
}

func newFakePostRepo() *fakePostRepo {
	return &fakePostRepo{
		posts: map[uint64]*model.Post{
			1: {ID: 1, AuthorID: 2, Title: "我的志愿填报经验"},
		},
		likes:     make(map[[2]uint64]bool),
		publicIDs: map[uint64][]string{1: {"images/p1.png", "images/p2.png"}},
	}
}

func (r *fakePostRepo) GetPost(_ context.Context, id uint64) (*model.Post, error) {
	return r.posts[id], nil
}

func (r *fakePostRepo) ToggleLike(_ context.Context, userID, postID uint64) (bool, int64, error) {
	key := [2]uint64{userID, postID}
	r.likes[key] = !r.likes[key]
	var total int64
	for k, v := range r.likes {
		if v && k[1] == postID {
			total++
		}
	}
	return r.likes[key], total, nil
}

func (r *fakePostRepo) CreateComment(_ context.Context, c *model.Comment, _ []uint64) error {
	c.ID = uint64(len(r.comments) + 1)
	r.comments = append(r.comments, c)
	return nil
}

func (r *fakePostRepo) DeletePost(_ context.Context, id uint64) ([]string, error) {
	delete(r.posts, id)
	return r.publicIDs[id], nil
}

func TestToggleLikeNotifiesAuthorOnlyForOthers(t *testing.T) {
	repo := newFakePostRepo()
	producer := &fakeProducer{}
	svc := NewPostActionService(repo, producer)
	ctx := context.Background()

	author := dto.Creator{ID: 2, Name: "张同学", Role: consts.RoleStudent}
	state, err := svc.ToggleLike(ctx, author, 1)
	require.NoError(t, err)
	assert.True(t, state.Liked)
	assert.Empty(t, producer.jobs)

	state, err = svc.ToggleLike(ctx, advisor, 1)
	require.NoError(t, err)
	assert.Equal(t, int64(2), state.LikeCount)
	jobs := producer.byQueue(consts.QueueNotifications)
	require.Len(t, jobs, 1)
	job := jobs[0].payload.(dto.NotificationJob)
	assert.Equal(t, consts.NotificationLike, job.Type)
	assert.Equal(t, []uint64{2}, job.UserIDs)

	// 取消点赞不再通知
	state, err = svc.ToggleLike(ctx, advisor, 1)
	require.NoError(t, err)
	assert.False(t, state.Liked)
	assert.Len(t, producer.jobs, 1)
}

func TestCreateCommentNotifiesAuthor(t *testing.T) {
	repo := newFakePostRepo()
	producer := &fakeProducer{}
	svc := NewPostActionService(repo, producer)

	res, err := svc.CreateComment(context.Background(), advisor, 1, &dto.CommentCreateReq{Text: "欢迎报考"})
	require.NoError(t, err)
	assert.Equal(t, "欢迎报考", res.Text)

	jobs := producer.byQueue(consts.QueueNotifications)
	require.Len(t, jobs, 1)
	job := jobs[0].payload.(dto.NotificationJob)
	assert.Equal(t, consts.NotificationComment, job.Type)
	require.NotNil(t, job.CommentID)
	assert.Equal(t, res.ID, *job.CommentID)
}

func TestDeletePostOwnership(t *testing.T) {
	repo := newFakePostRepo()
	producer := &fakeProducer{}
	svc := NewPostActionService(repo, producer)
	ctx := context.Background()

	other := dto.Creator{ID: 3, Role: consts.RoleStudent}
	assert.ErrorIs(t, svc.DeletePost(ctx, other, 1), ErrPostNotFound)
	assert.Contains(t, repo.posts, uint64(1))

	require.NoError(t, svc.DeletePost(ctx, student, 1))
	jobs := producer.byQueue(consts.QueueDeleteImage)
	require.Len(t, jobs, 2)
	assert.Equal(t, dto.DeleteImageJob{PublicID: "images/p1.png"}, jobs[0].payload)
	assert.Equal(t, consts.JobDeleteImage, jobs[0].name)
}
