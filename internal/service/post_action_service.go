package service

import (
	"Admission/internal/api/dto"
	"Admission/internal/model"
	"Admission/internal/pkg/consts"
	"Admission/internal/pkg/queue"
	"Admission/internal/repository"
	"context"
	"fmt"
	"strings"
)

// PostActionService 帖子互动：点赞、评论、删除，通知与图片清理交给队列异步完成
type PostActionService interface {
	ToggleLike(ctx context.Context, actor dto.Creator, postID uint64) (*dto.LikeStateDTO, error)
	CreateComment(ctx context.Context, actor dto.Creator, postID uint64, req *dto.CommentCreateReq) (*dto.CommentDTO, error)
	DeletePost(ctx context.Context, actor dto.Creator, postID uint64) error
}

type postActionServiceImpl struct {
	postRepo repository.PostRepo
	producer queue.Producer
}

func NewPostActionService(postRepo repository.PostRepo, producer queue.Producer) PostActionService {
	return &postActionServiceImpl{
		postRepo: postRepo,
		producer: producer,
	}
}

func (s *postActionServiceImpl) ToggleLike(ctx context.Context, actor dto.Creator, postID uint64) (*dto.LikeStateDTO, error) {
	post, err := s.getPost(ctx, postID)
	if err != nil {
		return nil, err
	}

	liked, total, err := s.postRepo.ToggleLike(ctx, actor.ID, postID)
	if err != nil {
		return nil, err
	}

	if liked && post.AuthorID != actor.ID {
		s.notifyAuthor(ctx, actor, post, consts.NotificationLike, fmt.Sprintf("%s 赞了你的帖子「%s」", actor.Name, post.Title), nil)
	}
	return &dto.LikeStateDTO{Liked: liked, LikeCount: total}, nil
}

func (s *postActionServiceImpl) CreateComment(ctx context.Context, actor dto.Creator, postID uint64, req *dto.CommentCreateReq) (*dto.CommentDTO, error) {
	text := strings.TrimSpace(req.Text)
	if text == "" {
		return nil, ErrParamInvalid
	}
	post, err := s.getPost(ctx, postID)
	if err != nil {
		return nil, err
	}

	comment := &model.Comment{PostID: postID, AuthorID: actor.ID, Text: text}
	if err = s.postRepo.CreateComment(ctx, comment, req.ImageIDs); err != nil {
		return nil, err
	}

	if post.AuthorID != actor.ID {
		s.notifyAuthor(ctx, actor, post, consts.NotificationComment, fmt.Sprintf("%s 评论了你的帖子「%s」", actor.Name, post.Title), &comment.ID)
	}

	return &dto.CommentDTO{
		ID:        comment.ID,
		PostID:    comment.PostID,
		Text:      comment.Text,
		CreatedAt: comment.CreatedAt,
		Author:    toUserBrief(&comment.Author),
	}, nil
}

// DeletePost 学生只能删除自己的帖子；每张图片投递一个 deleteImage 任务
func (s *postActionServiceImpl) DeletePost(ctx context.Context, actor dto.Creator, postID uint64) error {
	post, err := s.getPost(ctx, postID)
	if err != nil {
		return err
	}
	if actor.Role == consts.RoleStudent && post.AuthorID != actor.ID {
		return ErrPostNotFound
	}

	publicIDs, err := s.postRepo.DeletePost(ctx, postID)
	if err != nil {
		return err
	}
	enqueueImageDeletes(ctx, s.producer, publicIDs)
	return nil
}

func (s *postActionServiceImpl) getPost(ctx context.Context, postID uint64) (*model.Post, error) {
	post, err := s.postRepo.GetPost(ctx, postID)
	if err != nil {
		return nil, err
	}
	if post == nil {
		return nil, ErrPostNotFound
	}
	return post, nil
}

func (s *postActionServiceImpl) notifyAuthor(ctx context.Context, actor dto.Creator, post *model.Post, kind, message string, commentID *uint64) {
	link := fmt.Sprintf("/posts/%d", post.ID)
	postID := post.ID
	enqueue(ctx, s.producer, consts.QueueNotifications, consts.JobSendNotification, dto.NotificationJob{
		UserIDs:   []uint64{post.AuthorID},
		Type:      kind,
		Message:   message,
		Link:      &link,
		PostID:    &postID,
		CommentID: commentID,
		CreatedBy: actor,
	})
}
