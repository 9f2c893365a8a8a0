package repository

import (
	"Admission/internal/model"
	"context"
	"errors"

	"gorm.io/gorm"
)

type PostRepo interface {
	GetPost(ctx context.Context, postID uint64) (*model.Post, error)
	DeletePost(ctx context.Context, postID uint64) ([]string, error)
	ToggleLike(ctx context.Context, userID, postID uint64) (bool, int64, error)
	CreateComment(ctx context.Context, comment *model.Comment, imageIDs []uint64) error
	CountComments(ctx context.Context, postID uint64) (int64, error)
}

type postRepoImpl struct {
	db *gorm.DB
}

func NewPostRepo(db *gorm.DB) PostRepo {
	return &postRepoImpl{db: db}
}

// GetPost 帖子详情，包含作者与图片
func (s *postRepoImpl) GetPost(ctx context.Context, postID uint64) (*model.Post, error) {
	var post model.Post
	err := s.db.WithContext(ctx).Preload("Author").Preload("Images").First(&post, postID).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &post, nil
}

// DeletePost 删除帖子及点赞、评论、图片记录，返回需要清理的图片 publicId
func (s *postRepoImpl) DeletePost(ctx context.Context, postID uint64) ([]string, error) {
	var publicIDs []string
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		commentIDs := tx.Model(&model.Comment{}).Select("id").Where("post_id = ?", postID)
		images := tx.Model(&model.Image{}).Where("post_id = ? OR comment_id IN (?)", postID, commentIDs)
		if err := images.Pluck("public_id", &publicIDs).Error; err != nil {
			return err
		}
		if err := tx.Where("post_id = ? OR comment_id IN (?)", postID, commentIDs).Delete(&model.Image{}).Error; err != nil {
			return err
		}
		if err := tx.Where("post_id = ?", postID).Delete(&model.Like{}).Error; err != nil {
			return err
		}
		if err := tx.Where("post_id = ?", postID).Delete(&model.Comment{}).Error; err != nil {
			return err
		}
		return tx.Delete(&model.Post{}, postID).Error
	})
	return publicIDs, err
}

// ToggleLike 点赞/取消点赞，返回操作后的状态与点赞总数
func (s *postRepoImpl) ToggleLike(ctx context.Context, userID, postID uint64) (bool, int64, error) {
	var liked bool
	var total int64
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		res := tx.Where("user_id = ? AND post_id = ?", userID, postID).Delete(&model.Like{})
		if res.Error != nil {
			return res.Error
		}
		if res.RowsAffected == 0 {
			if err := tx.Create(&model.Like{UserID: userID, PostID: postID}).Error; err != nil {
				return err
			}
			liked = true
		}
		return tx.Model(&model.Like{}).Where("post_id = ?", postID).Count(&total).Error
	})
	return liked, total, err
}

// CreateComment 写入评论并挂载图片
func (s *postRepoImpl) CreateComment(ctx context.Context, comment *model.Comment, imageIDs []uint64) error {
	return s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Omit("Author").Create(comment).Error; err != nil {
			return err
		}
		if len(imageIDs) > 0 {
			if err := tx.Model(&model.Image{}).
				Where("id IN ? AND uploader_id = ? AND message_id IS NULL AND post_id IS NULL AND comment_id IS NULL", imageIDs, comment.AuthorID).
				Update("comment_id", comment.ID).Error; err != nil {
				return err
			}
		}
		return tx.Preload("Author").First(comment, comment.ID).Error
	})
}

func (s *postRepoImpl) CountComments(ctx context.Context, postID uint64) (int64, error) {
	var count int64
	err := s.db.WithContext(ctx).Model(&model.Comment{}).Where("post_id = ?", postID).Count(&count).Error
	return count, err
}
