package repository

import (
	"Admission/internal/model"
	"context"
	"time"

	"gorm.io/gorm"
)

type ImageRepo interface {
	CreateImage(ctx context.Context, img *model.Image) error
	GetImagesByIDs(ctx context.Context, ids []uint64) ([]*model.Image, error)
	ListOrphans(ctx context.Context, before time.Time, limit int) ([]*model.Image, error)
	DeleteImages(ctx context.Context, ids []uint64) (int64, error)
}

type imageRepoImpl struct {
	db *gorm.DB
}

func NewImageRepo(db *gorm.DB) ImageRepo {
	return &imageRepoImpl{db: db}
}

func (s *imageRepoImpl) CreateImage(ctx context.Context, img *model.Image) error {
	return s.db.WithContext(ctx).Create(img).Error
}

func (s *imageRepoImpl) GetImagesByIDs(ctx context.Context, ids []uint64) ([]*model.Image, error) {
	images := make([]*model.Image, 0, len(ids))
	if len(ids) == 0 {
		return images, nil
	}
	err := s.db.WithContext(ctx).Where("id IN ?", ids).Find(&images).Error
	return images, err
}

// ListOrphans 上传后始终未挂到消息/帖子/评论上的图片
func (s *imageRepoImpl) ListOrphans(ctx context.Context, before time.Time, limit int) ([]*model.Image, error) {
	var images []*model.Image
	err := s.db.WithContext(ctx).
		Where("message_id IS NULL AND post_id IS NULL AND comment_id IS NULL AND created_at < ?", before).
		Order("id ASC").
		Limit(limit).
		Find(&images).Error
	return images, err
}

// DeleteImages 只删除仍未被挂载的记录，避免与并发的消息发送冲突
func (s *imageRepoImpl) DeleteImages(ctx context.Context, ids []uint64) (int64, error) {
	if len(ids) == 0 {
		return 0, nil
	}
	res := s.db.WithContext(ctx).
		Where("id IN ? AND message_id IS NULL AND post_id IS NULL AND comment_id IS NULL", ids).
		Delete(&model.Image{})
	return res.RowsAffected, res.Error
}
