package service

import (
	"Admission/internal/api/dto"
	"Admission/internal/model"
	"Admission/internal/pkg/consts"
	"Admission/internal/pkg/queue"
	"Admission/internal/pkg/util"
	"Admission/internal/repository"
	"context"
	"io"
	log "log/slog"
	"slices"
	"strings"
	"time"

	"github.com/google/uuid"
)

// ImageStore 对象存储上传能力
type ImageStore interface {
	Upload(ctx context.Context, objectName string, reader io.Reader, size int64, contentType string) (string, error)
	PublicURL(objectName string) string
}

// MediaService 图片上传，返回的图片 ID 供消息与评论挂载
type MediaService interface {
	UploadImage(ctx context.Context, uploaderID uint64, reader io.ReadSeeker, size int64) (*dto.ImageDTO, error)
	CleanupOrphans(ctx context.Context, olderThan time.Duration) (int, error)
}

const orphanBatchSize = 200

type mediaServiceImpl struct {
	store     ImageStore
	imageRepo repository.ImageRepo
	producer  queue.Producer
	now       func() time.Time
}

func NewMediaService(store ImageStore, imageRepo repository.ImageRepo, producer queue.Producer) MediaService {
	return &mediaServiceImpl{store: store, imageRepo: imageRepo, producer: producer, now: time.Now}
}

func (s *mediaServiceImpl) UploadImage(ctx context.Context, uploaderID uint64, reader io.ReadSeeker, size int64) (*dto.ImageDTO, error) {
	contentType, ext, err := util.DetectContentType(reader)
	if err != nil {
		return nil, ErrFileNotSupported
	}
	if !strings.HasPrefix(contentType, consts.MimePrefixImage) {
		return nil, ErrFileNotSupported
	}

	objectName := "images/" + time.Now().Format("2006/01/02/") + uuid.NewString() + ext
	publicID, err := s.store.Upload(ctx, objectName, reader, size, contentType)
	if err != nil {
		return nil, err
	}

	img := &model.Image{
		URL:        s.store.PublicURL(publicID),
		PublicID:   publicID,
		UploaderID: uploaderID,
	}
	if err = s.imageRepo.CreateImage(ctx, img); err != nil {
		log.ErrorContext(ctx, "save image record failed", "public_id", publicID, "err", err)
		return nil, err
	}

	return &dto.ImageDTO{ID: img.ID, URL: img.URL, PublicID: img.PublicID}, nil
}

// CleanupOrphans 删除超时未挂载的图片记录，对象存储的删除交给 deleteImage 队列
func (s *mediaServiceImpl) CleanupOrphans(ctx context.Context, olderThan time.Duration) (int, error) {
	before := s.now().Add(-olderThan)
	total := 0
	for {
		images, err := s.imageRepo.ListOrphans(ctx, before, orphanBatchSize)
		if err != nil {
			return total, err
		}
		if len(images) == 0 {
			return total, nil
		}

		ids := make([]uint64, 0, len(images))
		publicIDs := make([]string, 0, len(images))
		for _, img := range images {
			ids = append(ids, img.ID)
			publicIDs = append(publicIDs, img.PublicID)
		}
		deleted, err := s.imageRepo.DeleteImages(ctx, ids)
		if err != nil {
			return total, err
		}
		if deleted < int64(len(ids)) {
			// 有图片在扫描期间被挂载，按 id 重新确认剩余的孤儿
			left, err := s.imageRepo.GetImagesByIDs(ctx, ids)
			if err != nil {
				return total, err
			}
			kept := make(map[string]struct{}, len(left))
			for _, img := range left {
				kept[img.PublicID] = struct{}{}
			}
			publicIDs = slices.DeleteFunc(publicIDs, func(id string) bool {
				_, ok := kept[id]
				return ok
			})
		}
		enqueueImageDeletes(ctx, s.producer, publicIDs)
		total += len(publicIDs)

		if len(images) < orphanBatchSize {
			return total, nil
		}
	}
}
