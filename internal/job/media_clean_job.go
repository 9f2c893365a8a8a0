package job

import (
	"Admission/internal/pkg/consts"
	"Admission/internal/pkg/logger"
	"Admission/internal/pkg/redis"
	"Admission/internal/service"
	"context"
	log "log/slog"
	"time"

	"github.com/google/uuid"
)

const orphanImageTTL = 24 * time.Hour

// MediaCleanupJob 清理上传后一直未被使用的图片
type MediaCleanupJob struct {
	mediaSvc service.MediaService
}

func NewMediaCleanupJob(mediaSvc service.MediaService) *MediaCleanupJob {
	return &MediaCleanupJob{mediaSvc: mediaSvc}
}

func (s *MediaCleanupJob) Run() {
	lockID := uuid.NewString()
	ctx := logger.WithTraceID(context.Background(), "job-media-clean-"+lockID)
	log.InfoContext(ctx, "start media cleanup job")

	ok, err := redis.TryLock(ctx, consts.MediaCleanLock, lockID, 10*time.Minute, 0)
	if err != nil {
		log.ErrorContext(ctx, "acquire media clean lock failed", "err", err)
		return
	}
	if !ok {
		return
	}
	defer redis.UnLock(ctx, consts.MediaCleanLock, lockID)

	count, err := s.mediaSvc.CleanupOrphans(ctx, orphanImageTTL)
	if err != nil {
		log.ErrorContext(ctx, "media cleanup job failed", "cleaned_count", count, "err", err)
		return
	}
	if count > 0 {
		log.InfoContext(ctx, "media cleanup job finished", "cleaned_count", count)
	}
}
