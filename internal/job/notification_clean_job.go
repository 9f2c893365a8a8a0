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

// NotificationCleanJob 定期清理超过保留期的已读通知，多实例下只有拿到锁的实例执行
type NotificationCleanJob struct {
	notificationSvc service.NotificationService
	retention       time.Duration
}

func NewNotificationCleanJob(notificationSvc service.NotificationService, retentionDays int) *NotificationCleanJob {
	if retentionDays <= 0 {
		retentionDays = 30
	}
	return &NotificationCleanJob{
		notificationSvc: notificationSvc,
		retention:       time.Duration(retentionDays) * 24 * time.Hour,
	}
}

func (s *NotificationCleanJob) Run() {
	lockID := uuid.NewString()
	ctx := logger.WithTraceID(context.Background(), "job-notification-clean-"+lockID)

	ok, err := redis.TryLock(ctx, consts.NotificationCleanLock, lockID, 10*time.Minute, 0)
	if err != nil {
		log.ErrorContext(ctx, "acquire notification clean lock failed", "err", err)
		return
	}
	if !ok {
		return
	}
	defer redis.UnLock(ctx, consts.NotificationCleanLock, lockID)

	n, err := s.notificationSvc.CleanupRead(ctx, s.retention)
	if err != nil {
		log.ErrorContext(ctx, "notification clean job failed", "err", err)
		return
	}
	log.InfoContext(ctx, "notification clean job finished", "deleted", n)
}
