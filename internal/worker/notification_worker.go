package worker

import (
	"Admission/internal/api/dto"
	"Admission/internal/model"
	"Admission/internal/pkg/consts"
	"Admission/internal/pkg/queue"
	"Admission/internal/pkg/realtime"
	"Admission/internal/pkg/util"
	"Admission/internal/repository"
	"context"
	"fmt"
	log "log/slog"
)

// NotificationWorker 消费 notifications 队列：落库后向每个接收者推送 newNotification
type NotificationWorker struct {
	repo    repository.NotificationRepo
	emitter realtime.Emitter
}

func NewNotificationWorker(repo repository.NotificationRepo, emitter realtime.Emitter) *NotificationWorker {
	return &NotificationWorker{repo: repo, emitter: emitter}
}

func (w *NotificationWorker) Handle(ctx context.Context, job *queue.Job) error {
	if err := checkJobName(job, consts.JobSendNotification); err != nil {
		return err
	}

	var payload dto.NotificationJob
	if err := job.Decode(&payload); err != nil {
		return err
	}
	if err := util.ValidateDTO(&payload); err != nil {
		return fmt.Errorf("invalid notification job %s: %w", job.ID, err)
	}

	if _, err := w.Process(ctx, &payload); err != nil {
		log.ErrorContext(ctx, "Failed to process notification job", "queue", job.Queue, "attempt", job.Attempts+1, "err", err)
		return err
	}
	return nil
}

// Process 返回写入的通知条数
func (w *NotificationWorker) Process(ctx context.Context, payload *dto.NotificationJob) (int, error) {
	if len(payload.UserIDs) == 0 {
		return 0, nil
	}

	list := make([]*model.Notification, 0, len(payload.UserIDs))
	for _, uid := range payload.UserIDs {
		list = append(list, &model.Notification{
			UserID:         uid,
			Type:           payload.Type,
			Message:        payload.Message,
			Link:           payload.Link,
			PostID:         payload.PostID,
			CommentID:      payload.CommentID,
			MessageID:      payload.MessageID,
			ConversationID: payload.ConversationID,
			Read:           false,
			CreatedByID:    payload.CreatedBy.ID,
		})
	}

	if err := w.repo.CreateNotifications(ctx, list); err != nil {
		return 0, fmt.Errorf("insert notifications: %w", err)
	}

	// 通知已持久化，推送失败只记日志，避免重试造成重复通知
	for _, n := range list {
		event := dto.NotificationEvent{
			ID:             n.ID,
			Type:           n.Type,
			Message:        n.Message,
			Link:           n.Link,
			PostID:         n.PostID,
			CommentID:      n.CommentID,
			MessageID:      n.MessageID,
			ConversationID: n.ConversationID,
			CreatedBy:      payload.CreatedBy,
		}
		if err := w.emitter.EmitToActor(ctx, n.UserID, consts.EventNewNotification, event); err != nil {
			log.WarnContext(ctx, "emit newNotification failed", "user_id", n.UserID, "err", err)
		}
	}

	return len(list), nil
}
