package service

import (
	"Admission/internal/api/dto"
	"Admission/internal/model"
	"Admission/internal/pkg/consts"
	"Admission/internal/pkg/queue"
	"context"
	log "log/slog"
	"time"

	"github.com/jinzhu/copier"
)

const (
	defaultPageSize = 20
	maxPageSize     = 100
)

// normalizePage 页码从 1 开始，返回修正后的 page、limit 与 offset
func normalizePage(page, limit int) (int, int, int) {
	if page < 1 {
		page = 1
	}
	if limit < 1 {
		limit = defaultPageSize
	}
	if limit > maxPageSize {
		limit = maxPageSize
	}
	return page, limit, (page - 1) * limit
}

func isStaff(actor dto.Creator) bool {
	return actor.Role == consts.RoleAdvisor || actor.Role == consts.RoleAdmin
}

func toUserBrief(user *model.User) dto.UserBriefDTO {
	var brief dto.UserBriefDTO
	_ = copier.Copy(&brief, user)
	return brief
}

func toImageDTOs(images []model.Image) []dto.ImageDTO {
	res := make([]dto.ImageDTO, 0, len(images))
	_ = copier.Copy(&res, &images)
	return res
}

func toMessageDTO(m *model.Message) *dto.MessageDTO {
	res := &dto.MessageDTO{
		ID:             m.ID,
		ConversationID: m.ConversationID,
		SenderID:       m.SenderID,
		Text:           m.Text,
		CreatedAt:      m.CreatedAt,
		Sender:         toUserBrief(&m.Sender),
		Images:         toImageDTOs(m.Images),
		HasImages:      len(m.Images) > 0,
		MessageType:    "text",
	}
	if res.HasImages {
		res.MessageType = "image"
	}
	return res
}

// enqueue 投递任务，失败只记录日志，不影响已经完成的主流程
func enqueue(ctx context.Context, producer queue.Producer, queueName, jobName string, payload any) {
	ctx = context.WithoutCancel(ctx)
	jobID, err := producer.Enqueue(ctx, queueName, jobName, payload)
	if err != nil {
		log.ErrorContext(ctx, "enqueue job failed", "queue", queueName, "name", jobName, "err", err)
		return
	}
	log.DebugContext(ctx, "job enqueued", "queue", queueName, "name", jobName, "job_id", jobID)
}

func enqueueImageDeletes(ctx context.Context, producer queue.Producer, publicIDs []string) {
	for _, id := range publicIDs {
		enqueue(ctx, producer, consts.QueueDeleteImage, consts.JobDeleteImage, dto.DeleteImageJob{PublicID: id})
	}
}

func formatCursor(t time.Time) *string {
	s := t.UTC().Format(time.RFC3339Nano)
	return &s
}
