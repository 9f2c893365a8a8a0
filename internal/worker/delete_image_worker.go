package worker

import (
	"Admission/internal/api/dto"
	"Admission/internal/pkg/consts"
	"Admission/internal/pkg/queue"
	"context"
	"fmt"
	log "log/slog"
)

// ObjectStore 按 publicId 删除对象，对象不存在视为成功
type ObjectStore interface {
	Delete(ctx context.Context, publicID string) error
}

type DeleteImageWorker struct {
	store ObjectStore
}

func NewDeleteImageWorker(store ObjectStore) *DeleteImageWorker {
	return &DeleteImageWorker{store: store}
}

func (w *DeleteImageWorker) Handle(ctx context.Context, job *queue.Job) error {
	if err := checkJobName(job, consts.JobDeleteImage); err != nil {
		return err
	}

	var payload dto.DeleteImageJob
	if err := job.Decode(&payload); err != nil {
		return err
	}

	if payload.PublicID == "" {
		log.WarnContext(ctx, "deleteImage job without publicId, skipped")
		return nil
	}

	if err := w.store.Delete(ctx, payload.PublicID); err != nil {
		log.ErrorContext(ctx, "Failed to delete image", "public_id", payload.PublicID, "attempt", job.Attempts+1, "err", err)
		return fmt.Errorf("delete image %s: %w", payload.PublicID, err)
	}
	log.InfoContext(ctx, "image deleted", "public_id", payload.PublicID)
	return nil
}
