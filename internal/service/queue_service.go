package service

import (
	"Admission/internal/api/dto"
	"Admission/internal/pkg/consts"
	"Admission/internal/pkg/queue"
	"context"
)

// QueueInspector 队列运维查询
type QueueInspector interface {
	Stats(ctx context.Context, queue string) (length, pending, delayed, failed int64, err error)
	Failed(ctx context.Context, queue string, limit int64) ([]queue.FailedJob, error)
}

type QueueService interface {
	Stats(ctx context.Context, name string) (*dto.QueueStatsDTO, error)
	Failed(ctx context.Context, name string, limit int64) ([]*dto.FailedJobDTO, error)
}

type queueServiceImpl struct {
	inspector QueueInspector
}

func NewQueueService(inspector QueueInspector) QueueService {
	return &queueServiceImpl{inspector: inspector}
}

func knownQueue(name string) bool {
	switch name {
	case consts.QueueNotifications, consts.QueueEmail, consts.QueueDeleteImage:
		return true
	}
	return false
}

func (s *queueServiceImpl) Stats(ctx context.Context, name string) (*dto.QueueStatsDTO, error) {
	if !knownQueue(name) {
		return nil, ErrQueueUnknown
	}
	length, pending, delayed, failed, err := s.inspector.Stats(ctx, name)
	if err != nil {
		return nil, err
	}
	return &dto.QueueStatsDTO{Queue: name, Length: length, Pending: pending, Delayed: delayed, Failed: failed}, nil
}

func (s *queueServiceImpl) Failed(ctx context.Context, name string, limit int64) ([]*dto.FailedJobDTO, error) {
	if !knownQueue(name) {
		return nil, ErrQueueUnknown
	}
	if limit < 1 || limit > maxPageSize {
		limit = defaultPageSize
	}
	jobs, err := s.inspector.Failed(ctx, name, limit)
	if err != nil {
		return nil, err
	}
	res := make([]*dto.FailedJobDTO, 0, len(jobs))
	for _, j := range jobs {
		res = append(res, &dto.FailedJobDTO{
			ID:        j.ID,
			Name:      j.Name,
			Payload:   j.Payload,
			Attempts:  j.Attempts,
			LastError: j.LastError,
			FailedAt:  j.FailedAt,
		})
	}
	return res, nil
}
