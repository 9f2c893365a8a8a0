package worker

import (
	"Admission/internal/pkg/queue"
	"errors"
	"fmt"
)

var ErrUnknownJob = errors.New("unknown job")

// checkJobName 队列内只接受约定的任务名
func checkJobName(job *queue.Job, want string) error {
	if job.Name != want {
		return fmt.Errorf("%w: %s on queue %s", ErrUnknownJob, job.Name, job.Queue)
	}
	return nil
}
