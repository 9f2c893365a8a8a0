package queue

import (
	"context"
	"fmt"
	"time"

	"github.com/goccy/go-json"
)

// Job 队列中的一个任务，Attempts 为本次投递之前已失败的次数
type Job struct {
	ID         string
	Queue      string
	Name       string
	Payload    []byte
	Attempts   int
	EnqueuedAt time.Time

	// streamID Redis Stream 中的条目 ID，确认与重试时使用
	streamID string
}

// Decode 解析任务载荷
func (j *Job) Decode(v any) error {
	if err := json.Unmarshal(j.Payload, v); err != nil {
		return fmt.Errorf("decode job %s payload: %w", j.ID, err)
	}
	return nil
}

// Producer 任务投递，返回任务 ID；投递成功只保证任务最终至少被执行一次
type Producer interface {
	Enqueue(ctx context.Context, queue, name string, payload any) (string, error)
}

// Broker 消费端需要的队列能力
type Broker interface {
	EnsureQueue(ctx context.Context, queue string) error
	Fetch(ctx context.Context, queue, consumer string, count int) ([]*Job, error)
	Ack(ctx context.Context, job *Job) error
	// Retry 任务失败，按退避策略重新排队；重试次数耗尽时转入失败队列并返回 final=true
	Retry(ctx context.Context, job *Job, cause error) (final bool, err error)
	// PromoteDue 把到期的延迟任务放回主队列
	PromoteDue(ctx context.Context, queue string) (int, error)
	// Reclaim 接管超过可见超时仍未确认的任务，用于处理消费者崩溃
	Reclaim(ctx context.Context, queue, consumer string, count int) ([]*Job, error)
}
