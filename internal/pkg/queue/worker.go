package queue

import (
	"Admission/internal/pkg/logger"
	"context"
	"fmt"
	log "log/slog"
	"os"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
)

// Handler 处理单个任务，返回错误即触发重试
type Handler func(ctx context.Context, job *Job) error

// Worker 单个队列的消费循环，最多 concurrency 个任务同时执行
type Worker struct {
	broker      Broker
	queue       string
	handler     Handler
	concurrency int
	consumer    string

	maintainEvery time.Duration
	errorBackoff  time.Duration
}

type WorkerOption func(*Worker)

// WithConcurrency 并发上限
func WithConcurrency(n int) WorkerOption {
	return func(w *Worker) {
		if n > 0 {
			w.concurrency = n
		}
	}
}

// WithConsumerName 消费者名，默认 hostname + 随机后缀
func WithConsumerName(name string) WorkerOption {
	return func(w *Worker) {
		if name != "" {
			w.consumer = name
		}
	}
}

// WithMaintainInterval 延迟任务回放与超时接管的检查间隔
func WithMaintainInterval(d time.Duration) WorkerOption {
	return func(w *Worker) {
		if d > 0 {
			w.maintainEvery = d
		}
	}
}

func NewWorker(broker Broker, queue string, handler Handler, opts ...WorkerOption) *Worker {
	host, _ := os.Hostname()
	w := &Worker{
		broker:        broker,
		queue:         queue,
		handler:       handler,
		concurrency:   5,
		consumer:      fmt.Sprintf("%s-%s-%s", queue, host, uuid.NewString()[:8]),
		maintainEvery: time.Second,
		errorBackoff:  100 * time.Millisecond,
	}
	for _, opt := range opts {
		opt(w)
	}
	return w
}

func (w *Worker) Queue() string {
	return w.queue
}

// Run 阻塞消费直到 ctx 取消，返回前等待在途任务完成
func (w *Worker) Run(ctx context.Context) error {
	if err := w.broker.EnsureQueue(ctx, w.queue); err != nil {
		return err
	}
	log.Info("queue worker started", "queue", w.queue, "consumer", w.consumer, "concurrency", w.concurrency)

	// 在途任务不随 ctx 取消中断，保证已领取的任务有机会完成并确认
	jobCtx := context.WithoutCancel(ctx)
	slots := make(chan struct{}, w.concurrency)
	var wg sync.WaitGroup
	defer func() {
		wg.Wait()
		log.Info("queue worker stopped", "queue", w.queue, "consumer", w.consumer)
	}()

	retryInterval := w.errorBackoff
	var lastMaintain time.Time

	for {
		// 至少等到一个空闲槽位
		select {
		case <-ctx.Done():
			return nil
		case slots <- struct{}{}:
		}
		free := 1
	acquire:
		for free < w.concurrency {
			select {
			case slots <- struct{}{}:
				free++
			default:
				break acquire
			}
		}

		var jobs []*Job
		var err error
		if time.Since(lastMaintain) >= w.maintainEvery {
			lastMaintain = time.Now()
			jobs, err = w.maintain(ctx, free)
		}
		if err == nil && len(jobs) == 0 {
			jobs, err = w.broker.Fetch(ctx, w.queue, w.consumer, free)
		}

		// 归还多领取的槽位
		for i := len(jobs); i < free; i++ {
			<-slots
		}

		if err != nil {
			if ctx.Err() != nil {
				return nil
			}
			log.Error("queue fetch failed", "queue", w.queue, "err", err)
			if strings.Contains(err.Error(), "NOGROUP") {
				_ = w.broker.EnsureQueue(ctx, w.queue)
			}
			select {
			case <-ctx.Done():
				return nil
			case <-time.After(retryInterval):
			}
			retryInterval *= 2
			if retryInterval > 5*time.Second {
				retryInterval = 5 * time.Second
			}
			continue
		}
		retryInterval = w.errorBackoff

		for _, job := range jobs {
			wg.Add(1)
			go func(job *Job) {
				defer func() {
					<-slots
					wg.Done()
				}()
				w.process(jobCtx, job)
			}(job)
		}
	}
}

func (w *Worker) maintain(ctx context.Context, count int) ([]*Job, error) {
	if n, err := w.broker.PromoteDue(ctx, w.queue); err != nil {
		log.Warn("promote delayed jobs failed", "queue", w.queue, "err", err)
	} else if n > 0 {
		log.Info("delayed jobs promoted", "queue", w.queue, "count", n)
	}

	jobs, err := w.broker.Reclaim(ctx, w.queue, w.consumer, count)
	if err != nil {
		log.Warn("reclaim idle jobs failed", "queue", w.queue, "err", err)
		return nil, nil
	}
	if len(jobs) > 0 {
		log.Warn("reclaimed idle jobs", "queue", w.queue, "count", len(jobs))
	}
	return jobs, nil
}

func (w *Worker) process(ctx context.Context, job *Job) {
	ctx = logger.WithJobID(ctx, job.ID)
	start := time.Now()

	err := w.safeHandle(ctx, job)
	if err == nil {
		if ackErr := w.broker.Ack(ctx, job); ackErr != nil {
			log.ErrorContext(ctx, "job ack failed", "queue", w.queue, "name", job.Name, "err", ackErr)
		}
		log.InfoContext(ctx, "job completed", "queue", w.queue, "name", job.Name, "latency", time.Since(start))
		return
	}

	final, retryErr := w.broker.Retry(ctx, job, err)
	if retryErr != nil {
		// 未确认的任务会在可见超时后被重新接管
		log.ErrorContext(ctx, "job reschedule failed", "queue", w.queue, "name", job.Name, "err", retryErr)
		return
	}
	if final {
		log.ErrorContext(ctx, "job failed permanently", "queue", w.queue, "name", job.Name, "attempts", job.Attempts+1, "err", err)
		return
	}
	log.WarnContext(ctx, "job failed, scheduled for retry", "queue", w.queue, "name", job.Name, "attempts", job.Attempts+1, "err", err)
}

func (w *Worker) safeHandle(ctx context.Context, job *Job) (err error) {
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("job %s panic: %v", job.ID, r)
		}
	}()
	return w.handler(ctx, job)
}
