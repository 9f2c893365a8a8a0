package queue

import (
	"Admission/internal/pkg/consts"
	"context"
	"errors"
	"fmt"
	"math"
	"strconv"
	"strings"
	"time"

	"github.com/goccy/go-json"
	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
)

const failedMaxLen = 10000

// Options 重试与投递参数
type Options struct {
	Group       string
	MaxAttempts int
	Backoff     time.Duration
	Visibility  time.Duration
	Block       time.Duration
}

func (o Options) withDefaults() Options {
	if o.Group == "" {
		o.Group = "admission-workers"
	}
	if o.MaxAttempts <= 0 {
		o.MaxAttempts = 3
	}
	if o.Backoff <= 0 {
		o.Backoff = time.Second
	}
	if o.Visibility <= 0 {
		o.Visibility = time.Minute
	}
	if o.Block <= 0 {
		o.Block = 2 * time.Second
	}
	return o
}

// BackoffFor 第 attempt 次失败后的等待时长，指数增长，上限 10 分钟
func (o Options) BackoffFor(attempt int) time.Duration {
	if attempt < 1 {
		attempt = 1
	}
	d := time.Duration(float64(o.Backoff) * math.Pow(2, float64(attempt-1)))
	if d > 10*time.Minute || d <= 0 {
		d = 10 * time.Minute
	}
	return d
}

// RedisBroker 基于 Redis Stream + 消费者组的持久化队列
//
//	queue:{name}          主队列 (Stream)
//	queue:{name}:delayed  等待重试的任务 (ZSET, score 为到期毫秒时间戳)
//	queue:{name}:failed   重试耗尽的任务 (Stream)
type RedisBroker struct {
	rdb  *redis.Client
	opts Options
}

func NewRedisBroker(rdb *redis.Client, opts Options) *RedisBroker {
	return &RedisBroker{rdb: rdb, opts: opts.withDefaults()}
}

func streamKey(queue string) string  { return consts.QueueStreamKey + queue }
func delayedKey(queue string) string { return consts.QueueStreamKey + queue + consts.QueueDelayedKey }
func failedKey(queue string) string  { return consts.QueueStreamKey + queue + consts.QueueFailedKey }

// delayedRecord 延迟集合中的成员，字段均为字符串便于 Lua 直接写回 Stream
type delayedRecord struct {
	ID         string `json:"id"`
	Name       string `json:"name"`
	Payload    string `json:"payload"`
	Attempts   string `json:"attempts"`
	EnqueuedAt string `json:"enqueued_at"`
}

func (s *RedisBroker) Enqueue(ctx context.Context, queue, name string, payload any) (string, error) {
	body, err := json.Marshal(payload)
	if err != nil {
		return "", fmt.Errorf("marshal %s payload: %w", name, err)
	}

	jobID := uuid.NewString()
	err = s.rdb.XAdd(ctx, &redis.XAddArgs{
		Stream: streamKey(queue),
		Values: map[string]any{
			"id":          jobID,
			"name":        name,
			"payload":     string(body),
			"attempts":    "0",
			"enqueued_at": strconv.FormatInt(time.Now().UnixMilli(), 10),
		},
	}).Err()
	if err != nil {
		return "", fmt.Errorf("enqueue %s/%s: %w", queue, name, err)
	}
	return jobID, nil
}

func (s *RedisBroker) EnsureQueue(ctx context.Context, queue string) error {
	err := s.rdb.XGroupCreateMkStream(ctx, streamKey(queue), s.opts.Group, "0").Err()
	if err != nil && !strings.HasPrefix(err.Error(), "BUSYGROUP") {
		return fmt.Errorf("create consumer group for %s: %w", queue, err)
	}
	return nil
}

func (s *RedisBroker) Fetch(ctx context.Context, queue, consumer string, count int) ([]*Job, error) {
	streams, err := s.rdb.XReadGroup(ctx, &redis.XReadGroupArgs{
		Group:    s.opts.Group,
		Consumer: consumer,
		Streams:  []string{streamKey(queue), ">"},
		Count:    int64(count),
		Block:    s.opts.Block,
	}).Result()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return nil, nil
		}
		return nil, err
	}

	var jobs []*Job
	for _, stream := range streams {
		for _, msg := range stream.Messages {
			jobs = append(jobs, parseJob(queue, msg))
		}
	}
	return jobs, nil
}

func (s *RedisBroker) Ack(ctx context.Context, job *Job) error {
	pipe := s.rdb.TxPipeline()
	pipe.XAck(ctx, streamKey(job.Queue), s.opts.Group, job.streamID)
	pipe.XDel(ctx, streamKey(job.Queue), job.streamID)
	_, err := pipe.Exec(ctx)
	return err
}

func (s *RedisBroker) Retry(ctx context.Context, job *Job, cause error) (bool, error) {
	attempts := job.Attempts + 1
	lastError := ""
	if cause != nil {
		lastError = cause.Error()
	}

	pipe := s.rdb.TxPipeline()
	final := attempts >= s.opts.MaxAttempts
	if final {
		pipe.XAdd(ctx, &redis.XAddArgs{
			Stream: failedKey(job.Queue),
			MaxLen: failedMaxLen,
			Approx: true,
			Values: map[string]any{
				"id":         job.ID,
				"name":       job.Name,
				"payload":    string(job.Payload),
				"attempts":   strconv.Itoa(attempts),
				"last_error": lastError,
				"failed_at":  time.Now().Format(time.RFC3339),
			},
		})
	} else {
		member, err := json.Marshal(delayedRecord{
			ID:         job.ID,
			Name:       job.Name,
			Payload:    string(job.Payload),
			Attempts:   strconv.Itoa(attempts),
			EnqueuedAt: strconv.FormatInt(job.EnqueuedAt.UnixMilli(), 10),
		})
		if err != nil {
			return false, err
		}
		due := time.Now().Add(s.opts.BackoffFor(attempts))
		pipe.ZAdd(ctx, delayedKey(job.Queue), redis.Z{Score: float64(due.UnixMilli()), Member: string(member)})
	}
	pipe.XAck(ctx, streamKey(job.Queue), s.opts.Group, job.streamID)
	pipe.XDel(ctx, streamKey(job.Queue), job.streamID)

	if _, err := pipe.Exec(ctx); err != nil {
		return false, fmt.Errorf("reschedule job %s: %w", job.ID, err)
	}
	return final, nil
}

// promoteScript 原子地把到期任务从 ZSET 移回 Stream
var promoteScript = redis.NewScript(`
local due = redis.call('ZRANGEBYSCORE', KEYS[1], '-inf', ARGV[1], 'LIMIT', 0, ARGV[2])
for _, member in ipairs(due) do
  local job = cjson.decode(member)
  redis.call('XADD', KEYS[2], '*', 'id', job.id, 'name', job.name, 'payload', job.payload, 'attempts', job.attempts, 'enqueued_at', job.enqueued_at)
  redis.call('ZREM', KEYS[1], member)
end
return #due
`)

func (s *RedisBroker) PromoteDue(ctx context.Context, queue string) (int, error) {
	n, err := promoteScript.Run(ctx, s.rdb,
		[]string{delayedKey(queue), streamKey(queue)},
		time.Now().UnixMilli(), 100,
	).Int()
	if err != nil && !errors.Is(err, redis.Nil) {
		return 0, err
	}
	return n, nil
}

func (s *RedisBroker) Reclaim(ctx context.Context, queue, consumer string, count int) ([]*Job, error) {
	msgs, _, err := s.rdb.XAutoClaim(ctx, &redis.XAutoClaimArgs{
		Stream:   streamKey(queue),
		Group:    s.opts.Group,
		MinIdle:  s.opts.Visibility,
		Start:    "0-0",
		Count:    int64(count),
		Consumer: consumer,
	}).Result()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return nil, nil
		}
		return nil, err
	}

	jobs := make([]*Job, 0, len(msgs))
	for _, msg := range msgs {
		job := parseJob(queue, msg)
		// 被接管说明上一次投递未完成，按一次失败计
		pending, err := s.rdb.XPendingExt(ctx, &redis.XPendingExtArgs{
			Stream: streamKey(queue),
			Group:  s.opts.Group,
			Start:  msg.ID,
			End:    msg.ID,
			Count:  1,
		}).Result()
		if err == nil && len(pending) == 1 && pending[0].RetryCount > 1 {
			job.Attempts += int(pending[0].RetryCount - 1)
		}
		jobs = append(jobs, job)
	}
	return jobs, nil
}

// Stats 队列积压情况
func (s *RedisBroker) Stats(ctx context.Context, queue string) (length, pending, delayed, failed int64, err error) {
	pipe := s.rdb.Pipeline()
	lenCmd := pipe.XLen(ctx, streamKey(queue))
	delayedCmd := pipe.ZCard(ctx, delayedKey(queue))
	failedCmd := pipe.XLen(ctx, failedKey(queue))
	pendingCmd := pipe.XPending(ctx, streamKey(queue), s.opts.Group)
	_, err = pipe.Exec(ctx)
	if err != nil && !errors.Is(err, redis.Nil) && !strings.HasPrefix(err.Error(), "NOGROUP") {
		return 0, 0, 0, 0, err
	}

	if p, pErr := pendingCmd.Result(); pErr == nil {
		pending = p.Count
	}
	return lenCmd.Val(), pending, delayedCmd.Val(), failedCmd.Val(), nil
}

// FailedJob 失败队列中的记录
type FailedJob struct {
	ID        string
	Name      string
	Payload   string
	Attempts  int
	LastError string
	FailedAt  string
}

// Failed 最近的失败任务，新的在前
func (s *RedisBroker) Failed(ctx context.Context, queue string, limit int64) ([]FailedJob, error) {
	msgs, err := s.rdb.XRevRangeN(ctx, failedKey(queue), "+", "-", limit).Result()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return nil, nil
		}
		return nil, err
	}

	list := make([]FailedJob, 0, len(msgs))
	for _, msg := range msgs {
		attempts, _ := strconv.Atoi(field(msg.Values, "attempts"))
		list = append(list, FailedJob{
			ID:        field(msg.Values, "id"),
			Name:      field(msg.Values, "name"),
			Payload:   field(msg.Values, "payload"),
			Attempts:  attempts,
			LastError: field(msg.Values, "last_error"),
			FailedAt:  field(msg.Values, "failed_at"),
		})
	}
	return list, nil
}

func parseJob(queue string, msg redis.XMessage) *Job {
	attempts, _ := strconv.Atoi(field(msg.Values, "attempts"))
	enqueuedMs, _ := strconv.ParseInt(field(msg.Values, "enqueued_at"), 10, 64)
	id := field(msg.Values, "id")
	if id == "" {
		id = msg.ID
	}
	return &Job{
		ID:         id,
		Queue:      queue,
		Name:       field(msg.Values, "name"),
		Payload:    []byte(field(msg.Values, "payload")),
		Attempts:   attempts,
		EnqueuedAt: time.UnixMilli(enqueuedMs),
		streamID:   msg.ID,
	}
}

func field(values map[string]any, key string) string {
	switch v := values[key].(type) {
	case string:
		return v
	case nil:
		return ""
	default:
		return fmt.Sprint(v)
	}
}
