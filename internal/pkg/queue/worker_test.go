package queue

import (
	"context"
	"errors"
	"strconv"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// memoryBroker 内存实现，语义与 RedisBroker 一致：失败立即重排，不等待退避
type memoryBroker struct {
	mu          sync.Mutex
	maxAttempts int
	ready       []*Job
	inflight    map[string]*Job
	acked       []*Job
	failed      []*Job
	seq         int
}

func newMemoryBroker(maxAttempts int) *memoryBroker {
	return &memoryBroker{maxAttempts: maxAttempts, inflight: make(map[string]*Job)}
}

func (b *memoryBroker) push(queue, name string, payload string) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.seq++
	id := strconv.Itoa(b.seq)
	b.ready = append(b.ready, &Job{ID: id, Queue: queue, Name: name, Payload: []byte(payload), streamID: id})
}

func (b *memoryBroker) EnsureQueue(context.Context, string) error { return nil }

func (b *memoryBroker) Fetch(ctx context.Context, _ string, _ string, count int) ([]*Job, error) {
	b.mu.Lock()
	if len(b.ready) == 0 {
		b.mu.Unlock()
		select {
		case <-ctx.Done():
			return nil, ctx.Err()
		case <-time.After(2 * time.Millisecond):
			return nil, nil
		}
	}
	defer b.mu.Unlock()
	if count > len(b.ready) {
		count = len(b.ready)
	}
	jobs := b.ready[:count]
	b.ready = append([]*Job(nil), b.ready[count:]...)
	for _, j := range jobs {
		b.inflight[j.streamID] = j
	}
	return jobs, nil
}

func (b *memoryBroker) Ack(_ context.Context, job *Job) error {
	b.mu.Lock()
	defer b.mu.Unlock()
	delete(b.inflight, job.streamID)
	b.acked = append(b.acked, job)
	return nil
}

func (b *memoryBroker) Retry(_ context.Context, job *Job, _ error) (bool, error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	delete(b.inflight, job.streamID)
	next := *job
	next.Attempts++
	if next.Attempts >= b.maxAttempts {
		b.failed = append(b.failed, &next)
		return true, nil
	}
	b.seq++
	next.streamID = strconv.Itoa(b.seq)
	b.ready = append(b.ready, &next)
	return false, nil
}

func (b *memoryBroker) PromoteDue(context.Context, string) (int, error) { return 0, nil }

func (b *memoryBroker) Reclaim(context.Context, string, string, int) ([]*Job, error) {
	return nil, nil
}

func (b *memoryBroker) counts() (ready, inflight, acked, failed int) {
	b.mu.Lock()
	defer b.mu.Unlock()
	return len(b.ready), len(b.inflight), len(b.acked), len(b.failed)
}

func runWorker(t *testing.T, w *Worker) (stop func()) {
	t.Helper()
	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- w.Run(ctx) }()
	return func() {
		cancel()
		select {
		case err := <-done:
			require.NoError(t, err)
		case <-time.After(5 * time.Second):
			t.Fatal("worker did not stop")
		}
	}
}

func TestWorkerAcksSuccessfulJobs(t *testing.T) {
	broker := newMemoryBroker(3)
	for i := 0; i < 20; i++ {
		broker.push("notifications", "sendNotification", `{}`)
	}

	var handled atomic.Int32
	w := NewWorker(broker, "notifications", func(ctx context.Context, job *Job) error {
		handled.Add(1)
		return nil
	})
	stop := runWorker(t, w)

	require.Eventually(t, func() bool {
		_, _, acked, _ := broker.counts()
		return acked == 20
	}, 3*time.Second, 5*time.Millisecond)
	stop()

	assert.Equal(t, int32(20), handled.Load())
}

func TestWorkerNeverExceedsConcurrency(t *testing.T) {
	broker := newMemoryBroker(3)
	for i := 0; i < 30; i++ {
		broker.push("email", "sendConsultationEmails", `{}`)
	}

	var running, peak atomic.Int32
	w := NewWorker(broker, "email", func(ctx context.Context, job *Job) error {
		n := running.Add(1)
		for {
			p := peak.Load()
			if n <= p || peak.CompareAndSwap(p, n) {
				break
			}
		}
		time.Sleep(10 * time.Millisecond)
		running.Add(-1)
		return nil
	}, WithConcurrency(5))
	stop := runWorker(t, w)

	require.Eventually(t, func() bool {
		_, _, acked, _ := broker.counts()
		return acked == 30
	}, 5*time.Second, 5*time.Millisecond)
	stop()

	assert.LessOrEqual(t, peak.Load(), int32(5))
	assert.Greater(t, peak.Load(), int32(1))
}

func TestWorkerRetriesThenSucceeds(t *testing.T) {
	broker := newMemoryBroker(3)
	broker.push("deleteImage", "deleteImage", `{"publicId":"a"}`)

	var calls atomic.Int32
	w := NewWorker(broker, "deleteImage", func(ctx context.Context, job *Job) error {
		if calls.Add(1) == 1 {
			return errors.New("object store unavailable")
		}
		return nil
	})
	stop := runWorker(t, w)

	require.Eventually(t, func() bool {
		_, _, acked, _ := broker.counts()
		return acked == 1
	}, 3*time.Second, 5*time.Millisecond)
	stop()

	_, inflight, _, failed := broker.counts()
	assert.Equal(t, int32(2), calls.Load())
	assert.Zero(t, inflight)
	assert.Zero(t, failed)
}

func TestWorkerSurfacesExhaustedJobs(t *testing.T) {
	broker := newMemoryBroker(3)
	broker.push("email", "sendConsultationEmails", `{}`)

	var calls atomic.Int32
	w := NewWorker(broker, "email", func(ctx context.Context, job *Job) error {
		calls.Add(1)
		return errors.New("smtp down")
	})
	stop := runWorker(t, w)

	require.Eventually(t, func() bool {
		_, _, _, failed := broker.counts()
		return failed == 1
	}, 3*time.Second, 5*time.Millisecond)
	stop()

	ready, inflight, acked, _ := broker.counts()
	assert.Equal(t, int32(3), calls.Load())
	assert.Zero(t, ready)
	assert.Zero(t, inflight)
	assert.Zero(t, acked)
}

func TestWorkerTreatsPanicAsFailure(t *testing.T) {
	broker := newMemoryBroker(1)
	broker.push("notifications", "sendNotification", `{}`)

	w := NewWorker(broker, "notifications", func(ctx context.Context, job *Job) error {
		panic("boom")
	})
	stop := runWorker(t, w)

	require.Eventually(t, func() bool {
		_, _, _, failed := broker.counts()
		return failed == 1
	}, 3*time.Second, 5*time.Millisecond)
	stop()
}

func TestWorkerWaitsForInflightJobsOnStop(t *testing.T) {
	broker := newMemoryBroker(3)
	broker.push("email", "sendConsultationEmails", `{}`)

	started := make(chan struct{})
	release := make(chan struct{})
	w := NewWorker(broker, "email", func(ctx context.Context, job *Job) error {
		close(started)
		<-release
		return nil
	})

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- w.Run(ctx) }()

	<-started
	cancel()
	select {
	case <-done:
		t.Fatal("worker returned before in-flight job finished")
	case <-time.After(50 * time.Millisecond):
	}

	close(release)
	require.NoError(t, <-done)
	_, _, acked, _ := broker.counts()
	assert.Equal(t, 1, acked)
}

func TestJobDecode(t *testing.T) {
	job := &Job{ID: "1", Payload: []byte(`{"publicId":"img/1.png"}`)}
	var payload struct {
		PublicID string `json:"publicId"`
	}
	require.NoError(t, job.Decode(&payload))
	assert.Equal(t, "img/1.png", payload.PublicID)

	bad := &Job{ID: "2", Payload: []byte(`{`)}
	assert.Error(t, bad.Decode(&payload))
}

func TestBackoffGrowsExponentially(t *testing.T) {
	opts := Options{Backoff: time.Second}.withDefaults()

	assert.Equal(t, time.Second, opts.BackoffFor(1))
	assert.Equal(t, 2*time.Second, opts.BackoffFor(2))
	assert.Equal(t, 4*time.Second, opts.BackoffFor(3))
	assert.Equal(t, 10*time.Minute, opts.BackoffFor(40))
}
