package queue

import (
	"context"
	log "log/slog"

	"golang.org/x/sync/errgroup"
)

// Manager 管理所有队列消费者
type Manager struct {
	workers []*Worker
}

func NewManager(workers ...*Worker) *Manager {
	return &Manager{workers: workers}
}

// Start 启动全部消费者，阻塞到 ctx 取消且所有在途任务结束
func (m *Manager) Start(ctx context.Context) error {
	g, ctx := errgroup.WithContext(ctx)
	for _, w := range m.workers {
		w := w
		g.Go(func() error {
			return w.Run(ctx)
		})
	}

	err := g.Wait()
	log.Info("Queue Manager shutting down...")
	return err
}
