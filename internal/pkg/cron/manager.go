package cron

import (
	"Admission/internal/job"
	"context"
	log "log/slog"

	"github.com/robfig/cron/v3"
)

const mediaCleanSpec = "0 30 * * * *"

type Manager struct {
	engine               *cron.Cron
	notificationSpec     string
	notificationCleanJob *job.NotificationCleanJob
	mediaCleanupJob      *job.MediaCleanupJob
}

func NewCronManager(notificationSpec string, notificationCleanJob *job.NotificationCleanJob, mediaCleanupJob *job.MediaCleanupJob) *Manager {
	if notificationSpec == "" {
		notificationSpec = "@daily"
	}
	return &Manager{
		engine:               cron.New(cron.WithSeconds()),
		notificationSpec:     notificationSpec,
		notificationCleanJob: notificationCleanJob,
		mediaCleanupJob:      mediaCleanupJob,
	}
}

// RegisterJobs 注册定时任务
func (s *Manager) RegisterJobs() error {
	if _, err := s.engine.AddJob(s.notificationSpec, s.notificationCleanJob); err != nil {
		return err
	}
	if _, err := s.engine.AddJob(mediaCleanSpec, s.mediaCleanupJob); err != nil {
		return err
	}
	return nil
}

// Run 注册并启动定时任务，ctx 结束后停止
func (s *Manager) Run(ctx context.Context) error {
	if err := s.RegisterJobs(); err != nil {
		return err
	}
	s.Start()
	<-ctx.Done()
	s.Stop()
	return nil
}

func (s *Manager) Start() {
	log.Info("Cron 定时任务引擎启动")
	s.engine.Start()
}

// Stop 停止调度并等待正在执行的任务结束
func (s *Manager) Stop() {
	log.Info("Cron 定时任务引擎停止")
	<-s.engine.Stop().Done()
}
