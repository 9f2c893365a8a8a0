package main

import (
	"Admission/internal/api/config"
	"Admission/internal/pkg/logger"
	"Admission/internal/pkg/realtime"
	"Admission/internal/wire"
	"context"
	"errors"
	log "log/slog"
	"os/signal"
	"syscall"
)

// 独立的队列消费进程，实时推送经 Redis 中转到 API 进程
func main() {
	if err := config.LoadConfig(); err != nil {
		log.Error("Fatal error: failed to load configuration", "err", err)
		panic(err)
	}
	cfg := config.Cfg

	logger.InitLogger("admission-worker")

	infra, err := wire.InitInfra(cfg)
	if err != nil {
		log.Error("Fatal error: failed to initialize infrastructure", "err", err)
		panic(err)
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	mgr := wire.BuildWorkers(infra, cfg, realtime.NewRedisEmitter(infra.Rdb))
	log.Info("Queue Workers starting...")
	if err = mgr.Start(ctx); err != nil && !errors.Is(err, context.Canceled) {
		log.Error("Worker exited with error", "err", err)
	}
	log.Info("Worker exited successfully.")
}
