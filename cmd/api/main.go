package main

import (
	"Admission/internal/api/config"
	"Admission/internal/pkg/logger"
	"Admission/internal/pkg/security"
	"Admission/internal/wire"
	"context"
	"errors"
	"fmt"
	log "log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"golang.org/x/sync/errgroup"
)

func main() {
	// 加载配置
	if err := config.LoadConfig(); err != nil {
		log.Error("Fatal error: failed to load configuration", "err", err)
		panic(err)
	}
	cfg := config.Cfg

	// 初始化日志
	logger.InitLogger("admission-api")
	security.Init(cfg.JWT.Secret, cfg.JWT.ExpirationHours)

	infra, err := wire.InitInfra(cfg)
	if err != nil {
		log.Error("Fatal error: failed to initialize infrastructure", "err", err)
		panic(err)
	}

	// 依赖注入
	app, err := wire.BuildApplication(infra, cfg)
	if err != nil {
		log.Error("Fatal error: failed to create application", "err", err)
		panic(err)
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	g, ctx := errgroup.WithContext(ctx)

	// 定时任务
	g.Go(func() error {
		log.Info("Cron Jobs starting...")
		return app.CronMgr.Run(ctx)
	})

	// 跨进程推送中转
	if app.RunRelay {
		g.Go(func() error {
			return app.Hub.RunRelay(ctx, app.Rdb)
		})
	}

	// 进程内队列消费者
	if app.WorkerMgr != nil {
		g.Go(func() error {
			log.Info("Queue Workers starting...")
			return app.WorkerMgr.Start(ctx)
		})
	}

	// HTTP 服务器
	srv := &http.Server{
		Addr:              fmt.Sprintf(":%d", cfg.Server.Port),
		Handler:           app.Router,
		ReadHeaderTimeout: 10 * time.Second,
	}
	g.Go(func() error {
		log.Info("HTTP Server starting...", "addr", srv.Addr)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	})

	// 优雅退出
	g.Go(func() error {
		quit := make(chan os.Signal, 1)
		signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)

		select {
		case <-ctx.Done():
		case sig := <-quit:
			log.Info("Received signal, shutting down...", "signal", sig)
			cancel()
		}

		// 先断开实时连接，Shutdown 不会等待已劫持的 ws 连接
		app.Hub.Close()
		shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer shutdownCancel()
		if err := srv.Shutdown(shutdownCtx); err != nil {
			log.Error("HTTP Server shutdown failed", "err", err)
		}
		return nil
	})

	if err = g.Wait(); err != nil && !errors.Is(err, context.Canceled) {
		log.Error("App exited with error", "err", err)
	}
	log.Info("App exited successfully.")
}
