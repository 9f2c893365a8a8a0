package wire

import (
	"Admission/internal/api/config"
	"Admission/internal/model"
	"Admission/internal/pkg/database"
	"Admission/internal/pkg/mail"
	"Admission/internal/pkg/minio"
	"Admission/internal/pkg/redis"
	"context"
	"fmt"
	"time"
)

// InitInfra 依次建立数据库、Redis、MinIO 与 SMTP 连接
func InitInfra(cfg *config.Config) (*Infra, error) {
	dbCfg := cfg.DB
	db, err := database.NewGormDB(&dbCfg, model.All()...)
	if err != nil {
		return nil, fmt.Errorf("create database connection: %w", err)
	}

	rdb, err := redis.InitRedis(cfg.Redis)
	if err != nil {
		return nil, fmt.Errorf("create redis connection: %w", err)
	}

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	store, err := minio.NewStore(ctx, cfg.MinIO)
	if err != nil {
		return nil, fmt.Errorf("initialize minio: %w", err)
	}

	return &Infra{
		DB:     db,
		Rdb:    rdb,
		Store:  store,
		Mailer: mail.NewSMTPSender(cfg.Mail),
	}, nil
}
