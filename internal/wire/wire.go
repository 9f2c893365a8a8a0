package wire

import (
	"Admission/internal/api"
	"Admission/internal/api/config"
	"Admission/internal/api/handler"
	"Admission/internal/api/middleware"
	"Admission/internal/job"
	"Admission/internal/pkg/consts"
	"Admission/internal/pkg/cron"
	"Admission/internal/pkg/mail"
	"Admission/internal/pkg/minio"
	"Admission/internal/pkg/queue"
	"Admission/internal/pkg/realtime"
	"Admission/internal/repository"
	"Admission/internal/service"
	"Admission/internal/worker"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"
	"gorm.io/gorm"
)

const relayRedis = "redis"

// Infra 进程启动时建立的外部连接
type Infra struct {
	DB     *gorm.DB
	Rdb    *redis.Client
	Store  *minio.Store
	Mailer *mail.SMTPSender
}

// ApplicationContainer 封装了应用运行所需的所有顶级组件
type ApplicationContainer struct {
	Router    *gin.Engine
	Hub       *realtime.Hub
	Rdb       *redis.Client
	// RunRelay 为 true 时需订阅 Redis 推送通道
	RunRelay  bool
	WorkerMgr *queue.Manager
	CronMgr   *cron.Manager
}

// NewBroker 队列生产与消费共用同一组参数
func NewBroker(rdb *redis.Client, cfg config.QueueConfig) *queue.RedisBroker {
	return queue.NewRedisBroker(rdb, queue.Options{
		Group:       cfg.ConsumerGroup,
		MaxAttempts: cfg.MaxAttempts,
		Backoff:     time.Duration(cfg.BackoffMillis) * time.Millisecond,
		Visibility:  time.Duration(cfg.VisibilitySeconds) * time.Second,
		Block:       time.Duration(cfg.BlockMillis) * time.Millisecond,
	})
}

func BuildApplication(infra *Infra, cfg *config.Config) (*ApplicationContainer, error) {
	hub := realtime.NewHub(realtime.NewPresence())

	// local 模式直接推送到本进程连接；redis 模式经 Pub/Sub 中转，由 RunRelay 投递
	var emitter realtime.Emitter = hub
	useRelay := cfg.Realtime.Relay == relayRedis
	if useRelay {
		emitter = realtime.NewRedisEmitter(infra.Rdb)
	}

	broker := NewBroker(infra.Rdb, cfg.Queue)

	userRepo := repository.NewUserRepo(infra.DB)
	convRepo := repository.NewConversationRepo(infra.DB)
	messageRepo := repository.NewMessageRepo(infra.DB)
	notificationRepo := repository.NewNotificationRepo(infra.DB)
	postRepo := repository.NewPostRepo(infra.DB)
	imageRepo := repository.NewImageRepo(infra.DB)
	consultationRepo := repository.NewConsultationRepo(infra.DB)

	authService := service.NewAuthService(userRepo)
	imService := service.NewIMService(userRepo, convRepo, messageRepo, emitter)
	convService := service.NewConversationService(convRepo, emitter, broker)
	notificationService := service.NewNotificationService(notificationRepo)
	postActionService := service.NewPostActionService(postRepo, broker)
	consultationService := service.NewConsultationService(consultationRepo, userRepo, broker)
	mediaService := service.NewMediaService(infra.Store, imageRepo, broker)
	queueService := service.NewQueueService(broker)

	handlers := &api.HandlersGroup{
		AuthHandler:         handler.NewAuthHandler(authService, cfg.JWT.CookieName, cfg.JWT.CookieSecure),
		WsHandler:           handler.NewWsHandler(hub, cfg.Realtime, cfg.JWT.CookieName, cfg.Server.AllowedOrigins, middleware.IsTokenRevoked),
		IMHandler:           handler.NewIMHandler(imService),
		ConversationHandler: handler.NewConversationHandler(convService),
		NotificationHandler: handler.NewNotificationHandler(notificationService),
		PostActionHandler:   handler.NewPostActionHandler(postActionService),
		ConsultationHandler: handler.NewConsultationHandler(consultationService),
		MediaHandler:        handler.NewMediaHandler(mediaService),
		QueueHandler:        handler.NewQueueHandler(queueService),
	}
	router := api.SetupRouter(handlers, cfg.Server.AllowedOrigins)

	cronMgr := cron.NewCronManager(
		cfg.Retention.CleanupSpec,
		job.NewNotificationCleanJob(notificationService, cfg.Retention.NotificationDays),
		job.NewMediaCleanupJob(mediaService),
	)

	app := &ApplicationContainer{
		Router:   router,
		Hub:      hub,
		Rdb:      infra.Rdb,
		// 独立 worker 进程的推送也经 Redis 中转
		RunRelay: useRelay || !cfg.Server.EmbedWorkers,
		CronMgr:  cronMgr,
	}
	if cfg.Server.EmbedWorkers {
		app.WorkerMgr = BuildWorkers(infra, cfg, emitter)
	}
	return app, nil
}

// BuildWorkers 三个队列各一个消费者，处理函数只依赖注入的仓储与推送接口
func BuildWorkers(infra *Infra, cfg *config.Config, emitter realtime.Emitter) *queue.Manager {
	broker := NewBroker(infra.Rdb, cfg.Queue)
	opts := []queue.WorkerOption{queue.WithConcurrency(cfg.Queue.Concurrency)}

	notificationWorker := worker.NewNotificationWorker(repository.NewNotificationRepo(infra.DB), emitter)
	emailWorker := worker.NewEmailWorker(infra.Mailer, cfg.Mail.FrontendURL)
	deleteImageWorker := worker.NewDeleteImageWorker(infra.Store)

	return queue.NewManager(
		queue.NewWorker(broker, consts.QueueNotifications, notificationWorker.Handle, opts...),
		queue.NewWorker(broker, consts.QueueEmail, emailWorker.Handle, opts...),
		queue.NewWorker(broker, consts.QueueDeleteImage, deleteImageWorker.Handle, opts...),
	)
}
