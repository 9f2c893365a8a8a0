package config

// Config 配置主体
type Config struct {
	Server    ServerConfig    `mapstructure:"server"`
	DB        DBConfig        `mapstructure:"database"`
	Redis     RedisConfig     `mapstructure:"redis"`
	MinIO     MinIOConfig     `mapstructure:"minio"`
	Mail      MailConfig      `mapstructure:"mail"`
	JWT       JWTConfig       `mapstructure:"jwt"`
	Queue     QueueConfig     `mapstructure:"queue"`
	Realtime  RealtimeConfig  `mapstructure:"realtime"`
	Logstash  LogstashConfig  `mapstructure:"logstash"`
	Retention RetentionConfig `mapstructure:"retention"`
}

// ServerConfig Server配置
type ServerConfig struct {
	Port int `mapstructure:"port"`
	// EmbedWorkers 为 true 时 API 进程内同时启动队列消费者
	EmbedWorkers bool `mapstructure:"embed_workers"`
	// AllowedOrigins 跨域与 WS 握手允许的来源，为空时不限制
	AllowedOrigins []string `mapstructure:"allowed_origins"`
}

// DBConfig 数据库配置
type DBConfig struct {
	DSN         string `mapstructure:"dsn"`
	MaxIdle     int    `mapstructure:"max_idle"`
	MaxOpen     int    `mapstructure:"max_open"`
	MaxLifetime int    `mapstructure:"max_lifetime"`
	AutoMigrate bool   `mapstructure:"auto_migrate"`
}

type RedisConfig struct {
	Addr     string `mapstructure:"addr"`
	Password string `mapstructure:"password"`
	DB       int    `mapstructure:"db"`
	PoolSize int    `mapstructure:"pool_size"`
}

// MinIOConfig MinIO配置
type MinIOConfig struct {
	Endpoint  string `mapstructure:"endpoint"`
	AccessKey string `mapstructure:"access_key"`
	SecretKey string `mapstructure:"secret_key"`
	Bucket    string `mapstructure:"bucket"`
	UseSSL    bool   `mapstructure:"use_ssl"`
}

// MailConfig SMTP 配置
type MailConfig struct {
	Host        string `mapstructure:"host"`
	Port        int    `mapstructure:"port"`
	Username    string `mapstructure:"username"`
	Password    string `mapstructure:"password"`
	FromName    string `mapstructure:"from_name"`
	FrontendURL string `mapstructure:"frontend_url"`
}

// JWTConfig 令牌配置，与 HTTP 层共用同一签名密钥
type JWTConfig struct {
	Secret          string `mapstructure:"secret"`
	ExpirationHours int    `mapstructure:"expiration_hours"`
	CookieName      string `mapstructure:"cookie_name"`
	CookieSecure    bool   `mapstructure:"cookie_secure"`
}

// QueueConfig 任务队列配置
type QueueConfig struct {
	ConsumerGroup     string `mapstructure:"consumer_group"`
	Concurrency       int    `mapstructure:"concurrency"`
	MaxAttempts       int    `mapstructure:"max_attempts"`
	BackoffMillis     int    `mapstructure:"backoff_millis"`
	VisibilitySeconds int    `mapstructure:"visibility_seconds"`
	BlockMillis       int    `mapstructure:"block_millis"`
}

// RealtimeConfig 实时推送配置
type RealtimeConfig struct {
	// Relay local: 进程内直接推送; redis: 通过 Redis Pub/Sub 中转，支持多实例与独立 worker 进程
	Relay         string `mapstructure:"relay"`
	SendBuffer    int    `mapstructure:"send_buffer"`
	PingPeriodSec int    `mapstructure:"ping_period_sec"`
}

type LogstashConfig struct {
	Address string `mapstructure:"address"`
	Index   string `mapstructure:"index"`
	Token   string `mapstructure:"token"`
}

// RetentionConfig 数据保留策略
type RetentionConfig struct {
	NotificationDays int    `mapstructure:"notification_days"`
	CleanupSpec      string `mapstructure:"cleanup_spec"`
}
