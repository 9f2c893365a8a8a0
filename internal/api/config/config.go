package config

import (
	"errors"
	"fmt"

	"github.com/spf13/viper"
)

// Cfg 全局可访问的配置实例
var Cfg *Config

// LoadConfig 从文件加载配置并填充到 Cfg
func LoadConfig() error {
	viper.SetConfigName("config")
	viper.SetConfigType("yaml")
	viper.AddConfigPath("./configs")
	viper.AddConfigPath("../../configs")
	setDefaults()

	if err := viper.ReadInConfig(); err != nil {
		var configFileNotFoundError viper.ConfigFileNotFoundError
		if !errors.As(err, &configFileNotFoundError) {
			return fmt.Errorf("failed to read config: %w", err)
		}
	}

	var cfg Config
	if err := viper.Unmarshal(&cfg); err != nil {
		return fmt.Errorf("failed to unmarshal config: %w", err)
	}

	Cfg = &cfg

	return nil
}

func setDefaults() {
	viper.SetDefault("server.port", 8080)
	viper.SetDefault("server.embed_workers", true)
	viper.SetDefault("database.max_idle", 10)
	viper.SetDefault("database.max_open", 50)
	viper.SetDefault("database.max_lifetime", 30)
	viper.SetDefault("redis.addr", "localhost:6379")
	viper.SetDefault("redis.pool_size", 20)
	viper.SetDefault("jwt.expiration_hours", 24)
	viper.SetDefault("jwt.cookie_name", "accessToken")
	viper.SetDefault("queue.consumer_group", "admission-workers")
	viper.SetDefault("queue.concurrency", 5)
	viper.SetDefault("queue.max_attempts", 3)
	viper.SetDefault("queue.backoff_millis", 1000)
	viper.SetDefault("queue.visibility_seconds", 60)
	viper.SetDefault("queue.block_millis", 2000)
	viper.SetDefault("realtime.relay", "local")
	viper.SetDefault("realtime.send_buffer", 256)
	viper.SetDefault("realtime.ping_period_sec", 50)
	viper.SetDefault("retention.notification_days", 30)
	viper.SetDefault("retention.cleanup_spec", "0 0 3 * * *")
}
