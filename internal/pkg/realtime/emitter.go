package realtime

import (
	"Admission/internal/pkg/consts"
	"context"
	"fmt"

	"github.com/goccy/go-json"
	"github.com/redis/go-redis/v9"
)

// Emitter 向指定用户的全部连接推送事件，用户不在线时静默丢弃
type Emitter interface {
	EmitToActor(ctx context.Context, userID uint64, event string, payload any) error
}

// relayEnvelope 跨进程推送的消息格式
type relayEnvelope struct {
	UserID uint64          `json:"actorId"`
	Event  string          `json:"event"`
	Data   json.RawMessage `json:"data"`
}

// RedisEmitter 通过 Redis Pub/Sub 把事件转交给持有连接的网关进程
type RedisEmitter struct {
	rdb     *redis.Client
	channel string
}

func NewRedisEmitter(rdb *redis.Client) *RedisEmitter {
	return &RedisEmitter{rdb: rdb, channel: consts.RealtimeChannel}
}

func (e *RedisEmitter) EmitToActor(ctx context.Context, userID uint64, event string, payload any) error {
	data, err := json.Marshal(payload)
	if err != nil {
		return fmt.Errorf("marshal %s payload: %w", event, err)
	}
	body, err := json.Marshal(relayEnvelope{UserID: userID, Event: event, Data: data})
	if err != nil {
		return err
	}
	return e.rdb.Publish(ctx, e.channel, body).Err()
}
