package realtime

import (
	"Admission/internal/pkg/consts"
	"context"
	"fmt"
	log "log/slog"
	"sync"

	"github.com/goccy/go-json"
	"github.com/redis/go-redis/v9"
)

// Frame 下发给客户端的文本帧
type Frame struct {
	Event string `json:"event"`
	Data  any    `json:"data"`
}

// Hub 网关：每个用户一个房间，房间内是该用户的所有连接
type Hub struct {
	presence *Presence

	mu    sync.Mutex
	rooms map[uint64]map[*Client]struct{}
}

func NewHub(presence *Presence) *Hub {
	return &Hub{
		presence: presence,
		rooms:    make(map[uint64]map[*Client]struct{}),
	}
}

func (h *Hub) Presence() *Presence {
	return h.presence
}

// Register 加入用户房间、登记在线状态，并向所有连接广播在线列表
func (h *Hub) Register(c *Client) {
	h.mu.Lock()
	defer h.mu.Unlock()

	room, ok := h.rooms[c.Profile.UserID]
	if !ok {
		room = make(map[*Client]struct{})
		h.rooms[c.Profile.UserID] = room
	}
	room[c] = struct{}{}
	h.presence.Register(c.Profile, c.ID)

	h.broadcastLocked(consts.EventOnlineUsers, h.presence.Snapshot())
}

// Unregister 离开房间并广播在线列表，重复调用无副作用
func (h *Hub) Unregister(c *Client) {
	h.mu.Lock()
	defer h.mu.Unlock()

	room, ok := h.rooms[c.Profile.UserID]
	if !ok {
		return
	}
	if _, ok = room[c]; !ok {
		return
	}
	delete(room, c)
	if len(room) == 0 {
		delete(h.rooms, c.Profile.UserID)
	}
	c.close()
	h.presence.Unregister(c.Profile.UserID, c.ID)

	h.broadcastLocked(consts.EventOnlineUsers, h.presence.Snapshot())
}

// EmitToActor 推送到用户的全部连接
func (h *Hub) EmitToActor(ctx context.Context, userID uint64, event string, payload any) error {
	data, err := json.Marshal(Frame{Event: event, Data: payload})
	if err != nil {
		return fmt.Errorf("marshal %s frame: %w", event, err)
	}

	h.mu.Lock()
	defer h.mu.Unlock()
	for c := range h.rooms[userID] {
		if !c.enqueue(data) {
			log.WarnContext(ctx, "ws send buffer full, dropping client", "userID", userID, "clientID", c.ID)
		}
	}
	return nil
}

// Broadcast 推送到全部连接
func (h *Hub) Broadcast(event string, payload any) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.broadcastLocked(event, payload)
}

func (h *Hub) broadcastLocked(event string, payload any) {
	data, err := json.Marshal(Frame{Event: event, Data: payload})
	if err != nil {
		log.Error("marshal broadcast frame failed", "event", event, "err", err)
		return
	}
	for _, room := range h.rooms {
		for c := range room {
			c.enqueue(data)
		}
	}
}

// Close 断开全部连接
func (h *Hub) Close() {
	h.mu.Lock()
	defer h.mu.Unlock()
	for _, room := range h.rooms {
		for c := range room {
			c.close()
		}
	}
}

// RunRelay 订阅 Redis 推送通道，把其他进程发出的事件投递到本地连接
func (h *Hub) RunRelay(ctx context.Context, rdb *redis.Client) error {
	sub := rdb.Subscribe(ctx, consts.RealtimeChannel)
	defer func() {
		_ = sub.Close()
	}()

	if _, err := sub.Receive(ctx); err != nil {
		return fmt.Errorf("subscribe %s: %w", consts.RealtimeChannel, err)
	}
	log.Info("realtime relay subscribed", "channel", consts.RealtimeChannel)

	ch := sub.Channel()
	for {
		select {
		case <-ctx.Done():
			return nil
		case msg, ok := <-ch:
			if !ok {
				return nil
			}
			if err := h.deliverRelayed(ctx, msg.Payload); err != nil {
				log.WarnContext(ctx, "invalid relay message", "err", err)
			}
		}
	}
}

func (h *Hub) deliverRelayed(ctx context.Context, payload string) error {
	var env relayEnvelope
	if err := json.Unmarshal([]byte(payload), &env); err != nil {
		return err
	}
	if env.UserID == 0 || env.Event == "" {
		return fmt.Errorf("relay message missing actorId or event")
	}
	return h.EmitToActor(ctx, env.UserID, env.Event, env.Data)
}
