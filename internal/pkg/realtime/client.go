package realtime

import (
	"context"
	log "log/slog"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/gorilla/websocket"
)

const (
	writeWait      = 10 * time.Second
	maxMessageSize = 4096
)

// Client 一条实时连接
type Client struct {
	ID      string
	Profile Profile

	hub        *Hub
	conn       *websocket.Conn
	pingPeriod time.Duration

	mu     sync.Mutex
	closed bool
	send   chan []byte
}

// NewClient 创建连接对象，conn 为 nil 时只在内存中收帧
func NewClient(hub *Hub, conn *websocket.Conn, profile Profile, bufferSize int, pingPeriod time.Duration) *Client {
	if bufferSize <= 0 {
		bufferSize = 256
	}
	if pingPeriod <= 0 {
		pingPeriod = 50 * time.Second
	}
	return &Client{
		ID:         uuid.NewString(),
		Profile:    profile,
		hub:        hub,
		conn:       conn,
		pingPeriod: pingPeriod,
		send:       make(chan []byte, bufferSize),
	}
}

// enqueue 非阻塞写入发送缓冲，缓冲已满说明客户端消费过慢，直接断开
func (c *Client) enqueue(data []byte) bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.closed {
		return false
	}
	select {
	case c.send <- data:
		return true
	default:
		c.closed = true
		close(c.send)
		return false
	}
}

func (c *Client) close() {
	c.mu.Lock()
	defer c.mu.Unlock()
	if !c.closed {
		c.closed = true
		close(c.send)
	}
}

// Serve 注册到 Hub 并阻塞运行读写循环，连接断开后注销
func (c *Client) Serve(ctx context.Context) {
	c.hub.Register(c)
	log.InfoContext(ctx, "用户 WS 连接已建立", "userID", c.Profile.UserID, "clientID", c.ID)

	done := make(chan struct{})
	go func() {
		defer close(done)
		c.writePump()
	}()

	c.readPump(ctx)

	c.hub.Unregister(c)
	<-done
	_ = c.conn.Close()
	log.InfoContext(ctx, "用户 WS 连接已断开", "userID", c.Profile.UserID, "clientID", c.ID)
}

// readPump 客户端不经 ws 上行业务数据，读循环只用于感知断开与处理 pong
func (c *Client) readPump(ctx context.Context) {
	pongWait := c.pingPeriod * 10 / 9
	c.conn.SetReadLimit(maxMessageSize)
	_ = c.conn.SetReadDeadline(time.Now().Add(pongWait))
	c.conn.SetPongHandler(func(string) error {
		return c.conn.SetReadDeadline(time.Now().Add(pongWait))
	})

	for {
		if _, _, err := c.conn.ReadMessage(); err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseNormalClosure) {
				log.WarnContext(ctx, "WS 读取异常", "userID", c.Profile.UserID, "err", err)
			}
			return
		}
	}
}

func (c *Client) writePump() {
	ticker := time.NewTicker(c.pingPeriod)
	defer ticker.Stop()

	for {
		select {
		case data, ok := <-c.send:
			_ = c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if !ok {
				_ = c.conn.WriteMessage(websocket.CloseMessage, []byte{})
				// 通知读循环退出
				_ = c.conn.Close()
				return
			}
			if err := c.conn.WriteMessage(websocket.TextMessage, data); err != nil {
				_ = c.conn.Close()
				return
			}
		case <-ticker.C:
			_ = c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := c.conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				_ = c.conn.Close()
				return
			}
		}
	}
}
