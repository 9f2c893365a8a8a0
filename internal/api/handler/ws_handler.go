package handler

import (
	"Admission/internal/api/config"
	"Admission/internal/pkg/realtime"
	"Admission/internal/pkg/response"
	"Admission/internal/pkg/security"
	"Admission/internal/service"
	"context"
	log "log/slog"
	"net/http"
	"slices"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"
)

// RevokedFunc 判断 token 是否已登出
type RevokedFunc func(ctx context.Context, token string) (bool, error)

type WsHandler struct {
	hub        *realtime.Hub
	cfg        config.RealtimeConfig
	cookieName string
	revoked    RevokedFunc
	upgrader   websocket.Upgrader
}

func NewWsHandler(hub *realtime.Hub, cfg config.RealtimeConfig, cookieName string, allowedOrigins []string, revoked RevokedFunc) *WsHandler {
	return &WsHandler{
		hub:        hub,
		cfg:        cfg,
		cookieName: cookieName,
		revoked:    revoked,
		upgrader: websocket.Upgrader{
			CheckOrigin: func(r *http.Request) bool {
				if len(allowedOrigins) == 0 {
					return true
				}
				return slices.Contains(allowedOrigins, r.Header.Get("Origin"))
			},
		},
	}
}

// Connect 握手时从 cookie 读取 token，鉴权失败不升级协议
func (s *WsHandler) Connect(c *gin.Context) {
	claims, err := s.authenticate(c)
	if err != nil {
		log.WarnContext(c.Request.Context(), "WS 鉴权失败", "err", err)
		response.Error(c, service.ErrUnauthenticated)
		return
	}

	conn, err := s.upgrader.Upgrade(c.Writer, c.Request, nil)
	if err != nil {
		log.ErrorContext(c.Request.Context(), "WS 协议升级失败", "err", err)
		return
	}

	profile := realtime.Profile{
		UserID: claims.UserID,
		Role:   claims.Role,
		Name:   claims.Name,
		Avatar: claims.Avatar,
		Email:  claims.Email,
	}
	pingPeriod := time.Duration(s.cfg.PingPeriodSec) * time.Second
	client := realtime.NewClient(s.hub, conn, profile, s.cfg.SendBuffer, pingPeriod)

	client.Serve(c.Request.Context())
}

func (s *WsHandler) authenticate(c *gin.Context) (*security.UserClaims, error) {
	token, err := c.Cookie(s.cookieName)
	if err != nil {
		return nil, err
	}
	claims, err := security.ValidateToken(token)
	if err != nil {
		return nil, err
	}
	if s.revoked != nil {
		revoked, err := s.revoked(c.Request.Context(), token)
		if err != nil {
			return nil, err
		}
		if revoked {
			return nil, service.ErrUnauthenticated
		}
	}
	return claims, nil
}
