package handler

import (
	"Admission/internal/api/config"
	"Admission/internal/api/dto"
	"Admission/internal/pkg/consts"
	"Admission/internal/pkg/realtime"
	"Admission/internal/pkg/security"
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/goccy/go-json"
	"github.com/gorilla/websocket"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const testCookie = "accessToken"

type frame struct {
	Event string          `json:"event"`
	Data  json.RawMessage `json:"data"`
}

func newWsServer(t *testing.T, revoked RevokedFunc) (*httptest.Server, *realtime.Hub) {
	t.Helper()
	gin.SetMode(gin.TestMode)
	hub := realtime.NewHub(realtime.NewPresence())
	h := NewWsHandler(hub, config.RealtimeConfig{SendBuffer: 16, PingPeriodSec: 50}, testCookie, nil, revoked)

	r := gin.New()
	r.GET("/api/ws", h.Connect)
	srv := httptest.NewServer(r)
	t.Cleanup(srv.Close)
	return srv, hub
}

func wsURL(srv *httptest.Server) string {
	return "ws" + strings.TrimPrefix(srv.URL, "http") + "/api/ws"
}

func dialWithToken(t *testing.T, srv *httptest.Server, token string) (*websocket.Conn, *http.Response, error) {
	t.Helper()
	header := http.Header{}
	if token != "" {
		header.Set("Cookie", testCookie+"="+token)
	}
	return websocket.DefaultDialer.Dial(wsURL(srv), header)
}

func readFrame(t *testing.T, conn *websocket.Conn) frame {
	t.Helper()
	require.NoError(t, conn.SetReadDeadline(time.Now().Add(2*time.Second)))
	var f frame
	require.NoError(t, conn.ReadJSON(&f))
	return f
}

func assertRejected(t *testing.T, resp *http.Response, err error) {
	t.Helper()
	require.ErrorIs(t, err, websocket.ErrBadHandshake)
	require.NotNil(t, resp)
	defer func() {
		_ = resp.Body.Close()
	}()

	var body dto.Response
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&body))
	assert.Equal(t, 401, body.Code)
}

func TestWsConnectRejectsMissingCookie(t *testing.T) {
	srv, hub := newWsServer(t, nil)

	conn, resp, err := dialWithToken(t, srv, "")
	if conn != nil {
		_ = conn.Close()
	}
	assertRejected(t, resp, err)
	assert.Empty(t, hub.Presence().Snapshot())
}

func TestWsConnectRejectsInvalidToken(t *testing.T) {
	srv, _ := newWsServer(t, nil)

	conn, resp, err := dialWithToken(t, srv, "not-a-jwt")
	if conn != nil {
		_ = conn.Close()
	}
	assertRejected(t, resp, err)
}

func TestWsConnectRejectsRevokedToken(t *testing.T) {
	srv, _ := newWsServer(t, func(context.Context, string) (bool, error) { return true, nil })
	token, err := security.GenerateToken(security.UserClaims{UserID: 5, Role: consts.RoleStudent})
	require.NoError(t, err)

	conn, resp, err := dialWithToken(t, srv, token)
	if conn != nil {
		_ = conn.Close()
	}
	assertRejected(t, resp, err)
}

func TestWsConnectBindsActorChannel(t *testing.T) {
	srv, hub := newWsServer(t, nil)
	token, err := security.GenerateToken(security.UserClaims{UserID: 5, Role: consts.RoleStudent, Name: "小明"})
	require.NoError(t, err)

	conn, resp, err := dialWithToken(t, srv, token)
	require.NoError(t, err)
	defer func() {
		_ = conn.Close()
	}()
	assert.Equal(t, http.StatusSwitchingProtocols, resp.StatusCode)

	online := readFrame(t, conn)
	assert.Equal(t, consts.EventOnlineUsers, online.Event)
	var profiles []realtime.Profile
	require.NoError(t, json.Unmarshal(online.Data, &profiles))
	require.Len(t, profiles, 1)
	assert.Equal(t, uint64(5), profiles[0].UserID)
	assert.Equal(t, "小明", profiles[0].Name)

	require.NoError(t, hub.EmitToActor(context.Background(), 5, consts.EventNewNotification, map[string]string{"message": "hi"}))
	pushed := readFrame(t, conn)
	assert.Equal(t, consts.EventNewNotification, pushed.Event)
	assert.JSONEq(t, `{"message":"hi"}`, string(pushed.Data))
}
