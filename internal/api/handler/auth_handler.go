package handler

import (
	"Admission/internal/api/dto"
	"Admission/internal/api/middleware"
	"Admission/internal/pkg/response"
	"Admission/internal/pkg/security"
	"Admission/internal/service"
	"net/http"

	"github.com/gin-gonic/gin"
)

type AuthHandler struct {
	authSvc    service.AuthService
	cookieName string
	secure     bool
}

func NewAuthHandler(authSvc service.AuthService, cookieName string, secure bool) *AuthHandler {
	return &AuthHandler{
		authSvc:    authSvc,
		cookieName: cookieName,
		secure:     secure,
	}
}

// Login 登录成功后同时返回 token 并写入 HttpOnly cookie，实时连接握手依赖该 cookie
func (s *AuthHandler) Login(c *gin.Context) {
	var req dto.LoginReq
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, err)
		return
	}
	resp, err := s.authSvc.Login(c.Request.Context(), &req)
	if err != nil {
		response.Error(c, err)
		return
	}
	c.SetSameSite(http.SameSiteLaxMode)
	c.SetCookie(s.cookieName, resp.Token, int(security.ExpirationTime().Seconds()), "/", "", s.secure, true)
	response.Success(c, resp)
}

func (s *AuthHandler) Logout(c *gin.Context) {
	token := middleware.TokenFromRequest(c)
	if err := s.authSvc.Logout(c.Request.Context(), token); err != nil {
		response.Error(c, err)
		return
	}
	c.SetCookie(s.cookieName, "", -1, "/", "", s.secure, true)
	response.Success(c, nil)
}

func (s *AuthHandler) Me(c *gin.Context) {
	user, err := s.authSvc.Me(c.Request.Context(), c.GetUint64("user_id"))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Success(c, user)
}
