package middleware

import (
	"Admission/internal/api/config"
	"Admission/internal/pkg/consts"
	"Admission/internal/pkg/redis"
	"Admission/internal/pkg/response"
	"Admission/internal/pkg/security"
	"context"
	"strings"

	"github.com/gin-gonic/gin"
)

// TokenFromRequest 优先读取 Authorization 头，其次读取登录 cookie
func TokenFromRequest(c *gin.Context) string {
	authHeader := c.GetHeader("Authorization")
	if strings.HasPrefix(authHeader, "Bearer ") {
		return strings.TrimPrefix(authHeader, "Bearer ")
	}
	token, err := c.Cookie(config.Cfg.JWT.CookieName)
	if err != nil {
		return ""
	}
	return token
}

// IsTokenRevoked 登出后签名写入黑名单直至过期
func IsTokenRevoked(ctx context.Context, token string) (bool, error) {
	signature, err := security.ExtractSignature(token)
	if err != nil {
		return false, err
	}
	value, err := redis.GetValue(ctx, consts.TokenBlacklistKey+signature)
	if err != nil {
		return false, err
	}
	return value != "", nil
}

// AuthMiddleware 负责验证 JWT 并将用户身份信息注入 Context
func AuthMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		tokenString := TokenFromRequest(c)
		if tokenString == "" {
			response.Fail(c, response.Unauthorized, "Token 缺失或格式错误")
			c.Abort()
			return
		}

		revoked, err := IsTokenRevoked(c.Request.Context(), tokenString)
		if err != nil {
			response.Fail(c, response.Unauthorized, "Token 缺失或格式错误")
			c.Abort()
			return
		}
		if revoked {
			response.Fail(c, response.Unauthorized, "Token 无效或已过期")
			c.Abort()
			return
		}

		claims, err := security.ValidateToken(tokenString)
		if err != nil {
			response.Fail(c, response.Unauthorized, "Token 无效或已过期")
			c.Abort()
			return
		}

		c.Set("user_id", claims.UserID)
		c.Set("role", claims.Role)
		c.Set("name", claims.Name)
		c.Set("avatar", claims.Avatar)

		c.Next()
	}
}
