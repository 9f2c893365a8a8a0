package security

import (
	"time"

	"github.com/golang-jwt/jwt/v5"
)

var (
	jwtSecret         = []byte("admission-dev-secret")
	jwtExpirationTime = time.Hour * 24
)

// Init 使用配置覆盖签名密钥与过期时间
func Init(secret string, expirationHours int) {
	if secret != "" {
		jwtSecret = []byte(secret)
	}
	if expirationHours > 0 {
		jwtExpirationTime = time.Duration(expirationHours) * time.Hour
	}
}

// ExpirationTime 令牌有效期，cookie 的 MaxAge 与之保持一致
func ExpirationTime() time.Duration {
	return jwtExpirationTime
}

// UserClaims Token 中携带的用户身份，实时连接直接据此构建在线用户信息
type UserClaims struct {
	UserID uint64 `json:"user_id"`
	Role   string `json:"role"`
	Name   string `json:"name"`
	Avatar string `json:"avatar"`
	Email  string `json:"email"`
	jwt.RegisteredClaims
}
