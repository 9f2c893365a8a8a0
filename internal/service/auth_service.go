package service

import (
	"Admission/internal/api/dto"
	"Admission/internal/pkg/consts"
	"Admission/internal/pkg/redis"
	"Admission/internal/pkg/security"
	"Admission/internal/repository"
	"context"
	"errors"
	"strings"
)

type AuthService interface {
	Login(ctx context.Context, req *dto.LoginReq) (*dto.LoginResp, error)
	Logout(ctx context.Context, token string) error
	Me(ctx context.Context, userID uint64) (*dto.UserBriefDTO, error)
}

type authServiceImpl struct {
	userRepo repository.UserRepo
}

func NewAuthService(userRepo repository.UserRepo) AuthService {
	return &authServiceImpl{userRepo: userRepo}
}

// Login 校验邮箱密码并签发令牌，令牌中带上实时连接需要的用户资料
func (s *authServiceImpl) Login(ctx context.Context, req *dto.LoginReq) (*dto.LoginResp, error) {
	user, err := s.userRepo.GetUserByEmail(ctx, strings.ToLower(strings.TrimSpace(req.Email)))
	if err != nil {
		return nil, err
	}
	if user == nil {
		return nil, ErrPasswordIncorrect
	}
	if err = security.CheckPasswordHash(req.Password, user.Password); err != nil {
		if errors.Is(err, security.ErrInvalidCredentials) {
			return nil, ErrPasswordIncorrect
		}
		return nil, err
	}

	token, err := security.GenerateToken(security.UserClaims{
		UserID: user.ID,
		Role:   user.Role,
		Name:   user.Name,
		Avatar: user.Avatar,
		Email:  user.Email,
	})
	if err != nil {
		return nil, err
	}

	brief := toUserBrief(user)
	return &dto.LoginResp{Token: token, User: &brief}, nil
}

// Logout 令牌签名加入黑名单，有效期与令牌剩余时间一致
func (s *authServiceImpl) Logout(ctx context.Context, token string) error {
	claims, err := security.ValidateToken(token)
	if err != nil {
		return nil
	}
	signature, err := security.ExtractSignature(token)
	if err != nil {
		return ErrUnauthenticated
	}
	ttl := security.RemainingTTL(claims)
	if ttl <= 0 {
		return nil
	}
	return redis.SetWithExpiration(ctx, consts.TokenBlacklistKey+signature, "1", ttl)
}

func (s *authServiceImpl) Me(ctx context.Context, userID uint64) (*dto.UserBriefDTO, error) {
	user, err := s.userRepo.GetUserByID(ctx, userID)
	if err != nil {
		return nil, err
	}
	if user == nil {
		return nil, ErrUserNotFound
	}
	brief := toUserBrief(user)
	return &brief, nil
}
