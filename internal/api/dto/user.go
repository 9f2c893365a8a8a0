package dto

// UserBriefDTO 用户简要信息
type UserBriefDTO struct {
	ID     uint64 `json:"id"`
	Email  string `json:"email,omitempty"`
	Name   string `json:"name"`
	Avatar string `json:"avatar"`
	Role   string `json:"role"`
}

// LoginReq 邮箱密码登录
type LoginReq struct {
	Email    string `json:"email" binding:"required,email"`
	Password string `json:"password" binding:"required,min=6,max=64"`
}

type LoginResp struct {
	Token string        `json:"token"`
	User  *UserBriefDTO `json:"user"`
}
