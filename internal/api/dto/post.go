package dto

import "time"

// CommentCreateReq 创建评论
type CommentCreateReq struct {
	Text     string   `json:"text" binding:"required,max=1000"`
	ImageIDs []uint64 `json:"imageIds" binding:"max=9"`
}

type CommentDTO struct {
	ID        uint64       `json:"id"`
	PostID    uint64       `json:"postId"`
	Text      string       `json:"text"`
	CreatedAt time.Time    `json:"createdAt"`
	Author    UserBriefDTO `json:"author"`
}

// LikeStateDTO 点赞操作后的状态
type LikeStateDTO struct {
	Liked     bool  `json:"liked"`
	LikeCount int64 `json:"likeCount"`
}
