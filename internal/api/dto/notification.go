package dto

import "time"

// NotificationQuery 通知列表过滤，type/read 为空时不过滤
type NotificationQuery struct {
	Type  *string `form:"type" binding:"omitempty,oneof=LIKE COMMENT CONVERSATION CONSULTATION SYSTEM"`
	Read  *bool   `form:"read"`
	Page  int     `form:"page"`
	Limit int     `form:"limit"`
}

// NotificationDTO 通知明细
type NotificationDTO struct {
	ID             uint64       `json:"id"`
	Type           string       `json:"type"`
	Message        string       `json:"message"`
	Link           *string      `json:"link"`
	PostID         *uint64      `json:"postId"`
	CommentID      *uint64      `json:"commentId"`
	MessageID      *uint64      `json:"messageId"`
	ConversationID *uint64      `json:"conversationId"`
	Read           bool         `json:"read"`
	CreatedAt      time.Time    `json:"createdAt"`
	CreatedBy      UserBriefDTO `json:"createdBy"`
}

type UnreadCountDTO struct {
	UnreadCount int64 `json:"unreadCount"`
}

type MarkAllReadDTO struct {
	Updated int64 `json:"updated"`
}
