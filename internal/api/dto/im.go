package dto

import "time"

// SendMessageReq 发送消息请求体，conversationId 与 receiverId 至少提供一个
type SendMessageReq struct {
	ConversationID *uint64  `json:"conversationId"`
	ReceiverID     *uint64  `json:"receiverId"`
	Text           string   `json:"text" binding:"max=5000"`
	ImageIDs       []uint64 `json:"imageIds" binding:"max=10"`
}

// GetMessagesReq 消息历史查询参数
type GetMessagesReq struct {
	ConversationID uint64 `form:"conversationId"`
	SenderID       uint64 `form:"senderId"`
	ReceiverID     uint64 `form:"receiverId"`
	Limit          int    `form:"limit"`
	Cursor         string `form:"cursor"`
	Before         string `form:"before"`
	After          string `form:"after"`
}

type ImageDTO struct {
	ID       uint64 `json:"id"`
	URL      string `json:"url"`
	PublicID string `json:"publicId"`
}

// MessageDTO 消息明细
type MessageDTO struct {
	ID             uint64       `json:"id"`
	ConversationID uint64       `json:"conversationId"`
	SenderID       uint64       `json:"senderId"`
	Text           string       `json:"text"`
	CreatedAt      time.Time    `json:"createdAt"`
	Sender         UserBriefDTO `json:"sender"`
	Images         []ImageDTO   `json:"images"`
	HasImages      bool         `json:"hasImages"`
	MessageType    string       `json:"messageType"` // text / image
}

// MessagePageDTO 游标分页结果，游标为 RFC3339 时间
type MessagePageDTO struct {
	Messages   []*MessageDTO `json:"messages"`
	HasMore    bool          `json:"hasMore"`
	NextCursor *string       `json:"nextCursor"`
	PrevCursor *string       `json:"prevCursor"`
}

// NewMessageEvent newMessage 推送内容
type NewMessageEvent struct {
	ConversationID uint64      `json:"conversationId"`
	Message        *MessageDTO `json:"message"`
}
