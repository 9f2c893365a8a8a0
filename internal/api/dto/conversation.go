package dto

// CreateGroupReq 创建群聊
type CreateGroupReq struct {
	Name    string   `json:"name" binding:"max=100"`
	UserIDs []uint64 `json:"userIds" binding:"required,min=1,max=200"`
}

type AddMembersReq struct {
	UserIDs []uint64 `json:"userIds" binding:"required,min=1,max=200"`
}

type RenameConversationReq struct {
	Name string `json:"name" binding:"max=100"`
}

// MembersQuery 成员分页查询
type MembersQuery struct {
	Page   int    `form:"page"`
	Limit  int    `form:"limit"`
	Search string `form:"search"`
}

// ConversationDTO 会话列表项
type ConversationDTO struct {
	ID          uint64         `json:"id"`
	IsGroup     bool           `json:"isGroup"`
	Name        *string        `json:"name"`
	Members     []UserBriefDTO `json:"members"`
	LastMessage *MessageDTO    `json:"lastMessage"`
	UnreadCount int64          `json:"unreadCount"`
}

type MemberAddedEvent struct {
	ConversationID uint64 `json:"conversationId"`
	AddedBy        uint64 `json:"addedBy"`
}

type MemberLeftEvent struct {
	ConversationID uint64 `json:"conversationId"`
	LeftUserID     uint64 `json:"leftUserId"`
}

type ConversationRenamedEvent struct {
	ConversationID uint64 `json:"conversationId"`
	NewName        string `json:"newName"`
	UpdatedBy      uint64 `json:"updatedBy"`
}

type ConversationDeletedEvent struct {
	ConversationID uint64 `json:"conversationId"`
}
