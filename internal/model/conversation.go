package model

import "time"

// Conversation 会话主表
type Conversation struct {
	ID      uint64  `gorm:"primaryKey;autoIncrement" json:"id"`
	IsGroup bool    `gorm:"type:tinyint(1);not null;default:0" json:"isGroup"`
	Name    *string `gorm:"type:varchar(100)" json:"name"`
	// PeerKey 单聊唯一键 minUID_maxUID，群聊为 NULL
	PeerKey   *string   `gorm:"uniqueIndex;type:varchar(64)" json:"-"`
	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`

	Members []ConversationMember `gorm:"foreignKey:ConversationID;references:ID" json:"members,omitempty"`
}

func (Conversation) TableName() string { return "conversations" }

// ConversationMember 会话成员表
type ConversationMember struct {
	ID             uint64     `gorm:"primaryKey;autoIncrement" json:"id"`
	ConversationID uint64     `gorm:"uniqueIndex:idx_conv_user" json:"conversationId"`
	UserID         uint64     `gorm:"uniqueIndex:idx_conv_user;index" json:"userId"`
	LastReadAt     *time.Time `gorm:"type:datetime(3)" json:"lastReadAt"`
	JoinedAt       time.Time  `gorm:"autoCreateTime" json:"joinedAt"`

	User User `gorm:"foreignKey:UserID;references:ID" json:"user"`
}

func (ConversationMember) TableName() string { return "conversation_members" }
