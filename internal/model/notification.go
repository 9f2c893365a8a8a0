package model

import "time"

type Notification struct {
	ID             uint64    `gorm:"primaryKey" json:"id"`
	UserID         uint64    `gorm:"not null;index:idx_user_read,priority:1" json:"userId"`
	Type           string    `gorm:"type:varchar(20);not null" json:"type"` // LIKE / COMMENT / CONVERSATION / CONSULTATION / SYSTEM
	Message        string    `gorm:"type:varchar(500);not null" json:"message"`
	Link           *string   `gorm:"type:varchar(255)" json:"link"`
	PostID         *uint64   `json:"postId"`
	CommentID      *uint64   `json:"commentId"`
	MessageID      *uint64   `json:"messageId"`
	ConversationID *uint64   `json:"conversationId"`
	Read           bool      `gorm:"type:tinyint(1);not null;default:0;index:idx_user_read,priority:2" json:"read"`
	CreatedByID    uint64    `gorm:"not null" json:"createdById"`
	CreatedAt      time.Time `gorm:"index" json:"createdAt"`

	CreatedBy User `gorm:"foreignKey:CreatedByID;references:ID" json:"createdBy"`
}

func (Notification) TableName() string {
	return "notifications"
}
