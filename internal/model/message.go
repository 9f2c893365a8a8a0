package model

import "time"

type Message struct {
	ID             uint64    `gorm:"primaryKey;autoIncrement" json:"id"`
	ConversationID uint64    `gorm:"not null;index:idx_conv_created,priority:1" json:"conversationId"`
	SenderID       uint64    `gorm:"not null" json:"senderId"`
	Text           string    `gorm:"type:text" json:"text"`
	CreatedAt      time.Time `gorm:"type:datetime(3);index:idx_conv_created,priority:2" json:"createdAt"`

	Sender User    `gorm:"foreignKey:SenderID;references:ID" json:"sender"`
	Images []Image `gorm:"foreignKey:MessageID;references:ID" json:"images"`
}

func (Message) TableName() string {
	return "messages"
}
