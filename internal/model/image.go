package model

import (
	"time"
)

// Image 上传的图片，按归属挂到消息/帖子/评论上
type Image struct {
	ID         uint64    `gorm:"primaryKey" json:"id"`
	URL        string    `gorm:"type:varchar(512);not null" json:"url"`
	PublicID   string    `gorm:"type:varchar(255);uniqueIndex:idx_public_id;not null" json:"publicId"`
	UploaderID uint64    `gorm:"not null;index" json:"-"`
	MessageID  *uint64   `gorm:"index" json:"-"`
	PostID     *uint64   `gorm:"index" json:"-"`
	CommentID  *uint64   `gorm:"index" json:"-"`
	CreatedAt  time.Time `json:"-"`
}

func (Image) TableName() string {
	return "images"
}
