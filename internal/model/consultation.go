package model

import "time"

type Major struct {
	ID   uint64 `gorm:"primaryKey" json:"id"`
	Name string `gorm:"type:varchar(255);uniqueIndex;not null" json:"name"`
	Code string `gorm:"type:varchar(50)" json:"code"`
}

func (Major) TableName() string {
	return "majors"
}

// ConsultationRequest 咨询请求
type ConsultationRequest struct {
	ID          uint64     `gorm:"primaryKey" json:"id"`
	FullName    string     `gorm:"type:varchar(100);not null" json:"fullName"`
	PhoneNumber string     `gorm:"type:varchar(30);not null" json:"phoneNumber"`
	Email       string     `gorm:"type:varchar(255);not null;index:idx_email_major,priority:1" json:"email"`
	MajorID     uint64     `gorm:"not null;index:idx_email_major,priority:2" json:"majorId"`
	Address     *string    `gorm:"type:varchar(255)" json:"address"`
	BirthDate   *time.Time `gorm:"type:date" json:"birthDate"`
	Status      string     `gorm:"type:varchar(20);not null;default:PENDING" json:"status"` // PENDING / CONTACTED / RESOLVED
	CreatedAt   time.Time  `json:"createdAt"`
	UpdatedAt   time.Time  `json:"updatedAt"`

	Major Major `gorm:"foreignKey:MajorID;references:ID" json:"major"`
}

func (ConsultationRequest) TableName() string {
	return "consultation_requests"
}
