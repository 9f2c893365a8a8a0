package dto

import "time"

// ConsultationCreateReq 咨询请求，birthDate 格式 2006-01-02
type ConsultationCreateReq struct {
	FullName    string  `json:"fullName" binding:"required,max=100"`
	PhoneNumber string  `json:"phoneNumber" binding:"required,min=6,max=30"`
	Email       string  `json:"email" binding:"required,email"`
	MajorID     uint64  `json:"majorId" binding:"required"`
	Address     *string `json:"address" binding:"omitempty,max=255"`
	BirthDate   *string `json:"birthDate" binding:"omitempty,datetime=2006-01-02"`
}

type ConsultationStatusReq struct {
	Status string `json:"status" binding:"required,oneof=PENDING CONTACTED RESOLVED"`
}

type ConsultationQuery struct {
	Status string `form:"status" binding:"omitempty,oneof=PENDING CONTACTED RESOLVED"`
	Page   int    `form:"page"`
	Limit  int    `form:"limit"`
}

type MajorDTO struct {
	ID   uint64 `json:"id"`
	Name string `json:"name"`
	Code string `json:"code"`
}

type ConsultationDTO struct {
	ID          uint64     `json:"id"`
	FullName    string     `json:"fullName"`
	PhoneNumber string     `json:"phoneNumber"`
	Email       string     `json:"email"`
	MajorID     uint64     `json:"majorId"`
	Address     *string    `json:"address"`
	BirthDate   *time.Time `json:"birthDate"`
	Status      string     `json:"status"`
	CreatedAt   time.Time  `json:"createdAt"`
	Major       MajorDTO   `json:"major"`
}
