package repository

import (
	"Admission/internal/model"
	"Admission/internal/pkg/consts"
	"context"
	"errors"
	"time"

	"gorm.io/gorm"
)

type ConsultationRepo interface {
	GetMajor(ctx context.Context, majorID uint64) (*model.Major, error)
	ListMajors(ctx context.Context) ([]*model.Major, error)
	FindPendingSince(ctx context.Context, email string, majorID uint64, since time.Time) (*model.ConsultationRequest, error)
	CreateRequest(ctx context.Context, req *model.ConsultationRequest) error
	GetRequest(ctx context.Context, id uint64) (*model.ConsultationRequest, error)
	ListRequests(ctx context.Context, status string, limit, offset int) ([]*model.ConsultationRequest, int64, error)
	UpdateStatus(ctx context.Context, id uint64, status string) error
	DeleteRequest(ctx context.Context, id uint64) error
}

type consultationRepoImpl struct {
	db *gorm.DB
}

func NewConsultationRepo(db *gorm.DB) ConsultationRepo {
	return &consultationRepoImpl{db: db}
}

func (s *consultationRepoImpl) GetMajor(ctx context.Context, majorID uint64) (*model.Major, error) {
	var major model.Major
	err := s.db.WithContext(ctx).First(&major, majorID).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &major, nil
}

func (s *consultationRepoImpl) ListMajors(ctx context.Context) ([]*model.Major, error) {
	var majors []*model.Major
	err := s.db.WithContext(ctx).Order("name ASC").Find(&majors).Error
	return majors, err
}

// FindPendingSince 同一邮箱同一专业在 since 之后仍未处理的请求
func (s *consultationRepoImpl) FindPendingSince(ctx context.Context, email string, majorID uint64, since time.Time) (*model.ConsultationRequest, error) {
	var req model.ConsultationRequest
	err := s.db.WithContext(ctx).
		Where("email = ? AND major_id = ? AND status = ? AND created_at >= ?", email, majorID, consts.RequestPending, since).
		Order("created_at DESC").
		First(&req).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &req, nil
}

func (s *consultationRepoImpl) CreateRequest(ctx context.Context, req *model.ConsultationRequest) error {
	return s.db.WithContext(ctx).Omit("Major").Create(req).Error
}

func (s *consultationRepoImpl) GetRequest(ctx context.Context, id uint64) (*model.ConsultationRequest, error) {
	var req model.ConsultationRequest
	err := s.db.WithContext(ctx).Preload("Major").First(&req, id).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &req, nil
}

func (s *consultationRepoImpl) ListRequests(ctx context.Context, status string, limit, offset int) ([]*model.ConsultationRequest, int64, error) {
	query := s.db.WithContext(ctx).Model(&model.ConsultationRequest{})
	if status != "" {
		query = query.Where("status = ?", status)
	}

	var total int64
	if err := query.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	list := make([]*model.ConsultationRequest, 0, limit)
	err := query.Preload("Major").Order("created_at DESC").Limit(limit).Offset(offset).Find(&list).Error
	return list, total, err
}

func (s *consultationRepoImpl) UpdateStatus(ctx context.Context, id uint64, status string) error {
	return s.db.WithContext(ctx).Model(&model.ConsultationRequest{}).
		Where("id = ?", id).
		Update("status", status).Error
}

func (s *consultationRepoImpl) DeleteRequest(ctx context.Context, id uint64) error {
	return s.db.WithContext(ctx).Delete(&model.ConsultationRequest{}, id).Error
}
