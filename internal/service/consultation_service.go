package service

import (
	"Admission/internal/api/dto"
	"Admission/internal/model"
	"Admission/internal/pkg/consts"
	"Admission/internal/pkg/queue"
	"Admission/internal/repository"
	"context"
	"strings"
	"time"

	"github.com/jinzhu/copier"
)

// consultationDedupWindow 同一邮箱同一专业的待处理请求在该时间窗内只保留一条
const consultationDedupWindow = 24 * time.Hour

type ConsultationService interface {
	Create(ctx context.Context, req *dto.ConsultationCreateReq) (*dto.ConsultationDTO, error)
	List(ctx context.Context, query *dto.ConsultationQuery) (*dto.PageResult[*dto.ConsultationDTO], error)
	UpdateStatus(ctx context.Context, id uint64, status string) error
	Delete(ctx context.Context, id uint64) error
	ListMajors(ctx context.Context) ([]*dto.MajorDTO, error)
}

type consultationServiceImpl struct {
	repo     repository.ConsultationRepo
	userRepo repository.UserRepo
	producer queue.Producer
	now      func() time.Time
}

func NewConsultationService(repo repository.ConsultationRepo, userRepo repository.UserRepo, producer queue.Producer) ConsultationService {
	return &consultationServiceImpl{
		repo:     repo,
		userRepo: userRepo,
		producer: producer,
		now:      time.Now,
	}
}

func (s *consultationServiceImpl) Create(ctx context.Context, req *dto.ConsultationCreateReq) (*dto.ConsultationDTO, error) {
	email := strings.ToLower(strings.TrimSpace(req.Email))

	major, err := s.repo.GetMajor(ctx, req.MajorID)
	if err != nil {
		return nil, err
	}
	if major == nil {
		return nil, ErrMajorNotFound
	}

	existing, err := s.repo.FindPendingSince(ctx, email, major.ID, s.now().Add(-consultationDedupWindow))
	if err != nil {
		return nil, err
	}
	if existing != nil {
		return nil, ErrConsultationDuplicate
	}

	request := &model.ConsultationRequest{
		FullName:    strings.TrimSpace(req.FullName),
		PhoneNumber: strings.TrimSpace(req.PhoneNumber),
		Email:       email,
		MajorID:     major.ID,
		Address:     req.Address,
		Status:      consts.RequestPending,
	}
	if req.BirthDate != nil && *req.BirthDate != "" {
		birth, err := time.Parse(time.DateOnly, *req.BirthDate)
		if err != nil {
			return nil, ErrParamInvalid
		}
		request.BirthDate = &birth
	}
	if err = s.repo.CreateRequest(ctx, request); err != nil {
		return nil, err
	}
	request.Major = *major

	advisors, err := s.userRepo.GetEmailsByRole(ctx, consts.RoleAdvisor)
	if err != nil {
		return nil, err
	}
	enqueue(ctx, s.producer, consts.QueueEmail, consts.JobSendConsultationEmail, dto.ConsultationEmailJob{
		Student: dto.ConsultationStudent{
			FullName:    request.FullName,
			Email:       request.Email,
			PhoneNumber: request.PhoneNumber,
			MajorName:   major.Name,
		},
		AdvisorEmails: advisors,
	})

	return toConsultationDTO(request)
}

func (s *consultationServiceImpl) List(ctx context.Context, query *dto.ConsultationQuery) (*dto.PageResult[*dto.ConsultationDTO], error) {
	page, limit, offset := normalizePage(query.Page, query.Limit)
	list, total, err := s.repo.ListRequests(ctx, query.Status, limit, offset)
	if err != nil {
		return nil, err
	}

	res := make([]*dto.ConsultationDTO, 0, len(list))
	for _, r := range list {
		item, err := toConsultationDTO(r)
		if err != nil {
			return nil, err
		}
		res = append(res, item)
	}
	return dto.NewPageResult(res, total, page, limit), nil
}

func (s *consultationServiceImpl) UpdateStatus(ctx context.Context, id uint64, status string) error {
	if _, err := s.getRequest(ctx, id); err != nil {
		return err
	}
	return s.repo.UpdateStatus(ctx, id, status)
}

func (s *consultationServiceImpl) Delete(ctx context.Context, id uint64) error {
	if _, err := s.getRequest(ctx, id); err != nil {
		return err
	}
	return s.repo.DeleteRequest(ctx, id)
}

func (s *consultationServiceImpl) ListMajors(ctx context.Context) ([]*dto.MajorDTO, error) {
	majors, err := s.repo.ListMajors(ctx)
	if err != nil {
		return nil, err
	}
	res := make([]*dto.MajorDTO, 0, len(majors))
	if err = copier.Copy(&res, &majors); err != nil {
		return nil, err
	}
	return res, nil
}

func (s *consultationServiceImpl) getRequest(ctx context.Context, id uint64) (*model.ConsultationRequest, error) {
	req, err := s.repo.GetRequest(ctx, id)
	if err != nil {
		return nil, err
	}
	if req == nil {
		return nil, ErrConsultationNotFound
	}
	return req, nil
}

func toConsultationDTO(r *model.ConsultationRequest) (*dto.ConsultationDTO, error) {
	res := &dto.ConsultationDTO{}
	if err := copier.Copy(res, r); err != nil {
		return nil, err
	}
	res.Major = dto.MajorDTO{ID: r.Major.ID, Name: r.Major.Name, Code: r.Major.Code}
	return res, nil
}
