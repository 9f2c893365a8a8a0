package service

import (
	"Admission/internal/api/dto"
	"Admission/internal/model"
	"Admission/internal/pkg/consts"
	"Admission/internal/repository"
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeConsultationRepo struct {
	repository.ConsultationRepo
	majors    map[uint64]*model.Major
	requests  []*model.ConsultationRequest
	lastSince time.Time
}

func (r *fakeConsultationRepo) GetMajor(_ context.Context, id uint64) (*model.Major, error) {
	return r.majors[id], nil
}

func (r *fakeConsultationRepo) FindPendingSince(_ context.Context, email string, majorID uint64, since time.Time) (*model.ConsultationRequest, error) {
	r.lastSince = since
	for _, req := range r.requests {
		if req.Email == email && req.MajorID == majorID && req.Status == consts.RequestPending && !req.CreatedAt.Before(since) {
			return req, nil
		}
	}
	return nil, nil
}

func (r *fakeConsultationRepo) CreateRequest(_ context.Context, req *model.ConsultationRequest) error {
	req.ID = uint64(len(r.requests) + 1)
	req.CreatedAt = time.Now()
	r.requests = append(r.requests, req)
	return nil
}

func newConsultationFixture() (*fakeConsultationRepo, *fakeProducer, ConsultationService) {
	repo := &fakeConsultationRepo{majors: map[uint64]*model.Major{5: {ID: 5, Name: "计算机科学", Code: "CS"}}}
	users := newFakeUserRepo(
		&model.User{ID: 1, Email: "advisor1@example.com", Role: consts.RoleAdvisor},
		&model.User{ID: 2, Email: "advisor2@example.com", Role: consts.RoleAdvisor},
		&model.User{ID: 3, Email: "student@example.com", Role: consts.RoleStudent},
	)
	producer := &fakeProducer{}
	return repo, producer, NewConsultationService(repo, users, producer)
}

func consultationReq() *dto.ConsultationCreateReq {
	birth := "2008-05-01"
	return &dto.ConsultationCreateReq{
		FullName:    "李雷",
		PhoneNumber: "13800000000",
		Email:       "LiLei@Example.com",
		MajorID:     5,
		BirthDate:   &birth,
	}
}

func TestConsultationCreateEnqueuesEmails(t *testing.T) {
	repo, producer, svc := newConsultationFixture()

	res, err := svc.Create(context.Background(), consultationReq())
	require.NoError(t, err)
	assert.Equal(t, consts.RequestPending, res.Status)
	assert.Equal(t, "lilei@example.com", res.Email)
	assert.Equal(t, "计算机科学", res.Major.Name)
	require.NotNil(t, res.BirthDate)
	require.Len(t, repo.requests, 1)

	jobs := producer.byQueue(consts.QueueEmail)
	require.Len(t, jobs, 1)
	assert.Equal(t, consts.JobSendConsultationEmail, jobs[0].name)
	job, ok := jobs[0].payload.(dto.ConsultationEmailJob)
	require.True(t, ok)
	assert.Equal(t, "计算机科学", job.Student.MajorName)
	assert.Equal(t, []string{"advisor1@example.com", "advisor2@example.com"}, job.AdvisorEmails)
}

func TestConsultationDuplicateWithinWindow(t *testing.T) {
	repo, producer, svc := newConsultationFixture()
	ctx := context.Background()

	_, err := svc.Create(ctx, consultationReq())
	require.NoError(t, err)

	_, err = svc.Create(ctx, consultationReq())
	assert.ErrorIs(t, err, ErrConsultationDuplicate)
	assert.Len(t, repo.requests, 1)
	assert.Len(t, producer.jobs, 1)
	assert.WithinDuration(t, time.Now().Add(-consultationDedupWindow), repo.lastSince, time.Minute)
}

func TestConsultationAllowedAfterHandledOrExpired(t *testing.T) {
	repo, _, svc := newConsultationFixture()
	ctx := context.Background()

	_, err := svc.Create(ctx, consultationReq())
	require.NoError(t, err)
	repo.requests[0].Status = consts.RequestContacted

	_, err = svc.Create(ctx, consultationReq())
	require.NoError(t, err)

	repo.requests[1].CreatedAt = time.Now().Add(-25 * time.Hour)
	_, err = svc.Create(ctx, consultationReq())
	require.NoError(t, err)
	assert.Len(t, repo.requests, 3)
}

func TestConsultationUnknownMajor(t *testing.T) {
	_, producer, svc := newConsultationFixture()
	req := consultationReq()
	req.MajorID = 404

	_, err := svc.Create(context.Background(), req)
	assert.ErrorIs(t, err, ErrMajorNotFound)
	assert.Empty(t, producer.jobs)
}
