package handler

import (
	"Admission/internal/api/dto"
	"Admission/internal/pkg/response"
	"Admission/internal/service"

	"github.com/gin-gonic/gin"
)

type ConsultationHandler struct {
	consultationSvc service.ConsultationService
}

func NewConsultationHandler(consultationSvc service.ConsultationService) *ConsultationHandler {
	return &ConsultationHandler{consultationSvc: consultationSvc}
}

// Create 访客提交咨询请求，无需登录
func (s *ConsultationHandler) Create(c *gin.Context) {
	var req dto.ConsultationCreateReq
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, err)
		return
	}
	res, err := s.consultationSvc.Create(c.Request.Context(), &req)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Success(c, res)
}

func (s *ConsultationHandler) List(c *gin.Context) {
	var query dto.ConsultationQuery
	if err := c.ShouldBindQuery(&query); err != nil {
		response.Error(c, service.ErrParamInvalid)
		return
	}
	page, err := s.consultationSvc.List(c.Request.Context(), &query)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Success(c, page)
}

func (s *ConsultationHandler) UpdateStatus(c *gin.Context) {
	id, err := pathID(c, "id")
	if err != nil {
		response.Error(c, err)
		return
	}
	var req dto.ConsultationStatusReq
	if err = c.ShouldBindJSON(&req); err != nil {
		response.Error(c, err)
		return
	}
	if err = s.consultationSvc.UpdateStatus(c.Request.Context(), id, req.Status); err != nil {
		response.Error(c, err)
		return
	}
	response.Success(c, nil)
}

func (s *ConsultationHandler) Delete(c *gin.Context) {
	id, err := pathID(c, "id")
	if err != nil {
		response.Error(c, err)
		return
	}
	if err = s.consultationSvc.Delete(c.Request.Context(), id); err != nil {
		response.Error(c, err)
		return
	}
	response.Success(c, nil)
}

func (s *ConsultationHandler) Majors(c *gin.Context) {
	majors, err := s.consultationSvc.ListMajors(c.Request.Context())
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Success(c, majors)
}
