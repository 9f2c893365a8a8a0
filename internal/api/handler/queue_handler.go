package handler

import (
	"Admission/internal/pkg/response"
	"Admission/internal/service"
	"strconv"

	"github.com/gin-gonic/gin"
)

const defaultFailedLimit = 20

type QueueHandler struct {
	queueSvc service.QueueService
}

func NewQueueHandler(queueSvc service.QueueService) *QueueHandler {
	return &QueueHandler{queueSvc: queueSvc}
}

func (s *QueueHandler) Stats(c *gin.Context) {
	stats, err := s.queueSvc.Stats(c.Request.Context(), c.Param("name"))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Success(c, stats)
}

// Failed 查看重试耗尽的任务
func (s *QueueHandler) Failed(c *gin.Context) {
	limit := int64(defaultFailedLimit)
	if raw := c.Query("limit"); raw != "" {
		n, err := strconv.ParseInt(raw, 10, 64)
		if err != nil || n <= 0 {
			response.Error(c, service.ErrParamInvalid)
			return
		}
		limit = n
	}
	jobs, err := s.queueSvc.Failed(c.Request.Context(), c.Param("name"), limit)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Success(c, jobs)
}
