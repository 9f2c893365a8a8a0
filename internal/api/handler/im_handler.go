package handler

import (
	"Admission/internal/api/dto"
	"Admission/internal/pkg/response"
	"Admission/internal/service"

	"github.com/gin-gonic/gin"
)

type IMHandler struct {
	imSvc service.IMService
}

func NewIMHandler(imSvc service.IMService) *IMHandler {
	return &IMHandler{imSvc: imSvc}
}

// SendMessage 发送消息，conversationId 与 receiverId 二选一
func (s *IMHandler) SendMessage(c *gin.Context) {
	var req dto.SendMessageReq
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, err)
		return
	}
	msg, err := s.imSvc.SendMessage(c.Request.Context(), c.GetUint64("user_id"), &req)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Success(c, msg)
}

// GetMessages 历史消息游标分页
func (s *IMHandler) GetMessages(c *gin.Context) {
	var req dto.GetMessagesReq
	if err := c.ShouldBindQuery(&req); err != nil {
		response.Error(c, service.ErrParamInvalid)
		return
	}
	page, err := s.imSvc.GetMessages(c.Request.Context(), c.GetUint64("user_id"), &req)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Success(c, page)
}

// GetConversationMessages 路径参数指定会话
func (s *IMHandler) GetConversationMessages(c *gin.Context) {
	convID, err := pathID(c, "id")
	if err != nil {
		response.Error(c, err)
		return
	}
	var req dto.GetMessagesReq
	if err = c.ShouldBindQuery(&req); err != nil {
		response.Error(c, service.ErrParamInvalid)
		return
	}
	req.ConversationID = convID
	page, err := s.imSvc.GetMessages(c.Request.Context(), c.GetUint64("user_id"), &req)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Success(c, page)
}
