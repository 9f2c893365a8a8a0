package handler

import (
	"Admission/internal/api/dto"
	"Admission/internal/pkg/response"
	"Admission/internal/service"

	"github.com/gin-gonic/gin"
)

type ConversationHandler struct {
	convSvc service.ConversationService
}

func NewConversationHandler(convSvc service.ConversationService) *ConversationHandler {
	return &ConversationHandler{convSvc: convSvc}
}

func (s *ConversationHandler) List(c *gin.Context) {
	list, err := s.convSvc.List(c.Request.Context(), c.GetUint64("user_id"), c.Query("search"))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Success(c, list)
}

func (s *ConversationHandler) CreateGroup(c *gin.Context) {
	var req dto.CreateGroupReq
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, err)
		return
	}
	conv, err := s.convSvc.CreateGroup(c.Request.Context(), currentActor(c), &req)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Success(c, conv)
}

func (s *ConversationHandler) AddMembers(c *gin.Context) {
	convID, err := pathID(c, "id")
	if err != nil {
		response.Error(c, err)
		return
	}
	var req dto.AddMembersReq
	if err = c.ShouldBindJSON(&req); err != nil {
		response.Error(c, err)
		return
	}
	added, err := s.convSvc.AddMembers(c.Request.Context(), currentActor(c), convID, req.UserIDs)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Success(c, map[string][]uint64{"added": added})
}

// Leave 当前用户退出会话
func (s *ConversationHandler) Leave(c *gin.Context) {
	convID, err := pathID(c, "id")
	if err != nil {
		response.Error(c, err)
		return
	}
	if err = s.convSvc.Leave(c.Request.Context(), currentActor(c), convID); err != nil {
		response.Error(c, err)
		return
	}
	response.Success(c, nil)
}

func (s *ConversationHandler) RemoveMember(c *gin.Context) {
	convID, err := pathID(c, "id")
	if err != nil {
		response.Error(c, err)
		return
	}
	userID, err := pathID(c, "user_id")
	if err != nil {
		response.Error(c, err)
		return
	}
	if err = s.convSvc.RemoveMember(c.Request.Context(), currentActor(c), convID, userID); err != nil {
		response.Error(c, err)
		return
	}
	response.Success(c, nil)
}

func (s *ConversationHandler) Rename(c *gin.Context) {
	convID, err := pathID(c, "id")
	if err != nil {
		response.Error(c, err)
		return
	}
	var req dto.RenameConversationReq
	if err = c.ShouldBindJSON(&req); err != nil {
		response.Error(c, err)
		return
	}
	if err = s.convSvc.Rename(c.Request.Context(), currentActor(c), convID, req.Name); err != nil {
		response.Error(c, err)
		return
	}
	response.Success(c, nil)
}

func (s *ConversationHandler) Delete(c *gin.Context) {
	convID, err := pathID(c, "id")
	if err != nil {
		response.Error(c, err)
		return
	}
	if err = s.convSvc.Delete(c.Request.Context(), currentActor(c), convID); err != nil {
		response.Error(c, err)
		return
	}
	response.Success(c, nil)
}

func (s *ConversationHandler) MarkRead(c *gin.Context) {
	convID, err := pathID(c, "id")
	if err != nil {
		response.Error(c, err)
		return
	}
	if err = s.convSvc.MarkRead(c.Request.Context(), c.GetUint64("user_id"), convID); err != nil {
		response.Error(c, err)
		return
	}
	response.Success(c, nil)
}

func (s *ConversationHandler) Members(c *gin.Context) {
	convID, err := pathID(c, "id")
	if err != nil {
		response.Error(c, err)
		return
	}
	var query dto.MembersQuery
	if err = c.ShouldBindQuery(&query); err != nil {
		response.Error(c, service.ErrParamInvalid)
		return
	}
	page, err := s.convSvc.Members(c.Request.Context(), currentActor(c), convID, &query)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Success(c, page)
}
