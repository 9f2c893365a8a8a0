package handler

import (
	"Admission/internal/api/dto"
	"Admission/internal/pkg/response"
	"Admission/internal/service"

	"github.com/gin-gonic/gin"
)

type PostActionHandler struct {
	actionSvc service.PostActionService
}

func NewPostActionHandler(actionSvc service.PostActionService) *PostActionHandler {
	return &PostActionHandler{actionSvc: actionSvc}
}

// ToggleLike 点赞/取消点赞帖子
func (s *PostActionHandler) ToggleLike(c *gin.Context) {
	postID, err := pathID(c, "post_id")
	if err != nil {
		response.Error(c, err)
		return
	}
	state, err := s.actionSvc.ToggleLike(c.Request.Context(), currentActor(c), postID)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Success(c, state)
}

func (s *PostActionHandler) CreateComment(c *gin.Context) {
	postID, err := pathID(c, "post_id")
	if err != nil {
		response.Error(c, err)
		return
	}
	var req dto.CommentCreateReq
	if err = c.ShouldBindJSON(&req); err != nil {
		response.Error(c, err)
		return
	}
	comment, err := s.actionSvc.CreateComment(c.Request.Context(), currentActor(c), postID, &req)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Success(c, comment)
}

// DeletePost 学生只能删除自己的帖子
func (s *PostActionHandler) DeletePost(c *gin.Context) {
	postID, err := pathID(c, "post_id")
	if err != nil {
		response.Error(c, err)
		return
	}
	if err = s.actionSvc.DeletePost(c.Request.Context(), currentActor(c), postID); err != nil {
		response.Error(c, err)
		return
	}
	response.Success(c, nil)
}
