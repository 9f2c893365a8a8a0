package handler

import (
	"Admission/internal/pkg/response"
	"Admission/internal/service"
	log "log/slog"

	"github.com/gin-gonic/gin"
)

const maxImageSize = 10 << 20

type MediaHandler struct {
	mediaSvc service.MediaService
}

func NewMediaHandler(mediaSvc service.MediaService) *MediaHandler {
	return &MediaHandler{mediaSvc: mediaSvc}
}

// UploadImage 上传图片，返回的 id 用于消息、评论附图
func (s *MediaHandler) UploadImage(c *gin.Context) {
	header, err := c.FormFile("file")
	if err != nil {
		response.Error(c, service.ErrParamInvalid)
		return
	}
	if header.Size <= 0 || header.Size > maxImageSize {
		response.Error(c, service.ErrParamInvalid)
		return
	}

	file, err := header.Open()
	if err != nil {
		response.Error(c, err)
		return
	}
	defer func() {
		if err := file.Close(); err != nil {
			log.WarnContext(c.Request.Context(), "close upload file failed", "err", err)
		}
	}()

	image, err := s.mediaSvc.UploadImage(c.Request.Context(), c.GetUint64("user_id"), file, header.Size)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Success(c, image)
}
