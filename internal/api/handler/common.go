package handler

import (
	"Admission/internal/api/dto"
	"Admission/internal/service"
	"strconv"

	"github.com/gin-gonic/gin"
)

// currentActor 从鉴权中间件注入的上下文构建当前操作者
func currentActor(c *gin.Context) dto.Creator {
	return dto.Creator{
		ID:     c.GetUint64("user_id"),
		Name:   c.GetString("name"),
		Avatar: c.GetString("avatar"),
		Role:   c.GetString("role"),
	}
}

// pathID 解析路径中的数字 ID，0 视为非法
func pathID(c *gin.Context, name string) (uint64, error) {
	id, err := strconv.ParseUint(c.Param(name), 10, 64)
	if err != nil || id == 0 {
		return 0, service.ErrParamInvalid
	}
	return id, nil
}
