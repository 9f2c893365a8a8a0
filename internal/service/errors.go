package service

import (
	"errors"
)

const (
	BadRequest          = 400
	Unauthorized        = 401
	Forbidden           = 403
	NotFound            = 404
	InternalServerError = 500
)

var (
	ErrParamInvalid          = errors.New("参数错误")
	ErrUnauthenticated       = errors.New("未登录或登录已过期")
	ErrPasswordIncorrect     = errors.New("邮箱或密码错误")
	ErrUserNotFound          = errors.New("用户不存在")
	ErrForbidden             = errors.New("权限不足")
	ErrFileNotSupported      = errors.New("不支持的文件类型")
	ErrConversationTarget    = errors.New("缺少 conversationId 或 receiverId")
	ErrConversationSelf      = errors.New("不能与自己创建会话")
	ErrConversationNotFound  = errors.New("会话不存在")
	ErrNotConversationMember = errors.New("你不是该会话的成员")
	ErrMemberNotFound        = errors.New("用户不在该会话中")
	ErrGroupNameEmpty        = errors.New("群名称不能为空")
	ErrMessageEmpty          = errors.New("消息内容不能为空")
	ErrNotificationNotFound  = errors.New("通知不存在或无权操作")
	ErrPostNotFound          = errors.New("帖子不存在")
	ErrMajorNotFound         = errors.New("专业不存在")
	ErrConsultationDuplicate = errors.New("24 小时内已提交过该专业的咨询请求")
	ErrConsultationNotFound  = errors.New("咨询请求不存在")
	ErrQueueUnknown          = errors.New("队列不存在")
	UnExpectedError          = errors.New("系统异常，请稍后重试")
)

var ErrorMap = map[error]int{
	ErrParamInvalid:          BadRequest,
	ErrUnauthenticated:       Unauthorized,
	ErrPasswordIncorrect:     Unauthorized,
	ErrUserNotFound:          NotFound,
	ErrForbidden:             Forbidden,
	ErrFileNotSupported:      BadRequest,
	ErrConversationTarget:    BadRequest,
	ErrConversationSelf:      BadRequest,
	ErrConversationNotFound:  NotFound,
	ErrNotConversationMember: Forbidden,
	ErrMemberNotFound:        NotFound,
	ErrGroupNameEmpty:        BadRequest,
	ErrMessageEmpty:          BadRequest,
	ErrNotificationNotFound:  NotFound,
	ErrPostNotFound:          NotFound,
	ErrMajorNotFound:         NotFound,
	ErrConsultationDuplicate: BadRequest,
	ErrConsultationNotFound:  NotFound,
	ErrQueueUnknown:          NotFound,
	UnExpectedError:          InternalServerError,
}
