package api

import "Admission/internal/api/handler"

// HandlersGroup 封装了所有已初始化的 Handler 实例
type HandlersGroup struct {
	AuthHandler         *handler.AuthHandler
	WsHandler           *handler.WsHandler
	IMHandler           *handler.IMHandler
	ConversationHandler *handler.ConversationHandler
	NotificationHandler *handler.NotificationHandler
	PostActionHandler   *handler.PostActionHandler
	ConsultationHandler *handler.ConsultationHandler
	MediaHandler        *handler.MediaHandler
	QueueHandler        *handler.QueueHandler
}
