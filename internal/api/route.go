package api

import (
	"Admission/internal/api/middleware"
	"Admission/internal/pkg/consts"
	"Admission/internal/pkg/logger"
	"net/http"

	"github.com/gin-gonic/gin"
)

func SetupRouter(group *HandlersGroup, allowedOrigins []string) *gin.Engine {
	r := gin.New()
	_ = r.SetTrustedProxies([]string{"localhost"})

	// TraceId & Logger & CORS
	r.Use(middleware.TraceMiddleware())
	r.Use(middleware.AuditMiddleware("/api/ws", "/api/media/image"))
	r.Use(middleware.CORSMiddleware(allowedOrigins))
	logger.SetupGin(r)

	r.GET("/healthz", func(c *gin.Context) {
		c.Status(http.StatusOK)
	})

	apiGroup := r.Group("/api")
	{
		apiGroup.GET("/ping", func(c *gin.Context) {
			c.JSON(http.StatusOK, gin.H{
				"code":    200,
				"message": "pong",
				"data":    nil,
			})
		})

		// 握手鉴权在 handler 内完成，失败时不升级
		apiGroup.GET("/ws", group.WsHandler.Connect)

		authGroup := apiGroup.Group("/auth")
		{
			authGroup.POST("/login", group.AuthHandler.Login)

			loggedIn := authGroup.Group("")
			loggedIn.Use(middleware.AuthMiddleware())
			{
				loggedIn.POST("/logout", group.AuthHandler.Logout)
				loggedIn.GET("/me", group.AuthHandler.Me)
			}
		}

		consultationGroup := apiGroup.Group("/consultations")
		{
			consultationGroup.POST("", group.ConsultationHandler.Create)
			consultationGroup.GET("/majors", group.ConsultationHandler.Majors)

			staffGroup := consultationGroup.Group("")
			staffGroup.Use(middleware.AuthMiddleware(), middleware.CheckRoles(consts.RoleAdvisor, consts.RoleAdmin))
			{
				staffGroup.GET("", group.ConsultationHandler.List)
				staffGroup.PATCH("/:id/status", group.ConsultationHandler.UpdateStatus)
				staffGroup.DELETE("/:id", group.ConsultationHandler.Delete)
			}
		}

		// 以下接口均需登录
		userGroup := apiGroup.Group("")
		userGroup.Use(middleware.AuthMiddleware())
		{
			messageGroup := userGroup.Group("/messages")
			{
				messageGroup.POST("", group.IMHandler.SendMessage)
				messageGroup.GET("", group.IMHandler.GetMessages)
			}

			convGroup := userGroup.Group("/conversations")
			{
				convGroup.GET("", group.ConversationHandler.List)
				convGroup.GET("/:id/messages", group.IMHandler.GetConversationMessages)
				convGroup.GET("/:id/members", group.ConversationHandler.Members)
				convGroup.POST("/:id/read", group.ConversationHandler.MarkRead)
				convGroup.POST("/:id/leave", group.ConversationHandler.Leave)

				// 角色校验在 service 内完成，学生调用返回 403
				convGroup.POST("/group", group.ConversationHandler.CreateGroup)
				convGroup.POST("/:id/members", group.ConversationHandler.AddMembers)
				convGroup.DELETE("/:id/members/:user_id", group.ConversationHandler.RemoveMember)
				convGroup.PUT("/:id/name", group.ConversationHandler.Rename)
				convGroup.DELETE("/:id", group.ConversationHandler.Delete)
			}

			notificationGroup := userGroup.Group("/notifications")
			{
				notificationGroup.GET("", group.NotificationHandler.List)
				notificationGroup.GET("/unread-count", group.NotificationHandler.UnreadCount)
				notificationGroup.PUT("/read-all", group.NotificationHandler.MarkAllRead)
				notificationGroup.PUT("/:id/read", group.NotificationHandler.MarkRead)
				notificationGroup.DELETE("/:id", group.NotificationHandler.Delete)
			}

			postGroup := userGroup.Group("/posts")
			{
				postGroup.POST("/:post_id/like", group.PostActionHandler.ToggleLike)
				postGroup.POST("/:post_id/comments", group.PostActionHandler.CreateComment)
				postGroup.DELETE("/:post_id", group.PostActionHandler.DeletePost)
			}

			userGroup.POST("/media/image", group.MediaHandler.UploadImage)

			adminGroup := userGroup.Group("/admin")
			adminGroup.Use(middleware.CheckRoles(consts.RoleAdmin))
			{
				adminGroup.GET("/queues/:name", group.QueueHandler.Stats)
				adminGroup.GET("/queues/:name/failed", group.QueueHandler.Failed)
			}
		}
	}

	return r
}
