package consts

const (
	MimePrefixImage = "image"
)

const (
	DefaultAvatarURL = "default_avatar.png"
)

// 用户角色
const (
	RoleStudent = "STUDENT"
	RoleAdvisor = "ADVISOR"
	RoleAdmin   = "ADMIN"
)

// 通知类型
const (
	NotificationLike         = "LIKE"
	NotificationComment      = "COMMENT"
	NotificationConversation = "CONVERSATION"
	NotificationConsultation = "CONSULTATION"
	NotificationSystem       = "SYSTEM"
)

// 咨询请求状态
const (
	RequestPending   = "PENDING"
	RequestContacted = "CONTACTED"
	RequestResolved  = "RESOLVED"
)

// 队列名
const (
	QueueNotifications = "notifications"
	QueueEmail         = "email"
	QueueDeleteImage   = "deleteImage"
)

// 任务名
const (
	JobSendNotification      = "sendNotification"
	JobSendConsultationEmail = "sendConsultationEmails"
	JobDeleteImage           = "deleteImage"
)

// 实时事件名
const (
	EventOnlineUsers         = "getOnlineUsers"
	EventNewMessage          = "newMessage"
	EventNewNotification     = "newNotification"
	EventMemberAdded         = "memberAdded"
	EventMemberLeft          = "memberLeft"
	EventConversationRenamed = "conversationRenamed"
	EventConversationDeleted = "conversationDeleted"
)

const (
	DefaultGroupName = "新建群聊"
)
