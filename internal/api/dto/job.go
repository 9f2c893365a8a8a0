package dto

// Creator 通知发起人快照
type Creator struct {
	ID     uint64 `json:"id"`
	Name   string `json:"name"`
	Avatar string `json:"avatar"`
	Role   string `json:"role"`
}

// NotificationJob notifications 队列 sendNotification 任务
type NotificationJob struct {
	UserIDs        []uint64 `json:"userIds"`
	Type           string   `json:"type" validate:"required,oneof=LIKE COMMENT CONVERSATION CONSULTATION SYSTEM"`
	Message        string   `json:"message" validate:"required"`
	Link           *string  `json:"link,omitempty"`
	PostID         *uint64  `json:"postId,omitempty"`
	CommentID      *uint64  `json:"commentId,omitempty"`
	MessageID      *uint64  `json:"messageId,omitempty"`
	ConversationID *uint64  `json:"conversationId,omitempty"`
	CreatedBy      Creator  `json:"createdBy"`
}

// ConsultationStudent 咨询学生联系方式
type ConsultationStudent struct {
	FullName    string `json:"fullName" validate:"required"`
	Email       string `json:"email" validate:"required,email"`
	PhoneNumber string `json:"phoneNumber"`
	MajorName   string `json:"majorName"`
}

// ConsultationEmailJob email 队列 sendConsultationEmails 任务
type ConsultationEmailJob struct {
	Student       ConsultationStudent `json:"student"`
	AdvisorEmails []string            `json:"advisorEmails" validate:"dive,email"`
}

// DeleteImageJob deleteImage 队列任务
type DeleteImageJob struct {
	PublicID string `json:"publicId"`
}

// NotificationEvent newNotification 推送内容
type NotificationEvent struct {
	ID             uint64  `json:"id,omitempty"`
	Type           string  `json:"type"`
	Message        string  `json:"message"`
	Link           *string `json:"link,omitempty"`
	PostID         *uint64 `json:"postId,omitempty"`
	CommentID      *uint64 `json:"commentId,omitempty"`
	MessageID      *uint64 `json:"messageId,omitempty"`
	ConversationID *uint64 `json:"conversationId,omitempty"`
	CreatedBy      Creator `json:"createdBy"`
}

// QueueStatsDTO 队列运行状态
type QueueStatsDTO struct {
	Queue   string `json:"queue"`
	Pending int64  `json:"pending"`
	Delayed int64  `json:"delayed"`
	Failed  int64  `json:"failed"`
	Length  int64  `json:"length"`
}

// FailedJobDTO 重试耗尽的任务
type FailedJobDTO struct {
	ID        string `json:"id"`
	Name      string `json:"name"`
	Payload   string `json:"payload"`
	Attempts  int    `json:"attempts"`
	LastError string `json:"lastError"`
	FailedAt  string `json:"failedAt"`
}
