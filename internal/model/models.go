package model

// All AutoMigrate 使用的全部表
func All() []any {
	return []any{
		&User{},
		&Conversation{},
		&ConversationMember{},
		&Message{},
		&Image{},
		&Notification{},
		&Post{},
		&Like{},
		&Comment{},
		&Major{},
		&ConsultationRequest{},
	}
}
