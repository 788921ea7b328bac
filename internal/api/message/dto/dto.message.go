package messagedto

// SendInput đầu vào gửi tin nhắn. Cần đúng một trong recipientId, toRole, conversationId.
type SendInput struct {
	RecipientID    string `json:"recipientId" validate:"omitempty,object_id"`
	ToRole         string `json:"toRole" validate:"omitempty,oneof=hr admin"`
	ConversationID string `json:"conversationId" validate:"omitempty,max=80"`
	Text           string `json:"text" validate:"required,min=1,max=2000,no_xss"`
	ClientTempID   string `json:"clientTempId" validate:"omitempty,max=100"`
}

// ReadInput đầu vào đánh dấu đã đọc. Body rỗng nghĩa là đọc tất cả.
type ReadInput struct {
	ConversationID string   `json:"conversationId" validate:"omitempty,max=80"`
	MessageIDs     []string `json:"messageIds" validate:"omitempty,max=500,dive,object_id"`
}
