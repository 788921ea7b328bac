// Package models - model tin nhắn nội bộ (Message) và tóm tắt hội thoại.
package models

import (
	"go.mongodb.org/mongo-driver/bson/primitive"

	empmodels "qced_directory/internal/api/employee/models"
)

// Loại hội thoại
const (
	KindDirect = "dm"
	KindRole   = "role"
)

// Message là một tin nhắn trong hội thoại.
// Hội thoại trực tiếp: dm:<hexNhỏ>:<hexLớn>. Hội thoại gửi role: role:<role>:<hexNhânViên>.
type Message struct {
	ID             primitive.ObjectID   `json:"id,omitempty" bson:"_id,omitempty"`
	ConversationID string               `json:"conversationId" bson:"conversationId" index:"single;compound:conversation_created"`
	Sender         primitive.ObjectID   `json:"sender" bson:"sender" index:"single"`
	SenderName     string               `json:"senderName,omitempty" bson:"senderName,omitempty"`
	Participants   []primitive.ObjectID `json:"participants" bson:"participants" index:"single"`
	Recipient      *primitive.ObjectID  `json:"recipient,omitempty" bson:"recipient,omitempty"`
	ToRole         string               `json:"toRole,omitempty" bson:"toRole,omitempty" index:"single"`
	Text           string               `json:"text" bson:"text"`
	ClientTempID   string               `json:"clientTempId,omitempty" bson:"-"`
	ReadBy         []primitive.ObjectID `json:"readBy" bson:"readBy"`
	CreatedAt      int64                `json:"createdAt" bson:"createdAt" index:"compound:conversation_created,order:-1"`
	UpdatedAt      int64                `json:"updatedAt" bson:"updatedAt"`
	DeletedAt      int64                `json:"deletedAt,omitempty" bson:"deletedAt,omitempty"`
}

// IsReadBy kiểm tra user đã đọc tin nhắn
func (m *Message) IsReadBy(userID primitive.ObjectID) bool {
	for _, id := range m.ReadBy {
		if id == userID {
			return true
		}
	}
	return false
}

// HasParticipant kiểm tra user là thành viên hội thoại
func (m *Message) HasParticipant(userID primitive.ObjectID) bool {
	for _, id := range m.Participants {
		if id == userID {
			return true
		}
	}
	return false
}

// ConversationSummary là một dòng trong danh sách hội thoại
type ConversationSummary struct {
	ConversationID string                     `json:"conversationId"`
	Kind           string                     `json:"kind"`
	Role           string                     `json:"role,omitempty"`
	Counterpart    *empmodels.EmployeeSummary `json:"counterpart,omitempty"`
	LastMessage    Message                    `json:"lastMessage"`
	UnreadCount    int64                      `json:"unreadCount"`
}

// UnreadCounts là số tin chưa đọc theo hội thoại
type UnreadCounts struct {
	Total         int64            `json:"total"`
	Conversations map[string]int64 `json:"conversations"`
}
