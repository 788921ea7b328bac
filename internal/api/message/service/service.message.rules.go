package messagesvc

import (
	"strings"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"

	empmodels "qced_directory/internal/api/employee/models"
	models "qced_directory/internal/api/message/models"
	"qced_directory/internal/common"
)

// Conversation là hội thoại đã được phân tích từ conversationId
type Conversation struct {
	ID      string
	Kind    string
	Members []primitive.ObjectID // dm: hai người; role: nhân viên đã mở hội thoại
	Role    string
}

var errInvalidConversation = common.NewError(common.ErrCodeValidationFormat, "Invalid conversation id", common.StatusBadRequest, nil)

// DirectConversationID dựng id hội thoại trực tiếp, hex nhỏ hơn đứng trước
func DirectConversationID(a, b primitive.ObjectID) string {
	low, high := a.Hex(), b.Hex()
	if high < low {
		low, high = high, low
	}
	return models.KindDirect + ":" + low + ":" + high
}

// RoleConversationID dựng id hội thoại giữa nhân viên và một role
func RoleConversationID(role string, employee primitive.ObjectID) string {
	return models.KindRole + ":" + role + ":" + employee.Hex()
}

// ParseConversationID phân tích conversationId
func ParseConversationID(id string) (Conversation, error) {
	parts := strings.Split(id, ":")
	if len(parts) != 3 {
		return Conversation{}, errInvalidConversation
	}
	switch parts[0] {
	case models.KindDirect:
		a, errA := primitive.ObjectIDFromHex(parts[1])
		b, errB := primitive.ObjectIDFromHex(parts[2])
		if errA != nil || errB != nil || a == b || DirectConversationID(a, b) != id {
			return Conversation{}, errInvalidConversation
		}
		return Conversation{ID: id, Kind: models.KindDirect, Members: []primitive.ObjectID{a, b}}, nil
	case models.KindRole:
		if !IsRoleTarget(parts[1]) {
			return Conversation{}, errInvalidConversation
		}
		emp, err := primitive.ObjectIDFromHex(parts[2])
		if err != nil {
			return Conversation{}, errInvalidConversation
		}
		return Conversation{ID: id, Kind: models.KindRole, Members: []primitive.ObjectID{emp}, Role: parts[1]}, nil
	}
	return Conversation{}, errInvalidConversation
}

// IsRoleTarget: chỉ hr và admin nhận tin nhắn theo role
func IsRoleTarget(role string) bool {
	return role == empmodels.RoleHR || role == empmodels.RoleAdmin
}

// CanAccess kiểm tra user được xem hội thoại: thành viên, hoặc người giữ role của hội thoại role
func (c Conversation) CanAccess(userID primitive.ObjectID, role string) bool {
	for _, m := range c.Members {
		if m == userID {
			return true
		}
	}
	return c.Kind == models.KindRole && c.Role == role
}

// Other trả về người còn lại của hội thoại trực tiếp
func (c Conversation) Other(userID primitive.ObjectID) primitive.ObjectID {
	for _, m := range c.Members {
		if m != userID {
			return m
		}
	}
	return primitive.NilObjectID
}

// CanAccessMessage kiểm tra user được xem tin nhắn
func CanAccessMessage(msg *models.Message, userID primitive.ObjectID, role string) bool {
	if msg.HasParticipant(userID) || msg.Sender == userID {
		return true
	}
	return msg.ToRole != "" && msg.ToRole == role
}

// CanDeleteMessage: chỉ người gửi hoặc admin, admin không cần là thành viên hội thoại
func CanDeleteMessage(msg *models.Message, userID primitive.ObjectID, role string) bool {
	return msg.Sender == userID || role == empmodels.RoleAdmin
}

// NeedsRoleAlert: chỉ báo Telegram khi chính nhân viên của hội thoại role gửi, staff trả lời thì không
func NeedsRoleAlert(msg *models.Message) bool {
	if msg.ToRole == "" {
		return false
	}
	conv, err := ParseConversationID(msg.ConversationID)
	if err != nil || conv.Kind != models.KindRole {
		return false
	}
	return conv.Members[0] == msg.Sender
}

// IsAddressee: user là người nhận (thành viên hoặc giữ toRole) và không phải người gửi
func IsAddressee(msg *models.Message, userID primitive.ObjectID, role string) bool {
	if msg.Sender == userID {
		return false
	}
	return msg.HasParticipant(userID) || (msg.ToRole != "" && msg.ToRole == role)
}

// VisibleFilter là filter các tin nhắn chưa xóa mà user được xem
func VisibleFilter(userID primitive.ObjectID, role string) bson.M {
	or := bson.A{bson.M{"participants": userID}}
	if IsRoleTarget(role) {
		or = append(or, bson.M{"toRole": role})
	}
	return bson.M{"deletedAt": bson.M{"$exists": false}, "$or": or}
}

// UnreadFilter là filter tin nhắn chưa đọc của user; since > 0 chỉ tính tin sau mốc đó
func UnreadFilter(userID primitive.ObjectID, role string, since int64) bson.M {
	filter := VisibleFilter(userID, role)
	filter["sender"] = bson.M{"$ne": userID}
	filter["readBy"] = bson.M{"$ne": userID}
	if since > 0 {
		filter["createdAt"] = bson.M{"$gt": since}
	}
	return filter
}

// ClampLimit giới hạn số tin nhắn mỗi lần tải
func ClampLimit(limit int64) int64 {
	if limit <= 0 {
		return 50
	}
	if limit > 200 {
		return 200
	}
	return limit
}

// MergeParticipants thêm id vào danh sách nếu chưa có
func MergeParticipants(list []primitive.ObjectID, ids ...primitive.ObjectID) []primitive.ObjectID {
	out := append([]primitive.ObjectID{}, list...)
	for _, id := range ids {
		found := false
		for _, existing := range out {
			if existing == id {
				found = true
				break
			}
		}
		if !found {
			out = append(out, id)
		}
	}
	return out
}
