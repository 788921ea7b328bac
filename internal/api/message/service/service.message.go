// Package messagesvc - service tin nhắn nội bộ: hội thoại trực tiếp và hội thoại với role (hr/admin),
// trạng thái đã đọc và đẩy sự kiện realtime.
package messagesvc

import (
	"context"
	"fmt"
	"strings"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo/options"

	basesvc "qced_directory/internal/api/base/service"
	empmodels "qced_directory/internal/api/employee/models"
	messagedto "qced_directory/internal/api/message/dto"
	models "qced_directory/internal/api/message/models"
	"qced_directory/internal/common"
	"qced_directory/internal/delivery"
	"qced_directory/internal/global"
	"qced_directory/internal/logger"
	"qced_directory/internal/realtime"
	"qced_directory/internal/utility"
)

var (
	errTarget     = common.NewError(common.ErrCodeValidationInput, "Exactly one of recipientId, toRole or conversationId is required", common.StatusBadRequest, nil)
	errSelf       = common.NewError(common.ErrCodeBusinessOperation, "You cannot send a message to yourself", common.StatusBadRequest, nil)
	errOwnRole    = common.NewError(common.ErrCodeBusinessOperation, "Reply inside the conversation instead of messaging your own role", common.StatusBadRequest, nil)
	errMessageNotFound = common.NewError(common.ErrCodeDatabaseQuery, "Message not found", common.StatusNotFound, nil)
)

// MessageService là service tin nhắn
type MessageService struct {
	*basesvc.BaseServiceMongoImpl[models.Message]
	employeeService *basesvc.BaseServiceMongoImpl[empmodels.Employee]
}

// NewMessageService tạo mới MessageService
func NewMessageService() (*MessageService, error) {
	messageCollection, exist := global.RegistryCollections.Get(global.MongoDB_ColNames.Messages)
	if !exist {
		return nil, fmt.Errorf("failed to get messages collection: %v", common.ErrNotFound)
	}
	employeeCollection, exist := global.RegistryCollections.Get(global.MongoDB_ColNames.Employees)
	if !exist {
		return nil, fmt.Errorf("failed to get employees collection: %v", common.ErrNotFound)
	}
	return &MessageService{
		BaseServiceMongoImpl: basesvc.NewBaseServiceMongo[models.Message](messageCollection),
		employeeService:      basesvc.NewBaseServiceMongo[empmodels.Employee](employeeCollection),
	}, nil
}

// lastParticipants trả về participants của tin nhắn mới nhất trong hội thoại
func (s *MessageService) lastParticipants(ctx context.Context, conversationID string) ([]primitive.ObjectID, error) {
	last, err := s.FindOne(ctx, bson.M{"conversationId": conversationID},
		options.FindOne().SetSort(bson.D{{Key: "createdAt", Value: -1}}).SetProjection(bson.M{"participants": 1}))
	if err != nil {
		if common.StatusOf(err) == common.StatusNotFound {
			return nil, nil
		}
		return nil, err
	}
	return last.Participants, nil
}

func (s *MessageService) activeEmployee(ctx context.Context, id primitive.ObjectID) (empmodels.Employee, error) {
	emp, err := s.employeeService.FindOneById(ctx, id)
	if err != nil {
		if common.StatusOf(err) == common.StatusNotFound {
			return emp, common.NewError(common.ErrCodeValidationInput, "Recipient does not exist", common.StatusBadRequest, map[string]string{"field": "recipientId"})
		}
		return emp, err
	}
	if !emp.IsActive {
		return emp, common.NewError(common.ErrCodeBusinessState, "Recipient account is deactivated", common.StatusBadRequest, map[string]string{"field": "recipientId"})
	}
	return emp, nil
}

// resolve xác định hội thoại, participants, recipient và toRole cho tin nhắn mới
func (s *MessageService) resolve(ctx context.Context, input *messagedto.SendInput, sender empmodels.Employee) (models.Message, error) {
	msg := models.Message{Sender: sender.ID, SenderName: sender.Name}

	targets := 0
	for _, v := range []string{input.RecipientID, input.ToRole, input.ConversationID} {
		if v != "" {
			targets++
		}
	}
	if targets != 1 {
		return msg, errTarget
	}

	switch {
	case input.RecipientID != "":
		recipientID, err := utility.ParseObjectID(input.RecipientID)
		if err != nil {
			return msg, err
		}
		return s.direct(ctx, msg, sender, recipientID)

	case input.ToRole != "":
		if !IsRoleTarget(input.ToRole) {
			return msg, common.NewError(common.ErrCodeValidationInput, "toRole must be hr or admin", common.StatusBadRequest, nil)
		}
		if sender.Role == input.ToRole {
			return msg, errOwnRole
		}
		return s.roleThread(ctx, msg, input.ToRole, sender.ID, sender.ID)
	}

	conv, err := ParseConversationID(input.ConversationID)
	if err != nil {
		return msg, err
	}
	if !conv.CanAccess(sender.ID, sender.Role) {
		return msg, common.ErrForbidden
	}
	if conv.Kind == models.KindDirect {
		return s.direct(ctx, msg, sender, conv.Other(sender.ID))
	}
	return s.roleThread(ctx, msg, conv.Role, conv.Members[0], sender.ID)
}

func (s *MessageService) direct(ctx context.Context, msg models.Message, sender empmodels.Employee, recipientID primitive.ObjectID) (models.Message, error) {
	if recipientID == sender.ID {
		return msg, errSelf
	}
	if _, err := s.activeEmployee(ctx, recipientID); err != nil {
		return msg, err
	}
	msg.ConversationID = DirectConversationID(sender.ID, recipientID)
	msg.Participants = []primitive.ObjectID{sender.ID, recipientID}
	msg.Recipient = &recipientID
	return msg, nil
}

// roleThread: participants là nhân viên mở hội thoại cộng các staff đã trả lời
func (s *MessageService) roleThread(ctx context.Context, msg models.Message, role string, employeeID, senderID primitive.ObjectID) (models.Message, error) {
	msg.ConversationID = RoleConversationID(role, employeeID)
	msg.ToRole = role
	previous, err := s.lastParticipants(ctx, msg.ConversationID)
	if err != nil {
		return msg, err
	}
	msg.Participants = MergeParticipants(previous, employeeID, senderID)
	if senderID != employeeID {
		msg.Recipient = &employeeID
	}
	return msg, nil
}

// Send lưu tin nhắn, đẩy message:new và unread:update, báo Telegram với tin gửi role
func (s *MessageService) Send(ctx context.Context, input *messagedto.SendInput, sender empmodels.Employee) (models.Message, error) {
	text := strings.TrimSpace(input.Text)
	if text == "" {
		return models.Message{}, common.NewError(common.ErrCodeValidationInput, "text is required", common.StatusBadRequest, nil)
	}
	msg, err := s.resolve(ctx, input, sender)
	if err != nil {
		return msg, err
	}
	msg.Text = text
	msg.ReadBy = []primitive.ObjectID{sender.ID}

	created, err := s.InsertOne(ctx, msg)
	if err != nil {
		return created, err
	}
	created.ClientTempID = input.ClientTempID

	rooms := make([]string, 0, len(created.Participants)+1)
	for _, p := range created.Participants {
		rooms = append(rooms, realtime.UserRoom(p.Hex()))
	}
	if created.ToRole != "" {
		rooms = append(rooms, realtime.RoleRoom(created.ToRole))
	}
	realtime.Publish(realtime.EventMessageNew, created, rooms...)

	go utility.GoProtect(func() {
		bg, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		s.pushUnread(bg, s.addressees(bg, created)...)
	})

	if NeedsRoleAlert(&created) {
		alert := fmt.Sprintf("New message for %s from %s (%s):\n%s", strings.ToUpper(created.ToRole), sender.Name, sender.Email, created.Text)
		delivery.Enqueue(delivery.NewJob(delivery.ChannelTelegram, "", "QCED inbox", alert))
	}
	return created, nil
}

// addressees là những người nhận cần cập nhật số chưa đọc
func (s *MessageService) addressees(ctx context.Context, msg models.Message) []empmodels.Employee {
	filter := bson.M{"isActive": true, "_id": bson.M{"$in": msg.Participants, "$ne": msg.Sender}}
	if msg.ToRole != "" {
		filter = bson.M{"isActive": true, "_id": bson.M{"$ne": msg.Sender}, "$or": bson.A{
			bson.M{"_id": bson.M{"$in": msg.Participants}},
			bson.M{"role": msg.ToRole},
		}}
	}
	employees, err := s.employeeService.Find(ctx, filter, options.Find().SetProjection(bson.M{"_id": 1, "role": 1}))
	if err != nil {
		logger.WithModule("message").WithError(err).Warn("Failed to load message addressees")
		return nil
	}
	return employees
}

// pushUnread đẩy số tin chưa đọc mới nhất tới từng nhân viên
func (s *MessageService) pushUnread(ctx context.Context, employees ...empmodels.Employee) {
	for _, emp := range employees {
		counts, err := s.Unread(ctx, emp.ID, emp.Role, 0)
		if err != nil {
			logger.WithModule("message").WithError(err).WithField("user_id", emp.ID.Hex()).Warn("Failed to count unread messages")
			continue
		}
		realtime.Publish(realtime.EventUnreadUpdate, counts, realtime.UserRoom(emp.ID.Hex()))
	}
}

type countRow struct {
	ID    string `bson:"_id"`
	Count int64  `bson:"count"`
}

// Unread đếm tin chưa đọc theo hội thoại. since > 0 chỉ đếm tin mới hơn mốc đó.
func (s *MessageService) Unread(ctx context.Context, userID primitive.ObjectID, role string, since int64) (models.UnreadCounts, error) {
	result := models.UnreadCounts{Conversations: map[string]int64{}}
	var rows []countRow
	pipeline := []bson.M{
		{"$match": UnreadFilter(userID, role, since)},
		{"$group": bson.M{"_id": "$conversationId", "count": bson.M{"$sum": 1}}},
	}
	if err := s.Aggregate(ctx, pipeline, &rows); err != nil {
		return result, err
	}
	for _, r := range rows {
		result.Conversations[r.ID] = r.Count
		result.Total += r.Count
	}
	return result, nil
}

type lastRow struct {
	ID   string         `bson:"_id"`
	Last models.Message `bson:"last"`
}

// Conversations trả về danh sách hội thoại của user: tin cuối, số chưa đọc, người đối diện
func (s *MessageService) Conversations(ctx context.Context, user empmodels.Employee) ([]models.ConversationSummary, error) {
	var rows []lastRow
	pipeline := []bson.M{
		{"$match": VisibleFilter(user.ID, user.Role)},
		{"$sort": bson.D{{Key: "createdAt", Value: -1}}},
		{"$group": bson.M{"_id": "$conversationId", "last": bson.M{"$first": "$$ROOT"}}},
		{"$sort": bson.D{{Key: "last.createdAt", Value: -1}}},
		{"$limit": 200},
	}
	if err := s.Aggregate(ctx, pipeline, &rows); err != nil {
		return nil, err
	}
	unread, err := s.Unread(ctx, user.ID, user.Role, 0)
	if err != nil {
		return nil, err
	}

	summaries := make([]models.ConversationSummary, 0, len(rows))
	counterpartIDs := []primitive.ObjectID{}
	counterpartOf := map[string]primitive.ObjectID{}
	for _, r := range rows {
		conv, err := ParseConversationID(r.ID)
		if err != nil {
			continue
		}
		summary := models.ConversationSummary{
			ConversationID: r.ID,
			Kind:           conv.Kind,
			Role:           conv.Role,
			LastMessage:    r.Last,
			UnreadCount:    unread.Conversations[r.ID],
		}
		// hội thoại role: nhân viên thấy role, staff thấy nhân viên
		if other := conv.Other(user.ID); other != primitive.NilObjectID {
			counterpartOf[r.ID] = other
			counterpartIDs = append(counterpartIDs, other)
		}
		summaries = append(summaries, summary)
	}

	if len(counterpartIDs) > 0 {
		employees, err := s.employeeService.FindManyByIds(ctx, utility.Unique(counterpartIDs))
		if err != nil {
			return nil, err
		}
		byID := make(map[primitive.ObjectID]empmodels.EmployeeSummary, len(employees))
		for i := range employees {
			byID[employees[i].ID] = employees[i].Summary()
		}
		for i := range summaries {
			if id, ok := counterpartOf[summaries[i].ConversationID]; ok {
				if summary, found := byID[id]; found {
					summaries[i].Counterpart = &summary
				}
			}
		}
	}
	return summaries, nil
}

// thread trả về tin nhắn của hội thoại từ cũ đến mới, before > 0 để tải trang trước
func (s *MessageService) thread(ctx context.Context, conversationID string, before, limit int64) ([]models.Message, error) {
	filter := bson.M{"conversationId": conversationID, "deletedAt": bson.M{"$exists": false}}
	if before > 0 {
		filter["createdAt"] = bson.M{"$lt": before}
	}
	messages, err := s.Find(ctx, filter, options.Find().
		SetSort(bson.D{{Key: "createdAt", Value: -1}, {Key: "_id", Value: -1}}).
		SetLimit(ClampLimit(limit)))
	if err != nil {
		return nil, err
	}
	for i, j := 0, len(messages)-1; i < j; i, j = i+1, j-1 {
		messages[i], messages[j] = messages[j], messages[i]
	}
	return messages, nil
}

// ThreadWithUser trả về hội thoại trực tiếp với một nhân viên
func (s *MessageService) ThreadWithUser(ctx context.Context, user empmodels.Employee, otherID primitive.ObjectID, before, limit int64) ([]models.Message, error) {
	if otherID == user.ID {
		return nil, errSelf
	}
	return s.thread(ctx, DirectConversationID(user.ID, otherID), before, limit)
}

// ThreadByConversation trả về hội thoại theo id, kiểm tra quyền truy cập
func (s *MessageService) ThreadByConversation(ctx context.Context, user empmodels.Employee, conversationID string, before, limit int64) ([]models.Message, error) {
	conv, err := ParseConversationID(conversationID)
	if err != nil {
		return nil, err
	}
	if !conv.CanAccess(user.ID, user.Role) {
		return nil, common.ErrForbidden
	}
	return s.thread(ctx, conv.ID, before, limit)
}

// Get lấy một tin nhắn, kiểm tra quyền truy cập
func (s *MessageService) Get(ctx context.Context, id primitive.ObjectID, user empmodels.Employee) (models.Message, error) {
	msg, err := s.load(ctx, id)
	if err != nil {
		return msg, err
	}
	if !CanAccessMessage(&msg, user.ID, user.Role) {
		return msg, common.ErrForbidden
	}
	return msg, nil
}

// load đọc tin nhắn chưa xóa, không kiểm tra quyền
func (s *MessageService) load(ctx context.Context, id primitive.ObjectID) (models.Message, error) {
	msg, err := s.FindOneById(ctx, id)
	if err != nil {
		if common.StatusOf(err) == common.StatusNotFound {
			return msg, errMessageNotFound
		}
		return msg, err
	}
	if msg.DeletedAt > 0 {
		return msg, errMessageNotFound
	}
	return msg, nil
}

// MarkRead đánh dấu một tin nhắn đã đọc
func (s *MessageService) MarkRead(ctx context.Context, id primitive.ObjectID, user empmodels.Employee) (models.Message, error) {
	msg, err := s.Get(ctx, id, user)
	if err != nil {
		return msg, err
	}
	if !IsAddressee(&msg, user.ID, user.Role) || msg.IsReadBy(user.ID) {
		return msg, nil
	}
	msg, err = s.UpdateById(ctx, id, &basesvc.UpdateData{AddToSet: map[string]interface{}{"readBy": user.ID}})
	if err != nil {
		return msg, err
	}
	s.pushUnread(ctx, user)
	return msg, nil
}

// MarkManyRead đánh dấu đã đọc theo hội thoại, theo danh sách id, hoặc tất cả khi cả hai đều rỗng
func (s *MessageService) MarkManyRead(ctx context.Context, input *messagedto.ReadInput, user empmodels.Employee) (int64, error) {
	filter := UnreadFilter(user.ID, user.Role, 0)
	if input.ConversationID != "" {
		conv, err := ParseConversationID(input.ConversationID)
		if err != nil {
			return 0, err
		}
		if !conv.CanAccess(user.ID, user.Role) {
			return 0, common.ErrForbidden
		}
		filter["conversationId"] = conv.ID
	}
	if len(input.MessageIDs) > 0 {
		ids, err := utility.ParseObjectIDs(utility.Unique(input.MessageIDs))
		if err != nil {
			return 0, err
		}
		filter["_id"] = bson.M{"$in": ids}
	}

	modified, err := s.UpdateMany(ctx, filter, &basesvc.UpdateData{AddToSet: map[string]interface{}{"readBy": user.ID}})
	if err != nil {
		return 0, err
	}
	s.pushUnread(ctx, user)
	return modified, nil
}

// Delete xóa mềm tin nhắn. Chỉ người gửi hoặc admin.
func (s *MessageService) Delete(ctx context.Context, id primitive.ObjectID, user empmodels.Employee) error {
	msg, err := s.load(ctx, id)
	if err != nil {
		return err
	}
	if !CanDeleteMessage(&msg, user.ID, user.Role) {
		return common.ErrForbidden
	}
	if _, err := s.UpdateById(ctx, id, bson.M{"deletedAt": time.Now().UnixMilli()}); err != nil {
		return err
	}

	rooms := make([]string, 0, len(msg.Participants)+1)
	for _, p := range msg.Participants {
		rooms = append(rooms, realtime.UserRoom(p.Hex()))
	}
	if msg.ToRole != "" {
		rooms = append(rooms, realtime.RoleRoom(msg.ToRole))
	}
	realtime.Publish(realtime.EventMessageDeleted, map[string]interface{}{
		"id":             id.Hex(),
		"conversationId": msg.ConversationID,
	}, rooms...)

	go utility.GoProtect(func() {
		bg, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		s.pushUnread(bg, s.addressees(bg, msg)...)
	})
	return nil
}
