// Package messagehdl - handler tin nhắn nội bộ.
package messagehdl

import (
	"fmt"

	"github.com/gofiber/fiber/v3"

	auditmodels "qced_directory/internal/api/audit/models"
	auditsvc "qced_directory/internal/api/audit/service"
	basehdl "qced_directory/internal/api/base/handler"
	empmodels "qced_directory/internal/api/employee/models"
	messagedto "qced_directory/internal/api/message/dto"
	messagesvc "qced_directory/internal/api/message/service"
	"qced_directory/internal/api/middleware"
	"qced_directory/internal/common"
)

const targetType = "message"

// MessageHandler xử lý các route /messages
type MessageHandler struct {
	messageService *messagesvc.MessageService
}

// NewMessageHandler tạo mới MessageHandler
func NewMessageHandler() (*MessageHandler, error) {
	messageService, err := messagesvc.NewMessageService()
	if err != nil {
		return nil, fmt.Errorf("failed to create message service: %v", err)
	}
	return &MessageHandler{messageService: messageService}, nil
}

func currentUser(c fiber.Ctx) (empmodels.Employee, error) {
	user, ok := middleware.CurrentUser(c)
	if !ok {
		return user, common.ErrTokenInvalid
	}
	return user, nil
}

// HandleSend POST /messages
func (h *MessageHandler) HandleSend(c fiber.Ctx) error {
	return basehdl.SafeHandler(c, func() error {
		user, err := currentUser(c)
		if err != nil {
			return basehdl.HandleErrorResponse(c, err)
		}
		var input messagedto.SendInput
		if err := basehdl.ParseRequestBody(c, &input); err != nil {
			return basehdl.HandleErrorResponse(c, err)
		}
		msg, err := h.messageService.Send(c.Context(), &input, user)
		return basehdl.HandleCreated(c, msg, err)
	})
}

// HandleConversations GET /messages
func (h *MessageHandler) HandleConversations(c fiber.Ctx) error {
	return basehdl.SafeHandler(c, func() error {
		user, err := currentUser(c)
		if err != nil {
			return basehdl.HandleErrorResponse(c, err)
		}
		summaries, err := h.messageService.Conversations(c.Context(), user)
		return basehdl.HandleResponse(c, summaries, err)
	})
}

// HandleUnread GET /messages/unread?since=<ms>
func (h *MessageHandler) HandleUnread(c fiber.Ctx) error {
	return basehdl.SafeHandler(c, func() error {
		user, err := currentUser(c)
		if err != nil {
			return basehdl.HandleErrorResponse(c, err)
		}
		counts, err := h.messageService.Unread(c.Context(), user.ID, user.Role, basehdl.QueryInt64(c, "since", 0))
		return basehdl.HandleResponse(c, counts, err)
	})
}

// HandleThreadWithUser GET /messages/user/:id?before=&limit=
func (h *MessageHandler) HandleThreadWithUser(c fiber.Ctx) error {
	return basehdl.SafeHandler(c, func() error {
		user, err := currentUser(c)
		if err != nil {
			return basehdl.HandleErrorResponse(c, err)
		}
		otherID, err := basehdl.ParamObjectID(c, "id")
		if err != nil {
			return basehdl.HandleErrorResponse(c, err)
		}
		messages, err := h.messageService.ThreadWithUser(c.Context(), user, otherID,
			basehdl.QueryInt64(c, "before", 0), basehdl.QueryInt64(c, "limit", 50))
		return basehdl.HandleResponse(c, messages, err)
	})
}

// HandleThread GET /messages/conversations/:conversationId?before=&limit=
func (h *MessageHandler) HandleThread(c fiber.Ctx) error {
	return basehdl.SafeHandler(c, func() error {
		user, err := currentUser(c)
		if err != nil {
			return basehdl.HandleErrorResponse(c, err)
		}
		messages, err := h.messageService.ThreadByConversation(c.Context(), user, c.Params("conversationId"),
			basehdl.QueryInt64(c, "before", 0), basehdl.QueryInt64(c, "limit", 50))
		return basehdl.HandleResponse(c, messages, err)
	})
}

// HandleGet GET /messages/:id
func (h *MessageHandler) HandleGet(c fiber.Ctx) error {
	return basehdl.SafeHandler(c, func() error {
		user, err := currentUser(c)
		if err != nil {
			return basehdl.HandleErrorResponse(c, err)
		}
		id, err := basehdl.ParamObjectID(c, "id")
		if err != nil {
			return basehdl.HandleErrorResponse(c, err)
		}
		msg, err := h.messageService.Get(c.Context(), id, user)
		return basehdl.HandleResponse(c, msg, err)
	})
}

// HandleMarkRead POST /messages/:id/read
func (h *MessageHandler) HandleMarkRead(c fiber.Ctx) error {
	return basehdl.SafeHandler(c, func() error {
		user, err := currentUser(c)
		if err != nil {
			return basehdl.HandleErrorResponse(c, err)
		}
		id, err := basehdl.ParamObjectID(c, "id")
		if err != nil {
			return basehdl.HandleErrorResponse(c, err)
		}
		msg, err := h.messageService.MarkRead(c.Context(), id, user)
		return basehdl.HandleResponse(c, msg, err)
	})
}

// HandleMarkManyRead POST /messages/read {conversationId? | messageIds?}
func (h *MessageHandler) HandleMarkManyRead(c fiber.Ctx) error {
	return basehdl.SafeHandler(c, func() error {
		user, err := currentUser(c)
		if err != nil {
			return basehdl.HandleErrorResponse(c, err)
		}
		var input messagedto.ReadInput
		if err := basehdl.ParseRequestBody(c, &input); err != nil {
			return basehdl.HandleErrorResponse(c, err)
		}
		modified, err := h.messageService.MarkManyRead(c.Context(), &input, user)
		if err != nil {
			return basehdl.HandleErrorResponse(c, err)
		}
		counts, err := h.messageService.Unread(c.Context(), user.ID, user.Role, 0)
		return basehdl.HandleResponse(c, fiber.Map{"modified": modified, "unread": counts}, err)
	})
}

// HandleDelete DELETE /messages/:id
func (h *MessageHandler) HandleDelete(c fiber.Ctx) error {
	return basehdl.SafeHandler(c, func() error {
		user, err := currentUser(c)
		if err != nil {
			return basehdl.HandleErrorResponse(c, err)
		}
		id, err := basehdl.ParamObjectID(c, "id")
		if err != nil {
			return basehdl.HandleErrorResponse(c, err)
		}
		if err := h.messageService.Delete(c.Context(), id, user); err != nil {
			return basehdl.HandleErrorResponse(c, err)
		}
		auditsvc.Record(c, auditmodels.ActionDelete, targetType, id.Hex(), nil)
		return basehdl.HandleResponse(c, fiber.Map{"id": id.Hex()}, nil)
	})
}
