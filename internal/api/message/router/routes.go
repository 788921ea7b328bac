// Package router đăng ký các route của domain message.
package router

import (
	"fmt"

	"github.com/gofiber/fiber/v3"

	authsvc "qced_directory/internal/api/auth/service"
	messagehdl "qced_directory/internal/api/message/handler"
	"qced_directory/internal/api/middleware"
)

// Register đăng ký route /messages. Các path tĩnh phải đứng trước /:id.
func Register(api fiber.Router) error {
	h, err := messagehdl.NewMessageHandler()
	if err != nil {
		return fmt.Errorf("failed to create message handler: %w", err)
	}
	auth := middleware.AuthMiddleware(authsvc.PermMessageSend)
	group := api.Group("/messages")
	group.Get("/", auth, h.HandleConversations)
	group.Post("/", auth, h.HandleSend)
	group.Get("/unread", auth, h.HandleUnread)
	group.Post("/read", auth, h.HandleMarkManyRead)
	group.Get("/user/:id", auth, h.HandleThreadWithUser)
	group.Get("/conversations/:conversationId", auth, h.HandleThread)
	group.Get("/:id", auth, h.HandleGet)
	group.Post("/:id/read", auth, h.HandleMarkRead)
	group.Delete("/:id", auth, h.HandleDelete)
	return nil
}
