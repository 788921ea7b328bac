// Package router đăng ký các route của domain auth.
package router

import (
	"fmt"

	"github.com/gofiber/fiber/v3"

	authhdl "qced_directory/internal/api/auth/handler"
	"qced_directory/internal/api/middleware"
)

// Register đăng ký route /auth
func Register(api fiber.Router) error {
	h, err := authhdl.NewAuthHandler()
	if err != nil {
		return fmt.Errorf("failed to create auth handler: %w", err)
	}
	group := api.Group("/auth")
	group.Post("/login", h.HandleLogin)
	group.Get("/verify", middleware.AuthMiddleware(""), h.HandleVerify)
	group.Post("/logout", middleware.AuthMiddleware(""), h.HandleLogout)
	group.Put("/password", middleware.AuthMiddleware(""), h.HandleChangePassword)
	return nil
}
