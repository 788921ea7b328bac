// Package router đăng ký các route của domain audit.
package router

import (
	"fmt"

	"github.com/gofiber/fiber/v3"

	audithdl "qced_directory/internal/api/audit/handler"
	authsvc "qced_directory/internal/api/auth/service"
	"qced_directory/internal/api/middleware"
)

// Register đăng ký route /audit
func Register(api fiber.Router) error {
	auditHandler, err := audithdl.NewAuditHandler()
	if err != nil {
		return fmt.Errorf("failed to create audit handler: %w", err)
	}
	readMiddleware := middleware.AuthMiddleware(authsvc.PermAuditRead)
	api.Get("/audit", readMiddleware, auditHandler.HandleList)
	api.Get("/audit/:id", readMiddleware, auditHandler.HandleGet)
	return nil
}
