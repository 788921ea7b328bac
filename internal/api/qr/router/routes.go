// Package router đăng ký các route của domain qr.
package router

import (
	"fmt"

	"github.com/gofiber/fiber/v3"

	authsvc "qced_directory/internal/api/auth/service"
	"qced_directory/internal/api/middleware"
	qrhdl "qced_directory/internal/api/qr/handler"
)

// Register đăng ký route /qr
func Register(api fiber.Router) error {
	h, err := qrhdl.NewQRHandler()
	if err != nil {
		return fmt.Errorf("failed to create qr handler: %w", err)
	}
	api.Get("/qr/:type/:id", middleware.AuthMiddleware(authsvc.PermQRGenerate), h.HandleGenerate)
	return nil
}
