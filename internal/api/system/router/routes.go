// Package router đăng ký các route của domain system.
package router

import (
	"github.com/gofiber/fiber/v3"

	systemhdl "qced_directory/internal/api/system/handler"
)

// Register đăng ký route /system (không cần đăng nhập)
func Register(api fiber.Router) error {
	h := systemhdl.NewSystemHandler(nil)
	api.Get("/system/health", h.HandleHealth)
	return nil
}
