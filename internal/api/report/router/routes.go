// Package router đăng ký các route của domain report.
package router

import (
	"fmt"

	"github.com/gofiber/fiber/v3"

	authsvc "qced_directory/internal/api/auth/service"
	"qced_directory/internal/api/middleware"
	reporthdl "qced_directory/internal/api/report/handler"
)

// Register đăng ký route /reports
func Register(api fiber.Router) error {
	h, err := reporthdl.NewReportHandler()
	if err != nil {
		return fmt.Errorf("failed to create report handler: %w", err)
	}
	api.Get("/reports/:type", middleware.AuthMiddleware(authsvc.PermReportRead), h.HandleReport)
	return nil
}
