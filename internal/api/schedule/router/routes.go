// Package router đăng ký các route của domain schedule.
package router

import (
	"fmt"

	"github.com/gofiber/fiber/v3"

	authsvc "qced_directory/internal/api/auth/service"
	"qced_directory/internal/api/middleware"
	schedulehdl "qced_directory/internal/api/schedule/handler"
)

// Register đăng ký route /schedules
func Register(api fiber.Router) error {
	h, err := schedulehdl.NewScheduleHandler()
	if err != nil {
		return fmt.Errorf("failed to create schedule handler: %w", err)
	}
	group := api.Group("/schedules")
	group.Get("/", middleware.AuthMiddleware(authsvc.PermScheduleRead), h.HandleList)
	group.Post("/", middleware.AuthMiddleware(authsvc.PermScheduleWrite), h.HandleCreate)
	group.Post("/:id/publish", middleware.AuthMiddleware(authsvc.PermSchedulePublish), h.HandlePublish)
	group.Get("/:id/history", middleware.AuthMiddleware(authsvc.PermScheduleRead), h.HandleHistory)
	group.Get("/:id", middleware.AuthMiddleware(authsvc.PermScheduleRead), h.HandleGet)
	group.Put("/:id", middleware.AuthMiddleware(authsvc.PermScheduleWrite), h.HandleUpdate)
	group.Delete("/:id", middleware.AuthMiddleware(authsvc.PermScheduleWrite), h.HandleDelete)
	return nil
}
