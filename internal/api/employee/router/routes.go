// Package router đăng ký các route của domain employee.
package router

import (
	"fmt"

	"github.com/gofiber/fiber/v3"

	authsvc "qced_directory/internal/api/auth/service"
	employeehdl "qced_directory/internal/api/employee/handler"
	"qced_directory/internal/api/middleware"
)

// Register đăng ký route /employees. Các path tĩnh phải đứng trước /:id.
func Register(api fiber.Router) error {
	h, err := employeehdl.NewEmployeeHandler()
	if err != nil {
		return fmt.Errorf("failed to create employee handler: %w", err)
	}
	group := api.Group("/employees")
	group.Get("/me", middleware.AuthMiddleware(""), h.HandleGetMe)
	group.Put("/me", middleware.AuthMiddleware(""), h.HandleUpdateMe)
	group.Post("/bulk", middleware.AuthMiddleware(authsvc.PermEmployeeBulk), h.HandleBulk)
	group.Get("/team", middleware.AuthMiddleware(authsvc.PermEmployeeTeam), h.HandleTeam)
	group.Get("/export", middleware.AuthMiddleware(authsvc.PermEmployeeExport), h.HandleExport)

	group.Get("/", middleware.AuthMiddleware(authsvc.PermEmployeeRead), h.HandleList)
	group.Post("/", middleware.AuthMiddleware(authsvc.PermEmployeeCreate), h.HandleCreate)
	group.Get("/:id", middleware.AuthMiddleware(authsvc.PermEmployeeRead), h.HandleGet)
	group.Put("/:id", middleware.AuthMiddleware(authsvc.PermEmployeeUpdate), h.HandleUpdate)
	group.Delete("/:id", middleware.AuthMiddleware(authsvc.PermEmployeeDelete), h.HandleDelete)
	return nil
}
