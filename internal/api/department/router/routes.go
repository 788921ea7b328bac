// Package router đăng ký các route của domain department.
package router

import (
	"fmt"

	"github.com/gofiber/fiber/v3"

	authsvc "qced_directory/internal/api/auth/service"
	departmenthdl "qced_directory/internal/api/department/handler"
	"qced_directory/internal/api/middleware"
)

// Register đăng ký route /departments
func Register(api fiber.Router) error {
	h, err := departmenthdl.NewDepartmentHandler()
	if err != nil {
		return fmt.Errorf("failed to create department handler: %w", err)
	}
	group := api.Group("/departments")
	group.Get("/", middleware.AuthMiddleware(authsvc.PermDepartmentRead), h.HandleList)
	group.Post("/", middleware.AuthMiddleware(authsvc.PermDepartmentCreate), h.HandleCreate)
	group.Get("/:id/employees", middleware.AuthMiddleware(authsvc.PermDepartmentRead), h.HandleEmployees)
	group.Get("/:id", middleware.AuthMiddleware(authsvc.PermDepartmentRead), h.HandleGet)
	group.Put("/:id", middleware.AuthMiddleware(authsvc.PermDepartmentUpdate), h.HandleUpdate)
	group.Delete("/:id", middleware.AuthMiddleware(authsvc.PermDepartmentDelete), h.HandleDelete)
	return nil
}
