// Package departmenthdl - handler phòng ban.
package departmenthdl

import (
	"fmt"

	"github.com/gofiber/fiber/v3"

	auditmodels "qced_directory/internal/api/audit/models"
	auditsvc "qced_directory/internal/api/audit/service"
	basehdl "qced_directory/internal/api/base/handler"
	departmentdto "qced_directory/internal/api/department/dto"
	departmentsvc "qced_directory/internal/api/department/service"
	empmodels "qced_directory/internal/api/employee/models"
	"qced_directory/internal/logger"
)

const targetType = "department"

// DepartmentHandler xử lý các route /departments
type DepartmentHandler struct {
	departmentService *departmentsvc.DepartmentService
}

// NewDepartmentHandler tạo mới DepartmentHandler
func NewDepartmentHandler() (*DepartmentHandler, error) {
	departmentService, err := departmentsvc.NewDepartmentService()
	if err != nil {
		return nil, fmt.Errorf("failed to create department service: %v", err)
	}
	return &DepartmentHandler{departmentService: departmentService}, nil
}

// HandleList GET /departments?tree=true&level=&isActive=&q=
func (h *DepartmentHandler) HandleList(c fiber.Ctx) error {
	return basehdl.SafeHandler(c, func() error {
		if tree := basehdl.QueryBool(c, "tree"); tree != nil && *tree {
			nodes, err := h.departmentService.Tree(c.Context())
			return basehdl.HandleResponse(c, nodes, err)
		}
		departments, err := h.departmentService.List(c.Context(), c.Query("level"), basehdl.QueryBool(c, "isActive"), c.Query("q"))
		return basehdl.HandleResponse(c, departments, err)
	})
}

// HandleGet GET /departments/:id
func (h *DepartmentHandler) HandleGet(c fiber.Ctx) error {
	return basehdl.SafeHandler(c, func() error {
		id, err := basehdl.ParamObjectID(c, "id")
		if err != nil {
			return basehdl.HandleErrorResponse(c, err)
		}
		dept, err := h.departmentService.FindOneById(c.Context(), id)
		return basehdl.HandleResponse(c, dept, err)
	})
}

// HandleCreate POST /departments
func (h *DepartmentHandler) HandleCreate(c fiber.Ctx) error {
	return basehdl.SafeHandler(c, func() error {
		var input departmentdto.DepartmentCreateInput
		if err := basehdl.ParseRequestBody(c, &input); err != nil {
			return basehdl.HandleErrorResponse(c, err)
		}
		dept, err := h.departmentService.Create(c.Context(), &input)
		if err != nil {
			return basehdl.HandleErrorResponse(c, err)
		}
		auditsvc.Record(c, auditmodels.ActionCreate, targetType, dept.ID.Hex(), map[string]interface{}{"name": dept.Name, "level": dept.Level})
		logger.LogCRUD("create", targetType, dept.ID.Hex(), c, nil)
		return basehdl.HandleCreated(c, dept, nil)
	})
}

// HandleUpdate PUT /departments/:id
func (h *DepartmentHandler) HandleUpdate(c fiber.Ctx) error {
	return basehdl.SafeHandler(c, func() error {
		id, err := basehdl.ParamObjectID(c, "id")
		if err != nil {
			return basehdl.HandleErrorResponse(c, err)
		}
		var input departmentdto.DepartmentUpdateInput
		if err := basehdl.ParseRequestBody(c, &input); err != nil {
			return basehdl.HandleErrorResponse(c, err)
		}
		dept, err := h.departmentService.Update(c.Context(), id, &input)
		if err != nil {
			return basehdl.HandleErrorResponse(c, err)
		}
		auditsvc.Record(c, auditmodels.ActionUpdate, targetType, id.Hex(), nil)
		return basehdl.HandleResponse(c, dept, nil)
	})
}

// HandleDelete DELETE /departments/:id (bị từ chối khi còn tham chiếu)
func (h *DepartmentHandler) HandleDelete(c fiber.Ctx) error {
	return basehdl.SafeHandler(c, func() error {
		id, err := basehdl.ParamObjectID(c, "id")
		if err != nil {
			return basehdl.HandleErrorResponse(c, err)
		}
		if err := h.departmentService.DeleteById(c.Context(), id); err != nil {
			return basehdl.HandleErrorResponse(c, err)
		}
		auditsvc.Record(c, auditmodels.ActionDelete, targetType, id.Hex(), nil)
		logger.LogCRUD("delete", targetType, id.Hex(), c, nil)
		return basehdl.HandleResponse(c, fiber.Map{"id": id.Hex()}, nil)
	})
}

// HandleEmployees GET /departments/:id/employees
func (h *DepartmentHandler) HandleEmployees(c fiber.Ctx) error {
	return basehdl.SafeHandler(c, func() error {
		id, err := basehdl.ParamObjectID(c, "id")
		if err != nil {
			return basehdl.HandleErrorResponse(c, err)
		}
		staff := basehdl.CurrentRole(c) == empmodels.RoleAdmin || basehdl.CurrentRole(c) == empmodels.RoleHR
		employees, err := h.departmentService.Employees(c.Context(), id, !staff)
		if err != nil {
			return basehdl.HandleErrorResponse(c, err)
		}
		if !staff {
			for i := range employees {
				employees[i] = employees[i].Public()
			}
		}
		return basehdl.HandleResponse(c, employees, nil)
	})
}
