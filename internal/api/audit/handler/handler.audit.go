// Package audithdl - handler nhật ký thao tác.
package audithdl

import (
	"fmt"

	"github.com/gofiber/fiber/v3"

	auditdto "qced_directory/internal/api/audit/dto"
	auditsvc "qced_directory/internal/api/audit/service"
	basehdl "qced_directory/internal/api/base/handler"
	"qced_directory/internal/common"
)

// AuditHandler xử lý các route /audit
type AuditHandler struct {
	auditService *auditsvc.AuditService
}

// NewAuditHandler tạo mới AuditHandler
func NewAuditHandler() (*AuditHandler, error) {
	auditService, err := auditsvc.GetAuditService()
	if err != nil {
		return nil, fmt.Errorf("failed to create audit service: %v", err)
	}
	return &AuditHandler{auditService: auditService}, nil
}

// ParseFilter đọc và validate tham số lọc từ query string
func ParseFilter(c fiber.Ctx) (auditdto.AuditFilterInput, error) {
	var input auditdto.AuditFilterInput
	if err := c.Bind().Query(&input); err != nil {
		return input, common.ErrInvalidFormat
	}
	return input, basehdl.ValidateInput(&input)
}

// HandleList GET /audit
func (h *AuditHandler) HandleList(c fiber.Ctx) error {
	return basehdl.SafeHandler(c, func() error {
		input, err := ParseFilter(c)
		if err != nil {
			return basehdl.HandleErrorResponse(c, err)
		}
		page, limit := basehdl.ParsePagination(c)
		result, err := h.auditService.List(c.Context(), input, page, limit)
		return basehdl.HandleResponse(c, result, err)
	})
}

// HandleGet GET /audit/:id
func (h *AuditHandler) HandleGet(c fiber.Ctx) error {
	return basehdl.SafeHandler(c, func() error {
		id, err := basehdl.ParamObjectID(c, "id")
		if err != nil {
			return basehdl.HandleErrorResponse(c, err)
		}
		entry, err := h.auditService.FindOneById(c.Context(), id)
		return basehdl.HandleResponse(c, entry, err)
	})
}
