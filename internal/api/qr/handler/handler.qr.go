// Package qrhdl - handler sinh mã QR.
package qrhdl

import (
	"fmt"
	"strings"

	"github.com/gofiber/fiber/v3"

	auditmodels "qced_directory/internal/api/audit/models"
	auditsvc "qced_directory/internal/api/audit/service"
	basehdl "qced_directory/internal/api/base/handler"
	"qced_directory/internal/api/middleware"
	qrsvc "qced_directory/internal/api/qr/service"
	"qced_directory/internal/common"
)

// QRHandler xử lý route /qr/:type/:id
type QRHandler struct {
	qrService *qrsvc.QRService
}

// NewQRHandler tạo mới QRHandler
func NewQRHandler() (*QRHandler, error) {
	qrService, err := qrsvc.NewQRService()
	if err != nil {
		return nil, fmt.Errorf("failed to create qr service: %v", err)
	}
	return &QRHandler{qrService: qrService}, nil
}

// HandleGenerate GET /qr/:type/:id?format=png|json&size=256&content=vcard|url
func (h *QRHandler) HandleGenerate(c fiber.Ctx) error {
	return basehdl.SafeHandler(c, func() error {
		user, ok := middleware.CurrentUser(c)
		if !ok {
			return basehdl.HandleErrorResponse(c, common.ErrTokenInvalid)
		}
		kind := strings.ToLower(c.Params("type"))
		id, err := basehdl.ParamObjectID(c, "id")
		if err != nil {
			return basehdl.HandleErrorResponse(c, err)
		}
		format := strings.ToLower(c.Query("format", "png"))
		if format != "png" && format != "json" {
			return basehdl.HandleErrorResponse(c, common.NewError(common.ErrCodeValidationInput, "format must be png or json", common.StatusBadRequest, nil))
		}
		size := int(basehdl.QueryInt64(c, "size", qrsvc.DefaultSize))

		payload, err := h.qrService.Payload(c.Context(), kind, id, strings.ToLower(c.Query("content")), user)
		if err != nil {
			return basehdl.HandleErrorResponse(c, err)
		}
		png, err := qrsvc.EncodePNG(payload, size)
		if err != nil {
			return basehdl.HandleErrorResponse(c, err)
		}
		auditsvc.Record(c, auditmodels.ActionGenerateQR, kind, id.Hex(), map[string]interface{}{"format": format})

		if format == "json" {
			return basehdl.HandleResponse(c, qrsvc.NewResult(kind, id.Hex(), payload, png, size), nil)
		}
		c.Set(fiber.HeaderContentType, "image/png")
		c.Set(fiber.HeaderContentDisposition, fmt.Sprintf(`inline; filename="qr-%s-%s.png"`, kind, id.Hex()))
		return c.Send(png)
	})
}
