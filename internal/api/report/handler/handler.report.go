// Package reporthdl - handler báo cáo.
package reporthdl

import (
	"fmt"
	"time"

	"github.com/gofiber/fiber/v3"

	auditmodels "qced_directory/internal/api/audit/models"
	auditsvc "qced_directory/internal/api/audit/service"
	basehdl "qced_directory/internal/api/base/handler"
	"qced_directory/internal/api/middleware"
	reportdto "qced_directory/internal/api/report/dto"
	reportsvc "qced_directory/internal/api/report/service"
	"qced_directory/internal/common"
	"qced_directory/internal/utility"
)

// ReportHandler xử lý route /reports/:type
type ReportHandler struct {
	reportService *reportsvc.ReportService
}

// NewReportHandler tạo mới ReportHandler
func NewReportHandler() (*ReportHandler, error) {
	reportService, err := reportsvc.GetReportService()
	if err != nil {
		return nil, fmt.Errorf("failed to create report service: %v", err)
	}
	return &ReportHandler{reportService: reportService}, nil
}

// HandleReport GET /reports/:type?format=json|xlsx
func (h *ReportHandler) HandleReport(c fiber.Ctx) error {
	return basehdl.SafeHandler(c, func() error {
		user, ok := middleware.CurrentUser(c)
		if !ok {
			return basehdl.HandleErrorResponse(c, common.ErrTokenInvalid)
		}
		var query reportdto.ReportQuery
		if err := c.Bind().Query(&query); err != nil {
			return basehdl.HandleErrorResponse(c, common.ErrInvalidFormat)
		}
		if err := basehdl.ValidateInput(&query); err != nil {
			return basehdl.HandleErrorResponse(c, err)
		}

		kind := c.Params("type")
		report, err := h.reportService.Generate(c.Context(), kind, query, user)
		if err != nil {
			return basehdl.HandleErrorResponse(c, err)
		}
		auditsvc.Record(c, auditmodels.ActionReport, "report", kind, map[string]interface{}{"format": query.Format, "params": report.Params})

		if query.Format != "xlsx" {
			return basehdl.HandleResponse(c, report, nil)
		}
		content, err := utility.WriteXLSX(reportsvc.BuildSheet(report))
		if err != nil {
			return basehdl.HandleErrorResponse(c, err)
		}
		filename := fmt.Sprintf("report-%s-%s.xlsx", kind, time.Now().UTC().Format("20060102"))
		c.Set(fiber.HeaderContentType, "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet")
		c.Set(fiber.HeaderContentDisposition, fmt.Sprintf(`attachment; filename="%s"`, filename))
		return c.Send(content)
	})
}
