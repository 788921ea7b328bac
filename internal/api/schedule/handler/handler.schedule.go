// Package schedulehdl - handler lịch làm việc.
package schedulehdl

import (
	"fmt"

	"github.com/gofiber/fiber/v3"

	auditmodels "qced_directory/internal/api/audit/models"
	auditsvc "qced_directory/internal/api/audit/service"
	basehdl "qced_directory/internal/api/base/handler"
	empmodels "qced_directory/internal/api/employee/models"
	"qced_directory/internal/api/middleware"
	scheduledto "qced_directory/internal/api/schedule/dto"
	schedulesvc "qced_directory/internal/api/schedule/service"
	"qced_directory/internal/common"
	"qced_directory/internal/logger"
)

const targetType = "schedule"

// ScheduleHandler xử lý các route /schedules
type ScheduleHandler struct {
	scheduleService *schedulesvc.ScheduleService
}

// NewScheduleHandler tạo mới ScheduleHandler
func NewScheduleHandler() (*ScheduleHandler, error) {
	scheduleService, err := schedulesvc.NewScheduleService()
	if err != nil {
		return nil, fmt.Errorf("failed to create schedule service: %v", err)
	}
	return &ScheduleHandler{scheduleService: scheduleService}, nil
}

func currentUser(c fiber.Ctx) (empmodels.Employee, error) {
	user, ok := middleware.CurrentUser(c)
	if !ok {
		return user, common.ErrTokenInvalid
	}
	return user, nil
}

// HandleList GET /schedules?department=&weekStart=&published=
func (h *ScheduleHandler) HandleList(c fiber.Ctx) error {
	return basehdl.SafeHandler(c, func() error {
		user, err := currentUser(c)
		if err != nil {
			return basehdl.HandleErrorResponse(c, err)
		}
		var query scheduledto.ListQuery
		if err := c.Bind().Query(&query); err != nil {
			return basehdl.HandleErrorResponse(c, common.ErrInvalidFormat)
		}
		if err := basehdl.ValidateInput(&query); err != nil {
			return basehdl.HandleErrorResponse(c, err)
		}
		page, limit := basehdl.ParsePagination(c)
		result, err := h.scheduleService.List(c.Context(), user, query, page, limit)
		return basehdl.HandleResponse(c, result, err)
	})
}

// HandleGet GET /schedules/:id
func (h *ScheduleHandler) HandleGet(c fiber.Ctx) error {
	return basehdl.SafeHandler(c, func() error {
		user, err := currentUser(c)
		if err != nil {
			return basehdl.HandleErrorResponse(c, err)
		}
		id, err := basehdl.ParamObjectID(c, "id")
		if err != nil {
			return basehdl.HandleErrorResponse(c, err)
		}
		schedule, err := h.scheduleService.Get(c.Context(), id, user)
		return basehdl.HandleResponse(c, schedule, err)
	})
}

// HandleCreate POST /schedules
func (h *ScheduleHandler) HandleCreate(c fiber.Ctx) error {
	return basehdl.SafeHandler(c, func() error {
		user, err := currentUser(c)
		if err != nil {
			return basehdl.HandleErrorResponse(c, err)
		}
		var input scheduledto.ScheduleCreateInput
		if err := basehdl.ParseRequestBody(c, &input); err != nil {
			return basehdl.HandleErrorResponse(c, err)
		}
		schedule, err := h.scheduleService.Create(c.Context(), &input, user)
		if err != nil {
			return basehdl.HandleErrorResponse(c, err)
		}
		auditsvc.Record(c, auditmodels.ActionCreate, targetType, schedule.ID.Hex(), map[string]interface{}{
			"department": schedule.Department.Hex(), "weekStart": schedule.WeekStart,
		})
		logger.LogCRUD("create", targetType, schedule.ID.Hex(), c, nil)
		return basehdl.HandleCreated(c, schedule, nil)
	})
}

// HandleUpdate PUT /schedules/:id
func (h *ScheduleHandler) HandleUpdate(c fiber.Ctx) error {
	return basehdl.SafeHandler(c, func() error {
		user, err := currentUser(c)
		if err != nil {
			return basehdl.HandleErrorResponse(c, err)
		}
		id, err := basehdl.ParamObjectID(c, "id")
		if err != nil {
			return basehdl.HandleErrorResponse(c, err)
		}
		var input scheduledto.ScheduleUpdateInput
		if err := basehdl.ParseRequestBody(c, &input); err != nil {
			return basehdl.HandleErrorResponse(c, err)
		}
		schedule, err := h.scheduleService.Update(c.Context(), id, &input, user)
		if err != nil {
			return basehdl.HandleErrorResponse(c, err)
		}
		auditsvc.Record(c, auditmodels.ActionUpdate, targetType, id.Hex(), map[string]interface{}{"version": schedule.Version})
		return basehdl.HandleResponse(c, schedule, nil)
	})
}

// HandlePublish POST /schedules/:id/publish {publish?:bool}
func (h *ScheduleHandler) HandlePublish(c fiber.Ctx) error {
	return basehdl.SafeHandler(c, func() error {
		user, err := currentUser(c)
		if err != nil {
			return basehdl.HandleErrorResponse(c, err)
		}
		id, err := basehdl.ParamObjectID(c, "id")
		if err != nil {
			return basehdl.HandleErrorResponse(c, err)
		}
		var input scheduledto.PublishInput
		if err := basehdl.ParseRequestBody(c, &input); err != nil {
			return basehdl.HandleErrorResponse(c, err)
		}
		publish := input.Publish == nil || *input.Publish
		schedule, err := h.scheduleService.Publish(c.Context(), id, publish, user)
		if err != nil {
			return basehdl.HandleErrorResponse(c, err)
		}
		action := auditmodels.ActionPublish
		if !publish {
			action = auditmodels.ActionUnpublish
		}
		auditsvc.Record(c, action, targetType, id.Hex(), map[string]interface{}{"version": schedule.Version})
		return basehdl.HandleResponse(c, schedule, nil)
	})
}

// HandleHistory GET /schedules/:id/history
func (h *ScheduleHandler) HandleHistory(c fiber.Ctx) error {
	return basehdl.SafeHandler(c, func() error {
		user, err := currentUser(c)
		if err != nil {
			return basehdl.HandleErrorResponse(c, err)
		}
		id, err := basehdl.ParamObjectID(c, "id")
		if err != nil {
			return basehdl.HandleErrorResponse(c, err)
		}
		history, err := h.scheduleService.History(c.Context(), id, user)
		return basehdl.HandleResponse(c, history, err)
	})
}

// HandleDelete DELETE /schedules/:id?force=true
func (h *ScheduleHandler) HandleDelete(c fiber.Ctx) error {
	return basehdl.SafeHandler(c, func() error {
		user, err := currentUser(c)
		if err != nil {
			return basehdl.HandleErrorResponse(c, err)
		}
		id, err := basehdl.ParamObjectID(c, "id")
		if err != nil {
			return basehdl.HandleErrorResponse(c, err)
		}
		force := basehdl.QueryBool(c, "force")
		if err := h.scheduleService.Delete(c.Context(), id, user, force != nil && *force); err != nil {
			return basehdl.HandleErrorResponse(c, err)
		}
		auditsvc.Record(c, auditmodels.ActionDelete, targetType, id.Hex(), nil)
		logger.LogCRUD("delete", targetType, id.Hex(), c, nil)
		return basehdl.HandleResponse(c, fiber.Map{"id": id.Hex()}, nil)
	})
}
