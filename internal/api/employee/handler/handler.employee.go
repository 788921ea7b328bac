// Package employeehdl - handler nhân viên (danh bạ, hồ sơ cá nhân, thao tác hàng loạt, export).
package employeehdl

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/gofiber/fiber/v3"
	"go.mongodb.org/mongo-driver/bson/primitive"

	auditmodels "qced_directory/internal/api/audit/models"
	auditsvc "qced_directory/internal/api/audit/service"
	authsvc "qced_directory/internal/api/auth/service"
	basehdl "qced_directory/internal/api/base/handler"
	employeedto "qced_directory/internal/api/employee/dto"
	models "qced_directory/internal/api/employee/models"
	employeesvc "qced_directory/internal/api/employee/service"
	"qced_directory/internal/api/middleware"
	"qced_directory/internal/common"
	"qced_directory/internal/logger"
	"qced_directory/internal/utility"
)

const targetType = "employee"

// profileUpdater cập nhật hồ sơ cá nhân (phone, avatar)
type profileUpdater interface {
	UpdateMe(ctx context.Context, id primitive.ObjectID, input *employeedto.MeUpdateInput) (models.Employee, error)
}

// passwordChanger đổi mật khẩu sau khi kiểm tra mật khẩu hiện tại
type passwordChanger interface {
	ChangePassword(ctx context.Context, id primitive.ObjectID, currentPassword, newPassword string) (*authsvc.LoginResult, error)
}

// EmployeeHandler xử lý các route /employees
type EmployeeHandler struct {
	employeeService *employeesvc.EmployeeService
	authService     *authsvc.AuthService
	profile         profileUpdater
	passwords       passwordChanger
}

// NewEmployeeHandler tạo mới EmployeeHandler
func NewEmployeeHandler() (*EmployeeHandler, error) {
	employeeService, err := employeesvc.NewEmployeeService()
	if err != nil {
		return nil, fmt.Errorf("failed to create employee service: %v", err)
	}
	authService, err := authsvc.GetAuthService()
	if err != nil {
		return nil, fmt.Errorf("failed to create auth service: %v", err)
	}
	return &EmployeeHandler{
		employeeService: employeeService,
		authService:     authService,
		profile:         employeeService,
		passwords:       authService,
	}, nil
}

func actorOf(c fiber.Ctx) employeesvc.Actor {
	return employeesvc.Actor{ID: basehdl.CurrentUserID(c), Role: basehdl.CurrentRole(c)}
}

func parseListQuery(c fiber.Ctx) (employeedto.ListQuery, error) {
	var query employeedto.ListQuery
	if err := c.Bind().Query(&query); err != nil {
		return query, common.NewError(common.ErrCodeValidationFormat, common.MsgInvalidFormat, common.StatusBadRequest, nil)
	}
	return query, basehdl.ValidateInput(&query)
}

// HandleList GET /employees
func (h *EmployeeHandler) HandleList(c fiber.Ctx) error {
	return basehdl.SafeHandler(c, func() error {
		query, err := parseListQuery(c)
		if err != nil {
			return basehdl.HandleErrorResponse(c, err)
		}
		page, limit := basehdl.ParsePagination(c)
		result, err := h.employeeService.List(c.Context(), query, actorOf(c).IsStaff(), page, limit)
		return basehdl.HandleResponse(c, result, err)
	})
}

// HandleGet GET /employees/:id
func (h *EmployeeHandler) HandleGet(c fiber.Ctx) error {
	return basehdl.SafeHandler(c, func() error {
		id, err := basehdl.ParamObjectID(c, "id")
		if err != nil {
			return basehdl.HandleErrorResponse(c, err)
		}
		emp, err := h.employeeService.FindOneById(c.Context(), id)
		if err != nil {
			return basehdl.HandleErrorResponse(c, err)
		}
		if !actorOf(c).IsStaff() {
			if !emp.IsActive && emp.ID != basehdl.CurrentUserID(c) {
				return basehdl.HandleErrorResponse(c, common.ErrNotFound)
			}
			emp = emp.Public()
		}
		return basehdl.HandleResponse(c, emp, nil)
	})
}

// HandleCreate POST /employees
func (h *EmployeeHandler) HandleCreate(c fiber.Ctx) error {
	return basehdl.SafeHandler(c, func() error {
		var input employeedto.EmployeeCreateInput
		if err := basehdl.ParseRequestBody(c, &input); err != nil {
			return basehdl.HandleErrorResponse(c, err)
		}
		emp, err := h.employeeService.Create(c.Context(), &input, actorOf(c))
		if err != nil {
			return basehdl.HandleErrorResponse(c, err)
		}
		auditsvc.Record(c, auditmodels.ActionCreate, targetType, emp.ID.Hex(), map[string]interface{}{"email": emp.Email, "role": emp.Role})
		logger.LogCRUD("create", targetType, emp.ID.Hex(), c, nil)
		return basehdl.HandleCreated(c, emp, nil)
	})
}

// HandleUpdate PUT /employees/:id
func (h *EmployeeHandler) HandleUpdate(c fiber.Ctx) error {
	return basehdl.SafeHandler(c, func() error {
		id, err := basehdl.ParamObjectID(c, "id")
		if err != nil {
			return basehdl.HandleErrorResponse(c, err)
		}
		var input employeedto.EmployeeUpdateInput
		if err := basehdl.ParseRequestBody(c, &input); err != nil {
			return basehdl.HandleErrorResponse(c, err)
		}
		emp, err := h.employeeService.Update(c.Context(), id, &input, actorOf(c))
		if err != nil {
			return basehdl.HandleErrorResponse(c, err)
		}
		details := map[string]interface{}{}
		if input.Role != nil {
			details["role"] = *input.Role
		}
		if input.IsActive != nil {
			details["isActive"] = *input.IsActive
		}
		if input.Password != nil && *input.Password != "" {
			details["passwordReset"] = true
		}
		auditsvc.Record(c, auditmodels.ActionUpdate, targetType, id.Hex(), details)
		return basehdl.HandleResponse(c, emp, nil)
	})
}

// HandleDelete DELETE /employees/:id
func (h *EmployeeHandler) HandleDelete(c fiber.Ctx) error {
	return basehdl.SafeHandler(c, func() error {
		id, err := basehdl.ParamObjectID(c, "id")
		if err != nil {
			return basehdl.HandleErrorResponse(c, err)
		}
		if err := h.employeeService.Delete(c.Context(), id, actorOf(c)); err != nil {
			return basehdl.HandleErrorResponse(c, err)
		}
		auditsvc.Record(c, auditmodels.ActionDelete, targetType, id.Hex(), nil)
		logger.LogCRUD("delete", targetType, id.Hex(), c, nil)
		return basehdl.HandleResponse(c, fiber.Map{"id": id.Hex()}, nil)
	})
}

// HandleGetMe GET /employees/me
func (h *EmployeeHandler) HandleGetMe(c fiber.Ctx) error {
	return basehdl.SafeHandler(c, func() error {
		emp, err := h.employeeService.FindOneById(c.Context(), basehdl.CurrentUserID(c))
		if err != nil {
			return basehdl.HandleErrorResponse(c, err)
		}
		return basehdl.HandleResponse(c, fiber.Map{
			"user":        emp,
			"permissions": authsvc.PermissionsOf(emp.Role),
		}, nil)
	})
}

// HandleUpdateMe PUT /employees/me. Đổi mật khẩu sẽ trả về token mới.
func (h *EmployeeHandler) HandleUpdateMe(c fiber.Ctx) error {
	return basehdl.SafeHandler(c, func() error {
		var input employeedto.MeUpdateInput
		if err := basehdl.ParseRequestBody(c, &input); err != nil {
			return basehdl.HandleErrorResponse(c, err)
		}
		id := basehdl.CurrentUserID(c)
		response := fiber.Map{}
		// Đổi mật khẩu trước: sai mật khẩu hiện tại thì không lưu gì
		if input.Password != "" {
			result, err := h.passwords.ChangePassword(c.Context(), id, input.CurrentPassword, input.Password)
			if err != nil {
				return basehdl.HandleErrorResponse(c, err)
			}
			response["token"] = result.Token
			response["expiresAt"] = result.ExpiresAt
			auditsvc.Record(c, auditmodels.ActionPasswordChange, targetType, id.Hex(), nil)
		}
		emp, err := h.profile.UpdateMe(c.Context(), id, &input)
		if err != nil {
			return basehdl.HandleErrorResponse(c, err)
		}
		response["user"] = emp
		auditsvc.Record(c, auditmodels.ActionUpdate, targetType, id.Hex(), map[string]interface{}{"self": true})
		return basehdl.HandleResponse(c, response, nil)
	})
}

func bulkAuditAction(action string) string {
	switch action {
	case "create":
		return auditmodels.ActionBulkCreate
	case "delete":
		return auditmodels.ActionBulkDelete
	default:
		return auditmodels.ActionBulkUpdate
	}
}

// HandleBulk POST /employees/bulk (JSON, hoặc multipart với file xlsx cho action create)
func (h *EmployeeHandler) HandleBulk(c fiber.Ctx) error {
	return basehdl.SafeHandler(c, func() error {
		actor := actorOf(c)
		if strings.HasPrefix(c.Get(fiber.HeaderContentType), fiber.MIMEMultipartForm) {
			fileHeader, err := c.FormFile("file")
			if err != nil {
				return basehdl.HandleErrorResponse(c, common.NewError(common.ErrCodeValidationInput, "An xlsx file is required in field \"file\"", common.StatusBadRequest, nil))
			}
			file, err := fileHeader.Open()
			if err != nil {
				return basehdl.HandleErrorResponse(c, common.NewError(common.ErrCodeValidationFormat, "Could not open the uploaded file", common.StatusBadRequest, nil))
			}
			defer file.Close()
			result, err := h.employeeService.ImportXLSX(c.Context(), file, actor)
			if err != nil {
				return basehdl.HandleErrorResponse(c, err)
			}
			auditsvc.Record(c, auditmodels.ActionBulkCreate, targetType, "", map[string]interface{}{
				"file": fileHeader.Filename, "matched": result.Matched, "modified": result.Modified,
			})
			return basehdl.HandleResponse(c, result, nil)
		}

		var input employeedto.BulkInput
		if err := basehdl.ParseRequestBody(c, &input); err != nil {
			return basehdl.HandleErrorResponse(c, err)
		}
		if input.Action == "delete" && !authsvc.HasPermission(actor.Role, authsvc.PermEmployeeDelete) {
			return basehdl.HandleErrorResponse(c, common.ErrForbidden)
		}
		result, err := h.employeeService.Bulk(c.Context(), &input, actor)
		if err != nil {
			return basehdl.HandleErrorResponse(c, err)
		}
		auditsvc.Record(c, bulkAuditAction(input.Action), targetType, "", map[string]interface{}{
			"action": input.Action, "ids": input.IDs, "matched": result.Matched, "modified": result.Modified,
		})
		logger.LogCRUD("bulk_"+input.Action, targetType, "", c, map[string]interface{}{"modified": result.Modified})
		return basehdl.HandleResponse(c, result, nil)
	})
}

// HandleTeam GET /employees/team. Manager xem phòng ban của mình, admin/hr có thể truyền ?department.
func (h *EmployeeHandler) HandleTeam(c fiber.Ctx) error {
	return basehdl.SafeHandler(c, func() error {
		user, ok := middleware.CurrentUser(c)
		if !ok {
			return basehdl.HandleErrorResponse(c, common.ErrTokenInvalid)
		}
		departmentHex := user.DepartmentHex()
		if user.IsStaff() && c.Query("department") != "" {
			departmentHex = c.Query("department")
		}
		if departmentHex == "" {
			return basehdl.HandleResponse(c, []models.Employee{}, nil)
		}
		departmentID, err := utility.ParseObjectID(departmentHex)
		if err != nil {
			return basehdl.HandleErrorResponse(c, err)
		}
		team, err := h.employeeService.Team(c.Context(), departmentID)
		return basehdl.HandleResponse(c, team, err)
	})
}

// HandleExport GET /employees/export?format=xlsx|csv (mặc định xlsx)
func (h *EmployeeHandler) HandleExport(c fiber.Ctx) error {
	return basehdl.SafeHandler(c, func() error {
		format := strings.ToLower(c.Query("format", "xlsx"))
		if format != "xlsx" && format != "csv" {
			return basehdl.HandleErrorResponse(c, common.NewError(common.ErrCodeValidationInput, "format must be xlsx or csv", common.StatusBadRequest, nil))
		}
		query, err := parseListQuery(c)
		if err != nil {
			return basehdl.HandleErrorResponse(c, err)
		}
		employees, err := h.employeeService.FindAll(c.Context(), query)
		if err != nil {
			return basehdl.HandleErrorResponse(c, err)
		}
		names, err := h.employeeService.DepartmentNames(c.Context())
		if err != nil {
			return basehdl.HandleErrorResponse(c, err)
		}
		sheet := employeesvc.BuildExportSheet(employees, names)

		var (
			data        []byte
			contentType string
		)
		if format == "csv" {
			data, err = utility.WriteCSV(sheet)
			contentType = "text/csv; charset=utf-8"
		} else {
			data, err = utility.WriteXLSX(sheet)
			contentType = "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"
		}
		if err != nil {
			return basehdl.HandleErrorResponse(c, common.NewError(common.ErrCodeInternalServer, "Failed to build export file", common.StatusInternalServerError, nil))
		}

		auditsvc.Record(c, auditmodels.ActionExport, targetType, "", map[string]interface{}{"format": format, "count": len(employees)})
		filename := fmt.Sprintf("employees-%s.%s", time.Now().Format("20060102"), format)
		c.Set(fiber.HeaderContentType, contentType)
		c.Set(fiber.HeaderContentDisposition, `attachment; filename="`+filename+`"`)
		return c.Send(data)
	})
}
