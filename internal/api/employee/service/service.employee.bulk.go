package employeesvc

import (
	"context"
	"errors"
	"io"
	"strings"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"

	basehdl "qced_directory/internal/api/base/handler"
	basesvc "qced_directory/internal/api/base/service"
	employeedto "qced_directory/internal/api/employee/dto"
	models "qced_directory/internal/api/employee/models"
	"qced_directory/internal/common"
	"qced_directory/internal/global"
	"qced_directory/internal/utility"
)

// BulkFailure là một phần tử thất bại của thao tác hàng loạt
type BulkFailure struct {
	Index   *int   `json:"index,omitempty"`
	ID      string `json:"id,omitempty"`
	Message string `json:"message"`
}

// BulkResult là kết quả POST /employees/bulk
type BulkResult struct {
	Matched  int64         `json:"matched"`
	Modified int64         `json:"modified"`
	Failed   []BulkFailure `json:"failed"`
}

func failureAt(index int, err error) BulkFailure {
	return BulkFailure{Index: &index, Message: ErrorMessage(err)}
}

// ErrorMessage rút gọn lỗi thành một dòng, lỗi validate được liệt kê theo field
func ErrorMessage(err error) string {
	var appErr *common.Error
	if !errors.As(err, &appErr) {
		return err.Error()
	}
	if details, ok := appErr.Details.(error); ok {
		if fieldErrs := global.FormatValidationErrors(details); len(fieldErrs) > 0 {
			parts := make([]string, 0, len(fieldErrs))
			for _, fe := range fieldErrs {
				parts = append(parts, fe.Message)
			}
			return strings.Join(parts, "; ")
		}
	}
	return appErr.Message
}

// Bulk thực hiện thao tác hàng loạt
func (s *EmployeeService) Bulk(ctx context.Context, input *employeedto.BulkInput, actor Actor) (*BulkResult, error) {
	if input.Action == "create" {
		return s.BulkCreate(ctx, input.Employees, actor), nil
	}

	ids, err := utility.ParseObjectIDs(utility.Unique(input.IDs))
	if err != nil {
		return nil, err
	}
	if len(ids) == 0 {
		return nil, common.NewError(common.ErrCodeValidationInput, "ids is required for this action", common.StatusBadRequest, nil)
	}

	result := &BulkResult{Failed: []BulkFailure{}}
	targets, err := s.FindManyByIds(ctx, ids)
	if err != nil {
		return nil, err
	}
	found := make(map[primitive.ObjectID]models.Employee, len(targets))
	for _, t := range targets {
		found[t.ID] = t
	}

	// Lọc các id không hợp lệ cho action: không tồn tại, chính mình, admin (với hr)
	allowed := make([]primitive.ObjectID, 0, len(ids))
	for _, id := range ids {
		target, ok := found[id]
		switch {
		case !ok:
			result.Failed = append(result.Failed, BulkFailure{ID: id.Hex(), Message: common.MsgNotFound})
		case actor.Role == models.RoleHR && target.Role == models.RoleAdmin:
			result.Failed = append(result.Failed, BulkFailure{ID: id.Hex(), Message: ErrorMessage(errHRAdmin)})
		case id == actor.ID && (input.Action == "delete" || input.Action == "deactivate" || input.Action == "set_role"):
			result.Failed = append(result.Failed, BulkFailure{ID: id.Hex(), Message: ErrorMessage(errSelfDisable)})
		default:
			allowed = append(allowed, id)
		}
	}
	result.Matched = int64(len(allowed))
	if len(allowed) == 0 {
		return result, nil
	}

	// Không được làm mất admin đang hoạt động cuối cùng
	if input.Action == "delete" || input.Action == "deactivate" || (input.Action == "set_role" && input.Data.Role != models.RoleAdmin) {
		removedAdmins := int64(0)
		for _, id := range allowed {
			if t := found[id]; t.Role == models.RoleAdmin && t.IsActive {
				removedAdmins++
			}
		}
		if removedAdmins > 0 {
			admins, err := s.countActiveAdmins(ctx)
			if err != nil {
				return nil, err
			}
			if admins-removedAdmins < 1 {
				return nil, errLastAdmin
			}
		}
	}

	filter := bson.M{"_id": bson.M{"$in": allowed}}
	switch input.Action {
	case "activate", "deactivate":
		result.Modified, err = s.UpdateMany(ctx, filter, bson.M{"isActive": input.Action == "activate"})
	case "assign_department":
		dept, derr := s.resolveDepartment(ctx, input.Data.Department)
		if derr != nil {
			return nil, derr
		}
		if dept == nil {
			result.Modified, err = s.UpdateMany(ctx, filter, &basesvc.UpdateData{Unset: map[string]interface{}{"department": ""}})
		} else {
			result.Modified, err = s.UpdateMany(ctx, filter, bson.M{"department": *dept})
		}
	case "set_role":
		if input.Data.Role == "" {
			return nil, common.NewError(common.ErrCodeValidationInput, "data.role is required", common.StatusBadRequest, nil)
		}
		if actor.Role == models.RoleHR && input.Data.Role == models.RoleAdmin {
			return nil, errHRAdmin
		}
		result.Modified, err = s.UpdateMany(ctx, filter, bson.M{"role": input.Data.Role})
	case "delete":
		if _, err = s.departmentService.UpdateMany(ctx, bson.M{"head": bson.M{"$in": allowed}}, &basesvc.UpdateData{Unset: map[string]interface{}{"head": ""}}); err != nil {
			return nil, err
		}
		result.Modified, err = s.DeleteMany(ctx, filter)
	}
	if err != nil {
		return nil, err
	}
	return result, nil
}

// BulkCreate tạo nhiều nhân viên, lỗi của từng phần tử được ghi theo index
func (s *EmployeeService) BulkCreate(ctx context.Context, inputs []employeedto.EmployeeCreateInput, actor Actor) *BulkResult {
	result := &BulkResult{Matched: int64(len(inputs)), Failed: []BulkFailure{}}
	for i := range inputs {
		if err := basehdl.ValidateInput(&inputs[i]); err != nil {
			result.Failed = append(result.Failed, failureAt(i, err))
			continue
		}
		if _, err := s.Create(ctx, &inputs[i], actor); err != nil {
			result.Failed = append(result.Failed, failureAt(i, err))
			continue
		}
		result.Modified++
	}
	return result
}

// importColumns ánh xạ header (chữ thường, bỏ khoảng trắng/gạch) sang field
var importColumns = map[string]string{
	"name": "name", "fullname": "name",
	"firstname": "firstName", "lastname": "lastName",
	"email": "email", "password": "password",
	"extension": "extension", "ext": "extension",
	"department": "department", "departmentid": "department",
	"role": "role", "position": "position", "title": "position",
	"phone": "phone", "mobile": "phone",
	"documentsstatus": "documentsStatus",
}

func normalizeHeader(h string) string {
	h = strings.ToLower(strings.TrimSpace(h))
	return strings.NewReplacer(" ", "", "_", "", "-", "").Replace(h)
}

// RecordsToInputs chuyển các dòng xlsx thành EmployeeCreateInput.
// Cột department nhận id hoặc tên phòng ban (tra qua departmentByName).
func RecordsToInputs(records []map[string]string, departmentByName map[string]string) []employeedto.EmployeeCreateInput {
	inputs := make([]employeedto.EmployeeCreateInput, 0, len(records))
	for _, record := range records {
		var in employeedto.EmployeeCreateInput
		for header, value := range record {
			switch importColumns[normalizeHeader(header)] {
			case "name":
				in.Name = value
			case "firstName":
				in.FirstName = value
			case "lastName":
				in.LastName = value
			case "email":
				in.Email = value
			case "password":
				in.Password = value
			case "extension":
				in.Extension = value
			case "department":
				if primitive.IsValidObjectID(value) {
					in.Department = value
				} else if id, ok := departmentByName[strings.ToLower(value)]; ok {
					in.Department = id
				}
			case "role":
				in.Role = strings.ToLower(value)
			case "position":
				in.Position = value
			case "phone":
				in.Phone = value
			case "documentsStatus":
				in.DocumentsStatus = strings.ToLower(value)
			}
		}
		inputs = append(inputs, in)
	}
	return inputs
}

// ImportXLSX đọc file xlsx và tạo nhân viên hàng loạt
func (s *EmployeeService) ImportXLSX(ctx context.Context, r io.Reader, actor Actor) (*BulkResult, error) {
	records, err := utility.ReadXLSXRecords(r)
	if err != nil {
		return nil, common.NewError(common.ErrCodeValidationFormat, "Could not read the spreadsheet: "+err.Error(), common.StatusBadRequest, nil)
	}
	names, err := s.DepartmentNames(ctx)
	if err != nil {
		return nil, err
	}
	byName := make(map[string]string, len(names))
	for id, name := range names {
		byName[strings.ToLower(name)] = id.Hex()
	}
	return s.BulkCreate(ctx, RecordsToInputs(records, byName), actor), nil
}
