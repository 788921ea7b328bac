// Package employeesvc - service nhân viên: danh bạ, CRUD, thao tác hàng loạt, import/export.
package employeesvc

import (
	"context"
	"fmt"
	"strings"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo/options"

	authsvc "qced_directory/internal/api/auth/service"
	basemodels "qced_directory/internal/api/base/models"
	basesvc "qced_directory/internal/api/base/service"
	deptmodels "qced_directory/internal/api/department/models"
	employeedto "qced_directory/internal/api/employee/dto"
	models "qced_directory/internal/api/employee/models"
	"qced_directory/internal/common"
	"qced_directory/internal/delivery"
	"qced_directory/internal/global"
	"qced_directory/internal/utility"
)

// EmployeeService là service nhân viên
type EmployeeService struct {
	*basesvc.BaseServiceMongoImpl[models.Employee]
	departmentService *basesvc.BaseServiceMongoImpl[deptmodels.Department]
}

// NewEmployeeService tạo mới EmployeeService
func NewEmployeeService() (*EmployeeService, error) {
	employeeCollection, exist := global.RegistryCollections.Get(global.MongoDB_ColNames.Employees)
	if !exist {
		return nil, fmt.Errorf("failed to get employees collection: %v", common.ErrNotFound)
	}
	departmentCollection, exist := global.RegistryCollections.Get(global.MongoDB_ColNames.Departments)
	if !exist {
		return nil, fmt.Errorf("failed to get departments collection: %v", common.ErrNotFound)
	}
	return &EmployeeService{
		BaseServiceMongoImpl: basesvc.NewBaseServiceMongo[models.Employee](employeeCollection),
		departmentService:    basesvc.NewBaseServiceMongo[deptmodels.Department](departmentCollection),
	}, nil
}

// Actor là người thực hiện thao tác
type Actor struct {
	ID   primitive.ObjectID
	Role string
}

// IsStaff trả về true với admin và hr
func (a Actor) IsStaff() bool {
	return a.Role == models.RoleAdmin || a.Role == models.RoleHR
}

var (
	errHRAdmin      = common.NewError(common.ErrCodeAuthRole, "HR cannot create, promote or edit administrators", common.StatusForbidden, nil)
	errLastAdmin    = common.NewError(common.ErrCodeBusinessState, "The last active administrator cannot be removed, deactivated or demoted", common.StatusConflict, nil)
	errSelfDelete   = common.NewError(common.ErrCodeBusinessOperation, "You cannot delete your own account", common.StatusBadRequest, nil)
	errSelfDisable  = common.NewError(common.ErrCodeBusinessOperation, "You cannot deactivate or demote your own account", common.StatusBadRequest, nil)
	publicExclusion = bson.M{"documentsStatus": 0, "password": 0, "tokenVersion": 0}
)

// sortFields là các field được phép sắp xếp
var sortFields = map[string]bool{"name": true, "email": true, "extension": true, "position": true, "role": true, "createdAt": true, "lastLoginAt": true}

// ParseSort chuyển "name" / "-createdAt" thành bson.D, mặc định theo tên
func ParseSort(sort string) bson.D {
	sort = strings.TrimSpace(sort)
	order := 1
	if strings.HasPrefix(sort, "-") {
		order = -1
		sort = sort[1:]
	}
	if !sortFields[sort] {
		return bson.D{{Key: "name", Value: 1}, {Key: "_id", Value: 1}}
	}
	return bson.D{{Key: sort, Value: order}, {Key: "_id", Value: 1}}
}

// BuildListFilter dựng filter danh bạ. Người không phải admin/hr chỉ thấy nhân viên đang hoạt động.
func BuildListFilter(query employeedto.ListQuery, staff bool) bson.M {
	filter := bson.M{}
	if q := strings.TrimSpace(query.Q); q != "" {
		pattern := bson.M{"$regex": utility.EscapeRegex(q), "$options": "i"}
		filter["$or"] = bson.A{
			bson.M{"name": pattern},
			bson.M{"email": pattern},
			bson.M{"extension": pattern},
			bson.M{"position": pattern},
		}
	}
	if query.Department != "" {
		filter["department"] = utility.String2ObjectID(query.Department)
	}
	if query.Role != "" {
		filter["role"] = query.Role
	}
	if !staff {
		filter["isActive"] = true
	} else if query.IsActive != nil {
		filter["isActive"] = *query.IsActive
	}
	return filter
}

// List tìm kiếm danh bạ có phân trang
func (s *EmployeeService) List(ctx context.Context, query employeedto.ListQuery, staff bool, page, limit int64) (*basemodels.PaginateResult[models.Employee], error) {
	opts := options.Find().SetSort(ParseSort(query.Sort))
	if !staff {
		opts.SetProjection(publicExclusion)
	}
	return s.FindWithPagination(ctx, BuildListFilter(query, staff), page, limit, opts)
}

// FindAll trả về toàn bộ nhân viên khớp filter (export), giới hạn 10000 bản ghi
func (s *EmployeeService) FindAll(ctx context.Context, query employeedto.ListQuery) ([]models.Employee, error) {
	opts := options.Find().SetSort(ParseSort(query.Sort)).SetLimit(10000)
	return s.Find(ctx, BuildListFilter(query, true), opts)
}

// Team trả về nhân viên đang hoạt động của phòng ban
func (s *EmployeeService) Team(ctx context.Context, departmentID primitive.ObjectID) ([]models.Employee, error) {
	return s.Find(ctx, bson.M{"department": departmentID, "isActive": true},
		options.Find().SetSort(bson.D{{Key: "name", Value: 1}}).SetProjection(publicExclusion))
}

// DepartmentNames trả về map id -> tên phòng ban (dùng cho export)
func (s *EmployeeService) DepartmentNames(ctx context.Context) (map[primitive.ObjectID]string, error) {
	departments, err := s.departmentService.Find(ctx, bson.M{}, options.Find().SetProjection(bson.M{"name": 1}))
	if err != nil {
		return nil, err
	}
	names := make(map[primitive.ObjectID]string, len(departments))
	for _, d := range departments {
		names[d.ID] = d.Name
	}
	return names, nil
}

func (s *EmployeeService) resolveDepartment(ctx context.Context, hex string) (*primitive.ObjectID, error) {
	if hex == "" {
		return nil, nil
	}
	id, err := utility.ParseObjectID(hex)
	if err != nil {
		return nil, err
	}
	exists, err := s.departmentService.DocumentExists(ctx, bson.M{"_id": id})
	if err != nil {
		return nil, err
	}
	if !exists {
		return nil, common.NewError(common.ErrCodeValidationInput, "Department does not exist", common.StatusBadRequest, map[string]string{"field": "department"})
	}
	return &id, nil
}

// NewEmployeeFromInput chuẩn hóa dữ liệu tạo mới (email chữ thường, name ghép từ họ tên, giá trị mặc định)
func NewEmployeeFromInput(input *employeedto.EmployeeCreateInput) models.Employee {
	emp := models.Employee{
		Name:            strings.TrimSpace(input.Name),
		FirstName:       strings.TrimSpace(input.FirstName),
		LastName:        strings.TrimSpace(input.LastName),
		Email:           strings.ToLower(strings.TrimSpace(input.Email)),
		Extension:       strings.TrimSpace(input.Extension),
		Role:            input.Role,
		Position:        strings.TrimSpace(input.Position),
		Phone:           strings.TrimSpace(input.Phone),
		Avatar:          strings.TrimSpace(input.Avatar),
		IsActive:        input.IsActive == nil || *input.IsActive,
		DocumentsStatus: input.DocumentsStatus,
	}
	if emp.Name == "" {
		emp.Name = models.FullName(emp.FirstName, emp.LastName)
	}
	if emp.Role == "" {
		emp.Role = models.RoleEmployee
	}
	if emp.DocumentsStatus == "" {
		emp.DocumentsStatus = models.DocumentsPending
	}
	return emp
}

// Create tạo nhân viên và gửi email chào mừng
func (s *EmployeeService) Create(ctx context.Context, input *employeedto.EmployeeCreateInput, actor Actor) (models.Employee, error) {
	emp := NewEmployeeFromInput(input)
	if actor.Role == models.RoleHR && emp.Role == models.RoleAdmin {
		return emp, errHRAdmin
	}

	department, err := s.resolveDepartment(ctx, input.Department)
	if err != nil {
		return emp, err
	}
	emp.Department = department

	hashed, err := authsvc.HashPassword(input.Password)
	if err != nil {
		return emp, common.NewError(common.ErrCodeInternalServer, "Failed to hash password", common.StatusInternalServerError, nil)
	}
	emp.Password = hashed

	created, err := s.InsertOne(ctx, emp)
	if err != nil {
		return created, err
	}
	s.sendWelcome(created)
	return created, nil
}

func (s *EmployeeService) sendWelcome(emp models.Employee) {
	loginURL := "/login"
	if cfg := global.MongoDB_ServerConfig; cfg != nil && cfg.FrontendURL != "" {
		loginURL = strings.TrimSuffix(cfg.FrontendURL, "/") + "/login"
	}
	body := fmt.Sprintf("Hello %s,\n\nYour QCED directory account has been created.\nSign in with %s at %s\n", emp.Name, emp.Email, loginURL)
	delivery.Enqueue(delivery.NewJob(delivery.ChannelEmail, emp.Email, "Welcome to the QCED employee directory", body))
}

// countActiveAdmins đếm admin đang hoạt động
func (s *EmployeeService) countActiveAdmins(ctx context.Context) (int64, error) {
	return s.CountDocuments(ctx, bson.M{"role": models.RoleAdmin, "isActive": true})
}

// CheckAdminGuard từ chối thao tác làm hệ thống mất admin đang hoạt động cuối cùng
func CheckAdminGuard(target models.Employee, removesAdmin bool, activeAdmins int64) error {
	if target.Role == models.RoleAdmin && target.IsActive && removesAdmin && activeAdmins <= 1 {
		return errLastAdmin
	}
	return nil
}

// Update cập nhật nhân viên (admin/hr)
func (s *EmployeeService) Update(ctx context.Context, id primitive.ObjectID, input *employeedto.EmployeeUpdateInput, actor Actor) (models.Employee, error) {
	current, err := s.FindOneById(ctx, id)
	if err != nil {
		return current, err
	}
	if actor.Role == models.RoleHR && (current.Role == models.RoleAdmin || (input.Role != nil && *input.Role == models.RoleAdmin)) {
		return current, errHRAdmin
	}

	demoted := input.Role != nil && *input.Role != models.RoleAdmin
	deactivated := input.IsActive != nil && !*input.IsActive
	if actor.ID == id && (demoted && current.Role != *input.Role || deactivated) {
		return current, errSelfDisable
	}
	if current.Role == models.RoleAdmin && (demoted || deactivated) {
		admins, err := s.countActiveAdmins(ctx)
		if err != nil {
			return current, err
		}
		if err := CheckAdminGuard(current, true, admins); err != nil {
			return current, err
		}
	}

	update := &basesvc.UpdateData{Set: map[string]interface{}{}, Unset: map[string]interface{}{}}
	setString := func(field string, value *string, transform func(string) string) {
		if value == nil {
			return
		}
		v := strings.TrimSpace(*value)
		if transform != nil {
			v = transform(v)
		}
		update.Set[field] = v
	}
	setString("firstName", input.FirstName, nil)
	setString("lastName", input.LastName, nil)
	setString("email", input.Email, strings.ToLower)
	setString("position", input.Position, nil)
	setString("phone", input.Phone, nil)
	setString("avatar", input.Avatar, nil)
	if input.Role != nil {
		update.Set["role"] = *input.Role
	}
	if input.DocumentsStatus != nil {
		update.Set["documentsStatus"] = *input.DocumentsStatus
	}
	if input.IsActive != nil {
		update.Set["isActive"] = *input.IsActive
	}
	if input.Extension != nil {
		if ext := strings.TrimSpace(*input.Extension); ext != "" {
			update.Set["extension"] = ext
		} else {
			update.Unset["extension"] = ""
		}
	}
	if input.Department != nil {
		if *input.Department == "" {
			update.Unset["department"] = ""
		} else {
			dept, err := s.resolveDepartment(ctx, *input.Department)
			if err != nil {
				return current, err
			}
			update.Set["department"] = *dept
		}
	}

	// name: giá trị gửi lên, hoặc ghép lại khi đổi họ/tên
	if input.Name != nil && strings.TrimSpace(*input.Name) != "" {
		update.Set["name"] = strings.TrimSpace(*input.Name)
	} else if input.FirstName != nil || input.LastName != nil {
		first, last := current.FirstName, current.LastName
		if input.FirstName != nil {
			first = strings.TrimSpace(*input.FirstName)
		}
		if input.LastName != nil {
			last = strings.TrimSpace(*input.LastName)
		}
		if full := models.FullName(first, last); full != "" {
			update.Set["name"] = full
		}
	}

	if input.Password != nil && *input.Password != "" {
		hashed, err := authsvc.HashPassword(*input.Password)
		if err != nil {
			return current, common.NewError(common.ErrCodeInternalServer, "Failed to hash password", common.StatusInternalServerError, nil)
		}
		update.Set["password"] = hashed
		update.Inc = map[string]interface{}{"tokenVersion": 1}
	}

	if len(update.Unset) == 0 {
		update.Unset = nil
	}
	return s.UpdateById(ctx, id, update)
}

// UpdateMe cập nhật hồ sơ của chính mình (điện thoại, ảnh đại diện)
func (s *EmployeeService) UpdateMe(ctx context.Context, id primitive.ObjectID, input *employeedto.MeUpdateInput) (models.Employee, error) {
	set := map[string]interface{}{}
	if input.Phone != nil {
		set["phone"] = strings.TrimSpace(*input.Phone)
	}
	if input.Avatar != nil {
		set["avatar"] = strings.TrimSpace(*input.Avatar)
	}
	if len(set) == 0 {
		return s.FindOneById(ctx, id)
	}
	return s.UpdateById(ctx, id, &basesvc.UpdateData{Set: set})
}

// Delete xóa nhân viên. Không tự xóa, không xóa admin cuối cùng; gỡ chức trưởng phòng nếu có.
func (s *EmployeeService) Delete(ctx context.Context, id primitive.ObjectID, actor Actor) error {
	if actor.ID == id {
		return errSelfDelete
	}
	target, err := s.FindOneById(ctx, id)
	if err != nil {
		return err
	}
	if target.Role == models.RoleAdmin {
		admins, err := s.countActiveAdmins(ctx)
		if err != nil {
			return err
		}
		if err := CheckAdminGuard(target, true, admins); err != nil {
			return err
		}
	}
	if _, err := s.departmentService.UpdateMany(ctx, bson.M{"head": id}, &basesvc.UpdateData{Unset: map[string]interface{}{"head": ""}}); err != nil {
		return err
	}
	return s.DeleteById(ctx, id)
}

// EnsureAdmin tạo tài khoản admin đầu tiên nếu hệ thống chưa có admin
func (s *EmployeeService) EnsureAdmin(ctx context.Context, email, password string, department *primitive.ObjectID) (bool, error) {
	exists, err := s.DocumentExists(ctx, bson.M{"role": models.RoleAdmin})
	if err != nil || exists {
		return false, err
	}
	hashed, err := authsvc.HashPassword(password)
	if err != nil {
		return false, err
	}
	_, err = s.InsertOne(ctx, models.Employee{
		Name:            "System Administrator",
		FirstName:       "System",
		LastName:        "Administrator",
		Email:           strings.ToLower(strings.TrimSpace(email)),
		Role:            models.RoleAdmin,
		Department:      department,
		IsActive:        true,
		DocumentsStatus: models.DocumentsComplete,
		Password:        hashed,
	})
	return err == nil, err
}
