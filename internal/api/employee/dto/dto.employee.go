package employeedto

// EmployeeCreateInput đầu vào tạo nhân viên
type EmployeeCreateInput struct {
	Name            string `json:"name" validate:"omitempty,max=120,no_xss"`
	FirstName       string `json:"firstName" validate:"required_without=Name,omitempty,max=60,no_xss"`
	LastName        string `json:"lastName" validate:"omitempty,max=60,no_xss"`
	Email           string `json:"email" validate:"required,email,max=160"`
	Password        string `json:"password" validate:"required,strong_password"`
	Extension       string `json:"extension" validate:"omitempty,extension"`
	Department      string `json:"department" validate:"omitempty,object_id"`
	Role            string `json:"role" validate:"omitempty,role"`
	Position        string `json:"position" validate:"omitempty,max=120,no_xss"`
	Phone           string `json:"phone" validate:"omitempty,max=30,no_xss"`
	Avatar          string `json:"avatar" validate:"omitempty,url,max=500"`
	IsActive        *bool  `json:"isActive"`
	DocumentsStatus string `json:"documentsStatus" validate:"omitempty,oneof=pending incomplete complete"`
}

// EmployeeUpdateInput đầu vào cập nhật nhân viên (admin/hr). Field nil được giữ nguyên.
type EmployeeUpdateInput struct {
	Name            *string `json:"name" validate:"omitempty,max=120,no_xss"`
	FirstName       *string `json:"firstName" validate:"omitempty,max=60,no_xss"`
	LastName        *string `json:"lastName" validate:"omitempty,max=60,no_xss"`
	Email           *string `json:"email" validate:"omitempty,email,max=160"`
	Password        *string `json:"password" validate:"omitempty,strong_password"`
	Extension       *string `json:"extension" validate:"omitempty,extension"`
	Department      *string `json:"department" validate:"omitempty,object_id"`
	Role            *string `json:"role" validate:"omitempty,role"`
	Position        *string `json:"position" validate:"omitempty,max=120,no_xss"`
	Phone           *string `json:"phone" validate:"omitempty,max=30,no_xss"`
	Avatar          *string `json:"avatar" validate:"omitempty,url,max=500"`
	IsActive        *bool   `json:"isActive"`
	DocumentsStatus *string `json:"documentsStatus" validate:"omitempty,oneof=pending incomplete complete"`
}

// MeUpdateInput đầu vào tự cập nhật hồ sơ: chỉ số điện thoại, ảnh đại diện và mật khẩu
type MeUpdateInput struct {
	Phone           *string `json:"phone" validate:"omitempty,max=30,no_xss"`
	Avatar          *string `json:"avatar" validate:"omitempty,url,max=500"`
	CurrentPassword string  `json:"currentPassword" validate:"required_with=Password"`
	Password        string  `json:"password" validate:"omitempty,strong_password"`
}

// BulkData là dữ liệu kèm theo cho action assign_department / set_role
type BulkData struct {
	Department string `json:"department" validate:"omitempty,object_id"`
	Role       string `json:"role" validate:"omitempty,role"`
}

// BulkInput đầu vào POST /employees/bulk
type BulkInput struct {
	Action    string                `json:"action" validate:"required,oneof=activate deactivate delete assign_department set_role create"`
	IDs       []string              `json:"ids" validate:"omitempty,max=500,dive,object_id"`
	Data      BulkData              `json:"data"`
	Employees []EmployeeCreateInput `json:"employees" validate:"omitempty,max=500"`
}

// ListQuery là tham số tìm kiếm danh bạ
type ListQuery struct {
	Q          string `query:"q"`
	Department string `query:"department" validate:"omitempty,object_id"`
	Role       string `query:"role" validate:"omitempty,role"`
	IsActive   *bool  `query:"isActive"`
	Sort       string `query:"sort" validate:"omitempty,max=30"`
}
