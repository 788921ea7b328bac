package departmentdto

// DepartmentCreateInput đầu vào tạo phòng ban
type DepartmentCreateInput struct {
	Name               string `json:"name" validate:"required,min=2,max=120,no_xss"`
	Description        string `json:"description" validate:"omitempty,max=500,no_xss"`
	OrganizationalCode string `json:"organizationalCode" validate:"omitempty,max=30,alphanumunicode"`
	Level              string `json:"level" validate:"required,dept_level"`
	Parent             string `json:"parent" validate:"omitempty,object_id"`
	Head               string `json:"head" validate:"omitempty,object_id"`
	IsActive           *bool  `json:"isActive"`
}

// DepartmentUpdateInput đầu vào cập nhật phòng ban. Chuỗi rỗng ở parent/head nghĩa là gỡ bỏ.
type DepartmentUpdateInput struct {
	Name               *string `json:"name" validate:"omitempty,min=2,max=120,no_xss"`
	Description        *string `json:"description" validate:"omitempty,max=500,no_xss"`
	OrganizationalCode *string `json:"organizationalCode" validate:"omitempty,max=30,alphanumunicode"`
	Level              *string `json:"level" validate:"omitempty,dept_level"`
	Parent             *string `json:"parent" validate:"omitempty,object_id"`
	Head               *string `json:"head" validate:"omitempty,object_id"`
	IsActive           *bool   `json:"isActive"`
}
