// Package models - model phòng ban (Department) theo cơ cấu tổ chức nhiều cấp.
package models

import (
	"go.mongodb.org/mongo-driver/bson/primitive"
)

// Các cấp phòng ban, từ cao xuống thấp
const (
	LevelBoard          = "board"
	LevelAdministration = "administration"
	LevelDepartment     = "department"
	LevelSubDepartment  = "sub_department"
	LevelTeam           = "team"
)

// Department định nghĩa mô hình phòng ban.
// Không thể xóa khi còn nhân viên, phòng ban con hoặc lịch làm việc tham chiếu tới.
type Department struct {
	_Relationships     struct{}            `relationship:"collection:employees,field:department,message:Cannot delete: %d employee(s) still belong to this department|collection:departments,field:parent,message:Cannot delete: %d child department(s) reference this department|collection:schedules,field:department,message:Cannot delete: %d schedule(s) belong to this department"`
	ID                 primitive.ObjectID  `json:"id,omitempty" bson:"_id,omitempty"`
	Name               string              `json:"name" bson:"name" index:"unique"`
	Description        string              `json:"description,omitempty" bson:"description,omitempty"`
	OrganizationalCode string              `json:"organizationalCode,omitempty" bson:"organizationalCode,omitempty" index:"unique,sparse"`
	Level              string              `json:"level" bson:"level" index:"single"`
	Parent             *primitive.ObjectID `json:"parent,omitempty" bson:"parent,omitempty" index:"single"`
	Head               *primitive.ObjectID `json:"head,omitempty" bson:"head,omitempty" index:"single"`
	IsActive           bool                `json:"isActive" bson:"isActive"`
	CreatedAt          int64               `json:"createdAt" bson:"createdAt"`
	UpdatedAt          int64               `json:"updatedAt" bson:"updatedAt"`
}

// DepartmentNode là một nút của cây phòng ban (GET /departments?tree=true)
type DepartmentNode struct {
	Department
	EmployeeCount int64             `json:"employeeCount"`
	Children      []*DepartmentNode `json:"children"`
}
