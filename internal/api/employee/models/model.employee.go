// Package models - model nhân viên (Employee), đồng thời là tài khoản đăng nhập.
package models

import (
	"strings"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// Trạng thái hồ sơ giấy tờ
const (
	DocumentsPending    = "pending"
	DocumentsIncomplete = "incomplete"
	DocumentsComplete   = "complete"
)

// Các role
const (
	RoleAdmin    = "admin"
	RoleHR       = "hr"
	RoleManager  = "manager"
	RoleEmployee = "employee"
)

// Employee định nghĩa mô hình nhân viên
type Employee struct {
	ID              primitive.ObjectID  `json:"id,omitempty" bson:"_id,omitempty"`
	Name            string              `json:"name" bson:"name" index:"text"`
	FirstName       string              `json:"firstName" bson:"firstName"`
	LastName        string              `json:"lastName" bson:"lastName"`
	Email           string              `json:"email" bson:"email" index:"unique;text"`
	Extension       string              `json:"extension,omitempty" bson:"extension,omitempty" index:"unique,sparse;text"`
	Department      *primitive.ObjectID `json:"department,omitempty" bson:"department,omitempty" index:"single;compound:dept_role"`
	Role            string              `json:"role" bson:"role" index:"single;compound:dept_role"`
	Position        string              `json:"position,omitempty" bson:"position,omitempty" index:"text"`
	Phone           string              `json:"phone,omitempty" bson:"phone,omitempty"`
	Avatar          string              `json:"avatar,omitempty" bson:"avatar,omitempty"`
	IsActive        bool                `json:"isActive" bson:"isActive" index:"single"`
	DocumentsStatus string              `json:"documentsStatus,omitempty" bson:"documentsStatus,omitempty"`
	Password        string              `json:"-" bson:"password,omitempty"`
	TokenVersion    int64               `json:"-" bson:"tokenVersion"`
	LastLoginAt     int64               `json:"lastLoginAt,omitempty" bson:"lastLoginAt,omitempty"`
	CreatedAt       int64               `json:"createdAt" bson:"createdAt" index:"single,order:-1"`
	UpdatedAt       int64               `json:"updatedAt" bson:"updatedAt"`
}

// IsStaff trả về true với admin và hr
func (e *Employee) IsStaff() bool {
	return e.Role == RoleAdmin || e.Role == RoleHR
}

// DepartmentHex trả về hex của department, chuỗi rỗng nếu chưa gán
func (e *Employee) DepartmentHex() string {
	if e.Department == nil {
		return ""
	}
	return e.Department.Hex()
}

// Public trả về bản rút gọn cho người không phải admin/hr (không có documentsStatus)
func (e Employee) Public() Employee {
	e.DocumentsStatus = ""
	e.Password = ""
	return e
}

// FullName ghép họ tên, dùng khi name để trống
func FullName(firstName, lastName string) string {
	return strings.TrimSpace(strings.TrimSpace(firstName) + " " + strings.TrimSpace(lastName))
}

// EmployeeSummary là thông tin rút gọn dùng trong tin nhắn, lịch làm việc
type EmployeeSummary struct {
	ID         primitive.ObjectID `json:"id" bson:"_id"`
	Name       string             `json:"name" bson:"name"`
	Email      string             `json:"email" bson:"email"`
	Role       string             `json:"role" bson:"role"`
	Avatar     string             `json:"avatar,omitempty" bson:"avatar,omitempty"`
	Position   string             `json:"position,omitempty" bson:"position,omitempty"`
	Extension  string             `json:"extension,omitempty" bson:"extension,omitempty"`
	Department string             `json:"department,omitempty" bson:"-"`
}

// Summary chuyển Employee thành EmployeeSummary
func (e *Employee) Summary() EmployeeSummary {
	return EmployeeSummary{
		ID:         e.ID,
		Name:       e.Name,
		Email:      e.Email,
		Role:       e.Role,
		Avatar:     e.Avatar,
		Position:   e.Position,
		Extension:  e.Extension,
		Department: e.DepartmentHex(),
	}
}
