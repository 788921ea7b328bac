// Package models - các cấu trúc kết quả báo cáo.
package models

// Các loại báo cáo
const (
	TypeHeadcount        = "headcount"
	TypeRoles            = "roles"
	TypeDocuments        = "documents"
	TypeScheduleCoverage = "schedule-coverage"
	TypeAuditActivity    = "audit-activity"
	TypeDashboard        = "dashboard"
)

// Types là danh sách loại báo cáo hợp lệ
var Types = []string{TypeHeadcount, TypeRoles, TypeDocuments, TypeScheduleCoverage, TypeAuditActivity, TypeDashboard}

// Report là kết quả trả về của GET /reports/:type
type Report struct {
	Type        string            `json:"type"`
	GeneratedAt int64             `json:"generatedAt"`
	Params      map[string]string `json:"params,omitempty"`
	Data        interface{}       `json:"data"`
}

// HeadcountRow là số nhân viên của một phòng ban
type HeadcountRow struct {
	DepartmentID string           `json:"departmentId,omitempty"`
	Department   string           `json:"department"`
	Total        int64            `json:"total"`
	Active       int64            `json:"active"`
	ByRole       map[string]int64 `json:"byRole"`
}

// CountRow là một cặp khóa - số lượng (roles, documents, audit-activity)
type CountRow struct {
	Key   string `json:"key"`
	Count int64  `json:"count"`
}

// CoverageRow là độ phủ lịch của một ngày trong tuần
type CoverageRow struct {
	Day       string  `json:"day"`
	Employees int     `json:"employees"`
	Hours     float64 `json:"hours"`
}

// Card là một ô số liệu trên dashboard
type Card struct {
	Key   string `json:"key"`
	Label string `json:"label"`
	Value int64  `json:"value"`
}
