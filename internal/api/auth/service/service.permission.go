package authsvc

import "sort"

// Tên quyền theo dạng <Resource>.<Action>
const (
	PermEmployeeRead     = "Employee.Read"
	PermEmployeeCreate   = "Employee.Create"
	PermEmployeeUpdate   = "Employee.Update"
	PermEmployeeDelete   = "Employee.Delete"
	PermEmployeeBulk     = "Employee.Bulk"
	PermEmployeeExport   = "Employee.Export"
	PermEmployeeTeam     = "Employee.Team"
	PermDepartmentRead   = "Department.Read"
	PermDepartmentCreate = "Department.Create"
	PermDepartmentUpdate = "Department.Update"
	PermDepartmentDelete = "Department.Delete"
	PermScheduleRead     = "Schedule.Read"
	PermScheduleWrite    = "Schedule.Write"
	PermSchedulePublish  = "Schedule.Publish"
	PermMessageSend      = "Message.Send"
	PermAuditRead        = "Audit.Read"
	PermQRGenerate       = "QR.Generate"
	PermReportRead       = "Report.Read"
)

var (
	allRoles     = []string{"admin", "hr", "manager", "employee"}
	staffRoles   = []string{"admin", "hr"}
	managerRoles = []string{"admin", "hr", "manager"}
	adminOnly    = []string{"admin"}
)

// rolePermissions là ma trận quyền: permission -> các role được phép
var rolePermissions = map[string][]string{
	PermEmployeeRead:     allRoles,
	PermDepartmentRead:   allRoles,
	PermScheduleRead:     allRoles,
	PermMessageSend:      allRoles,
	PermQRGenerate:       allRoles,
	PermEmployeeCreate:   staffRoles,
	PermEmployeeUpdate:   staffRoles,
	PermEmployeeBulk:     staffRoles,
	PermEmployeeExport:   staffRoles,
	PermDepartmentCreate: staffRoles,
	PermDepartmentUpdate: staffRoles,
	PermAuditRead:        staffRoles,
	PermEmployeeDelete:   adminOnly,
	PermDepartmentDelete: adminOnly,
	PermEmployeeTeam:     managerRoles,
	PermScheduleWrite:    managerRoles,
	PermSchedulePublish:  managerRoles,
	PermReportRead:       managerRoles,
}

// HasPermission kiểm tra role có quyền. Permission rỗng nghĩa là chỉ cần đăng nhập.
func HasPermission(role, permission string) bool {
	if permission == "" {
		return true
	}
	for _, r := range rolePermissions[permission] {
		if r == role {
			return true
		}
	}
	return false
}

// PermissionsOf trả về danh sách quyền của role (trả cho frontend sau khi login)
func PermissionsOf(role string) []string {
	result := make([]string, 0, len(rolePermissions))
	for perm := range rolePermissions {
		if HasPermission(role, perm) {
			result = append(result, perm)
		}
	}
	sort.Strings(result)
	return result
}
