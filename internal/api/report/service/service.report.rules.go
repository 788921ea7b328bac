package reportsvc

import (
	"fmt"
	"sort"
	"strings"

	"go.mongodb.org/mongo-driver/bson/primitive"

	empmodels "qced_directory/internal/api/employee/models"
	reportdto "qced_directory/internal/api/report/dto"
	models "qced_directory/internal/api/report/models"
	schedulemodels "qced_directory/internal/api/schedule/models"
	schedulesvc "qced_directory/internal/api/schedule/service"
	"qced_directory/internal/common"
	"qced_directory/internal/global"
	"qced_directory/internal/utility"
)

// UnassignedDepartment là nhãn cho nhân viên chưa có phòng ban
const UnassignedDepartment = "Unassigned"

// IsValidType kiểm tra loại báo cáo
func IsValidType(kind string) bool {
	return utility.Contains(models.Types, kind)
}

// ResolveScope trả về phòng ban mà người gọi được phép xem (nil = toàn công ty).
// Manager luôn bị giới hạn trong phòng ban của mình.
func ResolveScope(actor empmodels.Employee, query reportdto.ReportQuery) (*primitive.ObjectID, error) {
	var requested *primitive.ObjectID
	if query.Department != "" {
		id, err := primitive.ObjectIDFromHex(query.Department)
		if err != nil {
			return nil, common.ErrInvalidID
		}
		requested = &id
	}
	if actor.IsStaff() {
		return requested, nil
	}
	if actor.Role != empmodels.RoleManager || actor.Department == nil {
		return nil, common.ErrForbidden
	}
	if requested != nil && *requested != *actor.Department {
		return nil, common.ErrForbidden
	}
	own := *actor.Department
	return &own, nil
}

// CacheKey dựng khóa cache; tiền tố là loại báo cáo để xóa theo loại
func CacheKey(kind string, scope *primitive.ObjectID, query reportdto.ReportQuery) string {
	scopeKey := "all"
	if scope != nil {
		scopeKey = scope.Hex()
	}
	return fmt.Sprintf("%s:%s:%s:%d:%d", kind, scopeKey, query.WeekStart, query.From, query.To)
}

// AffectedReports trả về các loại báo cáo bị ảnh hưởng khi collection thay đổi
func AffectedReports(collection string) []string {
	names := global.MongoDB_ColNames
	switch collection {
	case "":
		return nil
	case names.Employees:
		return []string{models.TypeHeadcount, models.TypeRoles, models.TypeDocuments, models.TypeDashboard}
	case names.Departments:
		return []string{models.TypeHeadcount, models.TypeDashboard}
	case names.Schedules:
		return []string{models.TypeScheduleCoverage, models.TypeDashboard}
	case names.AuditLogs:
		return []string{models.TypeAuditActivity}
	}
	return nil
}

// SortedCounts chuyển map đếm thành danh sách, nhiều nhất trước
func SortedCounts(counts map[string]int64) []models.CountRow {
	rows := make([]models.CountRow, 0, len(counts))
	for key, count := range counts {
		rows = append(rows, models.CountRow{Key: key, Count: count})
	}
	sort.Slice(rows, func(i, j int) bool {
		if rows[i].Count != rows[j].Count {
			return rows[i].Count > rows[j].Count
		}
		return rows[i].Key < rows[j].Key
	})
	return rows
}

// HeadcountGroup là một nhóm (phòng ban, role, trạng thái) sau khi aggregate
type HeadcountGroup struct {
	Department *primitive.ObjectID
	Role       string
	Active     bool
	Count      int64
}

// FoldHeadcount gộp các nhóm thành từng dòng phòng ban, sắp theo tên
func FoldHeadcount(groups []HeadcountGroup, names map[primitive.ObjectID]string) []models.HeadcountRow {
	byDept := map[string]*models.HeadcountRow{}
	for _, g := range groups {
		key := ""
		name := UnassignedDepartment
		if g.Department != nil {
			key = g.Department.Hex()
			if n, ok := names[*g.Department]; ok {
				name = n
			} else {
				name = key
			}
		}
		row, ok := byDept[key]
		if !ok {
			row = &models.HeadcountRow{DepartmentID: key, Department: name, ByRole: map[string]int64{}}
			byDept[key] = row
		}
		row.Total += g.Count
		if g.Active {
			row.Active += g.Count
		}
		row.ByRole[g.Role] += g.Count
	}

	rows := make([]models.HeadcountRow, 0, len(byDept))
	for _, row := range byDept {
		rows = append(rows, *row)
	}
	sort.Slice(rows, func(i, j int) bool {
		// Unassigned luôn ở cuối
		if (rows[i].DepartmentID == "") != (rows[j].DepartmentID == "") {
			return rows[j].DepartmentID == ""
		}
		return strings.ToLower(rows[i].Department) < strings.ToLower(rows[j].Department)
	})
	return rows
}

// Coverage tính số nhân viên làm việc và tổng giờ theo từng ngày trong tuần
func Coverage(schedules []schedulemodels.Schedule) []models.CoverageRow {
	rows := make([]models.CoverageRow, len(schedulemodels.Days))
	minutes := make([]int, len(schedulemodels.Days))
	for i, day := range schedulemodels.Days {
		rows[i].Day = day
	}
	for _, schedule := range schedules {
		for _, entry := range schedule.Entries {
			for _, day := range entry.Days {
				idx := schedulemodels.DayIndex(day.Day)
				if idx < 0 {
					continue
				}
				if m := schedulesvc.WorkingMinutes(day); m > 0 {
					rows[idx].Employees++
					minutes[idx] += m
				}
			}
		}
	}
	for i := range rows {
		rows[i].Hours = float64(minutes[i]) / 60
	}
	return rows
}

var countKeyHeader = map[string]string{
	models.TypeRoles:         "Role",
	models.TypeDocuments:     "Documents status",
	models.TypeAuditActivity: "Action",
}

// BuildSheet chuyển báo cáo thành sheet để xuất xlsx
func BuildSheet(report *models.Report) utility.Sheet {
	sheet := utility.Sheet{Name: report.Type}
	switch data := report.Data.(type) {
	case []models.HeadcountRow:
		sheet.Headers = []string{"Department", "Total", "Active", empmodels.RoleAdmin, empmodels.RoleHR, empmodels.RoleManager, empmodels.RoleEmployee}
		for _, row := range data {
			sheet.Rows = append(sheet.Rows, []interface{}{
				row.Department, row.Total, row.Active,
				row.ByRole[empmodels.RoleAdmin], row.ByRole[empmodels.RoleHR], row.ByRole[empmodels.RoleManager], row.ByRole[empmodels.RoleEmployee],
			})
		}
	case []models.CountRow:
		sheet.Headers = []string{countKeyHeader[report.Type], "Count"}
		for _, row := range data {
			sheet.Rows = append(sheet.Rows, []interface{}{row.Key, row.Count})
		}
	case []models.CoverageRow:
		sheet.Headers = []string{"Day", "Employees", "Hours"}
		for _, row := range data {
			sheet.Rows = append(sheet.Rows, []interface{}{row.Day, row.Employees, row.Hours})
		}
	case []models.Card:
		sheet.Headers = []string{"Metric", "Value"}
		for _, card := range data {
			sheet.Rows = append(sheet.Rows, []interface{}{card.Label, card.Value})
		}
	}
	return sheet
}
