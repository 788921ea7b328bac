package employeesvc

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"

	models "qced_directory/internal/api/employee/models"
	"qced_directory/internal/utility"
)

// ExportHeaders là các cột của file export
var ExportHeaders = []string{"Name", "Email", "Extension", "Department", "Position", "Role", "Phone", "Active", "Documents", "Created"}

// BuildExportSheet dựng bảng export danh bạ
func BuildExportSheet(employees []models.Employee, departmentNames map[primitive.ObjectID]string) utility.Sheet {
	rows := make([][]interface{}, 0, len(employees))
	for _, e := range employees {
		department := ""
		if e.Department != nil {
			department = departmentNames[*e.Department]
		}
		active := "No"
		if e.IsActive {
			active = "Yes"
		}
		created := ""
		if e.CreatedAt > 0 {
			created = time.UnixMilli(e.CreatedAt).UTC().Format("2006-01-02")
		}
		rows = append(rows, []interface{}{
			e.Name, e.Email, e.Extension, department, e.Position, e.Role, e.Phone, active, e.DocumentsStatus, created,
		})
	}
	return utility.Sheet{Name: "Employees", Headers: ExportHeaders, Rows: rows}
}
