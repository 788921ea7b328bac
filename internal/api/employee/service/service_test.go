package employeesvc

import (
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"

	basehdl "qced_directory/internal/api/base/handler"
	employeedto "qced_directory/internal/api/employee/dto"
	models "qced_directory/internal/api/employee/models"
	"qced_directory/internal/common"
	"qced_directory/internal/global"
)

func TestParseSort(t *testing.T) {
	assert.Equal(t, bson.D{{Key: "name", Value: 1}, {Key: "_id", Value: 1}}, ParseSort(""))
	assert.Equal(t, bson.D{{Key: "createdAt", Value: -1}, {Key: "_id", Value: 1}}, ParseSort("-createdAt"))
	assert.Equal(t, bson.D{{Key: "email", Value: 1}, {Key: "_id", Value: 1}}, ParseSort(" email "))
	// field không cho phép sắp xếp
	assert.Equal(t, bson.D{{Key: "name", Value: 1}, {Key: "_id", Value: 1}}, ParseSort("-password"))
}

func TestBuildListFilter(t *testing.T) {
	dept := primitive.NewObjectID()
	inactive := false

	t.Run("staff", func(t *testing.T) {
		filter := BuildListFilter(employeedto.ListQuery{
			Q:          "a.b",
			Department: dept.Hex(),
			Role:       models.RoleManager,
			IsActive:   &inactive,
		}, true)
		assert.Equal(t, dept, filter["department"])
		assert.Equal(t, models.RoleManager, filter["role"])
		assert.Equal(t, false, filter["isActive"])

		or, ok := filter["$or"].(bson.A)
		require.True(t, ok)
		require.Len(t, or, 4)
		assert.Equal(t, bson.M{"name": bson.M{"$regex": `a\.b`, "$options": "i"}}, or[0])
	})

	t.Run("non staff only sees active employees", func(t *testing.T) {
		filter := BuildListFilter(employeedto.ListQuery{IsActive: &inactive}, false)
		assert.Equal(t, true, filter["isActive"])
		assert.NotContains(t, filter, "$or")
	})
}

func TestNewEmployeeFromInput(t *testing.T) {
	emp := NewEmployeeFromInput(&employeedto.EmployeeCreateInput{
		FirstName: " Sara ",
		LastName:  "Al Harbi",
		Email:     " Sara@QCED.org ",
		Password:  "secret123",
	})
	assert.Equal(t, "Sara Al Harbi", emp.Name)
	assert.Equal(t, "sara@qced.org", emp.Email)
	assert.Equal(t, models.RoleEmployee, emp.Role)
	assert.Equal(t, models.DocumentsPending, emp.DocumentsStatus)
	assert.True(t, emp.IsActive)
	assert.Empty(t, emp.Password, "mật khẩu được hash ở Create")

	inactive := false
	emp = NewEmployeeFromInput(&employeedto.EmployeeCreateInput{Name: "Omar", Email: "o@qced.org", IsActive: &inactive, Role: models.RoleHR})
	assert.Equal(t, "Omar", emp.Name)
	assert.Equal(t, models.RoleHR, emp.Role)
	assert.False(t, emp.IsActive)
}

func TestCheckAdminGuard(t *testing.T) {
	admin := models.Employee{Role: models.RoleAdmin, IsActive: true}
	assert.ErrorIs(t, CheckAdminGuard(admin, true, 1), errLastAdmin)
	assert.NoError(t, CheckAdminGuard(admin, true, 2))
	assert.NoError(t, CheckAdminGuard(admin, false, 1))
	assert.NoError(t, CheckAdminGuard(models.Employee{Role: models.RoleAdmin}, true, 1), "admin đã bị vô hiệu hóa")
	assert.NoError(t, CheckAdminGuard(models.Employee{Role: models.RoleHR, IsActive: true}, true, 0))
	assert.Equal(t, common.StatusConflict, common.StatusOf(errLastAdmin))
}

func TestActorIsStaff(t *testing.T) {
	assert.True(t, Actor{Role: models.RoleAdmin}.IsStaff())
	assert.True(t, Actor{Role: models.RoleHR}.IsStaff())
	assert.False(t, Actor{Role: models.RoleManager}.IsStaff())
}

func TestErrorMessage(t *testing.T) {
	global.InitValidator()

	err := basehdl.ValidateInput(&employeedto.EmployeeCreateInput{Email: "not-an-email", Password: "short"})
	require.Error(t, err)
	msg := ErrorMessage(err)
	assert.Contains(t, msg, "email must be a valid email address")
	assert.Contains(t, msg, "password must be at least 8 characters")
	assert.Contains(t, msg, "; ")

	assert.Equal(t, errHRAdmin.Error(), ErrorMessage(errHRAdmin))
	assert.Equal(t, "boom", ErrorMessage(errors.New("boom")))
}

func TestRecordsToInputs(t *testing.T) {
	hr := primitive.NewObjectID()
	records := []map[string]string{
		{"First Name": "Ali", "Last Name": "Saleh", "E-mail": "ALI@qced.org", "Ext": "1201", "Department": "Human Resources", "Role": "Manager"},
		{"first_name": "Noura", "email": "noura@qced.org", "department": hr.Hex(), "documents status": "Complete", "unknown": "x"},
	}
	inputs := RecordsToInputs(records, map[string]string{"human resources": hr.Hex()})
	require.Len(t, inputs, 2)

	assert.Equal(t, "Ali", inputs[0].FirstName)
	assert.Equal(t, "Saleh", inputs[0].LastName)
	assert.Equal(t, "1201", inputs[0].Extension)
	assert.Equal(t, hr.Hex(), inputs[0].Department)
	assert.Equal(t, models.RoleManager, inputs[0].Role)

	assert.Equal(t, "Noura", inputs[1].FirstName)
	assert.Equal(t, "noura@qced.org", inputs[1].Email)
	assert.Equal(t, hr.Hex(), inputs[1].Department)
	assert.Equal(t, models.DocumentsComplete, inputs[1].DocumentsStatus)
}

func TestBuildExportSheet(t *testing.T) {
	dept := primitive.NewObjectID()
	created := time.Date(2024, 3, 5, 10, 0, 0, 0, time.UTC).UnixMilli()
	sheet := BuildExportSheet([]models.Employee{
		{Name: "Ali Saleh", Email: "ali@qced.org", Extension: "1201", Department: &dept, Role: models.RoleManager, IsActive: true, CreatedAt: created},
		{Name: "No Dept", Email: "nd@qced.org", Role: models.RoleEmployee},
	}, map[primitive.ObjectID]string{dept: "Finance"})

	assert.Equal(t, "Employees", sheet.Name)
	assert.Equal(t, ExportHeaders, sheet.Headers)
	require.Len(t, sheet.Rows, 2)
	assert.Equal(t, "Finance", sheet.Rows[0][3])
	assert.Equal(t, "Yes", sheet.Rows[0][7])
	assert.Equal(t, "2024-03-05", sheet.Rows[0][9])
	assert.Equal(t, "", sheet.Rows[1][3])
	assert.Equal(t, "No", sheet.Rows[1][7])
	assert.Equal(t, "", sheet.Rows[1][9])
}
