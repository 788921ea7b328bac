package reportsvc

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.mongodb.org/mongo-driver/bson/primitive"

	empmodels "qced_directory/internal/api/employee/models"
	reportdto "qced_directory/internal/api/report/dto"
	models "qced_directory/internal/api/report/models"
	schedulemodels "qced_directory/internal/api/schedule/models"
	"qced_directory/internal/common"
	"qced_directory/internal/global"
)

func TestIsValidType(t *testing.T) {
	assert.True(t, IsValidType("headcount"))
	assert.True(t, IsValidType("schedule-coverage"))
	assert.False(t, IsValidType("salaries"))
}

func TestResolveScope(t *testing.T) {
	dept := primitive.NewObjectID()
	other := primitive.NewObjectID()

	admin := empmodels.Employee{Role: empmodels.RoleAdmin}
	scope, err := ResolveScope(admin, reportdto.ReportQuery{})
	require.NoError(t, err)
	assert.Nil(t, scope)

	scope, err = ResolveScope(admin, reportdto.ReportQuery{Department: other.Hex()})
	require.NoError(t, err)
	assert.Equal(t, other, *scope)

	manager := empmodels.Employee{Role: empmodels.RoleManager, Department: &dept}
	scope, err = ResolveScope(manager, reportdto.ReportQuery{})
	require.NoError(t, err)
	assert.Equal(t, dept, *scope)

	_, err = ResolveScope(manager, reportdto.ReportQuery{Department: other.Hex()})
	assert.True(t, errors.Is(err, common.ErrForbidden))

	_, err = ResolveScope(empmodels.Employee{Role: empmodels.RoleManager}, reportdto.ReportQuery{})
	assert.True(t, errors.Is(err, common.ErrForbidden))

	_, err = ResolveScope(empmodels.Employee{Role: empmodels.RoleEmployee, Department: &dept}, reportdto.ReportQuery{})
	assert.True(t, errors.Is(err, common.ErrForbidden))
}

func TestCacheKey(t *testing.T) {
	dept := primitive.NewObjectID()
	q := reportdto.ReportQuery{WeekStart: "2026-10-11"}
	assert.Equal(t, "schedule-coverage:all:2026-10-11:0:0", CacheKey(models.TypeScheduleCoverage, nil, q))
	assert.Equal(t, "roles:"+dept.Hex()+"::0:0", CacheKey(models.TypeRoles, &dept, reportdto.ReportQuery{}))
}

func TestAffectedReports(t *testing.T) {
	saved := global.MongoDB_ColNames
	defer func() { global.MongoDB_ColNames = saved }()
	global.MongoDB_ColNames.Employees = "employees"
	global.MongoDB_ColNames.Schedules = "schedules"
	global.MongoDB_ColNames.AuditLogs = "audit_logs"

	assert.Contains(t, AffectedReports("employees"), models.TypeHeadcount)
	assert.NotContains(t, AffectedReports("employees"), models.TypeScheduleCoverage)
	assert.Equal(t, []string{models.TypeScheduleCoverage, models.TypeDashboard}, AffectedReports("schedules"))
	assert.Equal(t, []string{models.TypeAuditActivity}, AffectedReports("audit_logs"))
	assert.Nil(t, AffectedReports("messages"))
	assert.Nil(t, AffectedReports(""))
}

func TestSortedCounts(t *testing.T) {
	rows := SortedCounts(map[string]int64{"employee": 10, "admin": 1, "hr": 3, "manager": 3})
	assert.Equal(t, []models.CountRow{
		{Key: "employee", Count: 10},
		{Key: "hr", Count: 3},
		{Key: "manager", Count: 3},
		{Key: "admin", Count: 1},
	}, rows)
}

func TestFoldHeadcount(t *testing.T) {
	finance := primitive.NewObjectID()
	ops := primitive.NewObjectID()
	names := map[primitive.ObjectID]string{finance: "Finance", ops: "operations"}

	rows := FoldHeadcount([]HeadcountGroup{
		{Department: &ops, Role: "employee", Active: true, Count: 4},
		{Department: &finance, Role: "manager", Active: true, Count: 1},
		{Department: &finance, Role: "employee", Active: false, Count: 2},
		{Department: nil, Role: "employee", Active: true, Count: 1},
	}, names)

	require.Len(t, rows, 3)
	assert.Equal(t, "Finance", rows[0].Department)
	assert.Equal(t, int64(3), rows[0].Total)
	assert.Equal(t, int64(1), rows[0].Active)
	assert.Equal(t, int64(2), rows[0].ByRole["employee"])
	assert.Equal(t, "operations", rows[1].Department)
	assert.Equal(t, UnassignedDepartment, rows[2].Department)
	assert.Empty(t, rows[2].DepartmentID)
}

func TestCoverage(t *testing.T) {
	schedules := []schedulemodels.Schedule{{
		Entries: []schedulemodels.ScheduleEntry{
			{Employee: primitive.NewObjectID(), Days: []schedulemodels.ScheduleDay{
				{Day: schedulemodels.Monday, IsWorking: true, StartTime: "08:00", EndTime: "16:00"},
				{Day: schedulemodels.Tuesday, IsWorking: false},
			}},
			{Employee: primitive.NewObjectID(), Days: []schedulemodels.ScheduleDay{
				{Day: schedulemodels.Monday, IsWorking: true, StartTime: "09:00", EndTime: "13:30"},
			}},
		},
	}}

	rows := Coverage(schedules)
	require.Len(t, rows, 7)
	assert.Equal(t, schedulemodels.Sunday, rows[0].Day)
	monday := rows[schedulemodels.DayIndex(schedulemodels.Monday)]
	assert.Equal(t, 2, monday.Employees)
	assert.InDelta(t, 12.5, monday.Hours, 0.001)
	assert.Equal(t, 0, rows[schedulemodels.DayIndex(schedulemodels.Tuesday)].Employees)
}

func TestBuildSheet(t *testing.T) {
	sheet := BuildSheet(&models.Report{Type: models.TypeRoles, Data: []models.CountRow{{Key: "hr", Count: 2}}})
	assert.Equal(t, "roles", sheet.Name)
	assert.Equal(t, []string{"Role", "Count"}, sheet.Headers)
	assert.Equal(t, [][]interface{}{{"hr", int64(2)}}, sheet.Rows)

	sheet = BuildSheet(&models.Report{Type: models.TypeDashboard, Data: []models.Card{{Key: "employees", Label: "Employees", Value: 5}}})
	assert.Equal(t, []string{"Metric", "Value"}, sheet.Headers)
	assert.Equal(t, "Employees", sheet.Rows[0][0])
}
