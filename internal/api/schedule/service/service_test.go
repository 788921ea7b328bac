package schedulesvc

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.mongodb.org/mongo-driver/bson/primitive"

	empmodels "qced_directory/internal/api/employee/models"
	scheduledto "qced_directory/internal/api/schedule/dto"
	models "qced_directory/internal/api/schedule/models"
	"qced_directory/internal/common"
	"qced_directory/internal/global"
)

func TestNormalizeWeekStart(t *testing.T) {
	cases := map[string]string{
		"2024-06-09": "2024-06-09", // Chủ nhật
		"2024-06-12": "2024-06-09",
		"2024-06-15": "2024-06-09", // Thứ bảy
		"2024-03-01": "2024-02-25", // qua tháng
	}
	for in, want := range cases {
		got, err := NormalizeWeekStart(in)
		require.NoError(t, err, in)
		assert.Equal(t, want, got, in)
	}
	_, err := NormalizeWeekStart("09/06/2024")
	assert.Equal(t, common.StatusBadRequest, common.StatusOf(err))
}

func TestNormalizeEntries(t *testing.T) {
	emp := primitive.NewObjectID()

	entries, err := NormalizeEntries([]scheduledto.EntryInput{{
		Employee: emp.Hex(),
		Days: []scheduledto.DayInput{
			{Day: models.Tuesday, IsWorking: true, StartTime: "09:00", EndTime: "17:00"},
			{Day: models.Sunday, IsWorking: false, StartTime: "08:00", EndTime: "12:00"},
		},
	}})
	require.NoError(t, err)
	require.Len(t, entries, 1)
	require.Len(t, entries[0].Days, 2)
	assert.Equal(t, models.Sunday, entries[0].Days[0].Day, "sắp xếp theo thứ tự trong tuần")
	assert.Empty(t, entries[0].Days[0].StartTime, "ngày nghỉ bị xóa giờ")
	assert.Equal(t, "09:00", entries[0].Days[1].StartTime)

	t.Run("rejects overnight, duplicate day and duplicate employee", func(t *testing.T) {
		_, err := NormalizeEntries([]scheduledto.EntryInput{
			{Employee: emp.Hex(), Days: []scheduledto.DayInput{
				{Day: models.Monday, IsWorking: true, StartTime: "22:00", EndTime: "06:00"},
				{Day: models.Friday, IsWorking: true, StartTime: "08:00", EndTime: "12:00"},
				{Day: models.Friday, IsWorking: false},
			}},
			{Employee: emp.Hex()},
		})
		require.Error(t, err)
		var appErr *common.Error
		require.ErrorAs(t, err, &appErr)
		fieldErrs, ok := appErr.Details.([]global.FieldError)
		require.True(t, ok)
		require.Len(t, fieldErrs, 3)
		assert.Equal(t, "entries[0].days[0].endTime", fieldErrs[0].Field)
		assert.Equal(t, "entries[0].days[2].day", fieldErrs[1].Field)
		assert.Equal(t, "entries[1].employee", fieldErrs[2].Field)
	})
}

func TestCheckMembership(t *testing.T) {
	a, b := primitive.NewObjectID(), primitive.NewObjectID()
	entries := []models.ScheduleEntry{{Employee: a}, {Employee: b}}
	assert.NoError(t, CheckMembership(entries, map[primitive.ObjectID]bool{a: true, b: true}))
	assert.Error(t, CheckMembership(entries, map[primitive.ObjectID]bool{a: true}))
}

func TestDiffEntries(t *testing.T) {
	ali, sara, omar := primitive.NewObjectID(), primitive.NewObjectID(), primitive.NewObjectID()
	names := map[primitive.ObjectID]string{ali: "Ali", sara: "Sara"}

	before := []models.ScheduleEntry{
		{Employee: ali, Days: []models.ScheduleDay{{Day: models.Monday, IsWorking: true, StartTime: "08:00", EndTime: "16:00"}}},
		{Employee: sara},
	}
	after := []models.ScheduleEntry{
		{Employee: ali, Days: []models.ScheduleDay{
			{Day: models.Monday, IsWorking: true, StartTime: "09:00", EndTime: "17:00"},
			{Day: models.Tuesday, IsWorking: true, StartTime: "08:00", EndTime: "12:00"},
		}},
		{Employee: omar},
	}

	assert.Equal(t, []string{
		"Ali: monday 08:00-16:00 -> 09:00-17:00",
		"Ali: tuesday off -> 08:00-12:00",
		"Added " + omar.Hex(),
		"Removed Sara",
	}, DiffEntries(before, after, names))
	assert.Empty(t, DiffEntries(after, after, names))
}

func TestScopeFilter(t *testing.T) {
	dept, other := primitive.NewObjectID(), primitive.NewObjectID()

	t.Run("staff", func(t *testing.T) {
		filter, err := ScopeFilter(empmodels.Employee{Role: empmodels.RoleHR}, scheduledto.ListQuery{Department: other.Hex(), WeekStart: "2024-06-12"})
		require.NoError(t, err)
		assert.Equal(t, other, filter["department"])
		assert.Equal(t, "2024-06-09", filter["weekStart"])
		assert.NotContains(t, filter, "isPublished")
	})

	t.Run("manager limited to own department", func(t *testing.T) {
		manager := empmodels.Employee{Role: empmodels.RoleManager, Department: &dept}
		filter, err := ScopeFilter(manager, scheduledto.ListQuery{})
		require.NoError(t, err)
		assert.Equal(t, dept, filter["department"])
		assert.NotContains(t, filter, "isPublished")

		_, err = ScopeFilter(manager, scheduledto.ListQuery{Department: other.Hex()})
		assert.ErrorIs(t, err, common.ErrForbidden)
	})

	t.Run("employee sees published only", func(t *testing.T) {
		unpublished := false
		filter, err := ScopeFilter(empmodels.Employee{Role: empmodels.RoleEmployee, Department: &dept}, scheduledto.ListQuery{Published: &unpublished})
		require.NoError(t, err)
		assert.Equal(t, true, filter["isPublished"])

		_, err = ScopeFilter(empmodels.Employee{Role: empmodels.RoleEmployee}, scheduledto.ListQuery{})
		assert.ErrorIs(t, err, common.ErrForbidden)
	})
}

func TestCanViewAndManage(t *testing.T) {
	dept, other := primitive.NewObjectID(), primitive.NewObjectID()
	draft := &models.Schedule{Department: dept}
	published := &models.Schedule{Department: dept, IsPublished: true}

	employee := empmodels.Employee{Role: empmodels.RoleEmployee, Department: &dept}
	manager := empmodels.Employee{Role: empmodels.RoleManager, Department: &dept}
	outsider := empmodels.Employee{Role: empmodels.RoleManager, Department: &other}

	assert.False(t, CanView(employee, draft))
	assert.True(t, CanView(employee, published))
	assert.True(t, CanView(manager, draft))
	assert.False(t, CanView(outsider, published))
	assert.True(t, CanView(empmodels.Employee{Role: empmodels.RoleAdmin}, draft))

	assert.True(t, CanManage(manager, dept))
	assert.False(t, CanManage(outsider, dept))
	assert.False(t, CanManage(employee, dept))
	assert.True(t, CanManage(empmodels.Employee{Role: empmodels.RoleHR}, dept))
}

func TestPublishChanges(t *testing.T) {
	assert.True(t, PublishChanges(false, true))
	assert.True(t, PublishChanges(true, false))
	assert.False(t, PublishChanges(true, true), "publish lại không tăng version, không gửi email")
	assert.False(t, PublishChanges(false, false))
}

func TestWorkingMinutes(t *testing.T) {
	assert.Equal(t, 480, WorkingMinutes(models.ScheduleDay{IsWorking: true, StartTime: "08:00", EndTime: "16:00"}))
	assert.Equal(t, 0, WorkingMinutes(models.ScheduleDay{IsWorking: false, StartTime: "08:00", EndTime: "16:00"}))
	assert.Equal(t, 0, WorkingMinutes(models.ScheduleDay{IsWorking: true, StartTime: "16:00", EndTime: "08:00"}))
}

func TestShiftEmailBody(t *testing.T) {
	schedule := models.Schedule{WeekStart: "2024-06-09", Version: 2}
	body := ShiftEmailBody("Ali", schedule, models.ScheduleEntry{Days: []models.ScheduleDay{
		{Day: models.Monday, IsWorking: true, StartTime: "08:00", EndTime: "16:00"},
	}})
	assert.Contains(t, body, "Hello Ali")
	assert.Contains(t, body, "week of 2024-06-09 (version 2)")
	assert.Contains(t, body, "Monday     08:00-16:00")
	assert.Contains(t, body, "Sunday     off")
}
