package schedulesvc

import (
	"fmt"
	"sort"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"

	empmodels "qced_directory/internal/api/employee/models"
	scheduledto "qced_directory/internal/api/schedule/dto"
	models "qced_directory/internal/api/schedule/models"
	"qced_directory/internal/common"
	"qced_directory/internal/global"
)

const dateLayout = "2006-01-02"

// NormalizeWeekStart đưa ngày bất kỳ về Chủ nhật của tuần đó
func NormalizeWeekStart(date string) (string, error) {
	t, err := time.Parse(dateLayout, date)
	if err != nil {
		return "", common.NewError(common.ErrCodeValidationFormat, "weekStart must be a date in YYYY-MM-DD format", common.StatusBadRequest,
			[]global.FieldError{{Field: "weekStart", Tag: "datetime", Message: "weekStart must be a date in YYYY-MM-DD format"}})
	}
	return t.AddDate(0, 0, -int(t.Weekday())).Format(dateLayout), nil
}

func entryError(fieldErrs []global.FieldError) error {
	return common.NewError(common.ErrCodeValidationInput, common.MsgValidationError, common.StatusBadRequest, fieldErrs)
}

// NormalizeEntries kiểm tra và chuẩn hóa entries: mỗi nhân viên một lần, mỗi ngày một lần,
// ngày làm việc cần startTime < endTime (không có ca qua đêm), ngày nghỉ bị xóa giờ.
func NormalizeEntries(inputs []scheduledto.EntryInput) ([]models.ScheduleEntry, error) {
	entries := make([]models.ScheduleEntry, 0, len(inputs))
	seenEmployees := map[primitive.ObjectID]bool{}
	var fieldErrs []global.FieldError

	for i, in := range inputs {
		path := fmt.Sprintf("entries[%d]", i)
		employeeID, err := primitive.ObjectIDFromHex(in.Employee)
		if err != nil {
			fieldErrs = append(fieldErrs, global.FieldError{Field: path + ".employee", Tag: "object_id", Message: "employee must be a valid id"})
			continue
		}
		if seenEmployees[employeeID] {
			fieldErrs = append(fieldErrs, global.FieldError{Field: path + ".employee", Tag: "unique", Message: "employee appears more than once"})
			continue
		}
		seenEmployees[employeeID] = true

		seenDays := map[string]bool{}
		days := make([]models.ScheduleDay, 0, len(in.Days))
		for j, d := range in.Days {
			dayPath := fmt.Sprintf("%s.days[%d]", path, j)
			if models.DayIndex(d.Day) < 0 {
				fieldErrs = append(fieldErrs, global.FieldError{Field: dayPath + ".day", Tag: "oneof", Message: "day must be a weekday name"})
				continue
			}
			if seenDays[d.Day] {
				fieldErrs = append(fieldErrs, global.FieldError{Field: dayPath + ".day", Tag: "unique", Message: d.Day + " appears more than once"})
				continue
			}
			seenDays[d.Day] = true

			day := models.ScheduleDay{Day: d.Day, IsWorking: d.IsWorking}
			if d.IsWorking {
				// HH:MM cùng độ dài nên so sánh chuỗi đúng thứ tự thời gian
				if d.StartTime == "" || d.EndTime == "" || d.StartTime >= d.EndTime {
					fieldErrs = append(fieldErrs, global.FieldError{Field: dayPath + ".endTime", Tag: "gtfield", Message: "endTime must be after startTime on the same day"})
					continue
				}
				day.StartTime, day.EndTime = d.StartTime, d.EndTime
			}
			days = append(days, day)
		}
		sort.Slice(days, func(a, b int) bool { return models.DayIndex(days[a].Day) < models.DayIndex(days[b].Day) })
		entries = append(entries, models.ScheduleEntry{Employee: employeeID, Days: days})
	}

	if len(fieldErrs) > 0 {
		return nil, entryError(fieldErrs)
	}
	return entries, nil
}

// CheckMembership yêu cầu mọi nhân viên trong lịch thuộc phòng ban của lịch
func CheckMembership(entries []models.ScheduleEntry, members map[primitive.ObjectID]bool) error {
	var fieldErrs []global.FieldError
	for i, e := range entries {
		if !members[e.Employee] {
			fieldErrs = append(fieldErrs, global.FieldError{
				Field:   fmt.Sprintf("entries[%d].employee", i),
				Tag:     "department",
				Message: "employee does not belong to the schedule's department",
			})
		}
	}
	if len(fieldErrs) > 0 {
		return entryError(fieldErrs)
	}
	return nil
}

func describeDay(d *models.ScheduleDay) string {
	if d == nil || !d.IsWorking {
		return "off"
	}
	return d.StartTime + "-" + d.EndTime
}

func dayMap(entry models.ScheduleEntry) map[string]*models.ScheduleDay {
	m := make(map[string]*models.ScheduleDay, len(entry.Days))
	for i := range entry.Days {
		m[entry.Days[i].Day] = &entry.Days[i]
	}
	return m
}

// DiffEntries mô tả thay đổi giữa hai phiên bản lịch, mỗi thay đổi một dòng
func DiffEntries(before, after []models.ScheduleEntry, names map[primitive.ObjectID]string) []string {
	label := func(id primitive.ObjectID) string {
		if name, ok := names[id]; ok && name != "" {
			return name
		}
		return id.Hex()
	}
	old := make(map[primitive.ObjectID]models.ScheduleEntry, len(before))
	for _, e := range before {
		old[e.Employee] = e
	}

	changes := []string{}
	seen := map[primitive.ObjectID]bool{}
	for _, e := range after {
		seen[e.Employee] = true
		prev, existed := old[e.Employee]
		if !existed {
			changes = append(changes, "Added "+label(e.Employee))
			continue
		}
		prevDays, nextDays := dayMap(prev), dayMap(e)
		for _, day := range models.Days {
			from, to := describeDay(prevDays[day]), describeDay(nextDays[day])
			if from != to {
				changes = append(changes, fmt.Sprintf("%s: %s %s -> %s", label(e.Employee), day, from, to))
			}
		}
	}
	for _, e := range before {
		if !seen[e.Employee] {
			changes = append(changes, "Removed "+label(e.Employee))
		}
	}
	return changes
}

// ScopeFilter dựng filter theo role: admin/hr xem tất cả, manager chỉ phòng ban của mình,
// nhân viên chỉ lịch đã publish của phòng ban mình.
func ScopeFilter(actor empmodels.Employee, query scheduledto.ListQuery) (bson.M, error) {
	filter := bson.M{}
	if query.WeekStart != "" {
		week, err := NormalizeWeekStart(query.WeekStart)
		if err != nil {
			return nil, err
		}
		filter["weekStart"] = week
	}
	if query.Published != nil {
		filter["isPublished"] = *query.Published
	}

	var requested *primitive.ObjectID
	if query.Department != "" {
		id, err := primitive.ObjectIDFromHex(query.Department)
		if err != nil {
			return nil, common.ErrInvalidID
		}
		requested = &id
	}

	if actor.IsStaff() {
		if requested != nil {
			filter["department"] = *requested
		}
		return filter, nil
	}
	if actor.Department == nil || (requested != nil && *requested != *actor.Department) {
		return nil, common.ErrForbidden
	}
	filter["department"] = *actor.Department
	if actor.Role != empmodels.RoleManager {
		filter["isPublished"] = true
	}
	return filter, nil
}

// CanView kiểm tra quyền xem một lịch
func CanView(actor empmodels.Employee, schedule *models.Schedule) bool {
	if actor.IsStaff() {
		return true
	}
	if actor.Department == nil || *actor.Department != schedule.Department {
		return false
	}
	return actor.Role == empmodels.RoleManager || schedule.IsPublished
}

// CanManage kiểm tra quyền tạo/sửa/publish lịch của phòng ban
func CanManage(actor empmodels.Employee, department primitive.ObjectID) bool {
	if actor.IsStaff() {
		return true
	}
	return actor.Role == empmodels.RoleManager && actor.Department != nil && *actor.Department == department
}

// PublishChanges: publish lại lịch đã publish (hoặc gỡ lịch chưa publish) thì không làm gì
func PublishChanges(isPublished, publish bool) bool {
	return isPublished != publish
}

// WorkingMinutes trả về tổng số phút làm việc của một ngày
func WorkingMinutes(day models.ScheduleDay) int {
	if !day.IsWorking {
		return 0
	}
	start, err1 := time.Parse("15:04", day.StartTime)
	end, err2 := time.Parse("15:04", day.EndTime)
	if err1 != nil || err2 != nil || !end.After(start) {
		return 0
	}
	return int(end.Sub(start).Minutes())
}
