package scheduledto

// DayInput là ca làm của một ngày
type DayInput struct {
	Day       string `json:"day" validate:"required,oneof=sunday monday tuesday wednesday thursday friday saturday"`
	IsWorking bool   `json:"isWorking"`
	StartTime string `json:"startTime" validate:"required_if=IsWorking true,omitempty,hhmm"`
	EndTime   string `json:"endTime" validate:"required_if=IsWorking true,omitempty,hhmm"`
}

// EntryInput là lịch của một nhân viên
type EntryInput struct {
	Employee string     `json:"employee" validate:"required,object_id"`
	Days     []DayInput `json:"days" validate:"max=7,dive"`
}

// ScheduleCreateInput đầu vào tạo lịch
type ScheduleCreateInput struct {
	Department string       `json:"department" validate:"required,object_id"`
	WeekStart  string       `json:"weekStart" validate:"required,datetime=2006-01-02"`
	Entries    []EntryInput `json:"entries" validate:"max=500,dive"`
}

// ScheduleUpdateInput đầu vào cập nhật lịch (thay toàn bộ entries)
type ScheduleUpdateInput struct {
	Entries []EntryInput `json:"entries" validate:"max=500,dive"`
}

// PublishInput đầu vào publish/unpublish, mặc định publish
type PublishInput struct {
	Publish *bool `json:"publish"`
}

// ListQuery là tham số lọc danh sách lịch
type ListQuery struct {
	Department string `query:"department" validate:"omitempty,object_id"`
	WeekStart  string `query:"weekStart" validate:"omitempty,datetime=2006-01-02"`
	Published  *bool  `query:"published"`
}
