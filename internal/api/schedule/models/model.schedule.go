// Package models - model lịch làm việc theo tuần (Schedule) và lịch sử phiên bản.
package models

import (
	"go.mongodb.org/mongo-driver/bson/primitive"
)

// Các ngày trong tuần, tuần bắt đầu từ Chủ nhật
const (
	Sunday    = "sunday"
	Monday    = "monday"
	Tuesday   = "tuesday"
	Wednesday = "wednesday"
	Thursday  = "thursday"
	Friday    = "friday"
	Saturday  = "saturday"
)

// Days theo thứ tự trong tuần
var Days = []string{Sunday, Monday, Tuesday, Wednesday, Thursday, Friday, Saturday}

// DayIndex trả về vị trí của ngày trong tuần, -1 nếu không hợp lệ
func DayIndex(day string) int {
	for i, d := range Days {
		if d == day {
			return i
		}
	}
	return -1
}

// Các action trong lịch sử
const (
	HistoryCreate    = "create"
	HistoryUpdate    = "update"
	HistoryPublish   = "publish"
	HistoryUnpublish = "unpublish"
	HistoryDelete    = "delete"
)

// ScheduleDay là ca làm của một ngày
type ScheduleDay struct {
	Day       string `json:"day" bson:"day"`
	IsWorking bool   `json:"isWorking" bson:"isWorking"`
	StartTime string `json:"startTime,omitempty" bson:"startTime,omitempty"`
	EndTime   string `json:"endTime,omitempty" bson:"endTime,omitempty"`
}

// ScheduleEntry là lịch của một nhân viên trong tuần
type ScheduleEntry struct {
	Employee primitive.ObjectID `json:"employee" bson:"employee"`
	Days     []ScheduleDay      `json:"days" bson:"days"`
}

// Schedule là lịch làm việc của một phòng ban trong một tuần.
// (department, weekStart) là duy nhất.
type Schedule struct {
	ID          primitive.ObjectID  `json:"id,omitempty" bson:"_id,omitempty"`
	Department  primitive.ObjectID  `json:"department" bson:"department" index:"single;compound:dept_week_unique"`
	WeekStart   string              `json:"weekStart" bson:"weekStart" index:"single;compound:dept_week_unique"`
	Entries     []ScheduleEntry     `json:"entries" bson:"entries"`
	IsPublished bool                `json:"isPublished" bson:"isPublished" index:"single"`
	PublishedAt int64               `json:"publishedAt,omitempty" bson:"publishedAt,omitempty"`
	PublishedBy *primitive.ObjectID `json:"publishedBy,omitempty" bson:"publishedBy,omitempty"`
	Version     int                 `json:"version" bson:"version"`
	CreatedBy   *primitive.ObjectID `json:"createdBy,omitempty" bson:"createdBy,omitempty"`
	CreatedAt   int64               `json:"createdAt" bson:"createdAt"`
	UpdatedAt   int64               `json:"updatedAt" bson:"updatedAt"`
}

// EmployeeIDs trả về id các nhân viên có trong lịch
func (s *Schedule) EmployeeIDs() []primitive.ObjectID {
	ids := make([]primitive.ObjectID, 0, len(s.Entries))
	for _, e := range s.Entries {
		ids = append(ids, e.Employee)
	}
	return ids
}

// ScheduleHistory là một phiên bản của lịch
type ScheduleHistory struct {
	ID            primitive.ObjectID  `json:"id,omitempty" bson:"_id,omitempty"`
	Schedule      primitive.ObjectID  `json:"schedule" bson:"schedule" index:"single;compound:schedule_version"`
	Version       int                 `json:"version" bson:"version" index:"compound:schedule_version"`
	Action        string              `json:"action" bson:"action"`
	ChangedBy     *primitive.ObjectID `json:"changedBy,omitempty" bson:"changedBy,omitempty"`
	ChangedByName string              `json:"changedByName,omitempty" bson:"changedByName,omitempty"`
	Changes       []string            `json:"changes" bson:"changes"`
	Snapshot      []ScheduleEntry     `json:"snapshot" bson:"snapshot"`
	CreatedAt     int64               `json:"createdAt" bson:"createdAt"`
	UpdatedAt     int64               `json:"updatedAt" bson:"updatedAt"`
}
