// Package schedulesvc - service lịch làm việc theo tuần: phạm vi theo role, phiên bản, publish và thông báo.
package schedulesvc

import (
	"context"
	"fmt"
	"strings"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	basemodels "qced_directory/internal/api/base/models"
	basesvc "qced_directory/internal/api/base/service"
	deptmodels "qced_directory/internal/api/department/models"
	empmodels "qced_directory/internal/api/employee/models"
	scheduledto "qced_directory/internal/api/schedule/dto"
	models "qced_directory/internal/api/schedule/models"
	"qced_directory/internal/common"
	"qced_directory/internal/delivery"
	"qced_directory/internal/global"
	"qced_directory/internal/logger"
	"qced_directory/internal/realtime"
	"qced_directory/internal/utility"
)

var errPublished = common.NewError(common.ErrCodeBusinessState, "Published schedules cannot be deleted; unpublish it first", common.StatusConflict, nil)

// ScheduleService là service lịch làm việc
type ScheduleService struct {
	*basesvc.BaseServiceMongoImpl[models.Schedule]
	historyService    *basesvc.BaseServiceMongoImpl[models.ScheduleHistory]
	employeeService   *basesvc.BaseServiceMongoImpl[empmodels.Employee]
	departmentService *basesvc.BaseServiceMongoImpl[deptmodels.Department]
}

// NewScheduleService tạo mới ScheduleService
func NewScheduleService() (*ScheduleService, error) {
	collections := map[string]string{
		"schedules":          global.MongoDB_ColNames.Schedules,
		"schedule histories": global.MongoDB_ColNames.ScheduleHistories,
		"employees":          global.MongoDB_ColNames.Employees,
		"departments":        global.MongoDB_ColNames.Departments,
	}
	for label, name := range collections {
		if _, exist := global.RegistryCollections.Get(name); !exist {
			return nil, fmt.Errorf("failed to get %s collection: %v", label, common.ErrNotFound)
		}
	}
	get := func(name string) *mongo.Collection {
		c, _ := global.RegistryCollections.Get(name)
		return c
	}
	return &ScheduleService{
		BaseServiceMongoImpl: basesvc.NewBaseServiceMongo[models.Schedule](get(global.MongoDB_ColNames.Schedules)),
		historyService:       basesvc.NewBaseServiceMongo[models.ScheduleHistory](get(global.MongoDB_ColNames.ScheduleHistories)),
		employeeService:      basesvc.NewBaseServiceMongo[empmodels.Employee](get(global.MongoDB_ColNames.Employees)),
		departmentService:    basesvc.NewBaseServiceMongo[deptmodels.Department](get(global.MongoDB_ColNames.Departments)),
	}, nil
}

// List trả về các lịch trong phạm vi của người gọi, tuần mới nhất trước
func (s *ScheduleService) List(ctx context.Context, actor empmodels.Employee, query scheduledto.ListQuery, page, limit int64) (*basemodels.PaginateResult[models.Schedule], error) {
	filter, err := ScopeFilter(actor, query)
	if err != nil {
		return nil, err
	}
	opts := options.Find().SetSort(bson.D{{Key: "weekStart", Value: -1}, {Key: "_id", Value: 1}})
	return s.FindWithPagination(ctx, filter, page, limit, opts)
}

// Get lấy một lịch, kiểm tra quyền xem
func (s *ScheduleService) Get(ctx context.Context, id primitive.ObjectID, actor empmodels.Employee) (models.Schedule, error) {
	schedule, err := s.FindOneById(ctx, id)
	if err != nil {
		return schedule, err
	}
	if !CanView(actor, &schedule) {
		return schedule, common.ErrForbidden
	}
	return schedule, nil
}

// getManaged lấy lịch mà người gọi được phép quản lý
func (s *ScheduleService) getManaged(ctx context.Context, id primitive.ObjectID, actor empmodels.Employee) (models.Schedule, error) {
	schedule, err := s.FindOneById(ctx, id)
	if err != nil {
		return schedule, err
	}
	if !CanManage(actor, schedule.Department) {
		return schedule, common.ErrForbidden
	}
	return schedule, nil
}

// departmentMembers trả về tập nhân viên thuộc phòng ban
func (s *ScheduleService) departmentMembers(ctx context.Context, department primitive.ObjectID) (map[primitive.ObjectID]bool, error) {
	employees, err := s.employeeService.Find(ctx, bson.M{"department": department}, options.Find().SetProjection(bson.M{"_id": 1}))
	if err != nil {
		return nil, err
	}
	members := make(map[primitive.ObjectID]bool, len(employees))
	for _, e := range employees {
		members[e.ID] = true
	}
	return members, nil
}

func (s *ScheduleService) prepareEntries(ctx context.Context, department primitive.ObjectID, inputs []scheduledto.EntryInput) ([]models.ScheduleEntry, error) {
	entries, err := NormalizeEntries(inputs)
	if err != nil {
		return nil, err
	}
	members, err := s.departmentMembers(ctx, department)
	if err != nil {
		return nil, err
	}
	return entries, CheckMembership(entries, members)
}

// employeeNames trả về map id -> tên cho các nhân viên
func (s *ScheduleService) employeeNames(ctx context.Context, entries ...[]models.ScheduleEntry) map[primitive.ObjectID]string {
	ids := []primitive.ObjectID{}
	for _, list := range entries {
		for _, e := range list {
			ids = append(ids, e.Employee)
		}
	}
	names := map[primitive.ObjectID]string{}
	if len(ids) == 0 {
		return names
	}
	employees, err := s.employeeService.FindManyByIds(ctx, utility.Unique(ids))
	if err != nil {
		logger.WithModule("schedule").WithError(err).Warn("Failed to load employee names for schedule diff")
		return names
	}
	for _, e := range employees {
		names[e.ID] = e.Name
	}
	return names
}

func (s *ScheduleService) writeHistory(ctx context.Context, schedule models.Schedule, action string, actor empmodels.Employee, changes []string) {
	actorID := actor.ID
	entry := models.ScheduleHistory{
		Schedule:      schedule.ID,
		Version:       schedule.Version,
		Action:        action,
		ChangedBy:     &actorID,
		ChangedByName: actor.Name,
		Changes:       changes,
		Snapshot:      schedule.Entries,
	}
	if entry.Changes == nil {
		entry.Changes = []string{}
	}
	if entry.Snapshot == nil {
		entry.Snapshot = []models.ScheduleEntry{}
	}
	if _, err := s.historyService.InsertOne(ctx, entry); err != nil {
		logger.WithModule("schedule").WithError(err).WithField("schedule_id", schedule.ID.Hex()).Error("Failed to write schedule history")
	}
}

// Create tạo lịch mới (version 1)
func (s *ScheduleService) Create(ctx context.Context, input *scheduledto.ScheduleCreateInput, actor empmodels.Employee) (models.Schedule, error) {
	var schedule models.Schedule
	department, err := utility.ParseObjectID(input.Department)
	if err != nil {
		return schedule, err
	}
	if !CanManage(actor, department) {
		return schedule, common.ErrForbidden
	}
	exists, err := s.departmentService.DocumentExists(ctx, bson.M{"_id": department})
	if err != nil {
		return schedule, err
	}
	if !exists {
		return schedule, common.NewError(common.ErrCodeValidationInput, "Department does not exist", common.StatusBadRequest, map[string]string{"field": "department"})
	}
	week, err := NormalizeWeekStart(input.WeekStart)
	if err != nil {
		return schedule, err
	}
	entries, err := s.prepareEntries(ctx, department, input.Entries)
	if err != nil {
		return schedule, err
	}

	actorID := actor.ID
	schedule, err = s.InsertOne(ctx, models.Schedule{
		Department: department,
		WeekStart:  week,
		Entries:    entries,
		Version:    1,
		CreatedBy:  &actorID,
	})
	if err != nil {
		if common.StatusOf(err) == common.StatusConflict {
			return schedule, common.NewError(common.ErrCodeBusinessState, "A schedule already exists for this department and week", common.StatusConflict, nil)
		}
		return schedule, err
	}
	changes := append([]string{"Created schedule for week of " + week}, DiffEntries(nil, entries, s.employeeNames(ctx, entries))...)
	s.writeHistory(ctx, schedule, models.HistoryCreate, actor, changes)
	return schedule, nil
}

// Update thay toàn bộ entries và tăng version. Lịch đã publish vẫn giữ trạng thái và được thông báo lại.
func (s *ScheduleService) Update(ctx context.Context, id primitive.ObjectID, input *scheduledto.ScheduleUpdateInput, actor empmodels.Employee) (models.Schedule, error) {
	current, err := s.getManaged(ctx, id, actor)
	if err != nil {
		return current, err
	}
	entries, err := s.prepareEntries(ctx, current.Department, input.Entries)
	if err != nil {
		return current, err
	}

	updated, err := s.UpdateById(ctx, id, &basesvc.UpdateData{
		Set: map[string]interface{}{"entries": entries},
		Inc: map[string]interface{}{"version": 1},
	})
	if err != nil {
		return updated, err
	}
	changes := DiffEntries(current.Entries, entries, s.employeeNames(ctx, current.Entries, entries))
	if len(changes) == 0 {
		changes = []string{"No changes"}
	}
	s.writeHistory(ctx, updated, models.HistoryUpdate, actor, changes)
	if updated.IsPublished {
		s.notify(ctx, updated, true)
	}
	return updated, nil
}

// Publish publish hoặc gỡ publish lịch
func (s *ScheduleService) Publish(ctx context.Context, id primitive.ObjectID, publish bool, actor empmodels.Employee) (models.Schedule, error) {
	current, err := s.getManaged(ctx, id, actor)
	if err != nil {
		return current, err
	}
	if !PublishChanges(current.IsPublished, publish) {
		return current, nil
	}

	update := &basesvc.UpdateData{Inc: map[string]interface{}{"version": 1}}
	action := models.HistoryPublish
	if publish {
		update.Set = map[string]interface{}{
			"isPublished": true,
			"publishedAt": time.Now().UnixMilli(),
			"publishedBy": actor.ID,
		}
	} else {
		action = models.HistoryUnpublish
		update.Set = map[string]interface{}{"isPublished": false}
		update.Unset = map[string]interface{}{"publishedAt": "", "publishedBy": ""}
	}

	updated, err := s.UpdateById(ctx, id, update)
	if err != nil {
		return updated, err
	}
	s.writeHistory(ctx, updated, action, actor, []string{titleCase(action) + "ed by " + actor.Name})
	if publish {
		s.notify(ctx, updated, false)
	}
	return updated, nil
}

// History trả về các phiên bản của lịch, mới nhất trước
func (s *ScheduleService) History(ctx context.Context, id primitive.ObjectID, actor empmodels.Employee) ([]models.ScheduleHistory, error) {
	if _, err := s.Get(ctx, id, actor); err != nil {
		return nil, err
	}
	return s.historyService.Find(ctx, bson.M{"schedule": id},
		options.Find().SetSort(bson.D{{Key: "version", Value: -1}, {Key: "createdAt", Value: -1}}))
}

// Delete xóa lịch chưa publish. Admin có thể ép xóa lịch đã publish với force.
func (s *ScheduleService) Delete(ctx context.Context, id primitive.ObjectID, actor empmodels.Employee, force bool) error {
	current, err := s.getManaged(ctx, id, actor)
	if err != nil {
		return err
	}
	if current.IsPublished && !(force && actor.Role == empmodels.RoleAdmin) {
		return errPublished
	}
	if err := s.DeleteById(ctx, id); err != nil {
		return err
	}
	current.Version++
	s.writeHistory(ctx, current, models.HistoryDelete, actor, []string{"Deleted schedule for week of " + current.WeekStart})
	return nil
}

// notify đẩy schedule:published tới phòng ban và gửi email cho nhân viên có tên trong lịch
func (s *ScheduleService) notify(ctx context.Context, schedule models.Schedule, updated bool) {
	realtime.Publish(realtime.EventSchedulePublished, map[string]interface{}{
		"scheduleId": schedule.ID.Hex(),
		"department": schedule.Department.Hex(),
		"weekStart":  schedule.WeekStart,
		"version":    schedule.Version,
		"updated":    updated,
	}, realtime.DepartmentRoom(schedule.Department.Hex()))

	ids := schedule.EmployeeIDs()
	if len(ids) == 0 {
		return
	}
	employees, err := s.employeeService.Find(ctx, bson.M{"_id": bson.M{"$in": ids}, "isActive": true}, nil)
	if err != nil {
		logger.WithModule("schedule").WithError(err).Warn("Failed to load employees for schedule notification")
		return
	}
	byID := make(map[primitive.ObjectID]models.ScheduleEntry, len(schedule.Entries))
	for _, e := range schedule.Entries {
		byID[e.Employee] = e
	}

	subject := "Your schedule for the week of " + schedule.WeekStart
	if updated {
		subject = "Updated: " + subject
	}
	for _, emp := range employees {
		delivery.Enqueue(delivery.NewJob(delivery.ChannelEmail, emp.Email, subject, ShiftEmailBody(emp.Name, schedule, byID[emp.ID])))
	}
}

// ShiftEmailBody dựng nội dung email lịch làm việc của một nhân viên
func ShiftEmailBody(name string, schedule models.Schedule, entry models.ScheduleEntry) string {
	var b strings.Builder
	fmt.Fprintf(&b, "Hello %s,\n\nYour schedule for the week of %s (version %d):\n\n", name, schedule.WeekStart, schedule.Version)
	days := dayMap(entry)
	for _, day := range models.Days {
		fmt.Fprintf(&b, "  %-9s  %s\n", titleCase(day), describeDay(days[day]))
	}
	if cfg := global.MongoDB_ServerConfig; cfg != nil && cfg.FrontendURL != "" {
		fmt.Fprintf(&b, "\nView it online: %s/schedules/%s\n", strings.TrimSuffix(cfg.FrontendURL, "/"), schedule.ID.Hex())
	}
	return b.String()
}

func titleCase(s string) string {
	if s == "" {
		return s
	}
	return strings.ToUpper(s[:1]) + s[1:]
}
