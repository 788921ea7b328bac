// Package reportsvc - tổng hợp báo cáo nhân sự, lịch làm việc và nhật ký.
package reportsvc

import (
	"context"
	"fmt"
	"sync"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"

	auditsvc "qced_directory/internal/api/audit/service"
	basesvc "qced_directory/internal/api/base/service"
	deptmodels "qced_directory/internal/api/department/models"
	empmodels "qced_directory/internal/api/employee/models"
	"qced_directory/internal/api/events"
	reportdto "qced_directory/internal/api/report/dto"
	models "qced_directory/internal/api/report/models"
	schedulemodels "qced_directory/internal/api/schedule/models"
	schedulesvc "qced_directory/internal/api/schedule/service"
	"qced_directory/internal/common"
	"qced_directory/internal/global"
	"qced_directory/internal/utility"
)

// Mặc định audit-activity lấy 30 ngày gần nhất
const defaultAuditRange = 30 * 24 * time.Hour

// ReportService tổng hợp báo cáo, kết quả được cache ngắn hạn
type ReportService struct {
	employees   *basesvc.BaseServiceMongoImpl[empmodels.Employee]
	departments *basesvc.BaseServiceMongoImpl[deptmodels.Department]
	schedules   *basesvc.BaseServiceMongoImpl[schedulemodels.Schedule]
	cache       *utility.Cache
}

var (
	reportServiceInstance *ReportService
	reportServiceOnce     sync.Once
	reportServiceErr      error
)

// GetReportService trả về instance dùng chung (cache và handler sự kiện chỉ đăng ký một lần)
func GetReportService() (*ReportService, error) {
	reportServiceOnce.Do(func() {
		reportServiceInstance, reportServiceErr = newReportService()
	})
	return reportServiceInstance, reportServiceErr
}

func newReportService() (*ReportService, error) {
	employees, exist := global.RegistryCollections.Get(global.MongoDB_ColNames.Employees)
	if !exist {
		return nil, fmt.Errorf("failed to get employees collection: %v", common.ErrNotFound)
	}
	departments, exist := global.RegistryCollections.Get(global.MongoDB_ColNames.Departments)
	if !exist {
		return nil, fmt.Errorf("failed to get departments collection: %v", common.ErrNotFound)
	}
	schedules, exist := global.RegistryCollections.Get(global.MongoDB_ColNames.Schedules)
	if !exist {
		return nil, fmt.Errorf("failed to get schedules collection: %v", common.ErrNotFound)
	}

	s := &ReportService{
		employees:   basesvc.NewBaseServiceMongo[empmodels.Employee](employees),
		departments: basesvc.NewBaseServiceMongo[deptmodels.Department](departments),
		schedules:   basesvc.NewBaseServiceMongo[schedulemodels.Schedule](schedules),
		cache:       utility.NewCache(time.Minute, 5*time.Minute),
	}

	events.OnDataChanged(func(_ context.Context, e events.DataChangeEvent) {
		for _, kind := range AffectedReports(e.CollectionName) {
			s.cache.DeletePrefix(kind + ":")
		}
	})
	return s, nil
}

// Generate tạo (hoặc lấy từ cache) báo cáo theo loại
func (s *ReportService) Generate(ctx context.Context, kind string, query reportdto.ReportQuery, actor empmodels.Employee) (*models.Report, error) {
	if !IsValidType(kind) {
		return nil, common.NewError(common.ErrCodeValidationInput, "Unknown report type", common.StatusBadRequest, []global.FieldError{
			{Field: "type", Tag: "oneof", Message: "type must be one of headcount, roles, documents, schedule-coverage, audit-activity, dashboard"},
		})
	}
	if kind == models.TypeAuditActivity && !actor.IsStaff() {
		return nil, common.ErrForbidden
	}
	scope, err := ResolveScope(actor, query)
	if err != nil {
		return nil, err
	}

	if kind == models.TypeScheduleCoverage {
		if query.WeekStart == "" {
			query.WeekStart = time.Now().UTC().Format("2006-01-02")
		}
		if query.WeekStart, err = schedulesvc.NormalizeWeekStart(query.WeekStart); err != nil {
			return nil, err
		}
	}
	if kind == models.TypeAuditActivity && query.From == 0 && query.To == 0 {
		now := time.Now()
		// làm tròn theo phút để cache còn tác dụng
		query.To = now.Truncate(time.Minute).UnixMilli()
		query.From = now.Add(-defaultAuditRange).Truncate(time.Minute).UnixMilli()
	}

	key := CacheKey(kind, scope, query)
	if cached, ok := s.cache.Get(key); ok {
		if report, ok := cached.(*models.Report); ok {
			return report, nil
		}
	}

	var data interface{}
	switch kind {
	case models.TypeHeadcount:
		data, err = s.headcount(ctx, scope)
	case models.TypeRoles:
		data, err = s.countBy(ctx, scope, "$role")
	case models.TypeDocuments:
		data, err = s.countBy(ctx, scope, bson.M{"$ifNull": bson.A{"$documentsStatus", empmodels.DocumentsPending}})
	case models.TypeScheduleCoverage:
		data, err = s.coverage(ctx, scope, query.WeekStart)
	case models.TypeAuditActivity:
		data, err = s.auditActivity(ctx, query.From, query.To)
	case models.TypeDashboard:
		data, err = s.dashboard(ctx, scope)
	}
	if err != nil {
		return nil, err
	}

	report := &models.Report{
		Type:        kind,
		GeneratedAt: time.Now().UnixMilli(),
		Params:      reportParams(scope, query),
		Data:        data,
	}
	s.cache.Set(key, report)
	return report, nil
}

func reportParams(scope *primitive.ObjectID, query reportdto.ReportQuery) map[string]string {
	params := map[string]string{}
	if scope != nil {
		params["department"] = scope.Hex()
	}
	if query.WeekStart != "" {
		params["weekStart"] = query.WeekStart
	}
	if query.From > 0 {
		params["from"] = fmt.Sprint(query.From)
	}
	if query.To > 0 {
		params["to"] = fmt.Sprint(query.To)
	}
	return params
}

func employeeMatch(scope *primitive.ObjectID) bson.M {
	if scope == nil {
		return bson.M{}
	}
	return bson.M{"department": *scope}
}

func (s *ReportService) headcount(ctx context.Context, scope *primitive.ObjectID) ([]models.HeadcountRow, error) {
	pipeline := []bson.M{
		{"$match": employeeMatch(scope)},
		{"$group": bson.M{
			"_id":   bson.M{"department": "$department", "role": "$role", "isActive": "$isActive"},
			"count": bson.M{"$sum": 1},
		}},
	}
	var rows []struct {
		ID struct {
			Department *primitive.ObjectID `bson:"department"`
			Role       string              `bson:"role"`
			IsActive   bool                `bson:"isActive"`
		} `bson:"_id"`
		Count int64 `bson:"count"`
	}
	if err := s.employees.Aggregate(ctx, pipeline, &rows); err != nil {
		return nil, err
	}

	groups := make([]HeadcountGroup, 0, len(rows))
	deptIDs := make([]primitive.ObjectID, 0)
	for _, row := range rows {
		groups = append(groups, HeadcountGroup{Department: row.ID.Department, Role: row.ID.Role, Active: row.ID.IsActive, Count: row.Count})
		if row.ID.Department != nil {
			deptIDs = append(deptIDs, *row.ID.Department)
		}
	}
	names := map[primitive.ObjectID]string{}
	if len(deptIDs) > 0 {
		departments, err := s.departments.FindManyByIds(ctx, utility.Unique(deptIDs))
		if err != nil {
			return nil, err
		}
		for _, d := range departments {
			names[d.ID] = d.Name
		}
	}
	return FoldHeadcount(groups, names), nil
}

func (s *ReportService) countBy(ctx context.Context, scope *primitive.ObjectID, groupKey interface{}) ([]models.CountRow, error) {
	pipeline := []bson.M{
		{"$match": employeeMatch(scope)},
		{"$group": bson.M{"_id": groupKey, "count": bson.M{"$sum": 1}}},
	}
	var rows []struct {
		Key   string `bson:"_id"`
		Count int64  `bson:"count"`
	}
	if err := s.employees.Aggregate(ctx, pipeline, &rows); err != nil {
		return nil, err
	}
	counts := make(map[string]int64, len(rows))
	for _, row := range rows {
		counts[row.Key] += row.Count
	}
	return SortedCounts(counts), nil
}

func (s *ReportService) coverage(ctx context.Context, scope *primitive.ObjectID, weekStart string) ([]models.CoverageRow, error) {
	filter := bson.M{"weekStart": weekStart}
	if scope != nil {
		filter["department"] = *scope
	}
	schedules, err := s.schedules.Find(ctx, filter, nil)
	if err != nil {
		return nil, err
	}
	return Coverage(schedules), nil
}

func (s *ReportService) auditActivity(ctx context.Context, from, to int64) ([]models.CountRow, error) {
	audit, err := auditsvc.GetAuditService()
	if err != nil {
		return nil, err
	}
	counts, err := audit.CountByAction(ctx, from, to)
	if err != nil {
		return nil, err
	}
	return SortedCounts(counts), nil
}

func (s *ReportService) dashboard(ctx context.Context, scope *primitive.ObjectID) ([]models.Card, error) {
	weekStart, err := schedulesvc.NormalizeWeekStart(time.Now().UTC().Format("2006-01-02"))
	if err != nil {
		return nil, err
	}
	employeeFilter := employeeMatch(scope)
	activeFilter := employeeMatch(scope)
	activeFilter["isActive"] = true
	scheduleFilter := bson.M{"weekStart": weekStart}
	if scope != nil {
		scheduleFilter["department"] = *scope
	}
	publishedFilter := bson.M{"weekStart": weekStart, "isPublished": true}
	if scope != nil {
		publishedFilter["department"] = *scope
	}

	prefix := ""
	if scope != nil {
		prefix = "team_"
	}
	cards := []models.Card{}
	add := func(key, label string, count func() (int64, error)) error {
		value, err := count()
		if err != nil {
			return err
		}
		cards = append(cards, models.Card{Key: key, Label: label, Value: value})
		return nil
	}

	if err := add(prefix+"employees", "Employees", func() (int64, error) { return s.employees.CountDocuments(ctx, employeeFilter) }); err != nil {
		return nil, err
	}
	if err := add(prefix+"active_employees", "Active employees", func() (int64, error) { return s.employees.CountDocuments(ctx, activeFilter) }); err != nil {
		return nil, err
	}
	if scope == nil {
		if err := add("departments", "Departments", func() (int64, error) {
			return s.departments.CountDocuments(ctx, bson.M{"isActive": true})
		}); err != nil {
			return nil, err
		}
		if err := add("pending_documents", "Pending documents", func() (int64, error) {
			return s.employees.CountDocuments(ctx, bson.M{"documentsStatus": bson.M{"$ne": empmodels.DocumentsComplete}})
		}); err != nil {
			return nil, err
		}
	}
	if err := add(prefix+"schedules_this_week", "Schedules this week", func() (int64, error) { return s.schedules.CountDocuments(ctx, scheduleFilter) }); err != nil {
		return nil, err
	}
	if err := add(prefix+"published_this_week", "Published this week", func() (int64, error) { return s.schedules.CountDocuments(ctx, publishedFilter) }); err != nil {
		return nil, err
	}
	return cards, nil
}
