// Package auditsvc - ghi và truy vấn nhật ký thao tác.
package auditsvc

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/gofiber/fiber/v3"
	"github.com/sirupsen/logrus"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo/options"

	auditdto "qced_directory/internal/api/audit/dto"
	models "qced_directory/internal/api/audit/models"
	basemodels "qced_directory/internal/api/base/models"
	basesvc "qced_directory/internal/api/base/service"
	empmodels "qced_directory/internal/api/employee/models"
	"qced_directory/internal/common"
	"qced_directory/internal/global"
	"qced_directory/internal/logger"
	"qced_directory/internal/utility"
)

// AuditService là service nhật ký thao tác
type AuditService struct {
	*basesvc.BaseServiceMongoImpl[models.AuditLog]
	retention time.Duration
}

var (
	auditServiceInstance *AuditService
	auditServiceOnce     sync.Once
	auditServiceErr      error
)

// NewAuditService tạo mới AuditService
func NewAuditService() (*AuditService, error) {
	collection, exist := global.RegistryCollections.Get(global.MongoDB_ColNames.AuditLogs)
	if !exist {
		return nil, fmt.Errorf("failed to get audit_logs collection: %v", common.ErrNotFound)
	}
	retentionDays := 365
	if global.MongoDB_ServerConfig != nil && global.MongoDB_ServerConfig.AuditRetentionDays > 0 {
		retentionDays = global.MongoDB_ServerConfig.AuditRetentionDays
	}
	return &AuditService{
		BaseServiceMongoImpl: basesvc.NewBaseServiceMongo[models.AuditLog](collection),
		retention:            time.Duration(retentionDays) * 24 * time.Hour,
	}, nil
}

// GetAuditService trả về instance dùng chung
func GetAuditService() (*AuditService, error) {
	auditServiceOnce.Do(func() {
		auditServiceInstance, auditServiceErr = NewAuditService()
	})
	return auditServiceInstance, auditServiceErr
}

// Record ghi nhật ký bất đồng bộ (best-effort) và ghi song song ra audit logger
func (s *AuditService) Record(entry models.AuditLog) {
	now := time.Now()
	entry.CreatedAt = now.UnixMilli()
	entry.ExpireAt = now.Add(s.retention)
	mirror(entry)

	go utility.GoProtect(func() {
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if _, err := s.InsertOne(ctx, entry); err != nil {
			logger.WithModule("audit").WithError(err).Warn("Failed to persist audit entry")
		}
	})
}

func mirror(entry models.AuditLog) {
	fields := logrus.Fields{
		"action":      entry.Action,
		"target_type": entry.Target.Type,
		"target_id":   entry.Target.ID,
		"ip":          entry.IP,
	}
	if entry.User != nil {
		fields["user_id"] = entry.User.Hex()
	}
	if len(entry.Details) > 0 {
		fields["details"] = entry.Details
	}
	logger.GetAuditLogger().WithFields(fields).Info("Audit log")
}

// NewEntry dựng entry từ request hiện tại (user, ip, user agent)
func NewEntry(c fiber.Ctx, action, targetType, targetID string, details map[string]interface{}) models.AuditLog {
	entry := models.AuditLog{
		Action:    action,
		Target:    models.Target{Type: targetType, ID: targetID},
		Details:   details,
		IP:        c.IP(),
		UserAgent: c.Get("User-Agent"),
	}
	if emp, ok := c.Locals("user").(empmodels.Employee); ok {
		id := emp.ID
		entry.User = &id
		entry.UserName = emp.Name
	}
	if requestID := logger.RequestID(c); requestID != "" {
		if entry.Details == nil {
			entry.Details = map[string]interface{}{}
		}
		entry.Details["requestId"] = requestID
	}
	return entry
}

// Record ghi nhật ký cho request hiện tại. Nếu service chưa sẵn sàng chỉ ghi ra audit logger.
func Record(c fiber.Ctx, action, targetType, targetID string, details map[string]interface{}) {
	entry := NewEntry(c, action, targetType, targetID, details)
	svc, err := GetAuditService()
	if err != nil {
		mirror(entry)
		return
	}
	svc.Record(entry)
}

// BuildFilter dựng filter MongoDB từ tham số lọc
func BuildFilter(input auditdto.AuditFilterInput) bson.M {
	filter := bson.M{}
	if input.User != "" {
		filter["user"] = utility.String2ObjectID(input.User)
	}
	if input.Action != "" {
		filter["action"] = input.Action
	}
	if input.TargetType != "" {
		filter["target.type"] = input.TargetType
	}
	if input.From > 0 || input.To > 0 {
		rangeFilter := bson.M{}
		if input.From > 0 {
			rangeFilter["$gte"] = input.From
		}
		if input.To > 0 {
			rangeFilter["$lte"] = input.To
		}
		filter["createdAt"] = rangeFilter
	}
	return filter
}

// List trả về nhật ký mới nhất trước
func (s *AuditService) List(ctx context.Context, input auditdto.AuditFilterInput, page, limit int64) (*basemodels.PaginateResult[models.AuditLog], error) {
	opts := options.Find().SetSort(bson.D{{Key: "createdAt", Value: -1}, {Key: "_id", Value: -1}})
	return s.FindWithPagination(ctx, BuildFilter(input), page, limit, opts)
}

// CountByAction đếm số nhật ký theo action trong khoảng thời gian (báo cáo audit-activity)
func (s *AuditService) CountByAction(ctx context.Context, from, to int64) (map[string]int64, error) {
	match := BuildFilter(auditdto.AuditFilterInput{From: from, To: to})
	pipeline := []bson.M{
		{"$match": match},
		{"$group": bson.M{"_id": "$action", "count": bson.M{"$sum": 1}}},
	}
	var rows []struct {
		Action string `bson:"_id"`
		Count  int64  `bson:"count"`
	}
	if err := s.Aggregate(ctx, pipeline, &rows); err != nil {
		return nil, err
	}
	result := make(map[string]int64, len(rows))
	for _, row := range rows {
		result[row.Action] = row.Count
	}
	return result, nil
}
