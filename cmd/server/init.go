package main

import (
	"context"
	"time"

	"github.com/sirupsen/logrus"

	"qced_directory/config"
	auditmodels "qced_directory/internal/api/audit/models"
	deptmodels "qced_directory/internal/api/department/models"
	empmodels "qced_directory/internal/api/employee/models"
	messagemodels "qced_directory/internal/api/message/models"
	schedulemodels "qced_directory/internal/api/schedule/models"
	"qced_directory/internal/database"
	"qced_directory/internal/global"
)

// Hàm khởi tạo các biến toàn cục
func InitGlobal() {
	initColNames()         // Khởi tạo tên các collection trong database
	initValidator()        // Khởi tạo validator
	initConfig()           // Khởi tạo cấu hình server
	initDatabase_MongoDB() // Khởi tạo kết nối database
}

// Hàm khởi tạo tên các collection trong database
func initColNames() {
	global.MongoDB_ColNames.Employees = "employees"
	global.MongoDB_ColNames.Departments = "departments"
	global.MongoDB_ColNames.Schedules = "schedules"
	global.MongoDB_ColNames.ScheduleHistories = "schedule_histories"
	global.MongoDB_ColNames.Messages = "messages"
	global.MongoDB_ColNames.AuditLogs = "audit_logs"

	logrus.Info("Initialized collection names")
}

// collectionModels trả về model tương ứng từng collection để dựng index
func collectionModels() map[string]interface{} {
	names := global.MongoDB_ColNames
	return map[string]interface{}{
		names.Employees:         empmodels.Employee{},
		names.Departments:       deptmodels.Department{},
		names.Schedules:         schedulemodels.Schedule{},
		names.ScheduleHistories: schedulemodels.ScheduleHistory{},
		names.Messages:          messagemodels.Message{},
		names.AuditLogs:         auditmodels.AuditLog{},
	}
}

// Hàm khởi tạo validator (đăng ký custom tag: no_xss, strong_password, hhmm, ...)
func initValidator() {
	global.InitValidator()
	logrus.Info("Initialized validator")
}

// Hàm khởi tạo cấu hình server
func initConfig() {
	global.MongoDB_ServerConfig = config.NewConfig()
	if global.MongoDB_ServerConfig == nil {
		logrus.Fatalf("Failed to initialize config: config is nil")
	}
	logrus.Info("Initialized server config")
}

// Hàm khởi tạo kết nối database, tạo collection còn thiếu và index
func initDatabase_MongoDB() {
	var err error
	global.MongoDB_Session, err = database.GetInstance(global.MongoDB_ServerConfig)
	if err != nil {
		logrus.Fatalf("Failed to get database instance: %v", err)
	}
	logrus.Info("Connected to MongoDB")

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	db := global.MongoDB_Session.Database(global.MongoDB_ServerConfig.MongoDB_DBName)
	global.RegistryDatabase.Register(db.Name(), db)

	models := collectionModels()
	names := make([]string, 0, len(models))
	for name := range models {
		names = append(names, name)
	}
	if err := database.EnsureDatabaseAndCollections(ctx, db, names); err != nil {
		logrus.Fatalf("Failed to ensure collections: %v", err)
	}
	logrus.Info("Ensured database and collections")

	// Lỗi index không chặn khởi động
	for name, model := range models {
		if err := database.CreateIndexes(ctx, db.Collection(name), model); err != nil {
			logrus.Errorf("Failed to create indexes for %s: %v", name, err)
		}
	}
}
