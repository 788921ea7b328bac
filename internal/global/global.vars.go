package global

import (
	"qced_directory/config"
	"qced_directory/internal/registry"

	"github.com/go-playground/validator/v10"
	"go.mongodb.org/mongo-driver/mongo"
)

// MongoDB_CollectionName chứa tên các collection trong MongoDB
type MongoDB_CollectionName struct {
	Employees         string // Nhân viên (kiêm tài khoản đăng nhập)
	Departments       string // Phòng ban / cơ cấu tổ chức
	Schedules         string // Lịch làm việc theo tuần
	ScheduleHistories string // Lịch sử phiên bản lịch làm việc
	Messages          string // Tin nhắn nội bộ
	AuditLogs         string // Nhật ký thao tác
}

// Các biến toàn cục
var Validate *validator.Validate                                           // Biến để xác thực dữ liệu
var MongoDB_Session *mongo.Client                                          // Phiên kết nối tới MongoDB
var MongoDB_ServerConfig *config.Configuration                             // Cấu hình của server
var MongoDB_ColNames MongoDB_CollectionName = *new(MongoDB_CollectionName) // Tên các collection

// Các Registry
var RegistryCollections = registry.NewRegistry[*mongo.Collection]() // Registry chứa các collections
var RegistryDatabase = registry.NewRegistry[*mongo.Database]()      // Registry chứa các databases
