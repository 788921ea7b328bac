package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/caarlos0/env/v11"
	"github.com/joho/godotenv"
)

// Configuration chứa thông tin tĩnh cần thiết để chạy ứng dụng
type Configuration struct {
	Address       string `env:"ADDRESS" envDefault:"8080"`        // Cổng HTTP API
	SocketAddress string `env:"SOCKET_ADDRESS" envDefault:"8081"` // Cổng WebSocket realtime

	JwtSecret       string `env:"JWT_SECRET,required"`            // Bí mật ký JWT (HS256)
	JwtExpiresHours int    `env:"JWT_EXPIRES_HOURS" envDefault:"24"` // Thời hạn token (giờ)

	MongoDB_ConnectionURI string `env:"MONGODB_CONNECTION_URI,required"`       // URL kết nối cơ sở dữ liệu
	MongoDB_DBName        string `env:"MONGODB_DBNAME" envDefault:"qced"`       // Tên cơ sở dữ liệu

	CORS_Origins          string `env:"CORS_ORIGINS" envDefault:"*"`               // Các origins được phép (phân cách bởi dấu phẩy, * = tất cả)
	CORS_AllowCredentials bool   `env:"CORS_ALLOW_CREDENTIALS" envDefault:"false"` // Cho phép gửi credentials
	RateLimit_Max         int    `env:"RATE_LIMIT_MAX" envDefault:"300"`           // Số request tối đa trong window (0 = tắt)
	RateLimit_Window      int    `env:"RATE_LIMIT_WINDOW" envDefault:"60"`         // Thời gian window (giây)

	FrontendURL string `env:"FRONTEND_URL" envDefault:"http://localhost:3000"` // URL frontend (QR, link trong email)

	// Tài khoản admin đầu tiên, chỉ dùng khi collection employees chưa có admin
	AdminEmail    string `env:"ADMIN_EMAIL" envDefault:"admin@qced.local"`
	AdminPassword string `env:"ADMIN_PASSWORD"`

	// SMTP (optional) - để trống SMTP_HOST thì kênh email bị bỏ qua
	SMTPHost     string `env:"SMTP_HOST"`
	SMTPPort     int    `env:"SMTP_PORT" envDefault:"587"`
	SMTPUsername string `env:"SMTP_USERNAME"`
	SMTPPassword string `env:"SMTP_PASSWORD"`
	SMTPFrom     string `env:"SMTP_FROM" envDefault:"QCED <no-reply@qced.local>"`

	// Telegram (optional) - cảnh báo HR inbox
	TelegramBotToken string `env:"TELEGRAM_BOT_TOKEN"`
	TelegramChatID   int64  `env:"TELEGRAM_CHAT_ID"`

	AuditRetentionDays int `env:"AUDIT_RETENTION_DAYS" envDefault:"365"` // Số ngày giữ audit log (TTL)

	DeliveryWorkers int `env:"DELIVERY_WORKERS" envDefault:"2"` // Số worker gửi email/telegram
}

// AllowedOrigins tách CORS_ORIGINS thành danh sách
func (c *Configuration) AllowedOrigins() []string {
	if strings.TrimSpace(c.CORS_Origins) == "*" {
		return []string{"*"}
	}
	origins := make([]string, 0)
	for _, origin := range strings.Split(c.CORS_Origins, ",") {
		if origin = strings.TrimSpace(origin); origin != "" {
			origins = append(origins, origin)
		}
	}
	return origins
}

// getEnvPath trả về đường dẫn đến file env dựa trên môi trường
func getEnvPath() string {
	env := os.Getenv("GO_ENV")
	if env == "" {
		env = "development"
	}

	currentDir, err := os.Getwd()
	if err != nil {
		// Sử dụng fmt.Printf vì logger có thể chưa được init ở đây
		fmt.Printf("Không thể lấy được thư mục hiện tại: %v\n", err)
		return ""
	}

	// Tìm thư mục config/env, đi dần lên thư mục cha
	for {
		envDir := filepath.Join(currentDir, "config", "env")
		if _, err := os.Stat(envDir); err == nil {
			return filepath.Join(envDir, fmt.Sprintf("%s.env", env))
		}
		parentDir := filepath.Dir(currentDir)
		if parentDir == currentDir {
			return ""
		}
		currentDir = parentDir
	}
}

// NewConfig đọc cấu hình từ file env (nếu có) rồi từ biến môi trường.
// Biến môi trường đã set sẵn luôn được ưu tiên hơn file.
func NewConfig(files ...string) *Configuration {
	if len(files) == 0 {
		if envPath := getEnvPath(); envPath != "" {
			files = append(files, envPath)
		}
	}

	for _, file := range files {
		if _, err := os.Stat(file); err != nil {
			continue
		}
		if err := godotenv.Load(file); err != nil {
			fmt.Printf("Không thể load file env tại %s: %v\n", file, err)
			return nil
		}
	}

	cfg := Configuration{}
	if err := env.Parse(&cfg); err != nil {
		fmt.Printf("Lỗi khi parse config: %+v\n", err)
		return nil
	}

	return &cfg
}
