package logger

import (
	"os"
	"strings"

	"github.com/caarlos0/env/v11"
)

// LogConfig chứa cấu hình cho hệ thống logging
type LogConfig struct {
	// Log Level: trace, debug, info, warn, error, fatal
	Level string `env:"LOG_LEVEL"`

	// Log Format: json, text
	Format string `env:"LOG_FORMAT"`

	// Log Output: file, stdout, both
	Output string `env:"LOG_OUTPUT" envDefault:"stdout"`

	// Log Rotation (lumberjack)
	MaxSize    int  `env:"LOG_MAX_SIZE" envDefault:"100"`  // MB
	MaxBackups int  `env:"LOG_MAX_BACKUPS" envDefault:"7"` // Số file cũ giữ lại
	MaxAge     int  `env:"LOG_MAX_AGE" envDefault:"14"`    // Số ngày giữ lại
	Compress   bool `env:"LOG_COMPRESS" envDefault:"true"` // Nén file cũ

	// Ghi log qua AsyncHook để không block request
	Async      bool `env:"LOG_ASYNC" envDefault:"true"`
	BufferSize int  `env:"LOG_BUFFER_SIZE" envDefault:"1000"`

	// Log Paths
	LogPath   string `env:"LOG_PATH" envDefault:"./logs"`
	AppFile   string `env:"LOG_APP_FILE" envDefault:"app.log"`
	AuditFile string `env:"LOG_AUDIT_FILE" envDefault:"audit.log"`
	ErrorFile string `env:"LOG_ERROR_FILE" envDefault:"error.log"`

	// Filters, dạng "a,b,c" hoặc "*" (rỗng = cho phép tất cả)
	FilterModules string `env:"FILTER_MODULES"`
	FilterMethods string `env:"FILTER_METHODS"`
	FilterLevels  string `env:"FILTER_LEVELS"`
}

// DefaultConfig trả về cấu hình mặc định theo GO_ENV, override bởi biến môi trường
func DefaultConfig() *LogConfig {
	cfg := &LogConfig{}
	if err := env.Parse(cfg); err != nil {
		cfg = &LogConfig{Output: "stdout", MaxSize: 100, MaxBackups: 7, MaxAge: 14, BufferSize: 1000, LogPath: "./logs",
			AppFile: "app.log", AuditFile: "audit.log", ErrorFile: "error.log"}
	}

	goEnv := os.Getenv("GO_ENV")
	if goEnv == "" {
		goEnv = "development"
	}

	// Điều chỉnh theo môi trường khi chưa set tường minh
	if cfg.Level == "" {
		cfg.Level = "info"
		if goEnv == "development" {
			cfg.Level = "debug"
		}
	}
	if cfg.Format == "" {
		cfg.Format = "json"
		if goEnv == "development" {
			cfg.Format = "text"
		}
	}

	cfg.Level = strings.ToLower(cfg.Level)
	cfg.Format = strings.ToLower(cfg.Format)
	cfg.Output = strings.ToLower(cfg.Output)
	return cfg
}
