// Package systemhdl - kiểm tra tình trạng hệ thống.
package systemhdl

import (
	"context"
	"sync"
	"time"

	"github.com/gofiber/fiber/v3"

	basehdl "qced_directory/internal/api/base/handler"
	"qced_directory/internal/common"
	"qced_directory/internal/global"
)

// Pinger kiểm tra kết nối database
type Pinger func(ctx context.Context) error

var (
	socketCounter func() int
	counterMu     sync.RWMutex
)

// SetSocketCounter đăng ký hàm đếm số kết nối realtime (hub.ClientCount)
func SetSocketCounter(fn func() int) {
	counterMu.Lock()
	defer counterMu.Unlock()
	socketCounter = fn
}

func socketCount() int {
	counterMu.RLock()
	defer counterMu.RUnlock()
	if socketCounter == nil {
		return 0
	}
	return socketCounter()
}

// SystemHandler xử lý các route /system
type SystemHandler struct {
	ping Pinger
}

// NewSystemHandler tạo SystemHandler, ping nil thì dùng MongoDB_Session
func NewSystemHandler(ping Pinger) *SystemHandler {
	if ping == nil {
		ping = func(ctx context.Context) error {
			if global.MongoDB_Session == nil {
				return common.ErrConnection
			}
			return global.MongoDB_Session.Ping(ctx, nil)
		}
	}
	return &SystemHandler{ping: ping}
}

// HandleHealth GET /system/health -> {status, mongo, sockets}
func (h *SystemHandler) HandleHealth(c fiber.Ctx) error {
	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()

	data := fiber.Map{
		"status":    "ok",
		"mongo":     "ok",
		"sockets":   socketCount(),
		"timestamp": time.Now().Format(time.RFC3339),
	}
	if err := h.ping(ctx); err != nil {
		data["status"] = "degraded"
		data["mongo"] = "error"
		return basehdl.JSONResponse(c, common.StatusServiceUnavailable, fiber.Map{
			"success": false,
			"message": "Database is unavailable",
			"data":    data,
		})
	}
	return basehdl.HandleResponse(c, data, nil)
}
