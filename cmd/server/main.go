package main

import (
	"context"
	"fmt"
	"os/signal"
	"syscall"
	"time"

	"github.com/gofiber/fiber/v3"

	authsvc "qced_directory/internal/api/auth/service"
	systemhdl "qced_directory/internal/api/system/handler"
	"qced_directory/internal/database"
	"qced_directory/internal/delivery"
	"qced_directory/internal/delivery/channels"
	"qced_directory/internal/global"
	"qced_directory/internal/logger"
	"qced_directory/internal/realtime"
)

// initLogger khởi tạo logger cho toàn bộ ứng dụng (đọc LOG_* từ environment)
func initLogger() {
	if err := logger.Init(nil); err != nil {
		panic(fmt.Sprintf("Failed to initialize logger: %v", err))
	}
	logger.GetAppLogger().Info("Logger system initialized successfully")
}

// initDelivery khởi động hàng đợi gửi email/telegram
func initDelivery(ctx context.Context) *delivery.Queue {
	cfg := global.MongoDB_ServerConfig
	queue := delivery.NewQueue(256, cfg.DeliveryWorkers, []delivery.Channel{
		channels.NewEmailChannel(channels.EmailConfig{
			Host:     cfg.SMTPHost,
			Port:     cfg.SMTPPort,
			Username: cfg.SMTPUsername,
			Password: cfg.SMTPPassword,
			From:     cfg.SMTPFrom,
		}),
		channels.NewTelegramChannel(cfg.TelegramBotToken, cfg.TelegramChatID),
	})
	queue.Start(ctx)
	delivery.SetDefault(queue)
	return queue
}

// socketAuthenticator xác thực token khi client mở WebSocket
func socketAuthenticator(ctx context.Context, token string) (*realtime.Identity, error) {
	auth, err := authsvc.GetAuthService()
	if err != nil {
		return nil, err
	}
	employee, err := auth.Authenticate(ctx, token)
	if err != nil {
		return nil, err
	}
	return &realtime.Identity{
		UserID:       employee.ID.Hex(),
		Role:         employee.Role,
		DepartmentID: employee.DepartmentHex(),
		Name:         employee.Name,
	}, nil
}

// initRealtime chạy hub và socket server trên SOCKET_ADDRESS
func initRealtime(ctx context.Context) *realtime.Hub {
	cfg := global.MongoDB_ServerConfig
	log := logger.GetAppLogger()

	hub := realtime.NewHub()
	go hub.Run(ctx)
	realtime.SetDefault(hub)
	systemhdl.SetSocketCounter(hub.ClientCount)

	server := realtime.NewServer(hub, socketAuthenticator, cfg.AllowedOrigins())
	go func() {
		if err := server.ListenAndServe(ctx, ":"+cfg.SocketAddress); err != nil {
			log.WithError(err).Error("Socket server stopped")
		}
	}()
	return hub
}

func main() {
	initLogger()
	defer logger.Shutdown()

	InitGlobal()
	InitRegistry()
	InitDefaultData()

	log := logger.GetAppLogger()
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	queue := initDelivery(ctx)
	initRealtime(ctx)

	app, err := InitFiberApp()
	if err != nil {
		log.Fatalf("Failed to initialize routes: %v", err)
	}

	address := ":" + global.MongoDB_ServerConfig.Address
	errCh := make(chan error, 1)
	go func() {
		log.WithFields(map[string]interface{}{"address": address, "protocol": "HTTP"}).Info("Starting Fiber server")
		errCh <- app.Listen(address, fiber.ListenConfig{DisableStartupMessage: true})
	}()

	select {
	case <-ctx.Done():
		log.Info("Shutdown signal received")
	case err := <-errCh:
		if err != nil {
			log.WithError(err).Error("Fiber server stopped")
		}
		stop()
	}

	if err := app.ShutdownWithTimeout(10 * time.Second); err != nil {
		log.WithError(err).Warn("Fiber shutdown error")
	}
	queue.Stop()

	closeCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := database.CloseInstance(closeCtx, global.MongoDB_Session); err != nil {
		log.WithError(err).Warn("Failed to close MongoDB connection")
	}
	log.Info("Server stopped")
}
