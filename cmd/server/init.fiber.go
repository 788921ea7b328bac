package main

import (
	"errors"
	"time"

	"github.com/gofiber/fiber/v3"
	"github.com/gofiber/fiber/v3/middleware/cors"
	"github.com/gofiber/fiber/v3/middleware/limiter"
	"github.com/gofiber/fiber/v3/middleware/recover"
	"github.com/gofiber/fiber/v3/middleware/requestid"
	"github.com/google/uuid"

	basehdl "qced_directory/internal/api/base/handler"
	"qced_directory/internal/api/router"
	"qced_directory/internal/common"
	"qced_directory/internal/global"
	"qced_directory/internal/logger"
)

const healthPath = router.APIPrefix + "/system/health"

// fiberErrorCode ánh xạ lỗi *fiber.Error (404 route, 405, body quá lớn...) sang common.Error
func fiberErrorCode(e *fiber.Error) error {
	code := common.ErrCodeInternalServer
	switch e.Code {
	case fiber.StatusBadRequest, fiber.StatusRequestEntityTooLarge, fiber.StatusUnprocessableEntity:
		code = common.ErrCodeValidationInput
	case fiber.StatusUnauthorized:
		code = common.ErrCodeAuthToken
	case fiber.StatusForbidden:
		code = common.ErrCodeAuthRole
	case fiber.StatusNotFound, fiber.StatusConflict:
		code = common.ErrCodeDatabaseQuery
	case fiber.StatusMethodNotAllowed, fiber.StatusTooManyRequests:
		code = common.ErrCodeBusinessOperation
	}
	return common.NewError(code, e.Message, e.Code, nil)
}

// errorHandler trả mọi lỗi chưa được handler xử lý về envelope {success:false, message, errors}
func errorHandler(c fiber.Ctx, err error) error {
	var fiberErr *fiber.Error
	if errors.As(err, &fiberErr) {
		err = fiberErrorCode(fiberErr)
	}
	status, body := basehdl.ErrorBody(err)
	if status >= common.StatusInternalServerError {
		logger.WithRequest(c).WithError(err).Error("Request error")
	}
	return basehdl.JSONResponse(c, status, body)
}

// requestLogger log mỗi request (trừ health check) qua logrus
func requestLogger(c fiber.Ctx) error {
	start := time.Now()
	err := c.Next()
	if c.Path() == healthPath {
		return err
	}
	status := c.Response().StatusCode()
	entry := logger.WithRequest(c).WithFields(map[string]interface{}{
		"status":  status,
		"latency": time.Since(start).String(),
	})
	switch {
	case status >= fiber.StatusInternalServerError:
		entry.Error("Request completed")
	case status >= fiber.StatusBadRequest:
		entry.Warn("Request completed")
	default:
		entry.Debug("Request completed")
	}
	return err
}

// InitFiberApp khởi tạo ứng dụng Fiber với các middleware cần thiết
func InitFiberApp() (*fiber.App, error) {
	cfg := global.MongoDB_ServerConfig

	app := fiber.New(fiber.Config{
		AppName:       "QCED Directory API",
		ServerHeader:  "QCED Directory API",
		CaseSensitive: true,
		UnescapePath:  true,

		BodyLimit:       10 * 1024 * 1024, // 10MB, đủ cho file import xlsx
		ReadBufferSize:  4096,
		WriteBufferSize: 4096,

		ReadTimeout:  15 * time.Second,
		WriteTimeout: 30 * time.Second,
		IdleTimeout:  120 * time.Second,

		ErrorHandler: errorHandler,
	})

	// 1. Request ID
	app.Use(requestid.New(requestid.Config{
		Header:    "X-Request-ID",
		Generator: uuid.NewString,
	}))

	// 2. Recover, panic trả về errorHandler (500)
	app.Use(recover.New(recover.Config{
		EnableStackTrace: true,
		StackTraceHandler: func(c fiber.Ctx, e interface{}) {
			logger.WithRequest(c).WithField("panic", e).Error("Panic recovered")
		},
	}))

	// 3. CORS - đặt trước limiter để xử lý preflight
	app.Use(cors.New(cors.Config{
		AllowOrigins: cfg.AllowedOrigins(),
		AllowMethods: []string{"GET", "POST", "PUT", "DELETE", "PATCH", "HEAD", "OPTIONS"},
		AllowHeaders: []string{
			"Origin",
			"Content-Type",
			"Accept",
			"Authorization",
			"X-Request-ID",
			"X-Requested-With",
		},
		AllowCredentials: cfg.CORS_AllowCredentials,
		ExposeHeaders:    []string{"Content-Length", "Content-Disposition", "X-Request-ID"},
		MaxAge:           24 * 60 * 60,
	}))

	// 4. Security headers
	app.Use(func(c fiber.Ctx) error {
		c.Set("X-Content-Type-Options", "nosniff")
		c.Set("X-Frame-Options", "DENY")
		c.Set("Referrer-Policy", "strict-origin-when-cross-origin")
		return c.Next()
	})

	// 5. Rate limit theo IP, RATE_LIMIT_MAX = 0 thì tắt
	log := logger.GetAppLogger()
	if cfg.RateLimit_Max > 0 {
		app.Use(limiter.New(limiter.Config{
			Max:        cfg.RateLimit_Max,
			Expiration: time.Duration(cfg.RateLimit_Window) * time.Second,
			KeyGenerator: func(c fiber.Ctx) string {
				return c.IP()
			},
			LimitReached: func(c fiber.Ctx) error {
				return basehdl.JSONResponse(c, common.StatusTooManyRequests, fiber.Map{
					"success": false,
					"code":    common.ErrCodeBusinessOperation.Code,
					"message": "Too many requests, please try again later",
					"errors":  []interface{}{},
					"status":  "error",
				})
			},
			Next: func(c fiber.Ctx) bool {
				return c.Path() == healthPath || c.Method() == fiber.MethodOptions
			},
		}))
		log.Infof("Rate limiting enabled: %d requests per %d seconds", cfg.RateLimit_Max, cfg.RateLimit_Window)
	} else {
		log.Info("Rate limiting disabled")
	}

	// 6. Request log
	app.Use(requestLogger)

	if err := router.SetupRoutes(app); err != nil {
		return nil, err
	}

	// Route không tồn tại
	app.Use(func(c fiber.Ctx) error {
		return basehdl.HandleErrorResponse(c, common.NewError(common.ErrCodeDatabaseQuery, "Route not found", common.StatusNotFound, nil))
	})
	return app, nil
}
