// Package middleware chứa các middleware Fiber dùng chung: xác thực, phân quyền theo role.
package middleware

import (
	"context"
	"strings"
	"sync"

	"github.com/gofiber/fiber/v3"
	"github.com/sirupsen/logrus"

	authsvc "qced_directory/internal/api/auth/service"
	basehdl "qced_directory/internal/api/base/handler"
	empmodels "qced_directory/internal/api/employee/models"
	"qced_directory/internal/common"
	"qced_directory/internal/logger"
)

// Authenticator kiểm tra token và trả về nhân viên đang đăng nhập
type Authenticator interface {
	Authenticate(ctx context.Context, token string) (*empmodels.Employee, error)
}

var (
	authenticator   Authenticator
	authenticatorMu sync.RWMutex
)

// SetAuthenticator thay Authenticator mặc định (AuthService)
func SetAuthenticator(a Authenticator) {
	authenticatorMu.Lock()
	defer authenticatorMu.Unlock()
	authenticator = a
}

func getAuthenticator() (Authenticator, error) {
	authenticatorMu.RLock()
	a := authenticator
	authenticatorMu.RUnlock()
	if a != nil {
		return a, nil
	}
	svc, err := authsvc.GetAuthService()
	if err != nil {
		return nil, err
	}
	SetAuthenticator(svc)
	return svc, nil
}

// BearerToken tách token từ header Authorization
func BearerToken(c fiber.Ctx) (string, error) {
	authHeader := c.Get("Authorization")
	if authHeader == "" {
		return "", common.ErrTokenMissing
	}
	parts := strings.SplitN(authHeader, " ", 2)
	if len(parts) != 2 || !strings.EqualFold(parts[0], "Bearer") || strings.TrimSpace(parts[1]) == "" {
		return "", common.ErrTokenInvalid
	}
	return strings.TrimSpace(parts[1]), nil
}

// AuthMiddleware xác thực token và kiểm tra quyền theo role.
// requirePermission rỗng nghĩa là chỉ cần đăng nhập.
func AuthMiddleware(requirePermission string) fiber.Handler {
	return func(c fiber.Ctx) error {
		token, err := BearerToken(c)
		if err != nil {
			logger.GetAppLogger().WithFields(logrus.Fields{
				"path":   c.Path(),
				"method": c.Method(),
			}).Warn("❌ [AUTH] Missing or malformed Authorization header")
			return basehdl.HandleErrorResponse(c, err)
		}

		auth, err := getAuthenticator()
		if err != nil {
			return basehdl.HandleErrorResponse(c, common.NewError(common.ErrCodeInternalServer, "Authentication is unavailable", common.StatusServiceUnavailable, nil))
		}

		employee, err := auth.Authenticate(c.Context(), token)
		if err != nil {
			logger.GetAppLogger().WithFields(logrus.Fields{
				"path":  c.Path(),
				"error": err.Error(),
			}).Warn("❌ [AUTH] Token rejected")
			return basehdl.HandleErrorResponse(c, err)
		}

		c.Locals("user_id", employee.ID.Hex())
		c.Locals("user", *employee)
		c.Locals("role", employee.Role)

		if !authsvc.HasPermission(employee.Role, requirePermission) {
			logger.GetAppLogger().WithFields(logrus.Fields{
				"user_id":             employee.ID.Hex(),
				"role":                employee.Role,
				"required_permission": requirePermission,
				"path":                c.Path(),
			}).Warn("❌ [AUTH] User does not have required permission")
			return basehdl.HandleErrorResponse(c, common.ErrForbidden)
		}
		return c.Next()
	}
}

// RequireRoles chỉ cho các role được liệt kê đi tiếp, dùng sau AuthMiddleware
func RequireRoles(roles ...string) fiber.Handler {
	return func(c fiber.Ctx) error {
		role, _ := c.Locals("role").(string)
		for _, r := range roles {
			if r == role {
				return c.Next()
			}
		}
		return basehdl.HandleErrorResponse(c, common.ErrForbidden)
	}
}

// CurrentUser lấy nhân viên đã xác thực từ Locals
func CurrentUser(c fiber.Ctx) (empmodels.Employee, bool) {
	emp, ok := c.Locals("user").(empmodels.Employee)
	return emp, ok
}
