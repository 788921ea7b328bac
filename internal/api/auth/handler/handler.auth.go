// Package authhdl - handler đăng nhập, xác thực token, đăng xuất, đổi mật khẩu.
package authhdl

import (
	"fmt"

	"github.com/gofiber/fiber/v3"

	auditmodels "qced_directory/internal/api/audit/models"
	auditsvc "qced_directory/internal/api/audit/service"
	authdto "qced_directory/internal/api/auth/dto"
	authsvc "qced_directory/internal/api/auth/service"
	basehdl "qced_directory/internal/api/base/handler"
	"qced_directory/internal/api/middleware"
	"qced_directory/internal/common"
	"qced_directory/internal/logger"
)

const targetType = "auth"

// AuthHandler xử lý các route /auth
type AuthHandler struct {
	authService *authsvc.AuthService
}

// NewAuthHandler tạo mới AuthHandler
func NewAuthHandler() (*AuthHandler, error) {
	authService, err := authsvc.GetAuthService()
	if err != nil {
		return nil, fmt.Errorf("failed to create auth service: %v", err)
	}
	return &AuthHandler{authService: authService}, nil
}

// HandleLogin POST /auth/login
func (h *AuthHandler) HandleLogin(c fiber.Ctx) error {
	return basehdl.SafeHandler(c, func() error {
		var input authdto.LoginInput
		if err := basehdl.ParseRequestBody(c, &input); err != nil {
			return basehdl.HandleErrorResponse(c, err)
		}
		result, err := h.authService.Login(c.Context(), input.Email, input.Password)
		if err != nil {
			logger.LogAuth("login_failed", c, map[string]interface{}{"email": input.Email})
			return basehdl.HandleErrorResponse(c, err)
		}
		// gán user để audit entry ghi đúng người đăng nhập
		c.Locals("user_id", result.User.ID.Hex())
		c.Locals("user", result.User)
		auditsvc.Record(c, auditmodels.ActionLogin, targetType, result.User.ID.Hex(), nil)
		logger.LogAuth("login", c, map[string]interface{}{"email": result.User.Email})
		return basehdl.HandleResponse(c, result, nil)
	})
}

// HandleVerify GET /auth/verify (sau AuthMiddleware)
func (h *AuthHandler) HandleVerify(c fiber.Ctx) error {
	return basehdl.SafeHandler(c, func() error {
		user, ok := middleware.CurrentUser(c)
		if !ok {
			return basehdl.HandleErrorResponse(c, common.ErrTokenInvalid)
		}
		return basehdl.HandleResponse(c, fiber.Map{
			"valid":       true,
			"user":        user,
			"permissions": authsvc.PermissionsOf(user.Role),
		}, nil)
	})
}

// HandleLogout POST /auth/logout
func (h *AuthHandler) HandleLogout(c fiber.Ctx) error {
	return basehdl.SafeHandler(c, func() error {
		id := basehdl.CurrentUserID(c)
		if err := h.authService.Logout(c.Context(), id); err != nil {
			return basehdl.HandleErrorResponse(c, err)
		}
		auditsvc.Record(c, auditmodels.ActionLogout, targetType, id.Hex(), nil)
		logger.LogAuth("logout", c, nil)
		return basehdl.HandleResponse(c, fiber.Map{"loggedOut": true}, nil)
	})
}

// HandleChangePassword PUT /auth/password
func (h *AuthHandler) HandleChangePassword(c fiber.Ctx) error {
	return basehdl.SafeHandler(c, func() error {
		var input authdto.ChangePasswordInput
		if err := basehdl.ParseRequestBody(c, &input); err != nil {
			return basehdl.HandleErrorResponse(c, err)
		}
		id := basehdl.CurrentUserID(c)
		result, err := h.authService.ChangePassword(c.Context(), id, input.CurrentPassword, input.NewPassword)
		if err != nil {
			return basehdl.HandleErrorResponse(c, err)
		}
		auditsvc.Record(c, auditmodels.ActionPasswordChange, targetType, id.Hex(), nil)
		logger.LogAuth("password_change", c, nil)
		return basehdl.HandleResponse(c, result, nil)
	})
}
