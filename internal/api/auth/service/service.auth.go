package authsvc

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"

	basesvc "qced_directory/internal/api/base/service"
	empmodels "qced_directory/internal/api/employee/models"
	"qced_directory/internal/api/events"
	"qced_directory/internal/common"
	"qced_directory/internal/global"
	"qced_directory/internal/utility"
)

const employeeCachePrefix = "employee:"

// LoginResult là kết quả đăng nhập / đổi mật khẩu
type LoginResult struct {
	Token       string             `json:"token"`
	ExpiresAt   int64              `json:"expiresAt"`
	User        empmodels.Employee `json:"user"`
	Permissions []string           `json:"permissions"`
}

// AuthService xử lý đăng nhập và xác thực token
type AuthService struct {
	employees *basesvc.BaseServiceMongoImpl[empmodels.Employee]
	tokens    *TokenService
	cache     *utility.Cache
}

var (
	authServiceInstance *AuthService
	authServiceOnce     sync.Once
	authServiceErr      error
)

// GetAuthService trả về instance duy nhất của AuthService (singleton)
func GetAuthService() (*AuthService, error) {
	authServiceOnce.Do(func() {
		authServiceInstance, authServiceErr = newAuthService()
	})
	return authServiceInstance, authServiceErr
}

func newAuthService() (*AuthService, error) {
	collection, exist := global.RegistryCollections.Get(global.MongoDB_ColNames.Employees)
	if !exist {
		return nil, fmt.Errorf("failed to get employees collection: %v", common.ErrNotFound)
	}
	cfg := global.MongoDB_ServerConfig
	if cfg == nil {
		return nil, fmt.Errorf("server config is not initialized")
	}

	s := &AuthService{
		employees: basesvc.NewBaseServiceMongo[empmodels.Employee](collection),
		tokens:    NewTokenService(cfg.JwtSecret, time.Duration(cfg.JwtExpiresHours)*time.Hour),
		cache:     utility.NewCache(2*time.Minute, 5*time.Minute),
	}

	// Nhân viên thay đổi (role, isActive, tokenVersion) thì bỏ cache để middleware đọc lại
	events.OnDataChanged(func(_ context.Context, e events.DataChangeEvent) {
		if e.CollectionName != global.MongoDB_ColNames.Employees {
			return
		}
		if emp, ok := e.Document.(empmodels.Employee); ok {
			s.cache.Delete(employeeCachePrefix + emp.ID.Hex())
			return
		}
		s.cache.DeletePrefix(employeeCachePrefix)
	})
	return s, nil
}

// Tokens trả về TokenService (dùng cho socket handshake)
func (s *AuthService) Tokens() *TokenService {
	return s.tokens
}

// Login kiểm tra email/mật khẩu và phát hành token
func (s *AuthService) Login(ctx context.Context, email, password string) (*LoginResult, error) {
	employee, err := s.employees.FindOne(ctx, bson.M{"email": strings.ToLower(strings.TrimSpace(email))}, nil)
	if err != nil {
		if errors.Is(err, common.ErrNotFound) {
			return nil, common.ErrInvalidCredentials
		}
		return nil, err
	}
	if !CheckPassword(employee.Password, password) {
		return nil, common.ErrInvalidCredentials
	}
	if !employee.IsActive {
		return nil, common.ErrAccountDisabled
	}

	employee, err = s.employees.UpdateById(ctx, employee.ID, bson.M{"lastLoginAt": time.Now().UnixMilli()})
	if err != nil {
		return nil, err
	}
	return s.issue(employee)
}

func (s *AuthService) issue(employee empmodels.Employee) (*LoginResult, error) {
	token, expiresAt, err := s.tokens.Issue(employee.ID.Hex(), employee.Role, employee.TokenVersion)
	if err != nil {
		return nil, common.NewError(common.ErrCodeInternalServer, "Failed to issue token", common.StatusInternalServerError, nil)
	}
	return &LoginResult{
		Token:       token,
		ExpiresAt:   expiresAt,
		User:        employee,
		Permissions: PermissionsOf(employee.Role),
	}, nil
}

// Authenticate kiểm tra token và trả về nhân viên đang đăng nhập
func (s *AuthService) Authenticate(ctx context.Context, tokenString string) (*empmodels.Employee, error) {
	claims, err := s.tokens.Parse(tokenString)
	if err != nil {
		return nil, err
	}
	id, err := primitive.ObjectIDFromHex(claims.Subject)
	if err != nil {
		return nil, common.ErrTokenInvalid
	}

	employee, err := s.loadEmployee(ctx, id)
	if err != nil {
		return nil, err
	}
	return employee, CheckIdentity(employee, claims)
}

// CheckIdentity từ chối tài khoản bị vô hiệu hóa và token đã bị thu hồi (ver cũ)
func CheckIdentity(employee *empmodels.Employee, claims *Claims) error {
	if !employee.IsActive {
		return common.ErrAccountDisabled
	}
	if claims.Version != employee.TokenVersion {
		return common.NewError(common.ErrCodeAuthInvalid, "Token has been revoked", common.StatusUnauthorized, nil)
	}
	return nil
}

func (s *AuthService) loadEmployee(ctx context.Context, id primitive.ObjectID) (*empmodels.Employee, error) {
	key := employeeCachePrefix + id.Hex()
	if cached, found := s.cache.Get(key); found {
		emp := cached.(empmodels.Employee)
		return &emp, nil
	}
	employee, err := s.employees.FindOneById(ctx, id)
	if err != nil {
		if errors.Is(err, common.ErrNotFound) {
			return nil, common.ErrTokenInvalid
		}
		return nil, err
	}
	s.cache.Set(key, employee)
	return &employee, nil
}

// Logout tăng tokenVersion, mọi token đã phát hành đều hết hiệu lực
func (s *AuthService) Logout(ctx context.Context, id primitive.ObjectID) error {
	_, err := s.employees.UpdateById(ctx, id, &basesvc.UpdateData{Inc: map[string]interface{}{"tokenVersion": 1}})
	s.cache.Delete(employeeCachePrefix + id.Hex())
	return err
}

// ChangePassword đổi mật khẩu, thu hồi token cũ và trả về token mới
func (s *AuthService) ChangePassword(ctx context.Context, id primitive.ObjectID, currentPassword, newPassword string) (*LoginResult, error) {
	employee, err := s.employees.FindOneById(ctx, id)
	if err != nil {
		return nil, err
	}
	if !CheckPassword(employee.Password, currentPassword) {
		return nil, common.NewError(common.ErrCodeAuthCredentials, "Current password is incorrect", common.StatusBadRequest, nil)
	}
	if currentPassword == newPassword {
		return nil, common.NewError(common.ErrCodeValidationInput, "New password must differ from the current one", common.StatusBadRequest, nil)
	}
	hashed, err := HashPassword(newPassword)
	if err != nil {
		return nil, common.NewError(common.ErrCodeInternalServer, "Failed to hash password", common.StatusInternalServerError, nil)
	}

	updated, err := s.employees.UpdateById(ctx, id, &basesvc.UpdateData{
		Set: map[string]interface{}{"password": hashed},
		Inc: map[string]interface{}{"tokenVersion": 1},
	})
	if err != nil {
		return nil, err
	}
	s.cache.Delete(employeeCachePrefix + id.Hex())
	return s.issue(updated)
}
