// Package authsvc - xác thực: phát hành/kiểm tra JWT, băm mật khẩu, ma trận quyền theo role.
package authsvc

import (
	"errors"
	"time"

	"github.com/golang-jwt/jwt/v5"

	"qced_directory/internal/common"
)

// Claims là payload của access token
type Claims struct {
	Role    string `json:"role"`
	Version int64  `json:"ver"`
	jwt.RegisteredClaims
}

// TokenService ký và kiểm tra access token HS256
type TokenService struct {
	secret []byte
	ttl    time.Duration
	now    func() time.Time
}

// NewTokenService tạo TokenService với secret và thời hạn token
func NewTokenService(secret string, ttl time.Duration) *TokenService {
	if ttl <= 0 {
		ttl = 24 * time.Hour
	}
	return &TokenService{secret: []byte(secret), ttl: ttl, now: time.Now}
}

// Issue phát hành token cho nhân viên
func (s *TokenService) Issue(employeeHex, role string, version int64) (string, int64, error) {
	now := s.now()
	expiresAt := now.Add(s.ttl)
	claims := Claims{
		Role:    role,
		Version: version,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   employeeHex,
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(expiresAt),
		},
	}
	signed, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(s.secret)
	if err != nil {
		return "", 0, err
	}
	return signed, expiresAt.UnixMilli(), nil
}

// Parse kiểm tra chữ ký, thuật toán (chỉ HS256) và hạn của token
func (s *TokenService) Parse(tokenString string) (*Claims, error) {
	if tokenString == "" {
		return nil, common.ErrTokenMissing
	}
	claims := &Claims{}
	token, err := jwt.ParseWithClaims(tokenString, claims, func(t *jwt.Token) (interface{}, error) {
		return s.secret, nil
	}, jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}), jwt.WithTimeFunc(s.now))
	if err != nil || !token.Valid {
		if errors.Is(err, jwt.ErrTokenExpired) {
			return nil, common.NewError(common.ErrCodeAuthInvalid, "Token has expired", common.StatusUnauthorized, nil)
		}
		return nil, common.ErrTokenInvalid
	}
	if claims.Subject == "" {
		return nil, common.ErrTokenInvalid
	}
	return claims, nil
}
