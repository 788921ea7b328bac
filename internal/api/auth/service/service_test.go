package authsvc

import (
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"golang.org/x/crypto/bcrypt"

	empmodels "qced_directory/internal/api/employee/models"
	"qced_directory/internal/common"
)

func TestTokenIssueAndParse(t *testing.T) {
	svc := NewTokenService("test-secret", time.Hour)
	id := primitive.NewObjectID()

	token, expiresAt, err := svc.Issue(id.Hex(), "hr", 3)
	require.NoError(t, err)
	assert.Greater(t, expiresAt, time.Now().UnixMilli())

	claims, err := svc.Parse(token)
	require.NoError(t, err)
	assert.Equal(t, id.Hex(), claims.Subject)
	assert.Equal(t, "hr", claims.Role)
	assert.Equal(t, int64(3), claims.Version)
}

func TestTokenParseRejects(t *testing.T) {
	svc := NewTokenService("test-secret", time.Hour)

	t.Run("empty", func(t *testing.T) {
		_, err := svc.Parse("")
		assert.ErrorIs(t, err, common.ErrTokenMissing)
	})

	t.Run("wrong secret", func(t *testing.T) {
		other := NewTokenService("other-secret", time.Hour)
		token, _, err := other.Issue(primitive.NewObjectID().Hex(), "admin", 0)
		require.NoError(t, err)
		_, err = svc.Parse(token)
		assert.ErrorIs(t, err, common.ErrTokenInvalid)
	})

	t.Run("expired", func(t *testing.T) {
		past := NewTokenService("test-secret", time.Hour)
		past.now = func() time.Time { return time.Now().Add(-2 * time.Hour) }
		token, _, err := past.Issue(primitive.NewObjectID().Hex(), "admin", 0)
		require.NoError(t, err)
		_, err = svc.Parse(token)
		require.Error(t, err)
		assert.Equal(t, common.StatusUnauthorized, common.StatusOf(err))
	})

	t.Run("alg none", func(t *testing.T) {
		claims := Claims{Role: "admin", RegisteredClaims: jwt.RegisteredClaims{
			Subject:   primitive.NewObjectID().Hex(),
			ExpiresAt: jwt.NewNumericDate(time.Now().Add(time.Hour)),
		}}
		token, err := jwt.NewWithClaims(jwt.SigningMethodNone, claims).SignedString(jwt.UnsafeAllowNoneSignatureType)
		require.NoError(t, err)
		_, err = svc.Parse(token)
		assert.ErrorIs(t, err, common.ErrTokenInvalid)
	})

	t.Run("HS512 is not accepted", func(t *testing.T) {
		claims := Claims{RegisteredClaims: jwt.RegisteredClaims{
			Subject:   primitive.NewObjectID().Hex(),
			ExpiresAt: jwt.NewNumericDate(time.Now().Add(time.Hour)),
		}}
		token, err := jwt.NewWithClaims(jwt.SigningMethodHS512, claims).SignedString([]byte("test-secret"))
		require.NoError(t, err)
		_, err = svc.Parse(token)
		assert.ErrorIs(t, err, common.ErrTokenInvalid)
	})
}

func TestPassword(t *testing.T) {
	PasswordCost = bcrypt.MinCost
	hash, err := HashPassword("Secret123")
	require.NoError(t, err)

	assert.True(t, CheckPassword(hash, "Secret123"))
	assert.False(t, CheckPassword(hash, "secret123"))
	assert.False(t, CheckPassword("", "Secret123"))
}

func TestCheckIdentity(t *testing.T) {
	emp := &empmodels.Employee{IsActive: true, TokenVersion: 2}

	assert.NoError(t, CheckIdentity(emp, &Claims{Version: 2}))
	assert.Error(t, CheckIdentity(emp, &Claims{Version: 1}))

	emp.IsActive = false
	assert.ErrorIs(t, CheckIdentity(emp, &Claims{Version: 2}), common.ErrAccountDisabled)
}

func TestPermissionMatrix(t *testing.T) {
	cases := []struct {
		role       string
		permission string
		allowed    bool
	}{
		{"employee", PermEmployeeRead, true},
		{"employee", PermMessageSend, true},
		{"employee", PermEmployeeCreate, false},
		{"employee", PermScheduleWrite, false},
		{"manager", PermScheduleWrite, true},
		{"manager", PermReportRead, true},
		{"manager", PermAuditRead, false},
		{"hr", PermEmployeeExport, true},
		{"hr", PermEmployeeDelete, false},
		{"hr", PermDepartmentDelete, false},
		{"admin", PermEmployeeDelete, true},
		{"admin", PermDepartmentDelete, true},
		{"guest", PermEmployeeRead, false},
		{"employee", "", true},
	}
	for _, tc := range cases {
		assert.Equal(t, tc.allowed, HasPermission(tc.role, tc.permission), "%s / %s", tc.role, tc.permission)
	}

	perms := PermissionsOf("employee")
	assert.Equal(t, []string{PermDepartmentRead, PermEmployeeRead, PermMessageSend, PermQRGenerate, PermScheduleRead}, perms)
}
