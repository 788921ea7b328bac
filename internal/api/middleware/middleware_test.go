package middleware

import (
	"context"
	"encoding/json"
	"net/http/httptest"
	"testing"

	"github.com/gofiber/fiber/v3"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.mongodb.org/mongo-driver/bson/primitive"

	authsvc "qced_directory/internal/api/auth/service"
	empmodels "qced_directory/internal/api/employee/models"
	"qced_directory/internal/common"
)

type fakeAuth struct {
	employees map[string]empmodels.Employee
}

func (f *fakeAuth) Authenticate(_ context.Context, token string) (*empmodels.Employee, error) {
	emp, ok := f.employees[token]
	if !ok {
		return nil, common.ErrTokenInvalid
	}
	return &emp, nil
}

func newTestApp(t *testing.T) *fiber.App {
	t.Helper()
	SetAuthenticator(&fakeAuth{employees: map[string]empmodels.Employee{
		"admin-token":    {ID: primitive.NewObjectID(), Role: "admin", IsActive: true},
		"employee-token": {ID: primitive.NewObjectID(), Role: "employee", IsActive: true},
	}})
	t.Cleanup(func() { SetAuthenticator(nil) })

	app := fiber.New()
	app.Get("/open", AuthMiddleware(""), func(c fiber.Ctx) error {
		return c.SendString(c.Locals("role").(string))
	})
	app.Delete("/employees/:id", AuthMiddleware(authsvc.PermEmployeeDelete), func(c fiber.Ctx) error {
		return c.SendStatus(fiber.StatusNoContent)
	})
	app.Get("/staff", AuthMiddleware(""), RequireRoles("admin", "hr"), func(c fiber.Ctx) error {
		return c.SendStatus(fiber.StatusOK)
	})
	return app
}

func decode(t *testing.T, body interface{ Read([]byte) (int, error) }) map[string]interface{} {
	t.Helper()
	var out map[string]interface{}
	require.NoError(t, json.NewDecoder(body).Decode(&out))
	return out
}

func TestAuthMiddleware(t *testing.T) {
	app := newTestApp(t)

	t.Run("missing token", func(t *testing.T) {
		resp, err := app.Test(httptest.NewRequest("GET", "/open", nil))
		require.NoError(t, err)
		assert.Equal(t, 401, resp.StatusCode)
		body := decode(t, resp.Body)
		assert.Equal(t, false, body["success"])
		assert.Equal(t, "AUTH_001", body["code"])
		assert.NotNil(t, body["errors"])
	})

	t.Run("malformed header", func(t *testing.T) {
		req := httptest.NewRequest("GET", "/open", nil)
		req.Header.Set("Authorization", "Token abc")
		resp, err := app.Test(req)
		require.NoError(t, err)
		assert.Equal(t, 401, resp.StatusCode)
	})

	t.Run("unknown token", func(t *testing.T) {
		req := httptest.NewRequest("GET", "/open", nil)
		req.Header.Set("Authorization", "Bearer nope")
		resp, err := app.Test(req)
		require.NoError(t, err)
		assert.Equal(t, 401, resp.StatusCode)
	})

	t.Run("valid token sets locals", func(t *testing.T) {
		req := httptest.NewRequest("GET", "/open", nil)
		req.Header.Set("Authorization", "Bearer employee-token")
		resp, err := app.Test(req)
		require.NoError(t, err)
		assert.Equal(t, 200, resp.StatusCode)
	})

	t.Run("permission denied", func(t *testing.T) {
		req := httptest.NewRequest("DELETE", "/employees/1", nil)
		req.Header.Set("Authorization", "Bearer employee-token")
		resp, err := app.Test(req)
		require.NoError(t, err)
		assert.Equal(t, 403, resp.StatusCode)
		assert.Equal(t, "AUTH_003", decode(t, resp.Body)["code"])
	})

	t.Run("permission granted", func(t *testing.T) {
		req := httptest.NewRequest("DELETE", "/employees/1", nil)
		req.Header.Set("Authorization", "Bearer admin-token")
		resp, err := app.Test(req)
		require.NoError(t, err)
		assert.Equal(t, 204, resp.StatusCode)
	})
}

func TestRequireRoles(t *testing.T) {
	app := newTestApp(t)

	req := httptest.NewRequest("GET", "/staff", nil)
	req.Header.Set("Authorization", "Bearer employee-token")
	resp, err := app.Test(req)
	require.NoError(t, err)
	assert.Equal(t, 403, resp.StatusCode)

	req = httptest.NewRequest("GET", "/staff", nil)
	req.Header.Set("Authorization", "Bearer admin-token")
	resp, err = app.Test(req)
	require.NoError(t, err)
	assert.Equal(t, 200, resp.StatusCode)
}
