package employeehdl

import (
	"context"
	"encoding/json"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/gofiber/fiber/v3"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.mongodb.org/mongo-driver/bson/primitive"

	authsvc "qced_directory/internal/api/auth/service"
	employeedto "qced_directory/internal/api/employee/dto"
	models "qced_directory/internal/api/employee/models"
	"qced_directory/internal/common"
	"qced_directory/internal/global"
)

type fakeProfile struct {
	calls int
}

func (f *fakeProfile) UpdateMe(_ context.Context, id primitive.ObjectID, input *employeedto.MeUpdateInput) (models.Employee, error) {
	f.calls++
	emp := models.Employee{ID: id}
	if input.Phone != nil {
		emp.Phone = *input.Phone
	}
	return emp, nil
}

type fakePasswords struct {
	calls int
	err   error
}

func (f *fakePasswords) ChangePassword(_ context.Context, id primitive.ObjectID, _, _ string) (*authsvc.LoginResult, error) {
	f.calls++
	if f.err != nil {
		return nil, f.err
	}
	return &authsvc.LoginResult{Token: "token", User: models.Employee{ID: id}}, nil
}

func meApp(h *EmployeeHandler, id primitive.ObjectID) *fiber.App {
	app := fiber.New()
	app.Put("/employees/me", func(c fiber.Ctx) error {
		c.Locals("user_id", id.Hex())
		c.Locals("role", models.RoleEmployee)
		return c.Next()
	}, h.HandleUpdateMe)
	return app
}

func putMe(t *testing.T, app *fiber.App, body string) (int, map[string]interface{}) {
	req := httptest.NewRequest("PUT", "/employees/me", strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	resp, err := app.Test(req)
	require.NoError(t, err)

	var out map[string]interface{}
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&out))
	return resp.StatusCode, out
}

func TestHandleUpdateMe_WrongCurrentPasswordSavesNothing(t *testing.T) {
	global.InitValidator()
	profile := &fakeProfile{}
	passwords := &fakePasswords{err: common.NewError(common.ErrCodeAuthCredentials, "Current password is incorrect", common.StatusBadRequest, nil)}
	h := &EmployeeHandler{profile: profile, passwords: passwords}

	status, body := putMe(t, meApp(h, primitive.NewObjectID()), `{"phone":"+966500000001","password":"NewPass123","currentPassword":"wrong"}`)
	assert.Equal(t, 400, status)
	assert.Equal(t, common.ErrCodeAuthCredentials.Code, body["code"])
	assert.Equal(t, 1, passwords.calls)
	assert.Equal(t, 0, profile.calls, "phone không được lưu khi sai mật khẩu")
}

func TestHandleUpdateMe_PasswordWithoutCurrentIsRejected(t *testing.T) {
	global.InitValidator()
	profile := &fakeProfile{}
	passwords := &fakePasswords{}
	h := &EmployeeHandler{profile: profile, passwords: passwords}

	status, body := putMe(t, meApp(h, primitive.NewObjectID()), `{"phone":"+966500000001","password":"NewPass123"}`)
	assert.Equal(t, 400, status)
	assert.Equal(t, common.ErrCodeValidationInput.Code, body["code"])
	assert.Equal(t, 0, passwords.calls)
	assert.Equal(t, 0, profile.calls)
}
