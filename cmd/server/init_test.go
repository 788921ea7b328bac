package main

import (
	"encoding/json"
	"net/http/httptest"
	"testing"

	"github.com/gofiber/fiber/v3"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"qced_directory/internal/common"
	"qced_directory/internal/global"
)

func TestCollectionModels(t *testing.T) {
	initColNames()
	models := collectionModels()
	assert.Len(t, models, 6)
	for _, name := range []string{"employees", "departments", "schedules", "schedule_histories", "messages", "audit_logs"} {
		assert.Contains(t, models, name)
	}
	assert.Equal(t, "schedule_histories", global.MongoDB_ColNames.ScheduleHistories)
}

func TestErrorHandler(t *testing.T) {
	app := fiber.New(fiber.Config{ErrorHandler: errorHandler})
	app.Get("/fiber", func(c fiber.Ctx) error {
		return fiber.NewError(fiber.StatusRequestEntityTooLarge, "Request Entity Too Large")
	})
	app.Get("/custom", func(c fiber.Ctx) error {
		return common.ErrForbidden
	})

	cases := []struct {
		path   string
		status int
		code   string
	}{
		{"/fiber", 413, common.ErrCodeValidationInput.Code},
		{"/custom", 403, common.ErrCodeAuthRole.Code},
	}
	for _, tc := range cases {
		t.Run(tc.path, func(t *testing.T) {
			resp, err := app.Test(httptest.NewRequest("GET", tc.path, nil))
			require.NoError(t, err)
			assert.Equal(t, tc.status, resp.StatusCode)

			var body map[string]interface{}
			require.NoError(t, json.NewDecoder(resp.Body).Decode(&body))
			assert.Equal(t, false, body["success"])
			assert.Equal(t, tc.code, body["code"])
			assert.NotNil(t, body["errors"])
		})
	}
}
