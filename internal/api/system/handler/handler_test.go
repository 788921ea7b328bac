package systemhdl

import (
	"context"
	"encoding/json"
	"errors"
	"net/http/httptest"
	"testing"

	"github.com/gofiber/fiber/v3"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func healthApp(ping Pinger) *fiber.App {
	app := fiber.New()
	app.Get("/system/health", NewSystemHandler(ping).HandleHealth)
	return app
}

func TestHandleHealth(t *testing.T) {
	SetSocketCounter(func() int { return 3 })
	t.Cleanup(func() { SetSocketCounter(nil) })

	t.Run("healthy", func(t *testing.T) {
		resp, err := healthApp(func(context.Context) error { return nil }).Test(httptest.NewRequest("GET", "/system/health", nil))
		require.NoError(t, err)
		assert.Equal(t, 200, resp.StatusCode)

		var body struct {
			Success bool                   `json:"success"`
			Data    map[string]interface{} `json:"data"`
		}
		require.NoError(t, json.NewDecoder(resp.Body).Decode(&body))
		assert.True(t, body.Success)
		assert.Equal(t, "ok", body.Data["status"])
		assert.Equal(t, "ok", body.Data["mongo"])
		assert.Equal(t, float64(3), body.Data["sockets"])
	})

	t.Run("mongo down", func(t *testing.T) {
		resp, err := healthApp(func(context.Context) error { return errors.New("no reachable servers") }).Test(httptest.NewRequest("GET", "/system/health", nil))
		require.NoError(t, err)
		assert.Equal(t, 503, resp.StatusCode)

		var body struct {
			Success bool                   `json:"success"`
			Data    map[string]interface{} `json:"data"`
		}
		require.NoError(t, json.NewDecoder(resp.Body).Decode(&body))
		assert.False(t, body.Success)
		assert.Equal(t, "degraded", body.Data["status"])
		assert.Equal(t, "error", body.Data["mongo"])
	})
}

func TestSocketCountWithoutCounter(t *testing.T) {
	SetSocketCounter(nil)
	assert.Equal(t, 0, socketCount())
}
