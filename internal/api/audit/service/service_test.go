package auditsvc

import (
	"net/http/httptest"
	"testing"

	"github.com/gofiber/fiber/v3"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"

	auditdto "qced_directory/internal/api/audit/dto"
	models "qced_directory/internal/api/audit/models"
	empmodels "qced_directory/internal/api/employee/models"
)

func TestBuildFilter(t *testing.T) {
	userID := primitive.NewObjectID()

	filter := BuildFilter(auditdto.AuditFilterInput{
		User:       userID.Hex(),
		Action:     "login",
		TargetType: "employee",
		From:       100,
		To:         200,
	})
	assert.Equal(t, userID, filter["user"])
	assert.Equal(t, "login", filter["action"])
	assert.Equal(t, "employee", filter["target.type"])
	assert.Equal(t, bson.M{"$gte": int64(100), "$lte": int64(200)}, filter["createdAt"])

	assert.Empty(t, BuildFilter(auditdto.AuditFilterInput{}))
}

func TestNewEntry(t *testing.T) {
	emp := empmodels.Employee{ID: primitive.NewObjectID(), Name: "Sara Ali", Role: "hr"}

	var entry models.AuditLog
	app := fiber.New()
	app.Get("/x", func(c fiber.Ctx) error {
		c.Locals("user", emp)
		c.Locals("requestid", "req-1")
		entry = NewEntry(c, models.ActionExport, "employee", "", map[string]interface{}{"format": "csv"})
		return nil
	})
	req := httptest.NewRequest("GET", "/x", nil)
	req.Header.Set("User-Agent", "unit-test")
	_, err := app.Test(req)
	require.NoError(t, err)

	require.NotNil(t, entry.User)
	assert.Equal(t, emp.ID, *entry.User)
	assert.Equal(t, "Sara Ali", entry.UserName)
	assert.Equal(t, "export", entry.Action)
	assert.Equal(t, "employee", entry.Target.Type)
	assert.Equal(t, "unit-test", entry.UserAgent)
	assert.Equal(t, "csv", entry.Details["format"])
	assert.Equal(t, "req-1", entry.Details["requestId"])
}
