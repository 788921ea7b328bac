package main

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"os"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// Kịch bản end-to-end chạy với server thật.
// Cần QCED_E2E_URL (vd http://localhost:8080/api), QCED_E2E_EMAIL, QCED_E2E_PASSWORD (tài khoản admin).

type e2eClient struct {
	baseURL string
	token   string
	http    *http.Client
}

type envelope struct {
	Success bool            `json:"success"`
	Message string          `json:"message"`
	Data    json.RawMessage `json:"data"`
	Errors  json.RawMessage `json:"errors"`
}

func (c *e2eClient) do(t *testing.T, method, path string, payload interface{}) (int, envelope) {
	t.Helper()
	var body io.Reader
	if payload != nil {
		data, err := json.Marshal(payload)
		require.NoError(t, err)
		body = bytes.NewReader(data)
	}
	req, err := http.NewRequest(method, c.baseURL+path, body)
	require.NoError(t, err)
	req.Header.Set("Content-Type", "application/json")
	if c.token != "" {
		req.Header.Set("Authorization", "Bearer "+c.token)
	}
	resp, err := c.http.Do(req)
	require.NoError(t, err)
	defer resp.Body.Close()

	var env envelope
	raw, _ := io.ReadAll(resp.Body)
	_ = json.Unmarshal(raw, &env)
	return resp.StatusCode, env
}

func (c *e2eClient) mustOK(t *testing.T, method, path string, payload interface{}, out interface{}) {
	t.Helper()
	status, env := c.do(t, method, path, payload)
	require.Truef(t, status == http.StatusOK || status == http.StatusCreated, "%s %s -> %d: %s", method, path, status, env.Message)
	if out != nil {
		require.NoError(t, json.Unmarshal(env.Data, out))
	}
}

func (c *e2eClient) login(t *testing.T, email, password string) {
	t.Helper()
	var result struct {
		Token string `json:"token"`
	}
	c.mustOK(t, "POST", "/auth/login", map[string]string{"email": email, "password": password}, &result)
	require.NotEmpty(t, result.Token)
	c.token = result.Token
}

// waitForHealth chờ server sẵn sàng
func waitForHealth(t *testing.T, baseURL string, retries int, delay time.Duration) {
	t.Helper()
	for i := 0; i < retries; i++ {
		resp, err := http.Get(baseURL + "/system/health")
		if err == nil {
			resp.Body.Close()
			if resp.StatusCode == http.StatusOK {
				return
			}
		}
		time.Sleep(delay)
	}
	t.Fatalf("server %s không sẵn sàng", baseURL)
}

func TestEndToEnd(t *testing.T) {
	baseURL := os.Getenv("QCED_E2E_URL")
	email, password := os.Getenv("QCED_E2E_EMAIL"), os.Getenv("QCED_E2E_PASSWORD")
	if baseURL == "" || email == "" || password == "" {
		t.Skip("QCED_E2E_URL, QCED_E2E_EMAIL và QCED_E2E_PASSWORD chưa được set")
	}
	waitForHealth(t, baseURL, 10, time.Second)

	admin := &e2eClient{baseURL: baseURL, http: &http.Client{Timeout: 10 * time.Second}}
	admin.login(t, email, password)

	suffix := fmt.Sprintf("%d", time.Now().UnixNano()%1_000_000)

	t.Run("unauthenticated request returns 401 envelope", func(t *testing.T) {
		anon := &e2eClient{baseURL: baseURL, http: admin.http}
		status, env := anon.do(t, "GET", "/employees", nil)
		assert.Equal(t, http.StatusUnauthorized, status)
		assert.False(t, env.Success)
	})

	var roots []struct {
		ID string `json:"id"`
	}
	admin.mustOK(t, "GET", "/departments?level=board", nil, &roots)
	require.NotEmpty(t, roots)

	var dept struct {
		ID string `json:"id"`
	}
	admin.mustOK(t, "POST", "/departments", map[string]interface{}{
		"name":   "E2E Department " + suffix,
		"level":  "department",
		"parent": roots[0].ID,
	}, &dept)

	employeeEmail := "e2e." + suffix + "@qced.test"
	employeePassword := "E2ePassw0rd"
	var employee struct {
		ID string `json:"id"`
	}
	admin.mustOK(t, "POST", "/employees", map[string]interface{}{
		"firstName":  "E2E",
		"lastName":   "Employee",
		"email":      employeeEmail,
		"password":   employeePassword,
		"department": dept.ID,
		"role":       "employee",
	}, &employee)

	t.Run("validation errors carry field details", func(t *testing.T) {
		status, env := admin.do(t, "POST", "/employees", map[string]interface{}{"email": "not-an-email"})
		assert.Equal(t, http.StatusBadRequest, status)
		assert.False(t, env.Success)
		assert.Contains(t, string(env.Errors), "email")
	})

	weekStart := time.Now().UTC().AddDate(0, 0, 14).Format("2006-01-02")
	var schedule struct {
		ID        string `json:"id"`
		WeekStart string `json:"weekStart"`
		Version   int    `json:"version"`
	}
	admin.mustOK(t, "POST", "/schedules", map[string]interface{}{
		"department": dept.ID,
		"weekStart":  weekStart,
		"entries": []map[string]interface{}{{
			"employee": employee.ID,
			"days": []map[string]interface{}{
				{"day": "monday", "isWorking": true, "startTime": "08:00", "endTime": "16:00"},
			},
		}},
	}, &schedule)
	assert.Equal(t, 1, schedule.Version)

	t.Run("publish schedule bumps version and writes history", func(t *testing.T) {
		var published struct {
			IsPublished bool `json:"isPublished"`
			Version     int  `json:"version"`
		}
		admin.mustOK(t, "POST", "/schedules/"+schedule.ID+"/publish", map[string]interface{}{}, &published)
		assert.True(t, published.IsPublished)
		assert.Equal(t, 2, published.Version)

		var history []map[string]interface{}
		admin.mustOK(t, "GET", "/schedules/"+schedule.ID+"/history", nil, &history)
		assert.NotEmpty(t, history)
	})

	t.Run("direct message updates unread count", func(t *testing.T) {
		var sent struct {
			ID           string `json:"id"`
			ClientTempID string `json:"clientTempId"`
		}
		admin.mustOK(t, "POST", "/messages", map[string]interface{}{
			"recipientId":  employee.ID,
			"text":         "Welcome aboard",
			"clientTempId": "tmp-" + suffix,
		}, &sent)
		assert.Equal(t, "tmp-"+suffix, sent.ClientTempID)

		staff := &e2eClient{baseURL: baseURL, http: admin.http}
		staff.login(t, employeeEmail, employeePassword)
		var unread struct {
			Total int64 `json:"total"`
		}
		staff.mustOK(t, "GET", "/messages/unread", nil, &unread)
		assert.GreaterOrEqual(t, unread.Total, int64(1))

		staff.mustOK(t, "POST", "/messages/read", map[string]interface{}{"messageIds": []string{sent.ID}}, nil)
		staff.mustOK(t, "GET", "/messages/unread", nil, &unread)
		assert.Equal(t, int64(0), unread.Total)

		status, _ := staff.do(t, "GET", "/reports/headcount", nil)
		assert.Equal(t, http.StatusForbidden, status)
	})

	t.Run("reports and qr", func(t *testing.T) {
		var report struct {
			Type string `json:"type"`
		}
		admin.mustOK(t, "GET", "/reports/headcount?department="+dept.ID, nil, &report)
		assert.Equal(t, "headcount", report.Type)

		var qr struct {
			Payload string `json:"payload"`
			DataURL string `json:"dataUrl"`
		}
		admin.mustOK(t, "GET", "/qr/employee/"+employee.ID+"?format=json", nil, &qr)
		assert.Contains(t, qr.Payload, "BEGIN:VCARD")
		assert.Contains(t, qr.DataURL, "data:image/png;base64,")
	})

	t.Run("cleanup", func(t *testing.T) {
		admin.mustOK(t, "DELETE", "/schedules/"+schedule.ID+"?force=true", nil, nil)
		admin.mustOK(t, "DELETE", "/employees/"+employee.ID, nil, nil)
		admin.mustOK(t, "DELETE", "/departments/"+dept.ID, nil, nil)
	})
}
