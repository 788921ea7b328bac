package realtime

import (
	"context"
	"encoding/json"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gorilla/websocket"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"qced_directory/internal/common"
)

func testServer(t *testing.T) (*Hub, *httptest.Server) {
	t.Helper()
	ctx, cancel := context.WithCancel(context.Background())
	hub := NewHub()
	go hub.Run(ctx)

	identities := map[string]*Identity{
		"tok-sara": {UserID: "u1", Role: "hr", DepartmentID: "d1"},
		"tok-omar": {UserID: "u2", Role: "employee", DepartmentID: "d1"},
	}
	srv := NewServer(hub, func(_ context.Context, token string) (*Identity, error) {
		if id, ok := identities[token]; ok {
			return id, nil
		}
		return nil, common.ErrTokenInvalid
	}, nil)

	ts := httptest.NewServer(srv.Handler())
	t.Cleanup(func() {
		ts.Close()
		cancel()
	})
	return hub, ts
}

func dial(t *testing.T, ts *httptest.Server, token string) *websocket.Conn {
	t.Helper()
	url := "ws" + strings.TrimPrefix(ts.URL, "http") + "/ws?token=" + token
	conn, _, err := websocket.DefaultDialer.Dial(url, nil)
	require.NoError(t, err)
	t.Cleanup(func() { conn.Close() })
	return conn
}

func readFrame(t *testing.T, conn *websocket.Conn) Frame {
	t.Helper()
	require.NoError(t, conn.SetReadDeadline(time.Now().Add(2*time.Second)))
	_, raw, err := conn.ReadMessage()
	require.NoError(t, err)
	var frame Frame
	require.NoError(t, json.Unmarshal(raw, &frame))
	return frame
}

func waitClients(t *testing.T, hub *Hub, n int) {
	t.Helper()
	require.Eventually(t, func() bool { return hub.ClientCount() == n }, 2*time.Second, 10*time.Millisecond)
}

func TestRejectsInvalidToken(t *testing.T) {
	_, ts := testServer(t)
	url := "ws" + strings.TrimPrefix(ts.URL, "http") + "/ws?token=bad"
	_, resp, err := websocket.DefaultDialer.Dial(url, nil)
	require.Error(t, err)
	require.NotNil(t, resp)
	assert.Equal(t, 401, resp.StatusCode)
}

func TestConnectedAndPing(t *testing.T) {
	_, ts := testServer(t)
	conn := dial(t, ts, "tok-sara")

	frame := readFrame(t, conn)
	assert.Equal(t, EventConnected, frame.Event)
	data := frame.Data.(map[string]interface{})
	assert.Equal(t, "u1", data["userId"])
	assert.ElementsMatch(t, []interface{}{"user:u1", "role:hr", "department:d1"}, data["rooms"])

	require.NoError(t, conn.WriteJSON(Frame{Event: EventPing}))
	assert.Equal(t, EventPong, readFrame(t, conn).Event)
}

func TestPublishToRooms(t *testing.T) {
	hub, ts := testServer(t)
	sara := dial(t, ts, "tok-sara")
	omar := dial(t, ts, "tok-omar")
	readFrame(t, sara)
	readFrame(t, omar)
	waitClients(t, hub, 2)

	// Chỉ phòng role:hr
	hub.Publish(EventMessageNew, map[string]string{"text": "hello hr"}, RoleRoom("hr"))
	frame := readFrame(t, sara)
	assert.Equal(t, EventMessageNew, frame.Event)

	// Client thuộc nhiều phòng chỉ nhận một lần
	hub.Publish(EventSchedulePublished, map[string]string{"id": "s1"}, DepartmentRoom("d1"), UserRoom("u1"))
	assert.Equal(t, EventSchedulePublished, readFrame(t, sara).Event)
	assert.Equal(t, EventSchedulePublished, readFrame(t, omar).Event)

	hub.Publish(EventUnreadUpdate, map[string]int{"total": 1}, UserRoom("u1"))
	assert.Equal(t, EventUnreadUpdate, readFrame(t, sara).Event)
}

func TestUnregisterOnClose(t *testing.T) {
	hub, ts := testServer(t)
	conn := dial(t, ts, "tok-omar")
	readFrame(t, conn)
	waitClients(t, hub, 1)

	conn.Close()
	waitClients(t, hub, 0)
}

func TestIdentityRooms(t *testing.T) {
	id := &Identity{UserID: "u9"}
	assert.Equal(t, []string{"user:u9"}, id.Rooms())
}
