// Package realtime là kênh đẩy sự kiện qua WebSocket: mỗi client tham gia các phòng
// user:<id>, role:<role>, department:<id> và nhận frame {event, data}.
package realtime

import (
	"encoding/json"
	"sync"
)

// Tên sự kiện
const (
	EventConnected         = "connected"
	EventMessageNew        = "message:new"
	EventMessageDeleted    = "message:deleted"
	EventUnreadUpdate      = "unread:update"
	EventSchedulePublished = "schedule:published"
	EventPing              = "ping"
	EventPong              = "pong"
	EventError             = "error"
)

// Frame là đơn vị dữ liệu trao đổi với client
type Frame struct {
	Event string      `json:"event"`
	Data  interface{} `json:"data,omitempty"`
}

// Encode mã hóa frame thành JSON
func (f Frame) Encode() ([]byte, error) {
	return json.Marshal(f)
}

// UserRoom là phòng riêng của một nhân viên
func UserRoom(userHex string) string { return "user:" + userHex }

// RoleRoom là phòng chung của một role
func RoleRoom(role string) string { return "role:" + role }

// DepartmentRoom là phòng của một phòng ban
func DepartmentRoom(deptHex string) string { return "department:" + deptHex }

// Publisher đẩy sự kiện tới các phòng. Service phụ thuộc interface này thay vì Hub.
type Publisher interface {
	Publish(event string, data interface{}, rooms ...string)
}

// NopPublisher bỏ qua mọi sự kiện (khi socket server không chạy)
type NopPublisher struct{}

// Publish không làm gì
func (NopPublisher) Publish(string, interface{}, ...string) {}

var (
	defaultPublisher   Publisher = NopPublisher{}
	defaultPublisherMu sync.RWMutex
)

// SetDefault đặt publisher dùng chung cho Publish (thường là Hub)
func SetDefault(p Publisher) {
	if p == nil {
		p = NopPublisher{}
	}
	defaultPublisherMu.Lock()
	defer defaultPublisherMu.Unlock()
	defaultPublisher = p
}

// Publish đẩy sự kiện qua publisher dùng chung
func Publish(event string, data interface{}, rooms ...string) {
	defaultPublisherMu.RLock()
	p := defaultPublisher
	defaultPublisherMu.RUnlock()
	p.Publish(event, data, rooms...)
}
