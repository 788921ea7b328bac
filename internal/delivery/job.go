// Package delivery là hàng đợi gửi thông báo ra ngoài (email, telegram) chạy trong process.
// Job được xử lý bởi N worker, lỗi được retry với backoff lũy thừa.
package delivery

import (
	"context"
	"errors"

	"github.com/google/uuid"
)

// Các kênh gửi
const (
	ChannelEmail    = "email"
	ChannelTelegram = "telegram"
)

// ErrQueueFull trả về khi hàng đợi đầy
var ErrQueueFull = errors.New("delivery queue is full")

// ErrQueueClosed trả về khi hàng đợi đã dừng
var ErrQueueClosed = errors.New("delivery queue is closed")

// Job là một thông báo cần gửi
type Job struct {
	ID       string
	Channel  string
	To       string // email người nhận; rỗng với telegram (dùng chat mặc định)
	Subject  string
	Body     string
	HTML     bool
	Attempts int
}

// NewJob tạo job với ID mới
func NewJob(channel, to, subject, body string) Job {
	return Job{
		ID:      uuid.NewString(),
		Channel: channel,
		To:      to,
		Subject: subject,
		Body:    body,
	}
}

// Channel là một kênh gửi. Kênh chưa cấu hình trả về Enabled() = false và job bị bỏ qua.
type Channel interface {
	Name() string
	Enabled() bool
	Send(ctx context.Context, job Job) error
}
