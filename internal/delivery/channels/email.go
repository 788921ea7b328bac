// Package channels chứa các kênh gửi của delivery: email (SMTP) và telegram.
package channels

import (
	"context"
	"fmt"

	"gopkg.in/gomail.v2"

	"qced_directory/internal/delivery"
)

// EmailConfig là cấu hình SMTP
type EmailConfig struct {
	Host     string
	Port     int
	Username string
	Password string
	From     string
}

// EmailChannel gửi email qua SMTP
type EmailChannel struct {
	cfg    EmailConfig
	dialer *gomail.Dialer
}

// NewEmailChannel tạo kênh email, chưa cấu hình host thì kênh bị tắt
func NewEmailChannel(cfg EmailConfig) *EmailChannel {
	ch := &EmailChannel{cfg: cfg}
	if cfg.Host != "" {
		ch.dialer = gomail.NewDialer(cfg.Host, cfg.Port, cfg.Username, cfg.Password)
	}
	return ch
}

// Name trả về tên kênh
func (e *EmailChannel) Name() string { return delivery.ChannelEmail }

// Enabled cho biết kênh đã được cấu hình
func (e *EmailChannel) Enabled() bool { return e.dialer != nil && e.cfg.From != "" }

// BuildMessage dựng email từ job
func (e *EmailChannel) BuildMessage(job delivery.Job) (*gomail.Message, error) {
	if job.To == "" {
		return nil, fmt.Errorf("email job %s has no recipient", job.ID)
	}
	msg := gomail.NewMessage()
	msg.SetHeader("From", e.cfg.From)
	msg.SetHeader("To", job.To)
	msg.SetHeader("Subject", job.Subject)
	if job.HTML {
		msg.SetBody("text/html", job.Body)
	} else {
		msg.SetBody("text/plain", job.Body)
	}
	return msg, nil
}

// Send gửi email
func (e *EmailChannel) Send(ctx context.Context, job delivery.Job) error {
	msg, err := e.BuildMessage(job)
	if err != nil {
		return err
	}
	if err := ctx.Err(); err != nil {
		return err
	}
	return e.dialer.DialAndSend(msg)
}
