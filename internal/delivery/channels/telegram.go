package channels

import (
	"context"
	"fmt"
	"strconv"
	"sync"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"

	"qced_directory/internal/delivery"
)

// TelegramChannel gửi cảnh báo vào một chat Telegram (hộp thư HR)
type TelegramChannel struct {
	token  string
	chatID int64

	mu  sync.Mutex
	bot *tgbotapi.BotAPI
}

// NewTelegramChannel tạo kênh telegram, thiếu token hoặc chat id thì kênh bị tắt
func NewTelegramChannel(token string, chatID int64) *TelegramChannel {
	return &TelegramChannel{token: token, chatID: chatID}
}

// Name trả về tên kênh
func (t *TelegramChannel) Name() string { return delivery.ChannelTelegram }

// Enabled cho biết kênh đã được cấu hình
func (t *TelegramChannel) Enabled() bool { return t.token != "" && t.chatID != 0 }

// client khởi tạo BotAPI lần đầu dùng (NewBotAPI gọi getMe), lỗi thì thử lại ở lần sau
func (t *TelegramChannel) client() (*tgbotapi.BotAPI, error) {
	t.mu.Lock()
	defer t.mu.Unlock()
	if t.bot != nil {
		return t.bot, nil
	}
	bot, err := tgbotapi.NewBotAPI(t.token)
	if err != nil {
		return nil, err
	}
	t.bot = bot
	return bot, nil
}

// BuildMessage dựng tin nhắn từ job. job.To có thể ghi đè chat id mặc định.
func (t *TelegramChannel) BuildMessage(job delivery.Job) (tgbotapi.MessageConfig, error) {
	chatID := t.chatID
	if job.To != "" {
		id, err := strconv.ParseInt(job.To, 10, 64)
		if err != nil {
			return tgbotapi.MessageConfig{}, fmt.Errorf("invalid telegram chat id %q", job.To)
		}
		chatID = id
	}
	text := job.Body
	if job.Subject != "" {
		text = job.Subject + "\n\n" + job.Body
	}
	msg := tgbotapi.NewMessage(chatID, text)
	msg.DisableWebPagePreview = true
	return msg, nil
}

// Send gửi tin nhắn
func (t *TelegramChannel) Send(ctx context.Context, job delivery.Job) error {
	msg, err := t.BuildMessage(job)
	if err != nil {
		return err
	}
	bot, err := t.client()
	if err != nil {
		return fmt.Errorf("telegram init failed: %w", err)
	}
	if err := ctx.Err(); err != nil {
		return err
	}
	_, err = bot.Send(msg)
	return err
}
