package logger

import (
	"bytes"
	"fmt"
	"io"
	"os"
	"runtime/debug"
	"sync"

	"github.com/sirupsen/logrus"
)

const filteredKey = "_filtered"

// AsyncHook ghi log bất đồng bộ để tránh blocking request handling.
// Entry được buffer qua channel và ghi ra các writers trong một goroutine riêng.
type AsyncHook struct {
	writers []io.Writer
	entries chan *logrus.Entry
	wg      sync.WaitGroup
	mu      sync.RWMutex
	closed  bool
}

// NewAsyncHookWithWriters tạo một async hook mới với nhiều writers
func NewAsyncHookWithWriters(writers []io.Writer, bufferSize int) *AsyncHook {
	if bufferSize <= 0 {
		bufferSize = 1000
	}

	hook := &AsyncHook{
		writers: writers,
		entries: make(chan *logrus.Entry, bufferSize),
	}

	hook.wg.Add(1)
	go hook.processEntries()

	return hook
}

// Levels trả về các log levels mà hook này xử lý
func (h *AsyncHook) Levels() []logrus.Level {
	return logrus.AllLevels
}

// Fire không block: nếu channel đầy, entry bị bỏ qua
func (h *AsyncHook) Fire(entry *logrus.Entry) error {
	if isFiltered(entry) {
		return nil
	}

	// Giữ read lock trong lúc gửi để Close không đóng channel giữa chừng
	h.mu.RLock()
	defer h.mu.RUnlock()

	if h.closed {
		// Hook đã đóng: ghi trực tiếp (fallback)
		if data, err := format(entry); err == nil {
			h.write(data)
		}
		return nil
	}

	select {
	case h.entries <- entry:
	default:
	}
	return nil
}

// processEntries có recover để goroutine logger không làm crash server
func (h *AsyncHook) processEntries() {
	defer h.wg.Done()

	for entry := range h.entries {
		func() {
			defer func() {
				if r := recover(); r != nil {
					// Không thể dùng logger ở đây vì sẽ tạo vòng lặp
					fmt.Fprintf(os.Stderr, "[LOGGER PANIC] Logger goroutine panic recovered: %v\n", r)
					debug.PrintStack()
				}
			}()

			data, err := format(entry)
			if err != nil {
				return
			}
			h.write(data)
		}()
	}
}

func (h *AsyncHook) write(data []byte) {
	for _, writer := range h.writers {
		_, _ = writer.Write(data)
	}
}

// Close đóng hook và đợi tất cả entries được xử lý xong
func (h *AsyncHook) Close() error {
	h.mu.Lock()
	if h.closed {
		h.mu.Unlock()
		return nil
	}
	h.closed = true
	close(h.entries)
	h.mu.Unlock()

	h.wg.Wait()
	return nil
}

func isFiltered(entry *logrus.Entry) bool {
	filtered, ok := entry.Data[filteredKey].(bool)
	return ok && filtered
}

// format dùng formatter của logger, bỏ field đánh dấu filter
func format(entry *logrus.Entry) ([]byte, error) {
	if _, ok := entry.Data[filteredKey]; ok {
		clean := *entry
		clean.Data = make(logrus.Fields, len(entry.Data))
		for k, v := range entry.Data {
			if k != filteredKey {
				clean.Data[k] = v
			}
		}
		entry = &clean
	}
	if entry.Logger != nil && entry.Logger.Formatter != nil {
		return entry.Logger.Formatter.Format(entry)
	}
	line, err := entry.String()
	return []byte(line), err
}

// filteredWriter dùng cho chế độ đồng bộ: bỏ các dòng đã bị FilterHook đánh dấu.
// Formatter đã chạy nên chỉ còn cách nhận diện qua nội dung.
type filteredWriter struct {
	out io.Writer
}

func (w *filteredWriter) Write(p []byte) (int, error) {
	if bytes.Contains(p, []byte(filteredKey)) {
		return len(p), nil
	}
	return w.out.Write(p)
}
