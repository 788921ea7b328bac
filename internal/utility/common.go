package utility

import (
	"regexp"
	"runtime/debug"
	"time"

	"qced_directory/internal/logger"
)

// GoProtect chạy f và bắt panic (nếu có) để không làm sập goroutine gọi
func GoProtect(f func()) {
	defer func() {
		if err := recover(); err != nil {
			logger.GetErrorLogger().WithField("panic", err).WithField("stack", string(debug.Stack())).Error("Đã bắt lỗi panic")
		}
	}()
	f()
}

// UnixMilli dùng để lấy mili giây của thời gian cho trước
func UnixMilli(t time.Time) int64 {
	return t.UnixMilli()
}

// CurrentTimeInMilli dùng để lấy thời gian hiện tại tính bằng mili giây
func CurrentTimeInMilli() int64 {
	return UnixMilli(time.Now())
}

// Contains kiểm tra một phần tử có trong slice hay không
func Contains[T comparable](slice []T, item T) bool {
	for _, v := range slice {
		if v == item {
			return true
		}
	}
	return false
}

// Unique loại phần tử trùng, giữ thứ tự xuất hiện
func Unique[T comparable](slice []T) []T {
	seen := make(map[T]struct{}, len(slice))
	out := make([]T, 0, len(slice))
	for _, v := range slice {
		if _, ok := seen[v]; ok {
			continue
		}
		seen[v] = struct{}{}
		out = append(out, v)
	}
	return out
}

// EscapeRegex escape chuỗi tìm kiếm trước khi đưa vào $regex
func EscapeRegex(s string) string {
	return regexp.QuoteMeta(s)
}
