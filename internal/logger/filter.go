package logger

import (
	"strings"
	"sync"

	"github.com/sirupsen/logrus"
)

// FilterHook lọc log entries theo module, HTTP method và log level.
// Entry bị lọc được đánh dấu field "_filtered", AsyncHook sẽ bỏ qua.
type FilterHook struct {
	allowedModules map[string]bool
	allowedMethods map[string]bool
	allowedLevels  map[string]bool
	mu             sync.RWMutex
}

// NewFilterHook tạo một filter hook mới với cấu hình
func NewFilterHook(cfg *LogConfig) *FilterHook {
	hook := &FilterHook{}
	hook.UpdateFilters(cfg)
	return hook
}

// UpdateFilters cập nhật filters từ config mới (có thể gọi runtime)
func (h *FilterHook) UpdateFilters(cfg *LogConfig) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.allowedModules = parseFilter(cfg.FilterModules)
	h.allowedMethods = parseFilter(cfg.FilterMethods)
	h.allowedLevels = parseFilter(cfg.FilterLevels)
}

// parseFilter parse "value1,value2" thành set; nil nghĩa là cho phép tất cả
func parseFilter(filterStr string) map[string]bool {
	filterStr = strings.TrimSpace(filterStr)
	if filterStr == "" || filterStr == "*" {
		return nil
	}

	result := make(map[string]bool)
	for _, v := range strings.Split(filterStr, ",") {
		if v = strings.TrimSpace(v); v != "" {
			result[strings.ToLower(v)] = true
		}
	}
	if len(result) == 0 || result["*"] {
		return nil
	}
	return result
}

// Levels trả về các log levels mà hook này xử lý
func (h *FilterHook) Levels() []logrus.Level {
	return logrus.AllLevels
}

// Fire đánh dấu entry không thỏa filter
func (h *FilterHook) Fire(entry *logrus.Entry) error {
	h.mu.RLock()
	defer h.mu.RUnlock()

	if !allows(h.allowedLevels, entry.Level.String()) {
		entry.Data[filteredKey] = true
		return nil
	}
	// Entry không có field module/method thì không áp dụng filter tương ứng
	if module, ok := entry.Data["module"].(string); ok && module != "" && !allows(h.allowedModules, module) {
		entry.Data[filteredKey] = true
		return nil
	}
	if method, ok := entry.Data["method"].(string); ok && method != "" && !allows(h.allowedMethods, method) {
		entry.Data[filteredKey] = true
	}
	return nil
}

func allows(set map[string]bool, value string) bool {
	return set == nil || set[strings.ToLower(value)]
}
