// Package events cung cấp cơ chế event trung tâm khi dữ liệu thay đổi qua CRUD.
// BaseServiceMongoImpl tự động phát event; logic phản ứng (xóa cache báo cáo, cache user, ...)
// đăng ký qua OnDataChanged.
package events

import (
	"context"
	"sync"

	"qced_directory/internal/logger"
)

// OpInsert, OpUpdate, OpDelete là các loại thao tác CRUD.
const (
	OpInsert = "insert"
	OpUpdate = "update"
	OpDelete = "delete"
)

// DataChangeEvent mô tả sự kiện thay đổi dữ liệu.
// Document là bản ghi sau khi thay đổi (bản ghi cũ nếu delete, nil với thao tác hàng loạt).
type DataChangeEvent struct {
	CollectionName string
	Operation      string
	Document       interface{}
}

// DataChangeHandler xử lý sự kiện thay đổi dữ liệu.
type DataChangeHandler func(ctx context.Context, e DataChangeEvent)

var (
	handlers   []DataChangeHandler
	handlersMu sync.RWMutex
)

// OnDataChanged đăng ký handler. Gọi khi init.
func OnDataChanged(h DataChangeHandler) {
	handlersMu.Lock()
	defer handlersMu.Unlock()
	handlers = append(handlers, h)
}

// EmitDataChanged phát sự kiện tới từng handler trong goroutine riêng, panic được recover.
// Context gốc có thể bị hủy khi request kết thúc nên handler nhận context nền.
func EmitDataChanged(_ context.Context, e DataChangeEvent) {
	handlersMu.RLock()
	list := make([]DataChangeHandler, len(handlers))
	copy(list, handlers)
	handlersMu.RUnlock()

	for _, h := range list {
		go func(fn DataChangeHandler) {
			defer func() {
				if r := recover(); r != nil {
					logger.WithModule("events").WithField("panic", r).Error("Data change handler panic")
				}
			}()
			fn(context.Background(), e)
		}(h)
	}
}
