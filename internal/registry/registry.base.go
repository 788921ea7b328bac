// Package registry cung cấp registry pattern generic, thread-safe.
// Dùng để quản lý các singleton (collections, databases, ...) trong ứng dụng.
package registry

import (
	"fmt"
	"sort"
	"sync"

	"qced_directory/internal/common"
)

// Registry là một thread-safe generic registry.
//
// Example:
//
//	collections := NewRegistry[*mongo.Collection]()
//	collections.Register("employees", db.Collection("employees"))
//	if col, ok := collections.Get("employees"); ok { ... }
type Registry[T any] struct {
	items map[string]T
	mu    sync.RWMutex
}

// NewRegistry tạo và trả về một registry mới.
func NewRegistry[T any]() *Registry[T] {
	return &Registry[T]{
		items: make(map[string]T),
	}
}

// Register đăng ký một item mới; item cùng tên sẽ bị ghi đè.
// isNew = false khi ghi đè item cũ.
func (r *Registry[T]) Register(name string, item T) (isNew bool, err error) {
	if name == "" {
		return false, fmt.Errorf("name cannot be empty: %w", common.ErrInvalidInput)
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	_, exists := r.items[name]
	r.items[name] = item
	return !exists, nil
}

// Get lấy item theo tên.
func (r *Registry[T]) Get(name string) (item T, exists bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	item, exists = r.items[name]
	return item, exists
}

// MustGet lấy item theo tên, panic nếu chưa đăng ký (chỉ dùng lúc khởi tạo service)
func (r *Registry[T]) MustGet(name string) T {
	item, ok := r.Get(name)
	if !ok {
		panic(fmt.Sprintf("registry: %q is not registered", name))
	}
	return item
}

// GetOrCreate lấy item theo tên, nếu không tồn tại sẽ tạo mới thông qua creator
func (r *Registry[T]) GetOrCreate(name string, creator func() (T, error)) (item T, err error) {
	if name == "" {
		return item, fmt.Errorf("name cannot be empty: %w", common.ErrInvalidInput)
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	if existing, exists := r.items[name]; exists {
		return existing, nil
	}

	created, err := creator()
	if err != nil {
		return item, fmt.Errorf("failed to create item: %w", err)
	}
	r.items[name] = created
	return created, nil
}

// Names trả về danh sách tên đã đăng ký, đã sắp xếp
func (r *Registry[T]) Names() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()
	names := make([]string, 0, len(r.items))
	for name := range r.items {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// Clear xóa một item khỏi registry, gọi cleanup (nếu có) trước khi xóa
func (r *Registry[T]) Clear(name string, cleanup func(T) error) (deleted bool, err error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	item, exists := r.items[name]
	if !exists {
		return false, nil
	}
	if cleanup != nil {
		if err := cleanup(item); err != nil {
			return false, fmt.Errorf("failed to cleanup item %s: %w", name, err)
		}
	}
	delete(r.items, name)
	return true, nil
}
