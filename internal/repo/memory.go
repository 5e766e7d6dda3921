package repo

import (
	"context"
	"sync"

	"airport-ops/internal/domain"
)

// Memory 进程内仓储。实体按值保存，读出的都是副本，快照不会和内部状态共享
type Memory[T any] struct {
	mu       sync.RWMutex
	resource string
	idOf     func(T) string
	keyOf    func(T) string // 唯一键，nil 表示不建唯一索引
	keyField string
	clone    func(T) T

	items map[string]T
	keys  map[string]string // 唯一键 -> id
}

type MemoryOption[T any] func(*Memory[T])

// WithUniqueKey 建唯一索引，AddUnique 拒绝同键的第二个实体
func WithUniqueKey[T any](field string, key func(T) string) MemoryOption[T] {
	return func(m *Memory[T]) {
		m.keyField = field
		m.keyOf = key
	}
}

// WithClone 存取时深拷贝
func WithClone[T any](clone func(T) T) MemoryOption[T] {
	return func(m *Memory[T]) { m.clone = clone }
}

func NewMemory[T any](resource string, idOf func(T) string, opts ...MemoryOption[T]) *Memory[T] {
	m := &Memory[T]{
		resource: resource,
		idOf:     idOf,
		items:    make(map[string]T),
		keys:     make(map[string]string),
	}
	for _, o := range opts {
		o(m)
	}
	return m
}

// NewUserMemory 用户仓储，按规范化邮箱唯一
func NewUserMemory() *Memory[domain.User] {
	return NewMemory("user", domain.UserID,
		WithUniqueKey("email", domain.UserEmailKey),
		WithClone(domain.User.Clone),
	)
}

// NewFlightMemory 航班仓储，按 plane id 唯一
func NewFlightMemory() *Memory[domain.Flight] {
	return NewMemory("flight", domain.FlightID,
		WithUniqueKey("plane id", domain.FlightPlaneKey),
	)
}

func (m *Memory[T]) copyOf(e T) T {
	if m.clone == nil {
		return e
	}
	return m.clone(e)
}

func (m *Memory[T]) Get(_ context.Context, id string) (T, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	e, ok := m.items[id]
	if !ok {
		var zero T
		return zero, domain.NewNotFoundError(m.resource, id)
	}
	return m.copyOf(e), nil
}

func (m *Memory[T]) Add(_ context.Context, e T) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.put(e)
	return nil
}

func (m *Memory[T]) Update(ctx context.Context, e T) error { return m.Add(ctx, e) }

func (m *Memory[T]) Remove(_ context.Context, id string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if old, ok := m.items[id]; ok {
		m.dropKey(old)
		delete(m.items, id)
	}
	return nil
}

func (m *Memory[T]) List(_ context.Context) ([]T, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	out := make([]T, 0, len(m.items))
	for _, e := range m.items {
		out = append(out, m.copyOf(e))
	}
	return out, nil
}

func (m *Memory[T]) AddUnique(_ context.Context, e T) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.keyOf != nil {
		k := m.keyOf(e)
		if owner, taken := m.keys[k]; taken && owner != m.idOf(e) {
			return domain.NewConflictError(m.resource, m.keyField, k)
		}
	}
	m.put(e)
	return nil
}

// 调用方需持有写锁
func (m *Memory[T]) put(e T) {
	id := m.idOf(e)
	if old, ok := m.items[id]; ok {
		m.dropKey(old)
	}
	e = m.copyOf(e)
	m.items[id] = e
	if m.keyOf != nil {
		m.keys[m.keyOf(e)] = id
	}
}

func (m *Memory[T]) dropKey(e T) {
	if m.keyOf == nil {
		return
	}
	k := m.keyOf(e)
	if m.keys[k] == m.idOf(e) {
		delete(m.keys, k)
	}
}

var (
	_ domain.UserRepository   = (*Memory[domain.User])(nil)
	_ domain.FlightRepository = (*Memory[domain.Flight])(nil)
)
