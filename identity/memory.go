package identity

import "sync"

// Memory is an in-memory identity map.
type Memory[K comparable] struct {
	mu     sync.RWMutex
	ids    map[K]int64
	closed bool
}

// NewMemory creates an empty in-memory map.
func NewMemory[K comparable]() *Memory[K] {
	return &Memory[K]{ids: make(map[K]int64)}
}

func (m *Memory[K]) Get(key K) (int64, bool) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	id, ok := m.ids[key]
	return id, ok
}

func (m *Memory[K]) GetOrCreate(key K, create func() (int64, error)) (int64, error) {
	if id, ok := m.Get(key); ok {
		return id, nil
	}

	m.mu.Lock()
	defer m.mu.Unlock()
	if m.closed {
		return 0, ErrClosed
	}
	if id, ok := m.ids[key]; ok {
		return id, nil
	}
	id, err := create()
	if err != nil {
		return 0, err
	}
	m.ids[key] = id
	return id, nil
}

func (m *Memory[K]) Put(key K, id int64) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.closed {
		return ErrClosed
	}
	m.ids[key] = id
	return nil
}

func (m *Memory[K]) Len() int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return len(m.ids)
}

func (m *Memory[K]) Close() error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.closed = true
	m.ids = make(map[K]int64)
	return nil
}
