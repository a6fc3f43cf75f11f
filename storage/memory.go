package storage

import (
	"context"
	"sync"
)

// MemoryProvider keeps values in a map. It is the default when no persistent storage is configured.
type MemoryProvider struct {
	values map[string][]byte
	lock   sync.RWMutex
}

// NewMemoryProvider creates an empty MemoryProvider.
func NewMemoryProvider() *MemoryProvider {
	return &MemoryProvider{values: make(map[string][]byte)}
}

func (m *MemoryProvider) Save(ctx context.Context, key string, value []byte) error {
	data := make([]byte, len(value))
	copy(data, value)
	m.lock.Lock()
	m.values[key] = data
	m.lock.Unlock()
	return nil
}

func (m *MemoryProvider) Get(ctx context.Context, key string) ([]byte, error) {
	m.lock.RLock()
	defer m.lock.RUnlock()
	data, ok := m.values[key]
	if !ok {
		return nil, nil
	}
	ret := make([]byte, len(data))
	copy(ret, data)
	return ret, nil
}
