package store

import (
	"context"
	"sync"

	"reviewapp/pkg/platform/sentinel"
)

// Memory is an in-process Store. It backs tests, the memory backend, and the
// fallback side of Fallback.
type Memory struct {
	mu     sync.RWMutex
	values map[Key]string
}

func NewMemory() *Memory {
	return &Memory{values: make(map[Key]string)}
}

func (m *Memory) Load(_ context.Context, key Key) (string, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	if value, ok := m.values[key]; ok {
		return value, nil
	}
	return "", sentinel.ErrNotFound
}

func (m *Memory) Save(_ context.Context, key Key, value string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.values[key] = value
	return nil
}

func (m *Memory) LoadMany(_ context.Context, keys []Key) (map[Key]string, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	out := make(map[Key]string, len(keys))
	for _, key := range keys {
		if value, ok := m.values[key]; ok {
			out[key] = value
		}
	}
	return out, nil
}
