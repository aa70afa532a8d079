package localstore

import (
	"context"
	"sync"
)

type Memory struct {
	mu   sync.RWMutex
	data map[string]map[string]string
}

func NewMemory() *Memory {
	return &Memory{data: make(map[string]map[string]string)}
}

func (m *Memory) Get(_ context.Context, browser, key string) (string, bool, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	v, ok := m.data[browser][key]
	return v, ok, nil
}

func (m *Memory) Set(_ context.Context, browser, key, value string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	kv, ok := m.data[browser]
	if !ok {
		kv = make(map[string]string)
		m.data[browser] = kv
	}
	kv[key] = value
	return nil
}

func (m *Memory) Delete(_ context.Context, browser, key string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if kv, ok := m.data[browser]; ok {
		delete(kv, key)
		if len(kv) == 0 {
			delete(m.data, browser)
		}
	}
	return nil
}
