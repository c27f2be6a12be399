package storage

import (
	"context"
	"sync"
)

// Memory keeps slots in process memory. Intended for local development and tests.
type Memory struct {
	mu       sync.RWMutex
	items    map[string]string
	maxBytes int
}

// NewMemory returns an empty in-memory store. maxBytes <= 0 disables the quota.
func NewMemory(maxBytes int) *Memory {
	return &Memory{items: make(map[string]string), maxBytes: maxBytes}
}

// GetItem returns the stored value for key.
func (m *Memory) GetItem(_ context.Context, key string) (string, bool, error) {
	if err := validateKey(key); err != nil {
		return "", false, err
	}
	m.mu.RLock()
	defer m.mu.RUnlock()
	v, ok := m.items[key]
	return v, ok, nil
}

// SetItem replaces the value for key.
func (m *Memory) SetItem(_ context.Context, key, value string) error {
	if err := validateKey(key); err != nil {
		return err
	}
	if err := checkQuota(m.maxBytes, value); err != nil {
		return err
	}
	m.mu.Lock()
	m.items[key] = value
	m.mu.Unlock()
	return nil
}

// RemoveItem deletes key; missing keys are ignored.
func (m *Memory) RemoveItem(_ context.Context, key string) error {
	if err := validateKey(key); err != nil {
		return err
	}
	m.mu.Lock()
	delete(m.items, key)
	m.mu.Unlock()
	return nil
}

// Len reports the number of stored keys.
func (m *Memory) Len() int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return len(m.items)
}
