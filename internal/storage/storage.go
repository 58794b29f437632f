// ABOUTME: Key-value storage port used for credentials, drafts and transient flags
// ABOUTME: Provides an in-memory implementation for process-scoped state and tests

package storage

import "sync"

// Well-known keys
const (
	KeyToken           = "token"
	KeyUser            = "user"
	KeyAuthRedirecting = "auth_redirecting"
	KeyDrafts          = "post_drafts"
)

// Store is a string key-value store
type Store interface {
	Get(key string) (value string, ok bool, err error)
	Set(key, value string) error
	Remove(keys ...string) error
}

// Memory is a process-scoped Store
type Memory struct {
	mu   sync.RWMutex
	data map[string]string
}

// NewMemory creates an empty in-memory store
func NewMemory() *Memory {
	return &Memory{data: make(map[string]string)}
}

// Get implements Store
func (m *Memory) Get(key string) (string, bool, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	v, ok := m.data[key]
	return v, ok, nil
}

// Set implements Store
func (m *Memory) Set(key, value string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.data[key] = value
	return nil
}

// Remove implements Store
func (m *Memory) Remove(keys ...string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, k := range keys {
		delete(m.data, k)
	}
	return nil
}

// SetIfAbsent stores value only when key is unset and reports whether it did.
// The check and the write happen under one lock.
func (m *Memory) SetIfAbsent(key, value string) bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.data[key]; ok {
		return false
	}
	m.data[key] = value
	return true
}
