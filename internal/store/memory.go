package store

import (
	"sort"
	"sync"
	"time"

	"github.com/dyscolab/symbolite/internal/expr"
)

// Memory is an in-memory store for testing and one-off sessions.
type Memory struct {
	mu       sync.RWMutex
	versions map[string][]VersionEntry // oldest first
	metadata map[string]string
	now      func() time.Time
}

// NewMemory creates a new in-memory store.
func NewMemory() *Memory {
	return &Memory{
		versions: make(map[string][]VersionEntry),
		metadata: make(map[string]string),
		now:      time.Now,
	}
}

// Get retrieves the latest version of a namespace.
func (m *Memory) Get(name string) (*expr.Namespace, error) {
	m.mu.RLock()
	vs := m.versions[name]
	m.mu.RUnlock()
	if len(vs) == 0 {
		return nil, nil
	}
	return vs[len(vs)-1].Namespace()
}

// Put stores a namespace by name.
func (m *Memory) Put(name string, ns *expr.Namespace) error {
	doc, hash, err := Encode(ns)
	if err != nil {
		return err
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	vs := m.versions[name]
	if len(vs) > 0 && vs[len(vs)-1].Hash == hash {
		return nil
	}
	m.versions[name] = append(vs, VersionEntry{
		Version: len(vs) + 1,
		Value:   doc,
		Hash:    hash,
		Ts:      m.now().UTC(),
	})
	return nil
}

// Delete removes a namespace and its history.
func (m *Memory) Delete(name string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.versions, name)
	return nil
}

// List returns the stored names in order.
func (m *Memory) List() ([]string, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	names := make([]string, 0, len(m.versions))
	for name := range m.versions {
		names = append(names, name)
	}
	sort.Strings(names)
	return names, nil
}

// GetHistory returns versions newest first.
func (m *Memory) GetHistory(name string, limit int) ([]VersionEntry, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	vs := m.versions[name]
	var out []VersionEntry
	for i := len(vs) - 1; i >= 0; i-- {
		if limit > 0 && len(out) == limit {
			break
		}
		out = append(out, vs[i])
	}
	return out, nil
}

// Close is a no-op for memory store.
func (m *Memory) Close() error {
	return nil
}

// GetMetadata retrieves a metadata value by key.
func (m *Memory) GetMetadata(key string) (string, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.metadata[key], nil
}

// SetMetadata stores a metadata value by key.
func (m *Memory) SetMetadata(key, value string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.metadata[key] = value
	return nil
}
