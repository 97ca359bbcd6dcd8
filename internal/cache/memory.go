package cache

import (
	"context"
	"sync"
	"time"
)

const memoryMaxEntries = 500

type memoryEntry struct {
	value     []byte
	expiresAt time.Time
}

// Memory is a process-local cache. It is reset wholesale once it grows past its entry cap.
type Memory struct {
	mu      sync.Mutex
	entries map[string]memoryEntry
	now     func() time.Time
}

func NewMemory() *Memory {
	return &Memory{entries: map[string]memoryEntry{}, now: time.Now}
}

func (m *Memory) Get(_ context.Context, key string) ([]byte, bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	entry, ok := m.entries[key]
	if !ok {
		return nil, false, nil
	}
	if m.now().After(entry.expiresAt) {
		delete(m.entries, key)
		return nil, false, nil
	}
	return entry.value, true, nil
}

func (m *Memory) Set(_ context.Context, key string, value []byte, ttl time.Duration) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.entries[key] = memoryEntry{value: value, expiresAt: m.now().Add(ttl)}
	if len(m.entries) > memoryMaxEntries {
		m.entries = map[string]memoryEntry{}
	}
	return nil
}
