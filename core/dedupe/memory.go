package dedupe

import (
	"context"
	"sync"
	"time"
)

const pruneEvery = 256

// Memory keeps claimed keys in process memory. It forgets everything on restart.
type Memory struct {
	ttl time.Duration
	now func() time.Time

	mu     sync.Mutex
	seen   map[string]time.Time
	claims int
	closed bool
}

// NewMemory returns an empty in-memory store.
func NewMemory(ttl time.Duration) *Memory {
	return &Memory{ttl: ttl, now: time.Now, seen: make(map[string]time.Time)}
}

// Claim implements Store.
func (m *Memory) Claim(_ context.Context, key string) (bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.closed {
		return false, ErrClosed
	}
	now := m.now()
	m.claims++
	if m.claims%pruneEvery == 0 {
		for k, at := range m.seen {
			if now.Sub(at) >= m.ttl {
				delete(m.seen, k)
			}
		}
	}
	if at, ok := m.seen[key]; ok && now.Sub(at) < m.ttl {
		return false, nil
	}
	m.seen[key] = now
	return true, nil
}

// Len reports how many keys are currently remembered.
func (m *Memory) Len() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.seen)
}

// Close implements Store.
func (m *Memory) Close() error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.closed = true
	m.seen = nil
	return nil
}
