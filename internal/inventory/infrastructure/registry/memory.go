package registry

import (
	"context"
	"sync"
	"time"
)

type entry struct {
	roomID    int64
	expiresAt time.Time
}

// Memory is the process-local lock registry. Entries expire after ttl
// (a non-positive ttl disables expiry); Sweep drops expired entries and
// is meant to run on a ticker.
type Memory struct {
	ttl     time.Duration
	mu      sync.Mutex
	entries map[string]entry
	now     func() time.Time
}

func NewMemory(ttl time.Duration) *Memory {
	return &Memory{
		ttl:     ttl,
		entries: make(map[string]entry),
		now:     time.Now,
	}
}

func (m *Memory) Contains(_ context.Context, correlationID string) (bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	e, ok := m.entries[correlationID]
	if !ok {
		return false, nil
	}
	if m.expired(e) {
		delete(m.entries, correlationID)
		return false, nil
	}
	return true, nil
}

func (m *Memory) PutIfAbsent(_ context.Context, correlationID string, roomID int64) (bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if e, ok := m.entries[correlationID]; ok && !m.expired(e) {
		return false, nil
	}
	var expiresAt time.Time
	if m.ttl > 0 {
		expiresAt = m.now().Add(m.ttl)
	}
	m.entries[correlationID] = entry{roomID: roomID, expiresAt: expiresAt}
	return true, nil
}

func (m *Memory) Delete(_ context.Context, correlationID string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.entries, correlationID)
	return nil
}

// Sweep removes expired entries and reports how many were dropped.
func (m *Memory) Sweep() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	dropped := 0
	for cid, e := range m.entries {
		if m.expired(e) {
			delete(m.entries, cid)
			dropped++
		}
	}
	return dropped
}

func (m *Memory) expired(e entry) bool {
	return !e.expiresAt.IsZero() && m.now().After(e.expiresAt)
}
