package positions

import (
	"context"
	"sync"

	trading "main/internal/domain/entity/trading"
	interfaces "main/internal/domain/interfaces"
)

// MemoryStore is an in-process position store with the same contract as the
// redis one: per-symbol updates are serialized by a per-entry mutex, updates
// to different symbols proceed in parallel. Used by tests and local runs.
type MemoryStore struct {
	mu      sync.RWMutex
	entries map[string]*memoryEntry
}

type memoryEntry struct {
	mu       sync.Mutex
	position trading.Position
}

var _ interfaces.PositionStore = (*MemoryStore)(nil)

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{entries: make(map[string]*memoryEntry)}
}

func (s *MemoryStore) Get(_ context.Context, symbol string) (trading.Position, error) {
	s.mu.RLock()
	entry, ok := s.entries[symbol]
	s.mu.RUnlock()
	if !ok {
		return trading.Position{}, nil
	}
	entry.mu.Lock()
	defer entry.mu.Unlock()
	return entry.position, nil
}

func (s *MemoryStore) Apply(_ context.Context, symbol string, delta trading.Delta) error {
	entry := s.entry(symbol)
	entry.mu.Lock()
	entry.position = entry.position.Apply(delta)
	entry.mu.Unlock()
	return nil
}

func (s *MemoryStore) List(_ context.Context) (map[string]trading.Position, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	snapshot := make(map[string]trading.Position, len(s.entries))
	for symbol, entry := range s.entries {
		entry.mu.Lock()
		snapshot[symbol] = entry.position
		entry.mu.Unlock()
	}
	return snapshot, nil
}

func (s *MemoryStore) entry(symbol string) *memoryEntry {
	s.mu.RLock()
	entry, ok := s.entries[symbol]
	s.mu.RUnlock()
	if ok {
		return entry
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	if entry, ok := s.entries[symbol]; ok {
		return entry
	}
	entry = &memoryEntry{}
	s.entries[symbol] = entry
	return entry
}
