package repository

import (
	"context"
	"sync"
)

// MemoryStore keeps all hashes in process memory. It backs tests and the
// "memory" store backend.
type MemoryStore struct {
	mu     sync.Mutex
	hashes map[string]map[string]string
}

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{hashes: make(map[string]map[string]string)}
}

func (s *MemoryStore) HGetAll(ctx context.Context, key string) (map[string]string, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.copyOf(key), nil
}

func (s *MemoryStore) HSet(ctx context.Context, key string, values map[string]string) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.set(key, values)
	return nil
}

func (s *MemoryStore) Atomic(ctx context.Context, keys []string, fn func(tx Tx) error) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	s.mu.Lock()
	defer s.mu.Unlock()

	tx := &memoryTx{store: s, writes: newPendingWrites()}
	if err := fn(tx); err != nil {
		return err
	}
	for _, key := range tx.writes.keys {
		s.set(key, tx.writes.values[key])
	}
	return nil
}

func (s *MemoryStore) Ping(ctx context.Context) error {
	return ctx.Err()
}

func (s *MemoryStore) Close() error {
	return nil
}

// copyOf and set expect s.mu to be held.
func (s *MemoryStore) copyOf(key string) map[string]string {
	stored := s.hashes[key]
	out := make(map[string]string, len(stored))
	for f, v := range stored {
		out[f] = v
	}
	return out
}

func (s *MemoryStore) set(key string, values map[string]string) {
	fields, ok := s.hashes[key]
	if !ok {
		fields = make(map[string]string, len(values))
		s.hashes[key] = fields
	}
	for f, v := range values {
		fields[f] = v
	}
}

type memoryTx struct {
	store  *MemoryStore
	writes *pendingWrites
}

func (t *memoryTx) HGetAll(key string) (map[string]string, error) {
	return t.writes.overlay(key, t.store.copyOf(key)), nil
}

func (t *memoryTx) HSet(key string, values map[string]string) {
	t.writes.add(key, values)
}
