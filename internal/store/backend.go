package store

import (
	"context"
	"sync"
)

// Backend persists the encoded collection as one unit.
type Backend interface {
	// Load returns the last saved payload, or ErrNoPayload if nothing was saved.
	Load(ctx context.Context) ([]byte, error)

	// Save replaces the persisted payload. Implementations must not leave a
	// partially written payload behind on failure.
	Save(ctx context.Context, payload []byte) error
}

// MemoryBackend keeps the payload in process memory. It is used in tests and
// when the store driver is "memory".
type MemoryBackend struct {
	mu      sync.Mutex
	payload []byte
	saves   int
}

// NewMemoryBackend creates a MemoryBackend, optionally seeded with a payload.
func NewMemoryBackend(seed []byte) *MemoryBackend {
	b := &MemoryBackend{}
	if seed != nil {
		b.payload = append([]byte(nil), seed...)
	}
	return b
}

var _ Backend = (*MemoryBackend)(nil)

// Load implements Backend.Load
func (b *MemoryBackend) Load(ctx context.Context) ([]byte, error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	if b.payload == nil {
		return nil, ErrNoPayload
	}
	return append([]byte(nil), b.payload...), nil
}

// Save implements Backend.Save
func (b *MemoryBackend) Save(ctx context.Context, payload []byte) error {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.payload = append([]byte(nil), payload...)
	b.saves++
	return nil
}

// Saves returns how many times Save has been called.
func (b *MemoryBackend) Saves() int {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.saves
}
