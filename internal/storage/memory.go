package storage

import (
	"context"
	"fmt"
	"sync"
)

// MemorySlot keeps the blob in process memory. A positive quota makes Save
// fail with ErrQuotaExceeded for larger payloads, like a browser store would.
type MemorySlot struct {
	mu    sync.Mutex
	data  []byte
	set   bool
	quota int
}

// NewMemorySlot creates an empty slot. quota <= 0 means unlimited.
func NewMemorySlot(quota int) *MemorySlot {
	return &MemorySlot{quota: quota}
}

// NewMemorySlotWith creates a slot that already holds data.
func NewMemorySlotWith(data []byte) *MemorySlot {
	return &MemorySlot{data: append([]byte(nil), data...), set: true}
}

func (s *MemorySlot) Load(_ context.Context) ([]byte, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if !s.set {
		return nil, ErrEmpty
	}
	return append([]byte(nil), s.data...), nil
}

func (s *MemorySlot) Save(_ context.Context, data []byte) error {
	if s.quota > 0 && len(data) > s.quota {
		return fmt.Errorf("save %d bytes (quota %d): %w", len(data), s.quota, ErrQuotaExceeded)
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.data = append([]byte(nil), data...)
	s.set = true
	return nil
}

func (s *MemorySlot) Clear(_ context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.data = nil
	s.set = false
	return nil
}

// Close implements io.Closer for symmetry with the SQL backends.
func (s *MemorySlot) Close() error { return nil }
