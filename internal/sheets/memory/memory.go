// Package memory is an in-process LedgerMirror for tests and local runs.
package memory

import (
	"context"
	"fmt"
	"slices"
	"sync"

	"kakeibo/internal/core"
)

type Mirror struct {
	mu       sync.Mutex
	items    []core.Expense
	writes   int
	failNext error
}

func New() *Mirror {
	return &Mirror{}
}

// FailNext makes the next ReplaceAll return err.
func (m *Mirror) FailNext(err error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.failNext = err
}

func (m *Mirror) ReplaceAll(_ context.Context, expenses []core.Expense) (string, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if err := m.failNext; err != nil {
		m.failNext = nil
		return "", err
	}
	m.items = slices.Clone(expenses)
	m.writes++
	return fmt.Sprintf("mem:%d", len(m.items)), nil
}

// Items returns the last written snapshot.
func (m *Mirror) Items() []core.Expense {
	m.mu.Lock()
	defer m.mu.Unlock()
	return slices.Clone(m.items)
}

// Writes counts successful ReplaceAll calls.
func (m *Mirror) Writes() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.writes
}
