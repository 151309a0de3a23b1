// Package storage provides durable single-slot persistence for the ledger.
//
// A slot holds one opaque blob under one key. The ledger reads it whole at
// startup and rewrites it whole after every mutation, so backends only need
// get/set/clear semantics.
package storage

import (
	"context"
	"errors"
)

var (
	// ErrEmpty is returned by Load when nothing has been stored yet.
	ErrEmpty = errors.New("slot is empty")

	// ErrQuotaExceeded is returned by Save when the payload does not fit.
	ErrQuotaExceeded = errors.New("storage quota exceeded")
)

// DefaultKey is the slot key the ledger is stored under.
const DefaultKey = "expense-tracker-data"

// Slot is a single key-value cell.
type Slot interface {
	// Load returns the stored blob or ErrEmpty.
	Load(ctx context.Context) ([]byte, error)
	// Save replaces the stored blob.
	Save(ctx context.Context, data []byte) error
	// Clear removes the stored blob. Clearing an empty slot is not an error.
	Clear(ctx context.Context) error
}
