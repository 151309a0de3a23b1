// Package backend builds the ledger slot and the sync publisher selected by
// configuration.
package backend

import (
	"context"
	"time"

	"kakeibo/internal/cloudsync"
	"kakeibo/internal/storage"
)

// CleanupFunc represents a cleanup function for resources
type CleanupFunc func() error

// BackendResult holds what the factory built. Publisher is nil when sync is
// disabled.
type BackendResult struct {
	Slot      storage.Slot
	Publisher cloudsync.Publisher
	Cleanup   CleanupFunc
}

// Factory creates backends based on configuration
type Factory interface {
	CreateBackend(ctx context.Context, config Config) (*BackendResult, error)
}

// Config holds configuration for backend creation
type Config struct {
	Storage        StorageType
	StorageKey     string
	LedgerFilePath string
	SQLiteDBPath   string
	PostgresDSN    string

	Sync         SyncType
	SyncEndpoint string
	SyncTimeout  time.Duration
	AMQPURL      string
	AMQPExchange string
	AMQPQueue    string
}

// StorageType names a slot backend.
type StorageType string

const (
	MemoryStorage   StorageType = "memory"
	FileStorage     StorageType = "file"
	SQLiteStorage   StorageType = "sqlite"
	PostgresStorage StorageType = "postgres"
)

// String implements fmt.Stringer
func (t StorageType) String() string {
	return string(t)
}

// IsValid returns true if the storage type is known
func (t StorageType) IsValid() bool {
	switch t {
	case MemoryStorage, FileStorage, SQLiteStorage, PostgresStorage:
		return true
	default:
		return false
	}
}

// SyncType names a sync transport.
type SyncType string

const (
	NoSync   SyncType = "none"
	HTTPSync SyncType = "http"
	AMQPSync SyncType = "amqp"
)

// String implements fmt.Stringer
func (t SyncType) String() string {
	return string(t)
}

// IsValid returns true if the sync type is known
func (t SyncType) IsValid() bool {
	switch t {
	case NoSync, HTTPSync, AMQPSync:
		return true
	default:
		return false
	}
}
