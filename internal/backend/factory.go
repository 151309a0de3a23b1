package backend

import (
	"context"
	"errors"
	"fmt"
	"io"

	"kakeibo/internal/amqp"
	"kakeibo/internal/cloudsync"
	"kakeibo/internal/log"
	"kakeibo/internal/storage"
)

// DefaultFactory implements the Factory interface
type DefaultFactory struct {
	logger *log.Logger
}

// NewFactory creates a new backend factory
func NewFactory(logger *log.Logger) Factory {
	if logger == nil {
		logger = log.Discard()
	}
	return &DefaultFactory{
		logger: logger.WithComponent(log.ComponentBackend),
	}
}

// CreateBackend implements Factory.CreateBackend
func (f *DefaultFactory) CreateBackend(ctx context.Context, config Config) (*BackendResult, error) {
	if err := config.Validate(); err != nil {
		return nil, err
	}

	slot, err := f.createSlot(ctx, config)
	if err != nil {
		return nil, err
	}

	publisher, closer, err := f.createPublisher(config)
	if err != nil {
		closeQuietly(slot)
		return nil, err
	}

	f.logger.InfoContext(ctx, "Backend ready",
		log.FieldBackend, config.Storage.String(), "sync", config.Sync.String(), "sync_enabled", publisher != nil)

	return &BackendResult{
		Slot:      slot,
		Publisher: publisher,
		Cleanup: func() error {
			var errs []error
			if closer != nil {
				errs = append(errs, closer.Close())
			}
			if c, ok := slot.(io.Closer); ok {
				errs = append(errs, c.Close())
			}
			return errors.Join(errs...)
		},
	}, nil
}

func (f *DefaultFactory) createSlot(ctx context.Context, config Config) (storage.Slot, error) {
	switch config.Storage {
	case MemoryStorage:
		f.logger.Warn("Using in-memory storage, the ledger is lost on exit")
		return storage.NewMemorySlot(0), nil
	case FileStorage:
		slot, err := storage.NewFileSlot(config.LedgerFilePath)
		if err != nil {
			return nil, fmt.Errorf("failed to initialize file storage: %w", err)
		}
		return slot, nil
	case SQLiteStorage:
		slot, err := storage.NewSQLiteSlot(config.SQLiteDBPath, config.StorageKey)
		if err != nil {
			return nil, fmt.Errorf("failed to initialize SQLite storage: %w", err)
		}
		return slot, nil
	case PostgresStorage:
		slot, err := storage.NewPostgresSlot(ctx, config.PostgresDSN, config.StorageKey)
		if err != nil {
			return nil, fmt.Errorf("failed to initialize PostgreSQL storage: %w", err)
		}
		return slot, nil
	default:
		return nil, fmt.Errorf("unsupported storage type: %s", config.Storage)
	}
}

// createPublisher returns a nil publisher when sync is disabled. An HTTP
// transport without an endpoint counts as disabled.
func (f *DefaultFactory) createPublisher(config Config) (cloudsync.Publisher, io.Closer, error) {
	switch config.Sync {
	case NoSync:
		return nil, nil, nil
	case HTTPSync:
		if config.SyncEndpoint == "" {
			f.logger.Info("No sync endpoint configured, remote sync disabled")
			return nil, nil, nil
		}
		return cloudsync.NewHTTPPublisher(config.SyncEndpoint, config.SyncTimeout), nil, nil
	case AMQPSync:
		client, err := amqp.NewClient(config.AMQPURL, config.AMQPExchange, config.AMQPQueue)
		if err != nil {
			return nil, nil, fmt.Errorf("failed to initialize AMQP client: %w", err)
		}
		return cloudsync.NewAMQPPublisher(client), client, nil
	default:
		return nil, nil, fmt.Errorf("unsupported sync type: %s", config.Sync)
	}
}

func closeQuietly(slot storage.Slot) {
	if c, ok := slot.(io.Closer); ok {
		_ = c.Close()
	}
}
