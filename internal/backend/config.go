package backend

import (
	"fmt"

	"kakeibo/internal/config"
)

// FromAppConfig converts the application config to backend config
func FromAppConfig(appConfig *config.Config) (Config, error) {
	if appConfig == nil {
		return Config{}, fmt.Errorf("app config is nil")
	}

	cfg := Config{
		Storage:        StorageType(appConfig.StorageBackend),
		StorageKey:     appConfig.StorageKey,
		LedgerFilePath: appConfig.LedgerFilePath,
		SQLiteDBPath:   appConfig.SQLiteDBPath,
		PostgresDSN:    appConfig.PostgresDSN,

		Sync:         SyncType(appConfig.SyncBackend),
		SyncEndpoint: appConfig.SyncEndpoint,
		SyncTimeout:  appConfig.SyncTimeout,
		AMQPURL:      appConfig.AMQPURL,
		AMQPExchange: appConfig.AMQPExchange,
		AMQPQueue:    appConfig.AMQPQueue,
	}
	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

// Validate validates the backend configuration
func (c Config) Validate() error {
	if !c.Storage.IsValid() {
		return fmt.Errorf("invalid storage type: %s", c.Storage)
	}
	if !c.Sync.IsValid() {
		return fmt.Errorf("invalid sync type: %s", c.Sync)
	}

	switch c.Storage {
	case FileStorage:
		if c.LedgerFilePath == "" {
			return fmt.Errorf("ledger file path is required for file storage")
		}
	case SQLiteStorage:
		if c.SQLiteDBPath == "" {
			return fmt.Errorf("SQLite database path is required for sqlite storage")
		}
	case PostgresStorage:
		if c.PostgresDSN == "" {
			return fmt.Errorf("PostgreSQL DSN is required for postgres storage")
		}
	case MemoryStorage:
		// nothing to check
	}

	if c.Sync == AMQPSync && c.AMQPURL == "" {
		return fmt.Errorf("AMQP URL is required for amqp sync")
	}
	return nil
}
