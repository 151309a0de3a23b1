package storage

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"

	_ "modernc.org/sqlite"
)

const (
	sqliteSelectSlot = `SELECT payload FROM kv_slots WHERE slot_key = ?`
	sqliteUpsertSlot = `INSERT INTO kv_slots (slot_key, payload, updated_at)
VALUES (?, ?, CURRENT_TIMESTAMP)
ON CONFLICT(slot_key) DO UPDATE SET payload = excluded.payload, updated_at = CURRENT_TIMESTAMP`
	sqliteDeleteSlot = `DELETE FROM kv_slots WHERE slot_key = ?`
)

// SQLiteSlot keeps the ledger blob in a row of a local SQLite database.
type SQLiteSlot struct {
	db  *sql.DB
	key string
}

func NewSQLiteSlot(dbPath, key string) (*SQLiteSlot, error) {
	if err := os.MkdirAll(filepath.Dir(dbPath), 0755); err != nil {
		return nil, fmt.Errorf("create db directory: %w", err)
	}

	db, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return nil, fmt.Errorf("open sqlite database: %w", err)
	}

	if err := db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("ping database: %w", err)
	}

	// Run migrations
	if err := RunMigrations(dbPath); err != nil {
		db.Close()
		return nil, fmt.Errorf("run migrations: %w", err)
	}

	if key == "" {
		key = DefaultKey
	}
	return &SQLiteSlot{db: db, key: key}, nil
}

func (r *SQLiteSlot) Close() error {
	if r.db != nil {
		return r.db.Close()
	}
	return nil
}

func (r *SQLiteSlot) Load(ctx context.Context) ([]byte, error) {
	var payload string
	err := r.db.QueryRowContext(ctx, sqliteSelectSlot, r.key).Scan(&payload)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrEmpty
	}
	if err != nil {
		return nil, fmt.Errorf("select slot %s: %w", r.key, err)
	}
	return []byte(payload), nil
}

func (r *SQLiteSlot) Save(ctx context.Context, data []byte) error {
	if _, err := r.db.ExecContext(ctx, sqliteUpsertSlot, r.key, string(data)); err != nil {
		return fmt.Errorf("upsert slot %s: %w", r.key, err)
	}
	slog.DebugContext(ctx, "Ledger saved to SQLite", "key", r.key, "bytes", len(data))
	return nil
}

func (r *SQLiteSlot) Clear(ctx context.Context) error {
	if _, err := r.db.ExecContext(ctx, sqliteDeleteSlot, r.key); err != nil {
		return fmt.Errorf("delete slot %s: %w", r.key, err)
	}
	slog.InfoContext(ctx, "SQLite slot cleared", "key", r.key)
	return nil
}
