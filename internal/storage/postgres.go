package storage

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"

	_ "github.com/lib/pq"
)

const (
	pgSelectSlot = `SELECT payload FROM kv_slots WHERE slot_key = $1`
	pgUpsertSlot = `INSERT INTO kv_slots (slot_key, payload, updated_at)
VALUES ($1, $2, now())
ON CONFLICT (slot_key) DO UPDATE SET payload = EXCLUDED.payload, updated_at = now()`
	pgDeleteSlot = `DELETE FROM kv_slots WHERE slot_key = $1`
)

// PostgresSlot keeps the ledger blob in a row of a PostgreSQL table.
type PostgresSlot struct {
	db  *sql.DB
	key string
}

func NewPostgresSlot(ctx context.Context, dsn, key string) (*PostgresSlot, error) {
	db, err := sql.Open("postgres", dsn)
	if err != nil {
		return nil, fmt.Errorf("open postgres database: %w", err)
	}
	if err := db.PingContext(ctx); err != nil {
		db.Close()
		return nil, fmt.Errorf("ping database: %w", err)
	}
	if err := RunPostgresMigrations(dsn); err != nil {
		db.Close()
		return nil, fmt.Errorf("run migrations: %w", err)
	}
	if key == "" {
		key = DefaultKey
	}
	return &PostgresSlot{db: db, key: key}, nil
}

func (r *PostgresSlot) Close() error {
	if r.db != nil {
		return r.db.Close()
	}
	return nil
}

func (r *PostgresSlot) Load(ctx context.Context) ([]byte, error) {
	var payload string
	err := r.db.QueryRowContext(ctx, pgSelectSlot, r.key).Scan(&payload)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrEmpty
	}
	if err != nil {
		return nil, fmt.Errorf("select slot %s: %w", r.key, err)
	}
	return []byte(payload), nil
}

func (r *PostgresSlot) Save(ctx context.Context, data []byte) error {
	if _, err := r.db.ExecContext(ctx, pgUpsertSlot, r.key, string(data)); err != nil {
		return fmt.Errorf("upsert slot %s: %w", r.key, err)
	}
	slog.DebugContext(ctx, "Ledger saved to PostgreSQL", "key", r.key, "bytes", len(data))
	return nil
}

func (r *PostgresSlot) Clear(ctx context.Context) error {
	if _, err := r.db.ExecContext(ctx, pgDeleteSlot, r.key); err != nil {
		return fmt.Errorf("delete slot %s: %w", r.key, err)
	}
	slog.InfoContext(ctx, "PostgreSQL slot cleared", "key", r.key)
	return nil
}
