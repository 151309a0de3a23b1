// Package worker mirrors ledger snapshots from the sync queue into an
// external sheet.
package worker

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"sync"
	"time"

	"kakeibo/internal/amqp"
	"kakeibo/internal/core"
	"kakeibo/internal/log"
	"kakeibo/internal/sheets"
	"kakeibo/internal/storage"
)

// SyncWorker applies snapshots in publish order. A snapshot older than the
// last one applied is acknowledged and dropped.
type SyncWorker struct {
	mirror  sheets.LedgerMirror
	archive storage.Slot
	logger  *log.Logger

	mu          sync.Mutex
	lastApplied time.Time
}

// NewSyncWorker creates a worker. archive keeps the last applied snapshot so
// a restarted worker can rebuild the mirror; it may be nil.
func NewSyncWorker(mirror sheets.LedgerMirror, archive storage.Slot, logger *log.Logger) *SyncWorker {
	if logger == nil {
		logger = log.Discard()
	}
	return &SyncWorker{
		mirror:  mirror,
		archive: archive,
		logger:  logger.WithComponent(log.ComponentWorker),
	}
}

// HandleSyncMessage mirrors one snapshot. Returning an error requeues it.
func (w *SyncWorker) HandleSyncMessage(ctx context.Context, msg *amqp.LedgerSyncMessage) error {
	w.mu.Lock()
	defer w.mu.Unlock()

	if !msg.Timestamp.IsZero() && msg.Timestamp.Before(w.lastApplied) {
		w.logger.InfoContext(ctx, "Skipping stale snapshot",
			"published_at", msg.Timestamp, "last_applied", w.lastApplied)
		return nil
	}

	ref, err := w.mirror.ReplaceAll(ctx, msg.Expenses)
	if err != nil {
		return fmt.Errorf("mirror snapshot: %w", err)
	}
	w.lastApplied = msg.Timestamp

	if w.archive != nil {
		data, err := json.Marshal(msg)
		if err != nil {
			return fmt.Errorf("encode snapshot: %w", err)
		}
		if err := w.archive.Save(ctx, data); err != nil {
			w.logger.WarnContext(ctx, "Failed to archive snapshot", log.FieldError, err)
		}
	}

	w.logger.InfoContext(ctx, "Snapshot mirrored",
		"ref", ref, log.FieldCount, len(msg.Expenses), log.FieldOperation, log.OpMirror)
	return nil
}

// StartupSyncCheck replays the archived snapshot so the mirror matches the
// last known ledger even if messages were lost while the worker was down.
func (w *SyncWorker) StartupSyncCheck(ctx context.Context) error {
	if w.archive == nil {
		return nil
	}
	data, err := w.archive.Load(ctx)
	if errors.Is(err, storage.ErrEmpty) {
		w.logger.InfoContext(ctx, "No archived snapshot, waiting for messages")
		return nil
	}
	if err != nil {
		return fmt.Errorf("load archived snapshot: %w", err)
	}

	msg, err := amqp.LedgerSyncMessageFromJSON(data)
	if err != nil {
		w.logger.WarnContext(ctx, "Archived snapshot unreadable, discarding", log.FieldError, err)
		return w.archive.Clear(ctx)
	}
	return w.HandleSyncMessage(ctx, msg)
}

// LastApplied returns the publish time of the snapshot currently mirrored.
func (w *SyncWorker) LastApplied() time.Time {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.lastApplied
}

// Snapshot decodes the archived ledger, mainly for diagnostics.
func (w *SyncWorker) Snapshot(ctx context.Context) ([]core.Expense, error) {
	if w.archive == nil {
		return nil, storage.ErrEmpty
	}
	data, err := w.archive.Load(ctx)
	if err != nil {
		return nil, err
	}
	msg, err := amqp.LedgerSyncMessageFromJSON(data)
	if err != nil {
		return nil, err
	}
	return msg.Expenses, nil
}
