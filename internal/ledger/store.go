// Package ledger owns the expense collection: validation, identity,
// canonical ordering and persistence through a storage slot.
package ledger

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"slices"
	"sync"
	"time"

	"github.com/google/uuid"

	"kakeibo/internal/core"
	"kakeibo/internal/log"
	"kakeibo/internal/storage"
)

// PersistWarning is shown to the user when a mutation could not be saved.
const PersistWarning = "データの保存に失敗しました。保存容量を確認し、不要なデータを削除してください。"

// ErrPersist matches every *PersistError via errors.Is.
var ErrPersist = errors.New("persist ledger")

// PersistError means the in-memory mutation succeeded but the write to the
// slot did not. The mutation is not rolled back.
type PersistError struct {
	Err error
}

func (e *PersistError) Error() string {
	return fmt.Sprintf("persist ledger: %v", e.Err)
}

func (e *PersistError) Unwrap() []error {
	return []error{ErrPersist, e.Err}
}

// LoadResult describes what Load found in the slot.
type LoadResult int

const (
	LoadEmpty LoadResult = iota
	LoadRestored
	LoadRecoveredCorrupt
	LoadReadFailed
)

func (r LoadResult) String() string {
	switch r {
	case LoadEmpty:
		return "empty"
	case LoadRestored:
		return "restored"
	case LoadRecoveredCorrupt:
		return "recovered_corrupt"
	case LoadReadFailed:
		return "read_failed"
	default:
		return "unknown"
	}
}

// Store holds the ledger in canonical order: CreatedAt descending.
type Store struct {
	mu          sync.RWMutex
	slot        storage.Slot
	records     []core.Expense
	revision    uint64
	lastCreated int64

	now    func() time.Time
	newID  func() string
	logger *log.Logger
}

// Option configures a Store.
type Option func(*Store)

// WithClock sets the source of "now" used for validation and CreatedAt.
func WithClock(now func() time.Time) Option {
	return func(s *Store) { s.now = now }
}

// WithIDGenerator replaces the UUID generator.
func WithIDGenerator(newID func() string) Option {
	return func(s *Store) { s.newID = newID }
}

func WithLogger(logger *log.Logger) Option {
	return func(s *Store) { s.logger = logger.WithComponent(log.ComponentLedger) }
}

// NewStore returns an empty store backed by slot. Call Load to restore.
func NewStore(slot storage.Slot, opts ...Option) *Store {
	s := &Store{
		slot:   slot,
		now:    time.Now,
		newID:  uuid.NewString,
		logger: log.Discard(),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Load replaces the in-memory ledger with the slot contents. It never fails:
// a missing blob gives an empty ledger, a malformed blob is cleared and a read
// error leaves the slot untouched.
func (s *Store) Load(ctx context.Context) LoadResult {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.records = nil
	s.lastCreated = 0
	s.revision++

	data, err := s.slot.Load(ctx)
	if errors.Is(err, storage.ErrEmpty) {
		s.logger.InfoContext(ctx, "No stored ledger, starting empty")
		return LoadEmpty
	}
	if err != nil {
		s.logger.ErrorContext(ctx, "Failed to load expenses from storage", log.FieldError, err)
		return LoadReadFailed
	}

	records, err := decode(data)
	if err != nil {
		s.logger.WarnContext(ctx, "Invalid data detected, resetting expenses", log.FieldError, err)
		if cerr := s.slot.Clear(ctx); cerr != nil {
			s.logger.ErrorContext(ctx, "Failed to clear invalid data", log.FieldError, cerr)
		}
		return LoadRecoveredCorrupt
	}

	s.records = records
	for _, r := range records {
		s.lastCreated = max(s.lastCreated, r.CreatedAt)
	}
	s.logger.InfoContext(ctx, "Ledger loaded", log.FieldCount, len(records))
	return LoadRestored
}

func decode(data []byte) ([]core.Expense, error) {
	var raw []json.RawMessage
	if err := json.Unmarshal(data, &raw); err != nil {
		return nil, fmt.Errorf("not a JSON array: %w", err)
	}
	records := make([]core.Expense, 0, len(raw))
	for i, elem := range raw {
		if len(elem) == 0 || elem[0] != '{' {
			return nil, fmt.Errorf("element %d is not an object", i)
		}
		var e core.Expense
		if err := json.Unmarshal(elem, &e); err != nil {
			return nil, fmt.Errorf("element %d: %w", i, err)
		}
		records = append(records, e)
	}
	return records, nil
}

// Insert validates c, appends it and persists the ledger. On a
// *ValidationError nothing changes. On a *PersistError the record is kept in
// memory and returned.
func (s *Store) Insert(ctx context.Context, c Candidate) (core.Expense, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	now := s.now()
	v, err := validate(c, now)
	if err != nil {
		return core.Expense{}, err
	}

	createdAt := now.UnixMilli()
	if createdAt <= s.lastCreated {
		createdAt = s.lastCreated + 1
	}
	s.lastCreated = createdAt

	e := core.Expense{
		ID:        s.newID(),
		Date:      v.date.String(),
		Amount:    v.amount,
		Category:  v.category,
		Memo:      v.memo,
		CreatedAt: createdAt,
	}
	s.records = append(s.records, e)
	slices.SortStableFunc(s.records, func(a, b core.Expense) int {
		switch {
		case a.CreatedAt > b.CreatedAt:
			return -1
		case a.CreatedAt < b.CreatedAt:
			return 1
		default:
			return 0
		}
	})
	s.revision++

	return e, s.persist(ctx)
}

// Delete removes the record with id. Deleting an unknown id is a no-op and
// does not touch the slot.
func (s *Store) Delete(ctx context.Context, id string) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	idx := slices.IndexFunc(s.records, func(e core.Expense) bool { return e.ID == id })
	if idx < 0 {
		return false, nil
	}
	s.records = slices.Delete(s.records, idx, idx+1)
	s.revision++

	return true, s.persist(ctx)
}

// persist must be called with mu held.
func (s *Store) persist(ctx context.Context) error {
	records := s.records
	if records == nil {
		records = []core.Expense{}
	}
	data, err := json.Marshal(records)
	if err != nil {
		return &PersistError{Err: err}
	}
	if err := s.slot.Save(ctx, data); err != nil {
		s.logger.ErrorContext(ctx, "Failed to save expenses", log.FieldError, err, log.FieldCount, len(records))
		return &PersistError{Err: err}
	}
	return nil
}

// Snapshot returns a copy of the ledger in canonical order.
func (s *Store) Snapshot() []core.Expense {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return slices.Clone(s.records)
}

// VersionedSnapshot returns a copy together with the revision it belongs to.
func (s *Store) VersionedSnapshot() ([]core.Expense, uint64) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return slices.Clone(s.records), s.revision
}

// Len returns the number of records.
func (s *Store) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.records)
}

// Revision changes after every Load, Insert and successful Delete.
func (s *Store) Revision() uint64 {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.revision
}

// Now returns the store's notion of the current time.
func (s *Store) Now() time.Time {
	return s.now()
}
