package ledger

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"kakeibo/internal/core"
	"kakeibo/internal/storage"
)

var jst = time.FixedZone("JST", 9*60*60)

// fixedNow is Saturday 2026-10-17 09:30 JST.
func fixedNow() time.Time {
	return time.Date(2026, time.October, 17, 9, 30, 0, 0, jst)
}

func sequentialIDs() func() string {
	n := 0
	return func() string {
		n++
		return fmt.Sprintf("id-%d", n)
	}
}

func newTestStore(slot storage.Slot) *Store {
	return NewStore(slot, WithClock(fixedNow), WithIDGenerator(sequentialIDs()))
}

type failingSlot struct {
	loadErr, saveErr error
	cleared          bool
}

func (f *failingSlot) Load(context.Context) ([]byte, error) { return nil, f.loadErr }
func (f *failingSlot) Save(context.Context, []byte) error   { return f.saveErr }
func (f *failingSlot) Clear(context.Context) error {
	f.cleared = true
	return nil
}

func TestValidateOrder(t *testing.T) {
	today := fixedNow()
	valid := Candidate{Date: "2026-10-17", Amount: "1500", Category: "食費", Memo: "lunch"}

	cases := []struct {
		name   string
		mutate func(*Candidate)
		reason Reason
	}{
		{"missing date", func(c *Candidate) { c.Date = "" }, ReasonDateMissing},
		{"missing date wins over bad amount", func(c *Candidate) { c.Date = ""; c.Amount = "x" }, ReasonDateMissing},
		{"impossible date", func(c *Candidate) { c.Date = "2025-02-30" }, ReasonDateInvalid},
		{"garbage date", func(c *Candidate) { c.Date = "yesterday" }, ReasonDateInvalid},
		{"tomorrow", func(c *Candidate) { c.Date = "2026-10-18" }, ReasonDateFuture},
		{"fractional amount", func(c *Candidate) { c.Amount = "12.5" }, ReasonAmountNotInteger},
		{"zero amount", func(c *Candidate) { c.Amount = "0" }, ReasonAmountOutOfRange},
		{"blank amount", func(c *Candidate) { c.Amount = "" }, ReasonAmountOutOfRange},
		{"too large", func(c *Candidate) { c.Amount = "10000000" }, ReasonAmountOutOfRange},
		{"missing category", func(c *Candidate) { c.Category = " " }, ReasonCategoryMissing},
		{"unknown category", func(c *Candidate) { c.Category = "旅行" }, ReasonCategoryUnknown},
		{"long memo", func(c *Candidate) { c.Memo = strings.Repeat("あ", 101) }, ReasonMemoTooLong},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			c := valid
			tc.mutate(&c)
			err := Validate(c, today)
			require.Error(t, err)
			assert.ErrorIs(t, err, ErrValidation)

			var verr *ValidationError
			require.ErrorAs(t, err, &verr)
			assert.Equal(t, tc.reason, verr.Reason)
			assert.NotEmpty(t, verr.Message)
		})
	}

	require.NoError(t, Validate(valid, today))
}

func TestValidateMemoBoundary(t *testing.T) {
	c := Candidate{Date: "2026-10-01", Amount: "1", Category: "その他", Memo: "  " + strings.Repeat("字", 100) + "  "}
	assert.NoError(t, Validate(c, fixedNow()))
}

func TestValidateSuggestsCategory(t *testing.T) {
	err := Validate(Candidate{Date: "2026-10-01", Amount: "100", Category: "fod"}, fixedNow())

	var verr *ValidationError
	require.ErrorAs(t, err, &verr)
	assert.Equal(t, ReasonCategoryUnknown, verr.Reason)
	assert.Equal(t, core.CategoryFood, verr.Suggestion)
	assert.Contains(t, verr.Error(), "食費")
}

func TestInsertAssignsIdentityAndOrder(t *testing.T) {
	ctx := context.Background()
	store := newTestStore(storage.NewMemorySlot(0))

	first, err := store.Insert(ctx, Candidate{Date: "2026-10-17", Amount: "1500", Category: "食費", Memo: "  ランチ "})
	require.NoError(t, err)
	second, err := store.Insert(ctx, Candidate{Date: "2026-10-10", Amount: "300", Category: "transport"})
	require.NoError(t, err)

	assert.Equal(t, "id-1", first.ID)
	assert.Equal(t, "ランチ", first.Memo)
	assert.Equal(t, core.Amount(1500), first.Amount)
	assert.Equal(t, core.CategoryTransport, second.Category, "aliases resolve to labels")
	assert.Greater(t, second.CreatedAt, first.CreatedAt, "createdAt strictly increases under a frozen clock")

	snap := store.Snapshot()
	require.Len(t, snap, 2)
	assert.Equal(t, second.ID, snap[0].ID, "newest first")
	assert.Equal(t, first.ID, snap[1].ID)
}

func TestInsertRejectedLeavesLedgerUnchanged(t *testing.T) {
	ctx := context.Background()
	slot := storage.NewMemorySlot(0)
	store := newTestStore(slot)
	_, err := store.Insert(ctx, Candidate{Date: "2026-10-17", Amount: "1500", Category: "食費"})
	require.NoError(t, err)
	before, err := slot.Load(ctx)
	require.NoError(t, err)
	rev := store.Revision()

	_, err = store.Insert(ctx, Candidate{Date: "2026-10-17", Amount: "0", Category: "食費"})
	require.ErrorIs(t, err, ErrValidation)

	assert.Equal(t, 1, store.Len())
	assert.Equal(t, rev, store.Revision())
	after, err := slot.Load(ctx)
	require.NoError(t, err)
	assert.Equal(t, before, after)
}

func TestPersistReloadRoundTrip(t *testing.T) {
	ctx := context.Background()
	slot := storage.NewMemorySlot(0)
	store := newTestStore(slot)
	for _, c := range []Candidate{
		{Date: "2026-10-17", Amount: "1500", Category: "食費"},
		{Date: "2026-09-30", Amount: "8000", Category: "光熱費", Memo: "電気"},
		{Date: "2026-10-01", Amount: "2500", Category: "通信費"},
	} {
		_, err := store.Insert(ctx, c)
		require.NoError(t, err)
	}

	reloaded := newTestStore(slot)
	assert.Equal(t, LoadRestored, reloaded.Load(ctx))
	assert.Equal(t, store.Snapshot(), reloaded.Snapshot())

	raw, err := slot.Load(ctx)
	require.NoError(t, err)
	var wire []map[string]any
	require.NoError(t, json.Unmarshal(raw, &wire))
	require.Len(t, wire, 3)
	assert.ElementsMatch(t, []string{"id", "date", "amount", "category", "memo", "createdAt"}, keys(wire[0]))
}

func keys(m map[string]any) []string {
	out := make([]string, 0, len(m))
	for k := range m {
		out = append(out, k)
	}
	return out
}

func TestReloadContinuesCreatedAtSequence(t *testing.T) {
	ctx := context.Background()
	slot := storage.NewMemorySlotWith([]byte(`[{"id":"old","date":"2026-10-01","amount":100,"category":"食費","memo":"","createdAt":9999999999999}]`))
	store := newTestStore(slot)
	require.Equal(t, LoadRestored, store.Load(ctx))

	e, err := store.Insert(ctx, Candidate{Date: "2026-10-17", Amount: "1", Category: "教育"})
	require.NoError(t, err)
	assert.Equal(t, int64(9999999999999+1), e.CreatedAt)
	assert.Equal(t, e.ID, store.Snapshot()[0].ID)
}

func TestLoadOutcomes(t *testing.T) {
	ctx := context.Background()

	t.Run("absent", func(t *testing.T) {
		store := newTestStore(storage.NewMemorySlot(0))
		assert.Equal(t, LoadEmpty, store.Load(ctx))
		assert.Zero(t, store.Len())
	})

	for name, blob := range map[string]string{
		"object":         `{"expenses":[]}`,
		"not json":       `[{`,
		"scalar element": `[1,2]`,
		"string":         `"hello"`,
	} {
		t.Run("corrupt "+name, func(t *testing.T) {
			slot := storage.NewMemorySlotWith([]byte(blob))
			store := newTestStore(slot)
			assert.Equal(t, LoadRecoveredCorrupt, store.Load(ctx))
			assert.Zero(t, store.Len())
			_, err := slot.Load(ctx)
			assert.ErrorIs(t, err, storage.ErrEmpty, "corrupt blob is cleared")
		})
	}

	t.Run("read failure", func(t *testing.T) {
		slot := &failingSlot{loadErr: errors.New("disk on fire")}
		store := newTestStore(slot)
		assert.Equal(t, LoadReadFailed, store.Load(ctx))
		assert.Zero(t, store.Len())
		assert.False(t, slot.cleared)
	})

	t.Run("tolerant amounts", func(t *testing.T) {
		slot := storage.NewMemorySlotWith([]byte(`[{"id":"a","date":"2026-10-01","amount":"1200","category":"食費","createdAt":1}]`))
		store := newTestStore(slot)
		require.Equal(t, LoadRestored, store.Load(ctx))
		assert.Equal(t, core.Amount(1200), store.Snapshot()[0].Amount)
	})
}

func TestPersistFailureKeepsMutation(t *testing.T) {
	ctx := context.Background()
	slot := &failingSlot{saveErr: storage.ErrQuotaExceeded}
	store := newTestStore(slot)

	e, err := store.Insert(ctx, Candidate{Date: "2026-10-17", Amount: "1500", Category: "食費"})
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrPersist)
	assert.ErrorIs(t, err, storage.ErrQuotaExceeded)
	assert.NotEmpty(t, e.ID)
	assert.Equal(t, 1, store.Len())

	removed, err := store.Delete(ctx, e.ID)
	assert.True(t, removed)
	var perr *PersistError
	assert.ErrorAs(t, err, &perr)
	assert.Zero(t, store.Len())
}

func TestDelete(t *testing.T) {
	ctx := context.Background()
	slot := storage.NewMemorySlot(0)
	store := newTestStore(slot)
	a, err := store.Insert(ctx, Candidate{Date: "2026-10-17", Amount: "100", Category: "食費"})
	require.NoError(t, err)
	b, err := store.Insert(ctx, Candidate{Date: "2026-10-16", Amount: "200", Category: "娯楽"})
	require.NoError(t, err)

	removed, err := store.Delete(ctx, "missing")
	require.NoError(t, err)
	assert.False(t, removed)
	assert.Equal(t, 2, store.Len())

	removed, err = store.Delete(ctx, a.ID)
	require.NoError(t, err)
	assert.True(t, removed)

	reloaded := newTestStore(slot)
	reloaded.Load(ctx)
	snap := reloaded.Snapshot()
	require.Len(t, snap, 1)
	assert.Equal(t, b.ID, snap[0].ID)

	removed, err = store.Delete(ctx, b.ID)
	require.NoError(t, err)
	assert.True(t, removed)
	raw, err := slot.Load(ctx)
	require.NoError(t, err)
	assert.Equal(t, "[]", string(raw))
}

func TestSnapshotIsACopy(t *testing.T) {
	store := newTestStore(storage.NewMemorySlot(0))
	_, err := store.Insert(context.Background(), Candidate{Date: "2026-10-17", Amount: "100", Category: "食費"})
	require.NoError(t, err)

	snap := store.Snapshot()
	snap[0].Amount = 999
	assert.Equal(t, core.Amount(100), store.Snapshot()[0].Amount)
}
