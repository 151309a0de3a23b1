package services

import (
	"context"
	"fmt"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"kakeibo/internal/cache"
	"kakeibo/internal/cloudsync"
	"kakeibo/internal/core"
	"kakeibo/internal/ledger"
	"kakeibo/internal/storage"
	"kakeibo/internal/view"
)

type clock struct {
	mu sync.Mutex
	t  time.Time
}

func (c *clock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.t
}

func (c *clock) Advance(d time.Duration) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.t = c.t.Add(d)
}

type capturePublisher struct {
	mu       sync.Mutex
	payloads []cloudsync.Payload
}

func (p *capturePublisher) Publish(_ context.Context, payload cloudsync.Payload) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.payloads = append(p.payloads, payload)
	return nil
}

func (p *capturePublisher) count() int {
	p.mu.Lock()
	defer p.mu.Unlock()
	return len(p.payloads)
}

func (p *capturePublisher) last() cloudsync.Payload {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.payloads[len(p.payloads)-1]
}

type fixture struct {
	tracker *Tracker
	clock   *clock
	slot    *storage.MemorySlot
	pub     *capturePublisher
	sync    *cloudsync.Dispatcher
}

func newFixture(t *testing.T, slot *storage.MemorySlot) *fixture {
	t.Helper()
	clk := &clock{t: time.Date(2026, time.October, 17, 20, 0, 0, 0, time.FixedZone("JST", 9*3600))}
	n := 0
	store := ledger.NewStore(slot,
		ledger.WithClock(clk.Now),
		ledger.WithIDGenerator(func() string { n++; return fmt.Sprintf("exp-%d", n) }),
	)
	pub := &capturePublisher{}
	dispatcher := cloudsync.NewDispatcher(pub, cloudsync.Options{SuccessClear: time.Hour, FailureClear: time.Hour})
	tracker := NewTracker(store, dispatcher, cache.NewLRUCache[*View](8, time.Minute), nil)
	t.Cleanup(tracker.Close)
	return &fixture{tracker: tracker, clock: clk, slot: slot, pub: pub, sync: dispatcher}
}

func TestInsertTodayEndToEnd(t *testing.T) {
	f := newFixture(t, storage.NewMemorySlot(0))
	ctx := context.Background()
	f.tracker.Start(ctx)

	e, err := f.tracker.AddExpense(ctx, ledger.Candidate{Date: "2026-10-17", Amount: "1500", Category: "食費", Memo: ""})
	require.NoError(t, err)
	assert.Len(t, f.tracker.Expenses(), 1)

	v := f.tracker.View(ctx, view.DefaultCriteria(), DefaultSurfaces())
	assert.Equal(t, int64(1500), v.FilteredTotal)
	assert.Equal(t, "￥1,500", v.FilteredTotalText)
	assert.Equal(t, []core.CategoryAmount{{Category: core.CategoryFood, Amount: 1500}}, v.CategoryTotals)

	require.Len(t, v.Pie.Slices, 1)
	assert.Equal(t, core.CategoryFood, v.Pie.Slices[0].Category)
	assert.Equal(t, 360.0, v.Pie.Slices[0].Sweep())

	assert.Equal(t, "2026年10月", v.Header.MonthLabel)
	assert.Equal(t, int64(1500), v.Header.MonthTotal)
	require.Len(t, v.Rows, 1)
	assert.Equal(t, e.ID, v.Rows[0].ID)
	assert.Equal(t, "2026/10/17", v.Rows[0].DisplayDate)
	assert.Equal(t, "-", v.Rows[0].DisplayMemo)
	assert.Empty(t, v.EmptyMessage)

	require.Len(t, v.Trend, 6)
	assert.Equal(t, int64(1500), v.Trend[5].Total)
	assert.False(t, v.TrendChart.Empty)
}

func TestRejectedInsertsLeaveLedgerEmpty(t *testing.T) {
	f := newFixture(t, storage.NewMemorySlot(0))
	ctx := context.Background()
	f.tracker.Start(ctx)
	f.sync.Wait()
	before := f.pub.count()

	cases := map[string]struct {
		candidate ledger.Candidate
		reason    ledger.Reason
	}{
		"zero amount": {ledger.Candidate{Date: "2026-10-17", Amount: "0", Category: "食費"}, ledger.ReasonAmountOutOfRange},
		"tomorrow":    {ledger.Candidate{Date: "2026-10-18", Amount: "1500", Category: "食費"}, ledger.ReasonDateFuture},
	}
	for name, tc := range cases {
		t.Run(name, func(t *testing.T) {
			_, err := f.tracker.AddExpense(ctx, tc.candidate)
			var verr *ledger.ValidationError
			require.ErrorAs(t, err, &verr)
			assert.Equal(t, tc.reason, verr.Reason)
			assert.Empty(t, f.tracker.Expenses())
		})
	}

	f.sync.Wait()
	assert.Equal(t, before, f.pub.count(), "rejected inserts are not synced")
}

func TestSameDateTieBreakInView(t *testing.T) {
	f := newFixture(t, storage.NewMemorySlot(0))
	ctx := context.Background()

	first, err := f.tracker.AddExpense(ctx, ledger.Candidate{Date: "2026-10-15", Amount: "100", Category: "食費"})
	require.NoError(t, err)
	f.clock.Advance(time.Second)
	second, err := f.tracker.AddExpense(ctx, ledger.Candidate{Date: "2026-10-15", Amount: "200", Category: "娯楽"})
	require.NoError(t, err)

	v := f.tracker.View(ctx, view.DefaultCriteria(), DefaultSurfaces())
	require.Len(t, v.Rows, 2)
	assert.Equal(t, second.ID, v.Rows[0].ID)
	assert.Equal(t, first.ID, v.Rows[1].ID)
}

func TestMutationsSyncFullSnapshot(t *testing.T) {
	f := newFixture(t, storage.NewMemorySlot(0))
	ctx := context.Background()

	a, err := f.tracker.AddExpense(ctx, ledger.Candidate{Date: "2026-10-17", Amount: "100", Category: "食費"})
	require.NoError(t, err)
	_, err = f.tracker.AddExpense(ctx, ledger.Candidate{Date: "2026-10-16", Amount: "200", Category: "食費"})
	require.NoError(t, err)
	f.sync.Wait()
	assert.Equal(t, 2, f.pub.count())
	assert.Len(t, f.pub.last().Expenses, 2)
	assert.Equal(t, "syncExpenses", f.pub.last().Action)

	removed, err := f.tracker.DeleteExpense(ctx, a.ID)
	require.NoError(t, err)
	assert.True(t, removed)
	f.sync.Wait()
	assert.Len(t, f.pub.last().Expenses, 1)

	removed, err = f.tracker.DeleteExpense(ctx, "nope")
	require.NoError(t, err)
	assert.False(t, removed)
	f.sync.Wait()
	assert.Equal(t, 3, f.pub.count())
	assert.Equal(t, cloudsync.StateSynced, f.tracker.SyncStatus().State)
}

func TestStartRestoresAndSyncsSilently(t *testing.T) {
	slot := storage.NewMemorySlotWith([]byte(`[{"id":"x","date":"2026-10-01","amount":800,"category":"通信費","memo":"","createdAt":1}]`))
	f := newFixture(t, slot)

	assert.Equal(t, ledger.LoadRestored, f.tracker.Start(context.Background()))
	f.sync.Wait()
	assert.Equal(t, 1, f.pub.count())
	assert.Equal(t, cloudsync.StateIdle, f.tracker.SyncStatus().State)

	ev := <-f.sync.Events()
	assert.True(t, ev.Silent)
}

func TestPersistFailureStillShowsRecord(t *testing.T) {
	f := newFixture(t, storage.NewMemorySlot(10))
	ctx := context.Background()

	e, err := f.tracker.AddExpense(ctx, ledger.Candidate{Date: "2026-10-17", Amount: "1500", Category: "食費"})
	require.ErrorIs(t, err, ledger.ErrPersist)
	assert.NotEmpty(t, e.ID)

	v := f.tracker.View(ctx, view.DefaultCriteria(), DefaultSurfaces())
	assert.Len(t, v.Rows, 1)
	f.sync.Wait()
	assert.Equal(t, 1, f.pub.count(), "sync still runs after a failed save")
}

func TestViewCacheAndInvalidation(t *testing.T) {
	f := newFixture(t, storage.NewMemorySlot(0))
	ctx := context.Background()
	criteria := view.Criteria{Period: view.PeriodWeek, Category: view.CategoryAll}

	v1 := f.tracker.View(ctx, criteria, DefaultSurfaces())
	v2 := f.tracker.View(ctx, criteria, DefaultSurfaces())
	assert.Same(t, v1, v2)
	assert.Equal(t, EmptyListMessage, v1.EmptyMessage)
	assert.Equal(t, EmptySummaryMessage, v1.SummaryEmptyMessage)
	assert.True(t, v1.Pie.Empty)
	assert.True(t, v1.TrendChart.Empty)

	_, err := f.tracker.AddExpense(ctx, ledger.Candidate{Date: "2026-10-13", Amount: "700", Category: "衣服"})
	require.NoError(t, err)

	v3 := f.tracker.View(ctx, criteria, DefaultSurfaces())
	assert.NotSame(t, v1, v3)
	assert.Len(t, v3.Rows, 1)

	f.clock.Advance(48 * time.Hour)
	v4 := f.tracker.View(ctx, criteria, DefaultSurfaces())
	assert.NotSame(t, v3, v4, "a new day is a new view")
	assert.Empty(t, v4.Rows, "2026-10-13 is last week on 2026-10-19")
}

func TestSummaryOrdering(t *testing.T) {
	f := newFixture(t, storage.NewMemorySlot(0))
	ctx := context.Background()
	for _, c := range []ledger.Candidate{
		{Date: "2026-10-01", Amount: "500", Category: "食費"},
		{Date: "2026-10-02", Amount: "3000", Category: "光熱費"},
		{Date: "2026-10-03", Amount: "700", Category: "食費"},
	} {
		_, err := f.tracker.AddExpense(ctx, c)
		require.NoError(t, err)
	}

	v := f.tracker.View(ctx, view.Criteria{Period: view.PeriodMonth, Category: view.CategoryAll}, DefaultSurfaces())
	require.Len(t, v.Summary, 2)
	assert.Equal(t, core.CategoryUtilities, v.Summary[0].Category)
	assert.Equal(t, "￥3,000", v.Summary[0].AmountText)
	assert.Equal(t, int64(1200), v.Summary[1].Amount)
}

func TestTrackerWithoutSync(t *testing.T) {
	store := ledger.NewStore(storage.NewMemorySlot(0))
	tracker := NewTracker(store, nil, nil, nil)
	defer tracker.Close()

	tracker.Start(context.Background())
	assert.False(t, tracker.SyncEnabled())
	assert.Equal(t, cloudsync.StateIdle, tracker.SyncStatus().State)

	v := tracker.View(context.Background(), view.DefaultCriteria(), DefaultSurfaces())
	assert.NotNil(t, v)
}
