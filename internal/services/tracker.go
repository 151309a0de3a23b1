package services

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"kakeibo/internal/aggregate"
	"kakeibo/internal/cache"
	"kakeibo/internal/chart"
	"kakeibo/internal/cloudsync"
	"kakeibo/internal/core"
	"kakeibo/internal/ledger"
	"kakeibo/internal/log"
	"kakeibo/internal/view"
)

// Listing and summary placeholders.
const (
	EmptyListMessage    = "条件に一致する支出はありません。"
	EmptySummaryMessage = "データがありません。"
)

// Surfaces are the chart sizes a client renders at.
type Surfaces struct {
	Pie   chart.Surface `json:"pie"`
	Trend chart.Surface `json:"trend"`
}

func DefaultSurfaces() Surfaces {
	return Surfaces{
		Pie:   chart.Surface{Width: 320, Height: 320},
		Trend: chart.Surface{Width: 640, Height: 280},
	}
}

// Header summarises the current month over the whole ledger.
type Header struct {
	MonthLabel     string `json:"monthLabel"`
	MonthTotal     int64  `json:"monthTotal"`
	MonthTotalText string `json:"monthTotalText"`
}

// Row is one listing line, preformatted.
type Row struct {
	core.Expense
	DisplayDate string `json:"displayDate"`
	AmountText  string `json:"amountText"`
	DisplayMemo string `json:"displayMemo"`
}

// SummaryItem is one line of the category summary.
type SummaryItem struct {
	core.CategoryAmount
	AmountText string `json:"amountText"`
}

// View is everything a client needs to render the ledger screen.
type View struct {
	Revision            uint64                `json:"revision"`
	Today               string                `json:"today"`
	Criteria            view.Criteria         `json:"criteria"`
	Header              Header                `json:"header"`
	Rows                []Row                 `json:"rows"`
	EmptyMessage        string                `json:"emptyMessage,omitempty"`
	FilteredTotal       int64                 `json:"filteredTotal"`
	FilteredTotalText   string                `json:"filteredTotalText"`
	Summary             []SummaryItem         `json:"summary"`
	SummaryEmptyMessage string                `json:"summaryEmptyMessage,omitempty"`
	CategoryTotals      []core.CategoryAmount `json:"categoryTotals"`
	Pie                 chart.PieChart        `json:"pie"`
	Trend               []core.MonthTotal     `json:"trend"`
	TrendChart          chart.TrendChart      `json:"trendChart"`
}

// Tracker serializes ledger mutations and derives views from snapshots.
type Tracker struct {
	mu     sync.Mutex
	store  *ledger.Store
	sync   *cloudsync.Dispatcher
	views  cache.Cache[*View]
	logger *log.Logger
	events *log.StructuredLogger
}

// NewTracker wires the ledger to sync and the view cache. dispatcher and
// views may be nil.
func NewTracker(store *ledger.Store, dispatcher *cloudsync.Dispatcher, views cache.Cache[*View], logger *log.Logger) *Tracker {
	if logger == nil {
		logger = log.Discard()
	}
	logger = logger.WithComponent(log.ComponentTracker)
	return &Tracker{
		store:  store,
		sync:   dispatcher,
		views:  views,
		logger: logger,
		events: log.NewStructuredLogger(logger),
	}
}

// Start restores the ledger and uploads it silently.
func (t *Tracker) Start(ctx context.Context) ledger.LoadResult {
	t.mu.Lock()
	defer t.mu.Unlock()

	result := t.store.Load(ctx)
	t.invalidate()
	t.logger.InfoContext(ctx, "Ledger ready", "load", result.String(), log.FieldCount, t.store.Len())
	t.sync.SyncSilently(t.store.Snapshot())
	return result
}

// AddExpense validates and records c. A *ledger.PersistError comes back with
// the created record: the expense exists but was not saved.
func (t *Tracker) AddExpense(ctx context.Context, c ledger.Candidate) (core.Expense, error) {
	t.mu.Lock()
	defer t.mu.Unlock()

	e, err := t.store.Insert(ctx, c)
	if err != nil && !errors.Is(err, ledger.ErrPersist) {
		t.logger.DebugContext(ctx, "Expense rejected", log.FieldError, err, log.FieldOperation, log.OpValidate)
		return core.Expense{}, err
	}
	if err != nil {
		t.logger.WarnContext(ctx, "Expense kept in memory only", log.FieldExpenseID, e.ID, log.FieldError, err)
	}

	t.events.LogExpenseCreated(ctx, e.ID, e.Date, e.Amount.Int64(), e.Category.String())
	t.invalidate()
	t.sync.Sync(t.store.Snapshot())
	return e, err
}

// DeleteExpense removes id. Unknown ids report false and trigger nothing.
func (t *Tracker) DeleteExpense(ctx context.Context, id string) (bool, error) {
	t.mu.Lock()
	defer t.mu.Unlock()

	removed, err := t.store.Delete(ctx, id)
	t.events.LogExpenseDeleted(ctx, id, removed)
	if !removed {
		return false, nil
	}
	if err != nil {
		t.logger.WarnContext(ctx, "Deletion kept in memory only", log.FieldExpenseID, id, log.FieldError, err)
	}
	t.invalidate()
	t.sync.Sync(t.store.Snapshot())
	return true, err
}

func (t *Tracker) invalidate() {
	if t.views != nil {
		t.views.Purge()
	}
}

// Expenses returns every record in canonical order.
func (t *Tracker) Expenses() []core.Expense {
	return t.store.Snapshot()
}

// SyncStatus returns the transient sync indicator.
func (t *Tracker) SyncStatus() cloudsync.Status {
	return t.sync.Status()
}

// SyncEnabled reports whether uploads are configured.
func (t *Tracker) SyncEnabled() bool {
	return t.sync.Enabled()
}

// View derives the screen for criteria at the store's current time.
func (t *Tracker) View(ctx context.Context, criteria view.Criteria, surfaces Surfaces) *View {
	now := t.store.Now()
	all, revision := t.store.VersionedSnapshot()
	key := fmt.Sprintf("%d|%s|%s|%v", revision, criteria.Key(), core.DateOf(now), surfaces)
	if t.views != nil {
		if v, ok := t.views.Get(key); ok {
			return v
		}
	}

	v := t.build(ctx, all, revision, criteria, surfaces, now)
	if t.views != nil {
		t.views.Set(key, v)
	}
	return v
}

func (t *Tracker) build(ctx context.Context, all []core.Expense, revision uint64, criteria view.Criteria, surfaces Surfaces, now time.Time) *View {
	filtered := view.Apply(view.SortForDisplay(all), criteria, now)
	totals := aggregate.ByCategory(filtered)
	for _, bad := range aggregate.NonPositive(totals) {
		if bad.Amount < 0 {
			t.logger.WarnContext(ctx, "Negative category total, ledger data is inconsistent",
				log.FieldCategory, bad.Category.String(), log.FieldAmount, bad.Amount)
		}
	}

	monthTotal := aggregate.CurrentMonthTotal(all, now)
	filteredTotal := aggregate.FilteredTotal(filtered)
	trend := aggregate.Trend(all, now)

	v := &View{
		Revision: revision,
		Today:    core.DateOf(now).String(),
		Criteria: criteria,
		Header: Header{
			MonthLabel:     core.DateOf(now).YearMonth().Label(),
			MonthTotal:     monthTotal,
			MonthTotalText: core.FormatYen(monthTotal),
		},
		Rows:              make([]Row, 0, len(filtered)),
		FilteredTotal:     filteredTotal,
		FilteredTotalText: core.FormatYen(filteredTotal),
		Summary:           []SummaryItem{},
		CategoryTotals:    totals,
		Pie:               chart.Pie(totals, surfaces.Pie),
		Trend:             trend,
		TrendChart:        chart.Trend(trend, surfaces.Trend, chart.DefaultPadding()),
	}
	if v.CategoryTotals == nil {
		v.CategoryTotals = []core.CategoryAmount{}
	}

	for _, e := range filtered {
		v.Rows = append(v.Rows, Row{
			Expense:     e,
			DisplayDate: e.DisplayDate(),
			AmountText:  core.FormatYen(e.Amount.Int64()),
			DisplayMemo: e.DisplayMemo(),
		})
	}
	if len(filtered) == 0 {
		v.EmptyMessage = EmptyListMessage
		v.SummaryEmptyMessage = EmptySummaryMessage
	}
	for _, s := range aggregate.Summary(totals) {
		v.Summary = append(v.Summary, SummaryItem{CategoryAmount: s, AmountText: core.FormatYen(s.Amount)})
	}
	return v
}

// Close waits for in-flight uploads.
func (t *Tracker) Close() {
	t.sync.Close()
}
