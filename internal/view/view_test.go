package view

import (
	"math/rand"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"kakeibo/internal/core"
)

// Saturday; the week runs Mon 2026-10-12 .. Sun 2026-10-18.
var today = time.Date(2026, time.October, 17, 12, 0, 0, 0, time.UTC)

func fixture() []core.Expense {
	return []core.Expense{
		{ID: "a", Date: "2026-10-17", Amount: 1500, Category: core.CategoryFood, CreatedAt: 60},
		{ID: "b", Date: "2026-10-12", Amount: 300, Category: core.CategoryTransport, CreatedAt: 50},
		{ID: "c", Date: "2026-10-11", Amount: 800, Category: core.CategoryFood, CreatedAt: 40},
		{ID: "d", Date: "2026-09-30", Amount: 5000, Category: core.CategoryUtilities, CreatedAt: 30},
		{ID: "e", Date: "2026-10-17", Amount: 200, Category: core.CategoryFood, CreatedAt: 20},
		{ID: "f", Date: "broken", Amount: 100, Category: core.CategoryOther, CreatedAt: 10},
	}
}

func ids(records []core.Expense) []string {
	out := make([]string, len(records))
	for i, r := range records {
		out[i] = r.ID
	}
	return out
}

func TestParseCriteria(t *testing.T) {
	c, err := ParseCriteria("", "")
	require.NoError(t, err)
	assert.Equal(t, DefaultCriteria(), c)

	c, err = ParseCriteria("WEEK", "food")
	require.NoError(t, err)
	assert.Equal(t, Criteria{Period: PeriodWeek, Category: "食費"}, c)

	c, err = ParseCriteria("month", "光熱費")
	require.NoError(t, err)
	assert.Equal(t, Criteria{Period: PeriodMonth, Category: "光熱費"}, c)

	_, err = ParseCriteria("year", "all")
	assert.Error(t, err)
	_, err = ParseCriteria("all", "travel")
	assert.Error(t, err)
}

func TestApply(t *testing.T) {
	records := fixture()
	cases := []struct {
		name     string
		criteria Criteria
		want     []string
	}{
		{"all", DefaultCriteria(), []string{"a", "b", "c", "d", "e", "f"}},
		{"week", Criteria{Period: PeriodWeek, Category: CategoryAll}, []string{"a", "b", "e"}},
		{"month", Criteria{Period: PeriodMonth, Category: CategoryAll}, []string{"a", "b", "c", "e"}},
		{"food", Criteria{Period: PeriodAll, Category: "食費"}, []string{"a", "c", "e"}},
		{"food this week", Criteria{Period: PeriodWeek, Category: "食費"}, []string{"a", "e"}},
		{"no match", Criteria{Period: PeriodWeek, Category: "光熱費"}, []string{}},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			assert.Equal(t, tc.want, ids(Apply(records, tc.criteria, today)))
		})
	}
	assert.Equal(t, fixture(), records, "input untouched")
}

func TestSortForDisplay(t *testing.T) {
	got := SortForDisplay(fixture())
	assert.Equal(t, []string{"a", "e", "b", "c", "d", "f"}, ids(got), "unparseable dates go last")
}

func TestSortForDisplayIsTotalOrder(t *testing.T) {
	want := ids(SortForDisplay(fixture()))
	rng := rand.New(rand.NewSource(7))
	for i := 0; i < 50; i++ {
		shuffled := fixture()
		rng.Shuffle(len(shuffled), func(i, j int) { shuffled[i], shuffled[j] = shuffled[j], shuffled[i] })
		assert.Equal(t, want, ids(SortForDisplay(shuffled)))
	}
}

func TestSameDateTieBreak(t *testing.T) {
	records := []core.Expense{
		{ID: "older", Date: "2026-10-17", CreatedAt: 1000},
		{ID: "newer", Date: "2026-10-17", CreatedAt: 2000},
	}
	assert.Equal(t, []string{"newer", "older"}, ids(SortForDisplay(records)))
}

func TestSortForDisplayUsesCalendarDates(t *testing.T) {
	records := []core.Expense{
		{ID: "jan-05", Date: "2025-1-5", CreatedAt: 1},
		{ID: "jan-10", Date: "2025-01-10", CreatedAt: 2},
		{ID: "broken", Date: "someday", CreatedAt: 9},
		{ID: "dec-01", Date: "2024-12-01", CreatedAt: 3},
		{ID: "jan-05-later", Date: "2025-01-05", CreatedAt: 4},
	}
	got := ids(SortForDisplay(records))
	assert.Equal(t, []string{"jan-10", "jan-05-later", "jan-05", "dec-01", "broken"}, got)
}

func TestSundayBelongsToPreviousWeek(t *testing.T) {
	sunday := time.Date(2026, time.October, 18, 23, 0, 0, 0, time.UTC)
	got := Apply(fixture(), Criteria{Period: PeriodWeek, Category: CategoryAll}, sunday)
	assert.Equal(t, []string{"a", "b", "e"}, ids(got))
}
