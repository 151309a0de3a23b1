// Package aggregate reduces ledger snapshots to totals. All sums are whole
// yen in int64.
package aggregate

import (
	"slices"
	"time"

	"kakeibo/internal/core"
)

// TrendMonthsBack is how many months before the current one the trend covers.
const TrendMonthsBack = 5

// ByCategory sums amounts per category, in order of first appearance.
// Categories are taken from the records as-is, so a stored record with an
// unknown label still gets its own bucket.
func ByCategory(records []core.Expense) []core.CategoryAmount {
	var out []core.CategoryAmount
	index := make(map[core.Category]int)
	for _, e := range records {
		i, ok := index[e.Category]
		if !ok {
			i = len(out)
			index[e.Category] = i
			out = append(out, core.CategoryAmount{Category: e.Category})
		}
		out[i].Amount += e.Amount.Int64()
	}
	return out
}

// Summary keeps the positive totals and sorts them by amount, largest first.
// Equal amounts fall back to category declaration order, unknown labels last.
func Summary(totals []core.CategoryAmount) []core.CategoryAmount {
	out := make([]core.CategoryAmount, 0, len(totals))
	for _, t := range totals {
		if t.Amount > 0 {
			out = append(out, t)
		}
	}
	slices.SortStableFunc(out, func(a, b core.CategoryAmount) int {
		if a.Amount != b.Amount {
			if a.Amount > b.Amount {
				return -1
			}
			return 1
		}
		return rank(a.Category) - rank(b.Category)
	})
	return out
}

func rank(c core.Category) int {
	if i := c.Index(); i >= 0 {
		return i
	}
	return len(core.Categories())
}

// NonPositive returns the totals Summary would drop because they are zero or
// negative. Validated records cannot produce them.
func NonPositive(totals []core.CategoryAmount) []core.CategoryAmount {
	var out []core.CategoryAmount
	for _, t := range totals {
		if t.Amount <= 0 {
			out = append(out, t)
		}
	}
	return out
}

// MonthlyTotals returns monthsBack+1 buckets ending with today's month, oldest
// first. Empty months are present with a zero total.
func MonthlyTotals(records []core.Expense, today time.Time, monthsBack int) []core.MonthTotal {
	if monthsBack < 0 {
		monthsBack = 0
	}
	current := core.DateOf(today).YearMonth()
	first := current.AddMonths(-monthsBack)

	buckets := make([]core.MonthTotal, monthsBack+1)
	index := make(map[core.YearMonth]int, len(buckets))
	for i := range buckets {
		ym := first.AddMonths(i)
		buckets[i] = core.MonthTotal{YearMonth: ym, Label: ym.Label()}
		index[ym] = i
	}

	for _, e := range records {
		d, ok := e.ParsedDate()
		if !ok {
			continue
		}
		if i, ok := index[d.YearMonth()]; ok {
			buckets[i].Total += e.Amount.Int64()
		}
	}
	return buckets
}

// Trend is MonthlyTotals over the standard six-month window.
func Trend(records []core.Expense, today time.Time) []core.MonthTotal {
	return MonthlyTotals(records, today, TrendMonthsBack)
}

// CurrentMonthTotal sums records dated in today's calendar month.
func CurrentMonthTotal(records []core.Expense, today time.Time) int64 {
	var total int64
	for _, e := range records {
		if core.IsWithinCurrentMonth(e.Date, today) {
			total += e.Amount.Int64()
		}
	}
	return total
}

// FilteredTotal sums every record given.
func FilteredTotal(records []core.Expense) int64 {
	var total int64
	for _, e := range records {
		total += e.Amount.Int64()
	}
	return total
}
