// Package view derives the visible, ordered subset of the ledger from
// filter criteria. Everything here is a pure function over a snapshot.
package view

import (
	"cmp"
	"fmt"
	"slices"
	"strings"
	"time"

	"kakeibo/internal/core"
)

// Period restricts records to a calendar window around today.
type Period string

const (
	PeriodAll   Period = "all"
	PeriodWeek  Period = "week"
	PeriodMonth Period = "month"
)

// CategoryAll disables category filtering.
const CategoryAll = "all"

// Criteria selects which records are visible. The zero value is invalid;
// use DefaultCriteria.
type Criteria struct {
	Period   Period `json:"period"`
	Category string `json:"category"`
}

func DefaultCriteria() Criteria {
	return Criteria{Period: PeriodAll, Category: CategoryAll}
}

// ParsePeriod accepts all, week and month. Empty input means all.
func ParsePeriod(s string) (Period, error) {
	switch p := Period(strings.ToLower(strings.TrimSpace(s))); p {
	case "", PeriodAll:
		return PeriodAll, nil
	case PeriodWeek, PeriodMonth:
		return p, nil
	default:
		return "", fmt.Errorf("unknown period %q", s)
	}
}

// ParseCriteria builds criteria from textual input. The category may be
// "all", empty, a label or an English alias.
func ParseCriteria(period, category string) (Criteria, error) {
	p, err := ParsePeriod(period)
	if err != nil {
		return Criteria{}, err
	}
	category = strings.TrimSpace(category)
	if category == "" || strings.EqualFold(category, CategoryAll) {
		return Criteria{Period: p, Category: CategoryAll}, nil
	}
	c, ok := core.ParseCategory(category)
	if !ok {
		return Criteria{}, fmt.Errorf("unknown category %q", category)
	}
	return Criteria{Period: p, Category: c.String()}, nil
}

// Key is a stable textual form of the criteria, used for caching.
func (c Criteria) Key() string {
	return string(c.Period) + "|" + c.Category
}

// Matches reports whether e passes both the category and the period filter.
func (c Criteria) Matches(e core.Expense, today time.Time) bool {
	if c.Category != CategoryAll && string(e.Category) != c.Category {
		return false
	}
	switch c.Period {
	case PeriodWeek:
		return core.IsWithinCurrentWeek(e.Date, today)
	case PeriodMonth:
		return core.IsWithinCurrentMonth(e.Date, today)
	default:
		return true
	}
}

// Apply keeps the records matching c, preserving input order. The input is
// not modified.
func Apply(records []core.Expense, c Criteria, today time.Time) []core.Expense {
	out := make([]core.Expense, 0, len(records))
	for _, e := range records {
		if c.Matches(e, today) {
			out = append(out, e)
		}
	}
	return out
}

// SortForDisplay returns a copy ordered by date descending, then CreatedAt
// descending, then ID. Dates compare as calendar dates, so 2025-1-5 sorts
// with 2025-01-05. Unparseable dates go last, compared as text.
func SortForDisplay(records []core.Expense) []core.Expense {
	type keyed struct {
		e      core.Expense
		date   core.Date
		parsed bool
	}
	rows := make([]keyed, len(records))
	for i, e := range records {
		d, ok := core.ParseDate(e.Date)
		rows[i] = keyed{e: e, date: d, parsed: ok}
	}
	slices.SortFunc(rows, func(a, b keyed) int {
		switch {
		case a.parsed && b.parsed:
			if c := b.date.Compare(a.date); c != 0 {
				return c
			}
		case a.parsed != b.parsed:
			if a.parsed {
				return -1
			}
			return 1
		default:
			if c := cmp.Compare(b.e.Date, a.e.Date); c != 0 {
				return c
			}
		}
		if c := cmp.Compare(b.e.CreatedAt, a.e.CreatedAt); c != 0 {
			return c
		}
		return cmp.Compare(a.e.ID, b.e.ID)
	})
	out := make([]core.Expense, len(rows))
	for i, r := range rows {
		out[i] = r.e
	}
	return out
}
