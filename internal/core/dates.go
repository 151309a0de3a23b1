package core

import (
	"fmt"
	"strconv"
	"strings"
	"time"
)

// Date is a calendar date with no time or zone component.
type Date struct {
	Year  int
	Month time.Month
	Day   int
}

// YearMonth identifies a calendar month.
type YearMonth struct {
	Year  int        `json:"year"`
	Month time.Month `json:"month"`
}

// ParseDate parses a YYYY-MM-DD literal. It fails unless the text splits into
// exactly three numeric parts that name a real calendar date, so overflow such
// as 2025-04-31 is rejected rather than normalized.
func ParseDate(s string) (Date, bool) {
	parts := strings.Split(s, "-")
	if len(parts) != 3 {
		return Date{}, false
	}
	var nums [3]int
	for i, p := range parts {
		n, err := strconv.Atoi(p)
		if err != nil {
			return Date{}, false
		}
		nums[i] = n
	}
	d := Date{Year: nums[0], Month: time.Month(nums[1]), Day: nums[2]}
	if DateOf(d.midnight()) != d {
		return Date{}, false
	}
	return d, true
}

// DateOf returns the calendar date of t in t's own location.
func DateOf(t time.Time) Date {
	y, m, d := t.Date()
	return Date{Year: y, Month: m, Day: d}
}

// midnight is used for calendar arithmetic only; UTC has no DST gaps.
func (d Date) midnight() time.Time {
	return time.Date(d.Year, d.Month, d.Day, 0, 0, 0, 0, time.UTC)
}

// In returns local midnight of d in loc.
func (d Date) In(loc *time.Location) time.Time {
	return time.Date(d.Year, d.Month, d.Day, 0, 0, 0, 0, loc)
}

// AddDays returns d shifted by n calendar days.
func (d Date) AddDays(n int) Date {
	return DateOf(d.midnight().AddDate(0, 0, n))
}

// Compare returns -1, 0 or +1.
func (d Date) Compare(o Date) int {
	return d.midnight().Compare(o.midnight())
}

func (d Date) Before(o Date) bool { return d.Compare(o) < 0 }

func (d Date) After(o Date) bool { return d.Compare(o) > 0 }

// YearMonth returns the month d falls in.
func (d Date) YearMonth() YearMonth {
	return YearMonth{Year: d.Year, Month: d.Month}
}

// String formats d as YYYY-MM-DD.
func (d Date) String() string {
	return fmt.Sprintf("%04d-%02d-%02d", d.Year, int(d.Month), d.Day)
}

// Display formats d for listings, e.g. 2026/10/17.
func (d Date) Display() string {
	return fmt.Sprintf("%04d/%02d/%02d", d.Year, int(d.Month), d.Day)
}

// AddMonths returns ym shifted by n months.
func (ym YearMonth) AddMonths(n int) YearMonth {
	t := time.Date(ym.Year, ym.Month+time.Month(n), 1, 0, 0, 0, 0, time.UTC)
	return YearMonth{Year: t.Year(), Month: t.Month()}
}

// Label formats the month for chart axes and headers, e.g. 2026年10月.
func (ym YearMonth) Label() string {
	return fmt.Sprintf("%d年%d月", ym.Year, int(ym.Month))
}

// WeekStart returns the Monday on or before today. Sunday counts as the
// seventh day of the week that started six days earlier.
func WeekStart(today time.Time) Date {
	weekday := int(today.Weekday())
	if weekday == 0 {
		weekday = 7
	}
	return DateOf(today).AddDays(-(weekday - 1))
}

// IsWithinCurrentWeek reports whether the date literal falls in
// [Monday, Monday+7) of today's week. Unparseable input is never in range.
func IsWithinCurrentWeek(date string, today time.Time) bool {
	d, ok := ParseDate(date)
	if !ok {
		return false
	}
	start := WeekStart(today)
	end := start.AddDays(7)
	return !d.Before(start) && d.Before(end)
}

// IsWithinCurrentMonth reports whether the date literal shares today's
// calendar year and month. Unparseable input is never in range.
func IsWithinCurrentMonth(date string, today time.Time) bool {
	d, ok := ParseDate(date)
	if !ok {
		return false
	}
	return d.YearMonth() == DateOf(today).YearMonth()
}
