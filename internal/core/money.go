// Package core provides the expense domain model.
//
// This file contains amount parsing and yen formatting. Amounts are whole
// yen held in int64; no floating point is involved in accumulation.
package core

import (
	"errors"
	"math"
	"strconv"
	"strings"

	"github.com/shopspring/decimal"
)

var (
	ErrAmountNotInteger = errors.New("amount is not an integer")
	ErrAmountOutOfRange = errors.New("amount out of range")
	maxAmountDecimal    = decimal.NewFromInt(int64(MaxAmount))
	minAmountDecimal    = decimal.NewFromInt(int64(MinAmount))
	maxInt64Decimal     = decimal.NewFromInt(math.MaxInt64)
	minInt64Decimal     = decimal.NewFromInt(math.MinInt64)
)

// Amount text is bounded in length and exponent so every decimal comparison
// works on numbers of at most a few dozen digits.
const (
	maxAmountText = 32
	maxAmountExp  = 16
	minAmountExp  = -maxAmountText
)

// parseAmountDecimal parses s within the length and exponent bounds. Beyond
// maxAmountExp every value is zero or larger than any amount; below
// minAmountExp every non-zero value has a fractional part.
func parseAmountDecimal(s string) (decimal.Decimal, error) {
	if len(s) > maxAmountText {
		return decimal.Zero, ErrAmountNotInteger
	}
	d, err := decimal.NewFromString(s)
	if err != nil {
		return decimal.Zero, ErrAmountNotInteger
	}
	switch exp := d.Exponent(); {
	case exp > maxAmountExp:
		return decimal.Zero, ErrAmountOutOfRange
	case exp < minAmountExp:
		if d.IsZero() {
			return decimal.Zero, ErrAmountOutOfRange
		}
		return decimal.Zero, ErrAmountNotInteger
	}
	return d, nil
}

// wholeAmount decodes stored amount text. Only whole values that fit in an
// int64 are kept; anything else reads as zero.
func wholeAmount(s string) Amount {
	d, err := parseAmountDecimal(s)
	if err != nil || !d.IsInteger() {
		return 0
	}
	if d.LessThan(minInt64Decimal) || d.GreaterThan(maxInt64Decimal) {
		return 0
	}
	return Amount(d.IntPart())
}

// ParseAmount converts user input to an Amount.
//
// Blank input reads as zero and therefore fails the range check, not the
// integer check. Exponent notation is accepted as long as the value is whole:
//
//	ParseAmount("1500")   -> 1500, nil
//	ParseAmount("1.5e3")  -> 1500, nil
//	ParseAmount("12.5")   -> 0, ErrAmountNotInteger
//	ParseAmount("0")      -> 0, ErrAmountOutOfRange
//	ParseAmount("1e20")   -> 0, ErrAmountOutOfRange
func ParseAmount(s string) (Amount, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return 0, ErrAmountOutOfRange
	}
	d, err := parseAmountDecimal(s)
	if err != nil {
		return 0, err
	}
	if !d.IsInteger() {
		return 0, ErrAmountNotInteger
	}
	if d.LessThan(minAmountDecimal) || d.GreaterThan(maxAmountDecimal) {
		return 0, ErrAmountOutOfRange
	}
	return Amount(d.IntPart()), nil
}

// FormatYen formats a whole-yen value with thousands separators, e.g. ￥1,500.
func FormatYen(amount int64) string {
	neg := amount < 0
	if neg {
		amount = -amount
	}
	digits := strconv.FormatInt(amount, 10)
	var b strings.Builder
	if neg {
		b.WriteByte('-')
	}
	b.WriteString("￥")
	for i, r := range digits {
		if i > 0 && (len(digits)-i)%3 == 0 {
			b.WriteByte(',')
		}
		b.WriteRune(r)
	}
	return b.String()
}
