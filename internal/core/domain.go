package core

import (
	"bytes"
	"encoding/json"
	"strconv"
	"strings"
)

const (
	// MinAmount and MaxAmount bound a single expense, in whole yen.
	MinAmount Amount = 1
	MaxAmount Amount = 9_999_999

	// MaxMemoLength is measured in characters, not bytes.
	MaxMemoLength = 100
)

type (
	// Amount is a whole-yen value. There are no fractional currency units.
	Amount int64

	// Expense is a single ledger entry. It is never mutated after creation.
	Expense struct {
		ID        string   `json:"id"`
		Date      string   `json:"date"` // YYYY-MM-DD
		Amount    Amount   `json:"amount"`
		Category  Category `json:"category"`
		Memo      string   `json:"memo"`
		CreatedAt int64    `json:"createdAt"` // unix milliseconds, tie-break only
	}
)

// Int64 returns the amount as a plain integer for arithmetic.
func (a Amount) Int64() int64 {
	return int64(a)
}

// InRange reports whether the amount is within [MinAmount, MaxAmount].
func (a Amount) InRange() bool {
	return a >= MinAmount && a <= MaxAmount
}

// UnmarshalJSON accepts whole numbers and whole numeric strings. Anything
// else, including fractional or int64-overflowing values, decodes to zero so a
// damaged amount never contributes to a total.
func (a *Amount) UnmarshalJSON(data []byte) error {
	*a = 0
	raw := bytes.TrimSpace(data)
	if len(raw) == 0 || bytes.Equal(raw, []byte("null")) {
		return nil
	}
	text := string(raw)
	if raw[0] == '"' {
		unquoted, err := strconv.Unquote(text)
		if err != nil {
			return nil
		}
		text = strings.TrimSpace(unquoted)
	}
	*a = wholeAmount(text)
	return nil
}

// MarshalJSON always writes a plain JSON number.
func (a Amount) MarshalJSON() ([]byte, error) {
	return json.Marshal(int64(a))
}

// ParsedDate returns the calendar date of the expense, if it is well formed.
func (e Expense) ParsedDate() (Date, bool) {
	return ParseDate(e.Date)
}

// DisplayMemo returns the memo or a dash placeholder for listings.
func (e Expense) DisplayMemo() string {
	if e.Memo == "" {
		return "-"
	}
	return e.Memo
}

// DisplayDate formats the date as 2006/01/02, falling back to the raw text.
func (e Expense) DisplayDate() string {
	d, ok := e.ParsedDate()
	if !ok {
		return e.Date
	}
	return d.Display()
}
