package ledger

import (
	"errors"
	"fmt"
	"strings"
	"time"
	"unicode/utf8"

	"kakeibo/internal/core"
)

// Candidate is raw user input for a new expense, exactly as typed.
type Candidate struct {
	Date     string `json:"date"`
	Amount   string `json:"amount"`
	Category string `json:"category"`
	Memo     string `json:"memo"`
}

// Reason identifies which rule rejected a candidate.
type Reason string

// Reasons in the order they are checked.
const (
	ReasonDateMissing      Reason = "date_missing"
	ReasonDateInvalid      Reason = "date_invalid"
	ReasonDateFuture       Reason = "date_future"
	ReasonAmountNotInteger Reason = "amount_not_integer"
	ReasonAmountOutOfRange Reason = "amount_out_of_range"
	ReasonCategoryMissing  Reason = "category_missing"
	ReasonCategoryUnknown  Reason = "category_unknown"
	ReasonMemoTooLong      Reason = "memo_too_long"
)

var messages = map[Reason]string{
	ReasonDateMissing:      "日付を入力してください。",
	ReasonDateInvalid:      "有効な日付を入力してください。",
	ReasonDateFuture:       "未来の日付は入力できません。",
	ReasonAmountNotInteger: "金額は整数で入力してください。",
	ReasonAmountOutOfRange: "金額は1円以上9,999,999円以下で入力してください。",
	ReasonCategoryMissing:  "カテゴリを選択してください。",
	ReasonCategoryUnknown:  "有効なカテゴリを選択してください。",
	ReasonMemoTooLong:      "メモは100文字以内で入力してください。",
}

// ErrValidation matches every *ValidationError via errors.Is.
var ErrValidation = errors.New("validation failed")

// ValidationError reports the first rule a candidate violated.
type ValidationError struct {
	Field   string
	Reason  Reason
	Message string
	// Suggestion is set for unknown categories when a close label exists.
	Suggestion core.Category
}

func newValidationError(field string, reason Reason) *ValidationError {
	return &ValidationError{Field: field, Reason: reason, Message: messages[reason]}
}

func (e *ValidationError) Error() string {
	if e.Suggestion != "" {
		return fmt.Sprintf("%s (%s?)", e.Message, e.Suggestion)
	}
	return e.Message
}

func (e *ValidationError) Is(target error) bool {
	return target == ErrValidation
}

// validated is a candidate that passed every rule, normalized for storage.
type validated struct {
	date     core.Date
	amount   core.Amount
	category core.Category
	memo     string
}

// Validate checks c against today's local date. Only the first failure is
// reported.
func Validate(c Candidate, today time.Time) error {
	_, err := validate(c, today)
	return err
}

func validate(c Candidate, today time.Time) (validated, error) {
	var v validated

	date := strings.TrimSpace(c.Date)
	if date == "" {
		return v, newValidationError("date", ReasonDateMissing)
	}
	d, ok := core.ParseDate(date)
	if !ok {
		return v, newValidationError("date", ReasonDateInvalid)
	}
	if d.After(core.DateOf(today)) {
		return v, newValidationError("date", ReasonDateFuture)
	}
	v.date = d

	amount, err := core.ParseAmount(c.Amount)
	switch {
	case errors.Is(err, core.ErrAmountNotInteger):
		return v, newValidationError("amount", ReasonAmountNotInteger)
	case err != nil:
		return v, newValidationError("amount", ReasonAmountOutOfRange)
	}
	v.amount = amount

	label := strings.TrimSpace(c.Category)
	if label == "" {
		return v, newValidationError("category", ReasonCategoryMissing)
	}
	category, ok := core.ParseCategory(label)
	if !ok {
		verr := newValidationError("category", ReasonCategoryUnknown)
		if s, found := core.SuggestCategory(label); found {
			verr.Suggestion = s
		}
		return v, verr
	}
	v.category = category

	memo := strings.TrimSpace(c.Memo)
	if utf8.RuneCountInString(memo) > core.MaxMemoLength {
		return v, newValidationError("memo", ReasonMemoTooLong)
	}
	v.memo = memo

	return v, nil
}
