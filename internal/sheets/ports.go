// Package sheets defines the outbound ports of the ledger mirror.
package sheets

import (
	"context"

	"kakeibo/internal/core"
)

// LedgerMirror keeps an external copy of the whole ledger.
type LedgerMirror interface {
	// ReplaceAll overwrites the mirror with expenses and returns a
	// reference to the written range.
	ReplaceAll(ctx context.Context, expenses []core.Expense) (ref string, err error)
}

// HeaderRow labels the mirrored columns.
var HeaderRow = []string{"ID", "日付", "カテゴリ", "金額", "メモ", "作成日時"}
