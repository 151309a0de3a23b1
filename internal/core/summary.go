package core

// CategoryAmount represents an amount aggregated by category.
type CategoryAmount struct {
	Category Category `json:"category"`
	Amount   int64    `json:"amount"`
}

// MonthTotal is the sum of one calendar month in the trend window.
type MonthTotal struct {
	YearMonth
	Label string `json:"label"`
	Total int64  `json:"total"`
}
