package models

import (
	"time"
)

// PriceBar holds one daily closing price. Bars are ordered oldest first.
type PriceBar struct {
	Date  time.Time `json:"date"`
	Close float64   `json:"close"`
}

// FinancialValue holds one reported annual figure.
type FinancialValue struct {
	Date  string  `json:"date"` // period end, YYYY-MM-DD
	Value float64 `json:"value"`
}

// Financials holds annual statement rows for a ticker, most recent first.
type Financials struct {
	Ticker    string           `json:"ticker"`
	Revenue   []FinancialValue `json:"revenue"`
	NetIncome []FinancialValue `json:"net_income"`
}

// HasTwoPeriods reports whether both rows carry at least two annual figures,
// the minimum needed for year-over-year direction scoring.
func (f *Financials) HasTwoPeriods() bool {
	return f != nil && len(f.Revenue) >= 2 && len(f.NetIncome) >= 2
}
