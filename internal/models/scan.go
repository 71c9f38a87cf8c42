// Package models defines data structures for sweep.
package models

import (
	"fmt"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
)

// MaxWeight is the upper bound for each component weight. A weight of
// MaxWeight applies the component's full score; 0 excludes it.
const MaxWeight = 50

// DefaultWeight is used for any weight the caller leaves unset.
const DefaultWeight = 20

// WeightConfig holds the caller-supplied blend weights for one scan.
// Weights are per-scan inputs and are never persisted.
type WeightConfig struct {
	News        int `json:"news" validate:"min=0,max=50"`
	Fundamental int `json:"fundamental" validate:"min=0,max=50"`
	Trend       int `json:"trend" validate:"min=0,max=50"`
}

// DefaultWeights returns the weight configuration used when the caller
// supplies none.
func DefaultWeights() WeightConfig {
	return WeightConfig{News: DefaultWeight, Fundamental: DefaultWeight, Trend: DefaultWeight}
}

// ComponentStatus records how a component score was obtained, so a neutral
// score from real data can be told apart from a neutral fallback after a
// failed or empty fetch. The numeric score is the same either way.
type ComponentStatus string

const (
	StatusOK     ComponentStatus = "ok"
	StatusEmpty  ComponentStatus = "empty"
	StatusFailed ComponentStatus = "failed"
)

// ScanRequest represents one scan invocation. Exactly one of Tickers or
// Universe selects the symbols to scan.
type ScanRequest struct {
	Tickers  []string      `json:"tickers,omitempty"`
	Universe string        `json:"universe,omitempty"`
	Weights  *WeightConfig `json:"weights,omitempty"`
	Intel    bool          `json:"intel,omitempty"`
}

// Normalize upper-cases and trims tickers, drops empties, and fills in
// default weights. Ticker symbols get no further validation.
func (r *ScanRequest) Normalize() {
	cleaned := make([]string, 0, len(r.Tickers))
	for _, t := range r.Tickers {
		t = strings.ToUpper(strings.TrimSpace(t))
		if t != "" {
			cleaned = append(cleaned, t)
		}
	}
	r.Tickers = cleaned
	r.Universe = strings.ToLower(strings.TrimSpace(r.Universe))

	if r.Weights == nil {
		w := DefaultWeights()
		r.Weights = &w
	}
}

// Validate checks the request after Normalize.
func (r *ScanRequest) Validate() error {
	if len(r.Tickers) > 0 && r.Universe != "" {
		return fmt.Errorf("tickers and universe are mutually exclusive")
	}
	if len(r.Tickers) == 0 && r.Universe == "" {
		return fmt.Errorf("tickers or universe is required")
	}
	if err := validator.New().Struct(r); err != nil {
		return fmt.Errorf("invalid weights: %w", err)
	}
	return nil
}

// ScanResult holds one row of scan results. JSON keys double as the tabular
// display columns.
type ScanResult struct {
	Ticker      string          `json:"ticker"`
	News        int             `json:"news"`
	NewsStatus  ComponentStatus `json:"news_status"`
	Headlines   int             `json:"headlines"`
	Fund        int             `json:"fund"`
	FundReason  string          `json:"fund_reason"`
	FundStatus  ComponentStatus `json:"fund_status"`
	Trend       int             `json:"trend"`
	TrendReason string          `json:"trend_reason"`
	TrendStatus ComponentStatus `json:"trend_status"`
	FinalScore  float64         `json:"final_score"`
	Signal      string          `json:"signal"`
}

// ScanResponse is the full scan response. Results hold exactly one entry per
// requested ticker, in request order.
type ScanResponse struct {
	Results []ScanResult `json:"results"`
	Intel   *ScanBrief   `json:"intel,omitempty"`
	Meta    ScanMeta     `json:"meta"`
}

// ScanMeta contains scan metadata.
type ScanMeta struct {
	Requested   int          `json:"requested"`
	Returned    int          `json:"returned"`
	Universe    string       `json:"universe,omitempty"`
	Weights     WeightConfig `json:"weights"`
	ExecutedAt  time.Time    `json:"executed_at"`
	QueryTimeMS int64        `json:"query_time_ms"`
}

// Universe is a named ticker list.
type Universe struct {
	Name    string   `json:"name"`
	Tickers []string `json:"tickers"`
	Builtin bool     `json:"builtin"`
}
