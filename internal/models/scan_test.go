package models

import (
	"testing"
	"time"
)

func TestScanRequest_Normalize(t *testing.T) {
	req := ScanRequest{Tickers: []string{" aapl ", "msft", "", "  "}}
	req.Normalize()

	want := []string{"AAPL", "MSFT"}
	if len(req.Tickers) != len(want) {
		t.Fatalf("Tickers = %v, want %v", req.Tickers, want)
	}
	for i := range want {
		if req.Tickers[i] != want[i] {
			t.Errorf("Tickers[%d] = %q, want %q", i, req.Tickers[i], want[i])
		}
	}
	if req.Weights == nil {
		t.Fatal("Weights not defaulted")
	}
	if *req.Weights != DefaultWeights() {
		t.Errorf("Weights = %+v, want defaults", *req.Weights)
	}
}

func TestScanRequest_Validate(t *testing.T) {
	tests := []struct {
		name    string
		req     ScanRequest
		wantErr bool
	}{
		{"tickers only", ScanRequest{Tickers: []string{"AAPL"}}, false},
		{"universe only", ScanRequest{Universe: "sector"}, false},
		{"both", ScanRequest{Tickers: []string{"AAPL"}, Universe: "etf"}, true},
		{"neither", ScanRequest{}, true},
		{"weight too high", ScanRequest{Tickers: []string{"AAPL"}, Weights: &WeightConfig{News: 51, Fundamental: 20, Trend: 20}}, true},
		{"weight negative", ScanRequest{Tickers: []string{"AAPL"}, Weights: &WeightConfig{News: -1, Fundamental: 20, Trend: 20}}, true},
		{"weight zero ok", ScanRequest{Tickers: []string{"AAPL"}, Weights: &WeightConfig{}}, false},
		{"weight max ok", ScanRequest{Tickers: []string{"AAPL"}, Weights: &WeightConfig{News: 50, Fundamental: 50, Trend: 50}}, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := tt.req
			req.Normalize()
			err := req.Validate()
			if (err != nil) != tt.wantErr {
				t.Errorf("Validate() error = %v, wantErr %v", err, tt.wantErr)
			}
		})
	}
}

func TestJobSpec_GetInterval(t *testing.T) {
	spec := JobSpec{Interval: "60s"}
	d, err := spec.GetInterval()
	if err != nil {
		t.Fatalf("GetInterval: %v", err)
	}
	if d != time.Minute {
		t.Errorf("interval = %v, want 1m", d)
	}

	spec = JobSpec{Interval: "5s"}
	if _, err := spec.GetInterval(); err == nil {
		t.Error("expected error for interval below minimum")
	}

	spec = JobSpec{Interval: "soon"}
	if _, err := spec.GetInterval(); err == nil {
		t.Error("expected error for unparseable interval")
	}
}

func TestFinancials_HasTwoPeriods(t *testing.T) {
	var nilFin *Financials
	if nilFin.HasTwoPeriods() {
		t.Error("nil Financials should not report two periods")
	}

	fin := &Financials{
		Revenue:   []FinancialValue{{Date: "2025-09-30", Value: 400e9}, {Date: "2024-09-30", Value: 380e9}},
		NetIncome: []FinancialValue{{Date: "2025-09-30", Value: 100e9}},
	}
	if fin.HasTwoPeriods() {
		t.Error("one net income period should not count as two")
	}

	fin.NetIncome = append(fin.NetIncome, FinancialValue{Date: "2024-09-30", Value: 95e9})
	if !fin.HasTwoPeriods() {
		t.Error("two periods of both rows should count")
	}
}
