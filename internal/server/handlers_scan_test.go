package server

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/bobmcallan/sweep/internal/models"
)

func TestHandleScan_Success(t *testing.T) {
	srv, mocks := newTestServer(nil)

	body := strings.NewReader(`{"tickers":["aapl"]}`)
	req := httptest.NewRequest(http.MethodPost, "/api/scan", body)
	rec := httptest.NewRecorder()

	srv.handleScan(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", rec.Code, rec.Body.String())
	}

	var resp models.ScanResponse
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatalf("invalid JSON response: %v", err)
	}
	if len(resp.Results) != 1 {
		t.Fatalf("expected 1 result, got %d", len(resp.Results))
	}
	row := resp.Results[0]
	if row.Ticker != "AAPL" || row.FinalScore != 14 || row.Signal != "BEARISH" {
		t.Errorf("unexpected result row: %+v", row)
	}

	if len(mocks.scan.lastReq.Tickers) != 1 || mocks.scan.lastReq.Tickers[0] != "aapl" {
		t.Errorf("expected raw tickers passed to scan service, got %v", mocks.scan.lastReq.Tickers)
	}
}

func TestHandleScan_ValidationError(t *testing.T) {
	srv, mocks := newTestServer(nil)
	mocks.scan.scanFunc = func(ctx context.Context, req models.ScanRequest) (*models.ScanResponse, error) {
		return nil, errors.New("tickers or universe is required")
	}

	req := httptest.NewRequest(http.MethodPost, "/api/scan", strings.NewReader(`{}`))
	rec := httptest.NewRecorder()

	srv.handleScan(rec, req)

	if rec.Code != http.StatusBadRequest {
		t.Errorf("expected 400, got %d", rec.Code)
	}
	if !strings.Contains(rec.Body.String(), "tickers or universe is required") {
		t.Errorf("expected validation message, got: %s", rec.Body.String())
	}
}

func TestHandleScan_InvalidJSON(t *testing.T) {
	srv, _ := newTestServer(nil)

	req := httptest.NewRequest(http.MethodPost, "/api/scan", strings.NewReader(`{broken`))
	rec := httptest.NewRecorder()

	srv.handleScan(rec, req)

	if rec.Code != http.StatusBadRequest {
		t.Errorf("expected 400 for invalid JSON, got %d", rec.Code)
	}
}

func TestHandleScan_MethodNotAllowed(t *testing.T) {
	srv, _ := newTestServer(nil)

	req := httptest.NewRequest(http.MethodGet, "/api/scan", nil)
	rec := httptest.NewRecorder()

	srv.handleScan(rec, req)

	if rec.Code != http.StatusMethodNotAllowed {
		t.Errorf("expected 405, got %d", rec.Code)
	}
}

func TestHandleScan_WithIntel(t *testing.T) {
	srv, mocks := newTestServer(nil)
	mocks.intel.enabled = true
	mocks.intel.brief = &models.ScanBrief{Summary: "One bearish large cap."}

	body := strings.NewReader(`{"tickers":["AAPL"],"intel":true}`)
	req := httptest.NewRequest(http.MethodPost, "/api/scan", body)
	rec := httptest.NewRecorder()

	srv.handleScan(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}

	var resp models.ScanResponse
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatalf("invalid JSON response: %v", err)
	}
	if resp.Intel == nil || resp.Intel.Summary != "One bearish large cap." {
		t.Errorf("expected intel brief in response, got %+v", resp.Intel)
	}
	if !mocks.intel.called {
		t.Error("expected intel service to be invoked")
	}
}

func TestHandleScan_IntelDisabled(t *testing.T) {
	srv, mocks := newTestServer(nil)
	mocks.intel.enabled = false

	body := strings.NewReader(`{"tickers":["AAPL"],"intel":true}`)
	req := httptest.NewRequest(http.MethodPost, "/api/scan", body)
	rec := httptest.NewRecorder()

	srv.handleScan(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}

	var resp models.ScanResponse
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatalf("invalid JSON response: %v", err)
	}
	if resp.Intel != nil {
		t.Errorf("expected no intel when disabled, got %+v", resp.Intel)
	}
	if mocks.intel.called {
		t.Error("expected intel service not to be invoked when disabled")
	}
}
