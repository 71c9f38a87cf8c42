package server

import (
	"fmt"
	"net/http"
	"strings"

	"github.com/bobmcallan/sweep/internal/models"
	"github.com/bobmcallan/sweep/internal/services/report"
)

// handleReport handles POST /api/report
func (s *Server) handleReport(w http.ResponseWriter, r *http.Request) {
	if !RequireMethod(w, r, http.MethodPost) {
		return
	}

	format := r.URL.Query().Get("format")
	if format == "" {
		format = "html"
	}
	if format != "html" && format != "markdown" {
		WriteError(w, http.StatusBadRequest, "format must be html or markdown")
		return
	}

	var req models.ScanRequest
	if !DecodeJSON(w, r, &req) {
		return
	}

	resp, err := s.app.ScanService.Scan(r.Context(), req)
	if err != nil {
		WriteError(w, http.StatusBadRequest, err.Error())
		return
	}

	markdown := s.app.ReportService.Build(resp.Results)

	if format == "markdown" {
		w.Header().Set("Content-Type", "text/markdown; charset=utf-8")
		w.WriteHeader(http.StatusOK)
		w.Write([]byte(markdown))
		return
	}

	html, err := s.app.ReportService.RenderHTML(markdown)
	if err != nil {
		s.logger.Error().Err(err).Msg("Report HTML rendering failed")
		WriteError(w, http.StatusInternalServerError, "Failed to render report")
		return
	}

	w.Header().Set("Content-Type", report.ReportMIME)
	w.Header().Set("Content-Disposition", fmt.Sprintf("attachment; filename=%q", report.ReportFileName))
	w.WriteHeader(http.StatusOK)
	w.Write([]byte(html))
}

// handleTickerChart handles GET /api/tickers/{ticker}/chart
func (s *Server) handleTickerChart(w http.ResponseWriter, r *http.Request, ticker string) {
	if !RequireMethod(w, r, http.MethodGet) {
		return
	}

	ticker = strings.ToUpper(strings.TrimSpace(ticker))
	if ticker == "" {
		WriteError(w, http.StatusBadRequest, "ticker is required in path")
		return
	}

	rng := r.URL.Query().Get("range")
	if rng == "" {
		rng = s.app.Config.Scan.PriceRange
	}

	bars, err := s.app.MarketClient.GetDailyCloses(r.Context(), ticker, rng)
	if err != nil {
		s.logger.Error().Err(err).Str("ticker", ticker).Msg("Chart price fetch failed")
		WriteError(w, http.StatusBadGateway, "Failed to fetch price history")
		return
	}

	png, err := s.app.ReportService.RenderTrendChart(ticker, bars)
	if err != nil {
		WriteError(w, http.StatusBadRequest, err.Error())
		return
	}

	w.Header().Set("Content-Type", "image/png")
	w.WriteHeader(http.StatusOK)
	w.Write(png)
}
