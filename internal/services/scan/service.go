// Package scan orchestrates the per-ticker scoring pipeline: headlines,
// financial statements and price history are fetched per ticker, scored, and
// blended into one weighted result per symbol.
package scan

import (
	"context"
	"sync"
	"time"

	"github.com/bobmcallan/sweep/internal/common"
	"github.com/bobmcallan/sweep/internal/interfaces"
	"github.com/bobmcallan/sweep/internal/models"
	"github.com/bobmcallan/sweep/internal/services/scoring"
)

// MaxHeadlines is the number of headlines collected per ticker.
const MaxHeadlines = 5

// Service implements ScanService.
type Service struct {
	market     interfaces.MarketDataClient
	logger     *common.Logger
	maxWorkers int
	priceRange string
	custom     map[string][]string
}

// NewService creates a new scan service. When cfg names a universes file it
// is read once here; the file is an input, not persisted state.
func NewService(market interfaces.MarketDataClient, cfg common.ScanConfig, logger *common.Logger) (*Service, error) {
	custom, err := loadUniversesFile(cfg.UniversesFile)
	if err != nil {
		return nil, err
	}

	maxWorkers := cfg.MaxConcurrency
	if maxWorkers < 1 {
		maxWorkers = 1
	}

	priceRange := cfg.PriceRange
	if priceRange == "" {
		priceRange = "3mo"
	}

	return &Service{
		market:     market,
		logger:     logger,
		maxWorkers: maxWorkers,
		priceRange: priceRange,
		custom:     custom,
	}, nil
}

// Scan runs the pipeline for every requested ticker. Tickers are scanned
// concurrently under a worker limit and joined back in request order; every
// requested ticker yields exactly one result. Component fetch failures
// degrade that component to its neutral fallback and never fail the scan.
func (s *Service) Scan(ctx context.Context, req models.ScanRequest) (*models.ScanResponse, error) {
	start := time.Now()

	req.Normalize()
	if err := req.Validate(); err != nil {
		return nil, err
	}

	tickers := req.Tickers
	if req.Universe != "" {
		resolved, err := s.ResolveUniverse(req.Universe)
		if err != nil {
			return nil, err
		}
		tickers = resolved
	}

	weights := *req.Weights

	if len(tickers) == 0 {
		return &models.ScanResponse{
			Results: []models.ScanResult{},
			Meta: models.ScanMeta{
				Requested:   0,
				Returned:    0,
				Universe:    req.Universe,
				Weights:     weights,
				ExecutedAt:  time.Now().UTC(),
				QueryTimeMS: time.Since(start).Milliseconds(),
			},
		}, nil
	}

	s.logger.Debug().
		Int("tickers", len(tickers)).
		Str("universe", req.Universe).
		Int("workers", s.maxWorkers).
		Msg("Executing market scan")

	results := make([]models.ScanResult, len(tickers))

	var wg sync.WaitGroup
	sem := make(chan struct{}, s.maxWorkers)

	for i, ticker := range tickers {
		wg.Add(1)
		sem <- struct{}{}

		go func(idx int, t string) {
			defer wg.Done()
			defer func() { <-sem }()

			results[idx] = s.scanTicker(ctx, t, weights)
		}(i, ticker)
	}

	wg.Wait()

	s.logger.Info().
		Int("tickers", len(tickers)).
		Int64("query_time_ms", time.Since(start).Milliseconds()).
		Msg("Market scan complete")

	return &models.ScanResponse{
		Results: results,
		Meta: models.ScanMeta{
			Requested:   len(tickers),
			Returned:    len(results),
			Universe:    req.Universe,
			Weights:     weights,
			ExecutedAt:  time.Now().UTC(),
			QueryTimeMS: time.Since(start).Milliseconds(),
		},
	}, nil
}

// scanTicker runs the full pipeline for one ticker. Each component catches
// its own fetch failure and degrades to the neutral fallback, so the result
// is always complete; the status fields record which components actually saw
// data.
func (s *Service) scanTicker(ctx context.Context, ticker string, weights models.WeightConfig) models.ScanResult {
	news, headlineCount, newsStatus := s.scoreNews(ctx, ticker)
	fund, fundReason, fundStatus := s.scoreFundamentals(ctx, ticker)
	trend, trendReason, trendStatus := s.scoreTrend(ctx, ticker)

	final := scoring.Aggregate(news, fund, trend, weights)

	return models.ScanResult{
		Ticker:      ticker,
		News:        news,
		NewsStatus:  newsStatus,
		Headlines:   headlineCount,
		Fund:        fund,
		FundReason:  fundReason,
		FundStatus:  fundStatus,
		Trend:       trend,
		TrendReason: trendReason,
		TrendStatus: trendStatus,
		FinalScore:  final,
		Signal:      scoring.Classify(final),
	}
}

func (s *Service) scoreNews(ctx context.Context, ticker string) (int, int, models.ComponentStatus) {
	headlines, err := s.market.GetHeadlines(ctx, ticker, MaxHeadlines)
	if err != nil {
		s.logger.Warn().Str("ticker", ticker).Err(err).Msg("Headline fetch failed")
		return 0, 0, models.StatusFailed
	}
	if len(headlines) == 0 {
		return 0, 0, models.StatusEmpty
	}
	return scoring.NewsScore(headlines), len(headlines), models.StatusOK
}

func (s *Service) scoreFundamentals(ctx context.Context, ticker string) (int, string, models.ComponentStatus) {
	fin, err := s.market.GetFinancials(ctx, ticker)
	if err != nil {
		s.logger.Warn().Str("ticker", ticker).Err(err).Msg("Financials fetch failed")
		return 0, scoring.ReasonFundamentalError, models.StatusFailed
	}
	return scoring.ScoreFundamentals(fin)
}

func (s *Service) scoreTrend(ctx context.Context, ticker string) (int, string, models.ComponentStatus) {
	bars, err := s.market.GetDailyCloses(ctx, ticker, s.priceRange)
	if err != nil {
		s.logger.Warn().Str("ticker", ticker).Err(err).Msg("Price history fetch failed")
		return 0, scoring.ReasonTrendError, models.StatusFailed
	}
	return scoring.ScoreTrend(bars)
}

// Ensure Service implements ScanService
var _ interfaces.ScanService = (*Service)(nil)
