// Package interfaces defines service contracts for sweep.
package interfaces

import (
	"context"

	"github.com/bobmcallan/sweep/internal/models"
)

// MarketDataClient provides the three external data feeds a scan consumes.
type MarketDataClient interface {
	// GetHeadlines retrieves up to limit recent headlines for a ticker by
	// scraping the provider's quote page. The page structure carries no
	// stability guarantee; callers must treat failures as empty news.
	GetHeadlines(ctx context.Context, ticker string, limit int) ([]string, error)

	// GetFinancials retrieves annual Total Revenue and Net Income figures,
	// most recent first.
	GetFinancials(ctx context.Context, ticker string) (*models.Financials, error)

	// GetDailyCloses retrieves daily closing prices for the trailing range
	// ("1mo", "3mo", "6mo", "1y"), oldest first.
	GetDailyCloses(ctx context.Context, ticker string, rng string) ([]models.PriceBar, error)
}

// AIClient generates text from a prompt. Implementations return the raw
// model output; parsing is the caller's concern.
type AIClient interface {
	GenerateContent(ctx context.Context, prompt string) (string, error)
	Model() string
}
