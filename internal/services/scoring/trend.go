package scoring

import "github.com/bobmcallan/sweep/internal/models"

// TrendWindow is the simple-moving-average period for the trend component.
const TrendWindow = 20

// Fallback reasons for the trend component.
const (
	ReasonNoData     = "No data"
	ReasonTrendError = "Trend error"
)

const (
	reasonUptrend   = "Uptrend"
	reasonDowntrend = "Downtrend"
)

// SMA calculates the simple moving average of the last period closes.
// Bars are expected oldest first. Returns 0 with insufficient data.
func SMA(bars []models.PriceBar, period int) float64 {
	if period <= 0 || len(bars) < period {
		return 0
	}

	sum := 0.0
	for _, bar := range bars[len(bars)-period:] {
		sum += bar.Close
	}
	return sum / float64(period)
}

// ScoreTrend compares the latest close against the 20-period moving average:
// above scores +10 as an uptrend, at or below scores -10 as a downtrend.
// With fewer bars than the window the average is undefined, so the component
// scores as a trend error rather than comparing against a partial window.
func ScoreTrend(bars []models.PriceBar) (int, string, models.ComponentStatus) {
	if len(bars) == 0 {
		return 0, ReasonNoData, models.StatusEmpty
	}
	if len(bars) < TrendWindow {
		return 0, ReasonTrendError, models.StatusFailed
	}

	latest := bars[len(bars)-1].Close
	if latest > SMA(bars, TrendWindow) {
		return 10, reasonUptrend, models.StatusOK
	}
	return -10, reasonDowntrend, models.StatusOK
}
