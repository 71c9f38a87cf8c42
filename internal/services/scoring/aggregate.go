// Package scoring implements the sentiment, fundamental, trend, aggregation
// and classification arithmetic for market scans. Everything here is pure and
// deterministic; data retrieval lives in the clients.
package scoring

import (
	"math"

	"github.com/bobmcallan/sweep/internal/models"
)

// Signal labels, most bullish first.
const (
	SignalStrongBullish = "STRONG BULLISH"
	SignalBullish       = "BULLISH"
	SignalNeutral       = "NEUTRAL"
	SignalBearish       = "BEARISH"
	SignalStrongBearish = "STRONG BEARISH"
)

// Aggregate blends the three component scores with the caller's weights.
// Each weight is a fraction of full influence (50 applies the whole score,
// 0 excludes the component). The blend is linear, not a normalized average,
// so the output scale follows the weight sum. Rounded to 2 decimal places.
func Aggregate(newsScore, fundScore, trendScore int, weights models.WeightConfig) float64 {
	final := float64(newsScore)*(float64(weights.News)/models.MaxWeight) +
		float64(fundScore)*(float64(weights.Fundamental)/models.MaxWeight) +
		float64(trendScore)*(float64(weights.Trend)/models.MaxWeight)
	return Round2(final)
}

// Round2 rounds half away from zero to 2 decimal places.
func Round2(x float64) float64 {
	return math.Round(x*100) / 100
}

// Classify maps a final score onto the five signal bands. Thresholds are
// checked in descending order; each boundary value belongs to the higher
// band, so the bands partition the whole number line.
func Classify(final float64) string {
	switch {
	case final >= 60:
		return SignalStrongBullish
	case final >= 40:
		return SignalBullish
	case final >= 25:
		return SignalNeutral
	case final >= 10:
		return SignalBearish
	default:
		return SignalStrongBearish
	}
}
