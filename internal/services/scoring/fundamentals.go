package scoring

import (
	"strings"

	"github.com/bobmcallan/sweep/internal/models"
)

// Fallback reasons for the fundamental component.
const (
	ReasonNoFinancials     = "No financials"
	ReasonFundamentalError = "Financial analysis error"
)

const (
	reasonRevenueGrowing   = "Revenue growing"
	reasonRevenueDeclining = "Revenue declining"
	reasonIncomeImproving  = "Net income improving"
	reasonIncomeDeclining  = "Net income declining"
)

// ScoreFundamentals scores year-over-year direction of revenue and net
// income: +10 per growing figure, -10 per declining one. A figure equal to
// the prior period counts as declining. Figures are expected most recent
// first, as the market data client returns them.
func ScoreFundamentals(fin *models.Financials) (int, string, models.ComponentStatus) {
	if fin == nil || (len(fin.Revenue) == 0 && len(fin.NetIncome) == 0) {
		return 0, ReasonNoFinancials, models.StatusEmpty
	}
	if !fin.HasTwoPeriods() {
		return 0, ReasonFundamentalError, models.StatusFailed
	}

	score := 0
	reasons := make([]string, 0, 2)

	if fin.Revenue[0].Value > fin.Revenue[1].Value {
		score += 10
		reasons = append(reasons, reasonRevenueGrowing)
	} else {
		score -= 10
		reasons = append(reasons, reasonRevenueDeclining)
	}

	if fin.NetIncome[0].Value > fin.NetIncome[1].Value {
		score += 10
		reasons = append(reasons, reasonIncomeImproving)
	} else {
		score -= 10
		reasons = append(reasons, reasonIncomeDeclining)
	}

	return score, strings.Join(reasons, ", "), models.StatusOK
}
