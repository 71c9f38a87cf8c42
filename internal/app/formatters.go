package app

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/bobmcallan/sweep/internal/models"
)

// formatScanResponse formats a scan response as markdown: metadata lines, a
// results table, and the AI brief when present.
func formatScanResponse(resp *models.ScanResponse) string {
	var sb strings.Builder

	sb.WriteString("# Market Scan\n\n")
	sb.WriteString(fmt.Sprintf("**Executed:** %s\n", resp.Meta.ExecutedAt.Format("2006-01-02 15:04:05 MST")))
	if resp.Meta.Universe != "" {
		sb.WriteString(fmt.Sprintf("**Universe:** %s\n", resp.Meta.Universe))
	}
	sb.WriteString(fmt.Sprintf("**Weights:** news=%d fundamental=%d trend=%d\n\n",
		resp.Meta.Weights.News, resp.Meta.Weights.Fundamental, resp.Meta.Weights.Trend))

	if len(resp.Results) == 0 {
		sb.WriteString("No tickers scanned.\n")
		return sb.String()
	}

	sb.WriteString("| Ticker | News | Fundamentals | Trend | Final | Signal |\n")
	sb.WriteString("|--------|------|--------------|-------|-------|--------|\n")
	for _, r := range resp.Results {
		sb.WriteString(fmt.Sprintf("| %s | %d | %d (%s) | %d (%s) | %s | %s |\n",
			r.Ticker, r.News, r.Fund, r.FundReason, r.Trend, r.TrendReason,
			formatScore(r.FinalScore), r.Signal))
	}

	if resp.Intel != nil {
		sb.WriteString("\n## Brief\n\n")
		sb.WriteString(resp.Intel.Summary)
		sb.WriteString("\n")
		for _, h := range resp.Intel.Highlights {
			sb.WriteString(fmt.Sprintf("- %s\n", h))
		}
		if len(resp.Intel.Cautions) > 0 {
			sb.WriteString("\n**Cautions:**\n")
			for _, c := range resp.Intel.Cautions {
				sb.WriteString(fmt.Sprintf("- %s\n", c))
			}
		}
	}

	return sb.String()
}

// formatUniverses formats the universe list as markdown.
func formatUniverses(universes []models.Universe) string {
	if len(universes) == 0 {
		return "No universes configured."
	}

	var sb strings.Builder
	sb.WriteString("# Universes\n\n")
	for _, u := range universes {
		kind := "custom"
		if u.Builtin {
			kind = "built-in"
		}
		sb.WriteString(fmt.Sprintf("- **%s** (%s, %d tickers): %s\n",
			u.Name, kind, len(u.Tickers), strings.Join(u.Tickers, ", ")))
	}
	return sb.String()
}

// formatScore renders a final score without trailing zeros.
func formatScore(v float64) string {
	return strconv.FormatFloat(v, 'f', -1, 64)
}
