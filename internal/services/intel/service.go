// Package intel produces an optional AI brief for completed scans. The brief
// never gates a scan: when no AI client is configured or generation fails in
// any way, the scan simply carries no brief.
package intel

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/bobmcallan/sweep/internal/common"
	"github.com/bobmcallan/sweep/internal/interfaces"
	"github.com/bobmcallan/sweep/internal/models"
)

// Service implements IntelService.
type Service struct {
	ai     interfaces.AIClient
	logger *common.Logger
}

// NewService creates a new intel service. ai may be nil, which disables the
// service.
func NewService(ai interfaces.AIClient, logger *common.Logger) *Service {
	return &Service{ai: ai, logger: logger}
}

// Enabled reports whether an AI client is configured.
func (s *Service) Enabled() bool {
	return s.ai != nil
}

// Summarize generates a brief for the scan results. Returns nil when the
// service is disabled, the result set is empty, or generation or parsing
// fails.
func (s *Service) Summarize(ctx context.Context, results []models.ScanResult) *models.ScanBrief {
	if s.ai == nil || len(results) == 0 {
		return nil
	}

	prompt := buildBriefPrompt(results)

	response, err := s.ai.GenerateContent(ctx, prompt)
	if err != nil {
		s.logger.Warn().Err(err).Msg("Failed to generate scan brief")
		return nil
	}

	brief := parseBriefResponse(response)
	if brief == nil {
		s.logger.Warn().Msg("Failed to parse scan brief response")
		return nil
	}

	brief.Model = s.ai.Model()
	brief.GeneratedAt = time.Now().UTC()
	return brief
}

// buildBriefPrompt creates the prompt for the scan brief.
func buildBriefPrompt(results []models.ScanResult) string {
	var sb strings.Builder

	sb.WriteString("You are a market analyst. Summarize this scan of ")
	sb.WriteString(fmt.Sprintf("%d tickers. Each row: ticker, news score, fundamental score (reason), trend score (reason), final score, signal.\n\n", len(results)))

	for _, r := range results {
		sb.WriteString(fmt.Sprintf("%s: news=%d, fund=%d (%s), trend=%d (%s), final=%.2f, signal=%s\n",
			r.Ticker, r.News, r.Fund, r.FundReason, r.Trend, r.TrendReason, r.FinalScore, r.Signal))
	}

	sb.WriteString(`
Return ONLY valid JSON:
{
  "summary": "2-3 sentence overview of the scan: where the strength and weakness is concentrated",
  "highlights": ["ticker or theme worth attention, with a one-line why"],
  "cautions": ["ticker or theme to be careful with, with a one-line why"]
}

Rules:
- Scores marked with error reasons reflect missing data, not real weakness; say so rather than treating them as bearish
- Keep every entry to a single sentence
- Return ONLY the JSON object, no markdown code fences, no explanation`)

	return sb.String()
}

// briefResponse is the expected JSON shape from the model.
type briefResponse struct {
	Summary    string   `json:"summary"`
	Highlights []string `json:"highlights"`
	Cautions   []string `json:"cautions"`
}

// parseBriefResponse parses the model's JSON response into a ScanBrief.
func parseBriefResponse(response string) *models.ScanBrief {
	// Strip markdown code fences if present
	response = strings.TrimSpace(response)
	response = strings.TrimPrefix(response, "```json")
	response = strings.TrimPrefix(response, "```")
	response = strings.TrimSuffix(response, "```")
	response = strings.TrimSpace(response)

	var data briefResponse
	if err := json.Unmarshal([]byte(response), &data); err != nil {
		return nil
	}

	if data.Summary == "" {
		return nil
	}

	return &models.ScanBrief{
		Summary:    data.Summary,
		Highlights: data.Highlights,
		Cautions:   data.Cautions,
	}
}

// Ensure Service implements IntelService
var _ interfaces.IntelService = (*Service)(nil)
