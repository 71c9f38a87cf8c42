// Package report renders scan results into documents: a markdown report, a
// standalone HTML download, and per-ticker trend charts.
package report

import (
	"bytes"
	"fmt"
	"strconv"
	"strings"

	"github.com/yuin/goldmark"
	"github.com/yuin/goldmark/extension"
	htmlrenderer "github.com/yuin/goldmark/renderer/html"

	"github.com/bobmcallan/sweep/internal/common"
	"github.com/bobmcallan/sweep/internal/interfaces"
	"github.com/bobmcallan/sweep/internal/models"
)

// Download contract for the HTML report.
const (
	ReportFileName = "market_report.html"
	ReportMIME     = "text/html"
)

// ReportTitle is the fixed top-level heading of every report.
const ReportTitle = "Market Scanner Report"

// Service implements ReportService.
type Service struct {
	logger *common.Logger
}

// NewService creates a new report service.
func NewService(logger *common.Logger) *Service {
	return &Service{logger: logger}
}

// Build renders the markdown report: the title, then one block per result in
// input order with the final score and signal, the news score, and the
// fundamental and trend scores with their reasons. Pure string construction;
// an empty result list produces the title alone.
func (s *Service) Build(results []models.ScanResult) string {
	var sb strings.Builder

	sb.WriteString("# " + ReportTitle + "\n")

	for _, r := range results {
		sb.WriteString(fmt.Sprintf("\n### %s\n\n", r.Ticker))
		sb.WriteString(fmt.Sprintf("Score: %s — %s\n\n", formatScore(r.FinalScore), r.Signal))
		sb.WriteString(fmt.Sprintf("News Score: %d\n\n", r.News))
		sb.WriteString(fmt.Sprintf("Fundamentals: %d (%s)\n\n", r.Fund, r.FundReason))
		sb.WriteString(fmt.Sprintf("Trend: %d (%s)\n\n", r.Trend, r.TrendReason))
		sb.WriteString("---\n")
	}

	return sb.String()
}

// formatScore prints a final score without trailing zeros.
func formatScore(v float64) string {
	return strconv.FormatFloat(v, 'f', -1, 64)
}

// RenderHTML converts a markdown report into a complete styled HTML document
// for download.
func (s *Service) RenderHTML(markdown string) (string, error) {
	md := goldmark.New(
		goldmark.WithExtensions(extension.GFM),
		goldmark.WithRendererOptions(
			htmlrenderer.WithHardWraps(),
			htmlrenderer.WithXHTML(),
		),
	)

	var buf bytes.Buffer
	if err := md.Convert([]byte(markdown), &buf); err != nil {
		return "", fmt.Errorf("failed to convert report markdown: %w", err)
	}

	return wrapInDocumentTemplate(buf.String()), nil
}

// wrapInDocumentTemplate wraps rendered HTML content in a styled standalone
// document.
func wrapInDocumentTemplate(content string) string {
	return `<!DOCTYPE html>
<html>
<head>
  <meta charset="UTF-8">
  <meta name="viewport" content="width=device-width, initial-scale=1.0">
  <title>` + ReportTitle + `</title>
  <style>
    body {
      font-family: -apple-system, BlinkMacSystemFont, 'Segoe UI', Roboto, 'Helvetica Neue', Arial, sans-serif;
      line-height: 1.6;
      color: #333;
      max-width: 800px;
      margin: 0 auto;
      padding: 20px;
    }
    h1 { color: #1a1a1a; font-size: 24px; border-bottom: 2px solid #eee; padding-bottom: 10px; }
    h3 { color: #3a3a3a; font-size: 16px; margin-top: 20px; }
    p { margin: 12px 0; }
    hr { border: none; border-top: 1px solid #eee; margin: 24px 0; }
    table { border-collapse: collapse; width: 100%; margin: 16px 0; }
    th, td { border: 1px solid #ddd; padding: 8px 12px; text-align: left; }
    th { background: #f4f4f4; font-weight: 600; }
  </style>
</head>
<body>
` + content + `</body>
</html>`
}

// Ensure Service implements ReportService
var _ interfaces.ReportService = (*Service)(nil)
