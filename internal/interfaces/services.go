package interfaces

import (
	"context"

	"github.com/bobmcallan/sweep/internal/models"
)

// ScanService runs the full scoring pipeline over a set of tickers.
type ScanService interface {
	// Scan resolves the ticker list, scores every ticker, and returns one
	// result per ticker in request order. Individual component failures
	// degrade to neutral scores; Scan only errors on an invalid request.
	Scan(ctx context.Context, req models.ScanRequest) (*models.ScanResponse, error)

	// ListUniverses returns the built-in and custom named ticker lists.
	ListUniverses() []models.Universe

	// ResolveUniverse returns the tickers of a named universe.
	ResolveUniverse(name string) ([]string, error)
}

// ReportService renders scan results into documents.
type ReportService interface {
	// Build renders the markdown report: a title, then one block per result
	// in input order.
	Build(results []models.ScanResult) string

	// RenderHTML converts a markdown report into a standalone HTML document.
	RenderHTML(markdown string) (string, error)

	// RenderTrendChart renders daily closes with the moving average overlay
	// as a PNG.
	RenderTrendChart(ticker string, bars []models.PriceBar) ([]byte, error)
}

// IntelService produces an optional AI brief for a completed scan.
type IntelService interface {
	// Summarize returns nil when the service is unconfigured or generation
	// fails; a scan never degrades because of the brief.
	Summarize(ctx context.Context, results []models.ScanResult) *models.ScanBrief

	// Enabled reports whether an AI client is configured.
	Enabled() bool
}

// ScheduleService manages recurring scans with caller-supplied intervals.
type ScheduleService interface {
	Add(spec models.JobSpec) (*models.Job, error)
	Get(id string) (*models.Job, error)
	List() []*models.Job
	Remove(id string) error

	// Stop halts the runner and waits for in-flight jobs.
	Stop(ctx context.Context) error
}

// Notifier delivers a rendered report.
type Notifier interface {
	// SendReport delivers the HTML report with a plain-text alternative.
	// A disabled notifier returns nil without sending.
	SendReport(subject, html, text string) error

	// Enabled reports whether delivery is configured.
	Enabled() bool
}
