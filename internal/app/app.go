// Package app wires configuration, clients, services and the MCP server into
// the shared core used by both cmd/sweep-server and cmd/sweep-mcp.
package app

import (
	"context"
	"fmt"
	"time"

	"github.com/mark3labs/mcp-go/server"

	"github.com/bobmcallan/sweep/internal/clients/gemini"
	"github.com/bobmcallan/sweep/internal/clients/yahoo"
	"github.com/bobmcallan/sweep/internal/common"
	"github.com/bobmcallan/sweep/internal/interfaces"
	"github.com/bobmcallan/sweep/internal/services/intel"
	"github.com/bobmcallan/sweep/internal/services/notify"
	"github.com/bobmcallan/sweep/internal/services/report"
	"github.com/bobmcallan/sweep/internal/services/scan"
	"github.com/bobmcallan/sweep/internal/services/schedule"
)

// App holds all initialized clients, services, and the MCP server.
type App struct {
	Config          *common.Config
	Logger          *common.Logger
	MarketClient    interfaces.MarketDataClient
	ScanService     interfaces.ScanService
	ReportService   interfaces.ReportService
	IntelService    interfaces.IntelService
	ScheduleService interfaces.ScheduleService
	Notifier        interfaces.Notifier
	MCPServer       *server.MCPServer
	StartupTime     time.Time

	gemini *gemini.Client
}

// NewApp initializes clients, services, the job scheduler, and the MCP server
// from an already-loaded configuration.
func NewApp(ctx context.Context, config *common.Config) (*App, error) {
	startupStart := time.Now()

	logger := common.NewLoggerFromConfig(config.Logging)

	marketClient := yahoo.NewClient(
		yahoo.WithLogger(logger),
		yahoo.WithBaseURL(config.Clients.Yahoo.BaseURL),
		yahoo.WithQuoteBaseURL(config.Clients.Yahoo.QuoteBaseURL),
		yahoo.WithUserAgent(config.Clients.Yahoo.UserAgent),
		yahoo.WithRateLimit(config.Clients.Yahoo.RateLimit),
		yahoo.WithTimeout(config.Clients.Yahoo.GetTimeout()),
	)

	var geminiClient *gemini.Client
	geminiKey := common.ResolveAPIKey("gemini_api_key", config.Clients.Gemini.APIKey)
	if geminiKey != "" {
		var err error
		geminiClient, err = gemini.NewClient(ctx, geminiKey,
			gemini.WithLogger(logger),
			gemini.WithModel(config.Clients.Gemini.Model),
		)
		if err != nil {
			logger.Warn().Err(err).Msg("Failed to initialize Gemini client - scan briefs will be unavailable")
			geminiClient = nil
		}
	} else {
		logger.Info().Msg("Gemini API key not configured - scan briefs will be unavailable")
	}

	scanService, err := scan.NewService(marketClient, config.Scan, logger)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize scan service: %w", err)
	}

	reportService := report.NewService(logger)

	// A typed nil must not reach the interface field, or Enabled() would
	// report a configured client.
	var aiClient interfaces.AIClient
	if geminiClient != nil {
		aiClient = geminiClient
	}
	intelService := intel.NewService(aiClient, logger)

	notifier := notify.NewEmailNotifier(config.Notify, logger)
	scheduleService := schedule.NewService(scanService, reportService, notifier, logger)

	mcpServer := server.NewMCPServer(
		"sweep",
		common.GetVersion(),
		server.WithToolCapabilities(true),
	)

	a := &App{
		Config:          config,
		Logger:          logger,
		MarketClient:    marketClient,
		ScanService:     scanService,
		ReportService:   reportService,
		IntelService:    intelService,
		ScheduleService: scheduleService,
		Notifier:        notifier,
		MCPServer:       mcpServer,
		StartupTime:     startupStart,
		gemini:          geminiClient,
	}

	// Register all MCP tools
	a.registerTools()

	logger.Info().Dur("startup", time.Since(startupStart)).Msg("App initialized")

	return a, nil
}

// Close releases all resources held by the App.
// Shutdown order: stop the scheduler (waits for in-flight jobs), close clients.
func (a *App) Close() {
	if a.ScheduleService != nil {
		ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		if err := a.ScheduleService.Stop(ctx); err != nil {
			a.Logger.Warn().Err(err).Msg("Scheduler did not stop cleanly")
		}
		cancel()
		a.ScheduleService = nil
	}
	if a.gemini != nil {
		a.gemini.Close()
		a.gemini = nil
	}
}

// registerTools registers all MCP tools on the App's MCPServer.
func (a *App) registerTools() {
	s := a.MCPServer
	logger := a.Logger

	s.AddTool(createGetVersionTool(), handleGetVersion())
	s.AddTool(createScanMarketTool(), handleScanMarket(a.ScanService, a.IntelService, logger))
	s.AddTool(createBuildReportTool(), handleBuildReport(a.ScanService, a.ReportService, logger))
	s.AddTool(createListUniversesTool(), handleListUniverses(a.ScanService))
}
