package app

import (
	"github.com/mark3labs/mcp-go/mcp"
)

// createGetVersionTool returns the get_version tool definition
func createGetVersionTool() mcp.Tool {
	return mcp.NewTool("get_version",
		mcp.WithDescription("Get the sweep MCP server version and status. Use this to verify connectivity."),
	)
}

// createScanMarketTool returns the scan_market tool definition
func createScanMarketTool() mcp.Tool {
	return mcp.NewTool("scan_market",
		mcp.WithDescription("Scan tickers for news sentiment, fundamental direction, and price trend. Returns one scored row per ticker with a composite signal from STRONG BEARISH to STRONG BULLISH."),
		mcp.WithArray("tickers",
			mcp.WithStringItems(),
			mcp.Description("Tickers to scan (e.g., ['AAPL', 'MSFT']). Provide either tickers or universe, not both."),
		),
		mcp.WithString("universe",
			mcp.Description("Named ticker list to scan instead of explicit tickers (e.g., 'sector', 'etf'). Use list_universes to see what is available."),
		),
		mcp.WithNumber("news_weight",
			mcp.Description("Weight of the news component, 0-50 (default: 20)"),
		),
		mcp.WithNumber("fundamental_weight",
			mcp.Description("Weight of the fundamental component, 0-50 (default: 20)"),
		),
		mcp.WithNumber("trend_weight",
			mcp.Description("Weight of the trend component, 0-50 (default: 20)"),
		),
		mcp.WithBoolean("intel",
			mcp.Description("Include an AI brief of the scan results (default: false; requires a configured Gemini key)"),
		),
	)
}

// createBuildReportTool returns the build_report tool definition
func createBuildReportTool() mcp.Tool {
	return mcp.NewTool("build_report",
		mcp.WithDescription("Run a scan and return the full markdown report: a title followed by one block per ticker with score, signal, and component breakdowns."),
		mcp.WithArray("tickers",
			mcp.WithStringItems(),
			mcp.Description("Tickers to report on (e.g., ['AAPL', 'MSFT']). Provide either tickers or universe, not both."),
		),
		mcp.WithString("universe",
			mcp.Description("Named ticker list to report on instead of explicit tickers (e.g., 'sector', 'etf')."),
		),
		mcp.WithNumber("news_weight",
			mcp.Description("Weight of the news component, 0-50 (default: 20)"),
		),
		mcp.WithNumber("fundamental_weight",
			mcp.Description("Weight of the fundamental component, 0-50 (default: 20)"),
		),
		mcp.WithNumber("trend_weight",
			mcp.Description("Weight of the trend component, 0-50 (default: 20)"),
		),
	)
}

// createListUniversesTool returns the list_universes tool definition
func createListUniversesTool() mcp.Tool {
	return mcp.NewTool("list_universes",
		mcp.WithDescription("List the built-in and custom ticker universes available to scan_market and build_report."),
	)
}
