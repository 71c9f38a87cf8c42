package app

import (
	"context"
	"fmt"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"

	"github.com/bobmcallan/sweep/internal/common"
	"github.com/bobmcallan/sweep/internal/interfaces"
	"github.com/bobmcallan/sweep/internal/models"
)

// handleGetVersion implements the get_version tool
func handleGetVersion() server.ToolHandlerFunc {
	return func(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		result := fmt.Sprintf("Sweep MCP Server\nVersion: %s\nBuild: %s\nCommit: %s\nStatus: OK",
			common.GetVersion(), common.GetBuild(), common.GetGitCommit())
		return textResult(result), nil
	}
}

// handleScanMarket implements the scan_market tool
func handleScanMarket(scanService interfaces.ScanService, intelService interfaces.IntelService, logger *common.Logger) server.ToolHandlerFunc {
	return func(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		req := scanRequestFromParams(request)
		req.Intel = request.GetBool("intel", false)

		resp, err := scanService.Scan(ctx, req)
		if err != nil {
			logger.Error().Err(err).Msg("Market scan failed")
			return errorResult(fmt.Sprintf("Scan error: %v", err)), nil
		}

		if req.Intel && intelService.Enabled() {
			resp.Intel = intelService.Summarize(ctx, resp.Results)
		}

		return textResult(formatScanResponse(resp)), nil
	}
}

// handleBuildReport implements the build_report tool
func handleBuildReport(scanService interfaces.ScanService, reportService interfaces.ReportService, logger *common.Logger) server.ToolHandlerFunc {
	return func(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		req := scanRequestFromParams(request)

		resp, err := scanService.Scan(ctx, req)
		if err != nil {
			logger.Error().Err(err).Msg("Report scan failed")
			return errorResult(fmt.Sprintf("Report error: %v", err)), nil
		}

		return textResult(reportService.Build(resp.Results)), nil
	}
}

// handleListUniverses implements the list_universes tool
func handleListUniverses(scanService interfaces.ScanService) server.ToolHandlerFunc {
	return func(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		return textResult(formatUniverses(scanService.ListUniverses())), nil
	}
}

// scanRequestFromParams builds a ScanRequest from the parameters shared by
// scan_market and build_report. Weight parameters the caller omits fall back
// to the default weight, matching request normalization.
func scanRequestFromParams(request mcp.CallToolRequest) models.ScanRequest {
	return models.ScanRequest{
		Tickers:  request.GetStringSlice("tickers", nil),
		Universe: request.GetString("universe", ""),
		Weights: &models.WeightConfig{
			News:        request.GetInt("news_weight", models.DefaultWeight),
			Fundamental: request.GetInt("fundamental_weight", models.DefaultWeight),
			Trend:       request.GetInt("trend_weight", models.DefaultWeight),
		},
	}
}

// Helper functions

func textResult(text string) *mcp.CallToolResult {
	return &mcp.CallToolResult{
		Content: []mcp.Content{
			mcp.NewTextContent(text),
		},
	}
}

func errorResult(message string) *mcp.CallToolResult {
	return &mcp.CallToolResult{
		Content: []mcp.Content{
			mcp.NewTextContent(message),
		},
		IsError: true,
	}
}
