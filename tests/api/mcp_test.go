package api

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/bobmcallan/sweep/tests/common"
)

// initializeMCP performs the MCP handshake against the /mcp endpoint.
func initializeMCP(t *testing.T, env *common.Env) {
	t.Helper()

	resp, err := env.MCPRequest("initialize", map[string]interface{}{
		"protocolVersion": "2025-03-26",
		"capabilities":    map[string]interface{}{},
		"clientInfo": map[string]interface{}{
			"name":    "sweep-integration-test",
			"version": "1.0.0",
		},
	})
	require.NoError(t, err)

	parsed, err := common.ParseMCPToolResponse(resp)
	require.NoError(t, err)
	require.Nil(t, parsed.Error, "initialize failed: %+v", parsed.Error)
}

func TestMCP_ListTools(t *testing.T) {
	env := common.NewEnv(t)
	if env == nil {
		return
	}
	defer env.Cleanup()

	initializeMCP(t, env)

	resp, err := env.MCPRequest("tools/list", map[string]interface{}{})
	require.NoError(t, err)

	var result struct {
		Result struct {
			Tools []struct {
				Name string `json:"name"`
			} `json:"tools"`
		} `json:"result"`
	}
	cleaned := common.FormatJSON(resp)
	require.NoError(t, json.Unmarshal([]byte(cleaned), &result), "response: %s", cleaned)

	toolNames := make(map[string]bool)
	for _, tool := range result.Result.Tools {
		toolNames[tool.Name] = true
	}

	expectedTools := []string{"get_version", "scan_market", "build_report", "list_universes"}
	for _, name := range expectedTools {
		assert.True(t, toolNames[name], "expected tool %q not found", name)
	}
}

func TestMCP_GetVersion(t *testing.T) {
	env := common.NewEnv(t)
	if env == nil {
		return
	}
	defer env.Cleanup()

	guard := env.OutputGuard()
	initializeMCP(t, env)

	resp, err := env.MCPRequest("tools/call", map[string]interface{}{
		"name":      "get_version",
		"arguments": map[string]interface{}{},
	})
	require.NoError(t, err)

	guard.SaveResult("01_get_version", common.FormatMCPContent(resp))
	require.NoError(t, common.ValidateMCPToolResponse(resp))

	content := common.FormatMCPContent(resp)
	guard.AssertContains(content, "Sweep MCP Server")
	guard.AssertContains(content, "Status: OK")
}

func TestMCP_ListUniverses(t *testing.T) {
	env := common.NewEnv(t)
	if env == nil {
		return
	}
	defer env.Cleanup()

	guard := env.OutputGuard()
	initializeMCP(t, env)

	resp, err := env.MCPRequest("tools/call", map[string]interface{}{
		"name":      "list_universes",
		"arguments": map[string]interface{}{},
	})
	require.NoError(t, err)

	guard.SaveResult("01_list_universes", common.FormatMCPContent(resp))
	require.NoError(t, common.ValidateMCPToolResponse(resp))

	content := common.FormatMCPContent(resp)
	guard.AssertContains(content, "etf")
	guard.AssertContains(content, "sector")
}

func TestMCP_ScanMarket_InvalidArguments(t *testing.T) {
	env := common.NewEnv(t)
	if env == nil {
		return
	}
	defer env.Cleanup()

	initializeMCP(t, env)

	// Neither tickers nor universe: the tool reports an error result
	resp, err := env.MCPRequest("tools/call", map[string]interface{}{
		"name":      "scan_market",
		"arguments": map[string]interface{}{},
	})
	require.NoError(t, err)

	err = common.ValidateMCPToolResponse(resp)
	assert.Error(t, err, "expected tool error for empty scan arguments")
}

func TestMCP_ScanMarketLive(t *testing.T) {
	requireNetwork(t)

	env := common.NewEnv(t)
	if env == nil {
		return
	}
	defer env.Cleanup()

	guard := env.OutputGuard()
	initializeMCP(t, env)

	resp, err := env.MCPRequest("tools/call", map[string]interface{}{
		"name": "scan_market",
		"arguments": map[string]interface{}{
			"tickers": []string{"AAPL"},
		},
	})
	require.NoError(t, err)

	guard.SaveResult("01_scan_market_live", common.FormatMCPContent(resp))
	require.NoError(t, common.ValidateMCPToolResponse(resp))

	content := common.FormatMCPContent(resp)
	guard.AssertContains(content, "AAPL")
}
