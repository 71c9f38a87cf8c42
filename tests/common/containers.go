// Package common provides shared test infrastructure
package common

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/testcontainers/testcontainers-go"
	"github.com/testcontainers/testcontainers-go/wait"
)

var (
	buildOnce  sync.Once
	buildError error
)

// EnvOptions configures the Docker test environment
type EnvOptions struct {
	// Env holds extra environment variables for the server container,
	// e.g. SWEEP_JWT_SECRET and SWEEP_API_KEY_HASH for auth tests.
	Env map[string]string
}

// Env represents an isolated Docker test environment running sweep-server.
type Env struct {
	t          *testing.T
	container  testcontainers.Container
	ctx        context.Context
	cancel     context.CancelFunc
	baseURL    string
	token      string
	httpClient *http.Client
	ResultsDir string
}

// buildTestImage builds the Docker image once per test run
func buildTestImage() error {
	buildOnce.Do(func() {
		ctx := context.Background()

		// Find project root (walk up from tests/common/)
		projectRoot := findProjectRoot()

		req := testcontainers.GenericContainerRequest{
			ContainerRequest: testcontainers.ContainerRequest{
				FromDockerfile: testcontainers.FromDockerfile{
					Context:    projectRoot,
					Dockerfile: "tests/docker/Dockerfile",
					Repo:       "sweep-server",
					Tag:        "test",
					KeepImage:  true,
				},
			},
		}

		// Build via a throwaway container request to cache the image
		_, buildError = testcontainers.GenericContainer(ctx, req)
		if buildError != nil {
			// If container creation failed but image built, that's ok
			if strings.Contains(buildError.Error(), "sweep-server:test") {
				buildError = nil
			}
		}
	})
	return buildError
}

// NewEnv creates a new isolated Docker test environment with default options.
// The container runs sweep-server on port 4252; use HTTPGet/HTTPPost for REST
// and MCPRequest for JSON-RPC over the /mcp endpoint.
func NewEnv(t *testing.T) *Env {
	return NewEnvWithOptions(t, EnvOptions{})
}

// NewEnvWithOptions creates a new isolated Docker test environment with custom options.
func NewEnvWithOptions(t *testing.T, opts EnvOptions) *Env {
	t.Helper()

	// Skip if Docker tests disabled
	if os.Getenv("SWEEP_TEST_DOCKER") != "true" {
		t.Skip("Docker tests disabled (set SWEEP_TEST_DOCKER=true to enable)")
		return nil
	}

	// Build image once
	if err := buildTestImage(); err != nil {
		t.Fatalf("Failed to build test image: %v", err)
	}

	// Create results directory with datetime prefix: {datetime}-{test-name}
	datetime := time.Now().Format("20060102-150405")
	resultsDir := filepath.Join(findProjectRoot(), "tests", "results", datetime+"-"+t.Name())
	if err := os.MkdirAll(resultsDir, 0755); err != nil {
		t.Fatalf("Failed to create results dir: %v", err)
	}

	// Create context with timeout
	timeout := 120 * time.Second
	if envTimeout := os.Getenv("SWEEP_TEST_TIMEOUT"); envTimeout != "" {
		if d, err := time.ParseDuration(envTimeout); err == nil {
			timeout = d
		}
	}
	ctx, cancel := context.WithTimeout(context.Background(), timeout)

	containerEnv := map[string]string{
		"SWEEP_HOST": "0.0.0.0",
	}
	for k, v := range opts.Env {
		containerEnv[k] = v
	}

	req := testcontainers.ContainerRequest{
		Image:        "sweep-server:test",
		ExposedPorts: []string{"4252/tcp"},
		Env:          containerEnv,
		WaitingFor:   wait.ForHTTP("/api/health").WithPort("4252/tcp").WithStartupTimeout(30 * time.Second),
	}

	container, err := testcontainers.GenericContainer(ctx, testcontainers.GenericContainerRequest{
		ContainerRequest: req,
		Started:          true,
	})
	if err != nil {
		cancel()
		t.Fatalf("Failed to start container: %v", err)
	}

	host, err := container.Host(ctx)
	if err != nil {
		container.Terminate(ctx)
		cancel()
		t.Fatalf("Failed to get container host: %v", err)
	}
	mappedPort, err := container.MappedPort(ctx, "4252/tcp")
	if err != nil {
		container.Terminate(ctx)
		cancel()
		t.Fatalf("Failed to get mapped port: %v", err)
	}

	env := &Env{
		t:          t,
		container:  container,
		ctx:        ctx,
		cancel:     cancel,
		baseURL:    fmt.Sprintf("http://%s:%s", host, mappedPort.Port()),
		httpClient: &http.Client{Timeout: 60 * time.Second},
		ResultsDir: resultsDir,
	}

	t.Logf("Container started at %s", env.baseURL)

	return env
}

// Cleanup tears down the container and collects logs.
// Uses a fresh context for teardown in case the main context expired.
func (e *Env) Cleanup() {
	if e == nil {
		return
	}

	// Collect container logs before teardown
	e.collectLogs()

	cleanupCtx, cleanupCancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cleanupCancel()

	if e.container != nil {
		if err := e.container.Terminate(cleanupCtx); err != nil {
			e.t.Logf("Warning: failed to terminate container: %v", err)
		}
	}

	if e.cancel != nil {
		e.cancel()
	}
}

// Context returns the test context
func (e *Env) Context() context.Context {
	return e.ctx
}

// BaseURL returns the mapped base URL of the running server.
func (e *Env) BaseURL() string {
	return e.baseURL
}

// SetToken sets a bearer token attached to all subsequent HTTP requests.
func (e *Env) SetToken(token string) {
	e.token = token
}

// HTTPGet performs a GET request against the server.
func (e *Env) HTTPGet(path string) (*http.Response, error) {
	req, err := http.NewRequestWithContext(e.ctx, http.MethodGet, e.baseURL+path, nil)
	if err != nil {
		return nil, err
	}
	e.addAuth(req)
	return e.httpClient.Do(req)
}

// HTTPPost performs a POST request with a JSON body against the server.
func (e *Env) HTTPPost(path string, body interface{}) (*http.Response, error) {
	var reader io.Reader
	if body != nil {
		data, err := json.Marshal(body)
		if err != nil {
			return nil, fmt.Errorf("marshal request body: %w", err)
		}
		reader = bytes.NewReader(data)
	}

	req, err := http.NewRequestWithContext(e.ctx, http.MethodPost, e.baseURL+path, reader)
	if err != nil {
		return nil, err
	}
	req.Header.Set("Content-Type", "application/json")
	e.addAuth(req)
	return e.httpClient.Do(req)
}

// HTTPDelete performs a DELETE request against the server.
func (e *Env) HTTPDelete(path string) (*http.Response, error) {
	req, err := http.NewRequestWithContext(e.ctx, http.MethodDelete, e.baseURL+path, nil)
	if err != nil {
		return nil, err
	}
	e.addAuth(req)
	return e.httpClient.Do(req)
}

func (e *Env) addAuth(req *http.Request) {
	if e.token != "" {
		req.Header.Set("Authorization", "Bearer "+e.token)
	}
}

// MCPRequest sends a JSON-RPC request to the /mcp endpoint over HTTP.
func (e *Env) MCPRequest(method string, params interface{}) (json.RawMessage, error) {
	reqBody := map[string]interface{}{
		"jsonrpc": "2.0",
		"id":      1,
		"method":  method,
		"params":  params,
	}

	bodyBytes, err := json.Marshal(reqBody)
	if err != nil {
		return nil, fmt.Errorf("marshal request: %w", err)
	}

	req, err := http.NewRequestWithContext(e.ctx, http.MethodPost, e.baseURL+"/mcp", bytes.NewReader(bodyBytes))
	if err != nil {
		return nil, err
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Accept", "application/json, text/event-stream")

	resp, err := e.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("mcp request failed: %w", err)
	}
	defer resp.Body.Close()

	output, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("read mcp response: %w", err)
	}

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("mcp endpoint returned %d: %s", resp.StatusCode, string(output))
	}

	return json.RawMessage(output), nil
}

// SaveResult saves test output to the results directory
func (e *Env) SaveResult(name string, data []byte) error {
	return os.WriteFile(filepath.Join(e.ResultsDir, name), data, 0644)
}

// OutputGuard returns a TestOutputGuard that uses the same results directory as this Env
func (e *Env) OutputGuard() *TestOutputGuard {
	return NewTestOutputGuardWithDir(e.t, e.ResultsDir)
}

// collectLogs saves container logs to results directory
func (e *Env) collectLogs() {
	if e.container == nil {
		return
	}

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	reader, err := e.container.Logs(ctx)
	if err != nil {
		e.t.Logf("Warning: failed to get container logs: %v", err)
		return
	}
	defer reader.Close()

	logs, err := io.ReadAll(reader)
	if err != nil {
		e.t.Logf("Warning: failed to read container logs: %v", err)
		return
	}

	logPath := filepath.Join(e.ResultsDir, "container.log")
	if err := os.WriteFile(logPath, logs, 0644); err != nil {
		e.t.Logf("Warning: failed to save logs: %v", err)
	}
}

// findProjectRoot walks up directories to find go.mod
func findProjectRoot() string {
	dir, _ := os.Getwd()
	for {
		if _, err := os.Stat(filepath.Join(dir, "go.mod")); err == nil {
			return dir
		}
		parent := filepath.Dir(dir)
		if parent == dir {
			return "."
		}
		dir = parent
	}
}

// TestOutputGuard validates test outputs
type TestOutputGuard struct {
	t          *testing.T
	outputs    map[string]string
	resultsDir string
}

// NewTestOutputGuard creates a new output guard with datetime-prefixed results directory
func NewTestOutputGuard(t *testing.T) *TestOutputGuard {
	datetime := time.Now().Format("20060102-150405")
	resultsDir := filepath.Join(findProjectRoot(), "tests", "results", datetime+"-"+t.Name())
	return &TestOutputGuard{
		t:          t,
		outputs:    make(map[string]string),
		resultsDir: resultsDir,
	}
}

// NewTestOutputGuardWithDir creates a new output guard with a specific results directory
func NewTestOutputGuardWithDir(t *testing.T, resultsDir string) *TestOutputGuard {
	return &TestOutputGuard{
		t:          t,
		outputs:    make(map[string]string),
		resultsDir: resultsDir,
	}
}

// ResultsDir returns the results directory path
func (g *TestOutputGuard) ResultsDir() string {
	return g.resultsDir
}

// AssertContains checks if output contains expected text
func (g *TestOutputGuard) AssertContains(output, expected string) {
	g.t.Helper()
	if !strings.Contains(output, expected) {
		g.t.Errorf("Expected output to contain %q, but it didn't.\nOutput: %s", expected, truncate(output, 500))
	}
}

// AssertNotContains checks if output does not contain text
func (g *TestOutputGuard) AssertNotContains(output, unexpected string) {
	g.t.Helper()
	if strings.Contains(output, unexpected) {
		g.t.Errorf("Expected output NOT to contain %q, but it did.\nOutput: %s", unexpected, truncate(output, 500))
	}
}

// SaveResult saves output to the results directory
func (g *TestOutputGuard) SaveResult(name, output string) error {
	g.outputs[name] = output

	if err := os.MkdirAll(g.resultsDir, 0755); err != nil {
		return err
	}

	outputPath := filepath.Join(g.resultsDir, name+".md")
	return os.WriteFile(outputPath, []byte(output), 0644)
}

func truncate(s string, maxLen int) string {
	if len(s) <= maxLen {
		return s
	}
	return s[:maxLen] + "..."
}

// FormatJSON pretty-prints JSON for readable output.
// It extracts the JSON from the response (which may be wrapped in SSE framing).
func FormatJSON(data json.RawMessage) string {
	cleaned := extractJSON(string(data))
	if cleaned == "" {
		return string(data)
	}

	var parsed interface{}
	if err := json.Unmarshal([]byte(cleaned), &parsed); err != nil {
		return string(data)
	}
	formatted, err := json.MarshalIndent(parsed, "", "  ")
	if err != nil {
		return string(data)
	}
	return string(formatted)
}

// FormatMCPContent extracts the markdown content from an MCP tool response.
// MCP responses contain a JSON-RPC wrapper with result.content[].text fields.
// This function extracts and concatenates all text content for readable output.
func FormatMCPContent(data json.RawMessage) string {
	resp, err := ParseMCPToolResponse(data)
	if err != nil {
		// Fall back to formatted JSON if parsing fails
		return FormatJSON(data)
	}

	// Check for JSON-RPC error
	if resp.Error != nil {
		return fmt.Sprintf("# MCP Error\n\nCode: %d\nMessage: %s\n", resp.Error.Code, resp.Error.Message)
	}

	// Check for tool error
	if resp.Result.IsError {
		var texts []string
		for _, c := range resp.Result.Content {
			if c.Type == "text" && c.Text != "" {
				texts = append(texts, c.Text)
			}
		}
		if len(texts) > 0 {
			return "# Tool Error\n\n" + strings.Join(texts, "\n")
		}
		return "# Tool Error\n\nUnknown error (no content)"
	}

	// Extract text content
	var texts []string
	for _, c := range resp.Result.Content {
		if c.Type == "text" && c.Text != "" {
			texts = append(texts, c.Text)
		}
	}

	if len(texts) == 0 {
		return "# Empty Response\n\nNo content returned from tool."
	}

	return strings.Join(texts, "\n")
}

// MCPToolResponse represents the structure of an MCP tools/call response
type MCPToolResponse struct {
	JSONRPC string `json:"jsonrpc"`
	ID      int    `json:"id"`
	Result  struct {
		Content []struct {
			Type string `json:"type"`
			Text string `json:"text"`
		} `json:"content"`
		IsError bool `json:"isError"`
	} `json:"result"`
	Error *struct {
		Code    int    `json:"code"`
		Message string `json:"message"`
	} `json:"error"`
}

// ParseMCPToolResponse parses an MCP tool response from raw JSON
func ParseMCPToolResponse(data json.RawMessage) (*MCPToolResponse, error) {
	// Strip any SSE framing or leading non-JSON content
	cleaned := extractJSON(string(data))
	if cleaned == "" {
		return nil, fmt.Errorf("no valid JSON found in response")
	}

	var resp MCPToolResponse
	if err := json.Unmarshal([]byte(cleaned), &resp); err != nil {
		return nil, fmt.Errorf("parse MCP response: %w", err)
	}
	return &resp, nil
}

// extractJSON finds and returns the first valid JSON object in the string
func extractJSON(s string) string {
	start := strings.Index(s, "{")
	if start == -1 {
		return ""
	}
	// Find the matching closing brace
	depth := 0
	for i := start; i < len(s); i++ {
		switch s[i] {
		case '{':
			depth++
		case '}':
			depth--
			if depth == 0 {
				return s[start : i+1]
			}
		}
	}
	return ""
}

// ValidateMCPToolResponse validates that an MCP tool response is successful.
// Returns an error if the response indicates an error or has empty content.
func ValidateMCPToolResponse(data json.RawMessage) error {
	resp, err := ParseMCPToolResponse(data)
	if err != nil {
		return err
	}

	// Check for JSON-RPC error
	if resp.Error != nil {
		return fmt.Errorf("MCP error [%d]: %s", resp.Error.Code, resp.Error.Message)
	}

	// Check for tool error flag
	if resp.Result.IsError {
		if len(resp.Result.Content) > 0 {
			return fmt.Errorf("MCP tool error: %s", resp.Result.Content[0].Text)
		}
		return fmt.Errorf("MCP tool returned error with no content")
	}

	// Check for empty content
	if len(resp.Result.Content) == 0 {
		return fmt.Errorf("MCP tool returned empty content")
	}

	// Check that content has actual text
	hasContent := false
	for _, c := range resp.Result.Content {
		if c.Text != "" {
			hasContent = true
			break
		}
	}
	if !hasContent {
		return fmt.Errorf("MCP tool returned content with no text")
	}

	return nil
}
