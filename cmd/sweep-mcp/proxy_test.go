package main

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"
)

// TestRunWithIO_ForwardsRequests verifies JSON-RPC lines are posted to the
// server and responses written back one per line.
func TestRunWithIO_ForwardsRequests(t *testing.T) {
	var received []string
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		var req struct {
			ID json.RawMessage `json:"id"`
		}
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			t.Errorf("Server received invalid JSON: %v", err)
		}
		received = append(received, string(req.ID))
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{"jsonrpc":"2.0","id":` + string(req.ID) + `,"result":{}}` + "\n"))
	}))
	defer ts.Close()

	proxy := &StdioProxy{serverURL: ts.URL, httpClient: ts.Client()}

	input := `{"jsonrpc":"2.0","id":1,"method":"tools/list"}
{"jsonrpc":"2.0","id":2,"method":"tools/list"}
`
	var out strings.Builder
	if err := proxy.RunWithIO(strings.NewReader(input), &out); err != nil {
		t.Fatalf("RunWithIO failed: %v", err)
	}

	if len(received) != 2 {
		t.Fatalf("Expected 2 forwarded requests, got %d", len(received))
	}

	lines := strings.Split(strings.TrimSpace(out.String()), "\n")
	if len(lines) != 2 {
		t.Fatalf("Expected 2 response lines, got %d: %q", len(lines), out.String())
	}
	for i, line := range lines {
		var resp struct {
			ID int `json:"id"`
		}
		if err := json.Unmarshal([]byte(line), &resp); err != nil {
			t.Fatalf("Response line %d is not JSON: %v", i, err)
		}
		if resp.ID != i+1 {
			t.Errorf("Response %d: expected id %d, got %d", i, i+1, resp.ID)
		}
	}
}

// TestRunWithIO_SkipsBlankLines verifies empty input lines are not forwarded.
func TestRunWithIO_SkipsBlankLines(t *testing.T) {
	calls := 0
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls++
		w.Write([]byte(`{"jsonrpc":"2.0","id":1,"result":{}}`))
	}))
	defer ts.Close()

	proxy := &StdioProxy{serverURL: ts.URL, httpClient: ts.Client()}

	input := "\n\n" + `{"jsonrpc":"2.0","id":1,"method":"ping"}` + "\n\n"
	var out strings.Builder
	if err := proxy.RunWithIO(strings.NewReader(input), &out); err != nil {
		t.Fatalf("RunWithIO failed: %v", err)
	}

	if calls != 1 {
		t.Errorf("Expected 1 forwarded request, got %d", calls)
	}
}

// TestRunWithIO_ServerErrorBecomesJSONRPCError verifies an HTTP failure is
// reported as a JSON-RPC error carrying the original request ID.
func TestRunWithIO_ServerErrorBecomesJSONRPCError(t *testing.T) {
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "boom", http.StatusInternalServerError)
	}))
	defer ts.Close()

	proxy := &StdioProxy{serverURL: ts.URL, httpClient: ts.Client()}

	input := `{"jsonrpc":"2.0","id":42,"method":"tools/call"}` + "\n"
	var out strings.Builder
	if err := proxy.RunWithIO(strings.NewReader(input), &out); err != nil {
		t.Fatalf("RunWithIO failed: %v", err)
	}

	var resp struct {
		ID    int `json:"id"`
		Error struct {
			Code    int    `json:"code"`
			Message string `json:"message"`
		} `json:"error"`
	}
	if err := json.Unmarshal([]byte(strings.TrimSpace(out.String())), &resp); err != nil {
		t.Fatalf("Error response is not JSON: %v", err)
	}

	if resp.ID != 42 {
		t.Errorf("Expected error response id 42, got %d", resp.ID)
	}
	if resp.Error.Code != -32000 {
		t.Errorf("Expected error code -32000, got %d", resp.Error.Code)
	}
	if !strings.Contains(resp.Error.Message, "500") {
		t.Errorf("Expected status code in error message, got %q", resp.Error.Message)
	}
}

// TestRunWithIO_UnreachableServer verifies connection failures produce a
// JSON-RPC error instead of killing the loop.
func TestRunWithIO_UnreachableServer(t *testing.T) {
	proxy := &StdioProxy{
		serverURL:  "http://127.0.0.1:1/mcp",
		httpClient: &http.Client{Timeout: time.Second},
	}

	input := `{"jsonrpc":"2.0","id":7,"method":"ping"}` + "\n"
	var out strings.Builder
	if err := proxy.RunWithIO(strings.NewReader(input), &out); err != nil {
		t.Fatalf("RunWithIO failed: %v", err)
	}

	if !strings.Contains(out.String(), `"code":-32000`) {
		t.Errorf("Expected JSON-RPC error output, got %q", out.String())
	}
}

// TestExtractID covers the id recovery used for error responses.
func TestExtractID(t *testing.T) {
	tests := []struct {
		name  string
		input string
		want  string
	}{
		{"numeric id", `{"jsonrpc":"2.0","id":5}`, "5"},
		{"string id", `{"jsonrpc":"2.0","id":"abc"}`, `"abc"`},
		{"missing id", `{"jsonrpc":"2.0"}`, "null"},
		{"invalid json", `{notjson`, "null"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := string(extractID([]byte(tt.input)))
			if got != tt.want {
				t.Errorf("extractID(%q) = %q, want %q", tt.input, got, tt.want)
			}
		})
	}
}

// TestJSONRPCError verifies the error envelope shape.
func TestJSONRPCError(t *testing.T) {
	data := jsonRPCError(json.RawMessage("9"), -32000, "server request failed")

	var resp map[string]interface{}
	if err := json.Unmarshal(data, &resp); err != nil {
		t.Fatalf("jsonRPCError produced invalid JSON: %v", err)
	}

	if resp["jsonrpc"] != "2.0" {
		t.Errorf("Expected jsonrpc 2.0, got %v", resp["jsonrpc"])
	}
	errObj, ok := resp["error"].(map[string]interface{})
	if !ok {
		t.Fatalf("Expected error object, got %T", resp["error"])
	}
	if errObj["message"] != "server request failed" {
		t.Errorf("Unexpected error message: %v", errObj["message"])
	}
}
