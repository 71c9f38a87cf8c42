package server

import (
	"bytes"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/bobmcallan/sweep/internal/common"
)

func okHandler() http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	})
}

func authTestConfig() *common.Config {
	cfg := common.NewDefaultConfig()
	cfg.Auth.JWTSecret = "test-secret"
	cfg.Auth.APIKeyHash = "$2a$10$placeholderhashvalue"
	return cfg
}

func TestCorrelationIDMiddleware_GeneratesID(t *testing.T) {
	handler := correlationIDMiddleware(okHandler())

	req := httptest.NewRequest(http.MethodGet, "/api/health", nil)
	rr := httptest.NewRecorder()
	handler.ServeHTTP(rr, req)

	corrID := rr.Header().Get("X-Correlation-ID")
	if corrID == "" {
		t.Fatal("expected a generated correlation ID")
	}
	if len(corrID) != 8 {
		t.Errorf("expected 8-char generated ID, got %q", corrID)
	}
}

func TestCorrelationIDMiddleware_RespectsRequestID(t *testing.T) {
	handler := correlationIDMiddleware(okHandler())

	req := httptest.NewRequest(http.MethodGet, "/api/health", nil)
	req.Header.Set("X-Request-ID", "req-abc-123")
	rr := httptest.NewRecorder()
	handler.ServeHTTP(rr, req)

	if got := rr.Header().Get("X-Correlation-ID"); got != "req-abc-123" {
		t.Errorf("expected X-Request-ID to be echoed, got %q", got)
	}
}

func TestCorrelationIDMiddleware_FallsBackToCorrelationHeader(t *testing.T) {
	handler := correlationIDMiddleware(okHandler())

	req := httptest.NewRequest(http.MethodGet, "/api/health", nil)
	req.Header.Set("X-Correlation-ID", "corr-xyz")
	rr := httptest.NewRecorder()
	handler.ServeHTTP(rr, req)

	if got := rr.Header().Get("X-Correlation-ID"); got != "corr-xyz" {
		t.Errorf("expected X-Correlation-ID to be echoed, got %q", got)
	}
}

func TestCORSMiddleware_OptionsReturnsNoContent(t *testing.T) {
	handler := corsMiddleware(okHandler())

	req := httptest.NewRequest(http.MethodOptions, "/api/scan", nil)
	rr := httptest.NewRecorder()
	handler.ServeHTTP(rr, req)

	if rr.Code != http.StatusNoContent {
		t.Errorf("expected 204 for OPTIONS, got %d", rr.Code)
	}
	if origin := rr.Header().Get("Access-Control-Allow-Origin"); origin != "*" {
		t.Errorf("expected Allow-Origin *, got %q", origin)
	}
}

func TestCORSMiddleware_AllowsAuthHeaders(t *testing.T) {
	handler := corsMiddleware(okHandler())

	req := httptest.NewRequest(http.MethodOptions, "/api/scan", nil)
	rr := httptest.NewRecorder()
	handler.ServeHTTP(rr, req)

	allowHeaders := rr.Header().Get("Access-Control-Allow-Headers")
	for _, h := range []string{"Content-Type", "Authorization", "X-Request-ID", "X-Correlation-ID"} {
		if !strings.Contains(allowHeaders, h) {
			t.Errorf("expected %s in Access-Control-Allow-Headers, got: %s", h, allowHeaders)
		}
	}
}

func TestRecoveryMiddleware_Returns500(t *testing.T) {
	logger := common.NewSilentLogger()
	handler := recoveryMiddleware(logger)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		panic("handler exploded")
	}))

	req := httptest.NewRequest(http.MethodGet, "/api/scan", nil)
	rr := httptest.NewRecorder()
	handler.ServeHTTP(rr, req)

	if rr.Code != http.StatusInternalServerError {
		t.Errorf("expected 500 after panic, got %d", rr.Code)
	}
	if !strings.Contains(rr.Body.String(), "Internal server error") {
		t.Errorf("expected generic error body, got: %s", rr.Body.String())
	}
}

func TestLoggingMiddleware_4xxUsesInfoLevel(t *testing.T) {
	// 4xx logs at Info. At WARN the event must be filtered out.
	var buf bytes.Buffer
	logger := common.NewLoggerWithOutput("warn", &buf)

	handler := loggingMiddleware(logger)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNotFound)
	}))

	req := httptest.NewRequest(http.MethodGet, "/api/missing", nil)
	rr := httptest.NewRecorder()
	handler.ServeHTTP(rr, req)

	if strings.Contains(buf.String(), "HTTP request") {
		t.Errorf("expected 404 log filtered at WARN level, but it passed through: %s", buf.String())
	}
}

func TestLoggingMiddleware_5xxUsesErrorLevel(t *testing.T) {
	// 5xx logs at Error, which passes a WARN filter.
	var buf bytes.Buffer
	logger := common.NewLoggerWithOutput("warn", &buf)

	handler := loggingMiddleware(logger)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
	}))

	req := httptest.NewRequest(http.MethodGet, "/api/broken", nil)
	rr := httptest.NewRecorder()
	handler.ServeHTTP(rr, req)

	if !strings.Contains(buf.String(), "HTTP request") {
		t.Errorf("expected 500 log to pass WARN filter, got: %q", buf.String())
	}
}

func TestLoggingMiddleware_2xxUsesTraceLevel(t *testing.T) {
	// 2xx logs at Trace. At INFO the event must be filtered out.
	var buf bytes.Buffer
	logger := common.NewLoggerWithOutput("info", &buf)

	handler := loggingMiddleware(logger)(okHandler())

	req := httptest.NewRequest(http.MethodGet, "/api/health", nil)
	rr := httptest.NewRecorder()
	handler.ServeHTTP(rr, req)

	if strings.Contains(buf.String(), "HTTP request") {
		t.Errorf("expected 200 log filtered at INFO level, but it passed through: %s", buf.String())
	}
}

func TestAuthMiddleware_OpenWhenUnconfigured(t *testing.T) {
	cfg := common.NewDefaultConfig()
	handler := authMiddleware(cfg, common.NewSilentLogger())(okHandler())

	req := httptest.NewRequest(http.MethodPost, "/api/scan", nil)
	rr := httptest.NewRecorder()
	handler.ServeHTTP(rr, req)

	if rr.Code != http.StatusOK {
		t.Errorf("expected open access when auth is unconfigured, got %d", rr.Code)
	}
}

func TestAuthMiddleware_RejectsMissingToken(t *testing.T) {
	handler := authMiddleware(authTestConfig(), common.NewSilentLogger())(okHandler())

	req := httptest.NewRequest(http.MethodPost, "/api/scan", nil)
	rr := httptest.NewRecorder()
	handler.ServeHTTP(rr, req)

	if rr.Code != http.StatusUnauthorized {
		t.Errorf("expected 401 without a token, got %d", rr.Code)
	}
	if rr.Header().Get("WWW-Authenticate") != "Bearer" {
		t.Error("expected WWW-Authenticate: Bearer header")
	}
}

func TestAuthMiddleware_RejectsInvalidToken(t *testing.T) {
	handler := authMiddleware(authTestConfig(), common.NewSilentLogger())(okHandler())

	req := httptest.NewRequest(http.MethodPost, "/api/scan", nil)
	req.Header.Set("Authorization", "Bearer not-a-real-token")
	rr := httptest.NewRecorder()
	handler.ServeHTTP(rr, req)

	if rr.Code != http.StatusUnauthorized {
		t.Errorf("expected 401 for a garbage token, got %d", rr.Code)
	}
}

func TestAuthMiddleware_RejectsExpiredToken(t *testing.T) {
	cfg := authTestConfig()
	cfg.Auth.TokenExpiry = "-1h"
	token, _, err := signJWT(&cfg.Auth)
	if err != nil {
		t.Fatalf("signJWT failed: %v", err)
	}

	handler := authMiddleware(cfg, common.NewSilentLogger())(okHandler())

	req := httptest.NewRequest(http.MethodPost, "/api/scan", nil)
	req.Header.Set("Authorization", "Bearer "+token)
	rr := httptest.NewRecorder()
	handler.ServeHTTP(rr, req)

	if rr.Code != http.StatusUnauthorized {
		t.Errorf("expected 401 for an expired token, got %d", rr.Code)
	}
}

func TestAuthMiddleware_AcceptsValidToken(t *testing.T) {
	cfg := authTestConfig()
	token, _, err := signJWT(&cfg.Auth)
	if err != nil {
		t.Fatalf("signJWT failed: %v", err)
	}

	handler := authMiddleware(cfg, common.NewSilentLogger())(okHandler())

	req := httptest.NewRequest(http.MethodPost, "/api/scan", nil)
	req.Header.Set("Authorization", "Bearer "+token)
	rr := httptest.NewRecorder()
	handler.ServeHTTP(rr, req)

	if rr.Code != http.StatusOK {
		t.Errorf("expected 200 with a valid token, got %d", rr.Code)
	}
}

func TestAuthMiddleware_PublicPathsExempt(t *testing.T) {
	handler := authMiddleware(authTestConfig(), common.NewSilentLogger())(okHandler())

	for _, path := range []string{"/api/health", "/api/version", "/api/auth/token"} {
		req := httptest.NewRequest(http.MethodGet, path, nil)
		rr := httptest.NewRecorder()
		handler.ServeHTTP(rr, req)

		if rr.Code != http.StatusOK {
			t.Errorf("expected %s to be public, got %d", path, rr.Code)
		}
	}
}

func TestAuthMiddleware_IgnoresNonAPIPaths(t *testing.T) {
	handler := authMiddleware(authTestConfig(), common.NewSilentLogger())(okHandler())

	req := httptest.NewRequest(http.MethodPost, "/mcp", nil)
	rr := httptest.NewRecorder()
	handler.ServeHTTP(rr, req)

	if rr.Code != http.StatusOK {
		t.Errorf("expected /mcp to bypass API auth, got %d", rr.Code)
	}
}
