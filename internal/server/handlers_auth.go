package server

import (
	"fmt"
	"net/http"
	"time"

	"github.com/bobmcallan/sweep/internal/common"
	"github.com/golang-jwt/jwt/v5"
	"golang.org/x/crypto/bcrypt"
)

// --- JWT helpers ---

// signJWT creates a signed HMAC-SHA256 operator token.
func signJWT(config *common.AuthConfig) (string, time.Time, error) {
	now := time.Now()
	expiresAt := now.Add(config.GetTokenExpiry())
	claims := jwt.MapClaims{
		"sub": "operator",
		"iss": "sweep-server",
		"iat": now.Unix(),
		"exp": expiresAt.Unix(),
	}
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	signed, err := token.SignedString([]byte(config.JWTSecret))
	if err != nil {
		return "", time.Time{}, err
	}
	return signed, expiresAt, nil
}

// validateJWT parses and validates a JWT token string using the given secret.
func validateJWT(tokenString string, secret []byte) (*jwt.Token, jwt.MapClaims, error) {
	claims := jwt.MapClaims{}
	token, err := jwt.ParseWithClaims(tokenString, claims, func(token *jwt.Token) (interface{}, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", token.Header["alg"])
		}
		return secret, nil
	})
	if err != nil {
		return nil, nil, err
	}
	return token, claims, nil
}

// --- Token handler ---

type tokenRequest struct {
	APIKey string `json:"api_key"`
}

type tokenResponse struct {
	AccessToken string `json:"access_token"`
	TokenType   string `json:"token_type"`
	ExpiresAt   string `json:"expires_at"`
}

// handleAuthToken handles POST /api/auth/token, exchanging the operator API key for a JWT.
func (s *Server) handleAuthToken(w http.ResponseWriter, r *http.Request) {
	if !RequireMethod(w, r, http.MethodPost) {
		return
	}

	if !s.app.Config.Auth.Enabled() {
		WriteError(w, http.StatusNotImplemented, "Authentication is not configured")
		return
	}

	var req tokenRequest
	if !DecodeJSON(w, r, &req) {
		return
	}
	if req.APIKey == "" {
		WriteError(w, http.StatusBadRequest, "api_key is required")
		return
	}

	if err := bcrypt.CompareHashAndPassword([]byte(s.app.Config.Auth.APIKeyHash), []byte(req.APIKey)); err != nil {
		s.logger.Warn().Msg("Token request with invalid API key")
		WriteError(w, http.StatusUnauthorized, "Invalid API key")
		return
	}

	signed, expiresAt, err := signJWT(&s.app.Config.Auth)
	if err != nil {
		s.logger.Error().Err(err).Msg("Token signing failed")
		WriteError(w, http.StatusInternalServerError, "Failed to issue token")
		return
	}

	WriteJSON(w, http.StatusOK, tokenResponse{
		AccessToken: signed,
		TokenType:   "Bearer",
		ExpiresAt:   expiresAt.UTC().Format(time.RFC3339),
	})
}
