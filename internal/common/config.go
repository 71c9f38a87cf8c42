// Package common provides shared configuration and logging for sweep.
package common

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	toml "github.com/pelletier/go-toml/v2"
)

// Config holds all configuration for sweep.
type Config struct {
	Environment string        `toml:"environment"`
	Server      ServerConfig  `toml:"server"`
	Auth        AuthConfig    `toml:"auth"`
	Clients     ClientsConfig `toml:"clients"`
	Scan        ScanConfig    `toml:"scan"`
	Notify      NotifyConfig  `toml:"notify"`
	Logging     LoggingConfig `toml:"logging"`
}

// ServerConfig holds HTTP server configuration.
type ServerConfig struct {
	Host string `toml:"host"`
	Port int    `toml:"port" validate:"min=1,max=65535"`
}

// AuthConfig holds API authentication configuration. When both JWTSecret and
// APIKeyHash are set, /api routes require a bearer token minted from the
// operator API key. When either is empty the API runs open.
type AuthConfig struct {
	JWTSecret   string `toml:"jwt_secret"`
	APIKeyHash  string `toml:"api_key_hash"` // bcrypt hash of the operator API key
	TokenExpiry string `toml:"token_expiry"` // duration string, default "24h"
}

// Enabled reports whether bearer authentication is configured.
func (c *AuthConfig) Enabled() bool {
	return c.JWTSecret != "" && c.APIKeyHash != ""
}

// GetTokenExpiry parses and returns the token expiry duration.
func (c *AuthConfig) GetTokenExpiry() time.Duration {
	d, err := time.ParseDuration(c.TokenExpiry)
	if err != nil {
		return 24 * time.Hour
	}
	return d
}

// ClientsConfig holds API client configurations.
type ClientsConfig struct {
	Yahoo  YahooConfig  `toml:"yahoo"`
	Gemini GeminiConfig `toml:"gemini"`
}

// YahooConfig holds the market data provider configuration. BaseURL serves the
// JSON chart and fundamentals APIs; QuoteBaseURL serves the HTML quote pages
// the headline collector scrapes.
type YahooConfig struct {
	BaseURL      string `toml:"base_url"`
	QuoteBaseURL string `toml:"quote_base_url"`
	UserAgent    string `toml:"user_agent"`
	RateLimit    int    `toml:"rate_limit" validate:"min=1"`
	Timeout      string `toml:"timeout"`
}

// GetTimeout parses and returns the timeout duration.
func (c *YahooConfig) GetTimeout() time.Duration {
	d, err := time.ParseDuration(c.Timeout)
	if err != nil {
		return 20 * time.Second
	}
	return d
}

// GeminiConfig holds Gemini API configuration for the optional scan brief.
type GeminiConfig struct {
	APIKey string `toml:"api_key"`
	Model  string `toml:"model"`
}

// ScanConfig holds scan pipeline configuration.
type ScanConfig struct {
	MaxConcurrency int    `toml:"max_concurrency" validate:"min=1,max=64"`
	PriceRange     string `toml:"price_range"`
	UniversesFile  string `toml:"universes_file"`
}

// NotifyConfig holds SMTP configuration for scheduled report delivery.
type NotifyConfig struct {
	Enabled  bool   `toml:"enabled"`
	SMTPHost string `toml:"smtp_host"`
	SMTPPort int    `toml:"smtp_port"`
	SMTPUser string `toml:"smtp_user"`
	SMTPPass string `toml:"smtp_pass"`
	From     string `toml:"from"`
	To       string `toml:"to"`
}

// LoggingConfig holds logging configuration.
type LoggingConfig struct {
	Level      string   `toml:"level"`
	Format     string   `toml:"format"`
	Outputs    []string `toml:"outputs"`
	FilePath   string   `toml:"file_path"`
	MaxSizeMB  int      `toml:"max_size_mb"`
	MaxBackups int      `toml:"max_backups"`
}

// NewDefaultConfig returns a Config with sensible defaults.
func NewDefaultConfig() *Config {
	return &Config{
		Environment: "prod",
		Server: ServerConfig{
			Host: "0.0.0.0",
			Port: 4252,
		},
		Auth: AuthConfig{
			TokenExpiry: "24h",
		},
		Clients: ClientsConfig{
			Yahoo: YahooConfig{
				BaseURL:      "https://query1.finance.yahoo.com",
				QuoteBaseURL: "https://finance.yahoo.com",
				UserAgent:    "Mozilla/5.0",
				RateLimit:    5,
				Timeout:      "20s",
			},
			Gemini: GeminiConfig{
				Model: "gemini-2.0-flash",
			},
		},
		Scan: ScanConfig{
			MaxConcurrency: 5,
			PriceRange:     "3mo",
		},
		Notify: NotifyConfig{
			SMTPPort: 587,
		},
		Logging: LoggingConfig{
			Level:      "info",
			Format:     "json",
			Outputs:    []string{"console", "file"},
			FilePath:   "./logs/sweep.log",
			MaxSizeMB:  100,
			MaxBackups: 3,
		},
	}
}

// LoadConfig loads configuration from files with environment overrides.
// Later files override earlier ones; missing files are skipped.
func LoadConfig(paths ...string) (*Config, error) {
	config := NewDefaultConfig()

	for _, path := range paths {
		if path == "" {
			continue
		}

		if _, err := os.Stat(path); os.IsNotExist(err) {
			continue
		}

		data, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("failed to read config file %s: %w", path, err)
		}

		if err := toml.Unmarshal(data, config); err != nil {
			return nil, fmt.Errorf("failed to parse config file %s: %w", path, err)
		}
	}

	applyEnvOverrides(config)
	config.Environment = normalizeEnvironment(config.Environment)

	if err := config.Validate(); err != nil {
		return nil, err
	}

	return config, nil
}

// applyEnvOverrides applies environment variable overrides to config.
func applyEnvOverrides(config *Config) {
	if env := os.Getenv("SWEEP_ENV"); env != "" {
		config.Environment = env
	}

	if host := os.Getenv("SWEEP_HOST"); host != "" {
		config.Server.Host = host
	}

	if port := os.Getenv("SWEEP_PORT"); port != "" {
		if p, err := strconv.Atoi(port); err == nil {
			config.Server.Port = p
		}
	}

	if level := os.Getenv("SWEEP_LOG_LEVEL"); level != "" {
		config.Logging.Level = level
	}

	if secret := os.Getenv("SWEEP_JWT_SECRET"); secret != "" {
		config.Auth.JWTSecret = secret
	}

	if hash := os.Getenv("SWEEP_API_KEY_HASH"); hash != "" {
		config.Auth.APIKeyHash = hash
	}

	if file := os.Getenv("SWEEP_UNIVERSES_FILE"); file != "" {
		config.Scan.UniversesFile = file
	}

	if pass := os.Getenv("SWEEP_SMTP_PASS"); pass != "" {
		config.Notify.SMTPPass = pass
	}
}

// Validate checks field ranges and cross-field requirements.
func (c *Config) Validate() error {
	if err := validator.New().Struct(c); err != nil {
		return fmt.Errorf("invalid config: %w", err)
	}

	if (c.Auth.JWTSecret == "") != (c.Auth.APIKeyHash == "") {
		return fmt.Errorf("invalid config: auth requires both jwt_secret and api_key_hash, or neither")
	}

	if c.Notify.Enabled {
		if c.Notify.SMTPHost == "" || c.Notify.From == "" || c.Notify.To == "" {
			return fmt.Errorf("invalid config: notify requires smtp_host, from and to")
		}
	}

	return nil
}

// ResolveAPIKey resolves an API key from environment or config fallback.
func ResolveAPIKey(name string, fallback string) string {
	keyToEnvMapping := map[string][]string{
		"gemini_api_key": {"GEMINI_API_KEY", "SWEEP_GEMINI_API_KEY", "GOOGLE_API_KEY"},
	}

	if envVarNames, ok := keyToEnvMapping[name]; ok {
		for _, envVarName := range envVarNames {
			if envValue := os.Getenv(envVarName); envValue != "" {
				return envValue
			}
		}
	}

	return fallback
}

// IsProduction returns true if running in production mode.
// The environment value is normalized at load time: "development" → "dev", "production" → "prod".
func (c *Config) IsProduction() bool {
	return strings.ToLower(strings.TrimSpace(c.Environment)) == "prod"
}

// normalizeEnvironment maps environment aliases to their canonical short forms.
func normalizeEnvironment(env string) string {
	switch strings.ToLower(strings.TrimSpace(env)) {
	case "development":
		return "dev"
	case "production":
		return "prod"
	default:
		return env
	}
}
