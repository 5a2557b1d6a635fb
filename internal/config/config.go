package config

import (
	"fmt"
	"net/url"
	"os"
	"strconv"
	"strings"
	"time"

	"go.uber.org/zap/zapcore"
	"golang.org/x/text/language"
	"gopkg.in/yaml.v3"

	"github.com/eugenenazirov/offer-desk/internal/calculator"
	"github.com/eugenenazirov/offer-desk/internal/storage"
)

const (
	defaultPort           = "8080"
	defaultBackendURL     = "http://localhost:3000"
	defaultLocale         = "en"
	defaultRateLimitRPS   = 25.0
	defaultRateLimitBurst = 50
)

// Config aggregates runtime configuration resolved from multiple sources.
// Precedence: CLI flags > YAML config > Environment variables > Defaults
type Config struct {
	Port                 string
	BackendURL           string
	BackendTimeout       time.Duration
	RefreshOnStart       bool
	InitialDimensions    []calculator.PackageDimension
	Locale               string
	LogLevel             string
	RequireAuth          bool
	SessionTTL           time.Duration
	RememberSessionTTL   time.Duration
	ShutdownGracePeriod  time.Duration
	ReadHeaderTimeout    time.Duration
	WriteTimeout         time.Duration
	IdleTimeout          time.Duration
	EnableRequestLogging bool
	RateLimitRPS         float64
	RateLimitBurst       int
}

// yamlConfig represents the YAML configuration file structure.
type yamlConfig struct {
	Port                 string                        `yaml:"port"`
	Backend              yamlBackend                   `yaml:"backend"`
	Dimensions           []calculator.PackageDimension `yaml:"dimensions"`
	Locale               string                        `yaml:"locale"`
	LogLevel             string                        `yaml:"log_level"`
	Auth                 yamlAuth                      `yaml:"auth"`
	ShutdownGracePeriod  string                        `yaml:"shutdown_grace_period"`
	ReadHeaderTimeout    string                        `yaml:"read_header_timeout"`
	WriteTimeout         string                        `yaml:"write_timeout"`
	IdleTimeout          string                        `yaml:"idle_timeout"`
	EnableRequestLogging *bool                         `yaml:"enable_request_logging"`
	RateLimit            *yamlRateLimit                `yaml:"rate_limit"`
}

// yamlBackend represents the backend section in YAML.
type yamlBackend struct {
	URL            string `yaml:"url"`
	Timeout        string `yaml:"timeout"`
	RefreshOnStart *bool  `yaml:"refresh_on_start"`
}

// yamlAuth represents the auth section in YAML.
type yamlAuth struct {
	Required           *bool  `yaml:"required"`
	SessionTTL         string `yaml:"session_ttl"`
	RememberSessionTTL string `yaml:"remember_session_ttl"`
}

// yamlRateLimit represents the rate limit section in YAML.
type yamlRateLimit struct {
	RPS   *float64 `yaml:"rps"`
	Burst *int     `yaml:"burst"`
}

// CLIOverrides holds command-line flag overrides.
type CLIOverrides struct {
	ConfigFile     string
	Port           *string
	BackendURL     *string
	DimensionsStr  *string
	Locale         *string
	RequireAuth    *bool
	RateLimitRPS   *float64
	RateLimitBurst *int
}

// Load extracts configuration from multiple sources with precedence:
// CLI flags > YAML config > Environment variables > Defaults
func Load(overrides *CLIOverrides) (Config, error) {
	cfg := defaultConfig()

	// Environment variables override defaults
	if err := applyEnvConfig(&cfg); err != nil {
		return Config{}, err
	}

	// YAML file overrides environment
	if overrides != nil && overrides.ConfigFile != "" {
		yamlCfg, err := loadFromFile(overrides.ConfigFile)
		if err != nil {
			return Config{}, fmt.Errorf("load YAML config: %w", err)
		}
		if err := applyYAMLConfig(&cfg, yamlCfg); err != nil {
			return Config{}, fmt.Errorf("apply YAML config: %w", err)
		}
	}

	// Apply CLI overrides (highest precedence)
	if overrides != nil {
		if err := applyCLIOverrides(&cfg, overrides); err != nil {
			return Config{}, err
		}
	}

	// Validate final configuration
	if err := validateConfig(cfg); err != nil {
		return Config{}, err
	}

	return cfg, nil
}

// defaultConfig returns a Config with default values.
func defaultConfig() Config {
	return Config{
		Port:                 defaultPort,
		BackendURL:           defaultBackendURL,
		BackendTimeout:       10 * time.Second,
		RefreshOnStart:       true,
		InitialDimensions:    storage.DefaultDimensions(),
		Locale:               defaultLocale,
		LogLevel:             "info",
		RequireAuth:          false,
		SessionTTL:           12 * time.Hour,
		RememberSessionTTL:   30 * 24 * time.Hour,
		ShutdownGracePeriod:  10 * time.Second,
		ReadHeaderTimeout:    5 * time.Second,
		WriteTimeout:         15 * time.Second,
		IdleTimeout:          60 * time.Second,
		EnableRequestLogging: true,
		RateLimitRPS:         defaultRateLimitRPS,
		RateLimitBurst:       defaultRateLimitBurst,
	}
}

// loadFromFile loads configuration from a YAML file.
func loadFromFile(path string) (*yamlConfig, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read file: %w", err)
	}

	var yamlCfg yamlConfig
	if err := yaml.Unmarshal(data, &yamlCfg); err != nil {
		return nil, fmt.Errorf("parse YAML: %w", err)
	}

	return &yamlCfg, nil
}

// applyYAMLConfig applies YAML configuration to the Config struct.
func applyYAMLConfig(cfg *Config, yamlCfg *yamlConfig) error {
	if yamlCfg.Port != "" {
		cfg.Port = yamlCfg.Port
	}

	if yamlCfg.Backend.URL != "" {
		cfg.BackendURL = yamlCfg.Backend.URL
	}

	if yamlCfg.Backend.RefreshOnStart != nil {
		cfg.RefreshOnStart = *yamlCfg.Backend.RefreshOnStart
	}

	if len(yamlCfg.Dimensions) > 0 {
		cfg.InitialDimensions = yamlCfg.Dimensions
	}

	if yamlCfg.Locale != "" {
		cfg.Locale = yamlCfg.Locale
	}

	if yamlCfg.LogLevel != "" {
		cfg.LogLevel = yamlCfg.LogLevel
	}

	if yamlCfg.Auth.Required != nil {
		cfg.RequireAuth = *yamlCfg.Auth.Required
	}

	durations := []struct {
		name  string
		raw   string
		field *time.Duration
	}{
		{"backend.timeout", yamlCfg.Backend.Timeout, &cfg.BackendTimeout},
		{"auth.session_ttl", yamlCfg.Auth.SessionTTL, &cfg.SessionTTL},
		{"auth.remember_session_ttl", yamlCfg.Auth.RememberSessionTTL, &cfg.RememberSessionTTL},
		{"shutdown_grace_period", yamlCfg.ShutdownGracePeriod, &cfg.ShutdownGracePeriod},
		{"read_header_timeout", yamlCfg.ReadHeaderTimeout, &cfg.ReadHeaderTimeout},
		{"write_timeout", yamlCfg.WriteTimeout, &cfg.WriteTimeout},
		{"idle_timeout", yamlCfg.IdleTimeout, &cfg.IdleTimeout},
	}
	for _, d := range durations {
		if d.raw == "" {
			continue
		}
		value, err := time.ParseDuration(d.raw)
		if err != nil {
			return fmt.Errorf("%s: %w", d.name, err)
		}
		*d.field = value
	}

	if yamlCfg.EnableRequestLogging != nil {
		cfg.EnableRequestLogging = *yamlCfg.EnableRequestLogging
	}

	if yamlCfg.RateLimit != nil {
		if rps := yamlCfg.RateLimit.RPS; rps != nil && *rps >= 0 {
			cfg.RateLimitRPS = *rps
		}
		if burst := yamlCfg.RateLimit.Burst; burst != nil && *burst >= 0 {
			cfg.RateLimitBurst = *burst
		}
	}

	return nil
}

// applyEnvConfig applies environment variable configuration.
func applyEnvConfig(cfg *Config) error {
	if port := strings.TrimSpace(os.Getenv("PORT")); port != "" {
		cfg.Port = port
	}

	if backendURL := strings.TrimSpace(os.Getenv("BACKEND_URL")); backendURL != "" {
		cfg.BackendURL = backendURL
	}

	if rawDims := strings.TrimSpace(os.Getenv("PACKAGE_DIMENSIONS")); rawDims != "" {
		dims, err := parseDimensions(rawDims)
		if err != nil {
			return fmt.Errorf("PACKAGE_DIMENSIONS: %w", err)
		}
		cfg.InitialDimensions = dims
	}

	if locale := strings.TrimSpace(os.Getenv("LOCALE")); locale != "" {
		cfg.Locale = locale
	}

	if level := strings.TrimSpace(os.Getenv("LOG_LEVEL")); level != "" {
		cfg.LogLevel = level
	}

	if required := strings.TrimSpace(os.Getenv("REQUIRE_AUTH")); required != "" {
		if value, err := strconv.ParseBool(required); err == nil {
			cfg.RequireAuth = value
		}
	}

	if rps := strings.TrimSpace(os.Getenv("RATE_LIMIT_RPS")); rps != "" {
		if value, err := strconv.ParseFloat(rps, 64); err == nil && value >= 0 {
			cfg.RateLimitRPS = value
		}
	}

	if burst := strings.TrimSpace(os.Getenv("RATE_LIMIT_BURST")); burst != "" {
		if value, err := strconv.Atoi(burst); err == nil && value >= 0 {
			cfg.RateLimitBurst = value
		}
	}

	return nil
}

// applyCLIOverrides applies command-line flag overrides.
func applyCLIOverrides(cfg *Config, overrides *CLIOverrides) error {
	if overrides.Port != nil && *overrides.Port != "" {
		cfg.Port = *overrides.Port
	}

	if overrides.BackendURL != nil && *overrides.BackendURL != "" {
		cfg.BackendURL = *overrides.BackendURL
	}

	if overrides.DimensionsStr != nil && *overrides.DimensionsStr != "" {
		dims, err := parseDimensions(*overrides.DimensionsStr)
		if err != nil {
			return fmt.Errorf("parse dimensions: %w", err)
		}
		cfg.InitialDimensions = dims
	}

	if overrides.Locale != nil && *overrides.Locale != "" {
		cfg.Locale = *overrides.Locale
	}

	if overrides.RequireAuth != nil {
		cfg.RequireAuth = *overrides.RequireAuth
	}

	if overrides.RateLimitRPS != nil && *overrides.RateLimitRPS >= 0 {
		cfg.RateLimitRPS = *overrides.RateLimitRPS
	}

	if overrides.RateLimitBurst != nil && *overrides.RateLimitBurst >= 0 {
		cfg.RateLimitBurst = *overrides.RateLimitBurst
	}

	return nil
}

// validateConfig validates the final configuration.
func validateConfig(cfg Config) error {
	if cfg.RateLimitRPS < 0 {
		return fmt.Errorf("RATE_LIMIT_RPS must be >= 0")
	}
	if cfg.RateLimitBurst < 0 {
		return fmt.Errorf("RATE_LIMIT_BURST must be >= 0")
	}
	if len(cfg.InitialDimensions) == 0 {
		return fmt.Errorf("package dimensions cannot be empty")
	}
	u, err := url.Parse(cfg.BackendURL)
	if err != nil || (u.Scheme != "http" && u.Scheme != "https") || u.Host == "" {
		return fmt.Errorf("backend url %q must be an absolute http(s) URL", cfg.BackendURL)
	}
	if _, err := language.Parse(cfg.Locale); err != nil {
		return fmt.Errorf("locale %q: %w", cfg.Locale, err)
	}
	if _, err := zapcore.ParseLevel(cfg.LogLevel); err != nil {
		return fmt.Errorf("log level: %w", err)
	}
	if cfg.SessionTTL <= 0 {
		return fmt.Errorf("session ttl must be positive")
	}
	return nil
}

// parseDimensions parses "Type:WxLxH" entries separated by commas.
func parseDimensions(raw string) ([]calculator.PackageDimension, error) {
	parts := strings.Split(raw, ",")
	dims := make([]calculator.PackageDimension, 0, len(parts))
	for _, part := range parts {
		part = strings.TrimSpace(part)
		if part == "" {
			continue
		}
		name, measures, ok := strings.Cut(part, ":")
		name = strings.TrimSpace(name)
		if !ok || name == "" {
			return nil, fmt.Errorf("invalid dimension %q, want Type:WxLxH", part)
		}
		sides := strings.Split(strings.ToLower(measures), "x")
		if len(sides) != 3 {
			return nil, fmt.Errorf("invalid dimension %q, want Type:WxLxH", part)
		}
		values := make([]float64, 3)
		for i, side := range sides {
			value, err := strconv.ParseFloat(strings.TrimSpace(side), 64)
			if err != nil {
				return nil, fmt.Errorf("invalid measurement %q in %q", side, part)
			}
			if value < 0 {
				return nil, fmt.Errorf("measurement must not be negative, got %v in %q", value, part)
			}
			values[i] = value
		}
		dims = append(dims, calculator.PackageDimension{Type: name, Width: values[0], Length: values[1], Height: values[2]})
	}
	if len(dims) == 0 {
		return nil, fmt.Errorf("no dimensions provided")
	}
	return dims, nil
}
