package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/eugenenazirov/offer-desk/internal/calculator"
)

func clearEnv(t *testing.T) {
	t.Helper()
	for _, key := range []string{"PORT", "BACKEND_URL", "PACKAGE_DIMENSIONS", "LOCALE", "LOG_LEVEL", "REQUIRE_AUTH", "RATE_LIMIT_RPS", "RATE_LIMIT_BURST"} {
		t.Setenv(key, "")
	}
}

func TestLoadDefaults(t *testing.T) {
	clearEnv(t)

	cfg, err := Load(nil)
	if err != nil {
		t.Fatalf("Load returned error: %v", err)
	}

	if cfg.Port != defaultPort {
		t.Fatalf("expected default port %s, got %s", defaultPort, cfg.Port)
	}
	if cfg.BackendURL != defaultBackendURL {
		t.Fatalf("expected default backend url, got %s", cfg.BackendURL)
	}
	if len(cfg.InitialDimensions) != 3 {
		t.Fatalf("expected default dimensions, got %v", cfg.InitialDimensions)
	}
	if cfg.RequireAuth {
		t.Fatalf("expected auth to be optional by default")
	}
	if cfg.ShutdownGracePeriod != 10*time.Second {
		t.Fatalf("unexpected shutdown grace period: %s", cfg.ShutdownGracePeriod)
	}
}

func TestLoadEnvOverrides(t *testing.T) {
	clearEnv(t)
	t.Setenv("PORT", "9000")
	t.Setenv("BACKEND_URL", "https://offers.example.com/api")
	t.Setenv("PACKAGE_DIMENSIONS", "Crate: 30x30x30 , Pallet:40x48x60")
	t.Setenv("REQUIRE_AUTH", "true")
	t.Setenv("RATE_LIMIT_RPS", "0")

	cfg, err := Load(nil)
	if err != nil {
		t.Fatalf("Load returned error: %v", err)
	}

	if cfg.Port != "9000" {
		t.Fatalf("expected overridden port, got %s", cfg.Port)
	}
	if cfg.BackendURL != "https://offers.example.com/api" {
		t.Fatalf("unexpected backend url %s", cfg.BackendURL)
	}
	want := []calculator.PackageDimension{
		{Type: "Crate", Width: 30, Length: 30, Height: 30},
		{Type: "Pallet", Width: 40, Length: 48, Height: 60},
	}
	if len(cfg.InitialDimensions) != len(want) {
		t.Fatalf("unexpected dimensions: %v", cfg.InitialDimensions)
	}
	for i := range want {
		if cfg.InitialDimensions[i] != want[i] {
			t.Fatalf("dimension %d: expected %+v, got %+v", i, want[i], cfg.InitialDimensions[i])
		}
	}
	if !cfg.RequireAuth {
		t.Fatalf("expected auth to be required")
	}
	if cfg.RateLimitRPS != 0 {
		t.Fatalf("expected rate limiting disabled, got %v", cfg.RateLimitRPS)
	}
}

func TestLoadPrecedence(t *testing.T) {
	clearEnv(t)
	t.Setenv("PORT", "9000")
	t.Setenv("LOCALE", "de")

	path := filepath.Join(t.TempDir(), "config.yaml")
	content := `
port: "9100"
locale: fr
backend:
  url: http://backend.internal:3000
  timeout: 3s
auth:
  required: true
  session_ttl: 1h
dimensions:
  - type: Box
    width: 1
    length: 2
    height: 3
enable_request_logging: false
`
	if err := os.WriteFile(path, []byte(content), 0o600); err != nil {
		t.Fatalf("write config: %v", err)
	}

	port := "9200"
	cfg, err := Load(&CLIOverrides{ConfigFile: path, Port: &port})
	if err != nil {
		t.Fatalf("Load returned error: %v", err)
	}

	if cfg.Port != "9200" {
		t.Fatalf("expected CLI port to win, got %s", cfg.Port)
	}
	if cfg.Locale != "fr" {
		t.Fatalf("expected YAML locale to override env, got %s", cfg.Locale)
	}
	if cfg.BackendURL != "http://backend.internal:3000" || cfg.BackendTimeout != 3*time.Second {
		t.Fatalf("unexpected backend settings: %s %s", cfg.BackendURL, cfg.BackendTimeout)
	}
	if !cfg.RequireAuth || cfg.SessionTTL != time.Hour {
		t.Fatalf("unexpected auth settings: %v %s", cfg.RequireAuth, cfg.SessionTTL)
	}
	if len(cfg.InitialDimensions) != 1 || cfg.InitialDimensions[0].Type != "Box" {
		t.Fatalf("unexpected dimensions: %v", cfg.InitialDimensions)
	}
	if cfg.EnableRequestLogging {
		t.Fatalf("expected request logging disabled by YAML")
	}
}

func TestLoadYAMLRateLimitKeepsOmittedBurst(t *testing.T) {
	clearEnv(t)

	path := filepath.Join(t.TempDir(), "config.yaml")
	content := `
rate_limit:
  rps: 5
`
	if err := os.WriteFile(path, []byte(content), 0o600); err != nil {
		t.Fatalf("write config: %v", err)
	}

	cfg, err := Load(&CLIOverrides{ConfigFile: path})
	if err != nil {
		t.Fatalf("Load returned error: %v", err)
	}
	if cfg.RateLimitRPS != 5 {
		t.Fatalf("expected YAML rps 5, got %v", cfg.RateLimitRPS)
	}
	if cfg.RateLimitBurst != defaultRateLimitBurst {
		t.Fatalf("expected default burst %d, got %d", defaultRateLimitBurst, cfg.RateLimitBurst)
	}
}

func TestLoadValidation(t *testing.T) {
	cases := map[string]func(t *testing.T){
		"backend url": func(t *testing.T) { t.Setenv("BACKEND_URL", "offers.example.com") },
		"locale":      func(t *testing.T) { t.Setenv("LOCALE", "not a locale!") },
		"log level":   func(t *testing.T) { t.Setenv("LOG_LEVEL", "loud") },
		"dimensions":  func(t *testing.T) { t.Setenv("PACKAGE_DIMENSIONS", "Box:1x2") },
	}

	for name, setup := range cases {
		t.Run(name, func(t *testing.T) {
			clearEnv(t)
			setup(t)
			if _, err := Load(nil); err == nil {
				t.Fatalf("expected error")
			}
		})
	}
}

func TestParseDimensions(t *testing.T) {
	t.Run("valid", func(t *testing.T) {
		got, err := parseDimensions("Carton:10x12x15,Box:20X24X30")
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if len(got) != 2 || got[1] != (calculator.PackageDimension{Type: "Box", Width: 20, Length: 24, Height: 30}) {
			t.Fatalf("unexpected dimensions: %v", got)
		}
	})

	t.Run("invalid", func(t *testing.T) {
		for _, raw := range []string{" , ", "Box", ":1x2x3", "Box:1x2x3x4", "Box:1xax3", "Box:-1x2x3"} {
			if _, err := parseDimensions(raw); err == nil {
				t.Fatalf("expected error for %q", raw)
			}
		}
	})
}
