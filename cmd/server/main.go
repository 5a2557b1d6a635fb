package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/alecthomas/kingpin/v2"
	"go.uber.org/zap"

	"github.com/eugenenazirov/offer-desk/internal/application"
	"github.com/eugenenazirov/offer-desk/internal/config"
	"github.com/eugenenazirov/offer-desk/internal/logging"
)

const warmupTimeout = 5 * time.Second

var signalNotify = signal.Notify

func main() {
	kingpinApp := kingpin.New("offer-desk", "Freight offer desk - pallet estimates, offer submission and offer listings")
	overrides := parseFlags(kingpinApp, os.Args[1:])

	cfg, err := config.Load(overrides)
	if err != nil {
		panic(fmt.Sprintf("failed to load configuration: %v", err))
	}

	logger, err := logging.New(cfg.LogLevel)
	if err != nil {
		panic(fmt.Sprintf("failed to initialize logger: %v", err))
	}
	defer func() {
		_ = logger.Sync()
	}()

	app, err := application.New(cfg, logger)
	if err != nil {
		logger.Fatal("failed to initialize application", zap.Error(err))
	}

	if cfg.RefreshOnStart {
		ctx, cancel := context.WithTimeout(context.Background(), warmupTimeout)
		if err := app.Warmup(ctx); err != nil {
			logger.Warn("using configured dimensions", zap.Error(err))
		}
		cancel()
	}

	if err := app.Start(); err != nil {
		logger.Fatal("failed to start server", zap.Error(err))
	}

	shutdown(app.Server(), cfg.ShutdownGracePeriod, logger)
}

// parseFlags turns command-line flags into config overrides. Unset flags stay nil.
func parseFlags(kingpinApp *kingpin.Application, args []string) *config.CLIOverrides {
	configFile := kingpinApp.Flag("config", "Path to YAML configuration file").String()
	port := kingpinApp.Flag("port", "HTTP port exposed by the service").String()
	backendURL := kingpinApp.Flag("backend-url", "Base URL of the offers backend").String()
	dimensionsStr := kingpinApp.Flag("dimensions", "Initial package dimensions as Type:WxLxH, comma-separated").String()
	locale := kingpinApp.Flag("locale", "Language tag used to sort offer listings").String()
	requireAuth := kingpinApp.Flag("require-auth", "Require a session for offer and dimension routes (true or false)").Enum("true", "false")
	rateLimitRPSFlag := kingpinApp.Flag("rate-limit-rps", "Requests per second allowed (set 0 to disable)").Default("-1").Float64()
	rateLimitBurstFlag := kingpinApp.Flag("rate-limit-burst", "Burst capacity for rate limiter (set 0 to disable)").Default("-1").Int()

	kingpin.MustParse(kingpinApp.Parse(args))

	overrides := &config.CLIOverrides{
		ConfigFile: *configFile,
	}

	if *port != "" {
		overrides.Port = port
	}

	if *backendURL != "" {
		overrides.BackendURL = backendURL
	}

	if *dimensionsStr != "" {
		overrides.DimensionsStr = dimensionsStr
	}

	if *locale != "" {
		overrides.Locale = locale
	}

	if *requireAuth != "" {
		required := *requireAuth == "true"
		overrides.RequireAuth = &required
	}

	if *rateLimitRPSFlag >= 0 {
		overrides.RateLimitRPS = rateLimitRPSFlag
	}

	if *rateLimitBurstFlag >= 0 {
		overrides.RateLimitBurst = rateLimitBurstFlag
	}

	return overrides
}

func shutdown(server *http.Server, timeout time.Duration, logger *zap.Logger) {
	quit := make(chan os.Signal, 1)
	signalNotify(quit, os.Interrupt, syscall.SIGINT, syscall.SIGTERM)

	<-quit
	logger.Info("shutting down server")

	ctx, cancel := context.WithTimeout(context.Background(), timeout)
	defer cancel()

	if err := server.Shutdown(ctx); err != nil {
		logger.Warn("graceful shutdown failed", zap.Error(err))
		if closeErr := server.Close(); closeErr != nil {
			logger.Error("forced close failed", zap.Error(closeErr))
		}
	}
}
