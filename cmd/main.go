package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"github.com/desertthunder/mixtape/internal/services"
	"github.com/desertthunder/mixtape/internal/shared"
	"github.com/urfave/cli/v3"
)

const (
	defaultConfigPath = "config.toml"
	envConfigPath     = "MIXTAPE_CONFIG"
)

func main() {
	logger := shared.NewLogger(nil)

	configPath := defaultConfigPath
	if p := os.Getenv(envConfigPath); p != "" {
		configPath = p
	}

	config := shared.DefaultConfig()
	if _, err := os.Stat(configPath); err == nil {
		if loadedConfig, err := shared.LoadConfig(configPath); err == nil {
			config = loadedConfig
		} else {
			logger.Warn("failed to load config, using defaults", "path", configPath, "error", err)
		}
	}
	if err := config.ApplyEnv(".env"); err != nil {
		logger.Warn("failed to apply environment", "error", err)
	}
	if err := shared.SetLogLevel(logger, config.Logging.Level); err != nil {
		logger.Warn("ignoring log level", "error", err)
	}

	opts := RunnerOpts{
		Config:     config,
		ConfigPath: configPath,
		Logger:     logger,
	}

	// Assigned only on success so a failed constructor leaves a nil interface, not a typed nil.
	if svc, err := services.NewDiscogsService(services.DiscogsOptionsFromConfig(config)); err == nil {
		opts.Service = svc
		opts.HTTPClient = svc.HTTPClient()
	} else {
		logger.Debug("Discogs service unavailable", "error", err)
	}

	runner := NewRunner(opts)

	app := &cli.Command{
		Name:     "mixtape",
		Usage:    "Mirror a Discogs collection and build a two-sided mixtape",
		Version:  "0.1.0",
		Commands: runner.register(),
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	err := app.Run(ctx, os.Args)
	stop()

	if cerr := runner.Close(); cerr != nil {
		logger.Warn("failed to close database", "error", cerr)
	}
	if err != nil {
		logger.Fatalf("application error: %v", err)
	}
}
