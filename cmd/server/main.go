// ReturnGuard checkout - risk-aware checkout core for the demo shop
package main

import (
	"context"
	"os"

	"github.com/aashu2252/Fraud-Gaurd-AI/internal/config"
	"github.com/aashu2252/Fraud-Gaurd-AI/internal/logging"
	"github.com/aashu2252/Fraud-Gaurd-AI/internal/server"
)

// Build info - set by ldflags
var (
	Version   = "dev"
	Commit    = "unknown"
	BuildTime = "unknown"
)

func main() {
	logger := logging.New("info", "text")

	logger.Info("starting returnguard checkout",
		"version", Version,
		"commit", Commit,
		"build_time", BuildTime,
	)

	cfg, err := config.Load()
	if err != nil {
		logger.Error("failed to load config", "error", err)
		os.Exit(1)
	}

	logger.Info("configuration loaded",
		"env", cfg.Env,
		"scoring_api", cfg.RiskAPIURL,
		"risk_timeout", cfg.RiskTimeout,
	)

	srv, err := server.New(cfg, server.WithLogger(logger))
	if err != nil {
		logger.Error("failed to create server", "error", err)
		os.Exit(1)
	}

	ctx := context.Background()
	if err := srv.Run(ctx); err != nil {
		logger.Error("server error", "error", err)
		os.Exit(1)
	}
}
