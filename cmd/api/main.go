package main

import (
	"fmt"
	"net/http"
	"os"

	"deal_underwriting/pkg/api/underwriting"
	"deal_underwriting/pkg/core/config"
	"deal_underwriting/pkg/core/logging"
	core "deal_underwriting/pkg/core/underwriting"

	"github.com/joho/godotenv"
)

func main() {
	// Load environment variables
	godotenv.Load()

	configPath := os.Getenv("UNDERWRITING_CONFIG")
	if configPath == "" {
		configPath = config.DefaultPath
	}
	cfg, found, err := config.Load(configPath)
	if err != nil {
		fmt.Printf("[FATAL] %v\n", err)
		os.Exit(1)
	}

	logger, err := logging.NewLogger(cfg.Log)
	if err != nil {
		fmt.Printf("[FATAL] Failed to build logger: %v\n", err)
		os.Exit(1)
	}
	defer logger.Sync()

	if !found {
		logger.Warn("config file not found, using house policy", logging.String("path", configPath))
	}

	evaluator, err := core.NewEvaluator(cfg.Waterfall)
	if err != nil {
		logger.Error("invalid waterfall policy", logging.Err(err))
		os.Exit(1)
	}

	// Underwriting endpoints
	h := underwriting.NewHandler(evaluator, cfg.Compare, logger)
	http.HandleFunc("/api/underwriting/evaluate", h.HandleEvaluate)
	http.HandleFunc("/api/underwriting/compare", h.HandleCompare)
	http.HandleFunc("/api/underwriting/policy", h.HandlePolicy)

	addr := os.Getenv("UNDERWRITING_ADDR")
	if addr == "" {
		addr = ":8080"
	}

	logger.Info("API server starting",
		logging.String("addr", addr),
		logging.Any("routes", []string{
			"POST /api/underwriting/evaluate",
			"POST /api/underwriting/compare",
			"GET  /api/underwriting/policy",
		}))

	if err := http.ListenAndServe(addr, nil); err != nil {
		logger.Error("server failed", logging.Err(err))
		logger.Sync()
		os.Exit(1)
	}
}
