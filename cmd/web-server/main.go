package main

import (
	"os"

	"github.com/revelare/revelare-web/pkg/config"
	"github.com/revelare/revelare-web/pkg/database"
	"github.com/revelare/revelare-web/pkg/logger"
)

func main() {
	config.LoadDotEnv()

	logger.Init(logger.INFO, false, os.Stdout)
	cfg, err := config.Load()
	if err != nil {
		logger.Error("config_invalid", "error", err.Error())
		os.Exit(1)
	}

	format := "text"
	if cfg.LogJSON {
		format = "json"
	}
	logger.Init(logger.LogLevel(cfg.LogLevel), cfg.LogJSON, os.Stdout)
	log := logger.GetLogger()
	log.Info("revelare_web_starting", "port", cfg.Port, "api", cfg.Upstream.BaseURL, "log_format", format)

	if err := database.InitDatabase(cfg.DBPath); err != nil {
		log.Error("database_init_failed", "error", err.Error(), "path", cfg.DBPath)
		os.Exit(1)
	}
	defer database.Close()

	orchestrator, err := NewServerOrchestrator(cfg, database.DB)
	if err != nil {
		log.Error("orchestrator_init_failed", "error", err.Error())
		os.Exit(1)
	}
	if err := orchestrator.Start(); err != nil {
		log.Error("orchestrator_start_failed", "error", err.Error())
		os.Exit(1)
	}

	log.Info("revelare_web_running", "grpc", cfg.EnableGRPC, "google", cfg.Google.Enabled())
	orchestrator.WaitForShutdown()
	log.Info("revelare_web_stopped")
}
