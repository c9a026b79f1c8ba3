package main

import (
	"log"
	"os"

	fyneapp "fyne.io/fyne/v2/app"

	"zettel/internal/app"
	"zettel/internal/config"
	"zettel/internal/logger"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Configuration failed: %v", err)
	}

	appLogger := logger.New(logger.ParseLevel(cfg.LogLevel), cfg.JSONLogs)

	application, err := app.New(fyneapp.NewWithID(cfg.AppID), cfg, appLogger)
	if err != nil {
		appLogger.Error("Main", err, map[string]interface{}{"stage": "startup"})
		os.Exit(1)
	}

	if err := application.Run(); err != nil {
		appLogger.Error("Main", err, map[string]interface{}{"stage": "run"})
		os.Exit(1)
	}
}
