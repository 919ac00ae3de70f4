package main

import (
	"log"

	"github.com/squadpulse/squadpulse/config"
	_ "github.com/squadpulse/squadpulse/docs"
	"github.com/squadpulse/squadpulse/internal/analysis"
	"github.com/squadpulse/squadpulse/internal/integrity"
	"github.com/squadpulse/squadpulse/internal/player"
	"github.com/squadpulse/squadpulse/internal/update"
	"github.com/squadpulse/squadpulse/pkg/logger"
	"github.com/squadpulse/squadpulse/pkg/metrics"
	"github.com/squadpulse/squadpulse/routes"
)

// @title SquadPulse REST API
// @version 1.0
// @description Roster, medical tracking and training-load service with a cascading data-integrity engine.
// @host localhost:8090
// @BasePath /api
func main() {
	if err := config.Initialize(); err != nil {
		log.Fatalf("Failed to initialize application: %v", err)
	}

	cfg := config.GetConfig()

	if err := config.DB.AutoMigrate(&player.Player{}, &integrity.DataUpdate{}); err != nil {
		log.Fatalf("AutoMigrate failed: %v", err)
	}
	log.Println("AutoMigrate successful")

	zlog, err := logger.New(cfg.App.Env)
	if err != nil {
		log.Fatalf("Failed to build logger: %v", err)
	}
	defer zlog.Sync() //nolint:errcheck

	m := metrics.NewManager()

	store := integrity.NewStore(config.DB)
	engine, err := integrity.NewEngine(store, zlog, m)
	if err != nil {
		log.Fatalf("Failed to build integrity engine: %v", err)
	}

	analyzer := analysis.New(cfg.OpenAI.APIKey, cfg.OpenAI.Model, zlog)
	service := update.NewService(engine, analyzer, zlog)

	r := routes.SetupRoutes(config.DB, cfg, engine, service, m)

	log.Printf("Starting server on port %s in %s mode\n", cfg.App.Port, cfg.App.Env)
	if err := r.Run(":" + cfg.App.Port); err != nil {
		log.Fatalf("Failed to run server: %v", err)
	}
}
