package main

import (
	"context"
	"fmt"
	"os"

	"github.com/yungbote/workshoplive-backend/internal/db"
	"github.com/yungbote/workshoplive-backend/internal/handlers"
	"github.com/yungbote/workshoplive-backend/internal/logger"
	"github.com/yungbote/workshoplive-backend/internal/realtime"
	"github.com/yungbote/workshoplive-backend/internal/repos"
	"github.com/yungbote/workshoplive-backend/internal/server"
	"github.com/yungbote/workshoplive-backend/internal/services"
	"github.com/yungbote/workshoplive-backend/internal/utils"
)

func main() {
	// Logger
	logMode := os.Getenv("LOG_MODE")
	if logMode == "" {
		logMode = "development"
	}
	log, err := logger.New(logMode)
	if err != nil {
		fmt.Printf("Failed to init logger: %v\n", err)
		os.Exit(1)
	}
	defer log.Sync()

	// Postgres
	postgresService, err := db.NewPostgresService(log)
	if err != nil {
		log.Error("Postgres init failed", "error", err)
		os.Exit(1)
	}
	if err = postgresService.AutoMigrateAll(); err != nil {
		log.Warn("Postgres auto migration failed", "error", err)
	}
	thePG := postgresService.DB()

	// Repos
	log.Info("Setting up Repos from main...")
	workshopRepo := repos.NewWorkshopRepo(thePG, log)
	transcriptRecordRepo := repos.NewTranscriptRecordRepo(thePG, log)
	contentUnitRepo := repos.NewContentUnitRepo(thePG, log)
	classificationRepo := repos.NewClassificationRepo(thePG, log)
	annotationRepo := repos.NewAnnotationRepo(thePG, log)
	snapshotRepo := repos.NewSnapshotRepo(thePG, log)

	// Hub
	log.Info("Setting up workshop hub now...")
	hub := realtime.NewWorkshopHub(log)

	// Event fabric: single-instance deployments publish straight into the
	// hub; with the relay enabled, events round-trip through redis so every
	// instance's viewers see them.
	var publisher services.EventPublisher = &services.HubPublisher{Hub: hub}
	if utils.GetEnvAsBool("REDIS_RELAY_ENABLED", false, log) {
		eventBus, err := services.NewRedisEventBus(log)
		if err != nil {
			log.Error("Could not init RedisEventBus", "error", err)
			os.Exit(1)
		}
		defer eventBus.Close()
		if err := eventBus.StartForwarder(context.Background(), hub.Broadcast); err != nil {
			log.Error("Could not start redis event forwarder", "error", err)
			os.Exit(1)
		}
		publisher = &services.RedisPublisher{Log: log, Bus: eventBus}
	}

	// Services
	log.Info("Setting up Services from main...")
	var aiClient services.AIClient
	aiClient, err = services.NewAIClient(log)
	if err != nil {
		log.Warn("Could not init AIClient, enrichment degrades to defaults", "error", err)
		aiClient = nil
	}
	classifierProvider := services.NewClassifierProvider(log, aiClient)
	intentProvider := services.NewIntentProvider(log, aiClient)
	enrichmentService := services.NewEnrichmentService(log, classifierProvider, intentProvider, classificationRepo, annotationRepo, publisher)
	ingestionService := services.NewIngestionService(log, workshopRepo, transcriptRecordRepo, contentUnitRepo, classificationRepo, intentProvider, enrichmentService, publisher)
	backfillService := services.NewBackfillService(log, workshopRepo, contentUnitRepo, enrichmentService)
	snapshotService := services.NewSnapshotService(log, workshopRepo, transcriptRecordRepo, snapshotRepo)
	workshopService := services.NewWorkshopService(log, workshopRepo)

	// Handlers
	log.Info("Setting up handlers from main...")
	workshopHandler := handlers.NewWorkshopHandler(log, workshopService)
	transcriptHandler := handlers.NewTranscriptHandler(log, ingestionService)
	streamHandler := handlers.NewStreamHandler(log, hub, workshopService)
	backfillHandler := handlers.NewBackfillHandler(log, backfillService)
	snapshotHandler := handlers.NewSnapshotHandler(log, snapshotService)

	// Router
	log.Info("Setting up router from main...")
	router := server.NewRouter(server.RouterConfig{
		WorkshopHandler:   workshopHandler,
		TranscriptHandler: transcriptHandler,
		StreamHandler:     streamHandler,
		BackfillHandler:   backfillHandler,
		SnapshotHandler:   snapshotHandler,
	})

	port := utils.GetEnv("PORT", "8080", log)
	log.Info("Server listening", "port", port)
	if err := router.Run(":" + port); err != nil {
		log.Fatal("Server stopped", "error", err)
	}
}
