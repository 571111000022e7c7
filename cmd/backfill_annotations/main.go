package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/yungbote/workshoplive-backend/internal/db"
	"github.com/yungbote/workshoplive-backend/internal/logger"
	"github.com/yungbote/workshoplive-backend/internal/realtime"
	"github.com/yungbote/workshoplive-backend/internal/repos"
	"github.com/yungbote/workshoplive-backend/internal/services"
)

// Catches up content units ingested before intent derivation existed, or
// whose detached derivation silently failed.
func main() {
	var workshopArg string
	var limit int
	var budgetSec int
	flag.StringVar(&workshopArg, "workshop", "", "workshop id to backfill")
	flag.IntVar(&limit, "limit", 0, "max content units to process (0 = cap)")
	flag.IntVar(&budgetSec, "budget", 0, "time budget in seconds (0 = default)")
	flag.Parse()

	workshopID, err := uuid.Parse(strings.TrimSpace(workshopArg))
	if err != nil || workshopID == uuid.Nil {
		fmt.Println("a valid -workshop id is required")
		os.Exit(1)
	}

	log, err := logger.New(os.Getenv("LOG_MODE"))
	if err != nil {
		fmt.Printf("Failed to init logger: %v\n", err)
		os.Exit(1)
	}
	defer log.Sync()

	postgresService, err := db.NewPostgresService(log)
	if err != nil {
		log.Error("Postgres init failed", "error", err)
		os.Exit(1)
	}
	thePG := postgresService.DB()

	workshopRepo := repos.NewWorkshopRepo(thePG, log)
	contentUnitRepo := repos.NewContentUnitRepo(thePG, log)
	classificationRepo := repos.NewClassificationRepo(thePG, log)
	annotationRepo := repos.NewAnnotationRepo(thePG, log)

	// Offline runs publish into a hub nobody listens to; the writes are the
	// point here.
	hub := realtime.NewWorkshopHub(log)
	publisher := &services.HubPublisher{Hub: hub}

	var aiClient services.AIClient
	aiClient, err = services.NewAIClient(log)
	if err != nil {
		log.Warn("Could not init AIClient, enrichment degrades to defaults", "error", err)
		aiClient = nil
	}
	classifierProvider := services.NewClassifierProvider(log, aiClient)
	intentProvider := services.NewIntentProvider(log, aiClient)
	enrichmentService := services.NewEnrichmentService(log, classifierProvider, intentProvider, classificationRepo, annotationRepo, publisher)
	backfillService := services.NewBackfillService(log, workshopRepo, contentUnitRepo, enrichmentService)

	report, err := backfillService.Backfill(context.Background(), workshopID, limit, time.Duration(budgetSec)*time.Second)
	if err != nil {
		log.Error("Backfill failed", "error", err)
		os.Exit(1)
	}
	fmt.Printf("scanned=%d attempted=%d errors=%d timedOut=%v\n", report.Scanned, report.Attempted, report.Errors, report.TimedOut)
}
