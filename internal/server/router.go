package server

import (
	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"

	"github.com/yungbote/workshoplive-backend/internal/handlers"
)

type RouterConfig struct {
	WorkshopHandler   *handlers.WorkshopHandler
	TranscriptHandler *handlers.TranscriptHandler
	StreamHandler     *handlers.StreamHandler
	BackfillHandler   *handlers.BackfillHandler
	SnapshotHandler   *handlers.SnapshotHandler
}

func NewRouter(cfg RouterConfig) *gin.Engine {
	router := gin.Default()

	// Cors
	router.Use(cors.New(cors.Config{
		AllowOrigins: []string{
			"http://localhost:80",
			"http://localhost:3000",
			"http://localhost:5174",
		},
		AllowMethods:     []string{"GET", "POST", "PUT", "DELETE", "PATCH", "OPTIONS"},
		AllowHeaders:     []string{"Authorization", "Content-Type", "X-Requested-With"},
		AllowCredentials: true,
	}))

	router.GET("/healthcheck", handlers.HealthCheck)

	api := router.Group("/api")
	{
		api.POST("/workshops", cfg.WorkshopHandler.Create)
		api.GET("/workshops/:id", cfg.WorkshopHandler.Get)

		api.POST("/workshops/:id/transcripts", cfg.TranscriptHandler.Ingest)
		api.GET("/workshops/:id/stream", cfg.StreamHandler.Stream)
		api.POST("/workshops/:id/backfill/intents", cfg.BackfillHandler.BackfillIntents)

		api.POST("/workshops/:id/snapshots", cfg.SnapshotHandler.Capture)
		api.GET("/workshops/:id/snapshots", cfg.SnapshotHandler.ListByWorkshop)
		api.GET("/snapshots/:id", cfg.SnapshotHandler.Get)
	}

	return router
}
