package handlers

import (
	"errors"
	"io"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/yungbote/workshoplive-backend/internal/apierr"
	"github.com/yungbote/workshoplive-backend/internal/logger"
	"github.com/yungbote/workshoplive-backend/internal/services"
)

type BackfillHandler struct {
	log             *logger.Logger
	backfillService services.BackfillService
}

func NewBackfillHandler(log *logger.Logger, bsvc services.BackfillService) *BackfillHandler {
	return &BackfillHandler{
		log:             log.With("handler", "BackfillHandler"),
		backfillService: bsvc,
	}
}

type backfillRequest struct {
	Limit        int   `json:"limit"`
	TimeBudgetMs int64 `json:"timeBudgetMs"`
}

// POST /api/workshops/:id/backfill/intents
func (h *BackfillHandler) BackfillIntents(c *gin.Context) {
	workshopID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		RespondAPIError(c, apierr.Invalid("workshop id must be a uuid"))
		return
	}

	// Body is optional; an empty body runs with the defaults.
	var req backfillRequest
	if err := c.ShouldBindJSON(&req); err != nil && !errors.Is(err, io.EOF) {
		RespondAPIError(c, apierr.Invalid("invalid request body: %v", err))
		return
	}

	report, err := h.backfillService.Backfill(c.Request.Context(), workshopID, req.Limit, time.Duration(req.TimeBudgetMs)*time.Millisecond)
	if err != nil {
		RespondAPIError(c, err)
		return
	}

	RespondOK(c, gin.H{
		"ok":        true,
		"scanned":   report.Scanned,
		"attempted": report.Attempted,
		"errors":    report.Errors,
		"timedOut":  report.TimedOut,
	})
}
