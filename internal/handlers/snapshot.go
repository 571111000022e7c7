package handlers

import (
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/yungbote/workshoplive-backend/internal/apierr"
	"github.com/yungbote/workshoplive-backend/internal/logger"
	"github.com/yungbote/workshoplive-backend/internal/services"
	"github.com/yungbote/workshoplive-backend/internal/types"
)

type SnapshotHandler struct {
	log             *logger.Logger
	snapshotService services.SnapshotService
}

func NewSnapshotHandler(log *logger.Logger, ssvc services.SnapshotService) *SnapshotHandler {
	return &SnapshotHandler{
		log:             log.With("handler", "SnapshotHandler"),
		snapshotService: ssvc,
	}
}

type captureSnapshotRequest struct {
	Name          string `json:"name"`
	DialoguePhase string `json:"dialoguePhase"`
	RangeStartMs  int64  `json:"rangeStartMs"`
	RangeEndMs    int64  `json:"rangeEndMs"`
}

func snapshotView(s *types.Snapshot) gin.H {
	return gin.H{
		"id":            s.ID,
		"name":          s.Name,
		"dialoguePhase": s.DialoguePhase,
		"createdAt":     s.CreatedAt,
	}
}

// POST /api/workshops/:id/snapshots
func (h *SnapshotHandler) Capture(c *gin.Context) {
	workshopID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		RespondAPIError(c, apierr.Invalid("workshop id must be a uuid"))
		return
	}

	var req captureSnapshotRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		RespondAPIError(c, apierr.Invalid("invalid request body: %v", err))
		return
	}

	snapshot, err := h.snapshotService.Capture(c.Request.Context(), services.SnapshotCaptureInput{
		WorkshopID:    workshopID,
		Name:          req.Name,
		DialoguePhase: req.DialoguePhase,
		RangeStartMs:  req.RangeStartMs,
		RangeEndMs:    req.RangeEndMs,
	})
	if err != nil {
		RespondAPIError(c, err)
		return
	}
	RespondOK(c, gin.H{"ok": true, "snapshot": snapshotView(snapshot)})
}

// GET /api/workshops/:id/snapshots
func (h *SnapshotHandler) ListByWorkshop(c *gin.Context) {
	workshopID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		RespondAPIError(c, apierr.Invalid("workshop id must be a uuid"))
		return
	}
	snapshots, err := h.snapshotService.ListByWorkshop(c.Request.Context(), workshopID)
	if err != nil {
		RespondAPIError(c, err)
		return
	}
	views := make([]gin.H, 0, len(snapshots))
	for _, s := range snapshots {
		views = append(views, snapshotView(s))
	}
	RespondOK(c, gin.H{"ok": true, "snapshots": views})
}

// GET /api/snapshots/:id
func (h *SnapshotHandler) Get(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		RespondAPIError(c, apierr.Invalid("snapshot id must be a uuid"))
		return
	}
	snapshot, err := h.snapshotService.Get(c.Request.Context(), id)
	if err != nil {
		RespondAPIError(c, err)
		return
	}
	RespondOK(c, gin.H{"ok": true, "snapshot": snapshot})
}
