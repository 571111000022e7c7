package handlers

import (
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/yungbote/workshoplive-backend/internal/apierr"
	"github.com/yungbote/workshoplive-backend/internal/logger"
	"github.com/yungbote/workshoplive-backend/internal/services"
)

type WorkshopHandler struct {
	log             *logger.Logger
	workshopService services.WorkshopService
}

func NewWorkshopHandler(log *logger.Logger, wsvc services.WorkshopService) *WorkshopHandler {
	return &WorkshopHandler{
		log:             log.With("handler", "WorkshopHandler"),
		workshopService: wsvc,
	}
}

type createWorkshopRequest struct {
	Title string `json:"title"`
}

// POST /api/workshops
func (h *WorkshopHandler) Create(c *gin.Context) {
	var req createWorkshopRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		RespondAPIError(c, apierr.Invalid("invalid request body: %v", err))
		return
	}
	workshop, err := h.workshopService.Create(c.Request.Context(), req.Title)
	if err != nil {
		RespondAPIError(c, err)
		return
	}
	RespondOK(c, gin.H{"ok": true, "workshop": workshop})
}

// GET /api/workshops/:id
func (h *WorkshopHandler) Get(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		RespondAPIError(c, apierr.Invalid("workshop id must be a uuid"))
		return
	}
	workshop, err := h.workshopService.Get(c.Request.Context(), id)
	if err != nil {
		RespondAPIError(c, err)
		return
	}
	RespondOK(c, gin.H{"ok": true, "workshop": workshop})
}
