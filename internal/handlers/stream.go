package handlers

import (
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/yungbote/workshoplive-backend/internal/apierr"
	"github.com/yungbote/workshoplive-backend/internal/logger"
	"github.com/yungbote/workshoplive-backend/internal/realtime"
	"github.com/yungbote/workshoplive-backend/internal/services"
)

type StreamHandler struct {
	log             *logger.Logger
	hub             *realtime.WorkshopHub
	workshopService services.WorkshopService
}

func NewStreamHandler(log *logger.Logger, hub *realtime.WorkshopHub, wsvc services.WorkshopService) *StreamHandler {
	return &StreamHandler{
		log:             log.With("handler", "StreamHandler"),
		hub:             hub,
		workshopService: wsvc,
	}
}

// GET /api/workshops/:id/stream
//
// Long-lived SSE stream of one workshop's events. The subscription is torn
// down, and every associated resource released, the moment the client
// disconnects.
func (h *StreamHandler) Stream(c *gin.Context) {
	workshopID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		RespondAPIError(c, apierr.Invalid("workshop id must be a uuid"))
		return
	}
	if _, err := h.workshopService.Get(c.Request.Context(), workshopID); err != nil {
		RespondAPIError(c, err)
		return
	}

	sub := h.hub.Subscribe(workshopID)
	defer h.hub.CloseSubscriber(sub)

	h.hub.ServeHTTP(c.Writer, c.Request, sub)
}
