package handlers

import (
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/yungbote/workshoplive-backend/internal/apierr"
	"github.com/yungbote/workshoplive-backend/internal/logger"
	"github.com/yungbote/workshoplive-backend/internal/services"
)

type TranscriptHandler struct {
	log              *logger.Logger
	ingestionService services.IngestionService
}

func NewTranscriptHandler(log *logger.Logger, isvc services.IngestionService) *TranscriptHandler {
	return &TranscriptHandler{
		log:              log.With("handler", "TranscriptHandler"),
		ingestionService: isvc,
	}
}

type ingestRequest struct {
	SpeakerID     string   `json:"speakerId"`
	StartTime     int64    `json:"startTime"`
	EndTime       int64    `json:"endTime"`
	Text          string   `json:"text"`
	Confidence    *float64 `json:"confidence"`
	Source        string   `json:"source"`
	DialoguePhase *string  `json:"dialoguePhase"`
}

type ingestResponse struct {
	OK                 bool       `json:"ok"`
	TranscriptRecordID uuid.UUID  `json:"transcriptRecordId"`
	ContentUnitID      uuid.UUID  `json:"contentUnitId"`
	ClassificationID   *uuid.UUID `json:"classificationId"`
	Deduped            bool       `json:"deduped"`
}

// POST /api/workshops/:id/transcripts
func (h *TranscriptHandler) Ingest(c *gin.Context) {
	workshopID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		RespondAPIError(c, apierr.Invalid("workshop id must be a uuid"))
		return
	}

	var req ingestRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		RespondAPIError(c, apierr.Invalid("invalid request body: %v", err))
		return
	}

	result, err := h.ingestionService.Ingest(c.Request.Context(), services.IngestInput{
		WorkshopID:    workshopID,
		SpeakerID:     req.SpeakerID,
		StartTimeMs:   req.StartTime,
		EndTimeMs:     req.EndTime,
		Text:          req.Text,
		Confidence:    req.Confidence,
		Source:        req.Source,
		DialoguePhase: req.DialoguePhase,
	})
	if err != nil {
		RespondAPIError(c, err)
		return
	}

	RespondOK(c, ingestResponse{
		OK:                 true,
		TranscriptRecordID: result.TranscriptRecordID,
		ContentUnitID:      result.ContentUnitID,
		ClassificationID:   result.ClassificationID,
		Deduped:            result.Deduped,
	})
}
