package realtime

import (
	"time"

	"github.com/google/uuid"
)

type EventType string

const (
	EventContentCreated        EventType = "content-created"
	EventClassificationUpdated EventType = "classification-updated"
	EventAnnotationUpdated     EventType = "annotation-updated"
)

// WorkshopEvent is ephemeral: constructed, fanned out to whoever is attached
// to the workshop at that moment, then discarded. No replay.
type WorkshopEvent struct {
	ID         uuid.UUID `json:"id"`
	WorkshopID uuid.UUID `json:"workshop_id"`
	Type       EventType `json:"type"`
	Timestamp  time.Time `json:"timestamp"`
	Payload    any       `json:"payload,omitempty"`
}

func NewWorkshopEvent(workshopID uuid.UUID, eventType EventType, payload any) WorkshopEvent {
	return WorkshopEvent{
		ID:         uuid.New(),
		WorkshopID: workshopID,
		Type:       eventType,
		Timestamp:  time.Now().UTC(),
		Payload:    payload,
	}
}

// ContentCreatedPayload is the projection of a freshly created record chain.
type ContentCreatedPayload struct {
	TranscriptRecordID uuid.UUID `json:"transcript_record_id"`
	ContentUnitID      uuid.UUID `json:"content_unit_id"`
	Text               string    `json:"text"`
	SpeakerID          string    `json:"speaker_id,omitempty"`
	Source             string    `json:"source"`
	StartTimeMs        int64     `json:"start_time_ms"`
	EndTimeMs          int64     `json:"end_time_ms"`
	DialoguePhase      string    `json:"dialogue_phase,omitempty"`
	CreatedAt          time.Time `json:"created_at"`
}

type ClassificationUpdatedPayload struct {
	ContentUnitID    uuid.UUID `json:"content_unit_id"`
	ClassificationID uuid.UUID `json:"classification_id"`
	PrimaryType      string    `json:"primary_type"`
	Confidence       *float64  `json:"confidence,omitempty"`
	Keywords         []string  `json:"keywords,omitempty"`
	SuggestedArea    *string   `json:"suggested_area,omitempty"`
}

type AnnotationUpdatedPayload struct {
	ContentUnitID uuid.UUID `json:"content_unit_id"`
	AnnotationID  uuid.UUID `json:"annotation_id"`
	DialoguePhase *string   `json:"dialogue_phase,omitempty"`
	Intent        *string   `json:"intent,omitempty"`
}
