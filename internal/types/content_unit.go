package types

import (
	"time"

	"github.com/google/uuid"
)

// ContentUnit is the canonical deduplicated content item derived from a
// TranscriptRecord. The unique index on transcript_record_id enforces the
// one-unit-per-record ownership.
type ContentUnit struct {
	ID                 uuid.UUID         `gorm:"type:uuid;primaryKey" json:"id"`
	TranscriptRecordID uuid.UUID         `gorm:"type:uuid;not null;uniqueIndex" json:"transcript_record_id"`
	TranscriptRecord   *TranscriptRecord `gorm:"constraint:OnDelete:CASCADE;foreignKey:TranscriptRecordID;references:ID" json:"transcript_record,omitempty"`
	WorkshopID         uuid.UUID         `gorm:"type:uuid;not null;index" json:"workshop_id"`
	Workshop           *Workshop         `gorm:"constraint:OnDelete:CASCADE;foreignKey:WorkshopID;references:ID" json:"workshop,omitempty"`
	Text               string            `gorm:"column:text;not null" json:"text"`
	Origin             string            `gorm:"column:origin;not null" json:"origin"`
	SpeakerID          string            `gorm:"column:speaker_id;not null;default:''" json:"speaker_id"`
	SessionID          *uuid.UUID        `gorm:"type:uuid;index" json:"session_id,omitempty"`
	ParticipantID      *uuid.UUID        `gorm:"type:uuid;index" json:"participant_id,omitempty"`
	CreatedAt          time.Time         `gorm:"not null" json:"created_at"`
	UpdatedAt          time.Time         `gorm:"not null" json:"updated_at"`
}

func (ContentUnit) TableName() string { return "content_unit" }
