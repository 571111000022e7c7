package types

import (
	"time"

	"github.com/google/uuid"
)

// Transcript sources accepted by the ingestion gateway.
const (
	SourceCaptureDevice = "capture-device"
	SourceProviderA     = "provider-A"
	SourceProviderB     = "provider-B"
)

func IsValidSource(source string) bool {
	switch source {
	case SourceCaptureDevice, SourceProviderA, SourceProviderB:
		return true
	default:
		return false
	}
}

// TranscriptRecord is the durable form of one utterance. Rows are immutable
// once created; the composite unique index over the identity key is what makes
// retried submissions collapse onto one row. TextHash is a sha256 of the
// trimmed text so the index does not carry the full transcript text.
type TranscriptRecord struct {
	ID          uuid.UUID `gorm:"type:uuid;primaryKey" json:"id"`
	WorkshopID  uuid.UUID `gorm:"type:uuid;not null;index;uniqueIndex:idx_transcript_identity" json:"workshop_id"`
	Workshop    *Workshop `gorm:"constraint:OnDelete:CASCADE;foreignKey:WorkshopID;references:ID" json:"workshop,omitempty"`
	SpeakerID   string    `gorm:"column:speaker_id;not null;default:'';uniqueIndex:idx_transcript_identity" json:"speaker_id"`
	StartTimeMs int64     `gorm:"column:start_time_ms;not null;uniqueIndex:idx_transcript_identity" json:"start_time_ms"`
	EndTimeMs   int64     `gorm:"column:end_time_ms;not null;uniqueIndex:idx_transcript_identity" json:"end_time_ms"`
	Text        string    `gorm:"column:text;not null" json:"text"`
	TextHash    string    `gorm:"column:text_hash;size:64;not null;uniqueIndex:idx_transcript_identity" json:"-"`
	Confidence  *float64  `gorm:"column:confidence" json:"confidence,omitempty"`
	Source      string    `gorm:"column:source;not null;uniqueIndex:idx_transcript_identity" json:"source"`
	CreatedAt   time.Time `gorm:"not null" json:"created_at"`
	UpdatedAt   time.Time `gorm:"not null" json:"updated_at"`
}

func (TranscriptRecord) TableName() string { return "transcript_record" }
