package types

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/datatypes"
)

// Snapshot is an immutable named capture of workshop content over a time
// range. Never mutated after creation.
type Snapshot struct {
	ID            uuid.UUID      `gorm:"type:uuid;primaryKey" json:"id"`
	WorkshopID    uuid.UUID      `gorm:"type:uuid;not null;index" json:"workshop_id"`
	Workshop      *Workshop      `gorm:"constraint:OnDelete:CASCADE;foreignKey:WorkshopID;references:ID" json:"workshop,omitempty"`
	Name          string         `gorm:"column:name;not null" json:"name"`
	DialoguePhase string         `gorm:"column:dialogue_phase;not null;default:''" json:"dialogue_phase"`
	RangeStartMs  int64          `gorm:"column:range_start_ms;not null" json:"range_start_ms"`
	RangeEndMs    int64          `gorm:"column:range_end_ms;not null" json:"range_end_ms"`
	Content       datatypes.JSON `gorm:"type:jsonb;column:content" json:"content"`
	CreatedAt     time.Time      `gorm:"not null" json:"created_at"`
}

func (Snapshot) TableName() string { return "snapshot" }
