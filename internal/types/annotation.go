package types

import (
	"time"

	"github.com/google/uuid"
)

// Dialogue phases a workshop moves through.
const (
	DialoguePhaseExplore   = "explore"
	DialoguePhaseConstrain = "constrain"
	DialoguePhaseDecide    = "decide"
)

func IsValidDialoguePhase(phase string) bool {
	switch phase {
	case DialoguePhaseExplore, DialoguePhaseConstrain, DialoguePhaseDecide:
		return true
	default:
		return false
	}
}

// Annotation has create-or-update semantics: the phase may be set at creation
// and the intent filled in later by an independent write. The unique index on
// content_unit_id is the authoritative guard against concurrent creates; the
// intent is monotonic and only ever written while still null.
type Annotation struct {
	ID            uuid.UUID    `gorm:"type:uuid;primaryKey" json:"id"`
	ContentUnitID uuid.UUID    `gorm:"type:uuid;not null;uniqueIndex" json:"content_unit_id"`
	ContentUnit   *ContentUnit `gorm:"constraint:OnDelete:CASCADE;foreignKey:ContentUnitID;references:ID" json:"content_unit,omitempty"`
	DialoguePhase *string      `gorm:"column:dialogue_phase" json:"dialogue_phase,omitempty"`
	Intent        *string      `gorm:"column:intent" json:"intent,omitempty"`
	CreatedAt     time.Time    `gorm:"not null" json:"created_at"`
	UpdatedAt     time.Time    `gorm:"not null" json:"updated_at"`
}

func (Annotation) TableName() string { return "annotation" }
