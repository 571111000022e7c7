package types

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/datatypes"
)

// Classification primary types. Unrecognized model output normalizes to
// ClassificationTypeInsight.
const (
	ClassificationTypeVisionary   = "visionary"
	ClassificationTypeOpportunity = "opportunity"
	ClassificationTypeConstraint  = "constraint"
	ClassificationTypeRisk        = "risk"
	ClassificationTypeEnabler     = "enabler"
	ClassificationTypeAction      = "action"
	ClassificationTypeQuestion    = "question"
	ClassificationTypeInsight     = "insight"
)

func IsValidClassificationType(t string) bool {
	switch t {
	case ClassificationTypeVisionary, ClassificationTypeOpportunity,
		ClassificationTypeConstraint, ClassificationTypeRisk,
		ClassificationTypeEnabler, ClassificationTypeAction,
		ClassificationTypeQuestion, ClassificationTypeInsight:
		return true
	default:
		return false
	}
}

// Classification is write-once: created at most once per ContentUnit and never
// updated afterwards. The unique index on content_unit_id absorbs racing
// creates.
type Classification struct {
	ID            uuid.UUID      `gorm:"type:uuid;primaryKey" json:"id"`
	ContentUnitID uuid.UUID      `gorm:"type:uuid;not null;uniqueIndex" json:"content_unit_id"`
	ContentUnit   *ContentUnit   `gorm:"constraint:OnDelete:CASCADE;foreignKey:ContentUnitID;references:ID" json:"content_unit,omitempty"`
	PrimaryType   string         `gorm:"column:primary_type;not null" json:"primary_type"`
	Confidence    *float64       `gorm:"column:confidence" json:"confidence,omitempty"`
	Keywords      datatypes.JSON `gorm:"type:jsonb;column:keywords" json:"keywords,omitempty"`
	SuggestedArea *string        `gorm:"column:suggested_area" json:"suggested_area,omitempty"`
	CreatedAt     time.Time      `gorm:"not null" json:"created_at"`
}

func (Classification) TableName() string { return "classification" }
