package types

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type Workshop struct {
	ID        uuid.UUID      `gorm:"type:uuid;primaryKey" json:"id"`
	Title     string         `gorm:"column:title;not null" json:"title"`
	Status    string         `gorm:"column:status;not null;default:'active'" json:"status"`
	CreatedAt time.Time      `gorm:"not null" json:"created_at"`
	UpdatedAt time.Time      `gorm:"not null" json:"updated_at"`
	DeletedAt gorm.DeletedAt `gorm:"index" json:"deleted_at,omitempty"`
}

func (Workshop) TableName() string { return "workshop" }
