package repos

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/yungbote/workshoplive-backend/internal/logger"
	"github.com/yungbote/workshoplive-backend/internal/types"
)

type WorkshopRepo interface {
	Create(ctx context.Context, tx *gorm.DB, workshop *types.Workshop) (*types.Workshop, error)
	GetByID(ctx context.Context, tx *gorm.DB, id uuid.UUID) (*types.Workshop, error)
}

type workshopRepo struct {
	db  *gorm.DB
	log *logger.Logger
}

func NewWorkshopRepo(db *gorm.DB, baseLog *logger.Logger) WorkshopRepo {
	repoLog := baseLog.With("repo", "WorkshopRepo")
	return &workshopRepo{db: db, log: repoLog}
}

func (r *workshopRepo) Create(ctx context.Context, tx *gorm.DB, workshop *types.Workshop) (*types.Workshop, error) {
	transaction := tx
	if transaction == nil {
		transaction = r.db
	}

	if workshop == nil {
		return nil, nil
	}
	if err := transaction.WithContext(ctx).Create(workshop).Error; err != nil {
		return nil, err
	}
	return workshop, nil
}

func (r *workshopRepo) GetByID(ctx context.Context, tx *gorm.DB, id uuid.UUID) (*types.Workshop, error) {
	transaction := tx
	if transaction == nil {
		transaction = r.db
	}

	if id == uuid.Nil {
		return nil, nil
	}

	var result types.Workshop
	if err := transaction.WithContext(ctx).
		Where("id = ?", id).
		First(&result).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &result, nil
}
