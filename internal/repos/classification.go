package repos

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/yungbote/workshoplive-backend/internal/logger"
	"github.com/yungbote/workshoplive-backend/internal/types"
)

type ClassificationRepo interface {
	Create(ctx context.Context, tx *gorm.DB, classification *types.Classification) (*types.Classification, error)
	GetByContentUnitID(ctx context.Context, tx *gorm.DB, contentUnitID uuid.UUID) (*types.Classification, error)
}

type classificationRepo struct {
	db  *gorm.DB
	log *logger.Logger
}

func NewClassificationRepo(db *gorm.DB, baseLog *logger.Logger) ClassificationRepo {
	repoLog := baseLog.With("repo", "ClassificationRepo")
	return &classificationRepo{db: db, log: repoLog}
}

func (r *classificationRepo) Create(ctx context.Context, tx *gorm.DB, classification *types.Classification) (*types.Classification, error) {
	transaction := tx
	if transaction == nil {
		transaction = r.db
	}

	if classification == nil {
		return nil, nil
	}
	if err := transaction.WithContext(ctx).Create(classification).Error; err != nil {
		return nil, err
	}
	return classification, nil
}

func (r *classificationRepo) GetByContentUnitID(ctx context.Context, tx *gorm.DB, contentUnitID uuid.UUID) (*types.Classification, error) {
	transaction := tx
	if transaction == nil {
		transaction = r.db
	}

	if contentUnitID == uuid.Nil {
		return nil, nil
	}

	var result types.Classification
	if err := transaction.WithContext(ctx).
		Where("content_unit_id = ?", contentUnitID).
		First(&result).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &result, nil
}
