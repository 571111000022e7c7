package repos

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/yungbote/workshoplive-backend/internal/logger"
	"github.com/yungbote/workshoplive-backend/internal/types"
)

type ContentUnitRepo interface {
	Create(ctx context.Context, tx *gorm.DB, unit *types.ContentUnit) (*types.ContentUnit, error)
	GetByID(ctx context.Context, tx *gorm.DB, id uuid.UUID) (*types.ContentUnit, error)
	GetByTranscriptRecordID(ctx context.Context, tx *gorm.DB, recordID uuid.UUID) (*types.ContentUnit, error)
	ListMissingIntent(ctx context.Context, tx *gorm.DB, workshopID uuid.UUID, limit int) ([]*types.ContentUnit, error)
}

type contentUnitRepo struct {
	db  *gorm.DB
	log *logger.Logger
}

func NewContentUnitRepo(db *gorm.DB, baseLog *logger.Logger) ContentUnitRepo {
	repoLog := baseLog.With("repo", "ContentUnitRepo")
	return &contentUnitRepo{db: db, log: repoLog}
}

func (r *contentUnitRepo) Create(ctx context.Context, tx *gorm.DB, unit *types.ContentUnit) (*types.ContentUnit, error) {
	transaction := tx
	if transaction == nil {
		transaction = r.db
	}

	if unit == nil {
		return nil, nil
	}
	if err := transaction.WithContext(ctx).Create(unit).Error; err != nil {
		return nil, err
	}
	return unit, nil
}

func (r *contentUnitRepo) GetByID(ctx context.Context, tx *gorm.DB, id uuid.UUID) (*types.ContentUnit, error) {
	transaction := tx
	if transaction == nil {
		transaction = r.db
	}

	if id == uuid.Nil {
		return nil, nil
	}

	var result types.ContentUnit
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

func (r *contentUnitRepo) GetByTranscriptRecordID(ctx context.Context, tx *gorm.DB, recordID uuid.UUID) (*types.ContentUnit, error) {
	transaction := tx
	if transaction == nil {
		transaction = r.db
	}

	if recordID == uuid.Nil {
		return nil, nil
	}

	var result types.ContentUnit
	if err := transaction.WithContext(ctx).
		Where("transcript_record_id = ?", recordID).
		First(&result).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &result, nil
}

// ListMissingIntent returns the oldest content units in the workshop whose
// annotation either does not exist yet or still has a null intent. This is the
// missing-signal filter the backfill worker re-runs against, which is what
// makes backfill idempotent.
func (r *contentUnitRepo) ListMissingIntent(ctx context.Context, tx *gorm.DB, workshopID uuid.UUID, limit int) ([]*types.ContentUnit, error) {
	transaction := tx
	if transaction == nil {
		transaction = r.db
	}

	var results []*types.ContentUnit
	if workshopID == uuid.Nil || limit <= 0 {
		return results, nil
	}

	if err := transaction.WithContext(ctx).
		Select("content_unit.*").
		Joins("LEFT JOIN annotation ON annotation.content_unit_id = content_unit.id").
		Where("content_unit.workshop_id = ? AND (annotation.id IS NULL OR annotation.intent IS NULL)", workshopID).
		Order("content_unit.created_at ASC").
		Limit(limit).
		Find(&results).Error; err != nil {
		return nil, err
	}
	return results, nil
}
