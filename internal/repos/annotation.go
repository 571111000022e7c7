package repos

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/yungbote/workshoplive-backend/internal/logger"
	"github.com/yungbote/workshoplive-backend/internal/types"
)

type AnnotationRepo interface {
	Create(ctx context.Context, tx *gorm.DB, annotation *types.Annotation) (*types.Annotation, error)
	GetByContentUnitID(ctx context.Context, tx *gorm.DB, contentUnitID uuid.UUID) (*types.Annotation, error)
	UpdateIntentIfNull(ctx context.Context, tx *gorm.DB, contentUnitID uuid.UUID, intent string) (bool, error)
}

type annotationRepo struct {
	db  *gorm.DB
	log *logger.Logger
}

func NewAnnotationRepo(db *gorm.DB, baseLog *logger.Logger) AnnotationRepo {
	repoLog := baseLog.With("repo", "AnnotationRepo")
	return &annotationRepo{db: db, log: repoLog}
}

func (r *annotationRepo) Create(ctx context.Context, tx *gorm.DB, annotation *types.Annotation) (*types.Annotation, error) {
	transaction := tx
	if transaction == nil {
		transaction = r.db
	}

	if annotation == nil {
		return nil, nil
	}
	if err := transaction.WithContext(ctx).Create(annotation).Error; err != nil {
		return nil, err
	}
	return annotation, nil
}

func (r *annotationRepo) GetByContentUnitID(ctx context.Context, tx *gorm.DB, contentUnitID uuid.UUID) (*types.Annotation, error) {
	transaction := tx
	if transaction == nil {
		transaction = r.db
	}

	if contentUnitID == uuid.Nil {
		return nil, nil
	}

	var result types.Annotation
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

// UpdateIntentIfNull writes the intent only while it is still unset, keeping
// the intent monotonic. Returns whether a row was actually updated.
func (r *annotationRepo) UpdateIntentIfNull(ctx context.Context, tx *gorm.DB, contentUnitID uuid.UUID, intent string) (bool, error) {
	transaction := tx
	if transaction == nil {
		transaction = r.db
	}

	if contentUnitID == uuid.Nil || intent == "" {
		return false, nil
	}

	res := transaction.WithContext(ctx).
		Model(&types.Annotation{}).
		Where("content_unit_id = ? AND intent IS NULL", contentUnitID).
		Update("intent", intent)
	if res.Error != nil {
		return false, res.Error
	}
	return res.RowsAffected > 0, nil
}
