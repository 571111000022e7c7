package repos

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/yungbote/workshoplive-backend/internal/logger"
	"github.com/yungbote/workshoplive-backend/internal/types"
)

type SnapshotRepo interface {
	Create(ctx context.Context, tx *gorm.DB, snapshot *types.Snapshot) (*types.Snapshot, error)
	GetByID(ctx context.Context, tx *gorm.DB, id uuid.UUID) (*types.Snapshot, error)
	ListByWorkshopID(ctx context.Context, tx *gorm.DB, workshopID uuid.UUID) ([]*types.Snapshot, error)
}

type snapshotRepo struct {
	db  *gorm.DB
	log *logger.Logger
}

func NewSnapshotRepo(db *gorm.DB, baseLog *logger.Logger) SnapshotRepo {
	repoLog := baseLog.With("repo", "SnapshotRepo")
	return &snapshotRepo{db: db, log: repoLog}
}

func (r *snapshotRepo) Create(ctx context.Context, tx *gorm.DB, snapshot *types.Snapshot) (*types.Snapshot, error) {
	transaction := tx
	if transaction == nil {
		transaction = r.db
	}

	if snapshot == nil {
		return nil, nil
	}
	if err := transaction.WithContext(ctx).Create(snapshot).Error; err != nil {
		return nil, err
	}
	return snapshot, nil
}

func (r *snapshotRepo) GetByID(ctx context.Context, tx *gorm.DB, id uuid.UUID) (*types.Snapshot, error) {
	transaction := tx
	if transaction == nil {
		transaction = r.db
	}

	if id == uuid.Nil {
		return nil, nil
	}

	var result types.Snapshot
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

func (r *snapshotRepo) ListByWorkshopID(ctx context.Context, tx *gorm.DB, workshopID uuid.UUID) ([]*types.Snapshot, error) {
	transaction := tx
	if transaction == nil {
		transaction = r.db
	}

	var results []*types.Snapshot
	if workshopID == uuid.Nil {
		return results, nil
	}

	if err := transaction.WithContext(ctx).
		Where("workshop_id = ?", workshopID).
		Order("created_at DESC").
		Find(&results).Error; err != nil {
		return nil, err
	}
	return results, nil
}
