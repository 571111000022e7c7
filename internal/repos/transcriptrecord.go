package repos

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/yungbote/workshoplive-backend/internal/logger"
	"github.com/yungbote/workshoplive-backend/internal/types"
)

// IdentityKey is the tuple that determines whether two submissions refer to
// the same underlying utterance.
type IdentityKey struct {
	WorkshopID  uuid.UUID
	SpeakerID   string
	StartTimeMs int64
	EndTimeMs   int64
	TextHash    string
	Source      string
}

type TranscriptRecordRepo interface {
	Create(ctx context.Context, tx *gorm.DB, record *types.TranscriptRecord) (*types.TranscriptRecord, error)
	GetByID(ctx context.Context, tx *gorm.DB, id uuid.UUID) (*types.TranscriptRecord, error)
	GetByIdentity(ctx context.Context, tx *gorm.DB, key IdentityKey) (*types.TranscriptRecord, error)
	ListByWorkshopRange(ctx context.Context, tx *gorm.DB, workshopID uuid.UUID, fromMs, toMs int64) ([]*types.TranscriptRecord, error)
}

type transcriptRecordRepo struct {
	db  *gorm.DB
	log *logger.Logger
}

func NewTranscriptRecordRepo(db *gorm.DB, baseLog *logger.Logger) TranscriptRecordRepo {
	repoLog := baseLog.With("repo", "TranscriptRecordRepo")
	return &transcriptRecordRepo{db: db, log: repoLog}
}

func (r *transcriptRecordRepo) Create(ctx context.Context, tx *gorm.DB, record *types.TranscriptRecord) (*types.TranscriptRecord, error) {
	transaction := tx
	if transaction == nil {
		transaction = r.db
	}

	if record == nil {
		return nil, nil
	}
	if err := transaction.WithContext(ctx).Create(record).Error; err != nil {
		return nil, err
	}
	return record, nil
}

func (r *transcriptRecordRepo) GetByID(ctx context.Context, tx *gorm.DB, id uuid.UUID) (*types.TranscriptRecord, error) {
	transaction := tx
	if transaction == nil {
		transaction = r.db
	}

	if id == uuid.Nil {
		return nil, nil
	}

	var result types.TranscriptRecord
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

func (r *transcriptRecordRepo) GetByIdentity(ctx context.Context, tx *gorm.DB, key IdentityKey) (*types.TranscriptRecord, error) {
	transaction := tx
	if transaction == nil {
		transaction = r.db
	}

	if key.WorkshopID == uuid.Nil {
		return nil, nil
	}

	var result types.TranscriptRecord
	if err := transaction.WithContext(ctx).
		Where("workshop_id = ? AND speaker_id = ? AND start_time_ms = ? AND end_time_ms = ? AND text_hash = ? AND source = ?",
			key.WorkshopID, key.SpeakerID, key.StartTimeMs, key.EndTimeMs, key.TextHash, key.Source).
		First(&result).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &result, nil
}

func (r *transcriptRecordRepo) ListByWorkshopRange(ctx context.Context, tx *gorm.DB, workshopID uuid.UUID, fromMs, toMs int64) ([]*types.TranscriptRecord, error) {
	transaction := tx
	if transaction == nil {
		transaction = r.db
	}

	var results []*types.TranscriptRecord
	if workshopID == uuid.Nil {
		return results, nil
	}

	if err := transaction.WithContext(ctx).
		Where("workshop_id = ? AND start_time_ms >= ? AND end_time_ms <= ?", workshopID, fromMs, toMs).
		Order("start_time_ms ASC").
		Find(&results).Error; err != nil {
		return nil, err
	}
	return results, nil
}
