package services

import (
	"context"
	"encoding/json"
	"strings"

	"github.com/google/uuid"

	"github.com/yungbote/workshoplive-backend/internal/apierr"
	"github.com/yungbote/workshoplive-backend/internal/logger"
	"github.com/yungbote/workshoplive-backend/internal/repos"
	"github.com/yungbote/workshoplive-backend/internal/types"
)

type SnapshotCaptureInput struct {
	WorkshopID    uuid.UUID
	Name          string
	DialoguePhase string
	RangeStartMs  int64
	RangeEndMs    int64
}

// snapshotEntry is one aggregated utterance inside a snapshot's content blob.
type snapshotEntry struct {
	TranscriptRecordID uuid.UUID `json:"transcript_record_id"`
	SpeakerID          string    `json:"speaker_id,omitempty"`
	StartTimeMs        int64     `json:"start_time_ms"`
	EndTimeMs          int64     `json:"end_time_ms"`
	Text               string    `json:"text"`
	Source             string    `json:"source"`
}

// SnapshotService captures an immutable named aggregate of a workshop's
// transcript records over a time range.
type SnapshotService interface {
	Capture(ctx context.Context, input SnapshotCaptureInput) (*types.Snapshot, error)
	Get(ctx context.Context, id uuid.UUID) (*types.Snapshot, error)
	ListByWorkshop(ctx context.Context, workshopID uuid.UUID) ([]*types.Snapshot, error)
}

type snapshotService struct {
	log          *logger.Logger
	workshopRepo repos.WorkshopRepo
	recordRepo   repos.TranscriptRecordRepo
	snapshotRepo repos.SnapshotRepo
}

func NewSnapshotService(
	log *logger.Logger,
	workshopRepo repos.WorkshopRepo,
	recordRepo repos.TranscriptRecordRepo,
	snapshotRepo repos.SnapshotRepo,
) SnapshotService {
	return &snapshotService{
		log:          log.With("service", "SnapshotService"),
		workshopRepo: workshopRepo,
		recordRepo:   recordRepo,
		snapshotRepo: snapshotRepo,
	}
}

func (s *snapshotService) Capture(ctx context.Context, input SnapshotCaptureInput) (*types.Snapshot, error) {
	input.Name = strings.TrimSpace(input.Name)
	if input.Name == "" {
		return nil, apierr.Invalid("name must not be empty")
	}
	if input.DialoguePhase != "" && !types.IsValidDialoguePhase(input.DialoguePhase) {
		return nil, apierr.Invalid("dialoguePhase %q is not one of explore, constrain, decide", input.DialoguePhase)
	}
	if input.RangeStartMs < 0 {
		input.RangeStartMs = 0
	}
	if input.RangeEndMs < input.RangeStartMs {
		return nil, apierr.Invalid("time range end must not precede start")
	}

	workshop, err := s.workshopRepo.GetByID(ctx, nil, input.WorkshopID)
	if err != nil {
		return nil, apierr.Internal(err)
	}
	if workshop == nil {
		return nil, apierr.NotFound("workshop %s not found", input.WorkshopID)
	}

	records, err := s.recordRepo.ListByWorkshopRange(ctx, nil, input.WorkshopID, input.RangeStartMs, input.RangeEndMs)
	if err != nil {
		return nil, apierr.Internal(err)
	}

	entries := make([]snapshotEntry, 0, len(records))
	for _, record := range records {
		entries = append(entries, snapshotEntry{
			TranscriptRecordID: record.ID,
			SpeakerID:          record.SpeakerID,
			StartTimeMs:        record.StartTimeMs,
			EndTimeMs:          record.EndTimeMs,
			Text:               record.Text,
			Source:             record.Source,
		})
	}
	content, err := json.Marshal(entries)
	if err != nil {
		return nil, apierr.Internal(err)
	}

	snapshot := &types.Snapshot{
		ID:            uuid.New(),
		WorkshopID:    input.WorkshopID,
		Name:          input.Name,
		DialoguePhase: input.DialoguePhase,
		RangeStartMs:  input.RangeStartMs,
		RangeEndMs:    input.RangeEndMs,
		Content:       content,
	}
	if _, err := s.snapshotRepo.Create(ctx, nil, snapshot); err != nil {
		return nil, apierr.Internal(err)
	}
	return snapshot, nil
}

func (s *snapshotService) Get(ctx context.Context, id uuid.UUID) (*types.Snapshot, error) {
	snapshot, err := s.snapshotRepo.GetByID(ctx, nil, id)
	if err != nil {
		return nil, apierr.Internal(err)
	}
	if snapshot == nil {
		return nil, apierr.NotFound("snapshot %s not found", id)
	}
	return snapshot, nil
}

func (s *snapshotService) ListByWorkshop(ctx context.Context, workshopID uuid.UUID) ([]*types.Snapshot, error) {
	workshop, err := s.workshopRepo.GetByID(ctx, nil, workshopID)
	if err != nil {
		return nil, apierr.Internal(err)
	}
	if workshop == nil {
		return nil, apierr.NotFound("workshop %s not found", workshopID)
	}
	snapshots, err := s.snapshotRepo.ListByWorkshopID(ctx, nil, workshopID)
	if err != nil {
		return nil, apierr.Internal(err)
	}
	return snapshots, nil
}
