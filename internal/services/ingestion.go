package services

import (
	"context"
	"strings"
	"time"

	"github.com/google/uuid"
	"golang.org/x/sync/errgroup"

	"github.com/yungbote/workshoplive-backend/internal/apierr"
	"github.com/yungbote/workshoplive-backend/internal/logger"
	"github.com/yungbote/workshoplive-backend/internal/realtime"
	"github.com/yungbote/workshoplive-backend/internal/repos"
	"github.com/yungbote/workshoplive-backend/internal/types"
	"github.com/yungbote/workshoplive-backend/internal/utils"
)

const detachedWorkTimeout = 30 * time.Second

type IngestInput struct {
	WorkshopID    uuid.UUID
	SpeakerID     string
	StartTimeMs   int64
	EndTimeMs     int64
	Text          string
	Confidence    *float64
	Source        string
	DialoguePhase *string
}

type IngestResult struct {
	TranscriptRecordID uuid.UUID
	ContentUnitID      uuid.UUID
	ClassificationID   *uuid.UUID
	Deduped            bool
}

// IngestionService is the gateway a transcript chunk enters the pipeline
// through: validate, dedup against the identity key, create the canonical
// record chain, enrich, and emit events. Enrichment failure never fails
// ingestion; the response just omits the enrichment ids.
type IngestionService interface {
	Ingest(ctx context.Context, input IngestInput) (*IngestResult, error)
}

type ingestionService struct {
	log          *logger.Logger
	workshopRepo repos.WorkshopRepo
	recordRepo   repos.TranscriptRecordRepo
	unitRepo     repos.ContentUnitRepo
	classRepo    repos.ClassificationRepo
	intent       IntentProvider
	enrichment   EnrichmentService
	publisher    EventPublisher
}

func NewIngestionService(
	log *logger.Logger,
	workshopRepo repos.WorkshopRepo,
	recordRepo repos.TranscriptRecordRepo,
	unitRepo repos.ContentUnitRepo,
	classRepo repos.ClassificationRepo,
	intent IntentProvider,
	enrichment EnrichmentService,
	publisher EventPublisher,
) IngestionService {
	return &ingestionService{
		log:          log.With("service", "IngestionService"),
		workshopRepo: workshopRepo,
		recordRepo:   recordRepo,
		unitRepo:     unitRepo,
		classRepo:    classRepo,
		intent:       intent,
		enrichment:   enrichment,
		publisher:    publisher,
	}
}

func (s *ingestionService) Ingest(ctx context.Context, input IngestInput) (*IngestResult, error) {
	normalized, err := normalizeIngestInput(input)
	if err != nil {
		return nil, err
	}

	workshop, err := s.workshopRepo.GetByID(ctx, nil, normalized.WorkshopID)
	if err != nil {
		return nil, apierr.Internal(err)
	}
	if workshop == nil {
		return nil, apierr.NotFound("workshop %s not found", normalized.WorkshopID)
	}

	key := repos.IdentityKey{
		WorkshopID:  normalized.WorkshopID,
		SpeakerID:   normalized.SpeakerID,
		StartTimeMs: normalized.StartTimeMs,
		EndTimeMs:   normalized.EndTimeMs,
		TextHash:    utils.HashText(normalized.Text),
		Source:      normalized.Source,
	}

	existing, err := s.recordRepo.GetByIdentity(ctx, nil, key)
	if err != nil {
		return nil, apierr.Internal(err)
	}
	if existing != nil {
		return s.ingestDeduped(ctx, normalized, existing)
	}

	result, err := s.ingestFresh(ctx, normalized, key)
	if err == nil || !repos.IsDuplicateKey(err) {
		return result, err
	}

	// A concurrent submission of the same utterance won the record create.
	// Re-resolve the identity key and take the dedup path against its chain.
	winner, getErr := s.recordRepo.GetByIdentity(ctx, nil, key)
	if getErr != nil || winner == nil {
		return nil, apierr.Internal(err)
	}
	return s.ingestDeduped(ctx, normalized, winner)
}

func normalizeIngestInput(input IngestInput) (IngestInput, error) {
	if input.WorkshopID == uuid.Nil {
		return input, apierr.Invalid("workshopId is required")
	}
	input.Text = strings.TrimSpace(input.Text)
	if input.Text == "" {
		return input, apierr.Invalid("text must not be empty")
	}
	if !types.IsValidSource(input.Source) {
		return input, apierr.Invalid("source %q is not a known transcript source", input.Source)
	}
	if input.DialoguePhase != nil && !types.IsValidDialoguePhase(*input.DialoguePhase) {
		return input, apierr.Invalid("dialoguePhase %q is not one of explore, constrain, decide", *input.DialoguePhase)
	}

	if input.StartTimeMs < 0 {
		input.StartTimeMs = 0
	}
	if input.EndTimeMs < input.StartTimeMs {
		input.EndTimeMs = input.StartTimeMs
	}
	if input.Confidence != nil {
		v := *input.Confidence
		if v < 0 {
			v = 0
		}
		if v > 1 {
			v = 1
		}
		input.Confidence = &v
	}
	input.SpeakerID = strings.TrimSpace(input.SpeakerID)
	return input, nil
}

// ingestDeduped handles a retried submission: the caller already holds a
// valid chain, so respond with it immediately and only run best-effort,
// detached catch-up work.
func (s *ingestionService) ingestDeduped(ctx context.Context, input IngestInput, record *types.TranscriptRecord) (*IngestResult, error) {
	unit, err := s.unitRepo.GetByTranscriptRecordID(ctx, nil, record.ID)
	if err != nil {
		return nil, apierr.Internal(err)
	}
	if unit == nil {
		// Record without a unit means a previous fresh ingestion died between
		// the two creates; finish the chain now.
		unit, err = s.createContentUnit(ctx, input, record)
		if err != nil {
			return nil, apierr.Internal(err)
		}
	}

	if input.DialoguePhase != nil {
		if err := s.enrichment.EnsurePhase(ctx, unit, *input.DialoguePhase); err != nil {
			s.log.Warn("Best-effort phase annotation failed", "contentUnitID", unit.ID, "error", err)
		}
	}

	// Intent catch-up runs detached: the caller already has its answer, so
	// the outcome is not awaited and failure is only logged.
	unitCopy := *unit
	phase := input.DialoguePhase
	s.spawnDetached("dedup-intent-derivation", func(detachedCtx context.Context) error {
		return s.enrichment.AttachIntent(detachedCtx, &unitCopy, phase)
	})

	result := &IngestResult{
		TranscriptRecordID: record.ID,
		ContentUnitID:      unit.ID,
		Deduped:            true,
	}
	classification, err := s.classRepo.GetByContentUnitID(ctx, nil, unit.ID)
	if err != nil {
		s.log.Warn("Could not load classification for dedup response", "contentUnitID", unit.ID, "error", err)
	} else if classification != nil {
		result.ClassificationID = &classification.ID
	}
	return result, nil
}

func (s *ingestionService) ingestFresh(ctx context.Context, input IngestInput, key repos.IdentityKey) (*IngestResult, error) {
	record := &types.TranscriptRecord{
		ID:          uuid.New(),
		WorkshopID:  input.WorkshopID,
		SpeakerID:   input.SpeakerID,
		StartTimeMs: input.StartTimeMs,
		EndTimeMs:   input.EndTimeMs,
		Text:        input.Text,
		TextHash:    key.TextHash,
		Confidence:  input.Confidence,
		Source:      input.Source,
	}
	if _, err := s.recordRepo.Create(ctx, nil, record); err != nil {
		if repos.IsDuplicateKey(err) {
			return nil, err
		}
		return nil, apierr.Internal(err)
	}

	unit, err := s.createContentUnit(ctx, input, record)
	if err != nil {
		return nil, apierr.Internal(err)
	}

	if input.DialoguePhase != nil {
		if err := s.enrichment.EnsurePhase(ctx, unit, *input.DialoguePhase); err != nil {
			s.log.Warn("Phase annotation failed", "contentUnitID", unit.ID, "error", err)
		}
	}

	phase := ""
	if input.DialoguePhase != nil {
		phase = *input.DialoguePhase
	}
	s.publisher.Publish(ctx, realtime.NewWorkshopEvent(record.WorkshopID, realtime.EventContentCreated, realtime.ContentCreatedPayload{
		TranscriptRecordID: record.ID,
		ContentUnitID:      unit.ID,
		Text:               record.Text,
		SpeakerID:          record.SpeakerID,
		Source:             record.Source,
		StartTimeMs:        record.StartTimeMs,
		EndTimeMs:          record.EndTimeMs,
		DialoguePhase:      phase,
		CreatedAt:          record.CreatedAt,
	}))

	// Intent derivation starts alongside classification; classification runs
	// to completion first, then the intent result is awaited so the final
	// annotation upsert is attempted before the gateway responds.
	var intent *string
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		derived, derr := s.intent.DeriveIntent(gctx, unit.Text)
		if derr != nil {
			s.log.Warn("Intent derivation failed", "contentUnitID", unit.ID, "error", derr)
			return nil
		}
		intent = derived
		return nil
	})

	result := &IngestResult{
		TranscriptRecordID: record.ID,
		ContentUnitID:      unit.ID,
	}
	classification, err := s.enrichment.Classify(ctx, unit)
	if err != nil {
		s.log.Warn("Classification failed, ingesting without it", "contentUnitID", unit.ID, "error", err)
	} else if classification != nil {
		result.ClassificationID = &classification.ID
	}

	_ = g.Wait()
	if intent != nil {
		if err := s.enrichment.AttachIntentValue(ctx, unit, input.DialoguePhase, intent); err != nil {
			s.log.Warn("Intent attach failed, ingesting without it", "contentUnitID", unit.ID, "error", err)
		}
	}

	return result, nil
}

func (s *ingestionService) createContentUnit(ctx context.Context, input IngestInput, record *types.TranscriptRecord) (*types.ContentUnit, error) {
	unit := &types.ContentUnit{
		ID:                 uuid.New(),
		TranscriptRecordID: record.ID,
		WorkshopID:         record.WorkshopID,
		Text:               record.Text,
		Origin:             record.Source,
		SpeakerID:          record.SpeakerID,
	}
	created, err := s.unitRepo.Create(ctx, nil, unit)
	if err != nil {
		if repos.IsDuplicateKey(err) {
			return s.unitRepo.GetByTranscriptRecordID(ctx, nil, record.ID)
		}
		return nil, err
	}
	return created, nil
}

// spawnDetached runs fn outside the request lifecycle. Detached work is
// tagged so its failures are attributable in logs, but it is never joined.
func (s *ingestionService) spawnDetached(tag string, fn func(ctx context.Context) error) {
	go func() {
		ctx, cancel := context.WithTimeout(context.Background(), detachedWorkTimeout)
		defer cancel()
		if err := fn(ctx); err != nil {
			s.log.Warn("Detached work failed", "tag", tag, "error", err)
		}
	}()
}
