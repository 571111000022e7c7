package services

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/google/uuid"

	"github.com/yungbote/workshoplive-backend/internal/logger"
	"github.com/yungbote/workshoplive-backend/internal/realtime"
	"github.com/yungbote/workshoplive-backend/internal/repos"
	"github.com/yungbote/workshoplive-backend/internal/types"
)

// EnrichmentService runs the AI-derived enrichment for a content unit and
// persists the outcome exactly once. Classification is write-once; the
// annotation upsert leans on the storage-level uniqueness constraint, so a
// losing concurrent create is absorbed, never surfaced.
type EnrichmentService interface {
	// Classify runs the classifier, persists the result once and publishes a
	// classification-updated event. A racing duplicate create resolves to the
	// row that won.
	Classify(ctx context.Context, unit *types.ContentUnit) (*types.Classification, error)
	// AttachIntent derives the intent for the unit and attaches it via
	// AttachIntentValue. No-op when the intent is already set.
	AttachIntent(ctx context.Context, unit *types.ContentUnit, knownPhase *string) error
	// AttachIntentValue upserts an already-derived intent onto the unit's
	// annotation, creating the annotation with the known phase when absent.
	// The intent is monotonic: only written while still null.
	AttachIntentValue(ctx context.Context, unit *types.ContentUnit, knownPhase *string, intent *string) error
	// EnsurePhase creates the unit's annotation with the given phase when no
	// annotation exists yet. Best-effort: a concurrent duplicate create is
	// swallowed. Publishes nothing; the phase travels with the
	// content-created projection on the fresh path, and annotation-updated
	// is reserved for intent writes.
	EnsurePhase(ctx context.Context, unit *types.ContentUnit, phase string) error
}

type enrichmentService struct {
	log            *logger.Logger
	classifier     ClassifierProvider
	intent         IntentProvider
	classRepo      repos.ClassificationRepo
	annotationRepo repos.AnnotationRepo
	publisher      EventPublisher
}

func NewEnrichmentService(
	log *logger.Logger,
	classifier ClassifierProvider,
	intent IntentProvider,
	classRepo repos.ClassificationRepo,
	annotationRepo repos.AnnotationRepo,
	publisher EventPublisher,
) EnrichmentService {
	return &enrichmentService{
		log:            log.With("service", "EnrichmentService"),
		classifier:     classifier,
		intent:         intent,
		classRepo:      classRepo,
		annotationRepo: annotationRepo,
		publisher:      publisher,
	}
}

func (s *enrichmentService) Classify(ctx context.Context, unit *types.ContentUnit) (*types.Classification, error) {
	result, err := s.classifier.Classify(ctx, unit.Text)
	if err != nil {
		return nil, fmt.Errorf("classification failed: %w", err)
	}

	var keywords []byte
	if len(result.Keywords) > 0 {
		keywords, err = json.Marshal(result.Keywords)
		if err != nil {
			return nil, fmt.Errorf("marshal keywords: %w", err)
		}
	}

	classification := &types.Classification{
		ID:            uuid.New(),
		ContentUnitID: unit.ID,
		PrimaryType:   result.PrimaryType,
		Confidence:    result.Confidence,
		Keywords:      keywords,
		SuggestedArea: result.SuggestedArea,
	}
	created, err := s.classRepo.Create(ctx, nil, classification)
	if err != nil {
		if !repos.IsDuplicateKey(err) {
			return nil, fmt.Errorf("persist classification: %w", err)
		}
		// Someone else classified this unit first; theirs is canonical.
		existing, getErr := s.classRepo.GetByContentUnitID(ctx, nil, unit.ID)
		if getErr != nil {
			return nil, fmt.Errorf("load winning classification: %w", getErr)
		}
		return existing, nil
	}

	s.publisher.Publish(ctx, realtime.NewWorkshopEvent(unit.WorkshopID, realtime.EventClassificationUpdated, realtime.ClassificationUpdatedPayload{
		ContentUnitID:    unit.ID,
		ClassificationID: created.ID,
		PrimaryType:      created.PrimaryType,
		Confidence:       created.Confidence,
		Keywords:         result.Keywords,
		SuggestedArea:    created.SuggestedArea,
	}))
	return created, nil
}

func (s *enrichmentService) AttachIntent(ctx context.Context, unit *types.ContentUnit, knownPhase *string) error {
	existing, err := s.annotationRepo.GetByContentUnitID(ctx, nil, unit.ID)
	if err != nil {
		return fmt.Errorf("load annotation: %w", err)
	}
	if existing != nil && existing.Intent != nil {
		return nil
	}
	if existing != nil && knownPhase == nil {
		knownPhase = existing.DialoguePhase
	}

	intent, err := s.intent.DeriveIntent(ctx, unit.Text)
	if err != nil {
		return fmt.Errorf("intent derivation failed: %w", err)
	}
	return s.AttachIntentValue(ctx, unit, knownPhase, intent)
}

func (s *enrichmentService) AttachIntentValue(ctx context.Context, unit *types.ContentUnit, knownPhase *string, intent *string) error {
	if intent == nil {
		return nil
	}

	annotation := &types.Annotation{
		ID:            uuid.New(),
		ContentUnitID: unit.ID,
		DialoguePhase: knownPhase,
		Intent:        intent,
	}
	if _, err := s.annotationRepo.Create(ctx, nil, annotation); err != nil {
		if !repos.IsDuplicateKey(err) {
			return fmt.Errorf("persist annotation: %w", err)
		}
		// Lost the create race; fall back to filling in the intent on the
		// winner's row, which is still a no-op if an intent landed already.
		updated, updErr := s.annotationRepo.UpdateIntentIfNull(ctx, nil, unit.ID, *intent)
		if updErr != nil {
			return fmt.Errorf("update intent: %w", updErr)
		}
		if !updated {
			return nil
		}
	}

	current, err := s.annotationRepo.GetByContentUnitID(ctx, nil, unit.ID)
	if err != nil || current == nil {
		// The write went through; the projection fetch is best-effort.
		s.log.Warn("Could not load annotation for event projection", "contentUnitID", unit.ID, "error", err)
		return nil
	}
	s.publisher.Publish(ctx, realtime.NewWorkshopEvent(unit.WorkshopID, realtime.EventAnnotationUpdated, realtime.AnnotationUpdatedPayload{
		ContentUnitID: unit.ID,
		AnnotationID:  current.ID,
		DialoguePhase: current.DialoguePhase,
		Intent:        current.Intent,
	}))
	return nil
}

func (s *enrichmentService) EnsurePhase(ctx context.Context, unit *types.ContentUnit, phase string) error {
	existing, err := s.annotationRepo.GetByContentUnitID(ctx, nil, unit.ID)
	if err != nil {
		return fmt.Errorf("load annotation: %w", err)
	}
	if existing != nil {
		return nil
	}

	annotation := &types.Annotation{
		ID:            uuid.New(),
		ContentUnitID: unit.ID,
		DialoguePhase: &phase,
	}
	if _, err := s.annotationRepo.Create(ctx, nil, annotation); err != nil {
		if repos.IsDuplicateKey(err) {
			// The uniqueness invariant wins; whoever created it first stands.
			return nil
		}
		return fmt.Errorf("persist annotation: %w", err)
	}
	return nil
}
