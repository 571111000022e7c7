package services

import (
	"context"
	"time"

	"github.com/google/uuid"

	"github.com/yungbote/workshoplive-backend/internal/apierr"
	"github.com/yungbote/workshoplive-backend/internal/logger"
	"github.com/yungbote/workshoplive-backend/internal/repos"
)

const (
	// BackfillMaxLimit caps how many content units one invocation may select.
	BackfillMaxLimit = 500
	// BackfillDefaultBudget bounds a run that did not name its own budget.
	BackfillDefaultBudget = 25 * time.Second
)

type BackfillReport struct {
	Scanned   int  `json:"scanned"`
	Attempted int  `json:"attempted"`
	Errors    int  `json:"errors"`
	TimedOut  bool `json:"timedOut"`
}

// BackfillService walks content units still missing an intent and runs the
// same enrichment path ingestion uses, outside live-ingestion timing. The
// missing-signal filter makes re-runs idempotent: items enriched on a
// previous pass are not selected again.
type BackfillService interface {
	Backfill(ctx context.Context, workshopID uuid.UUID, limit int, timeBudget time.Duration) (*BackfillReport, error)
}

type backfillService struct {
	log          *logger.Logger
	workshopRepo repos.WorkshopRepo
	unitRepo     repos.ContentUnitRepo
	enrichment   EnrichmentService
}

func NewBackfillService(
	log *logger.Logger,
	workshopRepo repos.WorkshopRepo,
	unitRepo repos.ContentUnitRepo,
	enrichment EnrichmentService,
) BackfillService {
	return &backfillService{
		log:          log.With("service", "BackfillService"),
		workshopRepo: workshopRepo,
		unitRepo:     unitRepo,
		enrichment:   enrichment,
	}
}

func (s *backfillService) Backfill(ctx context.Context, workshopID uuid.UUID, limit int, timeBudget time.Duration) (*BackfillReport, error) {
	if limit <= 0 || limit > BackfillMaxLimit {
		limit = BackfillMaxLimit
	}
	if timeBudget <= 0 {
		timeBudget = BackfillDefaultBudget
	}

	workshop, err := s.workshopRepo.GetByID(ctx, nil, workshopID)
	if err != nil {
		return nil, apierr.Internal(err)
	}
	if workshop == nil {
		return nil, apierr.NotFound("workshop %s not found", workshopID)
	}

	units, err := s.unitRepo.ListMissingIntent(ctx, nil, workshopID, limit)
	if err != nil {
		return nil, apierr.Internal(err)
	}

	report := &BackfillReport{}
	started := time.Now()
	for _, unit := range units {
		// Soft deadline: checked between items, never preempting one in
		// flight.
		if time.Since(started) >= timeBudget {
			report.TimedOut = true
			break
		}
		if ctx.Err() != nil {
			report.TimedOut = true
			break
		}
		report.Scanned++

		report.Attempted++
		if err := s.enrichment.AttachIntent(ctx, unit, nil); err != nil {
			report.Errors++
			s.log.Warn("Backfill enrichment failed", "contentUnitID", unit.ID, "error", err)
		}
	}

	s.log.Info("Backfill pass finished",
		"workshopID", workshopID,
		"eligible", len(units),
		"scanned", report.Scanned,
		"attempted", report.Attempted,
		"errors", report.Errors,
		"timedOut", report.TimedOut,
	)
	return report, nil
}
