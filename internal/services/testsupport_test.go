package services

import (
	"context"
	"fmt"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/google/uuid"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"

	"github.com/yungbote/workshoplive-backend/internal/logger"
	"github.com/yungbote/workshoplive-backend/internal/realtime"
	"github.com/yungbote/workshoplive-backend/internal/repos"
	"github.com/yungbote/workshoplive-backend/internal/types"
)

func mustTestLogger(t *testing.T) *logger.Logger {
	t.Helper()
	log, err := logger.New("development")
	if err != nil {
		t.Fatalf("logger.New: %v", err)
	}
	t.Cleanup(log.Sync)
	return log
}

// newTestDB opens an in-memory database private to the calling test.
// TranslateError makes unique violations surface as gorm.ErrDuplicatedKey,
// matching what the production driver reports.
func newTestDB(t *testing.T) *gorm.DB {
	t.Helper()
	dsn := fmt.Sprintf("file:%s?mode=memory&cache=shared", strings.ReplaceAll(t.Name(), "/", "_"))
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{TranslateError: true})
	if err != nil {
		t.Fatalf("open test db: %v", err)
	}
	sqlDB, err := db.DB()
	if err != nil {
		t.Fatalf("unwrap sql.DB: %v", err)
	}
	// A single connection serializes statements, so concurrent application
	// writes contend at the application level instead of tripping over
	// database-is-locked errors.
	sqlDB.SetMaxOpenConns(1)
	t.Cleanup(func() { _ = sqlDB.Close() })

	if err := db.AutoMigrate(
		&types.Workshop{},
		&types.TranscriptRecord{},
		&types.ContentUnit{},
		&types.Classification{},
		&types.Annotation{},
		&types.Snapshot{},
	); err != nil {
		t.Fatalf("migrate test db: %v", err)
	}
	return db
}

type fakeClassifier struct {
	mu     sync.Mutex
	calls  int
	result *ClassificationResult
	err    error
}

func (f *fakeClassifier) Classify(ctx context.Context, text string) (*ClassificationResult, error) {
	f.mu.Lock()
	f.calls++
	f.mu.Unlock()
	if f.err != nil {
		return nil, f.err
	}
	if f.result != nil {
		out := *f.result
		return &out, nil
	}
	conf := 0.9
	return NormalizeClassification(types.ClassificationTypeAction, &conf, []string{"budget"}, nil), nil
}

func (f *fakeClassifier) callCount() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.calls
}

type fakeIntent struct {
	mu     sync.Mutex
	calls  int
	intent *string
	err    error
	delay  time.Duration
}

func (f *fakeIntent) DeriveIntent(ctx context.Context, text string) (*string, error) {
	f.mu.Lock()
	f.calls++
	f.mu.Unlock()
	if f.delay > 0 {
		time.Sleep(f.delay)
	}
	if f.err != nil {
		return nil, f.err
	}
	if f.intent == nil {
		return nil, nil
	}
	out := *f.intent
	return &out, nil
}

func (f *fakeIntent) callCount() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.calls
}

// capturePublisher records every published event in order.
type capturePublisher struct {
	mu     sync.Mutex
	events []realtime.WorkshopEvent
}

func (p *capturePublisher) Publish(ctx context.Context, evt realtime.WorkshopEvent) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.events = append(p.events, evt)
}

func (p *capturePublisher) eventTypes() []realtime.EventType {
	p.mu.Lock()
	defer p.mu.Unlock()
	out := make([]realtime.EventType, 0, len(p.events))
	for _, evt := range p.events {
		out = append(out, evt.Type)
	}
	return out
}

// pipelineFixture wires the full ingestion pipeline against an in-memory
// database with controllable providers.
type pipelineFixture struct {
	db         *gorm.DB
	workshop   *types.Workshop
	classifier *fakeClassifier
	intent     *fakeIntent
	publisher  *capturePublisher

	workshopRepo   repos.WorkshopRepo
	recordRepo     repos.TranscriptRecordRepo
	unitRepo       repos.ContentUnitRepo
	classRepo      repos.ClassificationRepo
	annotationRepo repos.AnnotationRepo

	enrichment EnrichmentService
	ingestion  IngestionService
	backfill   BackfillService
}

func newPipelineFixture(t *testing.T) *pipelineFixture {
	t.Helper()
	log := mustTestLogger(t)
	db := newTestDB(t)

	f := &pipelineFixture{
		db:         db,
		classifier: &fakeClassifier{},
		intent:     &fakeIntent{},
		publisher:  &capturePublisher{},
	}
	f.workshopRepo = repos.NewWorkshopRepo(db, log)
	f.recordRepo = repos.NewTranscriptRecordRepo(db, log)
	f.unitRepo = repos.NewContentUnitRepo(db, log)
	f.classRepo = repos.NewClassificationRepo(db, log)
	f.annotationRepo = repos.NewAnnotationRepo(db, log)

	f.enrichment = NewEnrichmentService(log, f.classifier, f.intent, f.classRepo, f.annotationRepo, f.publisher)
	f.ingestion = NewIngestionService(log, f.workshopRepo, f.recordRepo, f.unitRepo, f.classRepo, f.intent, f.enrichment, f.publisher)
	f.backfill = NewBackfillService(log, f.workshopRepo, f.unitRepo, f.enrichment)

	workshop := &types.Workshop{ID: uuid.New(), Title: "Q3 planning", Status: "active"}
	if _, err := f.workshopRepo.Create(context.Background(), nil, workshop); err != nil {
		t.Fatalf("seed workshop: %v", err)
	}
	f.workshop = workshop
	return f
}

func (f *pipelineFixture) sampleInput() IngestInput {
	return IngestInput{
		WorkshopID:  f.workshop.ID,
		SpeakerID:   "speaker-42",
		StartTimeMs: 125_000,
		EndTimeMs:   129_000,
		Text:        "I think we should cap the budget at 50k",
		Source:      types.SourceCaptureDevice,
	}
}

func (f *pipelineFixture) countRows(t *testing.T, model any) int64 {
	t.Helper()
	var n int64
	if err := f.db.Model(model).Count(&n).Error; err != nil {
		t.Fatalf("count rows: %v", err)
	}
	return n
}

// seedUnit creates a record/unit pair directly, bypassing ingestion.
func (f *pipelineFixture) seedUnit(t *testing.T, text string, startMs int64) *types.ContentUnit {
	t.Helper()
	ctx := context.Background()
	record := &types.TranscriptRecord{
		ID:          uuid.New(),
		WorkshopID:  f.workshop.ID,
		SpeakerID:   "speaker-1",
		StartTimeMs: startMs,
		EndTimeMs:   startMs + 1000,
		Text:        text,
		TextHash:    fmt.Sprintf("%064x", startMs),
		Source:      types.SourceProviderA,
	}
	if _, err := f.recordRepo.Create(ctx, nil, record); err != nil {
		t.Fatalf("seed record: %v", err)
	}
	unit := &types.ContentUnit{
		ID:                 uuid.New(),
		TranscriptRecordID: record.ID,
		WorkshopID:         f.workshop.ID,
		Text:               text,
		Origin:             record.Source,
		SpeakerID:          record.SpeakerID,
	}
	created, err := f.unitRepo.Create(ctx, nil, unit)
	if err != nil {
		t.Fatalf("seed unit: %v", err)
	}
	return created
}

func strptr(s string) *string { return &s }
