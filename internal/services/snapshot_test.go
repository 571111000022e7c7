package services

import (
	"context"
	"encoding/json"
	"testing"

	"github.com/google/uuid"

	"github.com/yungbote/workshoplive-backend/internal/apierr"
	"github.com/yungbote/workshoplive-backend/internal/repos"
	"github.com/yungbote/workshoplive-backend/internal/types"
)

func newSnapshotService(t *testing.T, f *pipelineFixture) SnapshotService {
	t.Helper()
	log := mustTestLogger(t)
	return NewSnapshotService(log, f.workshopRepo, f.recordRepo, repos.NewSnapshotRepo(f.db, log))
}

func TestSnapshotCapture_AggregatesRange(t *testing.T) {
	f := newPipelineFixture(t)
	svc := newSnapshotService(t, f)
	ctx := context.Background()

	f.seedUnit(t, "inside the window", 2000)
	f.seedUnit(t, "also inside", 4000)
	f.seedUnit(t, "outside the window", 90_000)

	snapshot, err := svc.Capture(ctx, SnapshotCaptureInput{
		WorkshopID:    f.workshop.ID,
		Name:          "midpoint check",
		DialoguePhase: types.DialoguePhaseConstrain,
		RangeStartMs:  1000,
		RangeEndMs:    10_000,
	})
	if err != nil {
		t.Fatalf("capture: %v", err)
	}
	if snapshot.Name != "midpoint check" || snapshot.DialoguePhase != types.DialoguePhaseConstrain {
		t.Fatalf("unexpected snapshot: %+v", snapshot)
	}

	var entries []snapshotEntry
	if err := json.Unmarshal(snapshot.Content, &entries); err != nil {
		t.Fatalf("decode content: %v", err)
	}
	if len(entries) != 2 {
		t.Fatalf("entries: want=2 got=%d", len(entries))
	}
	if entries[0].Text != "inside the window" || entries[1].Text != "also inside" {
		t.Fatalf("entries out of order or wrong: %+v", entries)
	}

	loaded, err := svc.Get(ctx, snapshot.ID)
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	if loaded.ID != snapshot.ID {
		t.Fatalf("get returned wrong snapshot: %s", loaded.ID)
	}

	listed, err := svc.ListByWorkshop(ctx, f.workshop.ID)
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if len(listed) != 1 {
		t.Fatalf("listed snapshots: want=1 got=%d", len(listed))
	}
}

func TestSnapshotCapture_EmptyRangeStillCaptures(t *testing.T) {
	f := newPipelineFixture(t)
	svc := newSnapshotService(t, f)

	snapshot, err := svc.Capture(context.Background(), SnapshotCaptureInput{
		WorkshopID:   f.workshop.ID,
		Name:         "quiet minute",
		RangeStartMs: 0,
		RangeEndMs:   60_000,
	})
	if err != nil {
		t.Fatalf("capture: %v", err)
	}
	var entries []snapshotEntry
	if err := json.Unmarshal(snapshot.Content, &entries); err != nil {
		t.Fatalf("decode content: %v", err)
	}
	if len(entries) != 0 {
		t.Fatalf("entries: want=0 got=%d", len(entries))
	}
}

func TestSnapshotCapture_Validation(t *testing.T) {
	f := newPipelineFixture(t)
	svc := newSnapshotService(t, f)
	ctx := context.Background()

	cases := []struct {
		name       string
		input      SnapshotCaptureInput
		wantStatus int
	}{
		{"blank name", SnapshotCaptureInput{WorkshopID: f.workshop.ID, Name: "  ", RangeEndMs: 10}, 400},
		{"bad phase", SnapshotCaptureInput{WorkshopID: f.workshop.ID, Name: "x", DialoguePhase: "ideate", RangeEndMs: 10}, 400},
		{"inverted range", SnapshotCaptureInput{WorkshopID: f.workshop.ID, Name: "x", RangeStartMs: 100, RangeEndMs: 50}, 400},
		{"unknown workshop", SnapshotCaptureInput{WorkshopID: uuid.New(), Name: "x", RangeEndMs: 10}, 404},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			_, err := svc.Capture(ctx, tc.input)
			status, _ := apierr.Status(err)
			if status != tc.wantStatus {
				t.Fatalf("status: want=%d got=%d (err=%v)", tc.wantStatus, status, err)
			}
		})
	}
}
