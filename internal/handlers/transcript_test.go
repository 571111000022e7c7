package handlers

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/yungbote/workshoplive-backend/internal/apierr"
	"github.com/yungbote/workshoplive-backend/internal/logger"
	"github.com/yungbote/workshoplive-backend/internal/services"
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

type stubIngestion struct {
	gotInput services.IngestInput
	result   *services.IngestResult
	err      error
}

func (s *stubIngestion) Ingest(ctx context.Context, input services.IngestInput) (*services.IngestResult, error) {
	s.gotInput = input
	if s.err != nil {
		return nil, s.err
	}
	return s.result, nil
}

func newTranscriptRouter(t *testing.T, svc services.IngestionService) *gin.Engine {
	t.Helper()
	gin.SetMode(gin.TestMode)
	router := gin.New()
	handler := NewTranscriptHandler(mustTestLogger(t), svc)
	router.POST("/api/workshops/:id/transcripts", handler.Ingest)
	return router
}

func postJSON(router *gin.Engine, path, body string) *httptest.ResponseRecorder {
	rec := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodPost, path, strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	router.ServeHTTP(rec, req)
	return rec
}

func TestTranscriptIngest_Success(t *testing.T) {
	classificationID := uuid.New()
	stub := &stubIngestion{
		result: &services.IngestResult{
			TranscriptRecordID: uuid.New(),
			ContentUnitID:      uuid.New(),
			ClassificationID:   &classificationID,
		},
	}
	router := newTranscriptRouter(t, stub)
	workshopID := uuid.New()

	rec := postJSON(router, "/api/workshops/"+workshopID.String()+"/transcripts",
		`{"speakerId":"speaker-42","startTime":125000,"endTime":129000,"text":"cap the budget","source":"capture-device","dialoguePhase":"decide"}`)

	if rec.Code != http.StatusOK {
		t.Fatalf("status: want=200 got=%d body=%s", rec.Code, rec.Body.String())
	}
	var resp struct {
		OK                 bool       `json:"ok"`
		TranscriptRecordID uuid.UUID  `json:"transcriptRecordId"`
		ClassificationID   *uuid.UUID `json:"classificationId"`
		Deduped            bool       `json:"deduped"`
	}
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	if !resp.OK || resp.Deduped {
		t.Fatalf("unexpected response: %+v", resp)
	}
	if resp.ClassificationID == nil || *resp.ClassificationID != classificationID {
		t.Fatalf("classification id: want=%s got=%v", classificationID, resp.ClassificationID)
	}

	if stub.gotInput.WorkshopID != workshopID {
		t.Fatalf("workshop id not forwarded: got=%s", stub.gotInput.WorkshopID)
	}
	if stub.gotInput.DialoguePhase == nil || *stub.gotInput.DialoguePhase != "decide" {
		t.Fatalf("phase not forwarded: got=%v", stub.gotInput.DialoguePhase)
	}
}

func TestTranscriptIngest_BadWorkshopIDIs400(t *testing.T) {
	router := newTranscriptRouter(t, &stubIngestion{})
	rec := postJSON(router, "/api/workshops/not-a-uuid/transcripts", `{"text":"x","source":"capture-device"}`)
	if rec.Code != http.StatusBadRequest {
		t.Fatalf("status: want=400 got=%d", rec.Code)
	}
}

func TestTranscriptIngest_MalformedBodyIs400(t *testing.T) {
	router := newTranscriptRouter(t, &stubIngestion{})
	rec := postJSON(router, "/api/workshops/"+uuid.New().String()+"/transcripts", `{"text": 12`)
	if rec.Code != http.StatusBadRequest {
		t.Fatalf("status: want=400 got=%d", rec.Code)
	}
}

func TestTranscriptIngest_ServiceErrorsMapToStatuses(t *testing.T) {
	cases := []struct {
		name       string
		err        error
		wantStatus int
	}{
		{"validation", apierr.Invalid("text must not be empty"), http.StatusBadRequest},
		{"unknown workshop", apierr.NotFound("workshop not found"), http.StatusNotFound},
		{"storage failure", apierr.Internal(errors.New("pq: connection refused")), http.StatusInternalServerError},
		{"untyped failure", errors.New("boom"), http.StatusInternalServerError},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			router := newTranscriptRouter(t, &stubIngestion{err: tc.err})
			rec := postJSON(router, "/api/workshops/"+uuid.New().String()+"/transcripts",
				`{"text":"hello","source":"capture-device"}`)
			if rec.Code != tc.wantStatus {
				t.Fatalf("status: want=%d got=%d body=%s", tc.wantStatus, rec.Code, rec.Body.String())
			}

			var envelope ErrorEnvelope
			if err := json.Unmarshal(rec.Body.Bytes(), &envelope); err != nil {
				t.Fatalf("decode error envelope: %v", err)
			}
			if tc.wantStatus == http.StatusInternalServerError {
				if envelope.Error.Message != "internal error" {
					t.Fatalf("internal detail leaked: %q", envelope.Error.Message)
				}
			} else if envelope.Error.Message == "" {
				t.Fatalf("empty error message")
			}
		})
	}
}
