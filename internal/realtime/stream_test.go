package realtime

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/google/uuid"
)

// streamRecorder is a concurrency-safe ResponseWriter+Flusher so the test can
// read the body while the stream loop is still writing it.
type streamRecorder struct {
	mu      sync.Mutex
	header  http.Header
	body    strings.Builder
	flushed bool
}

func newStreamRecorder() *streamRecorder {
	return &streamRecorder{header: make(http.Header)}
}

func (r *streamRecorder) Header() http.Header {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.header
}

func (r *streamRecorder) Write(p []byte) (int, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.body.Write(p)
}

func (r *streamRecorder) WriteHeader(int) {}

func (r *streamRecorder) Flush() {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.flushed = true
}

func (r *streamRecorder) snapshot() string {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.body.String()
}

func waitForFrame(t *testing.T, rec *streamRecorder, frame string) {
	t.Helper()
	deadline := time.Now().Add(2 * time.Second)
	for time.Now().Before(deadline) {
		if strings.Contains(rec.snapshot(), frame) {
			return
		}
		time.Sleep(5 * time.Millisecond)
	}
	t.Fatalf("frame %q never written; body so far: %q", frame, rec.snapshot())
}

func TestWorkshopHubServeHTTPStreamLifecycle(t *testing.T) {
	hub := NewWorkshopHub(mustTestLogger(t))
	workshopID := uuid.New()
	sub := hub.Subscribe(workshopID)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	req := httptest.NewRequest(http.MethodGet, "/stream", nil).WithContext(ctx)
	rec := newStreamRecorder()

	done := make(chan struct{})
	go func() {
		hub.ServeHTTP(rec, req, sub)
		close(done)
	}()

	// The open frame is written before anything is published.
	waitForFrame(t, rec, "event: open\ndata: {}\n\n")

	hub.Broadcast(NewWorkshopEvent(workshopID, EventContentCreated, map[string]any{"seq": 1}))
	waitForFrame(t, rec, "event: content-created\n")
	waitForFrame(t, rec, "\"seq\":1")

	cancel()
	select {
	case <-done:
	case <-time.After(2 * time.Second):
		t.Fatalf("stream loop did not return on client disconnect")
	}
	hub.CloseSubscriber(sub)
	if got := hub.SubscriberCount(workshopID); got != 0 {
		t.Fatalf("subscriber count after disconnect: want=0 got=%d", got)
	}

	body := rec.snapshot()
	if !strings.HasPrefix(body, "event: open\ndata: {}\n\n") {
		t.Fatalf("stream did not start with the open frame: %q", body)
	}
	if ct := rec.Header().Get("Content-Type"); ct != "text/event-stream" {
		t.Fatalf("content type: want=text/event-stream got=%q", ct)
	}
	if !rec.flushed {
		t.Fatalf("frames were never flushed")
	}
}

func TestWorkshopHubServeHTTPCloseSubscriberEndsStream(t *testing.T) {
	hub := NewWorkshopHub(mustTestLogger(t))
	workshopID := uuid.New()
	sub := hub.Subscribe(workshopID)

	req := httptest.NewRequest(http.MethodGet, "/stream", nil)
	rec := newStreamRecorder()

	done := make(chan struct{})
	go func() {
		hub.ServeHTTP(rec, req, sub)
		close(done)
	}()
	waitForFrame(t, rec, "event: open\ndata: {}\n\n")

	hub.CloseSubscriber(sub)
	select {
	case <-done:
	case <-time.After(2 * time.Second):
		t.Fatalf("stream loop did not return on server-side close")
	}
	if got := hub.SubscriberCount(workshopID); got != 0 {
		t.Fatalf("subscriber count after close: want=0 got=%d", got)
	}
}
