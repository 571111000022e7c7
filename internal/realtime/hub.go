package realtime

import (
	"encoding/json"
	"fmt"
	"net/http"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/yungbote/workshoplive-backend/internal/logger"
)

const heartbeatInterval = 15 * time.Second

type Subscriber struct {
	ID         uuid.UUID
	WorkshopID uuid.UUID
	Outbound   chan WorkshopEvent
	done       chan struct{}
}

// WorkshopHub is the per-workshop publish/subscribe registry. It is built at
// process start and injected wherever events are emitted; subscriptions are
// removed from the registry on unsubscribe, never merely disabled.
type WorkshopHub struct {
	mu            sync.RWMutex
	log           *logger.Logger
	subscriptions map[uuid.UUID]map[*Subscriber]bool
}

func NewWorkshopHub(log *logger.Logger) *WorkshopHub {
	return &WorkshopHub{
		log:           log.With("component", "WorkshopHub"),
		subscriptions: make(map[uuid.UUID]map[*Subscriber]bool),
	}
}

func (hub *WorkshopHub) Subscribe(workshopID uuid.UUID) *Subscriber {
	sub := &Subscriber{
		ID:         uuid.New(),
		WorkshopID: workshopID,
		Outbound:   make(chan WorkshopEvent, 16),
		done:       make(chan struct{}),
	}

	hub.mu.Lock()
	defer hub.mu.Unlock()

	subs, exists := hub.subscriptions[workshopID]
	if !exists {
		subs = make(map[*Subscriber]bool)
		hub.subscriptions[workshopID] = subs
	}
	subs[sub] = true

	hub.log.Debug("Subscriber attached", "subscriberID", sub.ID, "workshopID", workshopID)
	return sub
}

func (hub *WorkshopHub) Unsubscribe(sub *Subscriber) {
	hub.mu.Lock()
	defer hub.mu.Unlock()

	if subs, ok := hub.subscriptions[sub.WorkshopID]; ok {
		delete(subs, sub)
		if len(subs) == 0 {
			delete(hub.subscriptions, sub.WorkshopID)
		}
	}
	hub.log.Debug("Subscriber detached", "subscriberID", sub.ID, "workshopID", sub.WorkshopID)
}

// Broadcast fans an event out to every subscriber of its workshop at the
// moment of publish. Each send is non-blocking: a subscriber whose buffer is
// full loses the event rather than stalling delivery to the others.
func (hub *WorkshopHub) Broadcast(evt WorkshopEvent) {
	hub.mu.RLock()
	defer hub.mu.RUnlock()

	if evt.WorkshopID == uuid.Nil {
		return
	}
	subs, ok := hub.subscriptions[evt.WorkshopID]
	if !ok {
		return
	}
	for sub := range subs {
		select {
		case sub.Outbound <- evt:
		default:
			hub.log.Warn("Dropping workshop event; outbound buffer full", "subscriberID", sub.ID, "eventType", evt.Type)
		}
	}
}

// SubscriberCount is used by tests and the health surface; the registry must
// not grow across many short-lived viewers.
func (hub *WorkshopHub) SubscriberCount(workshopID uuid.UUID) int {
	hub.mu.RLock()
	defer hub.mu.RUnlock()
	return len(hub.subscriptions[workshopID])
}

// ServeHTTP streams the subscriber's events as SSE until the client
// disconnects. Emits an immediate `open` event and a comment heartbeat every
// 15s to defeat idle-connection timeouts.
func (hub *WorkshopHub) ServeHTTP(w http.ResponseWriter, r *http.Request, sub *Subscriber) {
	w.Header().Set("Content-Type", "text/event-stream")
	w.Header().Set("Cache-Control", "no-cache")
	w.Header().Set("Connection", "keep-alive")
	w.Header().Set("X-Accel-Buffering", "no")

	flusher, ok := w.(http.Flusher)
	if !ok {
		http.Error(w, "Streaming unsupported", http.StatusInternalServerError)
		return
	}
	ctx := r.Context()

	fmt.Fprint(w, "event: open\ndata: {}\n\n")
	flusher.Flush()

	heartbeat := time.NewTicker(heartbeatInterval)
	defer heartbeat.Stop()

	for {
		select {
		case <-ctx.Done():
			hub.log.Debug("Subscriber context done", "subscriberID", sub.ID, "err", ctx.Err())
			return
		case <-sub.done:
			return
		case <-heartbeat.C:
			fmt.Fprint(w, ": ping\n\n")
			flusher.Flush()
		case evt := <-sub.Outbound:
			payload, err := json.Marshal(evt)
			if err != nil {
				hub.log.Warn("Failed to marshal workshop event", "error", err)
				continue
			}
			fmt.Fprintf(w, "event: %s\n", evt.Type)
			fmt.Fprintf(w, "data: %s\n\n", payload)
			flusher.Flush()
		}
	}
}

// CloseSubscriber tears the subscription down: wakes the stream loop, removes
// the subscriber from the registry and closes its outbound channel.
func (hub *WorkshopHub) CloseSubscriber(sub *Subscriber) {
	close(sub.done)
	hub.Unsubscribe(sub)
	close(sub.Outbound)
}
