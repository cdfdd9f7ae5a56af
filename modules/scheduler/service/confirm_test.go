package service

import (
	"context"
	"testing"
	"time"

	"go-departure-scheduler/core/retry"
	eventEntity "go-departure-scheduler/modules/event/entity"

	"github.com/google/uuid"
)

func TestAwaitConfirmationEventuallyMatches(t *testing.T) {
	userID := uuid.New()
	event := trackedEvent(userID, "Airport run", time.Now(), eventEntity.StatusPending, eta(30))
	event.Notified = true

	stale := event
	stale.Status = eventEntity.StatusToday
	stale.Notified = false

	repo := newMockEventRepository(event)
	repo.staleReads = 2
	repo.stale = map[uuid.UUID]eventEntity.Event{event.ID: stale}

	w := &ConfirmationWaiter{events: repo, attempts: 10, backoff: retry.Constant(0)}
	if !w.AwaitConfirmation(context.Background(), event.ID, eventEntity.StatusPending, true) {
		t.Fatal("AwaitConfirmation() = false, want true once the write shows up")
	}
}

func TestAwaitConfirmationExhaustsAttempts(t *testing.T) {
	userID := uuid.New()
	event := trackedEvent(userID, "Airport run", time.Now(), eventEntity.StatusToday, eta(30))
	repo := newMockEventRepository(event)

	w := &ConfirmationWaiter{events: repo, attempts: 3, backoff: retry.Constant(0)}
	if w.AwaitConfirmation(context.Background(), event.ID, eventEntity.StatusPending, true) {
		t.Fatal("AwaitConfirmation() = true, want false when the write never lands")
	}
}

func TestAwaitConfirmationMissingEvent(t *testing.T) {
	repo := newMockEventRepository()

	w := &ConfirmationWaiter{events: repo, attempts: 3, backoff: retry.Constant(0)}
	if w.AwaitConfirmation(context.Background(), uuid.New(), eventEntity.StatusPending, true) {
		t.Fatal("AwaitConfirmation() = true, want false for an unknown event")
	}
}

func TestAwaitConfirmationCanceledContext(t *testing.T) {
	userID := uuid.New()
	event := trackedEvent(userID, "Airport run", time.Now(), eventEntity.StatusToday, eta(30))
	repo := newMockEventRepository(event)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	w := NewConfirmationWaiter(repo)
	if w.AwaitConfirmation(ctx, event.ID, eventEntity.StatusPending, true) {
		t.Fatal("AwaitConfirmation() = true, want false on canceled context")
	}
}
