package service

import (
	"context"
	"time"

	"go-departure-scheduler/core/constants"
	"go-departure-scheduler/core/logger"
	"go-departure-scheduler/core/retry"
	eventEntity "go-departure-scheduler/modules/event/entity"
	eventRepo "go-departure-scheduler/modules/event/repository"

	"github.com/google/uuid"
)

// ConfirmationWaiter polls the backend until a status write has become
// visible, so the next scheduling cycle never re-fires a notification off
// a stale read.
type ConfirmationWaiter struct {
	events   eventRepo.EventRepository
	attempts int
	backoff  retry.Backoff
}

func NewConfirmationWaiter(events eventRepo.EventRepository) *ConfirmationWaiter {
	return &ConfirmationWaiter{
		events:   events,
		attempts: constants.ConfirmationAttempts,
		backoff:  retry.Fibonacci(time.Second),
	}
}

// AwaitConfirmation blocks until the event reads back with the expected
// status and notified flag, the attempt budget runs out, or ctx ends.
// Exhaustion is not an error: the caller proceeds either way and the next
// reconcile pass repairs any divergence.
func (w *ConfirmationWaiter) AwaitConfirmation(ctx context.Context, id uuid.UUID, status eventEntity.EventStatus, notified bool) bool {
	confirmed, err := retry.Do(ctx, w.attempts, w.backoff, func(ctx context.Context) (bool, error) {
		event, err := w.events.GetByID(ctx, id)
		if err != nil {
			return false, err
		}
		return event.Status == status && event.Notified == notified, nil
	})
	if err != nil && ctx.Err() == nil {
		logger.Warn("Status confirmation gave up", "event_id", id, "status", status, "error", err)
	}
	if !confirmed && ctx.Err() == nil {
		logger.Warn("Status write not confirmed within attempt budget", "event_id", id, "status", status)
	}
	return confirmed
}
