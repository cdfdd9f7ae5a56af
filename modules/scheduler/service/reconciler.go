package service

import (
	"context"
	"fmt"
	"sync"
	"time"

	"go-departure-scheduler/core/logger"
	eventEntity "go-departure-scheduler/modules/event/entity"
	eventRepo "go-departure-scheduler/modules/event/repository"
	eventService "go-departure-scheduler/modules/event/service"
	notificationEntity "go-departure-scheduler/modules/notification/entity"
	notificationService "go-departure-scheduler/modules/notification/service"

	"github.com/google/uuid"
)

type statusUpdate struct {
	id       uuid.UUID
	status   eventEntity.EventStatus
	notified bool
}

// Reconciler classifies every event's lifecycle status against the current
// time and last known travel estimate, and persists the transitions.
type Reconciler struct {
	events   eventRepo.EventRepository
	stores   *eventService.StoreSet
	notifier notificationService.Notifier
}

func NewReconciler(events eventRepo.EventRepository, stores *eventService.StoreSet, notifier notificationService.Notifier) *Reconciler {
	return &Reconciler{events: events, stores: stores, notifier: notifier}
}

// Reconcile runs one classification pass over the user's full event set.
// Transitions are collected during the pass and written in parallel after
// it, then the snapshot is swapped wholesale. Re-running with the same now
// and unchanged backend state produces no further transitions.
func (r *Reconciler) Reconcile(ctx context.Context, userID uuid.UUID, now time.Time) error {
	events, err := r.events.SelectByUser(ctx, userID)
	if err != nil {
		return fmt.Errorf("failed to fetch events for reconciliation: %w", err)
	}

	today := now.Format("2006-01-02")
	var updates []statusUpdate

	for i := range events {
		event := &events[i]

		// Departure is computed for every event; without a travel estimate
		// the eta defaults to 0 and the deadline is the start time itself.
		departure, err := event.DepartureMinutes(now)
		if err != nil {
			logger.Error("Reconciler:Reconcile:DepartureMinutes:Error:", err, "event_id", event.ID)
		} else {
			if event.TravelApplicable() {
				event.TimeUntilDeparture = departure
			}

			if departure <= 0 &&
				event.Status != eventEntity.StatusPending &&
				event.Status != eventEntity.StatusComplete &&
				!event.Notified {
				event.Status = eventEntity.StatusPending
				event.Notified = true
				updates = append(updates, statusUpdate{id: event.ID, status: eventEntity.StatusPending, notified: true})

				if err := r.notifier.Notify(ctx, userID, notificationEntity.TypeMissedDeparture,
					"Event Reminder",
					fmt.Sprintf("Departure time for %q has been missed.", event.Title)); err != nil {
					logger.Error("Reconciler:Reconcile:Notify:Error:", err, "event_id", event.ID)
				}
			}
		}

		if event.Date == today && event.Status == eventEntity.StatusUpcoming {
			event.Status = eventEntity.StatusToday
			updates = append(updates, statusUpdate{id: event.ID, status: eventEntity.StatusToday, notified: event.Notified})
			logger.Info("Marking event as today", "event_id", event.ID, "title", event.Title)
		}
	}

	// Batched write-back bounds the request count per pass.
	if len(updates) > 0 {
		logger.Info("Persisting status transitions", "user_id", userID, "count", len(updates))
		var wg sync.WaitGroup
		for _, u := range updates {
			wg.Add(1)
			go func(u statusUpdate) {
				defer wg.Done()
				if err := r.events.UpdateStatus(ctx, u.id, u.status, u.notified); err != nil {
					logger.Error("Reconciler:Reconcile:UpdateStatus:Error:", err, "event_id", u.id)
				}
			}(u)
		}
		wg.Wait()
	}

	r.stores.Get(userID).ReplaceAll(events)
	return nil
}

// NotifyMissed sends the missed-departure notification for events that are
// already pending but were never notified, such as transitions written by
// another device. At most one notification is sent per event.
func (r *Reconciler) NotifyMissed(ctx context.Context, userID uuid.UUID) error {
	events, err := r.events.SelectByUser(ctx, userID)
	if err != nil {
		return err
	}

	for _, event := range events {
		if event.Status != eventEntity.StatusPending || event.Notified {
			continue
		}
		if err := r.notifier.Notify(ctx, userID, notificationEntity.TypeMissedDeparture,
			"Event Reminder",
			fmt.Sprintf("Departure time for %q has been missed.", event.Title)); err != nil {
			logger.Error("Reconciler:NotifyMissed:Notify:Error:", err, "event_id", event.ID)
			continue
		}
		if err := r.events.UpdateStatus(ctx, event.ID, eventEntity.StatusPending, true); err != nil {
			logger.Error("Reconciler:NotifyMissed:UpdateStatus:Error:", err, "event_id", event.ID)
		}
	}
	return nil
}
