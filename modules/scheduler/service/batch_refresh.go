package service

import (
	"context"
	"sync"

	"go-departure-scheduler/core/logger"
	eventRepo "go-departure-scheduler/modules/event/repository"
	travelService "go-departure-scheduler/modules/travel/service"

	"github.com/google/uuid"
)

// BatchRefresher is the opt-in eager sweep: it recomputes travel info for
// every tracked event of every user with a known location and persists the
// results. The scheduler itself only refreshes the queue head, so stored
// estimates can go stale between cycles; running this on a cron keeps the
// displayed distances and ETAs current.
type BatchRefresher struct {
	events eventRepo.EventRepository
	travel *travelService.Service
}

func NewBatchRefresher(events eventRepo.EventRepository, travel *travelService.Service) *BatchRefresher {
	return &BatchRefresher{events: events, travel: travel}
}

// Run performs one sweep. Per-event failures are logged and skipped; a
// user whose location is unknown is skipped entirely.
func (b *BatchRefresher) Run(ctx context.Context) {
	users, err := b.events.ListTrackedUsers(ctx)
	if err != nil {
		logger.Error("BatchRefresher:Run:ListTrackedUsers:Error:", err)
		return
	}
	if len(users) == 0 {
		return
	}

	logger.Info("Refreshing travel info", "users", len(users))
	for _, userID := range users {
		b.refreshUser(ctx, userID)
	}
}

func (b *BatchRefresher) refreshUser(ctx context.Context, userID uuid.UUID) {
	events, err := b.events.SelectTracked(ctx, userID)
	if err != nil {
		logger.Error("BatchRefresher:RefreshUser:SelectTracked:Error:", err, "user_id", userID)
		return
	}

	var wg sync.WaitGroup
	for i := range events {
		event := events[i]
		wg.Add(1)
		go func() {
			defer wg.Done()
			info, err := b.travel.FetchTravelInfo(ctx, userID, &event)
			if err != nil {
				logger.Error("BatchRefresher:RefreshUser:FetchTravelInfo:Error:", err, "event_id", event.ID)
				return
			}
			if info == nil {
				return
			}
			if err := b.events.UpdateTravelInfo(ctx, event.ID, info.DistanceMiles, info.EstimatedTravelTime); err != nil {
				logger.Error("BatchRefresher:RefreshUser:UpdateTravelInfo:Error:", err, "event_id", event.ID)
			}
		}()
	}
	wg.Wait()
}
