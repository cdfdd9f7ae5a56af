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
	travelService "go-departure-scheduler/modules/travel/service"

	"github.com/google/uuid"
)

type State string

const (
	StateIdle      State = "idle"
	StateScheduled State = "scheduled"
	StateFiring    State = "firing"
)

// Scheduler drives departure notifications for one user. It is a
// self-rescheduling loop, not a fixed-interval ticker: each cycle re-reads
// the authoritative event set, acts on the queue head only, and either arms
// a single wake-up timer for the next decision point or goes idle.
type Scheduler struct {
	userID   uuid.UUID
	events   eventRepo.EventRepository
	stores   *eventService.StoreSet
	travel   *travelService.Service
	notifier notificationService.Notifier
	confirm  *ConfirmationWaiter

	ctx    context.Context
	cancel context.CancelFunc

	now      func() time.Time
	newTimer func(d time.Duration, fn func()) *time.Timer

	runMu sync.Mutex // one cycle runs to completion before the next starts

	mu    sync.Mutex // guards timer and state
	timer *time.Timer
	state State
}

func NewScheduler(
	userID uuid.UUID,
	events eventRepo.EventRepository,
	stores *eventService.StoreSet,
	travel *travelService.Service,
	notifier notificationService.Notifier,
	confirm *ConfirmationWaiter,
) *Scheduler {
	ctx, cancel := context.WithCancel(context.Background())
	return &Scheduler{
		userID:   userID,
		events:   events,
		stores:   stores,
		travel:   travel,
		notifier: notifier,
		confirm:  confirm,
		ctx:      ctx,
		cancel:   cancel,
		now:      time.Now,
		newTimer: func(d time.Duration, fn func()) *time.Timer { return time.AfterFunc(d, fn) },
		state:    StateIdle,
	}
}

// State reports the current scheduling state.
func (s *Scheduler) State() State {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.state
}

// RunCycle runs scheduling cycles until one of them arms a timer or goes
// idle. A cycle that resolves the queue head (time-to-leave path) restarts
// from a fresh backend read immediately.
func (s *Scheduler) RunCycle() {
	s.runMu.Lock()
	defer s.runMu.Unlock()

	s.setState(StateFiring)
	for {
		if s.ctx.Err() != nil {
			s.disarm()
			return
		}
		if !s.cycle(s.ctx) {
			return
		}
	}
}

// cycle is one pass of the scheduler algorithm. It returns true when the
// caller should restart from a fresh read, false when the pass ended in a
// terminal state for now (timer armed, idle, or aborted).
func (s *Scheduler) cycle(ctx context.Context) bool {
	events, err := s.events.SelectByUser(ctx, s.userID)
	if err != nil {
		logger.Error("Scheduler:Cycle:SelectByUser:Error:", err, "user_id", s.userID)
		s.disarm()
		return false
	}

	store := s.stores.Get(s.userID)
	store.ReplaceAll(events)

	queue := store.NotificationQueue()
	if len(queue) == 0 {
		logger.Info("No upcoming events, stopping notifications", "user_id", s.userID)
		s.disarm()
		return false
	}

	head := queue[0]

	if head.TravelApplicable() && head.EstimatedTravelTime == nil {
		logger.Warn("Missing travel time for queue head, fetching now", "event_id", head.ID, "title", head.Title)
		info, err := s.travel.FetchTravelInfo(ctx, s.userID, &head)
		if err != nil {
			logger.Error("Scheduler:Cycle:FetchTravelInfo:Error:", err, "event_id", head.ID)
			s.disarm()
			return false
		}
		if info == nil {
			logger.Warn("Travel info unavailable for queue head, stopping cycle", "event_id", head.ID)
			s.disarm()
			return false
		}
		eta := info.EstimatedTravelTime
		head.DistanceMiles = info.DistanceMiles
		head.EstimatedTravelTime = &eta
		head.TimeUntilDeparture = info.TimeUntilDeparture
		if err := s.events.UpdateTravelInfo(ctx, head.ID, info.DistanceMiles, eta); err != nil {
			logger.Error("Scheduler:Cycle:UpdateTravelInfo:Error:", err, "event_id", head.ID)
		}
	}

	departure, err := head.DepartureMinutes(s.now())
	if err != nil {
		logger.Error("Scheduler:Cycle:DepartureMinutes:Error:", err, "event_id", head.ID)
		s.disarm()
		return false
	}

	logger.Info("Scheduling notifications",
		"event_id", head.ID, "title", head.Title, "departure_minutes", departure)

	if departure <= 0 {
		return s.processDeparture(ctx, &head)
	}

	if departure <= 60 {
		body := fmt.Sprintf("Time to leave in %d min for %q!", departure, head.Title)
		if err := s.notifier.Notify(ctx, s.userID, notificationEntity.TypeDeparture, "Event Reminder", body); err != nil {
			logger.Error("Scheduler:Cycle:Notify:Error:", err, "event_id", head.ID)
		}
	}

	minutes, ok := NextCheckMinutes(departure)
	if !ok {
		return true
	}
	s.arm(time.Duration(minutes) * time.Minute)
	logger.Info("Next check armed", "event_id", head.ID, "minutes", minutes)
	return false
}

// processDeparture handles the time-to-leave path: notify, mark the event
// pending and notified, and wait until the write reads back before trusting
// the next refresh.
func (s *Scheduler) processDeparture(ctx context.Context, event *eventEntity.Event) bool {
	logger.Info("Time to leave", "event_id", event.ID, "title", event.Title)

	body := fmt.Sprintf("Time to leave for %s!", event.Title)
	if err := s.notifier.Notify(ctx, s.userID, notificationEntity.TypeDeparture, "Event Reminder", body); err != nil {
		logger.Error("Scheduler:ProcessDeparture:Notify:Error:", err, "event_id", event.ID)
	}

	if err := s.events.UpdateStatus(ctx, event.ID, eventEntity.StatusPending, true); err != nil {
		logger.Error("Scheduler:ProcessDeparture:UpdateStatus:Error:", err, "event_id", event.ID)
		s.disarm()
		return false
	}

	if !s.confirm.AwaitConfirmation(ctx, event.ID, eventEntity.StatusPending, true) {
		logger.Error("Scheduler:ProcessDeparture:Confirmation:Error: status write not confirmed, skipping event",
			"event_id", event.ID)
		s.disarm()
		return false
	}

	// The head is resolved; rescan so the next queue head takes over.
	return true
}

// arm schedules the next wake-up, cancelling any previously armed timer.
// There is never more than one outstanding timer per scheduler.
func (s *Scheduler) arm(d time.Duration) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.timer != nil {
		s.timer.Stop()
	}
	s.state = StateScheduled
	s.timer = s.newTimer(d, s.RunCycle)
}

// disarm cancels any pending wake-up and returns to idle.
func (s *Scheduler) disarm() {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.timer != nil {
		s.timer.Stop()
		s.timer = nil
	}
	s.state = StateIdle
}

func (s *Scheduler) setState(state State) {
	s.mu.Lock()
	s.state = state
	s.mu.Unlock()
}

// Stop tears the scheduler down: the in-flight cycle is cancelled and no
// further timer will fire. Used on logout and server shutdown.
func (s *Scheduler) Stop() {
	s.cancel()
	s.disarm()
}
