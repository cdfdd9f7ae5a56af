package service

import (
	"context"
	"sync"
	"time"

	"go-departure-scheduler/core/logger"
	eventRepo "go-departure-scheduler/modules/event/repository"
	eventService "go-departure-scheduler/modules/event/service"
	notificationService "go-departure-scheduler/modules/notification/service"
	travelService "go-departure-scheduler/modules/travel/service"

	"github.com/google/uuid"
)

// Manager owns one Scheduler per active user and the reconcile-and-schedule
// entry point called after login, event edits, and location fixes.
type Manager struct {
	events     eventRepo.EventRepository
	stores     *eventService.StoreSet
	travel     *travelService.Service
	notifier   notificationService.Notifier
	reconciler *Reconciler
	confirm    *ConfirmationWaiter

	mu         sync.Mutex
	schedulers map[uuid.UUID]*Scheduler
}

func NewManager(
	events eventRepo.EventRepository,
	stores *eventService.StoreSet,
	travel *travelService.Service,
	notifier notificationService.Notifier,
) *Manager {
	return &Manager{
		events:     events,
		stores:     stores,
		travel:     travel,
		notifier:   notifier,
		reconciler: NewReconciler(events, stores, notifier),
		confirm:    NewConfirmationWaiter(events),
		schedulers: make(map[uuid.UUID]*Scheduler),
	}
}

// Trigger reconciles the user's events against the current time, notifies
// any pending events that were never announced, and kicks off a scheduling
// cycle. The cycle runs detached from the request: it may block on travel
// fetches and write confirmation, and it outlives the request through its
// own wake-up timer.
func (m *Manager) Trigger(ctx context.Context, userID uuid.UUID) error {
	logger.Info("Reconcile and schedule", "user_id", userID)

	if err := m.reconciler.Reconcile(ctx, userID, time.Now()); err != nil {
		return err
	}
	if err := m.reconciler.NotifyMissed(ctx, userID); err != nil {
		logger.Error("Manager:Trigger:NotifyMissed:Error:", err, "user_id", userID)
	}

	go m.scheduler(userID).RunCycle()
	return nil
}

// scheduler returns the user's live scheduler, creating one on first use or
// after a Stop.
func (m *Manager) scheduler(userID uuid.UUID) *Scheduler {
	m.mu.Lock()
	defer m.mu.Unlock()
	sched, ok := m.schedulers[userID]
	if !ok || sched.ctx.Err() != nil {
		sched = NewScheduler(userID, m.events, m.stores, m.travel, m.notifier, m.confirm)
		m.schedulers[userID] = sched
	}
	return sched
}

// Stop tears down the user's scheduler, if any. Called on logout.
func (m *Manager) Stop(userID uuid.UUID) {
	m.mu.Lock()
	sched, ok := m.schedulers[userID]
	if ok {
		delete(m.schedulers, userID)
	}
	m.mu.Unlock()

	if ok {
		sched.Stop()
		logger.Info("Scheduler stopped", "user_id", userID)
	}
}

// StopAll tears down every live scheduler. Called on server shutdown.
func (m *Manager) StopAll() {
	m.mu.Lock()
	schedulers := m.schedulers
	m.schedulers = make(map[uuid.UUID]*Scheduler)
	m.mu.Unlock()

	for userID, sched := range schedulers {
		sched.Stop()
		logger.Info("Scheduler stopped", "user_id", userID)
	}
}
