package service

import (
	"sync"

	"go-departure-scheduler/modules/event/entity"

	"github.com/google/uuid"
)

// Store holds one user's authoritative in-memory event snapshot. The
// snapshot is only ever replaced wholesale, never patched in place, and the
// derived views are recomputed from it on every read.
type Store struct {
	mu     sync.RWMutex
	events []entity.Event
}

func NewStore() *Store {
	return &Store{}
}

// ReplaceAll atomically swaps the snapshot.
func (s *Store) ReplaceAll(events []entity.Event) {
	snapshot := make([]entity.Event, len(events))
	copy(snapshot, events)

	s.mu.Lock()
	s.events = snapshot
	s.mu.Unlock()
}

// Snapshot returns a copy of the full event list.
func (s *Store) Snapshot() []entity.Event {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]entity.Event, len(s.events))
	copy(out, s.events)
	return out
}

// NotificationQueue is the ordered subset eligible for scheduler attention:
// today's events, plus pending events that were never notified.
func (s *Store) NotificationQueue() []entity.Event {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var queue []entity.Event
	for _, e := range s.events {
		if e.Status == entity.StatusToday || (e.Status == entity.StatusPending && !e.Notified) {
			queue = append(queue, e)
		}
	}
	entity.SortByStart(queue)
	return queue
}

// Displayed is every non-complete event in start order.
func (s *Store) Displayed() []entity.Event {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var displayed []entity.Event
	for _, e := range s.events {
		if e.Status != entity.StatusComplete {
			displayed = append(displayed, e)
		}
	}
	entity.SortByStart(displayed)
	return displayed
}

// StoreSet hands out the per-user stores.
type StoreSet struct {
	mu     sync.Mutex
	stores map[uuid.UUID]*Store
}

func NewStoreSet() *StoreSet {
	return &StoreSet{stores: make(map[uuid.UUID]*Store)}
}

func (ss *StoreSet) Get(userID uuid.UUID) *Store {
	ss.mu.Lock()
	defer ss.mu.Unlock()
	store, ok := ss.stores[userID]
	if !ok {
		store = NewStore()
		ss.stores[userID] = store
	}
	return store
}
