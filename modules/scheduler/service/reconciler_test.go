package service

import (
	"context"
	"errors"
	"strings"
	"sync"
	"testing"
	"time"

	eventEntity "go-departure-scheduler/modules/event/entity"
	eventService "go-departure-scheduler/modules/event/service"

	"github.com/google/uuid"
)

type recordedWrite struct {
	id       uuid.UUID
	status   eventEntity.EventStatus
	notified bool
}

type mockEventRepository struct {
	mu           sync.Mutex
	events       []eventEntity.Event
	selectErr    error
	statusErr    error
	writes       []recordedWrite
	travelWrites []uuid.UUID

	// staleReads makes GetByID serve the setup-time snapshot for the first
	// n reads, mimicking a backend whose writes take a moment to show up.
	staleReads int
	stale      map[uuid.UUID]eventEntity.Event
}

func newMockEventRepository(events ...eventEntity.Event) *mockEventRepository {
	return &mockEventRepository{events: events}
}

func (m *mockEventRepository) SelectByUser(_ context.Context, userID uuid.UUID) ([]eventEntity.Event, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.selectErr != nil {
		return nil, m.selectErr
	}
	var out []eventEntity.Event
	for _, e := range m.events {
		if e.UserID == userID {
			out = append(out, e)
		}
	}
	return out, nil
}

func (m *mockEventRepository) SelectTracked(ctx context.Context, userID uuid.UUID) ([]eventEntity.Event, error) {
	all, err := m.SelectByUser(ctx, userID)
	if err != nil {
		return nil, err
	}
	var out []eventEntity.Event
	for _, e := range all {
		if e.TravelApplicable() && e.Status != eventEntity.StatusComplete {
			out = append(out, e)
		}
	}
	return out, nil
}

func (m *mockEventRepository) ListTrackedUsers(context.Context) ([]uuid.UUID, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	seen := map[uuid.UUID]bool{}
	var out []uuid.UUID
	for _, e := range m.events {
		if e.TrackLocation && e.Status != eventEntity.StatusComplete && !seen[e.UserID] {
			seen[e.UserID] = true
			out = append(out, e.UserID)
		}
	}
	return out, nil
}

func (m *mockEventRepository) GetByID(_ context.Context, id uuid.UUID) (*eventEntity.Event, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.staleReads > 0 {
		m.staleReads--
		if e, ok := m.stale[id]; ok {
			return &e, nil
		}
	}
	for i := range m.events {
		if m.events[i].ID == id {
			e := m.events[i]
			return &e, nil
		}
	}
	return nil, errors.New("event not found")
}

func (m *mockEventRepository) Create(_ context.Context, event *eventEntity.Event) (*eventEntity.Event, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	event.ID = uuid.New()
	m.events = append(m.events, *event)
	return event, nil
}

func (m *mockEventRepository) Update(_ context.Context, event *eventEntity.Event) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	for i := range m.events {
		if m.events[i].ID == event.ID {
			m.events[i] = *event
		}
	}
	return nil
}

func (m *mockEventRepository) UpdateStatus(_ context.Context, id uuid.UUID, status eventEntity.EventStatus, notified bool) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.statusErr != nil {
		return m.statusErr
	}
	m.writes = append(m.writes, recordedWrite{id: id, status: status, notified: notified})
	for i := range m.events {
		if m.events[i].ID == id {
			m.events[i].Status = status
			m.events[i].Notified = notified
		}
	}
	return nil
}

func (m *mockEventRepository) UpdateTravelInfo(_ context.Context, id uuid.UUID, distanceMiles float64, etaMinutes int) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.travelWrites = append(m.travelWrites, id)
	for i := range m.events {
		if m.events[i].ID == id {
			eta := etaMinutes
			m.events[i].DistanceMiles = distanceMiles
			m.events[i].EstimatedTravelTime = &eta
		}
	}
	return nil
}

func (m *mockEventRepository) Delete(_ context.Context, id uuid.UUID) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	for i := range m.events {
		if m.events[i].ID == id {
			m.events = append(m.events[:i], m.events[i+1:]...)
			break
		}
	}
	return nil
}

func (m *mockEventRepository) statusWrites() []recordedWrite {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]recordedWrite(nil), m.writes...)
}

type sentNotification struct {
	notifType string
	title     string
	body      string
}

type mockNotifier struct {
	mu   sync.Mutex
	sent []sentNotification
	err  error
}

func (m *mockNotifier) Notify(_ context.Context, _ uuid.UUID, notifType, title, body string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.err != nil {
		return m.err
	}
	m.sent = append(m.sent, sentNotification{notifType: notifType, title: title, body: body})
	return nil
}

func (m *mockNotifier) notifications() []sentNotification {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]sentNotification(nil), m.sent...)
}

func eta(minutes int) *int { return &minutes }

func coord(v float64) *float64 { return &v }

func testEvent(userID uuid.UUID, title string, startsAt time.Time, status eventEntity.EventStatus) eventEntity.Event {
	e := eventEntity.Event{
		UserID:    userID,
		Title:     title,
		Date:      startsAt.Format("2006-01-02"),
		StartTime: startsAt.Format("15:04"),
		EndTime:   startsAt.Add(time.Hour).Format("15:04"),
		Status:    status,
	}
	e.ID = uuid.New()
	return e
}

func trackedEvent(userID uuid.UUID, title string, startsAt time.Time, status eventEntity.EventStatus, etaMinutes *int) eventEntity.Event {
	e := testEvent(userID, title, startsAt, status)
	e.TrackLocation = true
	e.Latitude = coord(51.5)
	e.Longitude = coord(-0.12)
	e.EstimatedTravelTime = etaMinutes
	return e
}

func TestReconcileMarksMissedDeparture(t *testing.T) {
	userID := uuid.New()
	now := time.Date(2026, 8, 29, 9, 0, 0, 0, time.Local)

	// Starts in 10 minutes with a 30 minute drive: departure is 20 minutes past.
	missed := trackedEvent(userID, "Dentist", now.Add(10*time.Minute), eventEntity.StatusToday, eta(30))
	repo := newMockEventRepository(missed)
	notifier := &mockNotifier{}
	stores := eventService.NewStoreSet()

	r := NewReconciler(repo, stores, notifier)
	if err := r.Reconcile(context.Background(), userID, now); err != nil {
		t.Fatalf("Reconcile() error = %v", err)
	}

	writes := repo.statusWrites()
	if len(writes) != 1 {
		t.Fatalf("status writes = %d, want 1", len(writes))
	}
	if writes[0].status != eventEntity.StatusPending || !writes[0].notified {
		t.Errorf("write = %+v, want pending/notified", writes[0])
	}

	sent := notifier.notifications()
	if len(sent) != 1 {
		t.Fatalf("notifications = %d, want 1", len(sent))
	}
	if sent[0].notifType != "missed_departure" {
		t.Errorf("notification type = %q, want missed_departure", sent[0].notifType)
	}
	if !strings.Contains(sent[0].body, "Dentist") {
		t.Errorf("notification body = %q, want it to name the event", sent[0].body)
	}

	snapshot := stores.Get(userID).Snapshot()
	if len(snapshot) != 1 || snapshot[0].Status != eventEntity.StatusPending {
		t.Errorf("store snapshot = %+v, want the pending event", snapshot)
	}
	if snapshot[0].TimeUntilDeparture != -20 {
		t.Errorf("TimeUntilDeparture = %d, want -20", snapshot[0].TimeUntilDeparture)
	}
}

func TestReconcileMarksNonTrackedMissedDeparture(t *testing.T) {
	userID := uuid.New()
	now := time.Date(2026, 8, 29, 9, 0, 0, 0, time.Local)

	// No travel tracking: the departure deadline is the start time itself.
	missed := testEvent(userID, "Standup", now.Add(-30*time.Minute), eventEntity.StatusToday)
	repo := newMockEventRepository(missed)
	notifier := &mockNotifier{}
	stores := eventService.NewStoreSet()

	r := NewReconciler(repo, stores, notifier)
	if err := r.Reconcile(context.Background(), userID, now); err != nil {
		t.Fatalf("Reconcile() error = %v", err)
	}

	writes := repo.statusWrites()
	if len(writes) != 1 || writes[0].status != eventEntity.StatusPending || !writes[0].notified {
		t.Fatalf("writes = %+v, want one pending/notified write", writes)
	}

	sent := notifier.notifications()
	if len(sent) != 1 {
		t.Fatalf("notifications = %d, want 1", len(sent))
	}
	if sent[0].notifType != "missed_departure" {
		t.Errorf("notification type = %q, want missed_departure", sent[0].notifType)
	}

	// Derived travel fields stay untouched for non-tracked events.
	snapshot := stores.Get(userID).Snapshot()
	if len(snapshot) != 1 || snapshot[0].TimeUntilDeparture != 0 {
		t.Errorf("TimeUntilDeparture = %d, want 0 for a non-tracked event", snapshot[0].TimeUntilDeparture)
	}
}

func TestReconcileMarksTodayEvents(t *testing.T) {
	userID := uuid.New()
	now := time.Date(2026, 8, 29, 7, 0, 0, 0, time.Local)

	todays := testEvent(userID, "Standup", now.Add(4*time.Hour), eventEntity.StatusUpcoming)
	tomorrow := testEvent(userID, "Gym", now.Add(26*time.Hour), eventEntity.StatusUpcoming)
	repo := newMockEventRepository(todays, tomorrow)
	notifier := &mockNotifier{}
	stores := eventService.NewStoreSet()

	r := NewReconciler(repo, stores, notifier)
	if err := r.Reconcile(context.Background(), userID, now); err != nil {
		t.Fatalf("Reconcile() error = %v", err)
	}

	writes := repo.statusWrites()
	if len(writes) != 1 {
		t.Fatalf("status writes = %d, want 1", len(writes))
	}
	if writes[0].id != todays.ID || writes[0].status != eventEntity.StatusToday {
		t.Errorf("write = %+v, want today's event marked today", writes[0])
	}
	if got := notifier.notifications(); len(got) != 0 {
		t.Errorf("notifications = %d, want 0", len(got))
	}
}

func TestReconcileIsIdempotent(t *testing.T) {
	userID := uuid.New()
	now := time.Date(2026, 8, 29, 9, 0, 0, 0, time.Local)

	missed := trackedEvent(userID, "Dentist", now.Add(10*time.Minute), eventEntity.StatusToday, eta(30))
	todays := testEvent(userID, "Standup", now.Add(6*time.Hour), eventEntity.StatusUpcoming)
	repo := newMockEventRepository(missed, todays)
	notifier := &mockNotifier{}

	r := NewReconciler(repo, eventService.NewStoreSet(), notifier)
	for i := 0; i < 2; i++ {
		if err := r.Reconcile(context.Background(), userID, now); err != nil {
			t.Fatalf("Reconcile() pass %d error = %v", i+1, err)
		}
	}

	if writes := repo.statusWrites(); len(writes) != 2 {
		t.Errorf("status writes = %d, want 2 (second pass writes nothing)", len(writes))
	}
	if sent := notifier.notifications(); len(sent) != 1 {
		t.Errorf("notifications = %d, want 1", len(sent))
	}
}

func TestReconcileLeavesResolvedEventsAlone(t *testing.T) {
	userID := uuid.New()
	now := time.Date(2026, 8, 29, 12, 0, 0, 0, time.Local)

	pending := trackedEvent(userID, "Lunch", now.Add(-2*time.Hour), eventEntity.StatusPending, eta(15))
	pending.Notified = true
	complete := trackedEvent(userID, "Breakfast", now.Add(-5*time.Hour), eventEntity.StatusComplete, eta(15))
	complete.Notified = true
	repo := newMockEventRepository(pending, complete)
	notifier := &mockNotifier{}

	r := NewReconciler(repo, eventService.NewStoreSet(), notifier)
	if err := r.Reconcile(context.Background(), userID, now); err != nil {
		t.Fatalf("Reconcile() error = %v", err)
	}

	if writes := repo.statusWrites(); len(writes) != 0 {
		t.Errorf("status writes = %d, want 0", len(writes))
	}
	if sent := notifier.notifications(); len(sent) != 0 {
		t.Errorf("notifications = %d, want 0", len(sent))
	}
}

func TestNotifyMissed(t *testing.T) {
	userID := uuid.New()
	now := time.Now()

	silent := trackedEvent(userID, "Vet", now.Add(-time.Hour), eventEntity.StatusPending, eta(10))
	announced := trackedEvent(userID, "Bank", now.Add(-2*time.Hour), eventEntity.StatusPending, eta(10))
	announced.Notified = true
	repo := newMockEventRepository(silent, announced)
	notifier := &mockNotifier{}

	r := NewReconciler(repo, eventService.NewStoreSet(), notifier)
	if err := r.NotifyMissed(context.Background(), userID); err != nil {
		t.Fatalf("NotifyMissed() error = %v", err)
	}

	sent := notifier.notifications()
	if len(sent) != 1 {
		t.Fatalf("notifications = %d, want 1", len(sent))
	}
	if !strings.Contains(sent[0].body, "Vet") {
		t.Errorf("notification body = %q, want it to name the silent event", sent[0].body)
	}

	writes := repo.statusWrites()
	if len(writes) != 1 || writes[0].id != silent.ID || !writes[0].notified {
		t.Fatalf("writes = %+v, want the silent event marked notified", writes)
	}
}

func TestReconcileSelectError(t *testing.T) {
	repo := newMockEventRepository()
	repo.selectErr = errors.New("connection refused")

	r := NewReconciler(repo, eventService.NewStoreSet(), &mockNotifier{})
	if err := r.Reconcile(context.Background(), uuid.New(), time.Now()); err == nil {
		t.Fatal("Reconcile() error = nil, want error")
	}
}
