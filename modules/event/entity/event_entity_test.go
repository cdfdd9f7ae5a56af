package entity

import (
	"testing"
	"time"
)

func TestCanTransition(t *testing.T) {
	tests := []struct {
		from EventStatus
		to   EventStatus
		want bool
	}{
		{StatusUpcoming, StatusToday, true},
		{StatusUpcoming, StatusPending, true},
		{StatusUpcoming, StatusComplete, false},
		{StatusToday, StatusPending, true},
		{StatusToday, StatusComplete, true},
		{StatusToday, StatusUpcoming, false},
		{StatusPending, StatusComplete, true},
		{StatusPending, StatusUpcoming, false},
		{StatusPending, StatusToday, false},
		{StatusComplete, StatusUpcoming, false},
		{StatusComplete, StatusPending, false},
	}

	for _, tt := range tests {
		if got := tt.from.CanTransition(tt.to); got != tt.want {
			t.Errorf("%s -> %s = %v, want %v", tt.from, tt.to, got, tt.want)
		}
	}
}

func TestDepartureMinutes(t *testing.T) {
	now := time.Date(2026, 3, 10, 12, 0, 0, 0, time.Local)
	eta := 30

	tests := []struct {
		name  string
		event Event
		want  int
	}{
		{
			name: "start in two hours with 30 min travel",
			event: Event{
				Date:                "2026-03-10",
				StartTime:           "14:00",
				EstimatedTravelTime: &eta,
			},
			want: 90,
		},
		{
			name: "no travel estimate defaults to zero",
			event: Event{
				Date:      "2026-03-10",
				StartTime: "14:00",
			},
			want: 120,
		},
		{
			name: "missed departure is negative",
			event: Event{
				Date:                "2026-03-10",
				StartTime:           "12:15",
				EstimatedTravelTime: &eta,
			},
			want: -15,
		},
		{
			name: "seconds in start_time accepted",
			event: Event{
				Date:      "2026-03-10",
				StartTime: "13:00:00",
			},
			want: 60,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := tt.event.DepartureMinutes(now)
			if err != nil {
				t.Fatalf("DepartureMinutes: %v", err)
			}
			if got != tt.want {
				t.Errorf("DepartureMinutes = %d, want %d", got, tt.want)
			}
		})
	}
}

func TestDepartureMinutesInvalidDate(t *testing.T) {
	e := Event{Date: "not-a-date", StartTime: "12:00"}
	if _, err := e.DepartureMinutes(time.Now()); err == nil {
		t.Error("expected error for invalid date")
	}
}

func TestSortByStart(t *testing.T) {
	events := []Event{
		{Title: "c", Date: "2026-03-11", StartTime: "09:00"},
		{Title: "a", Date: "2026-03-10", StartTime: "08:00"},
		{Title: "b", Date: "2026-03-10", StartTime: "18:30"},
	}
	SortByStart(events)

	wantOrder := []string{"a", "b", "c"}
	for i, w := range wantOrder {
		if events[i].Title != w {
			t.Fatalf("order[%d] = %s, want %s", i, events[i].Title, w)
		}
	}
}

func TestTravelApplicable(t *testing.T) {
	lat, lng := 40.0, -74.0
	tests := []struct {
		name  string
		event Event
		want  bool
	}{
		{"tracked with coordinates", Event{TrackLocation: true, Latitude: &lat, Longitude: &lng}, true},
		{"tracked without coordinates", Event{TrackLocation: true}, false},
		{"untracked with coordinates", Event{TrackLocation: false, Latitude: &lat, Longitude: &lng}, false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.event.TravelApplicable(); got != tt.want {
				t.Errorf("TravelApplicable = %v, want %v", got, tt.want)
			}
		})
	}
}
