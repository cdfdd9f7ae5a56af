package entity

import (
	"fmt"
	"math"
	"sort"
	"time"

	"go-departure-scheduler/core/entity"

	"github.com/google/uuid"
)

// EventStatus is the lifecycle of an event. Transitions only move forward:
// upcoming -> today -> pending -> complete, with today and pending both
// reachable directly from upcoming. Complete is reachable only from pending
// or today, via explicit user action.
type EventStatus string

const (
	StatusUpcoming EventStatus = "upcoming"
	StatusToday    EventStatus = "today"
	StatusPending  EventStatus = "pending"
	StatusComplete EventStatus = "complete"
)

func (s EventStatus) Valid() bool {
	switch s {
	case StatusUpcoming, StatusToday, StatusPending, StatusComplete:
		return true
	}
	return false
}

// CanTransition reports whether moving to the given status is a legal
// forward progression.
func (s EventStatus) CanTransition(to EventStatus) bool {
	switch s {
	case StatusUpcoming:
		return to == StatusToday || to == StatusPending
	case StatusToday:
		return to == StatusPending || to == StatusComplete
	case StatusPending:
		return to == StatusComplete
	default:
		return false
	}
}

// Event is one calendar commitment. Date and the time fields are naive local
// wall-clock values, as entered by the user.
type Event struct {
	UserID        uuid.UUID `db:"user_id" json:"user_id"`
	Title         string    `db:"title" json:"title"`
	Date          string    `db:"date" json:"date"`             // 2006-01-02
	StartTime     string    `db:"start_time" json:"start_time"` // 15:04
	EndTime       string    `db:"end_time" json:"end_time"`
	Location      *string   `db:"location" json:"location,omitempty"`
	Latitude      *float64  `db:"latitude" json:"latitude,omitempty"`
	Longitude     *float64  `db:"longitude" json:"longitude,omitempty"`
	TrackLocation bool      `db:"track_location" json:"track_location"`

	// DistanceMiles and EstimatedTravelTime are recomputed from routing
	// data; they are meaningful only when travel tracking applies.
	DistanceMiles       float64 `db:"distance" json:"distance"`
	EstimatedTravelTime *int    `db:"estimated_travel_time" json:"estimated_travel_time,omitempty"`

	// TimeUntilDeparture is derived per reconciliation pass, never stored.
	TimeUntilDeparture int `db:"-" json:"time_until_departure"`

	Status   EventStatus `db:"event_status" json:"event_status"`
	Notified bool        `db:"notified" json:"notified"`
	entity.BaseEntity
}

func (e *Event) HasCoordinates() bool {
	return e.Latitude != nil && e.Longitude != nil
}

// TravelApplicable reports whether travel computation applies to this event.
func (e *Event) TravelApplicable() bool {
	return e.TrackLocation && e.HasCoordinates()
}

// StartsAt parses the naive local start of the event.
func (e *Event) StartsAt() (time.Time, error) {
	for _, layout := range []string{"2006-01-02 15:04:05", "2006-01-02 15:04"} {
		if t, err := time.ParseInLocation(layout, e.Date+" "+e.StartTime, time.Local); err == nil {
			return t, nil
		}
	}
	return time.Time{}, fmt.Errorf("event %s has invalid date/time %q %q", e.ID, e.Date, e.StartTime)
}

// DepartureMinutes is the whole minutes until the user must leave to arrive
// on time, given the last known travel estimate (0 if never computed).
// Negative values signal a missed departure.
func (e *Event) DepartureMinutes(now time.Time) (int, error) {
	startsAt, err := e.StartsAt()
	if err != nil {
		return 0, err
	}
	eta := 0
	if e.EstimatedTravelTime != nil {
		eta = *e.EstimatedTravelTime
	}
	return int(math.Round(startsAt.Sub(now).Minutes())) - eta, nil
}

func (e *Event) sortKey() string {
	return e.Date + "T" + e.StartTime
}

// SortByStart orders events ascending by (date, start_time) in place.
func SortByStart(events []Event) {
	sort.SliceStable(events, func(i, j int) bool {
		return events[i].sortKey() < events[j].sortKey()
	})
}
