package entity

import "time"

// RouteLeg is one driving leg as reported by the routing backend.
type RouteLeg struct {
	DistanceMeters int
	Duration       time.Duration
}

// TravelInfo is the computed travel summary for one event.
type TravelInfo struct {
	DistanceMiles       float64 `json:"distance"`
	EstimatedTravelTime int     `json:"estimated_travel_time"` // whole minutes
	TimeUntilDeparture  int     `json:"time_until_departure"`  // minutes, may be negative
}
