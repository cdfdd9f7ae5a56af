package dto

import (
	"regexp"
	"time"

	"go-departure-scheduler/core/errors"
)

var timeFormat = regexp.MustCompile(`^([01]\d|2[0-3]):([0-5]\d)$`)

type LocationPayload struct {
	Address   string  `json:"address"`
	Latitude  float64 `json:"latitude"`
	Longitude float64 `json:"longitude"`
}

type SaveEventRequest struct {
	Title         string           `json:"title"`
	Date          string           `json:"date"`
	StartTime     string           `json:"start_time"`
	EndTime       string           `json:"end_time"`
	TrackLocation bool             `json:"track_location"`
	Location      *LocationPayload `json:"location,omitempty"`
}

func (r *SaveEventRequest) Validate() error {
	if r.Title == "" {
		return errors.NewAppError(errors.ErrInvalidInput, "title is required", nil)
	}
	if _, err := time.Parse("2006-01-02", r.Date); err != nil {
		return errors.NewAppError(errors.ErrInvalidInput, "date must be YYYY-MM-DD", nil)
	}
	if !timeFormat.MatchString(r.StartTime) {
		return errors.NewAppError(errors.ErrInvalidInput, "start_time must be HH:MM", nil)
	}
	if !timeFormat.MatchString(r.EndTime) {
		return errors.NewAppError(errors.ErrInvalidInput, "end_time must be HH:MM", nil)
	}
	if r.TrackLocation {
		if r.Location == nil {
			return errors.NewAppError(errors.ErrInvalidInput, "location is required when track_location is set", nil)
		}
		if r.Location.Latitude < -90 || r.Location.Latitude > 90 ||
			r.Location.Longitude < -180 || r.Location.Longitude > 180 {
			return errors.NewAppError(errors.ErrInvalidInput, "location coordinates out of range", nil)
		}
	}
	return nil
}
