package service

import (
	"context"

	"go-departure-scheduler/core/errors"
	"go-departure-scheduler/modules/event/dto"
	"go-departure-scheduler/modules/event/entity"
	"go-departure-scheduler/modules/event/repository"

	"github.com/google/uuid"
)

type EventService struct {
	repo   repository.EventRepository
	stores *StoreSet
}

func NewEventService(repo repository.EventRepository, stores *StoreSet) *EventService {
	return &EventService{repo: repo, stores: stores}
}

// Refresh re-reads the user's full event set from the backend and swaps the
// snapshot.
func (s *EventService) Refresh(ctx context.Context, userID uuid.UUID) error {
	events, err := s.repo.SelectByUser(ctx, userID)
	if err != nil {
		return err
	}
	s.stores.Get(userID).ReplaceAll(events)
	return nil
}

// Displayed returns the user's non-complete events in start order, from a
// fresh authoritative read.
func (s *EventService) Displayed(ctx context.Context, userID uuid.UUID) ([]entity.Event, error) {
	if err := s.Refresh(ctx, userID); err != nil {
		return nil, err
	}
	return s.stores.Get(userID).Displayed(), nil
}

// NotificationQueue returns the events currently eligible for scheduler
// attention, from a fresh authoritative read.
func (s *EventService) NotificationQueue(ctx context.Context, userID uuid.UUID) ([]entity.Event, error) {
	if err := s.Refresh(ctx, userID); err != nil {
		return nil, err
	}
	return s.stores.Get(userID).NotificationQueue(), nil
}

func (s *EventService) Create(ctx context.Context, userID uuid.UUID, req *dto.SaveEventRequest) (*entity.Event, error) {
	if err := req.Validate(); err != nil {
		return nil, err
	}

	event := &entity.Event{
		UserID:        userID,
		Title:         req.Title,
		Date:          req.Date,
		StartTime:     req.StartTime,
		EndTime:       req.EndTime,
		TrackLocation: req.TrackLocation,
		Status:        entity.StatusUpcoming,
		Notified:      false,
	}
	if req.TrackLocation && req.Location != nil {
		event.Location = &req.Location.Address
		event.Latitude = &req.Location.Latitude
		event.Longitude = &req.Location.Longitude
	}

	created, err := s.repo.Create(ctx, event)
	if err != nil {
		return nil, errors.NewAppError(errors.ErrCreateFailed, "failed to create event", err)
	}
	return created, nil
}

func (s *EventService) Update(ctx context.Context, userID, id uuid.UUID, req *dto.SaveEventRequest) (*entity.Event, error) {
	if err := req.Validate(); err != nil {
		return nil, err
	}

	event, err := s.getOwned(ctx, userID, id)
	if err != nil {
		return nil, err
	}

	prevLat, prevLng := event.Latitude, event.Longitude

	event.Title = req.Title
	event.Date = req.Date
	event.StartTime = req.StartTime
	event.EndTime = req.EndTime
	event.TrackLocation = req.TrackLocation
	event.Location = nil
	event.Latitude = nil
	event.Longitude = nil
	if req.TrackLocation && req.Location != nil {
		event.Location = &req.Location.Address
		event.Latitude = &req.Location.Latitude
		event.Longitude = &req.Location.Longitude
	}

	// A moved destination invalidates the stored route; clearing the
	// estimate makes the next scheduling cycle refetch it.
	if !sameCoordinate(prevLat, event.Latitude) || !sameCoordinate(prevLng, event.Longitude) {
		event.DistanceMiles = 0
		event.EstimatedTravelTime = nil
	}

	if err := s.repo.Update(ctx, event); err != nil {
		return nil, errors.NewAppError(errors.ErrUpdateFailed, "failed to update event", err)
	}
	return event, nil
}

// Delete removes an event. Only explicit user action destroys events; the
// scheduler never does.
func (s *EventService) Delete(ctx context.Context, userID, id uuid.UUID) error {
	if _, err := s.getOwned(ctx, userID, id); err != nil {
		return err
	}
	if err := s.repo.Delete(ctx, id); err != nil {
		return errors.NewAppError(errors.ErrDeleteFailed, "failed to delete event", err)
	}
	return nil
}

// MarkComplete applies the user "complete" action, legal only from pending
// or today.
func (s *EventService) MarkComplete(ctx context.Context, userID, id uuid.UUID) error {
	event, err := s.getOwned(ctx, userID, id)
	if err != nil {
		return err
	}

	if !event.Status.CanTransition(entity.StatusComplete) {
		return errors.NewAppError(errors.ErrInvalidTransition,
			"event cannot be completed from status "+string(event.Status), nil)
	}

	if err := s.repo.UpdateStatus(ctx, id, entity.StatusComplete, event.Notified); err != nil {
		return errors.NewAppError(errors.ErrUpdateFailed, "failed to complete event", err)
	}
	return nil
}

func sameCoordinate(a, b *float64) bool {
	if a == nil || b == nil {
		return a == b
	}
	return *a == *b
}

func (s *EventService) getOwned(ctx context.Context, userID, id uuid.UUID) (*entity.Event, error) {
	event, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if event.UserID != userID {
		return nil, errors.NewAppError(errors.ErrForbidden, "event belongs to another user", nil)
	}
	return event, nil
}
