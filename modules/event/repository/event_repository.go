package repository

import (
	"context"
	"database/sql"

	"go-departure-scheduler/core/database"
	"go-departure-scheduler/core/errors"
	"go-departure-scheduler/core/logger"
	"go-departure-scheduler/modules/event/entity"

	"github.com/google/uuid"
)

type EventRepository interface {
	SelectByUser(ctx context.Context, userID uuid.UUID) ([]entity.Event, error)
	SelectTracked(ctx context.Context, userID uuid.UUID) ([]entity.Event, error)
	ListTrackedUsers(ctx context.Context) ([]uuid.UUID, error)
	GetByID(ctx context.Context, id uuid.UUID) (*entity.Event, error)
	Create(ctx context.Context, event *entity.Event) (*entity.Event, error)
	Update(ctx context.Context, event *entity.Event) error
	UpdateStatus(ctx context.Context, id uuid.UUID, status entity.EventStatus, notified bool) error
	UpdateTravelInfo(ctx context.Context, id uuid.UUID, distanceMiles float64, etaMinutes int) error
	Delete(ctx context.Context, id uuid.UUID) error
}

type eventRepository struct {
	db database.Database
}

func NewEventRepository(db database.Database) EventRepository {
	return &eventRepository{db: db}
}

const eventColumns = `
	id, user_id, title,
	to_char(date, 'YYYY-MM-DD') AS date,
	to_char(start_time, 'HH24:MI') AS start_time,
	to_char(end_time, 'HH24:MI') AS end_time,
	location, latitude, longitude, track_location,
	COALESCE(distance, 0) AS distance,
	estimated_travel_time,
	event_status, notified, created_at, updated_at
`

func (r *eventRepository) SelectByUser(ctx context.Context, userID uuid.UUID) ([]entity.Event, error) {
	query := `SELECT ` + eventColumns + ` FROM events WHERE user_id = $1`

	var events []entity.Event
	if err := r.db.SelectContext(ctx, &events, query, userID); err != nil {
		logger.Error("EventRepository:SelectByUser:Error:", err)
		return nil, err
	}
	return events, nil
}

// SelectTracked returns the user's non-complete events with travel tracking
// enabled and coordinates present.
func (r *eventRepository) SelectTracked(ctx context.Context, userID uuid.UUID) ([]entity.Event, error) {
	query := `
		SELECT ` + eventColumns + `
		FROM events
		WHERE user_id = $1
		AND track_location = true
		AND latitude IS NOT NULL
		AND longitude IS NOT NULL
		AND event_status != 'complete'
	`
	var events []entity.Event
	if err := r.db.SelectContext(ctx, &events, query, userID); err != nil {
		logger.Error("EventRepository:SelectTracked:Error:", err)
		return nil, err
	}
	return events, nil
}

func (r *eventRepository) ListTrackedUsers(ctx context.Context) ([]uuid.UUID, error) {
	query := `
		SELECT DISTINCT user_id FROM events
		WHERE track_location = true
		AND event_status != 'complete'
	`
	var userIDs []uuid.UUID
	if err := r.db.SelectContext(ctx, &userIDs, query); err != nil {
		logger.Error("EventRepository:ListTrackedUsers:Error:", err)
		return nil, err
	}
	return userIDs, nil
}

func (r *eventRepository) GetByID(ctx context.Context, id uuid.UUID) (*entity.Event, error) {
	query := `SELECT ` + eventColumns + ` FROM events WHERE id = $1`

	var event entity.Event
	if err := r.db.GetContext(ctx, &event, query, id); err != nil {
		if err == sql.ErrNoRows {
			return nil, errors.NewAppError(errors.ErrNotFound, "event not found", err)
		}
		logger.Error("EventRepository:GetByID:Error:", err)
		return nil, err
	}
	return &event, nil
}

func (r *eventRepository) Create(ctx context.Context, event *entity.Event) (*entity.Event, error) {
	query := `
		INSERT INTO events (user_id, title, date, start_time, end_time, location, latitude, longitude, track_location, event_status, notified)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11)
		RETURNING id, created_at, updated_at
	`
	err := r.db.QueryRowContext(
		ctx, query,
		event.UserID, event.Title, event.Date, event.StartTime, event.EndTime,
		event.Location, event.Latitude, event.Longitude, event.TrackLocation,
		event.Status, event.Notified,
	).Scan(&event.ID, &event.CreatedAt, &event.UpdatedAt)

	if err != nil {
		logger.Error("EventRepository:Create:Error:", err)
		return nil, err
	}
	return event, nil
}

func (r *eventRepository) Update(ctx context.Context, event *entity.Event) error {
	query := `
		UPDATE events
		SET title = $1, date = $2, start_time = $3, end_time = $4,
			location = $5, latitude = $6, longitude = $7, track_location = $8,
			distance = $9, estimated_travel_time = $10,
			updated_at = NOW()
		WHERE id = $11
	`
	err := r.db.ExecContext(ctx, query,
		event.Title, event.Date, event.StartTime, event.EndTime,
		event.Location, event.Latitude, event.Longitude, event.TrackLocation,
		event.DistanceMiles, event.EstimatedTravelTime,
		event.ID,
	)
	if err != nil {
		logger.Error("EventRepository:Update:Error:", err)
	}
	return err
}

func (r *eventRepository) UpdateStatus(ctx context.Context, id uuid.UUID, status entity.EventStatus, notified bool) error {
	query := `
		UPDATE events
		SET event_status = $1, notified = $2, updated_at = NOW()
		WHERE id = $3
	`
	if err := r.db.ExecContext(ctx, query, status, notified, id); err != nil {
		logger.Error("EventRepository:UpdateStatus:Error:", err)
		return err
	}
	return nil
}

func (r *eventRepository) UpdateTravelInfo(ctx context.Context, id uuid.UUID, distanceMiles float64, etaMinutes int) error {
	query := `
		UPDATE events
		SET distance = $1, estimated_travel_time = $2, updated_at = NOW()
		WHERE id = $3
	`
	if err := r.db.ExecContext(ctx, query, distanceMiles, etaMinutes, id); err != nil {
		logger.Error("EventRepository:UpdateTravelInfo:Error:", err)
		return err
	}
	return nil
}

func (r *eventRepository) Delete(ctx context.Context, id uuid.UUID) error {
	if err := r.db.ExecContext(ctx, `DELETE FROM events WHERE id = $1`, id); err != nil {
		logger.Error("EventRepository:Delete:Error:", err)
		return err
	}
	return nil
}
