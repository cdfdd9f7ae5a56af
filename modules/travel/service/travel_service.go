package service

import (
	"context"
	"fmt"
	"math"
	"time"

	"go-departure-scheduler/core/constants"
	"go-departure-scheduler/core/logger"
	eventEntity "go-departure-scheduler/modules/event/entity"
	locationEntity "go-departure-scheduler/modules/location/entity"
	locationService "go-departure-scheduler/modules/location/service"
	"go-departure-scheduler/modules/travel/entity"

	"github.com/google/uuid"
	"googlemaps.github.io/maps"
)

// Router asks a routing backend for a driving leg between two coordinates.
type Router interface {
	Route(ctx context.Context, origin, dest locationEntity.Coordinate) (entity.RouteLeg, error)
}

type googleRouter struct {
	client *maps.Client
}

// NewGoogleRouter builds a Router over the Google Directions API.
func NewGoogleRouter(apiKey string) (Router, error) {
	client, err := maps.NewClient(maps.WithAPIKey(apiKey))
	if err != nil {
		return nil, fmt.Errorf("failed to create maps client: %w", err)
	}
	return &googleRouter{client: client}, nil
}

func (g *googleRouter) Route(ctx context.Context, origin, dest locationEntity.Coordinate) (entity.RouteLeg, error) {
	routes, _, err := g.client.Directions(ctx, &maps.DirectionsRequest{
		Origin:        origin.String(),
		Destination:   dest.String(),
		Mode:          maps.TravelModeDriving,
		DepartureTime: "now",
		TrafficModel:  maps.TrafficModelBestGuess,
	})
	if err != nil {
		return entity.RouteLeg{}, err
	}
	if len(routes) == 0 || len(routes[0].Legs) == 0 {
		return entity.RouteLeg{}, fmt.Errorf("no route between %s and %s", origin, dest)
	}

	leg := routes[0].Legs[0]
	duration := leg.Duration
	if leg.DurationInTraffic > 0 {
		duration = leg.DurationInTraffic
	}
	return entity.RouteLeg{
		DistanceMeters: leg.Distance.Meters,
		Duration:       duration,
	}, nil
}

type Service struct {
	router Router
	cache  locationService.Cache
	now    func() time.Time
}

func NewService(router Router, cache locationService.Cache) *Service {
	return &Service{router: router, cache: cache, now: time.Now}
}

// FetchTravelInfo computes distance, ETA and time until departure for one
// event from the cached device position. Missing preconditions (no routing
// backend, no event coordinates, no cached location) return (nil, nil):
// travel tracking is simply not applicable right now. Errors are transient
// routing failures the caller should treat as "unknown, do not update".
func (s *Service) FetchTravelInfo(ctx context.Context, userID uuid.UUID, event *eventEntity.Event) (*entity.TravelInfo, error) {
	if s.router == nil {
		logger.Warn("Travel info unavailable: no routing backend configured")
		return nil, nil
	}
	if !event.HasCoordinates() {
		logger.Warn("Travel info skipped: event has no coordinates", "event_id", event.ID, "title", event.Title)
		return nil, nil
	}

	origin, ok, err := s.cache.Get(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to read cached location: %w", err)
	}
	if !ok {
		logger.Warn("Travel info skipped: no cached location", "user_id", userID)
		return nil, nil
	}

	dest := locationEntity.Coordinate{Latitude: *event.Latitude, Longitude: *event.Longitude}
	leg, err := s.router.Route(ctx, origin, dest)
	if err != nil {
		return nil, fmt.Errorf("routing request failed: %w", err)
	}

	eta := int(math.Round(leg.Duration.Minutes()))
	startsAt, err := event.StartsAt()
	if err != nil {
		return nil, err
	}
	info := &entity.TravelInfo{
		DistanceMiles:       float64(leg.DistanceMeters) / constants.MetersPerMile,
		EstimatedTravelTime: eta,
		TimeUntilDeparture:  int(math.Round(startsAt.Sub(s.now()).Minutes())) - eta,
	}

	logger.Info("Travel info computed",
		"event_id", event.ID,
		"title", event.Title,
		"distance_miles", fmt.Sprintf("%.1f", info.DistanceMiles),
		"eta_minutes", info.EstimatedTravelTime,
		"time_until_departure", info.TimeUntilDeparture,
	)
	return info, nil
}
