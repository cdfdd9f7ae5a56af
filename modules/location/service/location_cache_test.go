package service

import (
	"context"
	"testing"

	"go-departure-scheduler/modules/location/entity"

	"github.com/google/uuid"
)

func TestMemoryCache(t *testing.T) {
	ctx := context.Background()
	cache := NewMemoryCache()
	userID := uuid.New()

	_, ok, err := cache.Get(ctx, userID)
	if err != nil {
		t.Fatalf("Get on empty cache: %v", err)
	}
	if ok {
		t.Fatal("Get on empty cache reported a coordinate")
	}

	first := entity.Coordinate{Latitude: 40.7128, Longitude: -74.0060}
	if err := cache.Set(ctx, userID, first); err != nil {
		t.Fatalf("Set: %v", err)
	}
	got, ok, err := cache.Get(ctx, userID)
	if err != nil || !ok {
		t.Fatalf("Get after Set: ok=%v err=%v", ok, err)
	}
	if got != first {
		t.Errorf("Get = %+v, want %+v", got, first)
	}

	// Overwrite is the only invalidation.
	second := entity.Coordinate{Latitude: 34.0522, Longitude: -118.2437}
	if err := cache.Set(ctx, userID, second); err != nil {
		t.Fatalf("Set overwrite: %v", err)
	}
	got, _, _ = cache.Get(ctx, userID)
	if got != second {
		t.Errorf("Get after overwrite = %+v, want %+v", got, second)
	}

	// Other users see nothing.
	_, ok, _ = cache.Get(ctx, uuid.New())
	if ok {
		t.Error("Get for a different user reported a coordinate")
	}
}

func TestCoordinateValid(t *testing.T) {
	tests := []struct {
		name  string
		coord entity.Coordinate
		want  bool
	}{
		{"valid", entity.Coordinate{Latitude: 40.7, Longitude: -74.0}, true},
		{"lat too high", entity.Coordinate{Latitude: 90.1, Longitude: 0}, false},
		{"lat too low", entity.Coordinate{Latitude: -90.1, Longitude: 0}, false},
		{"lng too high", entity.Coordinate{Latitude: 0, Longitude: 180.1}, false},
		{"lng too low", entity.Coordinate{Latitude: 0, Longitude: -180.1}, false},
		{"boundary", entity.Coordinate{Latitude: -90, Longitude: 180}, true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.coord.Valid(); got != tt.want {
				t.Errorf("Valid() = %v, want %v", got, tt.want)
			}
		})
	}
}
