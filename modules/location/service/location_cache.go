package service

import (
	"context"
	"encoding/json"
	stderrors "errors"
	"sync"

	"go-departure-scheduler/core/cache"
	"go-departure-scheduler/core/constants"
	"go-departure-scheduler/modules/location/entity"

	"github.com/google/uuid"
)

// Cache is the last observed device position per user. It has no expiry
// beyond explicit overwrite; absence is not an error.
type Cache interface {
	Get(ctx context.Context, userID uuid.UUID) (entity.Coordinate, bool, error)
	Set(ctx context.Context, userID uuid.UUID, coord entity.Coordinate) error
}

type memoryCache struct {
	mu    sync.RWMutex
	cells map[uuid.UUID]entity.Coordinate
}

func NewMemoryCache() Cache {
	return &memoryCache{cells: make(map[uuid.UUID]entity.Coordinate)}
}

func (m *memoryCache) Get(_ context.Context, userID uuid.UUID) (entity.Coordinate, bool, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	coord, ok := m.cells[userID]
	return coord, ok, nil
}

func (m *memoryCache) Set(_ context.Context, userID uuid.UUID, coord entity.Coordinate) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.cells[userID] = coord
	return nil
}

type redisCache struct {
	cache *cache.Cache
}

// NewRedisCache keeps the position in Redis so it survives restarts and is
// shared across instances.
func NewRedisCache(c *cache.Cache) Cache {
	return &redisCache{cache: c}
}

func (r *redisCache) Get(ctx context.Context, userID uuid.UUID) (entity.Coordinate, bool, error) {
	raw, err := r.cache.Get(ctx, constants.RedisKeyLocation+userID.String())
	if err != nil {
		if stderrors.Is(err, cache.ErrMiss) {
			return entity.Coordinate{}, false, nil
		}
		return entity.Coordinate{}, false, err
	}

	var coord entity.Coordinate
	if err := json.Unmarshal([]byte(raw), &coord); err != nil {
		return entity.Coordinate{}, false, err
	}
	return coord, true, nil
}

func (r *redisCache) Set(ctx context.Context, userID uuid.UUID, coord entity.Coordinate) error {
	raw, err := json.Marshal(coord)
	if err != nil {
		return err
	}
	return r.cache.Set(ctx, constants.RedisKeyLocation+userID.String(), string(raw), 0)
}
