package controller

import (
	"go-departure-scheduler/core/constants"
	"go-departure-scheduler/core/controller"
	"go-departure-scheduler/core/errors"
	"go-departure-scheduler/modules/location/dto"
	"go-departure-scheduler/modules/location/entity"
	"go-departure-scheduler/modules/location/service"

	"github.com/google/uuid"
	"github.com/labstack/echo/v4"
)

type LocationController struct {
	cache service.Cache
	// onUpdate re-enters the scheduling loop once a position becomes
	// available.
	onUpdate func(userID uuid.UUID)
	controller.BaseController
}

func NewLocationController(cache service.Cache, onUpdate func(userID uuid.UUID)) *LocationController {
	return &LocationController{
		cache:          cache,
		onUpdate:       onUpdate,
		BaseController: controller.NewBaseController(),
	}
}

// Update stores the device-reported position for the current user.
func (c *LocationController) Update(ctx echo.Context) error {
	userID, err := getUserIDFromContext(ctx)
	if err != nil {
		return c.Unauthorized(errors.ErrUnauthorized, "Unauthorized", nil)
	}

	req := new(dto.UpdateLocationRequest)
	if err := ctx.Bind(req); err != nil {
		return c.BadRequest(errors.ErrInvalidRequestData, "Invalid request body", nil)
	}

	coord := entity.Coordinate{Latitude: req.Latitude, Longitude: req.Longitude}
	if !coord.Valid() {
		return c.BadRequest(errors.ErrInvalidInput, "Coordinates out of range", nil)
	}

	if err := c.cache.Set(ctx.Request().Context(), userID, coord); err != nil {
		return c.InternalServerError(errors.ErrInternalServer, "Failed to store location", err)
	}

	if c.onUpdate != nil {
		c.onUpdate(userID)
	}

	return c.SuccessResponse(ctx, nil, "Location updated successfully")
}

func getUserIDFromContext(ctx echo.Context) (uuid.UUID, error) {
	userID, ok := ctx.Get(constants.ContextUserID).(uuid.UUID)
	if !ok {
		return uuid.Nil, errors.NewAppError(errors.ErrUnauthorized, "no user in context", nil)
	}
	return userID, nil
}
