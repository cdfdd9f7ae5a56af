package controller

import (
	"go-departure-scheduler/core/constants"
	"go-departure-scheduler/core/controller"
	"go-departure-scheduler/core/errors"
	"go-departure-scheduler/modules/event/dto"
	"go-departure-scheduler/modules/event/service"

	"github.com/google/uuid"
	"github.com/labstack/echo/v4"
)

type EventController struct {
	service *service.EventService
	// onChange re-enters the scheduling loop after manual event edits.
	onChange func(userID uuid.UUID)
	controller.BaseController
}

func NewEventController(service *service.EventService, onChange func(userID uuid.UUID)) *EventController {
	return &EventController{
		service:        service,
		onChange:       onChange,
		BaseController: controller.NewBaseController(),
	}
}

// GetDisplayed returns the user's non-complete events in start order.
func (c *EventController) GetDisplayed(ctx echo.Context) error {
	userID, err := getUserIDFromContext(ctx)
	if err != nil {
		return c.Unauthorized(errors.ErrUnauthorized, "Unauthorized", nil)
	}

	events, getErr := c.service.Displayed(ctx.Request().Context(), userID)
	if getErr != nil {
		return c.InternalServerError(errors.ErrGetFailed, "Failed to get events", getErr)
	}
	return c.SuccessResponse(ctx, events, "Events retrieved successfully")
}

// GetQueue returns the current notification queue.
func (c *EventController) GetQueue(ctx echo.Context) error {
	userID, err := getUserIDFromContext(ctx)
	if err != nil {
		return c.Unauthorized(errors.ErrUnauthorized, "Unauthorized", nil)
	}

	queue, getErr := c.service.NotificationQueue(ctx.Request().Context(), userID)
	if getErr != nil {
		return c.InternalServerError(errors.ErrGetFailed, "Failed to get notification queue", getErr)
	}
	return c.SuccessResponse(ctx, queue, "Notification queue retrieved successfully")
}

func (c *EventController) Create(ctx echo.Context) error {
	userID, err := getUserIDFromContext(ctx)
	if err != nil {
		return c.Unauthorized(errors.ErrUnauthorized, "Unauthorized", nil)
	}

	req := new(dto.SaveEventRequest)
	if err := ctx.Bind(req); err != nil {
		return c.BadRequest(errors.ErrInvalidRequestData, "Invalid request body", nil)
	}

	event, createErr := c.service.Create(ctx.Request().Context(), userID, req)
	if createErr != nil {
		return c.ErrorResponse(ctx, createErr)
	}

	c.notifyChange(userID)
	return c.SuccessResponse(ctx, event, "Event created successfully")
}

func (c *EventController) Update(ctx echo.Context) error {
	userID, err := getUserIDFromContext(ctx)
	if err != nil {
		return c.Unauthorized(errors.ErrUnauthorized, "Unauthorized", nil)
	}
	id, err := uuid.Parse(ctx.Param("id"))
	if err != nil {
		return c.BadRequest(errors.ErrInvalidInput, "Invalid event id", nil)
	}

	req := new(dto.SaveEventRequest)
	if err := ctx.Bind(req); err != nil {
		return c.BadRequest(errors.ErrInvalidRequestData, "Invalid request body", nil)
	}

	event, updateErr := c.service.Update(ctx.Request().Context(), userID, id, req)
	if updateErr != nil {
		return c.ErrorResponse(ctx, updateErr)
	}

	c.notifyChange(userID)
	return c.SuccessResponse(ctx, event, "Event updated successfully")
}

func (c *EventController) Delete(ctx echo.Context) error {
	userID, err := getUserIDFromContext(ctx)
	if err != nil {
		return c.Unauthorized(errors.ErrUnauthorized, "Unauthorized", nil)
	}
	id, err := uuid.Parse(ctx.Param("id"))
	if err != nil {
		return c.BadRequest(errors.ErrInvalidInput, "Invalid event id", nil)
	}

	if deleteErr := c.service.Delete(ctx.Request().Context(), userID, id); deleteErr != nil {
		return c.ErrorResponse(ctx, deleteErr)
	}

	c.notifyChange(userID)
	return c.SuccessResponse(ctx, nil, "Event deleted successfully")
}

// MarkComplete applies the explicit user "complete" action.
func (c *EventController) MarkComplete(ctx echo.Context) error {
	userID, err := getUserIDFromContext(ctx)
	if err != nil {
		return c.Unauthorized(errors.ErrUnauthorized, "Unauthorized", nil)
	}
	id, err := uuid.Parse(ctx.Param("id"))
	if err != nil {
		return c.BadRequest(errors.ErrInvalidInput, "Invalid event id", nil)
	}

	if completeErr := c.service.MarkComplete(ctx.Request().Context(), userID, id); completeErr != nil {
		return c.ErrorResponse(ctx, completeErr)
	}

	c.notifyChange(userID)
	return c.SuccessResponse(ctx, nil, "Event completed successfully")
}

func (c *EventController) notifyChange(userID uuid.UUID) {
	if c.onChange != nil {
		c.onChange(userID)
	}
}

func getUserIDFromContext(ctx echo.Context) (uuid.UUID, error) {
	userID, ok := ctx.Get(constants.ContextUserID).(uuid.UUID)
	if !ok {
		return uuid.Nil, errors.NewAppError(errors.ErrUnauthorized, "no user in context", nil)
	}
	return userID, nil
}
