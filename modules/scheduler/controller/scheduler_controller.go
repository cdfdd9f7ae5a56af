package controller

import (
	"go-departure-scheduler/core/constants"
	"go-departure-scheduler/core/controller"
	"go-departure-scheduler/core/errors"
	"go-departure-scheduler/modules/scheduler/service"

	"github.com/google/uuid"
	"github.com/labstack/echo/v4"
)

type SchedulerController struct {
	manager *service.Manager
	controller.BaseController
}

func NewSchedulerController(manager *service.Manager) *SchedulerController {
	return &SchedulerController{
		manager:        manager,
		BaseController: controller.NewBaseController(),
	}
}

// Run reconciles the caller's events and starts the notification loop.
// Clients call this after login and whenever a location fix arrives.
func (c *SchedulerController) Run(ctx echo.Context) error {
	userID, err := getUserIDFromContext(ctx)
	if err != nil {
		return c.Unauthorized(errors.ErrUnauthorized, "Unauthorized", nil)
	}

	if runErr := c.manager.Trigger(ctx.Request().Context(), userID); runErr != nil {
		return c.InternalServerError(errors.ErrInternalServer, "Failed to run scheduler", runErr)
	}
	return c.SuccessResponse(ctx, nil, "Scheduler running")
}

// Stop tears down the caller's notification loop. Clients call this on
// logout so no timer fires for a signed-out session.
func (c *SchedulerController) Stop(ctx echo.Context) error {
	userID, err := getUserIDFromContext(ctx)
	if err != nil {
		return c.Unauthorized(errors.ErrUnauthorized, "Unauthorized", nil)
	}

	c.manager.Stop(userID)
	return c.SuccessResponse(ctx, nil, "Scheduler stopped")
}

func getUserIDFromContext(ctx echo.Context) (uuid.UUID, error) {
	userID, ok := ctx.Get(constants.ContextUserID).(uuid.UUID)
	if !ok {
		return uuid.Nil, errors.NewAppError(errors.ErrUnauthorized, "no user in context", nil)
	}
	return userID, nil
}
