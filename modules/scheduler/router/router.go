package router

import (
	"go-departure-scheduler/core/middleware"
	"go-departure-scheduler/modules/scheduler/controller"

	"github.com/labstack/echo/v4"
)

type SchedulerRouter struct {
	controller *controller.SchedulerController
}

func NewSchedulerRouter(controller *controller.SchedulerController) *SchedulerRouter {
	return &SchedulerRouter{controller: controller}
}

func (r *SchedulerRouter) Register(e *echo.Group, mw *middleware.Middleware) {
	group := e.Group("/scheduler", mw.AuthMiddleware())
	group.POST("/run", r.controller.Run)
	group.POST("/stop", r.controller.Stop)
}
