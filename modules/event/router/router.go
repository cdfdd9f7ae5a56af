package router

import (
	"go-departure-scheduler/core/middleware"
	"go-departure-scheduler/modules/event/controller"

	"github.com/labstack/echo/v4"
)

type EventRouter struct {
	controller *controller.EventController
}

func NewEventRouter(controller *controller.EventController) *EventRouter {
	return &EventRouter{controller: controller}
}

func (r *EventRouter) Register(e *echo.Group, mw *middleware.Middleware) {
	group := e.Group("/events", mw.AuthMiddleware())
	group.GET("", r.controller.GetDisplayed)
	group.GET("/queue", r.controller.GetQueue)
	group.POST("", r.controller.Create)
	group.PUT("/:id", r.controller.Update)
	group.DELETE("/:id", r.controller.Delete)
	group.POST("/:id/complete", r.controller.MarkComplete)
}
