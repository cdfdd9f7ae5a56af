package router

import (
	"go-departure-scheduler/core/middleware"
	"go-departure-scheduler/modules/location/controller"

	"github.com/labstack/echo/v4"
)

type LocationRouter struct {
	controller *controller.LocationController
}

func NewLocationRouter(controller *controller.LocationController) *LocationRouter {
	return &LocationRouter{controller: controller}
}

func (r *LocationRouter) Register(e *echo.Group, mw *middleware.Middleware) {
	group := e.Group("/location", mw.AuthMiddleware())
	group.PUT("", r.controller.Update)
}
