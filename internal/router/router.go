// Package router wires handlers, auth middleware and the optional
// cache layer onto the Echo instance.
package router

import (
	"github.com/labstack/echo/v4"

	"github.com/iliyamo/event-booking/internal/handler"
	"github.com/iliyamo/event-booking/internal/middleware"
	"github.com/iliyamo/event-booking/internal/model"
)

// RegisterRoutes registers routes that need no authentication.
func RegisterRoutes(e *echo.Echo) {
	e.GET("/healthz", handler.Health)
}

// RegisterAuth registers the auth endpoints.  Register, login, refresh
// and logout are open; /v1/me and /v1/logout-all require a token.
func RegisterAuth(e *echo.Echo, a *handler.AuthHandler, jwtSecret string) {
	g := e.Group("/v1/auth")
	g.POST("/register", a.Register)
	g.POST("/login", a.Login)
	g.POST("/refresh", a.Refresh)
	g.POST("/logout", a.Logout)

	auth := e.Group("/v1", middleware.JWTAuth(jwtSecret))
	auth.GET("/me", a.Me)
	auth.POST("/logout-all", a.LogoutAll)
}

// RegisterPublic registers the unauthenticated event catalogue.  The
// cache middleware is applied here and nowhere else: these are the
// only endpoints that are both hot and safe to serve stale.
func RegisterPublic(e *echo.Echo, h *handler.EventHandler, cache echo.MiddlewareFunc) {
	g := e.Group("/v1", cache)
	g.GET("/events", h.List)
	g.GET("/events/:id", h.Get)
}

// RegisterCustomer registers booking endpoints under /v1.  All require
// a valid JWT with the CUSTOMER role.
func RegisterCustomer(e *echo.Echo, h *handler.BookingHandler, jwtSecret string) {
	g := e.Group(
		"/v1",
		middleware.JWTAuth(jwtSecret),
		middleware.RequireRole(model.RoleCustomer),
	)
	g.POST("/events/:id/bookings", h.Book)
	g.GET("/my-bookings", h.ListMine)
	g.DELETE("/bookings/:id", h.Cancel)
}

// RegisterOrganizer registers event management endpoints under
// /v1/organizer for the ORGANIZER role.
func RegisterOrganizer(e *echo.Echo, h *handler.EventHandler, jwtSecret string) {
	g := e.Group(
		"/v1/organizer",
		middleware.JWTAuth(jwtSecret),
		middleware.RequireRole(model.RoleOrganizer),
	)
	g.POST("/events", h.Create)
	g.GET("/events", h.ListMine)
	g.PUT("/events/:id", h.Update)
	g.DELETE("/events/:id", h.Delete)
}
