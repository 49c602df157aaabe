package handler

import (
	"context"
	"errors"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/iliyamo/event-booking/internal/model"
	"github.com/iliyamo/event-booking/internal/repository"
	"github.com/iliyamo/event-booking/internal/urlsafety"
)

// EventHandler serves the public event catalogue and the organizer
// management endpoints.
type EventHandler struct {
	Events *repository.EventRepo
}

func NewEventHandler(events *repository.EventRepo) *EventHandler {
	return &EventHandler{Events: events}
}

type eventReq struct {
	Title       string `json:"title"`
	Description string `json:"description"`
	Location    string `json:"location"`
	EventDate   string `json:"event_date"` // RFC 3339
	Capacity    int    `json:"capacity"`
	PriceCents  uint32 `json:"price_cents"`
	ImageURL    string `json:"image_url"`
}

// sanitizeImage blanks stored image URLs that do not pass the external
// URL check, so rows written before validation existed cannot feed a
// javascript: or userinfo-spoofed link to clients.
func sanitizeImage(e *model.Event) {
	if !urlsafety.IsSafeExternalURL(e.ImageURL) {
		e.ImageURL = ""
	}
}

// List returns upcoming events, optionally filtered by the term query
// parameter.  Public, no authentication.
func (h *EventHandler) List(c echo.Context) error {
	ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
	defer cancel()

	events, err := h.Events.ListUpcoming(ctx, c.QueryParam("term"))
	if err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "list events failed"})
	}
	for i := range events {
		sanitizeImage(&events[i])
	}
	return c.JSON(http.StatusOK, echo.Map{"events": events})
}

// Get returns a single event by ID.  Public.
func (h *EventHandler) Get(c echo.Context) error {
	id, err := parseID(c.Param("id"))
	if err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid event id"})
	}

	ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
	defer cancel()

	event, err := h.Events.GetByID(ctx, id)
	if errors.Is(err, repository.ErrEventNotFound) {
		return c.JSON(http.StatusNotFound, echo.Map{"error": "event not found"})
	}
	if err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "load event failed"})
	}
	sanitizeImage(event)
	return c.JSON(http.StatusOK, event)
}

// Create adds a new event owned by the authenticated organizer.
func (h *EventHandler) Create(c echo.Context) error {
	organizerID, ok := c.Get("user_id").(uint64)
	if !ok {
		return c.JSON(http.StatusUnauthorized, echo.Map{"error": "unauthorized"})
	}

	e, errMsg := bindEvent(c)
	if errMsg != "" {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": errMsg})
	}
	e.OrganizerID = organizerID

	ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
	defer cancel()

	if err := h.Events.Create(ctx, e); err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "create event failed"})
	}
	return c.JSON(http.StatusCreated, e)
}

// ListMine returns all events belonging to the authenticated organizer.
func (h *EventHandler) ListMine(c echo.Context) error {
	organizerID, ok := c.Get("user_id").(uint64)
	if !ok {
		return c.JSON(http.StatusUnauthorized, echo.Map{"error": "unauthorized"})
	}

	ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
	defer cancel()

	events, err := h.Events.ListByOrganizer(ctx, organizerID)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "list events failed"})
	}
	return c.JSON(http.StatusOK, echo.Map{"events": events})
}

// Update rewrites the mutable attributes of an owned event.  Capacity
// is fixed at creation; the seat counter belongs to the booking flow.
func (h *EventHandler) Update(c echo.Context) error {
	organizerID, ok := c.Get("user_id").(uint64)
	if !ok {
		return c.JSON(http.StatusUnauthorized, echo.Map{"error": "unauthorized"})
	}
	id, err := parseID(c.Param("id"))
	if err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid event id"})
	}

	e, errMsg := bindEvent(c)
	if errMsg != "" {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": errMsg})
	}
	e.ID = id

	ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
	defer cancel()

	switch err := h.Events.Update(ctx, organizerID, e); {
	case errors.Is(err, repository.ErrEventNotFound):
		return c.JSON(http.StatusNotFound, echo.Map{"error": "event not found"})
	case errors.Is(err, repository.ErrForbidden):
		return c.JSON(http.StatusForbidden, echo.Map{"error": "forbidden"})
	case err != nil:
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "update event failed"})
	}
	return c.NoContent(http.StatusNoContent)
}

// Delete removes an owned event that has no confirmed bookings.
func (h *EventHandler) Delete(c echo.Context) error {
	organizerID, ok := c.Get("user_id").(uint64)
	if !ok {
		return c.JSON(http.StatusUnauthorized, echo.Map{"error": "unauthorized"})
	}
	id, err := parseID(c.Param("id"))
	if err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid event id"})
	}

	ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
	defer cancel()

	switch err := h.Events.Delete(ctx, id, organizerID); {
	case errors.Is(err, repository.ErrEventNotFound):
		return c.JSON(http.StatusNotFound, echo.Map{"error": "event not found"})
	case errors.Is(err, repository.ErrForbidden):
		return c.JSON(http.StatusForbidden, echo.Map{"error": "forbidden"})
	case errors.Is(err, repository.ErrConflict):
		return c.JSON(http.StatusConflict, echo.Map{"error": "event has confirmed bookings"})
	case err != nil:
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "delete event failed"})
	}
	return c.NoContent(http.StatusNoContent)
}

// bindEvent validates the request body into a model.Event.  The second
// return value is a client-facing error message, empty on success.
func bindEvent(c echo.Context) (*model.Event, string) {
	var req eventReq
	if err := c.Bind(&req); err != nil {
		return nil, "invalid body"
	}
	req.Title = strings.TrimSpace(req.Title)
	if req.Title == "" {
		return nil, "title required"
	}
	if req.Capacity < 1 || req.Capacity > 10000 {
		return nil, "capacity must be between 1 and 10000"
	}
	date, err := time.Parse(time.RFC3339, req.EventDate)
	if err != nil {
		return nil, "event_date must be RFC 3339"
	}
	if !urlsafety.IsSafeExternalURL(req.ImageURL) {
		return nil, "image_url must be an absolute http(s) URL"
	}
	return &model.Event{
		Title:       req.Title,
		Description: strings.TrimSpace(req.Description),
		Location:    strings.TrimSpace(req.Location),
		EventDate:   date.UTC(),
		Capacity:    req.Capacity,
		PriceCents:  req.PriceCents,
		ImageURL:    strings.TrimSpace(req.ImageURL),
	}, ""
}

func parseID(s string) (uint64, error) {
	return strconv.ParseUint(s, 10, 64)
}
