package handler

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/iliyamo/event-booking/internal/repository"
	"github.com/iliyamo/event-booking/internal/service"
	"github.com/iliyamo/event-booking/internal/urlsafety"
)

// BookingHandler exposes the customer booking endpoints.
type BookingHandler struct {
	Svc      *service.BookingService
	Bookings *repository.BookingRepo
}

func NewBookingHandler(svc *service.BookingService, bookings *repository.BookingRepo) *BookingHandler {
	return &BookingHandler{Svc: svc, Bookings: bookings}
}

type bookReq struct {
	Seats int `json:"seats"`
}

// Book reserves seats on an event for the authenticated customer.
// Business refusals come back with the service's message and a status
// matching it; only infrastructure failures are 500s.
func (h *BookingHandler) Book(c echo.Context) error {
	userID, ok := c.Get("user_id").(uint64)
	if !ok {
		return c.JSON(http.StatusUnauthorized, echo.Map{"error": "unauthorized"})
	}
	eventID, err := parseID(c.Param("id"))
	if err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid event id"})
	}

	var req bookReq
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid body"})
	}

	ctx, cancel := context.WithTimeout(c.Request().Context(), 10*time.Second)
	defer cancel()

	res, err := h.Svc.Book(ctx, eventID, userID, req.Seats)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "booking failed"})
	}
	if !res.Success {
		return c.JSON(bookStatus(res.Message), res)
	}
	return c.JSON(http.StatusCreated, res)
}

// bookStatus maps a refusal message to its HTTP status.
func bookStatus(msg string) int {
	switch msg {
	case service.MsgEventNotFound:
		return http.StatusNotFound
	case service.MsgNotEnoughSeats:
		return http.StatusConflict
	default:
		return http.StatusBadRequest
	}
}

// ListMine returns the authenticated user's bookings with event
// details, newest first.
func (h *BookingHandler) ListMine(c echo.Context) error {
	userID, ok := c.Get("user_id").(uint64)
	if !ok {
		return c.JSON(http.StatusUnauthorized, echo.Map{"error": "unauthorized"})
	}

	ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
	defer cancel()

	bookings, err := h.Bookings.ListByUser(ctx, userID)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "list bookings failed"})
	}
	for i := range bookings {
		if !urlsafety.IsSafeExternalURL(bookings[i].EventImageURL) {
			bookings[i].EventImageURL = ""
		}
	}
	return c.JSON(http.StatusOK, echo.Map{"bookings": bookings})
}

// Cancel releases a confirmed booking back to its event.
func (h *BookingHandler) Cancel(c echo.Context) error {
	userID, ok := c.Get("user_id").(uint64)
	if !ok {
		return c.JSON(http.StatusUnauthorized, echo.Map{"error": "unauthorized"})
	}
	bookingID, err := parseID(c.Param("id"))
	if err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid booking id"})
	}

	ctx, cancel := context.WithTimeout(c.Request().Context(), 10*time.Second)
	defer cancel()

	switch err := h.Svc.Cancel(ctx, bookingID, userID); {
	case errors.Is(err, repository.ErrBookingNotFound):
		return c.JSON(http.StatusNotFound, echo.Map{"error": "booking not found"})
	case errors.Is(err, repository.ErrForbidden):
		return c.JSON(http.StatusForbidden, echo.Map{"error": "forbidden"})
	case errors.Is(err, repository.ErrConflict):
		return c.JSON(http.StatusConflict, echo.Map{"error": "booking cannot be cancelled"})
	case err != nil:
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "cancel failed"})
	}
	return c.NoContent(http.StatusNoContent)
}
