package handler

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/iliyamo/event-booking/internal/model"
	"github.com/iliyamo/event-booking/internal/repository"
	"github.com/iliyamo/event-booking/internal/service"
)

// stubStore returns a scripted error (or a confirmed booking) for
// every call, letting handler status mapping be tested without MySQL.
type stubStore struct{ err error }

func (s *stubStore) Book(_ context.Context, eventID, userID uint64, seats int) (*model.BookingDetail, error) {
	if s.err != nil {
		return nil, s.err
	}
	return &model.BookingDetail{
		Booking: model.Booking{
			ID: 5, EventID: eventID, UserID: userID, Seats: seats,
			TotalAmountCents: 5000,
			Status:           model.BookingStatusConfirmed,
		},
	}, nil
}

func (s *stubStore) Cancel(context.Context, uint64, uint64) error { return s.err }

func doBook(t *testing.T, store service.BookingStore, body string) *httptest.ResponseRecorder {
	t.Helper()
	e := echo.New()
	req := httptest.NewRequest(http.MethodPost, "/v1/events/7/bookings", strings.NewReader(body))
	req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec)
	c.SetPath("/v1/events/:id/bookings")
	c.SetParamNames("id")
	c.SetParamValues("7")
	c.Set("user_id", uint64(42))
	c.Set("role", model.RoleCustomer)

	h := NewBookingHandler(service.NewBookingService(store, nil), nil)
	require.NoError(t, h.Book(c))
	return rec
}

func TestBookEndpointStatuses(t *testing.T) {
	tests := []struct {
		name   string
		store  *stubStore
		body   string
		status int
	}{
		{"created", &stubStore{}, `{"seats":2}`, http.StatusCreated},
		{"zero seats", &stubStore{}, `{"seats":0}`, http.StatusBadRequest},
		{"event missing", &stubStore{err: repository.ErrEventNotFound}, `{"seats":1}`, http.StatusNotFound},
		{"sold out", &stubStore{err: repository.ErrNotEnoughSeats}, `{"seats":1}`, http.StatusConflict},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			rec := doBook(t, tc.store, tc.body)
			assert.Equal(t, tc.status, rec.Code)
		})
	}
}

func TestBookEndpointSuccessBody(t *testing.T) {
	rec := doBook(t, &stubStore{}, `{"seats":2}`)
	assert.Equal(t, http.StatusCreated, rec.Code)
	assert.Contains(t, rec.Body.String(), `"success":true`)
	assert.Contains(t, rec.Body.String(), `"total_amount_cents":5000`)
}

func TestBookEndpointRefusalBody(t *testing.T) {
	rec := doBook(t, &stubStore{err: repository.ErrNotEnoughSeats}, `{"seats":3}`)
	assert.Equal(t, http.StatusConflict, rec.Code)
	assert.Contains(t, rec.Body.String(), `"success":false`)
	assert.Contains(t, rec.Body.String(), service.MsgNotEnoughSeats)
}
