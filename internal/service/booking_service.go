// Package service contains business workflows layered above the
// repositories: result shaping, transient-failure retries and event
// publishing.
package service

import (
	"context"
	"errors"
	"log"

	"github.com/go-sql-driver/mysql"

	"github.com/iliyamo/event-booking/internal/model"
	"github.com/iliyamo/event-booking/internal/repository"
)

// BookingStore is the slice of BookingRepo the service depends on.
type BookingStore interface {
	Book(ctx context.Context, eventID, userID uint64, seats int) (*model.BookingDetail, error)
	Cancel(ctx context.Context, bookingID, userID uint64) error
}

// BookResult reports the outcome of a booking attempt.  Exactly one of
// the two shapes occurs: Success true with a non-nil Booking and empty
// Message, or Success false with a human-readable Message explaining
// the business refusal.  Infrastructure failures are not represented
// here; they come back as a separate error.
type BookResult struct {
	Success bool                 `json:"success"`
	Message string               `json:"message,omitempty"`
	Booking *model.BookingDetail `json:"booking,omitempty"`
}

// Messages returned to callers for business refusals.
const (
	MsgInvalidSeatCount = "invalid seat count"
	MsgEventNotFound    = "event not found"
	MsgNotEnoughSeats   = "not enough seats remaining"
)

// bookAttempts bounds the retry loop for lock conflicts.
const bookAttempts = 3

// BookingService validates booking requests, drives the transactional
// store and notifies the publisher on success.
type BookingService struct {
	store     BookingStore
	publisher ConfirmationPublisher
}

// ConfirmationPublisher receives successful bookings for asynchronous
// fan-out.  A nil publisher disables notifications.
type ConfirmationPublisher interface {
	PublishBookingConfirmed(b *model.BookingDetail)
}

func NewBookingService(store BookingStore, pub ConfirmationPublisher) *BookingService {
	return &BookingService{store: store, publisher: pub}
}

// Book reserves seats on an event for a user.
//
// seats must be at least 1; zero and negative counts are refused
// before any database work.  Business refusals (unknown event, not
// enough seats) come back as an unsuccessful BookResult with a nil
// error.  Lock conflicts between concurrent transactions are retried a
// bounded number of times and never surface as a seat-availability
// refusal: if every attempt loses its lock the caller gets an
// infrastructure error, not a misleading "sold out".
func (s *BookingService) Book(ctx context.Context, eventID, userID uint64, seats int) (BookResult, error) {
	if seats < 1 {
		return BookResult{Message: MsgInvalidSeatCount}, nil
	}

	var lastErr error
	for attempt := 0; attempt < bookAttempts; attempt++ {
		b, err := s.store.Book(ctx, eventID, userID, seats)
		switch {
		case err == nil:
			if s.publisher != nil {
				s.publisher.PublishBookingConfirmed(b)
			}
			return BookResult{Success: true, Booking: b}, nil
		case errors.Is(err, repository.ErrEventNotFound):
			return BookResult{Message: MsgEventNotFound}, nil
		case errors.Is(err, repository.ErrNotEnoughSeats):
			return BookResult{Message: MsgNotEnoughSeats}, nil
		case isLockConflict(err):
			lastErr = err
			log.Printf("booking: lock conflict on event %d (attempt %d/%d), retrying", eventID, attempt+1, bookAttempts)
			continue
		default:
			return BookResult{}, err
		}
	}
	return BookResult{}, lastErr
}

// Cancel releases a confirmed booking's seats back to its event.
// Repository sentinels pass through untouched so handlers can map them
// to status codes.
func (s *BookingService) Cancel(ctx context.Context, bookingID, userID uint64) error {
	var err error
	for attempt := 0; attempt < bookAttempts; attempt++ {
		if err = s.store.Cancel(ctx, bookingID, userID); !isLockConflict(err) {
			return err
		}
	}
	return err
}

// isLockConflict reports whether err is a MySQL deadlock (1213) or
// lock wait timeout (1205), both of which are safe to retry because
// the transaction rolled back without side effects.
func isLockConflict(err error) bool {
	var me *mysql.MySQLError
	if errors.As(err, &me) {
		return me.Number == 1213 || me.Number == 1205
	}
	return false
}
