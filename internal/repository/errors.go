// Package repository implements MySQL persistence for events, bookings,
// users and refresh tokens.  Sentinel error values defined here let
// higher layers distinguish expected business failures from
// infrastructure errors with errors.Is; anything not matching a
// sentinel is treated as an infrastructure failure.
package repository

import "errors"

// ErrEventNotFound is returned when the requested event does not exist.
var ErrEventNotFound = errors.New("event not found")

// ErrBookingNotFound is returned when the requested booking does not exist.
var ErrBookingNotFound = errors.New("booking not found")

// ErrNotEnoughSeats is returned when an event's available-seat counter
// is lower than the requested seat count.  The check happens inside
// the booking transaction, on the row-locked counter, so the error is
// authoritative rather than a stale-snapshot guess.
var ErrNotEnoughSeats = errors.New("not enough seats remaining")

// ErrForbidden is returned when the caller attempts an operation on a
// resource they do not own.  Handlers translate this into HTTP 403.
var ErrForbidden = errors.New("forbidden")

// ErrConflict is returned when an operation cannot proceed because of
// conflicting state, such as deleting an event that still has
// confirmed bookings or cancelling a booking twice.  Handlers
// translate this into HTTP 409.
var ErrConflict = errors.New("conflict")
