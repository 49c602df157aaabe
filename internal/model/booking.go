package model

import "time"

// BookingStatus enumerates the states a booking can be in.  A booking
// is created directly as CONFIRMED by the booking transaction; PENDING
// exists for future payment flows and is never produced by the current
// entry point.  CANCELLED is reached only through the cancellation
// flow, which releases the booked seats back to the event.  There is
// no transition back to PENDING.
type BookingStatus string

const (
	BookingStatusPending   BookingStatus = "PENDING"
	BookingStatusConfirmed BookingStatus = "CONFIRMED"
	BookingStatusCancelled BookingStatus = "CANCELLED"
)

// Booking records a user's seat purchase for an event, as stored in
// the `bookings` table.  TotalAmountCents snapshots seats × the event
// price at booking time; later price changes do not affect existing
// bookings.
//
// Fields:
//  ID               – primary key identifier.
//  EventID          – event being booked.
//  UserID           – user who made the booking.
//  Seats            – number of seats booked (>= 1).
//  TotalAmountCents – seats × event price at booking time.
//  Status           – current BookingStatus.
//  CreatedAt        – creation timestamp.
//  UpdatedAt        – last update timestamp.
type Booking struct {
	ID               uint64        `json:"id"`
	EventID          uint64        `json:"event_id"`
	UserID           uint64        `json:"user_id"`
	Seats            int           `json:"seats"`
	TotalAmountCents uint32        `json:"total_amount_cents"`
	Status           BookingStatus `json:"status"`
	CreatedAt        time.Time     `json:"created_at"`
	UpdatedAt        time.Time     `json:"updated_at"`
}

// BookingDetail is a booking joined with the event fields needed to
// render a "my bookings" listing without further lookups.
type BookingDetail struct {
	Booking
	EventTitle    string    `json:"event_title"`
	EventDate     time.Time `json:"event_date"`
	EventLocation string    `json:"event_location"`
	EventImageURL string    `json:"event_image_url,omitempty"`
}
