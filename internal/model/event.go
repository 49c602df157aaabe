package model

import "time"

// Event represents a bookable event as stored in the `events` table.
// Capacity is fixed at creation time; AvailableSeats is the mutable
// counter decremented by confirmed bookings and restored by
// cancellations.  The invariant 0 <= AvailableSeats <= Capacity holds
// at all times and is enforced inside the booking transaction.
//
// Fields:
//  ID             – primary key identifier of the event.
//  Title          – short display title.
//  Description    – free-form description text.
//  Location       – venue or address string.
//  EventDate      – when the event takes place (UTC).
//  Capacity       – total number of seats, immutable after creation.
//  AvailableSeats – seats still open for booking.
//  PriceCents     – price per seat in cents.
//  ImageURL       – optional external image URL; blanked on read when
//                   it fails the external-URL safety check.
//  OrganizerID    – user who created the event.
//  CreatedAt      – timestamp of creation.
//  UpdatedAt      – timestamp of last update.
type Event struct {
	ID             uint64    `json:"id"`
	Title          string    `json:"title"`
	Description    string    `json:"description"`
	Location       string    `json:"location"`
	EventDate      time.Time `json:"event_date"`
	Capacity       int       `json:"capacity"`
	AvailableSeats int       `json:"available_seats"`
	PriceCents     uint32    `json:"price_cents"`
	ImageURL       string    `json:"image_url,omitempty"`
	OrganizerID    uint64    `json:"organizer_id"`
	CreatedAt      time.Time `json:"created_at"`
	UpdatedAt      time.Time `json:"updated_at"`
}

// IsFull reports whether no seats remain.
func (e *Event) IsFull() bool {
	return e.AvailableSeats <= 0
}
