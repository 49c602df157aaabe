// Package queue carries confirmed bookings over RabbitMQ: a publisher
// invoked from the booking workflow and a background consumer that
// appends confirmations to logs/booking.log.
package queue

// BookingConfirmedEvent is published to the booking.confirmed queue
// after a booking commits.  It carries enough for downstream consumers
// to notify or aggregate without querying the primary database.
type BookingConfirmedEvent struct {
	BookingID        uint64 `json:"booking_id"`
	EventID          uint64 `json:"event_id"`
	UserID           uint64 `json:"user_id"`
	EventTitle       string `json:"event_title"`
	EventDate        string `json:"event_date"`
	EventLocation    string `json:"event_location"`
	Seats            int    `json:"seats"`
	TotalAmountCents uint32 `json:"total_amount_cents"`
	ConfirmedAt      string `json:"confirmed_at"`
}
