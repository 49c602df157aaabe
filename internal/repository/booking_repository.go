package repository

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"github.com/iliyamo/event-booking/internal/model"
)

// BookingRepo owns the `bookings` table and the two transactions that
// are allowed to touch an event's available-seat counter: Book and
// Cancel.  Both lock the event row with SELECT ... FOR UPDATE so that
// all capacity decisions for one event are serialized on that row
// while bookings against different events proceed in parallel.
type BookingRepo struct {
	db *sql.DB
}

// NewBookingRepo returns a new BookingRepo bound to the given database.
func NewBookingRepo(db *sql.DB) *BookingRepo { return &BookingRepo{db: db} }

// Book atomically decrements the event's available seats and inserts a
// CONFIRMED booking priced from the same locked read.
//
// The row lock is the whole point.  A naive flow that reads
// available_seats, checks it and writes the decrement in separate
// steps lets two concurrent requests both observe the same stale count
// and jointly oversell the event.  Locking the event row up front
// means the read-check-decrement below is one indivisible step per
// event: a second transaction blocks on the SELECT until this one
// commits or rolls back, then sees the updated counter.
//
// Returns ErrEventNotFound or ErrNotEnoughSeats for business failures;
// any other error is an infrastructure failure and the database is
// left unchanged either way.
func (r *BookingRepo) Book(ctx context.Context, eventID, userID uint64, seats int) (*model.BookingDetail, error) {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return nil, err
	}
	committed := false
	defer func() {
		if !committed {
			_ = tx.Rollback()
		}
	}()

	var (
		available  int
		priceCents uint32
		title      string
		eventDate  time.Time
		location   string
	)
	err = tx.QueryRowContext(ctx,
		`SELECT available_seats, price_cents, title, event_date, location
		 FROM events WHERE id = ? FOR UPDATE`,
		eventID).Scan(&available, &priceCents, &title, &eventDate, &location)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrEventNotFound
	}
	if err != nil {
		return nil, err
	}

	if available < seats {
		return nil, ErrNotEnoughSeats
	}

	if _, err = tx.ExecContext(ctx,
		`UPDATE events SET available_seats = available_seats - ? WHERE id = ?`,
		seats, eventID); err != nil {
		return nil, err
	}

	d := &model.BookingDetail{
		Booking: model.Booking{
			EventID:          eventID,
			UserID:           userID,
			Seats:            seats,
			TotalAmountCents: priceCents * uint32(seats),
			Status:           model.BookingStatusConfirmed,
		},
		EventTitle:    title,
		EventDate:     eventDate,
		EventLocation: location,
	}
	res, err := tx.ExecContext(ctx,
		`INSERT INTO bookings (event_id, user_id, seats, total_amount_cents, status)
		 VALUES (?, ?, ?, ?, ?)`,
		d.EventID, d.UserID, d.Seats, d.TotalAmountCents, d.Status)
	if err != nil {
		return nil, err
	}
	id, err := res.LastInsertId()
	if err != nil {
		return nil, err
	}
	d.ID = uint64(id)

	if err = tx.Commit(); err != nil {
		return nil, err
	}
	committed = true

	now := time.Now().UTC()
	d.CreatedAt = now
	d.UpdatedAt = now
	return d, nil
}

// Cancel transitions a CONFIRMED booking owned by userID to CANCELLED
// and releases its seats back to the event, in one transaction.  The
// event row is locked first, in the same order as Book, so the two
// transactions never deadlock against each other.  Cancellation is
// refused with ErrConflict when the booking is already cancelled or
// the event date has passed.
func (r *BookingRepo) Cancel(ctx context.Context, bookingID, userID uint64) error {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	committed := false
	defer func() {
		if !committed {
			_ = tx.Rollback()
		}
	}()

	var (
		eventID uint64
		owner   uint64
		seats   int
		status  model.BookingStatus
	)
	// Lock the booking row as well: two concurrent cancellations of
	// the same booking must not both observe CONFIRMED and release the
	// seats twice.
	err = tx.QueryRowContext(ctx,
		`SELECT event_id, user_id, seats, status FROM bookings WHERE id = ? FOR UPDATE`,
		bookingID).Scan(&eventID, &owner, &seats, &status)
	if errors.Is(err, sql.ErrNoRows) {
		return ErrBookingNotFound
	}
	if err != nil {
		return err
	}
	if owner != userID {
		return ErrForbidden
	}
	if status != model.BookingStatusConfirmed {
		return ErrConflict
	}

	var eventDate time.Time
	err = tx.QueryRowContext(ctx,
		`SELECT event_date FROM events WHERE id = ? FOR UPDATE`,
		eventID).Scan(&eventDate)
	if err != nil {
		return err
	}
	if !eventDate.After(time.Now().UTC()) {
		return ErrConflict
	}

	if _, err = tx.ExecContext(ctx,
		`UPDATE bookings SET status = ? WHERE id = ?`,
		model.BookingStatusCancelled, bookingID); err != nil {
		return err
	}
	// Seats released here can never push the counter past capacity:
	// they were subtracted by Book under the same row lock.
	if _, err = tx.ExecContext(ctx,
		`UPDATE events SET available_seats = available_seats + ? WHERE id = ?`,
		seats, eventID); err != nil {
		return err
	}

	if err = tx.Commit(); err != nil {
		return err
	}
	committed = true
	return nil
}

// GetByID returns a booking or ErrBookingNotFound.
func (r *BookingRepo) GetByID(ctx context.Context, id uint64) (*model.Booking, error) {
	var b model.Booking
	err := r.db.QueryRowContext(ctx,
		`SELECT id, event_id, user_id, seats, total_amount_cents, status, created_at, updated_at
		 FROM bookings WHERE id = ?`, id).Scan(
		&b.ID, &b.EventID, &b.UserID, &b.Seats, &b.TotalAmountCents,
		&b.Status, &b.CreatedAt, &b.UpdatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrBookingNotFound
	}
	if err != nil {
		return nil, err
	}
	return &b, nil
}

// ListByUser returns the user's bookings joined with event details,
// newest first.  When no bookings exist an empty slice is returned.
func (r *BookingRepo) ListByUser(ctx context.Context, userID uint64) ([]model.BookingDetail, error) {
	const q = `SELECT b.id, b.event_id, b.user_id, b.seats, b.total_amount_cents,
	                  b.status, b.created_at, b.updated_at,
	                  e.title, e.event_date, e.location, e.image_url
	           FROM bookings b
	           JOIN events e ON e.id = b.event_id
	           WHERE b.user_id = ?
	           ORDER BY b.created_at DESC`
	rows, err := r.db.QueryContext(ctx, q, userID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	details := make([]model.BookingDetail, 0)
	for rows.Next() {
		var (
			d        model.BookingDetail
			imageURL sql.NullString
		)
		if err := rows.Scan(
			&d.ID, &d.EventID, &d.UserID, &d.Seats, &d.TotalAmountCents,
			&d.Status, &d.CreatedAt, &d.UpdatedAt,
			&d.EventTitle, &d.EventDate, &d.EventLocation, &imageURL,
		); err != nil {
			return nil, err
		}
		if imageURL.Valid {
			d.EventImageURL = imageURL.String
		}
		details = append(details, d)
	}
	return details, rows.Err()
}

// ConfirmedSeats sums the seats of all confirmed bookings for an
// event.  Used by tests to assert the capacity invariant; the booking
// path itself trusts the row-locked counter.
func (r *BookingRepo) ConfirmedSeats(ctx context.Context, eventID uint64) (int, error) {
	var total int
	err := r.db.QueryRowContext(ctx,
		`SELECT COALESCE(SUM(seats), 0) FROM bookings WHERE event_id = ? AND status = ?`,
		eventID, model.BookingStatusConfirmed).Scan(&total)
	return total, err
}
