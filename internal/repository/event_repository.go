package repository

import (
	"context"
	"database/sql"
	"errors"
	"strings"
	"time"

	"github.com/iliyamo/event-booking/internal/model"
)

// EventRepo encapsulates database operations for the `events` table.
// The available-seat counter on each row is mutated only by the
// booking and cancellation transactions in BookingRepo; everything
// here is plain CRUD.
type EventRepo struct {
	db *sql.DB
}

// NewEventRepo returns a new EventRepo bound to the given database.
func NewEventRepo(db *sql.DB) *EventRepo { return &EventRepo{db: db} }

const eventColumns = `id, title, description, location, event_date, capacity,
	available_seats, price_cents, image_url, organizer_id, created_at, updated_at`

func scanEvent(row interface{ Scan(...any) error }) (*model.Event, error) {
	var (
		e        model.Event
		imageURL sql.NullString
	)
	err := row.Scan(
		&e.ID, &e.Title, &e.Description, &e.Location, &e.EventDate,
		&e.Capacity, &e.AvailableSeats, &e.PriceCents, &imageURL,
		&e.OrganizerID, &e.CreatedAt, &e.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	if imageURL.Valid {
		e.ImageURL = imageURL.String
	}
	return &e, nil
}

// Create inserts a new event.  AvailableSeats starts equal to Capacity.
// The generated ID and timestamps are populated on the passed event.
func (r *EventRepo) Create(ctx context.Context, e *model.Event) error {
	const q = `INSERT INTO events
		(title, description, location, event_date, capacity, available_seats,
		 price_cents, image_url, organizer_id)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)`
	res, err := r.db.ExecContext(ctx, q,
		e.Title, e.Description, e.Location, e.EventDate, e.Capacity,
		e.Capacity, e.PriceCents, nullStr(e.ImageURL), e.OrganizerID)
	if err != nil {
		return err
	}
	id, err := res.LastInsertId()
	if err != nil {
		return err
	}
	e.ID = uint64(id)
	e.AvailableSeats = e.Capacity
	now := time.Now().UTC()
	e.CreatedAt = now
	e.UpdatedAt = now
	return nil
}

// GetByID returns a single event or ErrEventNotFound.
func (r *EventRepo) GetByID(ctx context.Context, id uint64) (*model.Event, error) {
	row := r.db.QueryRowContext(ctx,
		`SELECT `+eventColumns+` FROM events WHERE id = ?`, id)
	e, err := scanEvent(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrEventNotFound
	}
	if err != nil {
		return nil, err
	}
	return e, nil
}

// ListUpcoming returns events whose date has not yet passed, ordered by
// event date ascending.  When term is non-empty it is matched against
// title, description and location with LIKE, mirroring a simple search
// box.
func (r *EventRepo) ListUpcoming(ctx context.Context, term string) ([]model.Event, error) {
	q := `SELECT ` + eventColumns + ` FROM events WHERE event_date >= ?`
	args := []any{time.Now().UTC().Truncate(24 * time.Hour)}
	if term = strings.TrimSpace(term); term != "" {
		q += ` AND (title LIKE ? OR description LIKE ? OR location LIKE ?)`
		like := "%" + term + "%"
		args = append(args, like, like, like)
	}
	q += ` ORDER BY event_date ASC`

	rows, err := r.db.QueryContext(ctx, q, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	events := make([]model.Event, 0)
	for rows.Next() {
		e, err := scanEvent(rows)
		if err != nil {
			return nil, err
		}
		events = append(events, *e)
	}
	return events, rows.Err()
}

// ListByOrganizer returns all events created by the given organizer,
// newest event date first.
func (r *EventRepo) ListByOrganizer(ctx context.Context, organizerID uint64) ([]model.Event, error) {
	rows, err := r.db.QueryContext(ctx,
		`SELECT `+eventColumns+` FROM events WHERE organizer_id = ? ORDER BY event_date DESC`,
		organizerID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	events := make([]model.Event, 0)
	for rows.Next() {
		e, err := scanEvent(rows)
		if err != nil {
			return nil, err
		}
		events = append(events, *e)
	}
	return events, rows.Err()
}

// Update modifies the mutable attributes of an event owned by the given
// organizer.  Capacity and the seat counter are deliberately not
// touched here: capacity is immutable after creation and the counter
// belongs to the booking transactions.  Returns ErrEventNotFound when
// the event does not exist and ErrForbidden when it belongs to a
// different organizer.
func (r *EventRepo) Update(ctx context.Context, organizerID uint64, e *model.Event) error {
	if err := r.checkOwner(ctx, e.ID, organizerID); err != nil {
		return err
	}
	const q = `UPDATE events
		SET title = ?, description = ?, location = ?, event_date = ?,
		    price_cents = ?, image_url = ?
		WHERE id = ?`
	_, err := r.db.ExecContext(ctx, q,
		e.Title, e.Description, e.Location, e.EventDate,
		e.PriceCents, nullStr(e.ImageURL), e.ID)
	return err
}

// Delete removes an event owned by the given organizer.  It refuses
// with ErrConflict while confirmed bookings exist, so paid seats are
// never silently dropped.
func (r *EventRepo) Delete(ctx context.Context, eventID, organizerID uint64) error {
	if err := r.checkOwner(ctx, eventID, organizerID); err != nil {
		return err
	}
	var confirmed int
	err := r.db.QueryRowContext(ctx,
		`SELECT COUNT(*) FROM bookings WHERE event_id = ? AND status = ?`,
		eventID, model.BookingStatusConfirmed).Scan(&confirmed)
	if err != nil {
		return err
	}
	if confirmed > 0 {
		return ErrConflict
	}
	_, err = r.db.ExecContext(ctx, `DELETE FROM events WHERE id = ?`, eventID)
	return err
}

func (r *EventRepo) checkOwner(ctx context.Context, eventID, organizerID uint64) error {
	var owner uint64
	err := r.db.QueryRowContext(ctx,
		`SELECT organizer_id FROM events WHERE id = ?`, eventID).Scan(&owner)
	if errors.Is(err, sql.ErrNoRows) {
		return ErrEventNotFound
	}
	if err != nil {
		return err
	}
	if owner != organizerID {
		return ErrForbidden
	}
	return nil
}

// nullStr maps "" to SQL NULL so optional columns stay NULL instead of
// accumulating empty strings.
func nullStr(s string) sql.NullString {
	return sql.NullString{String: s, Valid: s != ""}
}
