package repository

import (
	"context"
	"database/sql"
	"os"
	"sync"
	"testing"
	"time"

	_ "github.com/go-sql-driver/mysql"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/iliyamo/event-booking/internal/model"
)

// Integration tests against a real MySQL instance.  Set
// TEST_DATABASE_DSN (e.g. "root@tcp(localhost:3306)/booking_test?parseTime=true&loc=UTC")
// to run them; otherwise they are skipped.

func testDB(t *testing.T) *sql.DB {
	t.Helper()
	dsn := os.Getenv("TEST_DATABASE_DSN")
	if dsn == "" {
		t.Skip("TEST_DATABASE_DSN not set; skipping MySQL integration tests")
	}
	db, err := sql.Open("mysql", dsn)
	require.NoError(t, err)

	ctx, cancel := context.WithTimeout(context.Background(), 3*time.Second)
	defer cancel()
	if err := db.PingContext(ctx); err != nil {
		t.Skipf("MySQL unreachable: %v", err)
	}

	for _, stmt := range []string{
		`CREATE TABLE IF NOT EXISTS events (
			id BIGINT UNSIGNED NOT NULL AUTO_INCREMENT PRIMARY KEY,
			title VARCHAR(255) NOT NULL,
			description TEXT NOT NULL,
			location VARCHAR(255) NOT NULL DEFAULT '',
			event_date DATETIME NOT NULL,
			capacity INT NOT NULL,
			available_seats INT NOT NULL,
			price_cents INT UNSIGNED NOT NULL DEFAULT 0,
			image_url VARCHAR(512) NULL,
			organizer_id BIGINT UNSIGNED NOT NULL,
			created_at TIMESTAMP NOT NULL DEFAULT CURRENT_TIMESTAMP,
			updated_at TIMESTAMP NOT NULL DEFAULT CURRENT_TIMESTAMP ON UPDATE CURRENT_TIMESTAMP
		) ENGINE=InnoDB`,
		`CREATE TABLE IF NOT EXISTS bookings (
			id BIGINT UNSIGNED NOT NULL AUTO_INCREMENT PRIMARY KEY,
			event_id BIGINT UNSIGNED NOT NULL,
			user_id BIGINT UNSIGNED NOT NULL,
			seats INT NOT NULL,
			total_amount_cents INT UNSIGNED NOT NULL,
			status VARCHAR(16) NOT NULL,
			created_at TIMESTAMP NOT NULL DEFAULT CURRENT_TIMESTAMP,
			updated_at TIMESTAMP NOT NULL DEFAULT CURRENT_TIMESTAMP ON UPDATE CURRENT_TIMESTAMP,
			KEY idx_bookings_event (event_id),
			KEY idx_bookings_user (user_id)
		) ENGINE=InnoDB`,
	} {
		_, err := db.Exec(stmt)
		require.NoError(t, err)
	}

	t.Cleanup(func() {
		_, _ = db.Exec(`DELETE FROM bookings`)
		_, _ = db.Exec(`DELETE FROM events`)
		_ = db.Close()
	})
	return db
}

func createTestEvent(t *testing.T, db *sql.DB, capacity int, priceCents uint32) *model.Event {
	t.Helper()
	e := &model.Event{
		Title:       "Summer Concert",
		Description: "Open air show",
		Location:    "Riverside Park",
		EventDate:   time.Now().UTC().Add(72 * time.Hour).Truncate(time.Second),
		Capacity:    capacity,
		PriceCents:  priceCents,
		OrganizerID: 1,
	}
	require.NoError(t, NewEventRepo(db).Create(context.Background(), e))
	return e
}

func TestBookLifecycle(t *testing.T) {
	db := testDB(t)
	ctx := context.Background()
	repo := NewBookingRepo(db)
	events := NewEventRepo(db)

	e := createTestEvent(t, db, 5, 2500)

	d, err := repo.Book(ctx, e.ID, 42, 3)
	require.NoError(t, err)
	assert.Equal(t, model.BookingStatusConfirmed, d.Status)
	assert.Equal(t, uint32(7500), d.TotalAmountCents, "price snapshot times seats")
	assert.Equal(t, "Summer Concert", d.EventTitle)

	got, err := events.GetByID(ctx, e.ID)
	require.NoError(t, err)
	assert.Equal(t, 2, got.AvailableSeats)

	// A second booking that exceeds the remainder is refused and
	// changes nothing.
	_, err = repo.Book(ctx, e.ID, 43, 3)
	require.ErrorIs(t, err, ErrNotEnoughSeats)
	got, err = events.GetByID(ctx, e.ID)
	require.NoError(t, err)
	assert.Equal(t, 2, got.AvailableSeats)

	list, err := repo.ListByUser(ctx, 42)
	require.NoError(t, err)
	require.Len(t, list, 1)
	assert.Equal(t, d.ID, list[0].ID)

	// Cancelling releases the seats and flips the status.
	require.NoError(t, repo.Cancel(ctx, d.ID, 42))
	got, err = events.GetByID(ctx, e.ID)
	require.NoError(t, err)
	assert.Equal(t, 5, got.AvailableSeats)

	b, err := repo.GetByID(ctx, d.ID)
	require.NoError(t, err)
	assert.Equal(t, model.BookingStatusCancelled, b.Status)

	// Cancelling twice conflicts and does not release again.
	require.ErrorIs(t, repo.Cancel(ctx, d.ID, 42), ErrConflict)
	got, err = events.GetByID(ctx, e.ID)
	require.NoError(t, err)
	assert.Equal(t, 5, got.AvailableSeats)
}

func TestBookUnknownEvent(t *testing.T) {
	db := testDB(t)
	_, err := NewBookingRepo(db).Book(context.Background(), 999999999, 42, 1)
	require.ErrorIs(t, err, ErrEventNotFound)
}

func TestCancelOwnershipAndExistence(t *testing.T) {
	db := testDB(t)
	ctx := context.Background()
	repo := NewBookingRepo(db)

	e := createTestEvent(t, db, 4, 1000)
	d, err := repo.Book(ctx, e.ID, 42, 2)
	require.NoError(t, err)

	require.ErrorIs(t, repo.Cancel(ctx, d.ID, 7), ErrForbidden)
	require.ErrorIs(t, repo.Cancel(ctx, 999999999, 42), ErrBookingNotFound)
}

// Twenty customers race for ten seats.  Exactly ten single-seat
// bookings may succeed, the rest must see the seat-shortage sentinel,
// and the counter must land on zero with no oversell.
func TestConcurrentBookingNeverOversells(t *testing.T) {
	db := testDB(t)
	ctx := context.Background()
	repo := NewBookingRepo(db)
	events := NewEventRepo(db)

	const capacity = 10
	const contenders = 20
	e := createTestEvent(t, db, capacity, 1500)

	var wg sync.WaitGroup
	results := make(chan error, contenders)
	for i := 0; i < contenders; i++ {
		wg.Add(1)
		go func(userID uint64) {
			defer wg.Done()
			_, err := repo.Book(ctx, e.ID, userID, 1)
			results <- err
		}(uint64(100 + i))
	}
	wg.Wait()
	close(results)

	succeeded, refused := 0, 0
	for err := range results {
		switch {
		case err == nil:
			succeeded++
		default:
			require.ErrorIs(t, err, ErrNotEnoughSeats)
			refused++
		}
	}
	assert.Equal(t, capacity, succeeded)
	assert.Equal(t, contenders-capacity, refused)

	got, err := events.GetByID(ctx, e.ID)
	require.NoError(t, err)
	assert.Zero(t, got.AvailableSeats)

	confirmed, err := repo.ConfirmedSeats(ctx, e.ID)
	require.NoError(t, err)
	assert.Equal(t, capacity, confirmed)
}
