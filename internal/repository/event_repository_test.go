package repository

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/iliyamo/event-booking/internal/model"
)

func TestEventOwnershipGuards(t *testing.T) {
	db := testDB(t)
	ctx := context.Background()
	events := NewEventRepo(db)

	e := createTestEvent(t, db, 8, 2000)

	e.Title = "Renamed"
	require.ErrorIs(t, events.Update(ctx, 999, e), ErrForbidden)
	require.NoError(t, events.Update(ctx, e.OrganizerID, e))

	got, err := events.GetByID(ctx, e.ID)
	require.NoError(t, err)
	assert.Equal(t, "Renamed", got.Title)

	require.ErrorIs(t, events.Delete(ctx, e.ID, 999), ErrForbidden)
	require.ErrorIs(t, events.Update(ctx, e.OrganizerID, &model.Event{ID: 999999999}), ErrEventNotFound)
}

func TestEventDeleteRefusedWithBookings(t *testing.T) {
	db := testDB(t)
	ctx := context.Background()
	events := NewEventRepo(db)
	bookings := NewBookingRepo(db)

	e := createTestEvent(t, db, 4, 500)
	d, err := bookings.Book(ctx, e.ID, 42, 1)
	require.NoError(t, err)

	require.ErrorIs(t, events.Delete(ctx, e.ID, e.OrganizerID), ErrConflict)

	// Once the booking is cancelled the event can go.
	require.NoError(t, bookings.Cancel(ctx, d.ID, 42))
	require.NoError(t, events.Delete(ctx, e.ID, e.OrganizerID))
	_, err = events.GetByID(ctx, e.ID)
	require.ErrorIs(t, err, ErrEventNotFound)
}

func TestListUpcomingFiltersPastAndMatchesTerm(t *testing.T) {
	db := testDB(t)
	ctx := context.Background()
	events := NewEventRepo(db)

	past := &model.Event{
		Title:       "Last Year Gala",
		Description: "done",
		EventDate:   time.Now().UTC().Add(-48 * time.Hour),
		Capacity:    10,
		OrganizerID: 1,
	}
	require.NoError(t, events.Create(ctx, past))
	createTestEvent(t, db, 10, 1000) // "Summer Concert" in the future

	list, err := events.ListUpcoming(ctx, "")
	require.NoError(t, err)
	require.Len(t, list, 1)
	assert.Equal(t, "Summer Concert", list[0].Title)

	list, err = events.ListUpcoming(ctx, "concert")
	require.NoError(t, err)
	assert.Len(t, list, 1)

	list, err = events.ListUpcoming(ctx, "gala")
	require.NoError(t, err)
	assert.Empty(t, list)
}
