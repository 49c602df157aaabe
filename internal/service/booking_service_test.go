package service

import (
	"context"
	"errors"
	"testing"

	"github.com/go-sql-driver/mysql"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/iliyamo/event-booking/internal/model"
	"github.com/iliyamo/event-booking/internal/repository"
)

// fakeStore scripts the per-call outcomes of Book so retry behavior
// can be exercised without a database.
type fakeStore struct {
	errs  []error
	calls int
}

func (f *fakeStore) Book(_ context.Context, eventID, userID uint64, seats int) (*model.BookingDetail, error) {
	i := f.calls
	f.calls++
	if i < len(f.errs) && f.errs[i] != nil {
		return nil, f.errs[i]
	}
	return &model.BookingDetail{
		Booking: model.Booking{
			ID: 1, EventID: eventID, UserID: userID, Seats: seats,
			TotalAmountCents: uint32(seats) * 2500,
			Status:           model.BookingStatusConfirmed,
		},
		EventTitle: "Launch Party",
	}, nil
}

func (f *fakeStore) Cancel(_ context.Context, _, _ uint64) error {
	i := f.calls
	f.calls++
	if i < len(f.errs) {
		return f.errs[i]
	}
	return nil
}

type fakePublisher struct{ published []*model.BookingDetail }

func (f *fakePublisher) PublishBookingConfirmed(b *model.BookingDetail) {
	f.published = append(f.published, b)
}

func deadlock() error { return &mysql.MySQLError{Number: 1213, Message: "Deadlock found"} }

func TestBookSuccess(t *testing.T) {
	pub := &fakePublisher{}
	svc := NewBookingService(&fakeStore{}, pub)

	res, err := svc.Book(context.Background(), 7, 42, 3)
	require.NoError(t, err)
	assert.True(t, res.Success)
	assert.Empty(t, res.Message)
	require.NotNil(t, res.Booking)
	assert.Equal(t, model.BookingStatusConfirmed, res.Booking.Status)
	assert.Equal(t, uint32(7500), res.Booking.TotalAmountCents)
	assert.Len(t, pub.published, 1)
}

func TestBookRejectsBadSeatCounts(t *testing.T) {
	store := &fakeStore{}
	svc := NewBookingService(store, nil)

	for _, seats := range []int{0, -1, -100} {
		res, err := svc.Book(context.Background(), 7, 42, seats)
		require.NoError(t, err)
		assert.False(t, res.Success)
		assert.Equal(t, MsgInvalidSeatCount, res.Message)
	}
	assert.Zero(t, store.calls, "invalid counts must not reach the store")
}

func TestBookBusinessRefusals(t *testing.T) {
	tests := []struct {
		name    string
		err     error
		message string
	}{
		{"unknown event", repository.ErrEventNotFound, MsgEventNotFound},
		{"sold out", repository.ErrNotEnoughSeats, MsgNotEnoughSeats},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			pub := &fakePublisher{}
			svc := NewBookingService(&fakeStore{errs: []error{tc.err}}, pub)

			res, err := svc.Book(context.Background(), 7, 42, 1)
			require.NoError(t, err)
			assert.False(t, res.Success)
			assert.Equal(t, tc.message, res.Message)
			assert.Nil(t, res.Booking)
			assert.Empty(t, pub.published)
		})
	}
}

func TestBookRetriesLockConflicts(t *testing.T) {
	store := &fakeStore{errs: []error{deadlock(), deadlock()}}
	svc := NewBookingService(store, nil)

	res, err := svc.Book(context.Background(), 7, 42, 2)
	require.NoError(t, err)
	assert.True(t, res.Success)
	assert.Equal(t, 3, store.calls)
}

func TestBookExhaustedRetriesAreInfraErrors(t *testing.T) {
	store := &fakeStore{errs: []error{deadlock(), deadlock(), deadlock()}}
	svc := NewBookingService(store, nil)

	res, err := svc.Book(context.Background(), 7, 42, 2)
	require.Error(t, err)
	assert.False(t, res.Success)
	assert.NotEqual(t, MsgNotEnoughSeats, res.Message,
		"a lock conflict must never read as a seat shortage")

	var me *mysql.MySQLError
	require.ErrorAs(t, err, &me)
	assert.Equal(t, uint16(1213), me.Number)
	assert.Equal(t, 3, store.calls)
}

func TestBookPassesInfraErrorsThrough(t *testing.T) {
	boom := errors.New("connection reset")
	svc := NewBookingService(&fakeStore{errs: []error{boom}}, nil)

	_, err := svc.Book(context.Background(), 7, 42, 1)
	require.ErrorIs(t, err, boom)
}

func TestCancelPassesSentinelsThrough(t *testing.T) {
	svc := NewBookingService(&fakeStore{errs: []error{repository.ErrForbidden}}, nil)
	err := svc.Cancel(context.Background(), 9, 42)
	require.ErrorIs(t, err, repository.ErrForbidden)
}
