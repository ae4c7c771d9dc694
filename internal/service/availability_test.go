package service

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"bookingapi/internal/database"
	"bookingapi/internal/domain"
	"bookingapi/pkg/logger"
)

func TestAvailabilityQueries(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	engine := NewAvailabilityEngine(f.bookingRepo)

	active := f.book(t, 1, 3)
	block := f.block(t, 5, 6)
	canceled := f.book(t, 8, 9)
	_, err := f.svc.CancelBooking(ctx, domain.CancelIntent{BookingID: canceled.ID, UserID: f.guest.ID})
	require.NoError(t, err)

	conflict, err := engine.HasConflict(ctx, f.property.ID, domain.NewDateRange(dec(3), dec(4)), 0)
	require.NoError(t, err)
	assert.True(t, conflict)

	conflict, err = engine.HasConflict(ctx, f.property.ID, domain.NewDateRange(dec(3), dec(4)), active.ID)
	require.NoError(t, err)
	assert.False(t, conflict)

	conflict, err = engine.HasConflict(ctx, f.property.ID, domain.NewDateRange(dec(8), dec(9)), 0)
	require.NoError(t, err)
	assert.False(t, conflict)

	stored := f.stored(t, block.ID)
	conflict, err = engine.HasActiveOrBlockedConflict(ctx, stored)
	require.NoError(t, err)
	assert.False(t, conflict)

	probe := &domain.Booking{PropertyID: f.property.ID, StartDate: dec(2), EndDate: dec(9), Status: domain.BookingStatusBlocked}
	conflict, err = engine.HasActiveOrBlockedConflict(ctx, probe)
	require.NoError(t, err)
	assert.True(t, conflict)

	evictable, err := engine.CollectCanceledInRange(ctx, probe)
	require.NoError(t, err)
	require.Len(t, evictable, 1)
	assert.Equal(t, canceled.ID, evictable[0].ID)
}

func TestReserveRangeFailedWriteRollsBackEviction(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	engine := NewAvailabilityEngine(f.bookingRepo)
	txm := database.NewTxManager(f.db, logger.Nop())

	canceled := f.book(t, 1, 2)
	_, err := f.svc.CancelBooking(ctx, domain.CancelIntent{BookingID: canceled.ID, UserID: f.guest.ID})
	require.NoError(t, err)

	errWrite := errors.New("write failed")
	block := &domain.Booking{PropertyID: f.property.ID, UserID: f.manager.ID, StartDate: dec(1), EndDate: dec(3), Status: domain.BookingStatusBlocked}

	err = txm.RunInTx(ctx, func(ctx context.Context) error {
		evicted, err := engine.ReserveRange(ctx, BlockReservation(block), func(ctx context.Context) error {
			return errWrite
		})
		assert.Nil(t, evicted)
		return err
	})
	assert.ErrorIs(t, err, errWrite)
	assert.NotNil(t, f.stored(t, canceled.ID))
}

func TestReserveRangeDefaults(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	engine := NewAvailabilityEngine(f.bookingRepo)
	f.book(t, 1, 3)

	written := false
	_, err := engine.ReserveRange(ctx, RangeReservation{
		PropertyID: f.property.ID,
		Dates:      domain.NewDateRange(dec(2), dec(2)),
	}, func(ctx context.Context) error {
		written = true
		return nil
	})
	assert.ErrorIs(t, err, domain.ErrRangeUnavailable)
	assert.False(t, written)

	_, err = engine.ReserveRange(ctx, RangeReservation{
		PropertyID: f.property.ID,
		Dates:      domain.NewDateRange(dec(5), dec(2)),
	}, func(ctx context.Context) error {
		written = true
		return nil
	})
	assert.ErrorIs(t, err, domain.ErrInvalidDateRange)
	assert.False(t, written)

	evicted, err := engine.ReserveRange(ctx, RangeReservation{
		PropertyID:  f.property.ID,
		Dates:       domain.NewDateRange(dec(2), dec(2)),
		Conflicting: []domain.BookingStatus{domain.BookingStatusBlocked},
	}, func(ctx context.Context) error {
		written = true
		return nil
	})
	require.NoError(t, err)
	assert.Empty(t, evicted)
	assert.True(t, written)
}
